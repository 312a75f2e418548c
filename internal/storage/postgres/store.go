package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store bundles the repositories over one pool so a single value satisfies
// every service's repository interface.
type Store struct {
	*PoolRepository
	*SampleRepository
	*LedgerRepository
	*CorrectionRepository

	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	ledger, err := NewLedgerRepository(pool)
	if err != nil {
		return nil, err
	}
	return &Store{
		PoolRepository:       NewPoolRepository(pool),
		SampleRepository:     NewSampleRepository(pool),
		LedgerRepository:     ledger,
		CorrectionRepository: NewCorrectionRepository(pool),
		pool:                 pool,
	}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, s.pool, fn)
}
