package app

import (
	"context"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
)

type LedgerReader interface {
	ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)
}

type PoolLister interface {
	ListPools(ctx context.Context) ([]domain.Pool, error)
}

// LedgerService is the read side of the ledger.
type LedgerService struct {
	ledger LedgerReader
	pools  PoolLister
}

const recentLedgerLimit = 20

func NewLedgerService(ledger LedgerReader, pools PoolLister) *LedgerService {
	return &LedgerService{ledger: ledger, pools: pools}
}

// ListLedger returns entries matching filter, newest first.
func (s *LedgerService) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, domain.ErrInvalidAction
	}
	if filter.Limit < 0 {
		return nil, domain.ErrInvalidCount
	}
	return s.ledger.ListLedger(ctx, filter)
}

type Dashboard struct {
	Pools  []domain.Pool
	Recent []domain.LedgerEntry
}

// Dashboard returns the pool summary and the latest ledger entries.
func (s *LedgerService) Dashboard(ctx context.Context) (Dashboard, error) {
	pools, err := s.pools.ListPools(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	recent, err := s.ledger.ListLedger(ctx, domain.LedgerFilter{Limit: recentLedgerLimit})
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Pools: pools, Recent: recent}, nil
}
