package app

import (
	"context"
	"errors"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/clock"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"go.uber.org/zap"
)

type AllocationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListPools(ctx context.Context) ([]domain.Pool, error)
	GetPoolForUpdate(ctx context.Context, poolID string) (domain.Pool, error)
	UpdatePoolAllocated(ctx context.Context, poolID string, allocated int) error
	SampleExists(ctx context.Context, code string) (bool, error)
	CreateSample(ctx context.Context, sample domain.Sample) error
	AppendLedger(ctx context.Context, entry domain.LedgerEntry) error
}

// AllocationService assigns new sample codes to pools.
type AllocationService struct {
	repo  AllocationRepository
	clock clock.Clock
	settings
}

func NewAllocationService(repo AllocationRepository, clk clock.Clock, opts ...Option) *AllocationService {
	return &AllocationService{
		repo:     repo,
		clock:    clk,
		settings: newSettings(opts),
	}
}

type AllocationResult struct {
	Sample domain.Sample
	Pool   domain.Pool
	Entry  domain.LedgerEntry
}

// Allocate binds code to a pool chosen by remaining capacity. The pool
// increment, the sample row and the ledger entry commit together.
func (s *AllocationService) Allocate(ctx context.Context, code string) (AllocationResult, error) {
	code, err := domain.NormalizeCode(code)
	if err != nil {
		s.metrics.AllocationFailed(domain.CodeOf(err))
		return AllocationResult{}, err
	}

	now := s.clock.Now()
	var result AllocationResult

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.SampleExists(txCtx, code)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateCode
		}

		pool, err := s.reserve(txCtx)
		if err != nil {
			return err
		}

		sample := domain.Sample{
			ID:        newUUID(),
			Code:      code,
			PoolID:    pool.ID,
			CreatedAt: now,
		}
		// The unique constraint on code catches a concurrent caller that passed the existence check.
		if err := s.repo.CreateSample(txCtx, sample); err != nil {
			return err
		}

		qty := 1
		entry := domain.LedgerEntry{
			ID:          newUUID(),
			PoolID:      pool.ID,
			PoolName:    pool.Name,
			Action:      domain.ActionAllocate,
			Quantity:    &qty,
			SampleCodes: []string{code},
			CreatedAt:   now,
		}
		if err := s.repo.AppendLedger(txCtx, entry); err != nil {
			return err
		}

		result = AllocationResult{Sample: sample, Pool: pool, Entry: entry}
		return nil
	})
	if err != nil {
		s.metrics.AllocationFailed(domain.CodeOf(err))
		return AllocationResult{}, err
	}

	s.metrics.Allocated(result.Pool.Name)
	s.logger.Info("sample allocated",
		zap.String("code", code),
		zap.String("pool", result.Pool.Name),
		zap.Int("allocated", result.Pool.Allocated),
		zap.Int("total", result.Pool.Total),
	)
	return result, nil
}

// reserve picks a pool and increments it under a row lock. A pool that filled
// up between the snapshot and the lock is skipped and the snapshot re-read.
func (s *AllocationService) reserve(ctx context.Context) (domain.Pool, error) {
	skipped := make(map[string]struct{})
	for {
		pools, err := s.repo.ListPools(ctx)
		if err != nil {
			return domain.Pool{}, err
		}

		eligible := make([]domain.Pool, 0, len(pools))
		for _, p := range pools {
			if _, skip := skipped[p.ID]; skip {
				continue
			}
			if p.Remaining() > 0 {
				eligible = append(eligible, p)
			}
		}

		chosen, ok := choosePool(eligible, s.intn)
		if !ok {
			return domain.Pool{}, domain.ErrNoCapacityAvailable
		}

		locked, err := s.repo.GetPoolForUpdate(ctx, chosen.ID)
		if err != nil {
			return domain.Pool{}, err
		}
		if err := locked.Increment(1); err != nil {
			if errors.Is(err, domain.ErrCapacityExceeded) {
				s.metrics.SelectionRetried()
				s.logger.Debug("pool filled before increment, reselecting", zap.String("pool", locked.Name))
				skipped[locked.ID] = struct{}{}
				continue
			}
			return domain.Pool{}, err
		}
		if err := s.repo.UpdatePoolAllocated(ctx, locked.ID, locked.Allocated); err != nil {
			return domain.Pool{}, err
		}
		return locked, nil
	}
}
