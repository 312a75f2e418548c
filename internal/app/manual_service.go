package app

import (
	"context"
	"strings"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/clock"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"go.uber.org/zap"
)

type ManualRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetPoolForUpdate(ctx context.Context, poolID string) (domain.Pool, error)
	UpdatePoolAllocated(ctx context.Context, poolID string, allocated int) error
	AppendLedger(ctx context.Context, entry domain.LedgerEntry) error
}

// ManualService releases pool capacity for samples processed downstream in bulk.
type ManualService struct {
	repo  ManualRepository
	clock clock.Clock
	settings
}

func NewManualService(repo ManualRepository, clk clock.Clock, opts ...Option) *ManualService {
	return &ManualService{
		repo:     repo,
		clock:    clk,
		settings: newSettings(opts),
	}
}

type ProcessInput struct {
	PoolID string
	Count  int
}

type ProcessResult struct {
	Pool  domain.Pool
	Entry domain.LedgerEntry
}

// Process decrements a pool by Count without touching individual samples.
func (s *ManualService) Process(ctx context.Context, in ProcessInput) (ProcessResult, error) {
	poolID := strings.TrimSpace(in.PoolID)
	if poolID == "" {
		return ProcessResult{}, domain.ErrPoolNotFound
	}
	if in.Count <= 0 {
		return ProcessResult{}, domain.ErrInvalidCount
	}

	now := s.clock.Now()
	var result ProcessResult

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		pool, err := s.repo.GetPoolForUpdate(txCtx, poolID)
		if err != nil {
			return err
		}
		if err := pool.Decrement(in.Count); err != nil {
			return err
		}
		if err := s.repo.UpdatePoolAllocated(txCtx, pool.ID, pool.Allocated); err != nil {
			return err
		}

		qty := in.Count
		entry := domain.LedgerEntry{
			ID:        newUUID(),
			PoolID:    pool.ID,
			PoolName:  pool.Name,
			Action:    domain.ActionProcess,
			Quantity:  &qty,
			CreatedAt: now,
		}
		if err := s.repo.AppendLedger(txCtx, entry); err != nil {
			return err
		}

		result = ProcessResult{Pool: pool, Entry: entry}
		return nil
	})
	if err != nil {
		return ProcessResult{}, err
	}

	s.metrics.Processed(result.Pool.Name, in.Count)
	s.logger.Info("samples processed",
		zap.String("pool", result.Pool.Name),
		zap.Int("count", in.Count),
		zap.Int("allocated", result.Pool.Allocated),
	)
	return result, nil
}
