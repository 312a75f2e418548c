package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"go.uber.org/zap"
)

type PoolRepository interface {
	// EnsurePool inserts pool unless one with the same name exists. It reports whether a row was created.
	EnsurePool(ctx context.Context, pool domain.Pool) (bool, error)
	ListPools(ctx context.Context) ([]domain.Pool, error)
	GetPool(ctx context.Context, poolID string) (domain.Pool, error)
}

type PoolService struct {
	repo PoolRepository
	settings
}

func NewPoolService(repo PoolRepository, opts ...Option) *PoolService {
	return &PoolService{
		repo:     repo,
		settings: newSettings(opts),
	}
}

// Bootstrap makes sure every seed has a pool. Existing pools keep their counters.
func (s *PoolService) Bootstrap(ctx context.Context, seeds []domain.RegionSeed) error {
	for _, seed := range seeds {
		name := strings.TrimSpace(seed.Name)
		if name == "" {
			return fmt.Errorf("seed region: %w", domain.ErrInvalidID)
		}
		if seed.Capacity < 0 {
			return fmt.Errorf("seed region %q: %w", name, domain.ErrInvalidCount)
		}

		created, err := s.repo.EnsurePool(ctx, domain.Pool{
			ID:    newUUID(),
			Name:  name,
			Total: seed.Capacity,
		})
		if err != nil {
			return fmt.Errorf("seed region %q: %w", name, err)
		}
		if created {
			s.logger.Info("pool seeded", zap.String("pool", name), zap.Int("total", seed.Capacity))
		}
	}
	return nil
}

// ListPools returns all pools ordered by name.
func (s *PoolService) ListPools(ctx context.Context) ([]domain.Pool, error) {
	pools, err := s.repo.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Name < pools[j].Name })
	return pools, nil
}

func (s *PoolService) GetPool(ctx context.Context, poolID string) (domain.Pool, error) {
	if strings.TrimSpace(poolID) == "" {
		return domain.Pool{}, domain.ErrPoolNotFound
	}
	return s.repo.GetPool(ctx, poolID)
}
