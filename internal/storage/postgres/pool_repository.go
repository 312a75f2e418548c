package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolRepository struct {
	conn
}

func NewPoolRepository(pool *pgxpool.Pool) *PoolRepository {
	return &PoolRepository{conn: conn{pool: pool}}
}

// EnsurePool inserts pool unless one with the same name exists. It reports
// whether a row was created.
func (r *PoolRepository) EnsurePool(ctx context.Context, pool domain.Pool) (bool, error) {
	const stmt = `
INSERT INTO pools (id, name, allocated, total)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4)
ON CONFLICT (name) DO NOTHING`

	tag, err := r.exec(ctx, stmt, pool.ID, pool.Name, pool.Allocated, pool.Total)
	if err != nil {
		if isInvalidUUID(err) {
			return false, domain.ErrInvalidID
		}
		if isUniqueViolation(err) {
			return false, nil
		}
		if isCheckViolation(err) {
			return false, domain.ErrInvalidCount
		}
		return false, fmt.Errorf("ensure pool: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PoolRepository) ListPools(ctx context.Context) ([]domain.Pool, error) {
	const query = `
SELECT id, name, allocated, total
FROM pools
ORDER BY name ASC`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	pools := make([]domain.Pool, 0)
	for rows.Next() {
		var p domain.Pool
		if err := rows.Scan(&p.ID, &p.Name, &p.Allocated, &p.Total); err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate pools: %w", rows.Err())
	}
	return pools, nil
}

func (r *PoolRepository) GetPool(ctx context.Context, poolID string) (domain.Pool, error) {
	return r.getPool(ctx, `SELECT id, name, allocated, total FROM pools WHERE id = $1`, poolID)
}

// GetPoolForUpdate locks the pool row until the surrounding tx ends.
func (r *PoolRepository) GetPoolForUpdate(ctx context.Context, poolID string) (domain.Pool, error) {
	return r.getPool(ctx, `SELECT id, name, allocated, total FROM pools WHERE id = $1 FOR UPDATE`, poolID)
}

func (r *PoolRepository) getPool(ctx context.Context, query, poolID string) (domain.Pool, error) {
	var p domain.Pool
	err := r.queryRow(ctx, query, poolID).Scan(&p.ID, &p.Name, &p.Allocated, &p.Total)
	if err != nil {
		if isInvalidUUID(err) || errors.Is(err, pgx.ErrNoRows) {
			return domain.Pool{}, domain.ErrPoolNotFound
		}
		return domain.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	return p, nil
}

func (r *PoolRepository) UpdatePoolAllocated(ctx context.Context, poolID string, allocated int) error {
	const stmt = `UPDATE pools SET allocated = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.exec(ctx, stmt, poolID, allocated)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrCapacityExceeded
		}
		if isInvalidUUID(err) {
			return domain.ErrPoolNotFound
		}
		return fmt.Errorf("update pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPoolNotFound
	}
	return nil
}
