package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SampleRepository struct {
	conn
}

func NewSampleRepository(pool *pgxpool.Pool) *SampleRepository {
	return &SampleRepository{conn: conn{pool: pool}}
}

func (r *SampleRepository) SampleExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM samples WHERE code = $1)`
	var exists bool
	if err := r.queryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("check sample: %w", err)
	}
	return exists, nil
}

func (r *SampleRepository) CreateSample(ctx context.Context, sample domain.Sample) error {
	const stmt = `
INSERT INTO samples (id, code, pool_id, created_at)
VALUES ($1, $2, $3, $4)`

	_, err := r.exec(ctx, stmt, sample.ID, sample.Code, sample.PoolID, sample.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPoolNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create sample: %w", err)
	}
	return nil
}

func (r *SampleRepository) GetSample(ctx context.Context, code string) (domain.Sample, error) {
	return r.getSample(ctx, `SELECT id, code, pool_id, created_at FROM samples WHERE code = $1`, code)
}

func (r *SampleRepository) GetSampleForUpdate(ctx context.Context, code string) (domain.Sample, error) {
	return r.getSample(ctx, `SELECT id, code, pool_id, created_at FROM samples WHERE code = $1 FOR UPDATE`, code)
}

func (r *SampleRepository) getSample(ctx context.Context, query, code string) (domain.Sample, error) {
	var s domain.Sample
	err := r.queryRow(ctx, query, code).Scan(&s.ID, &s.Code, &s.PoolID, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Sample{}, domain.ErrSampleNotFound
		}
		return domain.Sample{}, fmt.Errorf("get sample: %w", err)
	}
	return s, nil
}

func (r *SampleRepository) DeleteSample(ctx context.Context, sampleID string) error {
	tag, err := r.exec(ctx, `DELETE FROM samples WHERE id = $1`, sampleID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrSampleNotFound
		}
		return fmt.Errorf("delete sample: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSampleNotFound
	}
	return nil
}
