package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CorrectionRepository struct {
	conn
}

func NewCorrectionRepository(pool *pgxpool.Pool) *CorrectionRepository {
	return &CorrectionRepository{conn: conn{pool: pool}}
}

func (r *CorrectionRepository) CreateCorrectionRequest(ctx context.Context, req domain.CorrectionRequest) error {
	const stmt = `
INSERT INTO correction_requests (id, contact_address, old_code, new_code, otp, created_at, is_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.exec(ctx, stmt,
		req.ID,
		req.ContactAddress,
		req.OldCode,
		req.NewCode,
		req.OTP,
		req.CreatedAt,
		req.IsVerified,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create correction request: %w", err)
	}
	return nil
}

// FindPendingCorrection locks and returns the newest unverified request for
// handle, or nil when there is none.
func (r *CorrectionRepository) FindPendingCorrection(ctx context.Context, handle domain.CorrectionHandle) (*domain.CorrectionRequest, error) {
	const query = `
SELECT id, contact_address, old_code, new_code, otp, created_at, is_verified
FROM correction_requests
WHERE contact_address = $1 AND old_code = $2 AND new_code = $3 AND NOT is_verified
ORDER BY created_at DESC, seq DESC
LIMIT 1
FOR UPDATE`

	var req domain.CorrectionRequest
	err := r.queryRow(ctx, query, handle.ContactAddress, handle.OldCode, handle.NewCode).
		Scan(&req.ID, &req.ContactAddress, &req.OldCode, &req.NewCode, &req.OTP, &req.CreatedAt, &req.IsVerified)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending correction: %w", err)
	}
	return &req, nil
}

func (r *CorrectionRepository) MarkCorrectionVerified(ctx context.Context, requestID string) error {
	const stmt = `UPDATE correction_requests SET is_verified = TRUE WHERE id = $1 AND NOT is_verified`

	tag, err := r.exec(ctx, stmt, requestID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrNoPendingRequest
		}
		return fmt.Errorf("mark correction verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNoPendingRequest
	}
	return nil
}

// DeleteCorrectionRequest drops a request whose OTP never reached the operator.
func (r *CorrectionRepository) DeleteCorrectionRequest(ctx context.Context, requestID string) error {
	if _, err := r.exec(ctx, `DELETE FROM correction_requests WHERE id = $1`, requestID); err != nil {
		if isInvalidUUID(err) {
			return nil
		}
		return fmt.Errorf("delete correction request: %w", err)
	}
	return nil
}
