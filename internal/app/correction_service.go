package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/clock"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type CorrectionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	SampleExists(ctx context.Context, code string) (bool, error)
	GetSampleForUpdate(ctx context.Context, code string) (domain.Sample, error)
	DeleteSample(ctx context.Context, sampleID string) error
	GetPoolForUpdate(ctx context.Context, poolID string) (domain.Pool, error)
	UpdatePoolAllocated(ctx context.Context, poolID string, allocated int) error
	AppendLedger(ctx context.Context, entry domain.LedgerEntry) error
	CreateCorrectionRequest(ctx context.Context, req domain.CorrectionRequest) error
	// FindPendingCorrection returns the newest unverified request for handle, or nil.
	FindPendingCorrection(ctx context.Context, handle domain.CorrectionHandle) (*domain.CorrectionRequest, error)
	MarkCorrectionVerified(ctx context.Context, requestID string) error
	DeleteCorrectionRequest(ctx context.Context, requestID string) error
}

// Notifier delivers the OTP to the operator.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Allocator is the allocation step reused by corrections.
type Allocator interface {
	Allocate(ctx context.Context, code string) (AllocationResult, error)
}

// CorrectionService replaces a sample code after an OTP challenge.
type CorrectionService struct {
	repo     CorrectionRepository
	alloc    Allocator
	notifier Notifier
	contact  string
	clock    clock.Clock
	settings
}

func NewCorrectionService(repo CorrectionRepository, alloc Allocator, notifier Notifier, contact string, clk clock.Clock, opts ...Option) *CorrectionService {
	return &CorrectionService{
		repo:     repo,
		alloc:    alloc,
		notifier: notifier,
		contact:  contact,
		clock:    clk,
		settings: newSettings(opts),
	}
}

type RequestCorrectionInput struct {
	OldCode string
	NewCode string
}

// RequestCorrection stores a pending request and mails its OTP. Delivery runs
// after the store transaction commits; the request is deleted again when
// delivery fails so it can never be verified.
func (s *CorrectionService) RequestCorrection(ctx context.Context, in RequestCorrectionInput) (domain.CorrectionHandle, error) {
	oldCode, err := domain.NormalizeCode(in.OldCode)
	if err != nil {
		return domain.CorrectionHandle{}, err
	}
	newCode, err := domain.NormalizeCode(in.NewCode)
	if err != nil {
		return domain.CorrectionHandle{}, err
	}

	otp, err := s.otpGen()
	if err != nil {
		return domain.CorrectionHandle{}, err
	}

	req := domain.CorrectionRequest{
		ID:             newUUID(),
		ContactAddress: s.contact,
		OldCode:        oldCode,
		NewCode:        newCode,
		OTP:            otp,
		CreatedAt:      s.clock.Now(),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.SampleExists(txCtx, oldCode)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUnknownSample
		}
		exists, err = s.repo.SampleExists(txCtx, newCode)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateCode
		}

		return s.repo.CreateCorrectionRequest(txCtx, req)
	})
	if err == nil {
		err = s.deliver(ctx, req)
	}
	if err != nil {
		s.metrics.Correction("request", domain.CodeOf(err))
		if errors.Is(err, domain.ErrDeliveryFailed) {
			s.logger.Error("correction otp delivery failed",
				zap.String("old_code", oldCode),
				zap.String("new_code", newCode),
				zap.Error(err),
			)
		}
		return domain.CorrectionHandle{}, err
	}

	s.metrics.Correction("request", "ok")
	s.logger.Info("correction requested", zap.String("old_code", oldCode), zap.String("new_code", newCode))
	return domain.CorrectionHandle{
		ContactAddress: req.ContactAddress,
		OldCode:        req.OldCode,
		NewCode:        req.NewCode,
	}, nil
}

// deliver sends the OTP outside any store transaction so a slow mail server
// never holds store locks. A failed send withdraws the stored request.
func (s *CorrectionService) deliver(ctx context.Context, req domain.CorrectionRequest) error {
	subject := "Sample code correction OTP"
	body := fmt.Sprintf(
		"A correction from sample %q to %q was requested.\nYour one-time passcode is %s. It expires in %s.",
		req.OldCode, req.NewCode, req.OTP, s.otpWindow,
	)
	sendErr := s.notifier.Send(ctx, req.ContactAddress, subject, body)
	if sendErr == nil {
		return nil
	}

	err := fmt.Errorf("%w: %v", domain.ErrDeliveryFailed, sendErr)
	if delErr := s.repo.DeleteCorrectionRequest(context.WithoutCancel(ctx), req.ID); delErr != nil {
		err = multierr.Append(err, fmt.Errorf("withdraw correction request: %w", delErr))
	}
	return err
}

type CorrectionResult struct {
	Request    domain.CorrectionRequest
	Removed    domain.Sample
	Allocation AllocationResult
}

// VerifyCorrection checks otp against the newest pending request for handle and,
// on a match, removes the old sample and allocates the new code. When the new
// code was taken in the meantime the old sample is kept and ErrDuplicateCode
// is returned.
func (s *CorrectionService) VerifyCorrection(ctx context.Context, handle domain.CorrectionHandle, otp string) (CorrectionResult, error) {
	var err error
	if handle.OldCode, err = domain.NormalizeCode(handle.OldCode); err != nil {
		return CorrectionResult{}, err
	}
	if handle.NewCode, err = domain.NormalizeCode(handle.NewCode); err != nil {
		return CorrectionResult{}, err
	}
	otp = strings.TrimSpace(otp)
	if otp == "" {
		return CorrectionResult{}, domain.ErrOtpRequired
	}

	req, err := s.verify(ctx, handle, otp)
	if err != nil {
		s.metrics.Correction("verify", domain.CodeOf(err))
		return CorrectionResult{}, err
	}

	removed, err := s.removeSample(ctx, req.OldCode, req.NewCode)
	if err != nil {
		s.metrics.Correction("apply", domain.CodeOf(err))
		s.logger.Warn("verified correction could not remove old sample",
			zap.String("old_code", req.OldCode),
			zap.String("new_code", req.NewCode),
			zap.Error(err),
		)
		return CorrectionResult{}, err
	}

	alloc, err := s.alloc.Allocate(ctx, req.NewCode)
	if err != nil {
		s.metrics.Correction("apply", domain.ErrCorrectionPartiallyApplied.Code)
		s.logger.Error("correction partially applied: old sample removed, new allocation failed",
			zap.String("old_code", req.OldCode),
			zap.String("new_code", req.NewCode),
			zap.String("old_pool_id", removed.PoolID),
			zap.Error(err),
		)
		return CorrectionResult{}, &domain.CorrectionPartiallyAppliedError{
			OldCode: req.OldCode,
			NewCode: req.NewCode,
			PoolID:  removed.PoolID,
			Err:     err,
		}
	}

	s.metrics.Correction("apply", "ok")
	s.logger.Info("correction applied",
		zap.String("old_code", req.OldCode),
		zap.String("new_code", req.NewCode),
		zap.String("pool", alloc.Pool.Name),
	)
	return CorrectionResult{Request: req, Removed: removed, Allocation: alloc}, nil
}

func (s *CorrectionService) verify(ctx context.Context, handle domain.CorrectionHandle, otp string) (domain.CorrectionRequest, error) {
	now := s.clock.Now()
	var verified domain.CorrectionRequest

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		pending, err := s.repo.FindPendingCorrection(txCtx, handle)
		if err != nil {
			return err
		}
		if pending == nil {
			return domain.ErrNoPendingRequest
		}
		if pending.Expired(now, s.otpWindow) {
			return domain.ErrOtpExpired
		}
		if subtle.ConstantTimeCompare([]byte(pending.OTP), []byte(otp)) != 1 {
			return domain.ErrOtpMismatch
		}
		if err := s.repo.MarkCorrectionVerified(txCtx, pending.ID); err != nil {
			return err
		}
		verified = *pending
		verified.IsVerified = true
		return nil
	})
	return verified, err
}

// removeSample deletes the sample and releases its slot, logging a delete entry.
// Nothing is removed while replacement is already in use.
func (s *CorrectionService) removeSample(ctx context.Context, code, replacement string) (domain.Sample, error) {
	now := s.clock.Now()
	var removed domain.Sample

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		taken, err := s.repo.SampleExists(txCtx, replacement)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateCode
		}

		sample, err := s.repo.GetSampleForUpdate(txCtx, code)
		if err != nil {
			return err
		}
		pool, err := s.repo.GetPoolForUpdate(txCtx, sample.PoolID)
		if err != nil {
			return err
		}
		pool.Release()
		if err := s.repo.UpdatePoolAllocated(txCtx, pool.ID, pool.Allocated); err != nil {
			return err
		}
		if err := s.repo.DeleteSample(txCtx, sample.ID); err != nil {
			return err
		}

		qty := 1
		if err := s.repo.AppendLedger(txCtx, domain.LedgerEntry{
			ID:          newUUID(),
			PoolID:      pool.ID,
			PoolName:    pool.Name,
			Action:      domain.ActionDelete,
			Quantity:    &qty,
			SampleCodes: []string{sample.Code},
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		removed = sample
		return nil
	})
	return removed, err
}
