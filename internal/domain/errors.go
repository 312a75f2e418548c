package domain

import (
	"errors"
	"fmt"
)

// Kind groups errors by how callers are expected to react to them.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindCapacity   Kind = "capacity"
	KindNotFound   Kind = "not_found"
	KindOTP        Kind = "otp"
	KindDelivery   Kind = "delivery"
	KindPartial    Kind = "partial"
	KindInternal   Kind = "internal"
)

// Error is a domain failure with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

var (
	ErrCodeRequired  = newError(KindValidation, "code_required", "sample code required")
	ErrInvalidCode   = newError(KindValidation, "invalid_code", "sample code contains invalid characters")
	ErrInvalidCount  = newError(KindValidation, "invalid_count", "count must be positive")
	ErrInvalidID     = newError(KindValidation, "invalid_id", "invalid id")
	ErrInvalidAction = newError(KindValidation, "invalid_action", "invalid ledger action")
	ErrOtpRequired   = newError(KindValidation, "otp_required", "otp required")

	ErrDuplicateCode = newError(KindConflict, "duplicate_code", "sample code already exists")

	ErrNoCapacityAvailable = newError(KindCapacity, "no_capacity_available", "no region has remaining capacity")
	ErrCapacityExceeded    = newError(KindCapacity, "capacity_exceeded", "pool capacity exceeded")
	ErrInvalidAdjustment   = newError(KindCapacity, "invalid_adjustment", "adjustment exceeds allocated samples")

	ErrPoolNotFound     = newError(KindNotFound, "pool_not_found", "pool not found")
	ErrSampleNotFound   = newError(KindNotFound, "sample_not_found", "sample not found")
	ErrUnknownSample    = newError(KindNotFound, "unknown_sample", "sample code does not exist")
	ErrNoPendingRequest = newError(KindNotFound, "no_pending_request", "no pending correction request")

	ErrOtpExpired  = newError(KindOTP, "otp_expired", "otp expired")
	ErrOtpMismatch = newError(KindOTP, "otp_mismatch", "otp does not match")

	ErrDeliveryFailed = newError(KindDelivery, "delivery_failed", "failed to deliver notification")

	ErrCorrectionPartiallyApplied = newError(KindPartial, "correction_partially_applied", "old sample removed but new sample was not allocated")
)

// KindOf reports the category of err, or KindInternal when err carries no domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf reports the machine-readable code of err, or "internal_error".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal_error"
}

// CorrectionPartiallyAppliedError is returned when the old sample of a verified
// correction was removed but allocating the new code failed.
type CorrectionPartiallyAppliedError struct {
	OldCode string
	NewCode string
	PoolID  string
	Err     error
}

func (e *CorrectionPartiallyAppliedError) Error() string {
	return fmt.Sprintf("correction %s -> %s partially applied: %v", e.OldCode, e.NewCode, e.Err)
}

func (e *CorrectionPartiallyAppliedError) Unwrap() []error {
	return []error{ErrCorrectionPartiallyApplied, e.Err}
}
