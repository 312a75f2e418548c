package domain

import "time"

// CorrectionRequest is an OTP challenge to replace a sample code.
// IsVerified flips once and never goes back.
type CorrectionRequest struct {
	ID             string
	ContactAddress string
	OldCode        string
	NewCode        string
	OTP            string
	CreatedAt      time.Time
	IsVerified     bool
}

// CorrectionHandle correlates a verification attempt with its request.
type CorrectionHandle struct {
	ContactAddress string
	OldCode        string
	NewCode        string
}

// Expired reports whether the request is older than window at now.
func (r CorrectionRequest) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.CreatedAt) > window
}
