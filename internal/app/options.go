package app

import (
	"math/rand/v2"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/metrics"
	"go.uber.org/zap"
)

type settings struct {
	logger    *zap.Logger
	metrics   *metrics.Metrics
	intn      func(n int) int
	otpWindow time.Duration
	otpGen    func() (string, error)
}

const defaultOTPWindow = 10 * time.Minute

func newSettings(opts []Option) settings {
	s := settings{
		logger:    zap.NewNop(),
		intn:      rand.IntN,
		otpWindow: defaultOTPWindow,
		otpGen:    generateOTP,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a service.
type Option func(*settings)

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithRandom replaces the source used for weighted pool selection.
// intn must return a value in [0, n) and be safe for the callers' concurrency.
func WithRandom(intn func(n int) int) Option {
	return func(s *settings) {
		if intn != nil {
			s.intn = intn
		}
	}
}

// WithOTPWindow overrides how long a correction OTP stays valid.
func WithOTPWindow(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.otpWindow = d
		}
	}
}

// WithOTPGenerator overrides OTP generation (useful for tests).
func WithOTPGenerator(gen func() (string, error)) Option {
	return func(s *settings) {
		if gen != nil {
			s.otpGen = gen
		}
	}
}
