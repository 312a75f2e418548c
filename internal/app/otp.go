package app

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

var otpLimit = big.NewInt(1_000_000)

// generateOTP returns a uniformly random zero-padded 6-digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpLimit)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
