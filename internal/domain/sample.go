package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Sample is a unique code bound to exactly one pool.
type Sample struct {
	ID        string
	Code      string
	PoolID    string
	CreatedAt time.Time
}

// NormalizeCode trims surrounding whitespace and rejects codes that cannot be
// stored as text.
func NormalizeCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", ErrCodeRequired
	}
	if !utf8.ValidString(code) || strings.ContainsRune(code, 0) {
		return "", ErrInvalidCode
	}
	return code, nil
}
