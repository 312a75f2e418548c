package app

import "github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"

// choosePool draws one pool with probability remaining(i) / sum(remaining).
// Pools without remaining capacity are never chosen.
func choosePool(pools []domain.Pool, intn func(n int) int) (domain.Pool, bool) {
	total := 0
	for _, p := range pools {
		if r := p.Remaining(); r > 0 {
			total += r
		}
	}
	if total == 0 {
		return domain.Pool{}, false
	}

	n := intn(total)
	for _, p := range pools {
		r := p.Remaining()
		if r <= 0 {
			continue
		}
		if n < r {
			return p, true
		}
		n -= r
	}
	return domain.Pool{}, false
}
