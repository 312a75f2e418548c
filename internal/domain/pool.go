package domain

// Pool is a named region with a bounded number of sample slots.
type Pool struct {
	ID        string
	Name      string
	Allocated int
	Total     int
}

func (p Pool) Remaining() int {
	return p.Total - p.Allocated
}

// Increment reserves n slots.
func (p *Pool) Increment(n int) error {
	if n <= 0 {
		return ErrInvalidCount
	}
	if p.Allocated+n > p.Total {
		return ErrCapacityExceeded
	}
	p.Allocated += n
	return nil
}

// Decrement releases n slots.
func (p *Pool) Decrement(n int) error {
	if n <= 0 {
		return ErrInvalidCount
	}
	if n > p.Allocated {
		return ErrInvalidAdjustment
	}
	p.Allocated -= n
	return nil
}

// Release frees one slot without going below zero.
func (p *Pool) Release() {
	if p.Allocated > 0 {
		p.Allocated--
	}
}

// RegionSeed is a bootstrap entry for a pool.
type RegionSeed struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}
