package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
)

// Store keeps pools, samples, ledger entries and correction requests in process.
// WithTx serializes callers and restores the previous state when fn fails.
type Store struct {
	mu sync.Mutex

	pools       map[string]domain.Pool
	poolByName  map[string]string
	samples     map[string]domain.Sample
	ledger      []domain.LedgerEntry
	corrections []domain.CorrectionRequest
}

func NewStore() *Store {
	return &Store{
		pools:      make(map[string]domain.Pool),
		poolByName: make(map[string]string),
		samples:    make(map[string]domain.Sample),
	}
}

type txKey struct{}

type state struct {
	pools       map[string]domain.Pool
	poolByName  map[string]string
	samples     map[string]domain.Sample
	ledgerLen   int
	corrections []domain.CorrectionRequest
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// lock takes the store mutex unless ctx already runs inside WithTx.
func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) snapshot() state {
	return state{
		pools:       cloneMap(s.pools),
		poolByName:  cloneMap(s.poolByName),
		samples:     cloneMap(s.samples),
		ledgerLen:   len(s.ledger),
		corrections: slices.Clone(s.corrections),
	}
}

func (s *Store) restore(st state) {
	s.pools = st.pools
	s.poolByName = st.poolByName
	s.samples = st.samples
	s.ledger = s.ledger[:st.ledgerLen]
	s.corrections = st.corrections
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) EnsurePool(ctx context.Context, pool domain.Pool) (bool, error) {
	defer s.lock(ctx)()

	if _, exists := s.poolByName[pool.Name]; exists {
		return false, nil
	}
	if pool.Allocated < 0 || pool.Allocated > pool.Total {
		return false, domain.ErrInvalidAdjustment
	}
	s.pools[pool.ID] = pool
	s.poolByName[pool.Name] = pool.ID
	return true, nil
}

func (s *Store) ListPools(ctx context.Context) ([]domain.Pool, error) {
	defer s.lock(ctx)()

	pools := make([]domain.Pool, 0, len(s.pools))
	for _, p := range s.pools {
		pools = append(pools, p)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Name < pools[j].Name })
	return pools, nil
}

func (s *Store) GetPool(ctx context.Context, poolID string) (domain.Pool, error) {
	defer s.lock(ctx)()

	p, ok := s.pools[poolID]
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}
	return p, nil
}

// GetPoolForUpdate is GetPool; WithTx already holds the store lock.
func (s *Store) GetPoolForUpdate(ctx context.Context, poolID string) (domain.Pool, error) {
	return s.GetPool(ctx, poolID)
}

func (s *Store) UpdatePoolAllocated(ctx context.Context, poolID string, allocated int) error {
	defer s.lock(ctx)()

	p, ok := s.pools[poolID]
	if !ok {
		return domain.ErrPoolNotFound
	}
	if allocated < 0 || allocated > p.Total {
		return domain.ErrCapacityExceeded
	}
	p.Allocated = allocated
	s.pools[poolID] = p
	return nil
}

func (s *Store) SampleExists(ctx context.Context, code string) (bool, error) {
	defer s.lock(ctx)()

	_, ok := s.samples[code]
	return ok, nil
}

func (s *Store) CreateSample(ctx context.Context, sample domain.Sample) error {
	defer s.lock(ctx)()

	if _, exists := s.samples[sample.Code]; exists {
		return domain.ErrDuplicateCode
	}
	if _, ok := s.pools[sample.PoolID]; !ok {
		return domain.ErrPoolNotFound
	}
	s.samples[sample.Code] = sample
	return nil
}

func (s *Store) GetSample(ctx context.Context, code string) (domain.Sample, error) {
	defer s.lock(ctx)()

	sample, ok := s.samples[code]
	if !ok {
		return domain.Sample{}, domain.ErrSampleNotFound
	}
	return sample, nil
}

func (s *Store) GetSampleForUpdate(ctx context.Context, code string) (domain.Sample, error) {
	return s.GetSample(ctx, code)
}

func (s *Store) DeleteSample(ctx context.Context, sampleID string) error {
	defer s.lock(ctx)()

	for code, sample := range s.samples {
		if sample.ID == sampleID {
			delete(s.samples, code)
			return nil
		}
	}
	return domain.ErrSampleNotFound
}

func (s *Store) AppendLedger(ctx context.Context, entry domain.LedgerEntry) error {
	defer s.lock(ctx)()

	p, ok := s.pools[entry.PoolID]
	if !ok {
		return domain.ErrPoolNotFound
	}
	entry.PoolName = p.Name
	entry.SampleCodes = slices.Clone(entry.SampleCodes)
	if entry.Quantity != nil {
		q := *entry.Quantity
		entry.Quantity = &q
	}
	s.ledger = append(s.ledger, entry)
	return nil
}

// ListLedger returns matching entries newest first; entries with equal
// timestamps keep reverse insertion order.
func (s *Store) ListLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	defer s.lock(ctx)()

	out := make([]domain.LedgerEntry, 0)
	for i := len(s.ledger) - 1; i >= 0; i-- {
		e := s.ledger[i]
		if !filter.Matches(e) {
			continue
		}
		e.SampleCodes = slices.Clone(e.SampleCodes)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) CreateCorrectionRequest(ctx context.Context, req domain.CorrectionRequest) error {
	defer s.lock(ctx)()

	s.corrections = append(s.corrections, req)
	return nil
}

func (s *Store) FindPendingCorrection(ctx context.Context, handle domain.CorrectionHandle) (*domain.CorrectionRequest, error) {
	defer s.lock(ctx)()

	var found *domain.CorrectionRequest
	for i := range s.corrections {
		r := s.corrections[i]
		if r.IsVerified || r.ContactAddress != handle.ContactAddress ||
			r.OldCode != handle.OldCode || r.NewCode != handle.NewCode {
			continue
		}
		if found == nil || !r.CreatedAt.Before(found.CreatedAt) {
			found = &r
		}
	}
	return found, nil
}

func (s *Store) MarkCorrectionVerified(ctx context.Context, requestID string) error {
	defer s.lock(ctx)()

	for i := range s.corrections {
		if s.corrections[i].ID == requestID {
			s.corrections[i].IsVerified = true
			return nil
		}
	}
	return domain.ErrNoPendingRequest
}

func (s *Store) DeleteCorrectionRequest(ctx context.Context, requestID string) error {
	defer s.lock(ctx)()

	s.corrections = slices.DeleteFunc(s.corrections, func(r domain.CorrectionRequest) bool {
		return r.ID == requestID
	})
	return nil
}

// Corrections returns a copy of every stored correction request.
func (s *Store) Corrections(ctx context.Context) []domain.CorrectionRequest {
	defer s.lock(ctx)()
	return slices.Clone(s.corrections)
}
