package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedPool(t *testing.T, s *Store, id, name string, allocated, total int) {
	t.Helper()
	created, err := s.EnsurePool(context.Background(), domain.Pool{ID: id, Name: name, Allocated: allocated, Total: total})
	require.NoError(t, err)
	require.True(t, created)
}

func TestStore_EnsurePoolIsIdempotentByName(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPool(t, s, "p1", "Mumbai (WR)", 3, 50)

	created, err := s.EnsurePool(ctx, domain.Pool{ID: "p2", Name: "Mumbai (WR)", Total: 999})
	require.NoError(t, err)
	assert.False(t, created)

	pools, err := s.ListPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, domain.Pool{ID: "p1", Name: "Mumbai (WR)", Allocated: 3, Total: 50}, pools[0])
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPool(t, s, "p1", "A", 0, 10)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.UpdatePoolAllocated(txCtx, "p1", 5))
		require.NoError(t, s.CreateSample(txCtx, domain.Sample{ID: "s1", Code: "S1", PoolID: "p1"}))
		q := 1
		require.NoError(t, s.AppendLedger(txCtx, domain.LedgerEntry{ID: "l1", PoolID: "p1", Action: domain.ActionAllocate, Quantity: &q}))
		require.NoError(t, s.CreateCorrectionRequest(txCtx, domain.CorrectionRequest{ID: "c1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	pool, err := s.GetPool(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 0, pool.Allocated)

	exists, err := s.SampleExists(ctx, "S1")
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := s.ListLedger(ctx, domain.LedgerFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, s.Corrections(ctx))
}

func TestStore_UpdatePoolAllocatedEnforcesBounds(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPool(t, s, "p1", "A", 0, 2)

	assert.ErrorIs(t, s.UpdatePoolAllocated(ctx, "p1", 3), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, s.UpdatePoolAllocated(ctx, "p1", -1), domain.ErrCapacityExceeded)
	assert.ErrorIs(t, s.UpdatePoolAllocated(ctx, "missing", 1), domain.ErrPoolNotFound)
}

func TestStore_CreateSampleRejectsDuplicates(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPool(t, s, "p1", "A", 0, 2)

	require.NoError(t, s.CreateSample(ctx, domain.Sample{ID: "s1", Code: "S1", PoolID: "p1"}))
	assert.ErrorIs(t, s.CreateSample(ctx, domain.Sample{ID: "s2", Code: "S1", PoolID: "p1"}), domain.ErrDuplicateCode)
	// Codes are case-sensitive.
	assert.NoError(t, s.CreateSample(ctx, domain.Sample{ID: "s3", Code: "s1", PoolID: "p1"}))
}

func TestStore_ListLedgerFiltersAndOrders(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedPool(t, s, "p1", "A", 0, 10)
	seedPool(t, s, "p2", "B", 0, 10)

	day := time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)
	one := 1
	entries := []domain.LedgerEntry{
		{ID: "e1", PoolID: "p1", Action: domain.ActionAllocate, Quantity: &one, SampleCodes: []string{"S1"}, CreatedAt: day},
		{ID: "e2", PoolID: "p2", Action: domain.ActionProcess, Quantity: &one, CreatedAt: day.Add(time.Hour)},
		{ID: "e3", PoolID: "p1", Action: domain.ActionProcess, Quantity: &one, CreatedAt: day.AddDate(0, 0, 1)},
	}
	for _, e := range entries {
		require.NoError(t, s.AppendLedger(ctx, e))
	}

	all, err := s.ListLedger(ctx, domain.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "A", all[0].PoolName)

	byPool, err := s.ListLedger(ctx, domain.LedgerFilter{PoolID: "p1"})
	require.NoError(t, err)
	assert.Len(t, byPool, 2)

	byAction, err := s.ListLedger(ctx, domain.LedgerFilter{Action: domain.ActionProcess})
	require.NoError(t, err)
	assert.Len(t, byAction, 2)

	byDate, err := s.ListLedger(ctx, domain.LedgerFilter{Date: &day})
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, "e2", byDate[0].ID)

	limited, err := s.ListLedger(ctx, domain.LedgerFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "e3", limited[0].ID)
}

func TestStore_FindPendingCorrectionReturnsNewestUnverified(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	now := time.Date(2025, 2, 10, 8, 0, 0, 0, time.UTC)
	handle := domain.CorrectionHandle{ContactAddress: "ops@example.com", OldCode: "OLD1", NewCode: "NEW1"}

	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, s.CreateCorrectionRequest(ctx, domain.CorrectionRequest{
			ID:             id,
			ContactAddress: handle.ContactAddress,
			OldCode:        handle.OldCode,
			NewCode:        handle.NewCode,
			CreatedAt:      now.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.MarkCorrectionVerified(ctx, "c3"))

	got, err := s.FindPendingCorrection(ctx, handle)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c2", got.ID)

	other, err := s.FindPendingCorrection(ctx, domain.CorrectionHandle{ContactAddress: "ops@example.com", OldCode: "OLD1", NewCode: "NEW2"})
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestStore_DeleteCorrectionRequest(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateCorrectionRequest(ctx, domain.CorrectionRequest{ID: "c1"}))
	require.NoError(t, s.CreateCorrectionRequest(ctx, domain.CorrectionRequest{ID: "c2"}))

	require.NoError(t, s.DeleteCorrectionRequest(ctx, "c1"))
	require.NoError(t, s.DeleteCorrectionRequest(ctx, "missing"))

	got := s.Corrections(ctx)
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}
