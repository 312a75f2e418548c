package app

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/domain"
	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/storage/memory"
	"github.com/stretchr/testify/require"
)

func newStoreWithPools(t *testing.T, pools ...domain.Pool) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	for _, p := range pools {
		created, err := store.EnsurePool(context.Background(), p)
		require.NoError(t, err)
		require.True(t, created)
	}
	return store
}

// seedSample binds code to poolID and counts it against the pool.
func seedSample(t *testing.T, store *memory.Store, poolID, code string) {
	t.Helper()
	ctx := context.Background()
	err := store.WithTx(ctx, func(txCtx context.Context) error {
		pool, err := store.GetPoolForUpdate(txCtx, poolID)
		if err != nil {
			return err
		}
		if err := pool.Increment(1); err != nil {
			return err
		}
		if err := store.UpdatePoolAllocated(txCtx, pool.ID, pool.Allocated); err != nil {
			return err
		}
		return store.CreateSample(txCtx, domain.Sample{ID: "seed-" + code, Code: code, PoolID: poolID})
	})
	require.NoError(t, err)
}

func seededIntN(seed uint64) func(int) int {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)).IntN
}

func countAction(entries []domain.LedgerEntry, action domain.LedgerAction) int {
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}
