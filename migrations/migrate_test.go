package migrations_test

import (
	"context"
	"testing"

	"github.com/Sparsh-Bhaskar/Sample-Fit/internal/testutil"
	"github.com/Sparsh-Bhaskar/Sample-Fit/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_IsIdempotent(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `DROP TABLE IF EXISTS schema_migrations`)
	require.NoError(t, err)

	require.NoError(t, migrations.Apply(ctx, pool))

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.GreaterOrEqual(t, count, 2)

	require.NoError(t, migrations.Apply(ctx, pool))

	var again int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&again))
	assert.Equal(t, count, again)

	status, err := migrations.Status(ctx, pool)
	require.NoError(t, err)
	require.Len(t, status, count)
	for _, m := range status {
		assert.True(t, m.Applied, m.Name)
	}
}

func TestApply_EnforcesCapacityBounds(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()
	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)

	poolID := testutil.InsertPool(t, ctx, pool, "Bounded", 1)

	_, err := pool.Exec(ctx, `UPDATE pools SET allocated = 2 WHERE id = $1`, poolID)
	require.Error(t, err)
	_, err = pool.Exec(ctx, `UPDATE pools SET allocated = -1 WHERE id = $1`, poolID)
	require.Error(t, err)
}
