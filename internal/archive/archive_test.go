package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/inventio/internal/pipeline"
)

func TestSaveAndQuery(t *testing.T) {
	store, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	reports := []pipeline.Report{
		{Slug: "cart", Seed: 0, State: pipeline.StateEvaluated},
		{Slug: "screw", Seed: 7, State: pipeline.StateFailed, FailedStage: "simulate", Error: "diverged"},
		{Slug: "cart", Seed: 42, State: pipeline.StateEvaluated},
	}
	for _, r := range reports {
		id, err := store.Save(ctx, r, []byte("slug: "+r.Slug+"\n"))
		require.NoError(t, err)
		assert.Greater(t, id, int64(0))
	}

	recent, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// Most recent first.
	assert.Equal(t, int64(42), recent[0].Seed)
	assert.Equal(t, "cart", recent[0].Slug)
	assert.False(t, recent[0].CreatedAt.IsZero())

	carts, err := store.BySlug(ctx, "cart", 10)
	require.NoError(t, err)
	require.Len(t, carts, 2)
	for _, e := range carts {
		assert.Equal(t, "cart", e.Slug)
	}

	failedEntry := recent[1]
	assert.Equal(t, "simulate", failedEntry.FailedStage)
	assert.Equal(t, "diverged", failedEntry.Error)
	assert.Contains(t, failedEntry.ReportYAML, "slug: screw")
}

func TestRecentHonorsLimit(t *testing.T) {
	store, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.Save(ctx, pipeline.Report{Slug: "cart", Seed: int64(i), State: pipeline.StateEvaluated}, []byte("{}"))
		require.NoError(t, err)
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestOpenCreatesFileBackedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), pipeline.Report{Slug: "cart", State: pipeline.StateEvaluated}, []byte("{}"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening sees the persisted run.
	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })
	entries, err := reopened.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
