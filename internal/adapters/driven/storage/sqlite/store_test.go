package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestNewStore(t *testing.T) {
	t.Run("creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "vectors.db")

		store, err := NewStore(path)
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, path, store.Path())
		assert.FileExists(t, path)
	})

	t.Run("records applied migrations", func(t *testing.T) {
		store := setupTestStore(t)

		var versions int
		err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions)
		require.NoError(t, err)
		assert.Equal(t, 2, versions)
	})

	t.Run("reopen is idempotent and keeps data", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vectors.db")
		ctx := context.Background()

		first, err := NewStore(path)
		require.NoError(t, err)
		require.NoError(t, first.VectorStore().Upsert(ctx, "doc1_chunk1", "hello", []float32{1, 0}))
		require.NoError(t, first.Close())

		second, err := NewStore(path)
		require.NoError(t, err)
		defer second.Close()

		count, err := second.VectorStore().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestFloat32Conversion(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3e-7}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
