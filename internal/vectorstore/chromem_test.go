package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	store, err := NewChromemStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestChromemPutGet(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	rec := &Record{
		ID:         "doc-1",
		Path:       "notes/todo.txt",
		ChunkIndex: 2,
		Content:    "buy milk",
		Vector:     []float32{1, 0, 0},
		Provider:   "local",
		Model:      "local-sha256",
	}
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes/todo.txt", got.Path)
	assert.Equal(t, 2, got.ChunkIndex)
	assert.Equal(t, "buy milk", got.Content)
	assert.Equal(t, "local-sha256", got.Model)
}

func TestChromemGetNotFound(t *testing.T) {
	store := newTestChromemStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChromemSearch(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Record{
		ID: "exact", Path: "a.txt", ChunkIndex: 0,
		Content: "a", Vector: []float32{1, 0, 0}, Provider: "local", Model: "m",
	}))
	require.NoError(t, store.Put(ctx, &Record{
		ID: "orthogonal", Path: "b.txt", ChunkIndex: 0,
		Content: "b", Vector: []float32{0, 1, 0}, Provider: "local", Model: "m",
	}))

	results, err := store.Search(ctx, []float32{1, 0, 0}, 1, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "exact", results[0].ID)
	assert.InDelta(t, 1.0, results[0].SimilarityScore, 1e-4)
}

func TestChromemSearchEmptyStore(t *testing.T) {
	store := newTestChromemStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemDeleteByPath(t *testing.T) {
	store := newTestChromemStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, &Record{
		ID: "a0", Path: "doc.txt", ChunkIndex: 0,
		Content: "x", Vector: []float32{1, 0}, Provider: "local", Model: "m",
	}))
	require.NoError(t, store.Put(ctx, &Record{
		ID: "a1", Path: "doc.txt", ChunkIndex: 1,
		Content: "y", Vector: []float32{0, 1}, Provider: "local", Model: "m",
	}))
	require.NoError(t, store.Put(ctx, &Record{
		ID: "b0", Path: "other.txt", ChunkIndex: 0,
		Content: "z", Vector: []float32{1, 1}, Provider: "local", Model: "m",
	}))

	deleted, err := store.DeleteByPath(ctx, "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBackendFactory(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "default sqlite", backend: ""},
		{name: "sqlite", backend: "sqlite"},
		{name: "chromem", backend: "chromem"},
		{name: "unknown", backend: "pinecone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := dir
			if tt.backend != "chromem" {
				path = dir + "/index.db"
			}

			store, err := New(Config{Backend: tt.backend, Path: path})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedBackend)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, store.Close())
		})
	}
}
