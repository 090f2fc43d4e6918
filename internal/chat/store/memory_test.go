package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouzina-io/kouzina/internal/chat/store"
)

func newTestCollection(t *testing.T, s *store.MemoryStore, name string, dim int) {
	t.Helper()
	err := s.CreateCollection(context.Background(), &store.CollectionConfig{
		Name:      name,
		Dimension: dim,
	})
	require.NoError(t, err)
}

func TestMemoryStoreCreateCollection(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()

	err := s.CreateCollection(ctx, &store.CollectionConfig{Name: "recipes", Dimension: 4})
	require.NoError(t, err)

	// Creating twice is a no-op.
	err = s.CreateCollection(ctx, &store.CollectionConfig{Name: "recipes", Dimension: 4})
	require.NoError(t, err)

	err = s.CreateCollection(ctx, &store.CollectionConfig{Name: "", Dimension: 4})
	assert.Error(t, err)

	err = s.CreateCollection(ctx, &store.CollectionConfig{Name: "bad", Dimension: 0})
	assert.Error(t, err)
}

func TestMemoryStoreInsert(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	newTestCollection(t, s, "recipes", 2)

	ids, err := s.Insert(ctx, "recipes", []*store.Chunk{
		{DocumentName: "Μουσακάς", Content: "chunk one", Embedding: []float32{1, 0}},
		{DocumentName: "Μουσακάς", Content: "chunk two", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])

	count, err := s.GetStats(ctx, "recipes")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Dimension mismatch is rejected.
	_, err = s.Insert(ctx, "recipes", []*store.Chunk{
		{Content: "bad", Embedding: []float32{1, 2, 3}},
	})
	assert.Error(t, err)

	// Unknown collection is rejected.
	_, err = s.Insert(ctx, "missing", []*store.Chunk{
		{Content: "x", Embedding: []float32{1, 0}},
	})
	assert.Error(t, err)

	// Empty insert is a no-op.
	ids, err = s.Insert(ctx, "recipes", nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMemoryStoreSearch(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	newTestCollection(t, s, "recipes", 2)

	_, err := s.Insert(ctx, "recipes", []*store.Chunk{
		{DocumentName: "a", Content: "east", Embedding: []float32{1, 0}},
		{DocumentName: "b", Content: "north", Embedding: []float32{0, 1}},
		{DocumentName: "c", Content: "northeast", Embedding: []float32{1, 1}},
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, "recipes", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "east", results[0].Content)
	assert.Equal(t, "northeast", results[1].Content)
	assert.Greater(t, results[0].Score, results[1].Score)

	// topK larger than collection returns everything.
	results, err = s.Search(ctx, "recipes", []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	_, err = s.Search(ctx, "recipes", []float32{1, 0}, 0)
	assert.Error(t, err)

	_, err = s.Search(ctx, "missing", []float32{1, 0}, 2)
	assert.Error(t, err)
}

func TestMemoryStoreClose(t *testing.T) {
	s := store.NewMemoryStore()
	ctx := context.Background()
	newTestCollection(t, s, "recipes", 2)

	require.NoError(t, s.Close(ctx))

	_, err := s.GetStats(ctx, "recipes")
	assert.Error(t, err)
}
