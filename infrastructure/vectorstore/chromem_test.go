package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turinglabs/kbchat/chatbot/domain"
)

func TestChromemStore_SearchEmptyCollection(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore("test")
	require.NoError(t, err)

	chunks, err := store.Search(ctx, []float32{1, 0, 0}, 0.5, 5)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore("test")
	require.NoError(t, err)

	err = store.AddChunks(ctx, []domain.Chunk{
		{ID: "c1", Content: "vacation policy", Embedding: []float32{1, 0, 0}, Metadata: map[string]string{"document_id": "doc-1"}},
		{ID: "c2", Content: "expense reports", Embedding: []float32{0, 1, 0}, Metadata: map[string]string{"document_id": "doc-1"}},
	})
	require.NoError(t, err)

	chunks, err := store.Search(ctx, []float32{1, 0, 0}, 0.5, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c1", chunks[0].ID)
	assert.Equal(t, "vacation policy", chunks[0].Content)
	assert.Equal(t, "doc-1", chunks[0].Metadata["document_id"])
	assert.GreaterOrEqual(t, chunks[0].Similarity, float32(0.5))
}

func TestChromemStore_SearchRespectsLimit(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore("test")
	require.NoError(t, err)

	err = store.AddChunks(ctx, []domain.Chunk{
		{ID: "c1", Content: "a", Embedding: []float32{1, 0, 0}},
		{ID: "c2", Content: "b", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "c3", Content: "c", Embedding: []float32{0.8, 0.2, 0}},
	})
	require.NoError(t, err)

	chunks, err := store.Search(ctx, []float32{1, 0, 0}, 0, 2)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestChromemStore_SkipsChunksWithoutEmbedding(t *testing.T) {
	ctx := context.Background()
	store, err := NewChromemStore("test")
	require.NoError(t, err)

	err = store.AddChunks(ctx, []domain.Chunk{
		{ID: "c1", Content: "no embedding"},
		{ID: "c2", Content: "has embedding", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	chunks, err := store.Search(ctx, []float32{1, 0, 0}, 0, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c2", chunks[0].ID)
}
