package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/naiverag/internal/core/domain"
)

func seedStore(t *testing.T, texts map[string]string) *memory.VectorStore {
	t.Helper()
	store := memory.NewVectorStore()
	embedder := &letterEmbedder{}
	for id, text := range texts {
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(context.Background(), id, text, vec))
	}
	return store
}

func TestRetriever_EmptyStore(t *testing.T) {
	r := NewRetriever(&letterEmbedder{}, memory.NewVectorStore())

	got, err := r.Query(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRetriever_NearestFirst(t *testing.T) {
	store := seedStore(t, map[string]string{
		"doc1_chunk1": "aaaa",
		"doc2_chunk1": "zzzz",
		"doc3_chunk1": "aaaz",
	})
	r := NewRetriever(&letterEmbedder{}, store)

	got, err := r.Query(context.Background(), "aaaa", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"aaaa", "aaaz"}, got)
}

func TestRetriever_DefaultN(t *testing.T) {
	store := seedStore(t, map[string]string{
		"doc1_chunk1": "a", "doc2_chunk1": "b", "doc3_chunk1": "c",
	})
	r := NewRetriever(&letterEmbedder{}, store)

	for _, n := range []int{0, -3} {
		got, err := r.Query(context.Background(), "a", n)
		require.NoError(t, err)
		assert.Len(t, got, domain.DefaultResultCount)
	}

	got, err := r.Query(context.Background(), "a", 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRetriever_SearchKeepsIDs(t *testing.T) {
	store := seedStore(t, map[string]string{"doc1_chunk1": "hello world"})
	r := NewRetriever(&letterEmbedder{}, store)

	hits, err := r.Search(context.Background(), domain.Query{Question: "hello world", N: 1})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc1_chunk1", hits[0].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-6)
}

func TestRetriever_EmbedFailure(t *testing.T) {
	r := NewRetriever(&letterEmbedder{failOn: "?"}, memory.NewVectorStore())

	_, err := r.Query(context.Background(), "why?", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestRetriever_StoreFailure(t *testing.T) {
	boom := errors.New("store offline")
	store := &failingStore{inner: memory.NewVectorStore(), queryErr: boom}
	r := NewRetriever(&letterEmbedder{}, store)

	_, err := r.Query(context.Background(), "q", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}
