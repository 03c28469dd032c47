package qdrant

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

func TestNewStore_RequiresHost(t *testing.T) {
	_, err := NewStore(Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestPointID(t *testing.T) {
	a := pointID("doc1_chunk1")
	b := pointID("doc1_chunk1")
	c := pointID("doc1_chunk2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestNewPoint(t *testing.T) {
	p := newPoint("doc2_chunk1", "hello", []float32{1, 2})

	assert.Equal(t, pointID("doc2_chunk1"), p.GetId().GetUuid())
	assert.Equal(t, "doc2_chunk1", p.GetPayload()[payloadChunkID].GetStringValue())
	assert.Equal(t, "hello", p.GetPayload()[payloadText].GetStringValue())
}

func TestToHits(t *testing.T) {
	points := []*qdrant.ScoredPoint{
		{
			Id:      qdrant.NewIDUUID(pointID("doc1_chunk1")),
			Payload: qdrant.NewValueMap(map[string]any{payloadChunkID: "doc1_chunk1", payloadText: "a"}),
			Score:   1,
		},
		{
			Id:      qdrant.NewIDUUID(pointID("doc1_chunk2")),
			Payload: qdrant.NewValueMap(map[string]any{payloadChunkID: "doc1_chunk2", payloadText: "b"}),
			Score:   0.25,
		},
		{Score: 0},
	}

	hits := toHits(points)
	require.Len(t, hits, 3)
	assert.Equal(t, domain.Hit{ID: "doc1_chunk1", Text: "a", Distance: 0}, hits[0])
	assert.Equal(t, "b", hits[1].Text)
	assert.InDelta(t, 0.75, hits[1].Distance, 1e-9)
	assert.Equal(t, "", hits[2].Text)
}

func TestToHits_Empty(t *testing.T) {
	hits := toHits(nil)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

// TestStore_Live runs against a real server when QDRANT_TEST_HOST is set.
func TestStore_Live(t *testing.T) {
	host := os.Getenv("QDRANT_TEST_HOST")
	if host == "" {
		t.Skip("QDRANT_TEST_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("QDRANT_TEST_PORT"))

	collection := "naiverag_test_" + uuid.NewString()[:8]
	store, err := NewStore(Config{Host: host, Port: port, Collection: collection})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.client.DeleteCollection(context.Background(), collection)
		_ = store.Close()
	})

	ctx := context.Background()
	hits, err := store.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Empty(t, hits)

	require.NoError(t, store.Upsert(ctx, "doc1_chunk1", "east", []float32{1, 0}))
	require.NoError(t, store.Upsert(ctx, "doc1_chunk2", "north", []float32{0, 1}))
	require.NoError(t, store.Upsert(ctx, "doc1_chunk1", "east again", []float32{1, 0}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	hits, err = store.Query(ctx, []float32{1, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "doc1_chunk1", hits[0].ID)
	assert.Equal(t, "east again", hits[0].Text)
}
