// Package qdrant provides a VectorStore backed by a Qdrant server over gRPC.
//
// Chunk ids such as "doc1_chunk2" are not valid Qdrant point ids, so each
// is mapped to a name-based UUID and the original id is kept in the payload.
// The collection is created on first upsert, sized to that vector.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Payload keys.
const (
	payloadChunkID = "chunk_id"
	payloadText    = "text"
)

// Config holds connection settings.
type Config struct {
	Host       string
	Port       int
	Collection string
	APIKey     string
}

// Store is a Qdrant-backed vector store.
type Store struct {
	client     *qdrant.Client
	collection string

	mu    sync.Mutex
	ready bool
}

// NewStore connects to Qdrant. The gRPC connection is established lazily.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("qdrant: %w: host is required", domain.ErrInvalidConfiguration)
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultQdrantPort
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: connect %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Store{client: client, collection: cfg.Collection}, nil
}

// ensureCollection creates the collection sized to dims if it is missing.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		logger.Debug("qdrant: creating collection %s (%d dims)", s.collection, dims)
		if err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: &qdrant.VectorsConfig{
				Config: &qdrant.VectorsConfig_Params{
					Params: &qdrant.VectorParams{
						Size:     uint64(dims),
						Distance: qdrant.Distance_Cosine,
					},
				},
			},
		}); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	s.ready = true
	return nil
}

// Upsert stores text and vector under id. The write waits for the server
// to apply it so that a following Query sees it.
func (s *Store) Upsert(ctx context.Context, id, text string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("upsert %s: %w: empty vector", id, domain.ErrInvalidConfiguration)
	}
	if err := s.ensureCollection(ctx, len(vector)); err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         []*qdrant.PointStruct{newPoint(id, text, vector)},
	})
	if err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

// Query returns up to n nearest entries. Distance is 1 - cosine score.
func (s *Store) Query(ctx context.Context, vector []float32, n int) ([]domain.Hit, error) {
	if n <= 0 {
		return []domain.Hit{}, nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("query: check collection: %w", err)
	}
	if !exists {
		return []domain.Hit{}, nil
	}

	limit := uint64(n)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return toHits(points), nil
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("count: check collection: %w", err)
	}
	if !exists {
		return 0, nil
	}

	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return int(n), nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	if s.client == nil {
		return errors.New("qdrant: store not initialised")
	}
	return s.client.Close()
}

// pointID maps a chunk id to a stable UUID.
func pointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunkID)).String()
}

func newPoint(id, text string, vector []float32) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(pointID(id)),
		Vectors: qdrant.NewVectors(vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			payloadChunkID: id,
			payloadText:    text,
		}),
	}
}

func toHits(points []*qdrant.ScoredPoint) []domain.Hit {
	hits := make([]domain.Hit, 0, len(points))
	for _, p := range points {
		hits = append(hits, domain.Hit{
			ID:       payloadString(p.GetPayload(), payloadChunkID),
			Text:     payloadString(p.GetPayload(), payloadText),
			Distance: 1 - float64(p.GetScore()),
		})
	}
	return hits
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	return v.GetStringValue()
}
