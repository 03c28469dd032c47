package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type entry struct {
	text   string
	vector []float32
	seq    int
}

// VectorStore is an in-memory implementation of driven.VectorStore.
// Query is a linear cosine scan.
type VectorStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	nextSeq int
	closed  bool
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		entries: make(map[string]entry),
	}
}

// Upsert stores or overwrites an entry. The vector is copied.
func (s *VectorStore) Upsert(ctx context.Context, id, text string, vector []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("upsert %s: store closed", id)
	}

	seq := s.nextSeq
	if existing, ok := s.entries[id]; ok {
		seq = existing.seq
	} else {
		s.nextSeq++
	}
	s.entries[id] = entry{
		text:   text,
		vector: append([]float32(nil), vector...),
		seq:    seq,
	}
	return nil
}

// Query returns up to n entries closest to vector.
// Ties keep first-insertion order.
func (s *VectorStore) Query(ctx context.Context, vector []float32, n int) ([]domain.Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []domain.Hit{}, nil
	}

	s.mu.RLock()
	type scored struct {
		hit domain.Hit
		seq int
	}
	all := make([]scored, 0, len(s.entries))
	for id, e := range s.entries {
		all = append(all, scored{
			hit: domain.Hit{ID: id, Text: e.text, Distance: domain.CosineDistance(vector, e.vector)},
			seq: e.seq,
		})
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].hit.Distance != all[j].hit.Distance {
			return all[i].hit.Distance < all[j].hit.Distance
		}
		return all[i].seq < all[j].seq
	})

	hits := make([]domain.Hit, 0, min(n, len(all)))
	for i := 0; i < len(all) && i < n; i++ {
		hits = append(hits, all[i].hit)
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// IDs returns the stored ids in sorted order.
func (s *VectorStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close marks the store closed. Further upserts fail.
func (s *VectorStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
