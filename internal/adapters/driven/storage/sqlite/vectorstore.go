package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

const metaDimensions = "dimensions"

// vectorStore implements driven.VectorStore with a brute-force cosine scan.
type vectorStore struct {
	store *Store
}

var (
	_ driven.VectorStore       = (*vectorStore)(nil)
	_ driven.DimensionReporter = (*vectorStore)(nil)
)

// Upsert stores or overwrites a chunk. The first upsert fixes the vector
// dimensionality of the store; later vectors must match it.
func (s *vectorStore) Upsert(ctx context.Context, id, text string, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty vector for %s", domain.ErrInvalidConfiguration, id)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := checkDimensions(ctx, tx, len(vector)); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chunks (id, text, embedding, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`, id, text, float32SliceToBytes(vector))
	if err != nil {
		return fmt.Errorf("upserting chunk %s: %w", id, err)
	}

	return tx.Commit()
}

// checkDimensions records the dimensionality on first use and rejects
// vectors that do not match it.
func checkDimensions(ctx context.Context, tx *sql.Tx, dims int) error {
	var stored string
	err := tx.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaDimensions).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = tx.ExecContext(ctx, "INSERT INTO store_meta (key, value) VALUES (?, ?)",
			metaDimensions, strconv.Itoa(dims))
		if err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading dimensions: %w", err)
	}

	want, err := strconv.Atoi(stored)
	if err != nil {
		return fmt.Errorf("parsing stored dimensions %q: %w", stored, err)
	}
	if want != dims {
		return fmt.Errorf("%w: store holds %d-dimensional vectors, got %d",
			domain.ErrInvalidConfiguration, want, dims)
	}
	return nil
}

// Query scores every stored chunk against vector and returns the n closest.
// Ties keep insertion order.
func (s *vectorStore) Query(ctx context.Context, vector []float32, n int) ([]domain.Hit, error) {
	hits := []domain.Hit{}
	if n <= 0 {
		return hits, nil
	}

	rows, err := s.store.db.QueryContext(ctx, "SELECT id, text, embedding FROM chunks ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			hit  domain.Hit
			blob []byte
		)
		if err := rows.Scan(&hit.ID, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		hit.Distance = domain.CosineDistance(vector, bytesToFloat32Slice(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	return hits, nil
}

// Count returns the number of stored chunks.
func (s *vectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// Dimensions returns the recorded vector dimensionality, or 0 if the
// store is empty.
func (s *vectorStore) Dimensions(ctx context.Context) (int, error) {
	var stored string
	err := s.store.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaDimensions).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimensions: %w", err)
	}
	return strconv.Atoi(stored)
}

// Close closes the underlying database.
func (s *vectorStore) Close() error {
	return s.store.Close()
}
