// Package storage opens the vector store and ingest run store selected by
// the store settings.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// RunsFileName holds ingest history when vectors live in Qdrant.
const RunsFileName = "runs.db"

// Stores bundles the stores used by the pipeline.
type Stores struct {
	Vectors driven.VectorStore
	Runs    driven.IngestRunStore

	// Location describes where the data lives, for status output.
	Location string

	closers []func() error
}

// Close releases every underlying store.
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open creates the stores for settings.Store.Backend.
//
// sqlite keeps vectors and runs in one file. qdrant keeps vectors on the
// server and runs in a sqlite file next to Store.Path. memory keeps both
// in process.
func Open(settings *domain.AppSettings) (*Stores, error) {
	if !settings.Store.Backend.IsValid() {
		return nil, fmt.Errorf("%w: unsupported store backend %q",
			domain.ErrInvalidConfiguration, settings.Store.Backend)
	}

	switch settings.Store.Backend {
	case domain.StoreBackendSQLite:
		db, err := sqlite.NewStore(settings.Store.Path)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Vectors:  db.VectorStore(),
			Runs:     db.RunStore(),
			Location: db.Path(),
			closers:  []func() error{db.Close},
		}, nil

	case domain.StoreBackendQdrant:
		vectors, err := qdrant.NewStore(qdrant.Config{
			Host:       settings.Qdrant.Host,
			Port:       settings.Qdrant.Port,
			Collection: settings.Store.Collection,
		})
		if err != nil {
			return nil, err
		}
		runsPath := ""
		if settings.Store.Path != "" {
			runsPath = filepath.Join(filepath.Dir(settings.Store.Path), RunsFileName)
		}
		db, err := sqlite.NewStore(runsPath)
		if err != nil {
			vectors.Close()
			return nil, err
		}
		return &Stores{
			Vectors: vectors,
			Runs:    db.RunStore(),
			Location: fmt.Sprintf("qdrant://%s:%d/%s",
				settings.Qdrant.Host, settings.Qdrant.Port, settings.Store.Collection),
			closers: []func() error{vectors.Close, db.Close},
		}, nil

	case domain.StoreBackendMemory:
		vectors := memory.NewVectorStore()
		return &Stores{
			Vectors:  vectors,
			Runs:     memory.NewRunStore(),
			Location: "memory",
			closers:  []func() error{vectors.Close},
		}, nil

	default:
		return nil, fmt.Errorf("%w: store backend %q has no opener",
			domain.ErrInvalidConfiguration, settings.Store.Backend)
	}
}
