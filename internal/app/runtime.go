// Package app wires adapters and services from the application settings.
// Every component is built on first use, so commands that only read
// settings never need a credential or open the store.
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/ai"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage"
	"github.com/custodia-labs/naiverag/internal/connectors/filesystem"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/core/services"
	"github.com/custodia-labs/naiverag/internal/postprocessors/chunker"
)

// PromptDirName is the prompt directory next to the config file.
const PromptDirName = "prompts"

// Runtime owns the adapters built for one process.
type Runtime struct {
	configStore driven.ConfigStore
	settingsSvc *services.SettingsService

	mu       sync.Mutex
	settings *domain.AppSettings
	stores   *storage.Stores
	ai       *ai.Services
	prompts  driven.PromptStore
}

// New opens the config file at configPath, or ~/.naiverag/config.toml
// when configPath is empty.
func New(configPath string) (*Runtime, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath == "" {
		store, err = file.NewConfigStore("")
	} else {
		abs, absErr := filepath.Abs(configPath)
		if absErr != nil {
			return nil, fmt.Errorf("resolve config path: %w", absErr)
		}
		store, err = file.NewConfigStoreAt(abs)
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	return NewWithConfigStore(store), nil
}

// NewWithConfigStore builds a Runtime over an existing config store.
func NewWithConfigStore(store driven.ConfigStore) *Runtime {
	return &Runtime{
		configStore: store,
		settingsSvc: services.NewSettingsService(store),
	}
}

// Settings returns the settings service.
func (r *Runtime) Settings() driving.SettingsService {
	return r.settingsSvc
}

// Indexer builds the ingest pipeline. progress may be nil.
func (r *Runtime) Indexer(progress driving.ProgressFunc) (driving.Indexer, error) {
	ix, err := r.indexer(progress)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func (r *Runtime) indexer(progress driving.ProgressFunc) (*services.Indexer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.loadSettings()
	if err != nil {
		return nil, err
	}
	splitter, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		return nil, err
	}
	providers, err := r.providers(false)
	if err != nil {
		return nil, err
	}
	stores, err := r.openStores()
	if err != nil {
		return nil, err
	}

	return services.NewIndexer(
		filesystem.New(filesystem.WithSkipInvalid(settings.Loader.SkipInvalid)),
		splitter,
		providers.Embedding,
		stores.Vectors,
		services.WithWorkers(settings.Indexer.Workers),
		services.WithQueueSize(settings.Indexer.Queue),
		services.WithRunStore(stores.Runs),
		services.WithProgress(progress),
	), nil
}

// Watcher builds an IngestWatcher that re-ingests dir on change.
func (r *Runtime) Watcher(
	dir string,
	progress driving.ProgressFunc,
	onResult func(domain.WatchResult),
) (driving.IngestWatcher, error) {
	indexer, err := r.indexer(progress)
	if err != nil {
		return nil, err
	}
	return services.NewIngestWatcher(indexer, filesystem.NewWatcher(dir, filesystem.DefaultDebounce), dir, onResult), nil
}

// Retriever builds the query pipeline.
func (r *Runtime) Retriever() (driving.Retriever, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.loadSettings(); err != nil {
		return nil, err
	}
	providers, err := r.providers(false)
	if err != nil {
		return nil, err
	}
	stores, err := r.openStores()
	if err != nil {
		return nil, err
	}
	return services.NewRetriever(providers.Embedding, stores.Vectors), nil
}

// Answerer builds the answer generator.
func (r *Runtime) Answerer() (driving.Answerer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.loadSettings()
	if err != nil {
		return nil, err
	}
	providers, err := r.providers(true)
	if err != nil {
		return nil, err
	}
	prompts, err := r.promptStore()
	if err != nil {
		return nil, err
	}
	return services.NewAnswerer(providers.Chat,
		services.WithPromptStore(prompts),
		services.WithMaxContextChars(settings.LLM.MaxContextChars),
	), nil
}

// Status builds the status service. It needs no credential.
func (r *Runtime) Status() (driving.StatusService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.loadSettings()
	if err != nil {
		return nil, err
	}
	stores, err := r.openStores()
	if err != nil {
		return nil, err
	}
	return services.NewStatusService(stores.Vectors, stores.Runs, *settings, stores.Location), nil
}

// Ping checks that both providers accept the credential.
func (r *Runtime) Ping(ctx context.Context) error {
	r.mu.Lock()
	if _, err := r.loadSettings(); err != nil {
		r.mu.Unlock()
		return err
	}
	providers, err := r.providers(true)
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return ai.Validate(ctx, providers)
}

// Close releases the providers and stores.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ai != nil {
		r.ai.Close()
		r.ai = nil
	}
	var err error
	if r.stores != nil {
		err = r.stores.Close()
		r.stores = nil
	}
	return err
}

// loadSettings reads and validates settings once. Callers hold r.mu.
func (r *Runtime) loadSettings() (*domain.AppSettings, error) {
	if r.settings != nil {
		return r.settings, nil
	}
	if err := r.settingsSvc.Validate(); err != nil {
		return nil, err
	}
	settings, err := r.settingsSvc.Get()
	if err != nil {
		return nil, err
	}
	r.settings = settings
	return settings, nil
}

// providers creates the provider adapters, adding chat when asked.
// Callers hold r.mu and have loaded settings.
func (r *Runtime) providers(withChat bool) (*ai.Services, error) {
	if err := r.settingsSvc.RequireCredential(); err != nil {
		return nil, err
	}
	if r.ai == nil {
		svcs, err := ai.CreateServices(r.settings, withChat)
		if err != nil {
			return nil, err
		}
		r.ai = svcs
		return svcs, nil
	}
	if withChat {
		if err := r.ai.EnableChat(&r.settings.LLM); err != nil {
			return nil, err
		}
	}
	return r.ai, nil
}

// openStores opens the configured stores once. Callers hold r.mu.
func (r *Runtime) openStores() (*storage.Stores, error) {
	if r.stores != nil {
		return r.stores, nil
	}
	stores, err := storage.Open(r.settings)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	r.stores = stores
	return stores, nil
}

// promptStore places prompts next to a file-backed config, or in the
// default directory otherwise. Callers hold r.mu.
func (r *Runtime) promptStore() (driven.PromptStore, error) {
	if r.prompts != nil {
		return r.prompts, nil
	}
	dir := ""
	if p := r.configStore.Path(); filepath.IsAbs(p) {
		dir = filepath.Join(filepath.Dir(p), PromptDirName)
	}
	prompts, err := file.NewPromptStore(dir)
	if err != nil {
		return nil, err
	}
	r.prompts = prompts
	return prompts, nil
}
