package services

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Environment variables read on every Get.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvBaseURL = "OPENAI_BASE_URL"
)

// Config keys for settings storage.
const (
	keyStoreBackend     = "store.backend"
	keyStorePath        = "store.path"
	keyStoreCollection  = "store.collection"
	keyQdrantHost       = "qdrant.host"
	keyQdrantPort       = "qdrant.port"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMMaxContext    = "llm.max_context_chars"
	keyChunkSize        = "chunking.size"
	keyChunkOverlap     = "chunking.overlap"
	keyIndexWorkers     = "indexer.workers"
	keyIndexQueue       = "indexer.queue"
	keySkipInvalid      = "loader.skip_invalid"
	keyProviderTimeout  = "provider.timeout_seconds"
	keyProviderRetries  = "provider.max_retries"
	keyProviderRPS      = "provider.requests_per_second"
	keyProviderBurst    = "provider.burst"
	keyRetrievalResults = "retrieval.n"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindBool
)

var settingKeys = map[string]keyKind{
	keyStoreBackend:     kindString,
	keyStorePath:        kindString,
	keyStoreCollection:  kindString,
	keyQdrantHost:       kindString,
	keyQdrantPort:       kindInt,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMMaxContext:    kindInt,
	keyChunkSize:        kindInt,
	keyChunkOverlap:     kindInt,
	keyIndexWorkers:     kindInt,
	keyIndexQueue:       kindInt,
	keySkipInvalid:      kindBool,
	keyProviderTimeout:  kindInt,
	keyProviderRetries:  kindInt,
	keyProviderRPS:      kindFloat,
	keyProviderBurst:    kindInt,
	keyRetrievalResults: kindInt,
}

// SettingKeys returns every key accepted by Set, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BackendChoices lists the accepted store.backend values, comma separated.
func BackendChoices() string {
	backends := domain.AllStoreBackends()
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.String()
	}
	return strings.Join(names, ", ")
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Get returns stored values over defaults, with environment overrides.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	return s.read(nil), nil
}

// read builds settings from pending (not yet stored) values, then the
// store, then defaults.
func (s *SettingsService) read(pending map[string]any) *domain.AppSettings {
	r := reader{store: s.configStore, pending: pending}
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Store: domain.StoreSettings{
			Backend:    domain.StoreBackend(r.getString(keyStoreBackend, defaults.Store.Backend.String())),
			Path:       r.getString(keyStorePath, s.defaultStorePath()),
			Collection: r.getString(keyStoreCollection, defaults.Store.Collection),
		},
		Qdrant: domain.QdrantSettings{
			Host: r.getString(keyQdrantHost, defaults.Qdrant.Host),
			Port: r.getInt(keyQdrantPort, defaults.Qdrant.Port),
		},
		Embedding: domain.EmbeddingSettings{
			Model:   r.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL: r.getString(keyEmbedBaseURL, ""), // No default - empty means the public API
		},
		LLM: domain.LLMSettings{
			Model:           r.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:         r.getString(keyLLMBaseURL, ""),
			MaxContextChars: r.getInt(keyLLMMaxContext, defaults.LLM.MaxContextChars),
		},
		Chunking: domain.ChunkingSettings{
			Size:    r.getInt(keyChunkSize, defaults.Chunking.Size),
			Overlap: r.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Indexer: domain.IndexerSettings{
			Workers: r.getInt(keyIndexWorkers, defaults.Indexer.Workers),
			Queue:   r.getInt(keyIndexQueue, defaults.Indexer.Queue),
		},
		Loader: domain.LoaderSettings{
			SkipInvalid: r.getBool(keySkipInvalid, defaults.Loader.SkipInvalid),
		},
		Provider: domain.ProviderSettings{
			TimeoutSeconds:    r.getInt(keyProviderTimeout, defaults.Provider.TimeoutSeconds),
			MaxRetries:        r.getInt(keyProviderRetries, defaults.Provider.MaxRetries),
			RequestsPerSecond: r.getFloat(keyProviderRPS, defaults.Provider.RequestsPerSecond),
			Burst:             r.getInt(keyProviderBurst, defaults.Provider.Burst),
		},
		Retrieval: domain.RetrievalSettings{
			N: r.getInt(keyRetrievalResults, defaults.Retrieval.N),
		},
	}

	applyEnv(settings)
	return settings
}

// applyEnv sets the credential from the environment. OPENAI_BASE_URL
// applies to both providers unless a base_url is configured.
func applyEnv(settings *domain.AppSettings) {
	if key := strings.TrimSpace(os.Getenv(EnvAPIKey)); key != "" {
		settings.Embedding.APIKey = key
		settings.LLM.APIKey = key
	}
	if base := strings.TrimSpace(os.Getenv(EnvBaseURL)); base != "" {
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = base
		}
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = base
		}
	}
}

// Set parses value according to key and persists it if the resulting
// settings are valid.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidConfiguration, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfiguration, key, err)
	}
	if key == keyStoreBackend {
		if b := domain.StoreBackend(parsed.(string)); !b.IsValid() {
			return fmt.Errorf("%w: %s must be one of %s",
				domain.ErrInvalidConfiguration, key, BackendChoices())
		}
	}

	if err := s.check(s.read(map[string]any{key: parsed})); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseValue(kind keyKind, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindBool:
		return strconv.ParseBool(value)
	default:
		return value, nil
	}
}

// Validate checks the effective settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.check(settings)
}

func (s *SettingsService) check(settings *domain.AppSettings) error {
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfiguration, strings.Join(msgs, "; "))
}

// describe renders a validation failure using the config key name,
// e.g. "chunking.overlap must be less than chunking.size".
func describe(fe validator.FieldError) string {
	key := configKey(fe.StructNamespace())
	switch fe.Tag() {
	case "required", "required_if":
		return key + " is required"
	case "ltfield":
		return fmt.Sprintf("%s must be less than %s", key, configKey(parentOf(fe.StructNamespace())+"."+fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", key, fe.Param(), fe.Value())
	case "url":
		return fmt.Sprintf("%s must be a URL, got %v", key, fe.Value())
	default:
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", key, fe.Tag(), fe.Param(), fe.Value())
	}
}

// fieldKeys maps struct field paths to config keys where they differ
// from the lowercased path.
var fieldKeys = map[string]string{
	"Embedding.BaseURL":          keyEmbedBaseURL,
	"LLM.BaseURL":                keyLLMBaseURL,
	"LLM.MaxContextChars":        keyLLMMaxContext,
	"Loader.SkipInvalid":         keySkipInvalid,
	"Provider.TimeoutSeconds":    keyProviderTimeout,
	"Provider.MaxRetries":        keyProviderRetries,
	"Provider.RequestsPerSecond": keyProviderRPS,
}

func configKey(namespace string) string {
	path := strings.TrimPrefix(namespace, "AppSettings.")
	if k, ok := fieldKeys[path]; ok {
		return k
	}
	return strings.ToLower(path)
}

func parentOf(namespace string) string {
	if i := strings.LastIndex(namespace, "."); i >= 0 {
		return namespace[:i]
	}
	return namespace
}

// RequireCredential returns domain.ErrMissingCredential when no API key
// is available.
func (s *SettingsService) RequireCredential() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() || !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: set %s in the environment or a .env file", domain.ErrMissingCredential, EnvAPIKey)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	defaults := domain.DefaultAppSettings()
	defaults.Store.Path = s.defaultStorePath()
	return defaults
}

// ConfigPath returns the backing config file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// defaultStorePath places the database next to the config file, or in
// ~/.naiverag when the store is not file-backed.
func (s *SettingsService) defaultStorePath() string {
	if p := s.configStore.Path(); filepath.IsAbs(p) {
		return filepath.Join(filepath.Dir(p), "vectors.db")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "vectors.db"
	}
	return filepath.Join(home, ".naiverag", "vectors.db")
}

// reader reads config with defaults, preferring pending values.
type reader struct {
	store   driven.ConfigStore
	pending map[string]any
}

func (r reader) lookup(key string) (any, bool) {
	if v, ok := r.pending[key]; ok {
		return v, true
	}
	return r.store.Get(key)
}

func (r reader) getString(key, defaultVal string) string {
	v, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	str, isStr := v.(string)
	if !isStr || str == "" {
		return defaultVal
	}
	return str
}

func (r reader) getInt(key string, defaultVal int) int {
	v, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return defaultVal
	}
}

func (r reader) getFloat(key string, defaultVal float64) float64 {
	v, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return defaultVal
	}
}

func (r reader) getBool(key string, defaultVal bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	b, isBool := v.(bool)
	if !isBool {
		return defaultVal
	}
	return b
}
