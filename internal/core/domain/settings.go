package domain

import "strings"

const unknownDescription = "Unknown"

// StoreBackend identifies the vector store implementation.
type StoreBackend string

// Available vector store backends.
const (
	// StoreBackendSQLite persists vectors in a local SQLite file.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendQdrant uses a Qdrant server over gRPC.
	StoreBackendQdrant StoreBackend = "qdrant"

	// StoreBackendMemory keeps vectors in process memory only.
	StoreBackendMemory StoreBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendQdrant, StoreBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file)"
	case StoreBackendQdrant:
		return "Qdrant (server)"
	case StoreBackendMemory:
		return "Memory (not persisted)"
	default:
		return unknownDescription
	}
}

// StoreSettings holds vector store configuration.
type StoreSettings struct {
	// Backend selects the vector store implementation.
	Backend StoreBackend `validate:"required,oneof=sqlite qdrant memory"`

	// Path is the database file for the sqlite backend.
	Path string `validate:"required_if=Backend sqlite"`

	// Collection is the collection name for the qdrant backend.
	Collection string `validate:"required"`
}

// QdrantSettings holds Qdrant connection configuration.
type QdrantSettings struct {
	Host string `validate:"required"`
	Port int    `validate:"gte=1,lte=65535"`
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Model is the embedding model name.
	Model string `validate:"required"`

	// BaseURL overrides the provider endpoint. Empty means the default.
	BaseURL string `validate:"omitempty,url"`

	// APIKey is read from the environment, never from the config file.
	APIKey string `toml:"-"`
}

// IsConfigured returns true if the embedding provider can be reached.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Model != "" && e.APIKey != ""
}

// LLMSettings holds chat completion provider configuration.
type LLMSettings struct {
	// Model is the chat model name.
	Model string `validate:"required"`

	// BaseURL overrides the provider endpoint. Empty means the default.
	BaseURL string `validate:"omitempty,url"`

	// APIKey is read from the environment, never from the config file.
	APIKey string `toml:"-"`

	// MaxContextChars bounds the retrieved context placed in the prompt.
	MaxContextChars int `validate:"gte=1"`
}

// IsConfigured returns true if the LLM provider can be reached.
func (l LLMSettings) IsConfigured() bool {
	return l.Model != "" && l.APIKey != ""
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	Size    int `validate:"gt=0"`
	Overlap int `validate:"gte=0,ltfield=Size"`
}

// IndexerSettings holds the embedding worker pool configuration.
type IndexerSettings struct {
	Workers int `validate:"gte=1,lte=64"`
	Queue   int `validate:"gte=1"`
}

// LoaderSettings holds source directory loading configuration.
type LoaderSettings struct {
	// SkipInvalid logs and skips files that are not valid UTF-8
	// instead of failing the load.
	SkipInvalid bool
}

// ProviderSettings holds resilience settings shared by provider adapters.
type ProviderSettings struct {
	TimeoutSeconds    int     `validate:"gte=1"`
	MaxRetries        int     `validate:"gte=0,lte=10"`
	RequestsPerSecond float64 `validate:"gt=0"`
	Burst             int     `validate:"gte=1"`
}

// RetrievalSettings holds query configuration.
type RetrievalSettings struct {
	N int `validate:"gte=1"`
}

// AppSettings holds all application settings.
type AppSettings struct {
	Store     StoreSettings
	Qdrant    QdrantSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Indexer   IndexerSettings
	Loader    LoaderSettings
	Provider  ProviderSettings
	Retrieval RetrievalSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultEmbeddingModel  = "text-embedding-3-small"
	DefaultLLMModel        = "gpt-3.5-turbo"
	DefaultCollection      = "documents_table"
	DefaultMaxContextChars = 12000
	DefaultQdrantPort      = 6334
)

// DefaultAppSettings returns settings with sensible defaults.
// Store.Path is left empty; the settings service fills it in
// relative to the config directory.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Store: StoreSettings{
			Backend:    StoreBackendSQLite,
			Collection: DefaultCollection,
		},
		Qdrant: QdrantSettings{
			Host: "localhost",
			Port: DefaultQdrantPort,
		},
		Embedding: EmbeddingSettings{
			Model: DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Model:           DefaultLLMModel,
			MaxContextChars: DefaultMaxContextChars,
		},
		Chunking: ChunkingSettings{
			Size:    1000,
			Overlap: 20,
		},
		Indexer: IndexerSettings{
			Workers: 8,
			Queue:   32,
		},
		Provider: ProviderSettings{
			TimeoutSeconds:    30,
			MaxRetries:        2,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Retrieval: RetrievalSettings{
			N: DefaultResultCount,
		},
	}
}

// AllStoreBackends returns all available vector store backends.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendQdrant,
		StoreBackendMemory,
	}
}

// EmbeddingDimensions returns known dimensions for embedding models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
	}
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", 8) + s[len(s)-4:]
}
