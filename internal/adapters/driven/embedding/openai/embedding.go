// Package openai provides an embedding service adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/openaiclient"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/throttle"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = domain.DefaultEmbeddingModel

// Config holds configuration for the OpenAI embedding service.
type Config struct {
	openaiclient.Config

	// Model is the embedding model to use (default: text-embedding-3-small).
	Model string

	// Dimensions overrides the default dimension for the model.
	// Only applicable to text-embedding-3-* models.
	Dimensions int

	// Caller retries and rate-limits requests. Nil means a single attempt.
	Caller *throttle.Caller
}

// EmbeddingService generates embeddings using the OpenAI API.
type EmbeddingService struct {
	client      *openai.Client
	caller      *throttle.Caller
	model       string
	requestDims int
	dimensions  atomic.Int64
}

// NewEmbeddingService creates a new OpenAI embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: OPENAI_API_KEY is not set", domain.ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions < 0 {
		return nil, fmt.Errorf("openai: %w: negative dimensions", domain.ErrInvalidConfiguration)
	}
	if cfg.Caller == nil {
		cfg.Caller = openaiclient.NewCaller(throttle.Policy{MaxAttempts: 1}, nil)
	}

	s := &EmbeddingService{
		client: openaiclient.New(cfg.Config),
		caller: cfg.Caller,
		model:  cfg.Model,
	}

	// Only text-embedding-3-* accept a dimensions parameter.
	if cfg.Dimensions > 0 && strings.HasPrefix(cfg.Model, "text-embedding-3-") {
		s.requestDims = cfg.Dimensions
		s.dimensions.Store(int64(cfg.Dimensions))
	} else if dims, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
		s.dimensions.Store(int64(dims))
	}
	return s, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	req := openai.EmbeddingRequest{
		Model:      openai.EmbeddingModel(s.model),
		Input:      texts,
		Dimensions: s.requestDims,
	}

	var resp openai.EmbeddingResponse
	err := s.caller.Do(ctx, "openai embed", func(ctx context.Context) error {
		var cerr error
		resp, cerr = s.client.CreateEmbeddings(ctx, req)
		return cerr
	})
	if err != nil {
		return nil, &domain.ProviderError{Op: domain.OpEmbed, Err: err}
	}

	embeddings, err := orderByIndex(resp.Data, len(texts))
	if err != nil {
		return nil, &domain.ProviderError{Op: domain.OpEmbed, Err: err}
	}
	if s.dimensions.Load() == 0 {
		s.dimensions.Store(int64(len(embeddings[0])))
	}
	return embeddings, nil
}

// orderByIndex places each returned vector at its input position and
// checks that every input got a non-empty vector.
func orderByIndex(data []openai.Embedding, n int) ([][]float32, error) {
	if len(data) != n {
		return nil, fmt.Errorf("expected %d embeddings, got %d", n, len(data))
	}
	embeddings := make([][]float32, n)
	for _, d := range data {
		if d.Index < 0 || d.Index >= n {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}
	for i, e := range embeddings {
		if len(e) == 0 {
			return nil, fmt.Errorf("empty embedding for input %d", i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
// Unknown models report 0 until the first successful call.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
// This checks the API key without running inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &domain.ProviderError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
