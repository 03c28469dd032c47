// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openaiembed "github.com/custodia-labs/naiverag/internal/adapters/driven/embedding/openai"
	openaillm "github.com/custodia-labs/naiverag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/openaiclient"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/throttle"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the provider adapters used by the pipeline.
// Chat is nil when only embeddings were requested.
type Services struct {
	Embedding driven.EmbeddingService
	Chat      driven.ChatService

	caller *throttle.Caller
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		s.Embedding.Close()
	}
	if s.Chat != nil {
		s.Chat.Close()
	}
}

// NewCaller builds the retry policy and rate limiter from settings.
// Share one Caller between services that hit the same account.
func NewCaller(p domain.ProviderSettings) *throttle.Caller {
	policy := retryPolicy(p)
	limiter := throttle.NewRateLimiter(throttle.RateLimitConfig{
		RequestsPerSecond: p.RequestsPerSecond,
		BurstSize:         p.Burst,
	})
	return openaiclient.NewCaller(policy, limiter)
}

// retryPolicy allows MaxRetries retries after the first attempt.
func retryPolicy(p domain.ProviderSettings) throttle.Policy {
	policy := throttle.DefaultPolicy()
	if p.MaxRetries >= 0 {
		policy.MaxAttempts = p.MaxRetries + 1
	}
	if p.TimeoutSeconds > 0 {
		policy.Timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
	return policy
}

// CreateEmbeddingService creates the OpenAI embedding service.
// A missing API key yields domain.ErrMissingCredential.
func CreateEmbeddingService(settings *domain.EmbeddingSettings, caller *throttle.Caller) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no embedding settings", domain.ErrInvalidConfiguration)
	}
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		Config: openaiclient.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
		},
		Model:  settings.Model,
		Caller: caller,
	})
}

// CreateChatService creates the OpenAI chat service.
// A missing API key yields domain.ErrMissingCredential.
func CreateChatService(settings *domain.LLMSettings, caller *throttle.Caller) (driven.ChatService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no LLM settings", domain.ErrInvalidConfiguration)
	}
	return openaillm.NewChatService(openaillm.Config{
		Config: openaiclient.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
		},
		Model:  settings.Model,
		Caller: caller,
	})
}

// CreateServices creates the embedding service, and the chat service when
// withChat is set. Both share one Caller.
func CreateServices(settings *domain.AppSettings, withChat bool) (*Services, error) {
	caller := NewCaller(settings.Provider)

	embed, err := CreateEmbeddingService(&settings.Embedding, caller)
	if err != nil {
		return nil, err
	}
	result := &Services{Embedding: embed, caller: caller}

	if withChat {
		if err := result.EnableChat(&settings.LLM); err != nil {
			result.Close()
			return nil, err
		}
	}
	return result, nil
}

// EnableChat adds the chat service to Services created without it. It
// shares the embedding service's Caller. Calling it twice is a no-op.
func (s *Services) EnableChat(settings *domain.LLMSettings) error {
	if s.Chat != nil {
		return nil
	}
	chat, err := CreateChatService(settings, s.caller)
	if err != nil {
		return err
	}
	s.Chat = chat
	return nil
}

// Pinger is implemented by services that support a connectivity check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Validate pings each non-nil service with a short timeout.
// All failures are joined.
func Validate(ctx context.Context, svcs *Services) error {
	var errs []error
	if svcs.Embedding != nil {
		if err := ping(ctx, svcs.Embedding); err != nil {
			errs = append(errs, fmt.Errorf("embedding (%s): %w", svcs.Embedding.ModelName(), err))
		}
	}
	if svcs.Chat != nil {
		if err := ping(ctx, svcs.Chat); err != nil {
			errs = append(errs, fmt.Errorf("llm (%s): %w", svcs.Chat.ModelName(), err))
		}
	}
	return errors.Join(errs...)
}

func ping(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return p.Ping(ctx)
}
