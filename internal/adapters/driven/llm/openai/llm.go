// Package openai provides a chat completion adapter using the OpenAI API.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/openaiclient"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/throttle"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// Ensure ChatService implements the interface.
var _ driven.ChatService = (*ChatService)(nil)

// DefaultModel is the chat model used when none is configured.
const DefaultModel = domain.DefaultLLMModel

// opComplete names chat calls in errors.
const opComplete = "complete"

// errNoChoices is returned when the API answers without a completion.
var errNoChoices = errors.New("no choices in response")

// Config holds configuration for the OpenAI chat service.
type Config struct {
	openaiclient.Config

	// Model is the chat model to use (default: gpt-3.5-turbo).
	Model string

	// Caller retries and rate-limits requests. Nil means a single attempt.
	Caller *throttle.Caller
}

// ChatService sends prompts to the OpenAI chat completions API.
type ChatService struct {
	client *openai.Client
	caller *throttle.Caller
	model  string
}

// NewChatService creates a new OpenAI chat service.
func NewChatService(cfg Config) (*ChatService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: %w: OPENAI_API_KEY is not set", domain.ErrMissingCredential)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Caller == nil {
		cfg.Caller = openaiclient.NewCaller(throttle.Policy{MaxAttempts: 1}, nil)
	}

	return &ChatService{
		client: openaiclient.New(cfg.Config),
		caller: cfg.Caller,
		model:  cfg.Model,
	}, nil
}

// Complete sends the system prompt and user message and returns the reply.
// The reply is returned as-is, without trimming.
func (s *ChatService) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: buildMessages(systemPrompt, userMessage),
	}

	var resp openai.ChatCompletionResponse
	err := s.caller.Do(ctx, "openai complete", func(ctx context.Context) error {
		var cerr error
		resp, cerr = s.client.CreateChatCompletion(ctx, req)
		return cerr
	})
	if err != nil {
		return "", &domain.ProviderError{Op: opComplete, Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ProviderError{Op: opComplete, Err: errNoChoices}
	}
	return resp.Choices[0].Message.Content, nil
}

// buildMessages omits the system message when the prompt is empty.
func buildMessages(systemPrompt, userMessage string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	return append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMessage,
	})
}

// ModelName returns the name of the chat model being used.
func (s *ChatService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by listing models.
func (s *ChatService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &domain.ProviderError{Op: "ping", Err: err}
	}
	return nil
}

// Close releases resources.
func (s *ChatService) Close() error {
	return nil
}
