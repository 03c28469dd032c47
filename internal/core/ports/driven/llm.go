package driven

import "context"

// ChatService sends a single prompt to a chat completion model.
// The model is fixed by the adapter's configuration.
//
// Failures are reported as *domain.ProviderError.
type ChatService interface {
	// Complete sends a system prompt and a user message and returns the
	// model's reply verbatim.
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable and the credential is accepted.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
