// Package openaiclient builds the go-openai client shared by the embedding
// and chat adapters and classifies its errors for retrying.
package openaiclient

import (
	"errors"
	"net"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/throttle"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config holds connection settings shared by OpenAI adapters.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// HTTPClient overrides the default HTTP client. Per-call deadlines
	// come from the context, so it needs no timeout of its own.
	HTTPClient *http.Client
}

// New creates a go-openai client from cfg.
func New(cfg Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Classify maps go-openai and transport errors to a retry verdict.
// 429 is rate limiting; 408, 409 and 5xx are transient; any other
// status is permanent. Network errors and per-attempt timeouts are
// transient.
func Classify(err error) throttle.Verdict {
	if status := StatusCode(err); status != 0 {
		switch {
		case status == http.StatusTooManyRequests:
			return throttle.RateLimited
		case status == http.StatusRequestTimeout, status == http.StatusConflict, status >= 500:
			return throttle.Transient
		default:
			return throttle.Permanent
		}
	}

	if throttle.IsTimeout(err) {
		return throttle.Transient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return throttle.Transient
	}
	return throttle.Permanent
}

// StatusCode extracts the HTTP status from a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// NewCaller returns a throttle.Caller using Classify.
func NewCaller(policy throttle.Policy, limiter *throttle.RateLimiter) *throttle.Caller {
	return throttle.NewCaller(policy, limiter, Classify)
}
