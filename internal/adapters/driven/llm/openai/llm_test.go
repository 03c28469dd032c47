package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/openaiclient"
	"github.com/custodia-labs/naiverag/internal/adapters/driven/throttle"
	"github.com/custodia-labs/naiverag/internal/core/domain"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatServer replies with reply, or with status when it is not 200.
// Each request is recorded in got.
func chatServer(t *testing.T, reply string, status int, calls *atomic.Int32, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"failed","type":"server_error"}}`))
			return
		}
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}

		choices := []map[string]any{}
		if reply != "" {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-3.5-turbo",
			"choices": choices,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newChat(t *testing.T, srv *httptest.Server, caller *throttle.Caller) *ChatService {
	t.Helper()
	svc, err := NewChatService(Config{
		Config: openaiclient.Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"},
		Caller: caller,
	})
	require.NoError(t, err)
	return svc
}

func TestNewChatService_RequiresKey(t *testing.T) {
	_, err := NewChatService(Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestNewChatService_DefaultModel(t *testing.T) {
	svc, err := NewChatService(Config{Config: openaiclient.Config{APIKey: "k"}})
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", svc.ModelName())
	assert.NoError(t, svc.Close())
}

func TestComplete_SendsSystemAndUser(t *testing.T) {
	var calls atomic.Int32
	var got chatRequest
	svc := newChat(t, chatServer(t, "  Paris.\n", http.StatusOK, &calls, &got), nil)

	answer, err := svc.Complete(context.Background(), "be brief", "capital of France?")
	require.NoError(t, err)

	// Reply is returned verbatim.
	assert.Equal(t, "  Paris.\n", answer)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "be brief"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "capital of France?"}, got.Messages[1])
}

func TestComplete_NoChoices(t *testing.T) {
	var calls atomic.Int32
	svc := newChat(t, chatServer(t, "", http.StatusOK, &calls, nil), nil)

	_, err := svc.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, errNoChoices)
}

func TestComplete_RateLimitedRetried(t *testing.T) {
	var calls atomic.Int32
	caller := openaiclient.NewCaller(
		throttle.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond},
		throttle.NewRateLimiter(throttle.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 10}),
	)
	svc := newChat(t, chatServer(t, "", http.StatusTooManyRequests, &calls, nil), caller)

	_, err := svc.Complete(context.Background(), "s", "u")
	require.Error(t, err)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "complete", perr.Op)
	assert.Equal(t, int32(2), calls.Load())
}

func TestComplete_CancelledContext(t *testing.T) {
	var calls atomic.Int32
	svc := newChat(t, chatServer(t, "x", http.StatusOK, &calls, nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Complete(ctx, "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMessages_EmptySystem(t *testing.T) {
	msgs := buildMessages("", "hi")
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
}
