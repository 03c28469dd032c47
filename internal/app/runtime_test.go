package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/naiverag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/services"
)

// letterVector counts a-z occurrences, plus a constant so no vector is zero.
func letterVector(text string) []float32 {
	v := make([]float32, 27)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	v[26] = 1
	return v
}

// fakeOpenAI serves embeddings, chat completions and the model list.
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		data := make([]map[string]any, 0, len(req.Input))
		for i, in := range req.Input {
			data = append(data, map[string]any{
				"object":    "embedding",
				"embedding": letterVector(in),
				"index":     i,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]string{"role": "assistant", "content": "It says hello."},
				"finish_reason": "stop",
			}},
		})
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRuntime(t *testing.T, seed map[string]any) *Runtime {
	t.Helper()
	t.Setenv(services.EnvAPIKey, "")
	t.Setenv(services.EnvBaseURL, "")
	t.Setenv("HOME", t.TempDir())

	base := map[string]any{
		"store.backend":   string(domain.StoreBackendMemory),
		"embedding.model": "test-embed",
	}
	for k, v := range seed {
		base[k] = v
	}
	rt := NewWithConfigStore(memory.NewConfigStore(base))
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestRuntime_StatusNeedsNoCredential(t *testing.T) {
	rt := newTestRuntime(t, nil)

	status, err := rt.Status()
	require.NoError(t, err)

	got, err := status.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendMemory, got.Backend)
	assert.Zero(t, got.Entries)
	assert.Nil(t, got.LastRun)
}

func TestRuntime_ProvidersNeedCredential(t *testing.T) {
	rt := newTestRuntime(t, nil)

	_, err := rt.Indexer(nil)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = rt.Retriever()
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	_, err = rt.Answerer()
	assert.ErrorIs(t, err, domain.ErrMissingCredential)

	assert.ErrorIs(t, rt.Ping(context.Background()), domain.ErrMissingCredential)
}

func TestRuntime_InvalidSettings(t *testing.T) {
	rt := newTestRuntime(t, map[string]any{
		"chunking.size":    10,
		"chunking.overlap": 10,
	})

	_, err := rt.Status()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestRuntime_IngestQueryAsk(t *testing.T) {
	srv := fakeOpenAI(t)
	rt := newTestRuntime(t, nil)
	t.Setenv(services.EnvAPIKey, "test-key")
	t.Setenv(services.EnvBaseURL, srv.URL+"/v1")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hello world"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("zzz qqq"), 0o600))

	ctx := context.Background()
	var progressed int
	indexer, err := rt.Indexer(func(done, total int, _ string) { progressed = done })
	require.NoError(t, err)

	n, err := indexer.ProcessDocuments(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, progressed)

	retriever, err := rt.Retriever()
	require.NoError(t, err)
	texts, err := retriever.Query(ctx, "hello", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello world"}, texts)

	answerer, err := rt.Answerer()
	require.NoError(t, err)
	answer, err := answerer.Generate(ctx, "hello", texts)
	require.NoError(t, err)
	assert.Equal(t, "It says hello.", answer)

	status, err := rt.Status()
	require.NoError(t, err)
	got, err := status.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Entries)
	require.NotNil(t, got.LastRun)
	assert.Equal(t, domain.RunStatusCompleted, got.LastRun.Status)

	assert.NoError(t, rt.Ping(ctx))
}

func TestNew_ConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	rt, err := New(path)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, path, rt.Settings().ConfigPath())
}
