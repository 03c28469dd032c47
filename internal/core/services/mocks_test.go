package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
)

// letterEmbedder embeds text as letter counts plus a constant component,
// so identical texts have distance 0 and no vector is zero.
type letterEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn string // texts containing this fail
	err    error
	before func() // runs at the start of every Embed
}

func (e *letterEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.before != nil {
		e.before()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()

	if e.failOn != "" && strings.Contains(text, e.failOn) {
		if e.err != nil {
			return nil, e.err
		}
		return nil, &domain.ProviderError{Op: domain.OpEmbed, Err: errors.New("rejected")}
	}

	vec := make([]float32, 27)
	vec[26] = 1
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		} else if unicode.IsLetter(r) {
			vec[26]++
		}
	}
	return vec, nil
}

func (e *letterEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *letterEmbedder) Dimensions() int            { return 27 }
func (e *letterEmbedder) ModelName() string          { return "letters" }
func (e *letterEmbedder) Ping(context.Context) error { return nil }
func (e *letterEmbedder) Close() error               { return nil }

func (e *letterEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// failingStore wraps a store and fails upserts for one id.
type failingStore struct {
	inner    driven.VectorStore
	failID   string
	queryErr error
}

func (s *failingStore) Upsert(ctx context.Context, id, text string, vector []float32) error {
	if id == s.failID {
		return errors.New("disk full")
	}
	return s.inner.Upsert(ctx, id, text, vector)
}

func (s *failingStore) Query(ctx context.Context, vector []float32, n int) ([]domain.Hit, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.inner.Query(ctx, vector, n)
}

func (s *failingStore) Count(ctx context.Context) (int, error) { return s.inner.Count(ctx) }
func (s *failingStore) Close() error                           { return s.inner.Close() }

// mockChat records the last prompt and returns a canned reply.
type mockChat struct {
	reply        string
	err          error
	systemPrompt string
	userMessage  string
	calls        int
}

func (m *mockChat) Complete(_ context.Context, systemPrompt, userMessage string) (string, error) {
	m.calls++
	m.systemPrompt = systemPrompt
	m.userMessage = userMessage
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockChat) ModelName() string          { return "mock-chat" }
func (m *mockChat) Ping(context.Context) error { return nil }
func (m *mockChat) Close() error               { return nil }

// mockPrompts serves a fixed instruction.
type mockPrompts struct {
	text string
	err  error
}

func (m *mockPrompts) Load(string) (string, error) { return m.text, m.err }
func (m *mockPrompts) Reload()                     {}
