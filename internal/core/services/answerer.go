package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/naiverag/internal/core/domain"
	"github.com/custodia-labs/naiverag/internal/core/ports/driven"
	"github.com/custodia-labs/naiverag/internal/core/ports/driving"
	"github.com/custodia-labs/naiverag/internal/logger"
)

// Ensure Answerer implements the interface.
var _ driving.Answerer = (*Answerer)(nil)

// Answerer builds a grounded prompt from retrieved chunks and asks the
// chat model to answer the question.
type Answerer struct {
	chat            driven.ChatService
	prompts         driven.PromptStore
	maxContextChars int
}

// AnswererOption configures an Answerer.
type AnswererOption func(*Answerer)

// WithPromptStore loads the answer instruction from prompts.
func WithPromptStore(prompts driven.PromptStore) AnswererOption {
	return func(a *Answerer) {
		a.prompts = prompts
	}
}

// WithMaxContextChars bounds the context section. Zero means unbounded.
func WithMaxContextChars(n int) AnswererOption {
	return func(a *Answerer) {
		if n >= 0 {
			a.maxContextChars = n
		}
	}
}

// NewAnswerer creates an Answerer.
func NewAnswerer(chat driven.ChatService, opts ...AnswererOption) *Answerer {
	a := &Answerer{chat: chat}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate sends the prompt built from chunks as the system message and
// the question as the user message, and returns the reply verbatim.
func (a *Answerer) Generate(ctx context.Context, question string, chunks []string) (string, error) {
	logger.Section("Generate")

	chunks = a.fitContext(chunks)
	prompt := BuildPrompt(a.instruction(), question, chunks)
	logger.Debug("Prompt: %d chars from %d chunks, model %s", len(prompt), len(chunks), a.chat.ModelName())

	answer, err := a.chat.Complete(ctx, prompt, question)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

// BuildPrompt lays out the instruction, the chunks separated by blank
// lines, and the question. No chunks leaves the context section empty.
func BuildPrompt(instruction, question string, chunks []string) string {
	var b strings.Builder
	b.WriteString(instruction)
	b.WriteString("\n\nContext:\n")
	b.WriteString(strings.Join(chunks, "\n\n"))
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(question)
	return b.String()
}

func (a *Answerer) instruction() string {
	if a.prompts == nil {
		return domain.DefaultAnswerInstruction
	}
	text, err := a.prompts.Load(driven.PromptAnswerInstruction)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			logger.Warn("Using default answer instruction: %v", err)
		}
		return domain.DefaultAnswerInstruction
	}
	return text
}

// fitContext drops trailing chunks until the joined context fits the
// limit. A single chunk that is too long on its own is cut instead.
// Lengths are in runes.
func (a *Answerer) fitContext(chunks []string) []string {
	limit := a.maxContextChars
	if limit <= 0 || contextLen(chunks) <= limit {
		return chunks
	}

	kept := chunks
	for len(kept) > 1 && contextLen(kept) > limit {
		kept = kept[:len(kept)-1]
	}
	if len(kept) == 1 && contextLen(kept) > limit {
		runes := []rune(kept[0])
		logger.Warn("Context exceeds %d chars; truncating the only chunk from %d", limit, len(runes))
		return []string{string(runes[:limit])}
	}

	logger.Warn("Context exceeds %d chars; dropped %d of %d chunks", limit, len(chunks)-len(kept), len(chunks))
	return kept
}

// contextLen is the rune length of chunks joined by blank lines.
func contextLen(chunks []string) int {
	n := 0
	for i, c := range chunks {
		if i > 0 {
			n += 2
		}
		n += len([]rune(c))
	}
	return n
}
