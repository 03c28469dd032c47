package mcp

import (
	"context"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	chunks   []string
	err      error
	question string
	n        int
}

func (m *mockRetriever) Query(_ context.Context, question string, n int) ([]string, error) {
	m.question = question
	m.n = n
	return m.chunks, m.err
}

// mockAnswerer is a mock implementation of driving.Answerer.
type mockAnswerer struct {
	answer string
	err    error
	chunks []string
}

func (m *mockAnswerer) Generate(_ context.Context, _ string, chunks []string) (string, error) {
	m.chunks = chunks
	return m.answer, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	status *domain.Status
	runs   []domain.IngestRun
	err    error
	limit  int
}

func (m *mockStatusService) Status(_ context.Context) (*domain.Status, error) {
	return m.status, m.err
}

func (m *mockStatusService) RecentRuns(_ context.Context, limit int) ([]domain.IngestRun, error) {
	m.limit = limit
	return m.runs, m.err
}
