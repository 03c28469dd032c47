package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/naiverag/internal/core/domain"
)

// errEmptyQuestion is returned for a blank question argument.
var errEmptyQuestion = errors.New("question is required")

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Question string `json:"question" jsonschema:"the question to find related chunks for"`
	N        int    `json:"n,omitempty" jsonschema:"maximum number of chunks to return (default 2)"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Chunks []string `json:"chunks"`
	Count  int      `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed documents"`
	N        int    `json:"n,omitempty" jsonschema:"number of chunks to ground the answer on (default 2)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// StatusInput is the (empty) input schema for the status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Backend        string     `json:"backend"`
	Location       string     `json:"location"`
	Entries        int        `json:"entries"`
	Dimensions     int        `json:"dimensions,omitempty"`
	EmbeddingModel string     `json:"embedding_model"`
	LLMModel       string     `json:"llm_model"`
	LastRun        *RunOutput `json:"last_run,omitempty"`
}

// RunOutput describes one ingest run.
type RunOutput struct {
	ID         string `json:"id"`
	Directory  string `json:"directory"`
	Documents  int    `json:"documents"`
	Chunks     int    `json:"chunks"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
// Handler errors are reported to the client as tool error results.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Find the indexed text chunks most similar to a question",
	}, s.handleQuery)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the most similar indexed chunks as context",
	}, s.handleAsk)

	if s.ports.Status != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "status",
			Description: "Report the vector store backend, entry count and last ingest run",
		}, s.handleStatus)
	}
}

// handleQuery handles the query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, QueryOutput{}, errEmptyQuestion
	}

	chunks, err := s.ports.Retriever.Query(ctx, question, input.N)
	if err != nil {
		return nil, QueryOutput{}, fmt.Errorf("query failed: %w", err)
	}
	if chunks == nil {
		chunks = []string{}
	}

	return nil, QueryOutput{Chunks: chunks, Count: len(chunks)}, nil
}

// handleAsk retrieves context for the question and generates an answer.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, AskOutput{}, errEmptyQuestion
	}

	chunks, err := s.ports.Retriever.Query(ctx, question, input.N)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("query failed: %w", err)
	}
	if chunks == nil {
		chunks = []string{}
	}

	answer, err := s.ports.Answerer.Generate(ctx, question, chunks)
	if err != nil {
		return nil, AskOutput{}, fmt.Errorf("answer failed: %w", err)
	}

	return nil, AskOutput{Answer: answer, Sources: chunks}, nil
}

// handleStatus reports on the index.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("status failed: %w", err)
	}
	return nil, toStatusOutput(status), nil
}

func toStatusOutput(status *domain.Status) StatusOutput {
	out := StatusOutput{
		Backend:        string(status.Backend),
		Location:       status.Location,
		Entries:        status.Entries,
		Dimensions:     status.Dimensions,
		EmbeddingModel: status.EmbeddingModel,
		LLMModel:       status.LLMModel,
	}
	if status.LastRun != nil {
		run := toRunOutput(*status.LastRun)
		out.LastRun = &run
	}
	return out
}

func toRunOutput(run domain.IngestRun) RunOutput {
	return RunOutput{
		ID:         run.ID,
		Directory:  run.Directory,
		Documents:  run.Documents,
		Chunks:     run.Chunks,
		Status:     string(run.Status),
		Error:      run.Error,
		StartedAt:  formatTime(run.StartedAt),
		FinishedAt: formatTime(run.FinishedAt),
	}
}

// formatTime renders t as RFC 3339, or "" for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
