package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for naiverag resources.
	uriScheme = "naiverag://"

	// recentRunsLimit bounds the runs resource.
	recentRunsLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
// Both resources need the status port.
func (s *Server) registerResources() {
	if s.ports.Status == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Vector store backend, entry count and last ingest run",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "Recent ingest runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)
}

// handleStatusResource returns the index status as JSON.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	status, err := s.ports.Status.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}
	return jsonResource(req.Params.URI, toStatusOutput(status))
}

// handleRunsResource returns recent ingest runs as JSON.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Status.RecentRuns(ctx, recentRunsLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	out := make([]RunOutput, len(runs))
	for i := range runs {
		out[i] = toRunOutput(runs[i])
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
