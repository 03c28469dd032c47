// Package mcp provides an MCP (Model Context Protocol) server adapter for naiverag.
// It lets AI assistants query the local index and ask grounded questions.
package mcp

import "errors"

var (
	// ErrMissingRetriever is returned when the retriever is not provided.
	ErrMissingRetriever = errors.New("mcp: retriever is required")

	// ErrMissingAnswerer is returned when the answerer is not provided.
	ErrMissingAnswerer = errors.New("mcp: answerer is required")
)
