package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/naiverag/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: query, ask, status. Resources: naiverag://status, naiverag://runs.

By default, the server communicates over stdio using JSON-RPC and can be
used with any MCP-compatible assistant. Use --http to serve streamable
HTTP instead.

Examples:
  # Stdio mode (default)
  naiverag mcp

  # HTTP mode (for MCP Inspector, remote access)
  naiverag mcp --http :8080

Assistant configuration:
  {
    "mcpServers": {
      "naiverag": {
        "command": "/path/to/naiverag",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve streamable HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer(r Runtime) (*mcp.Server, error) {
	retriever, err := r.Retriever()
	if err != nil {
		return nil, err
	}
	answerer, err := r.Answerer()
	if err != nil {
		return nil, err
	}
	status, err := r.Status()
	if err != nil {
		return nil, err
	}

	return mcp.NewServer(&mcp.Ports{
		Retriever: retriever,
		Answerer:  answerer,
		Status:    status,
	})
}

func runMCP(cmd *cobra.Command, _ []string) error {
	r, err := currentRuntime()
	if err != nil {
		return err
	}
	server, err := newMCPServer(r)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
