// Package mcpserver exposes internal/search's Registry as four Model
// Context Protocol tools (start_search, get_search_results, stop_search,
// list_searches), the RPC surface spec.md §6 describes, transported over
// stdio via github.com/modelcontextprotocol/go-sdk.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fssearchd/fssearchd/internal/search"
)

// Server wraps an MCP server wired to a single search.Registry.
type Server struct {
	registry *search.Registry
	mcp      *mcp.Server
}

// New builds a Server and registers its four tools, but does not start
// serving until Run is called.
func New(registry *search.Registry, name, version string) *Server {
	s := &Server{
		registry: registry,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Run serves the MCP protocol over stdio until ctx is cancelled or the
// transport closes.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "start_search",
		Description: "Start a filesystem search session and return its first results.",
	}, s.startSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_search_results",
		Description: "Page through the accumulating results of a search session.",
	}, s.getSearchResults)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "stop_search",
		Description: "Cancel a running search session.",
	}, s.stopSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_searches",
		Description: "List every live search session known to the server.",
	}, s.listSearches)
}
