// ABOUTME: MCP server exposing the collector to assistant tooling.
// ABOUTME: Wraps the MCP server with the day cache, engine, and remote store.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stepforwardrx/stepforward/internal/cache"
	"github.com/stepforwardrx/stepforward/internal/engine"
	"github.com/stepforwardrx/stepforward/internal/models"
)

// RemoteData is the slice of the remote client the MCP tools use.
type RemoteData interface {
	ListDaySamples(ctx context.Context, participantID string) ([]models.DaySample, error)
	CreateSideEffect(ctx context.Context, report models.SideEffect) error
}

// Server wraps the MCP server with collector access.
type Server struct {
	mcpServer *mcp.Server
	cache     *cache.DayCache
	engine    *engine.Engine
	remote    RemoteData
}

// NewServer creates a new MCP server over the collector's state.
func NewServer(dayCache *cache.DayCache, eng *engine.Engine, remote RemoteData) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "stepforward",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		cache:     dayCache,
		engine:    eng,
		remote:    remote,
	}

	s.registerTools()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
