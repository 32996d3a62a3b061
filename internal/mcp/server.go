package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ledeberg/tiller/internal/repository"
)

// Config contains server configuration.
type Config struct {
	Conversation  ConversationService
	Snapshots     repository.SnapshotReader
	Planner       Planner
	Risks         RiskAssessor
	AuthToken     string
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "tiller",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode is local-only and never authenticates. HTTP mode requires
	// the shared token when one is configured.
	if cfg.TransportMode != "stdio" && cfg.AuthToken != "" {
		server.AddReceivingMiddleware(authMiddleware(cfg.AuthToken))
	}
	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.Conversation, cfg.Snapshots, cfg.Planner, cfg.Risks)
	registerTools(server, handler)

	return server
}
