// Package mcpserver exposes the simulation to external advisory agents
// as MCP (Model Context Protocol) tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/engine"
	"github.com/lixenwraith/fusion-sim/logging"
)

// EpisodeLister is the read side of episode persistence
type EpisodeLister interface {
	TopEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
	RecentEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "fusion-sim")
	Version string
	// Episodes backs fusion_episodes; nil makes the tool report an error
	Episodes EpisodeLister
	Logger   *slog.Logger
}

// Server wraps the MCP SDK server around one controller.
type Server struct {
	server   *sdk.Server
	ctrl     *engine.Controller
	episodes EpisodeLister
	logger   *slog.Logger
}

// New creates an MCP server with the fusion tools registered.
func New(ctrl *engine.Controller, cfg Config) *Server {
	if cfg.Name == "" {
		cfg.Name = "fusion-sim"
	}
	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, &sdk.ServerOptions{}),
		ctrl:     ctrl,
		episodes: cfg.Episodes,
		logger:   logging.OrDiscard(cfg.Logger),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fusion_state",
		Description: "Get the current simulation state: lifecycle, settings, counters and latest telemetry",
	}, s.handleState)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fusion_telemetry",
		Description: "Get the latest telemetry sample, a trailing history window and the reward proxy",
	}, s.handleTelemetry)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fusion_adjust",
		Description: "Adjust temperature, confinement or reaction mode; values are clamped to their valid ranges",
	}, s.handleAdjust)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fusion_restart",
		Description: "End the current episode and start a fresh one with the current settings",
	}, s.handleRestart)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "fusion_episodes",
		Description: "List past episode summaries ranked by score or recency",
	}, s.handleEpisodes)
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting on stdio")
	return s.server.Run(ctx, &sdk.StdioTransport{})
}
