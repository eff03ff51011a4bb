package mcpserver

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lixenwraith/fusion-sim/advisor"
	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

const (
	defaultEpisodeLimit = 10
	maxEpisodeLimit     = 100
)

// ErrNoEpisodeStore is returned by fusion_episodes when no store is attached.
var ErrNoEpisodeStore = errors.New("mcpserver: episode store not configured")

func (s *Server) handleState(ctx context.Context, req *sdk.CallToolRequest, args StateInput) (*sdk.CallToolResult, StateOutput, error) {
	snap := s.ctrl.Snapshot()
	return nil, StateOutput{
		State:                snap.State.String(),
		Episode:              snap.Episode,
		Settings:             snap.Settings,
		Counters:             snap.Counters,
		EffectiveConfinement: snap.EffectiveConfinement,
		ParticleCount:        len(snap.Particles),
		Telemetry:            snap.Telemetry,
		LastSummary:          snap.LastSummary,
	}, nil
}

func (s *Server) handleTelemetry(ctx context.Context, req *sdk.CallToolRequest, args TelemetryInput) (*sdk.CallToolResult, TelemetryOutput, error) {
	n := args.Samples
	if n <= 0 {
		n = parameter.AdvisorHistoryWindow
	}
	r := s.ctrl.AdvisorRequest(n, nil)
	latest := s.ctrl.Telemetry()
	history := r.History
	if history == nil {
		history = []core.TelemetrySnapshot{}
	}
	return nil, TelemetryOutput{
		Latest:  latest,
		History: history,
		Count:   len(history),
		Reward:  r.Reward,
	}, nil
}

func (s *Server) handleAdjust(ctx context.Context, req *sdk.CallToolRequest, args AdjustInput) (*sdk.CallToolResult, AdjustOutput, error) {
	adv := advisor.Advice{
		Action:      advisor.ActionAdjust,
		Temperature: args.Temperature,
		Confinement: args.Confinement,
		Rationale:   args.Rationale,
	}
	if args.ReactionMode != "" {
		mode := core.ReactionMode(args.ReactionMode)
		adv.ReactionMode = &mode
	}
	if err := adv.Validate(); err != nil {
		return nil, AdjustOutput{}, err
	}

	settings, err := s.ctrl.ApplyAdvice(adv)
	if err != nil {
		return nil, AdjustOutput{}, fmt.Errorf("applying adjustment: %w", err)
	}
	s.logger.Info("mcp adjustment applied", "temperature", settings.Temperature,
		"confinement", settings.Confinement, "reaction_mode", settings.ReactionMode)

	return nil, AdjustOutput{
		Settings: settings,
		Message:  fmt.Sprintf("Settings now T=%.1f C=%.2f mode=%s", settings.Temperature, settings.Confinement, settings.ReactionMode),
	}, nil
}

func (s *Server) handleRestart(ctx context.Context, req *sdk.CallToolRequest, args RestartInput) (*sdk.CallToolResult, RestartOutput, error) {
	if _, err := s.ctrl.ApplyAdvice(advisor.Advice{Action: advisor.ActionRestart, Rationale: args.Rationale}); err != nil {
		return nil, RestartOutput{}, fmt.Errorf("restarting: %w", err)
	}
	snap := s.ctrl.Snapshot()
	s.logger.Info("mcp restart applied", "episode", snap.Episode)

	return nil, RestartOutput{
		Episode: snap.Episode,
		State:   snap.State.String(),
		Message: fmt.Sprintf("Episode %d is %s", snap.Episode, snap.State),
	}, nil
}

func (s *Server) handleEpisodes(ctx context.Context, req *sdk.CallToolRequest, args EpisodesInput) (*sdk.CallToolResult, EpisodesOutput, error) {
	if s.episodes == nil {
		return nil, EpisodesOutput{}, ErrNoEpisodeStore
	}
	limit := args.Limit
	if limit <= 0 {
		limit = defaultEpisodeLimit
	}
	limit = min(limit, maxEpisodeLimit)

	var (
		episodes []core.EpisodeSummary
		err      error
	)
	switch args.Order {
	case "", "top":
		episodes, err = s.episodes.TopEpisodes(ctx, limit)
	case "recent":
		episodes, err = s.episodes.RecentEpisodes(ctx, limit)
	default:
		return nil, EpisodesOutput{}, fmt.Errorf("unknown order %q (valid: top, recent)", args.Order)
	}
	if err != nil {
		return nil, EpisodesOutput{}, fmt.Errorf("listing episodes: %w", err)
	}
	return nil, EpisodesOutput{Episodes: episodes, Count: len(episodes)}, nil
}
