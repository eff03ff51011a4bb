// Package store persists episode summaries and ranks past episodes for the advisor.
package store

import (
	"context"

	"github.com/lixenwraith/fusion-sim/core"
)

// EpisodeStore is the persistence collaborator of the episode controller.
type EpisodeStore interface {
	// RecordEpisode appends one summary.
	RecordEpisode(ctx context.Context, summary core.EpisodeSummary) error
	// TopEpisodes returns up to n summaries, highest score first.
	TopEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
	// RecentEpisodes returns up to n summaries, most recently recorded first.
	RecentEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
	// EpisodesByOutcome returns up to n summaries with the given outcome, highest score first.
	EpisodesByOutcome(ctx context.Context, outcome core.Outcome, n int) ([]core.EpisodeSummary, error)
	// CountEpisodes returns the number of stored summaries.
	CountEpisodes(ctx context.Context) (int, error)
	Close() error
}
