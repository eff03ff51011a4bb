package engine

import (
	"context"
	"sync"

	"github.com/lixenwraith/fusion-sim/core"
)

// MemoryRecorder keeps summaries in memory; used by tests and headless runs
type MemoryRecorder struct {
	mu        sync.Mutex
	summaries []core.EpisodeSummary
}

func (m *MemoryRecorder) RecordEpisode(_ context.Context, s core.EpisodeSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, s)
	return nil
}

// Summaries returns a copy of everything recorded so far
func (m *MemoryRecorder) Summaries() []core.EpisodeSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.EpisodeSummary(nil), m.summaries...)
}
