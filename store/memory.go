package store

import (
	"context"
	"sort"
	"sync"

	"github.com/lixenwraith/fusion-sim/core"
)

// MemoryStore implements EpisodeStore in process memory for tests and headless runs.
type MemoryStore struct {
	mu       sync.RWMutex
	episodes []core.EpisodeSummary
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) RecordEpisode(_ context.Context, summary core.EpisodeSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes = append(m.episodes, summary)
	return nil
}

func (m *MemoryStore) TopEpisodes(_ context.Context, n int) ([]core.EpisodeSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return limit(ranked(m.episodes), n), nil
}

func (m *MemoryStore) EpisodesByOutcome(_ context.Context, outcome core.Outcome, n int) ([]core.EpisodeSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matching []core.EpisodeSummary
	for _, s := range m.episodes {
		if s.Outcome == outcome {
			matching = append(matching, s)
		}
	}
	return limit(ranked(matching), n), nil
}

func (m *MemoryStore) RecentEpisodes(_ context.Context, n int) ([]core.EpisodeSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return limit(reversed(m.episodes), n), nil
}

func (m *MemoryStore) CountEpisodes(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.episodes), nil
}

func (m *MemoryStore) Close() error { return nil }

// ranked orders by score; newest first before a stable sort keeps recency as the tie-break
func ranked(in []core.EpisodeSummary) []core.EpisodeSummary {
	out := reversed(in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func reversed(in []core.EpisodeSummary) []core.EpisodeSummary {
	out := make([]core.EpisodeSummary, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}

func limit(in []core.EpisodeSummary, n int) []core.EpisodeSummary {
	if n <= 0 {
		return []core.EpisodeSummary{}
	}
	if n < len(in) {
		return in[:n]
	}
	return in
}
