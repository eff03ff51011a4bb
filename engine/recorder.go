package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/logging"
)

// ErrRecorderFull is returned when the async recorder queue has no room
var ErrRecorderFull = errors.New("engine: recorder queue full")

// ErrRecorderClosed is returned after Close
var ErrRecorderClosed = errors.New("engine: recorder closed")

// Recorder persists episode summaries
type Recorder interface {
	RecordEpisode(ctx context.Context, summary core.EpisodeSummary) error
}

// EpisodeRanker returns the best past episodes, highest score first
type EpisodeRanker interface {
	TopEpisodes(ctx context.Context, n int) ([]core.EpisodeSummary, error)
}

// NopRecorder discards summaries
type NopRecorder struct{}

func (NopRecorder) RecordEpisode(context.Context, core.EpisodeSummary) error { return nil }

// AsyncRecorder hands summaries to a background writer so the tick path never waits on storage
type AsyncRecorder struct {
	next    Recorder
	queue   chan core.EpisodeSummary
	timeout time.Duration
	logger  *slog.Logger

	dropped atomic.Int64
	closed  atomic.Bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
}

// NewAsyncRecorder starts the writer goroutine; size bounds pending summaries
func NewAsyncRecorder(next Recorder, size int, logger *slog.Logger) *AsyncRecorder {
	if size < 1 {
		size = 1
	}
	r := &AsyncRecorder{
		next:    next,
		queue:   make(chan core.EpisodeSummary, size),
		timeout: 5 * time.Second,
		logger:  logging.OrDiscard(logger),
	}
	r.wg.Add(1)
	core.Go(r.run)
	return r
}

// RecordEpisode enqueues without blocking
func (r *AsyncRecorder) RecordEpisode(_ context.Context, summary core.EpisodeSummary) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed.Load() {
		return ErrRecorderClosed
	}
	select {
	case r.queue <- summary:
		return nil
	default:
		r.dropped.Add(1)
		return ErrRecorderFull
	}
}

// Dropped returns the number of summaries rejected because the queue was full
func (r *AsyncRecorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting summaries and waits for pending writes
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed.CompareAndSwap(false, true) {
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *AsyncRecorder) run() {
	defer r.wg.Done()
	for summary := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := r.next.RecordEpisode(ctx, summary); err != nil {
			r.logger.Warn("episode persistence failed", "episode", summary.Episode, "error", err)
		} else {
			r.logger.Debug("episode persisted", "episode", summary.Episode, "outcome", summary.Outcome, "score", summary.Score)
		}
		cancel()
	}
}
