package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/lixenwraith/fusion-sim/core"
)

type blockingRecorder struct {
	release chan struct{}
	mem     MemoryRecorder
}

func (b *blockingRecorder) RecordEpisode(ctx context.Context, s core.EpisodeSummary) error {
	<-b.release
	return b.mem.RecordEpisode(ctx, s)
}

func TestAsyncRecorderDelivers(t *testing.T) {
	mem := &MemoryRecorder{}
	r := NewAsyncRecorder(mem, 4, nil)
	for i := 1; i <= 3; i++ {
		if err := r.RecordEpisode(context.Background(), core.EpisodeSummary{Episode: uint64(i)}); err != nil {
			t.Fatalf("RecordEpisode %d: %v", i, err)
		}
	}
	r.Close()

	got := mem.Summaries()
	if len(got) != 3 {
		t.Fatalf("Expected 3 summaries after Close, got %d", len(got))
	}
	for i, s := range got {
		if s.Episode != uint64(i+1) {
			t.Errorf("Expected FIFO order, index %d has episode %d", i, s.Episode)
		}
	}

	if err := r.RecordEpisode(context.Background(), core.EpisodeSummary{}); !errors.Is(err, ErrRecorderClosed) {
		t.Errorf("Expected ErrRecorderClosed, got %v", err)
	}
	r.Close()
}

func TestAsyncRecorderNeverBlocks(t *testing.T) {
	next := &blockingRecorder{release: make(chan struct{})}
	r := NewAsyncRecorder(next, 1, nil)

	full := false
	for i := 0; i < 10; i++ {
		if err := r.RecordEpisode(context.Background(), core.EpisodeSummary{Episode: uint64(i)}); errors.Is(err, ErrRecorderFull) {
			full = true
		}
	}
	if !full {
		t.Error("Expected ErrRecorderFull once the queue is saturated")
	}
	if r.Dropped() == 0 {
		t.Error("Expected dropped summaries to be counted")
	}

	close(next.release)
	r.Close()
	if n := len(next.mem.Summaries()); n < 1 || n > 2 {
		t.Errorf("Expected 1-2 summaries delivered, got %d", n)
	}
}
