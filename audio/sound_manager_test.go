package audio

import (
	"math"
	"testing"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/event"
	"github.com/lixenwraith/fusion-sim/parameter"
	"github.com/lixenwraith/fusion-sim/status"
)

// TestSoundManagerGracefulDegradation verifies playback is a no-op when not initialized
func TestSoundManagerGracefulDegradation(t *testing.T) {
	sm := NewSoundManager(0.5, nil)

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("Sound operations panicked without initialization: %v", r)
		}
	}()

	for st := SoundType(0); st < soundTypeCount; st++ {
		if sm.Play(st) {
			t.Errorf("Expected Play(%d) to be dropped without initialization", st)
		}
	}
	sm.Cleanup()
}

// TestSoundManagerInitialization verifies sound manager can be initialized and cleaned up
func TestSoundManagerInitialization(t *testing.T) {
	sm := NewSoundManager(0.5, nil)

	// Speaker initialization may fail in CI without audio devices
	if err := sm.Initialize(); err != nil {
		t.Logf("Sound initialization failed (expected in test environment): %v", err)
		return
	}

	if err := sm.Initialize(); err != nil {
		t.Errorf("Second initialization should succeed as no-op, got error: %v", err)
	}
	sm.Cleanup()
	if sm.IsRunning() {
		t.Error("Expected manager stopped after cleanup")
	}
}

// forceInitialized bypasses the speaker so mixer behavior is testable headless
func forceInitialized(sm *SoundManager) {
	sm.initialized = true
}

func TestPlayQueuesVoices(t *testing.T) {
	sm := NewSoundManager(1, nil)
	forceInitialized(sm)

	if !sm.Play(SoundFusionDT) {
		t.Fatal("Expected Play to queue a voice")
	}
	if sm.Voices() != 1 {
		t.Errorf("Expected 1 voice, got %d", sm.Voices())
	}

	if sm.Play(soundTypeCount) {
		t.Error("Expected unknown sound type to be rejected")
	}
}

func TestPlayVoiceCap(t *testing.T) {
	sm := NewSoundManager(1, nil)
	forceInitialized(sm)

	for i := 0; i < MaxVoices; i++ {
		if !sm.Play(SoundWallHit) {
			t.Fatalf("Expected voice %d to be accepted", i)
		}
	}
	if sm.Play(SoundWallHit) {
		t.Error("Expected voice beyond MaxVoices to be dropped")
	}
	if sm.Voices() != MaxVoices {
		t.Errorf("Expected %d voices, got %d", MaxVoices, sm.Voices())
	}
}

func TestMutePublishesGauge(t *testing.T) {
	reg := status.NewRegistry()
	sm := NewSoundManager(1, reg)
	forceInitialized(sm)

	gauge := reg.Bools.Get(status.KeyAudioEnabled)
	if !gauge.Load() {
		t.Fatal("Expected audio enabled gauge set on creation")
	}

	if muted := sm.ToggleMute(); !muted {
		t.Error("Expected first toggle to mute")
	}
	if gauge.Load() {
		t.Error("Expected gauge cleared while muted")
	}
	if sm.Play(SoundFault) {
		t.Error("Expected Play dropped while muted")
	}

	sm.ToggleMute()
	if sm.IsMuted() {
		t.Error("Expected second toggle to unmute")
	}
}

func TestCachedBufferLengths(t *testing.T) {
	c := newSoundCache()

	tests := []struct {
		st   SoundType
		want int
	}{
		{SoundFusionDT, 12000},
		{SoundFusionDHe3, 14400},
		{SoundWallHit, 3840},
		{SoundFault, 28800},
		{SoundEpisodeEnd, 19200},
	}
	for _, tt := range tests {
		buf := c.get(tt.st)
		if buf == nil {
			t.Fatalf("Expected buffer for sound %d", tt.st)
		}
		if buf.Len() != tt.want {
			t.Errorf("Sound %d: expected %d samples, got %d", tt.st, tt.want, buf.Len())
		}
	}

	if c.get(SoundFusionDT) != c.get(SoundFusionDT) {
		t.Error("Expected repeated get to return the cached buffer")
	}
	if c.get(-1) != nil {
		t.Error("Expected nil buffer for negative sound type")
	}
}

func TestGeneratorsBounded(t *testing.T) {
	gens := map[string]beep.Streamer{
		"chime": NewChimeGenerator(sampleRate, 880, 10),
		"buzz":  NewBuzzGenerator(sampleRate, 90),
		"decay": NewDecayGenerator(sampleRate, 7),
	}

	for name, g := range gens {
		samples := make([][2]float64, 4800)
		n, ok := g.Stream(samples)
		if n != len(samples) || !ok {
			t.Fatalf("%s: expected full stream, got n=%d ok=%v", name, n, ok)
		}
		for i, s := range samples {
			if math.IsNaN(s[0]) || math.Abs(s[0]) > 1 || s[0] != s[1] {
				t.Fatalf("%s: sample %d out of range or not mono: %v", name, i, s)
			}
		}
	}
}

func TestDecayGeneratorDeterministic(t *testing.T) {
	a := make([][2]float64, 256)
	b := make([][2]float64, 256)
	NewDecayGenerator(sampleRate, 3).Stream(a)
	NewDecayGenerator(sampleRate, 3).Stream(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Expected identical output for equal seeds at sample %d", i)
		}
	}
}

func TestSoundForEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   event.SimEvent
		want SoundType
		ok   bool
	}{
		{"dt fusion", event.SimEvent{Type: event.EventFusion, Payload: &event.FusionPayload{Event: core.FusionEvent{Reaction: parameter.ReactionDT}}}, SoundFusionDT, true},
		{"dd fusion", event.SimEvent{Type: event.EventFusion, Payload: &event.FusionPayload{Event: core.FusionEvent{Reaction: parameter.ReactionDD}}}, SoundFusionDD, true},
		{"dhe3 fusion", event.SimEvent{Type: event.EventFusion, Payload: &event.FusionPayload{Event: core.FusionEvent{Reaction: parameter.ReactionDHe3}}}, SoundFusionDHe3, true},
		{"no reaction", event.SimEvent{Type: event.EventFusion, Payload: &event.FusionPayload{}}, 0, false},
		{"wall hit", event.SimEvent{Type: event.EventWallHit, Payload: &event.WallHitPayload{Hits: 2}}, SoundWallHit, true},
		{"empty wall batch", event.SimEvent{Type: event.EventWallHit, Payload: &event.WallHitPayload{}}, 0, false},
		{"fault", event.SimEvent{Type: event.EventFault}, SoundFault, true},
		{"episode end", event.SimEvent{Type: event.EventEpisodeEnd}, SoundEpisodeEnd, true},
		{"settings", event.SimEvent{Type: event.EventSettingsChanged}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SoundFor(tt.ev)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Errorf("Expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

type recordingPlayer struct {
	played []SoundType
}

func (p *recordingPlayer) Play(st SoundType) bool {
	p.played = append(p.played, st)
	return true
}

func TestListenRoutesEvents(t *testing.T) {
	q := event.NewQueue()
	r := event.NewRouter(q)
	p := &recordingPlayer{}
	Listen(r, p)

	q.Push(event.SimEvent{Type: event.EventFusion, Payload: &event.FusionPayload{Event: core.FusionEvent{Reaction: parameter.ReactionDT}}})
	q.Push(event.SimEvent{Type: event.EventSettingsChanged})
	q.Push(event.SimEvent{Type: event.EventFault})

	if n := r.Dispatch(); n != 3 {
		t.Errorf("Expected 3 events dispatched, got %d", n)
	}
	if len(p.played) != 2 || p.played[0] != SoundFusionDT || p.played[1] != SoundFault {
		t.Errorf("Expected [DT chime, fault], got %v", p.played)
	}
}
