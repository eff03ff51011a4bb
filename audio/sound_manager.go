// Package audio sonifies simulation events: a chime per fusion reaction,
// a crackle for wall contacts and a buzz on wall failure.
package audio

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/fusion-sim/status"
)

const (
	sampleRate = beep.SampleRate(48000)

	// MaxVoices caps concurrently playing sounds; extra requests are dropped
	MaxVoices = 16
)

var format = beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2}

// SoundManager owns the speaker mixer and plays cached sounds
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	cache       *soundCache
	volume      float64
	initialized bool

	enabled *atomic.Bool
}

// NewSoundManager creates a sound manager at master volume in [0,1]
// The enabled flag is published to reg under status.KeyAudioEnabled; reg may be nil
func NewSoundManager(volume float64, reg *status.Registry) *SoundManager {
	enabled := &atomic.Bool{}
	if reg != nil {
		enabled = reg.Bools.Get(status.KeyAudioEnabled)
	}
	enabled.Store(true)
	return &SoundManager{
		mixer:   &beep.Mixer{},
		cache:   newSoundCache(),
		volume:  min(max(volume, 0), 1),
		enabled: enabled,
	}
}

// Initialize opens the speaker and starts the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	// 100ms buffer trades latency for underrun safety
	err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100))
	if err != nil {
		return err
	}

	sm.cache.preload()
	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup silences all sounds and closes the speaker
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()

	speaker.Close()
	sm.initialized = false
}

// Play queues st on the mixer; returns false when dropped
func (sm *SoundManager) Play(st SoundType) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || !sm.enabled.Load() {
		return false
	}

	buf := sm.cache.get(st)
	if buf == nil {
		return false
	}

	speaker.Lock()
	defer speaker.Unlock()
	if sm.mixer.Len() >= MaxVoices {
		return false
	}
	sm.mixer.Add(sm.withVolume(buf.Streamer(0, buf.Len())))
	return true
}

// withVolume applies master gain on a base-2 scale
func (sm *SoundManager) withVolume(s beep.Streamer) beep.Streamer {
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(math.Max(sm.volume, 1e-6)),
		Silent:   sm.volume == 0,
	}
}

// ToggleMute flips the enabled flag and returns the new muted state
func (sm *SoundManager) ToggleMute() bool {
	for {
		old := sm.enabled.Load()
		if sm.enabled.CompareAndSwap(old, !old) {
			return old
		}
	}
}

// IsMuted reports whether playback is suppressed
func (sm *SoundManager) IsMuted() bool {
	return !sm.enabled.Load()
}

// IsRunning reports whether the speaker is open
func (sm *SoundManager) IsRunning() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.initialized
}

// Voices returns the number of sounds currently in the mixer
func (sm *SoundManager) Voices() int {
	speaker.Lock()
	defer speaker.Unlock()
	return sm.mixer.Len()
}
