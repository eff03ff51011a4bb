package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/fusion-sim/parameter"
)

// SoundType represents the simulation sound effects
type SoundType int

const (
	SoundFusionDT   SoundType = iota // D-T reaction chime
	SoundFusionDD                    // D-D reaction chime
	SoundFusionDHe3                  // D-He3 reaction chime
	SoundWallHit                     // Boundary contact crackle
	SoundFault                       // Wall failure buzz
	SoundEpisodeEnd                  // Two-note cadence
	soundTypeCount
)

// SoundForReaction maps a fusion channel to its chime
func SoundForReaction(r parameter.Reaction) (SoundType, bool) {
	switch r {
	case parameter.ReactionDT:
		return SoundFusionDT, true
	case parameter.ReactionDD:
		return SoundFusionDD, true
	case parameter.ReactionDHe3:
		return SoundFusionDHe3, true
	}
	return 0, false
}

// generateSound renders a finite streamer for st
func generateSound(st SoundType) beep.Streamer {
	switch st {
	case SoundFusionDT:
		return beep.Take(sampleRate.N(250*time.Millisecond), NewChimeGenerator(sampleRate, 880, 10))
	case SoundFusionDD:
		return beep.Take(sampleRate.N(250*time.Millisecond), NewChimeGenerator(sampleRate, 659.25, 10))
	case SoundFusionDHe3:
		return beep.Take(sampleRate.N(300*time.Millisecond), NewChimeGenerator(sampleRate, 1318.5, 8))
	case SoundWallHit:
		return beep.Take(sampleRate.N(80*time.Millisecond), NewDecayGenerator(sampleRate, 1))
	case SoundFault:
		return beep.Take(sampleRate.N(600*time.Millisecond), NewBuzzGenerator(sampleRate, 90))
	case SoundEpisodeEnd:
		return beep.Seq(
			beep.Take(sampleRate.N(150*time.Millisecond), NewChimeGenerator(sampleRate, 523.25, 12)),
			beep.Take(sampleRate.N(250*time.Millisecond), NewChimeGenerator(sampleRate, 392, 8)),
		)
	}
	return beep.Silence(0)
}

// ChimeGenerator generates a bell-like tone with exponential decay
type ChimeGenerator struct {
	sr    beep.SampleRate
	freq  float64
	decay float64
	pos   int
}

// NewChimeGenerator creates a chime at freq Hz decaying at rate decay per second
func NewChimeGenerator(sr beep.SampleRate, freq, decay float64) *ChimeGenerator {
	return &ChimeGenerator{sr: sr, freq: freq, decay: decay}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Fundamental plus inharmonic partial for a metallic tone
		sample := 0.6*math.Sin(2*math.Pi*g.freq*t) + 0.25*math.Sin(2*math.Pi*g.freq*2.76*t)

		attack := math.Min(t/0.005, 1.0)
		sample *= 0.3 * attack * math.Exp(-t*g.decay)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChimeGenerator) Err() error {
	return nil
}

// BuzzGenerator generates a low-pitch buzz sound
type BuzzGenerator struct {
	sr   beep.SampleRate
	freq float64
	pos  int
}

// NewBuzzGenerator creates a buzz sound generator
func NewBuzzGenerator(sr beep.SampleRate, freq float64) *BuzzGenerator {
	return &BuzzGenerator{
		sr:   sr,
		freq: freq,
	}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Odd harmonics for a harsh alarm tone
		sample := 0.0
		sample += 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*3*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*5*t)

		// 8 Hz tremolo, 20ms fade in
		tremolo := 0.6 + 0.4*math.Sin(2*math.Pi*8*t)
		envelope := math.Min(t/0.02, 1.0)
		sample *= envelope * tremolo * 0.4

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}

// DecayGenerator generates a short crackle
type DecayGenerator struct {
	sr   beep.SampleRate
	pos  int
	seed int64
}

// NewDecayGenerator creates a crackle generator; equal seeds give equal output
func NewDecayGenerator(sr beep.SampleRate, seed int64) *DecayGenerator {
	return &DecayGenerator{
		sr:   sr,
		seed: seed,
	}
}

func (g *DecayGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		// Quick attack, fast decay
		envelope := math.Exp(-t * 40)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1

		rumble := 0.3 * math.Sin(2*math.Pi*80*t)

		sample := envelope * (0.25*noise + rumble)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *DecayGenerator) Err() error {
	return nil
}
