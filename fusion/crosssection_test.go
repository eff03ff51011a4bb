package fusion

import (
	"math"
	"testing"

	"github.com/lixenwraith/fusion-sim/core"
	"github.com/lixenwraith/fusion-sim/parameter"
)

var allReactions = []parameter.Reaction{parameter.ReactionDT, parameter.ReactionDD, parameter.ReactionDHe3}

func TestCrossSectionZeroForNonPositiveEnergy(t *testing.T) {
	for _, r := range allReactions {
		for _, e := range []float64{0, -1, -1e9, math.NaN(), math.Inf(1)} {
			if got := CrossSection(r, e); got != 0 {
				t.Errorf("%s at E=%v: expected 0, got %v", r, e, got)
			}
		}
	}
	if got := CrossSection(parameter.ReactionNone, 64); got != 0 {
		t.Errorf("Expected 0 for unknown channel, got %v", got)
	}
}

func TestCrossSectionPositiveNearPeak(t *testing.T) {
	for _, r := range allReactions {
		peak := parameter.Params(r).PeakEnergyKeV
		for _, f := range []float64{0.25, 0.5, 1, 2, 4} {
			if got := CrossSection(r, peak*f); !(got > 0) {
				t.Errorf("%s at %v keV: expected positive cross-section, got %v", r, peak*f, got)
			}
		}
	}
}

func TestCrossSectionDTPeak(t *testing.T) {
	atPeak := CrossSection(parameter.ReactionDT, parameter.DTPeakEnergyKeV)
	if math.Abs(atPeak-parameter.DTCrossSectionMax) > 1e-9 {
		t.Fatalf("Expected σ(64 keV) = %v, got %v", parameter.DTCrossSectionMax, atPeak)
	}

	for _, e := range []float64{1, 10, 32, 60, 70, 128, 500, 5000} {
		if got := CrossSection(parameter.ReactionDT, e); got >= atPeak {
			t.Errorf("Expected σ(%v keV) < σ(peak), got %v >= %v", e, got, atPeak)
		}
	}

	// Decays monotonically away from the peak on both sides
	prev := atPeak
	for e := 64.0; e < 10000; e *= 1.5 {
		got := CrossSection(parameter.ReactionDT, e)
		if got > prev+1e-12 {
			t.Errorf("Expected non-increasing σ above peak at %v keV", e)
		}
		prev = got
	}
	prev = atPeak
	for e := 64.0; e > 0.5; e /= 1.5 {
		got := CrossSection(parameter.ReactionDT, e)
		if got > prev+1e-12 {
			t.Errorf("Expected non-increasing σ below peak at %v keV", e)
		}
		prev = got
	}
	if far := CrossSection(parameter.ReactionDT, 1e5); far > atPeak*1e-3 {
		t.Errorf("Expected σ far above peak to vanish, got %v", far)
	}
}

func TestProbabilityBoundsAndMonotonicity(t *testing.T) {
	if p := Probability(0, 1, 100); p != 0 {
		t.Errorf("Expected 0 probability for zero cross-section, got %v", p)
	}
	if p := Probability(5, 1, 0); p != 0 {
		t.Errorf("Expected 0 probability for empty ensemble, got %v", p)
	}
	if p := Probability(1e9, 1.5, 1000); p != parameter.ProbabilityMax {
		t.Errorf("Expected cap %v, got %v", parameter.ProbabilityMax, p)
	}

	sigmas := []float64{0, 0.001, 0.1, 1, 5, 50, 500}
	confs := []float64{0, 0.1, 0.5, 1, 1.5}
	for _, c := range confs {
		prev := -1.0
		for _, s := range sigmas {
			p := Probability(s, c, 60)
			if p < 0 || p > parameter.ProbabilityMax {
				t.Fatalf("Probability(%v, %v) out of range: %v", s, c, p)
			}
			if p < prev {
				t.Errorf("Expected non-decreasing in sigma at C=%v: %v < %v", c, p, prev)
			}
			prev = p
		}
	}
	for _, s := range sigmas {
		prev := -1.0
		for _, c := range confs {
			p := Probability(s, c, 60)
			if p < prev {
				t.Errorf("Expected non-decreasing in confinement at σ=%v: %v < %v", s, p, prev)
			}
			prev = p
		}
	}

	// Density saturates at 100 particles
	if Probability(1, 0.5, 100) != Probability(1, 0.5, 400) {
		t.Error("Expected density factor to saturate at 100 particles")
	}
	if Probability(1, 0.5, 50) >= Probability(1, 0.5, 100) {
		t.Error("Expected lower probability below saturation density")
	}
}

func TestReactionFor(t *testing.T) {
	d, tr, he := core.SpeciesD, core.SpeciesT, core.SpeciesHe3
	cases := []struct {
		mode core.ReactionMode
		a, b core.Species
		want parameter.Reaction
		ok   bool
	}{
		{core.ReactionModeDT, d, tr, parameter.ReactionDT, true},
		{core.ReactionModeDT, tr, d, parameter.ReactionDT, true},
		{core.ReactionModeDT, d, d, parameter.ReactionNone, false},
		{core.ReactionModeDT, d, he, parameter.ReactionNone, false},
		{core.ReactionModeDDDHe3, d, d, parameter.ReactionDD, true},
		{core.ReactionModeDDDHe3, he, d, parameter.ReactionDHe3, true},
		{core.ReactionModeDDDHe3, d, tr, parameter.ReactionNone, false},
		{core.ReactionModeDDDHe3, he, he, parameter.ReactionNone, false},
	}
	for _, tc := range cases {
		got, ok := ReactionFor(tc.mode, tc.a, tc.b)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ReactionFor(%s, %s, %s): expected (%s, %v), got (%s, %v)", tc.mode, tc.a, tc.b, tc.want, tc.ok, got, ok)
		}
	}
}
