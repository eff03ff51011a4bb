package core

import (
	"github.com/lixenwraith/fusion-sim/parameter"
)

// Flash is the transient visual/energy marker emitted on fusion
// Output artifact only; nothing in the physics reads it back
type Flash struct {
	ID       uint64             `json:"id"`
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	Radius   float64            `json:"radius"`
	Opacity  float64            `json:"opacity"`
	Reaction parameter.Reaction `json:"reaction"`
}

// FusionEvent records one successful reaction
type FusionEvent struct {
	Tick         uint64             `json:"tick"`
	Reaction     parameter.Reaction `json:"reaction"`
	ReactantA    uint64             `json:"reactant_a"`
	ReactantB    uint64             `json:"reactant_b"`
	Product      uint64             `json:"product,omitempty"`
	X            float64            `json:"x"`
	Y            float64            `json:"y"`
	EnergyMeV    float64            `json:"energy_mev"`
	CollisionKeV float64            `json:"collision_kev"`
	Probability  float64            `json:"probability"`
}

// AgeFlashes grows and fades every flash, dropping those fully faded
func AgeFlashes(flashes []Flash) []Flash {
	kept := flashes[:0]
	for _, f := range flashes {
		f.Radius += parameter.FlashGrowth
		f.Opacity -= parameter.FlashDecay
		if f.Opacity <= 0 {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
