package status

import "sync/atomic"

// Metric keys published by the simulation
const (
	KeyState         = "sim.state"
	KeyEpisode       = "sim.episode"
	KeyTicks         = "sim.ticks"
	KeyParticles     = "sim.particles"
	KeyEnergy        = "sim.energy_mev"
	KeyWall          = "sim.wall_integrity"
	KeyTotalFusions  = "sim.total_fusions"
	KeyFusionRate    = "telemetry.fusion_rate"
	KeyQFactor       = "telemetry.q_factor"
	KeySafetyFactor  = "telemetry.safety_factor"
	KeyLawson        = "telemetry.lawson_ratio"
	KeyAdvisorCalls  = "advisor.calls"
	KeyAdvisorErrors = "advisor.errors"
	KeyRecorderDrops = "recorder.dropped"
	KeyAudioEnabled  = "audio.enabled"
	KeyEventsLost    = "events.overwritten"
)

// SimGauges caches the pointers the controller and scheduler write every tick
type SimGauges struct {
	State         *AtomicString
	Episode       *atomic.Int64
	Ticks         *atomic.Int64
	Particles     *atomic.Int64
	Energy        *AtomicFloat
	Wall          *AtomicFloat
	TotalFusions  *atomic.Int64
	FusionRate    *atomic.Int64
	QFactor       *AtomicFloat
	SafetyFactor  *AtomicFloat
	Lawson        *AtomicFloat
	AdvisorCalls  *atomic.Int64
	AdvisorErrors *atomic.Int64
	RecorderDrops *atomic.Int64
}

// NewSimGauges registers the simulation metrics in r
func NewSimGauges(r *Registry) *SimGauges {
	return &SimGauges{
		State:         r.Strings.Get(KeyState),
		Episode:       r.Ints.Get(KeyEpisode),
		Ticks:         r.Ints.Get(KeyTicks),
		Particles:     r.Ints.Get(KeyParticles),
		Energy:        r.Floats.Get(KeyEnergy),
		Wall:          r.Floats.Get(KeyWall),
		TotalFusions:  r.Ints.Get(KeyTotalFusions),
		FusionRate:    r.Ints.Get(KeyFusionRate),
		QFactor:       r.Floats.Get(KeyQFactor),
		SafetyFactor:  r.Floats.Get(KeySafetyFactor),
		Lawson:        r.Floats.Get(KeyLawson),
		AdvisorCalls:  r.Ints.Get(KeyAdvisorCalls),
		AdvisorErrors: r.Ints.Get(KeyAdvisorErrors),
		RecorderDrops: r.Ints.Get(KeyRecorderDrops),
	}
}
