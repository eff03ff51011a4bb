package parameter

// Simulation area (abstract pixels)
const (
	WorldWidth     = 800.0
	WorldHeight    = 600.0
	ParticleRadius = 4.0
)

// Settings bounds; out-of-range input is clamped, never rejected
const (
	TemperatureMin     = 0.0
	TemperatureMax     = 500.0
	ConfinementMin     = 0.0
	ConfinementMax     = 1.5
	ParticleCountMin   = 2
	ParticleCountMax   = 400
	EnergyThresholdMax = 1e6

	DefaultTemperature     = 100.0
	DefaultConfinement     = 0.5
	DefaultParticleCount   = 60
	DefaultEnergyThreshold = 1000.0
)

// Species masses in deuteron-relative units
const (
	MassD   = 2.0
	MassT   = 3.0
	MassHe3 = 3.0
)

// Effective confinement
const (
	// EffectiveConfinementFloor is the minimum field strength seen by the integrator
	EffectiveConfinementFloor = 0.1
	// WallPenaltyScale converts lost wall integrity (fraction) into confinement penalty
	WallPenaltyScale = 0.3
)

// Tokamak force model
const (
	// LorentzStrength is the radial pull toward the field centre per unit confinement
	LorentzStrength = 0.05
	// GyroStrength is the perpendicular gyration term per unit confinement
	GyroStrength = 0.02
	// ThermalNoise scales isotropic velocity jitter by temperature
	ThermalNoise = 0.002
	// Damping is the per-step velocity retention
	Damping = 0.99
	// Restitution is the fraction of normal speed kept after a wall bounce
	Restitution = 0.8
	// MinForceDistance guards direction normalisation near the centre
	MinForceDistance = 1e-6
	// InitialSpeedPerUnit scales initial random speed by temperature
	InitialSpeedPerUnit = 0.01
	// InitialSpreadFraction of min(W,H) used as the seeding disc radius
	InitialSpreadFraction = 0.25
)

// Orbital force model
const (
	// OrbitalBaseRate is the angular rate (rad/step) at the reference radius and unit confinement
	OrbitalBaseRate = 0.02
	// OrbitalRefRadius normalises the Kepler-like radius ratio
	OrbitalRefRadius = 150.0
	// MinRadiusRatio bounds r/RefRadius away from zero
	MinRadiusRatio = 0.05
	// OrbitalNoise scales angular perturbation by temperature
	OrbitalNoise = 0.0001
	// OrbitDecay shrinks the orbit radius after a wall contact
	OrbitDecay = 0.95
	// OrbitRadiusMin/Max bound seeded orbits
	OrbitRadiusMin = 50.0
	OrbitRadiusMax = 270.0
	// OrbitEccentricityMax bounds seeded eccentricity
	OrbitEccentricityMax = 0.3
)

// Wall
const (
	WallIntegrityMax = 100.0
	WallDamagePerHit = 0.02
)

// Collision and fusion detection
const (
	// ProximityRadius is the pair distance that qualifies for a fusion roll
	ProximityRadius = 3 * ParticleRadius
	// ElasticRadius is the tighter distance for elastic scattering
	ElasticRadius = 2 * ParticleRadius
	// ThermalKeVPerUnit converts temperature into collision energy
	ThermalKeVPerUnit = 0.6
	// PeakShapeWidth is the squared-log width of the cross-section peak
	PeakShapeWidth = 2.0
	// ProbabilityScale converts barns into per-roll reaction odds
	ProbabilityScale = 0.05
	// DensitySaturationCount is the particle count at which density stops boosting odds
	DensitySaturationCount = 100
	// ProbabilityMax caps any single roll
	ProbabilityMax = 0.95
	// ProductMomentumFraction is the share of reactant momentum carried by a He3 product
	ProductMomentumFraction = 0.4
)

// Flash lifecycle
const (
	FlashGrowth = 1.5
	FlashDecay  = 0.05
)
