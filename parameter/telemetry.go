package parameter

import "time"

// Telemetry sampling and history
const (
	// TelemetryInterval is the sampling period, coarser than the physics tick
	TelemetryInterval = 200 * time.Millisecond
	// HistoryCapacity is the bounded telemetry ring size
	HistoryCapacity = 300
	// AdvisorHistoryWindow is the number of samples handed to the advisor
	AdvisorHistoryWindow = 50
)

// Derived metric shaping (illustrative proxies, not validated plasma physics)
const (
	// GoldenRatio is the "ideal" safety-factor target
	GoldenRatio = 1.618033988749895
	// SafetyReferenceTemperature is the temperature at which q = phi for C = 0.5
	SafetyReferenceTemperature = 100.0
	// InputPowerCoeff models heating power as coeff * T * C * n (MeV/s)
	InputPowerCoeff = 0.01
	// LawsonDensityScale converts particles per pixel^2 into m^-3
	LawsonDensityScale = 1e24
	// LawsonTauScale converts confinement into seconds of energy confinement time
	LawsonTauScale = 2.0
)
