package core

import "time"

// TelemetrySnapshot is a point-in-time derived record
// Never fed back into the physics kernel
type TelemetrySnapshot struct {
	Time             time.Time `json:"time"`
	Tick             uint64    `json:"tick"`
	QFactor          float64   `json:"q_factor"`
	FusionRate       int       `json:"fusion_rate"`
	ParticleCount    int       `json:"particle_count"`
	SafetyFactor     float64   `json:"safety_factor"`
	FractalDimension float64   `json:"fractal_dimension"`
	Turbulence       float64   `json:"turbulence"`
	LawsonRatio      float64   `json:"lawson_ratio"`
	Temperature      float64   `json:"temperature"`
	Confinement      float64   `json:"confinement"`
}

// History is a bounded ring of telemetry snapshots, oldest evicted first
type History struct {
	buf   []TelemetrySnapshot
	start int
	size  int
}

// NewHistory creates a ring holding at most capacity samples
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]TelemetrySnapshot, capacity)}
}

// Push appends s, evicting the oldest sample when full
func (h *History) Push(s TelemetrySnapshot) {
	idx := (h.start + h.size) % len(h.buf)
	h.buf[idx] = s
	if h.size < len(h.buf) {
		h.size++
		return
	}
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of stored samples
func (h *History) Len() int {
	return h.size
}

// Cap returns the ring capacity
func (h *History) Cap() int {
	return len(h.buf)
}

// Latest returns the most recent sample
func (h *History) Latest() (TelemetrySnapshot, bool) {
	if h.size == 0 {
		return TelemetrySnapshot{}, false
	}
	return h.buf[(h.start+h.size-1)%len(h.buf)], true
}

// Window copies out the newest n samples in chronological order
// n <= 0 or n > Len returns everything
func (h *History) Window(n int) []TelemetrySnapshot {
	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]TelemetrySnapshot, n)
	first := h.start + h.size - n
	for i := 0; i < n; i++ {
		out[i] = h.buf[(first+i)%len(h.buf)]
	}
	return out
}

// Clear drops all samples
func (h *History) Clear() {
	h.start = 0
	h.size = 0
}
