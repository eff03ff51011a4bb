package parameter

import "time"

// Loop timing
const (
	// TickInterval is the fixed physics step period (~60 Hz)
	TickInterval = 16 * time.Millisecond

	// FrameUpdateInterval is the console redraw period
	FrameUpdateInterval = 33 * time.Millisecond

	// AdvisorInterval is the default advisory consult period
	AdvisorInterval = 5 * time.Second

	// AdvisorTimeout bounds a single advisory call
	AdvisorTimeout = 3 * time.Second
)

// Event queue
const (
	// EventQueueSize is the fixed capacity of the event ring buffer
	EventQueueSize = 2048

	// EventBufferMask is the bitmask for fast modulo operations (2048 - 1)
	EventBufferMask = 2047
)

// Persistence
const (
	// RecorderQueueSize bounds pending episode summaries awaiting persistence
	RecorderQueueSize = 32

	// PastEpisodeLimit is the number of ranked summaries handed to the advisor
	PastEpisodeLimit = 5
)
