package event

// EventType represents the type of simulation event
type EventType int

const (
	// EventNone is the zero value, never emitted
	EventNone EventType = iota

	// === Physics Event ===

	// EventFusion reports a single fusion
	// Trigger: Detector success | Consumer: AudioSystem, Console | Payload: *FusionPayload
	EventFusion

	// EventWallHit reports boundary contacts of one tick
	// Trigger: Integrator reported damage | Consumer: Console | Payload: *WallHitPayload
	EventWallHit

	// === Episode Event ===

	// EventFault signals wall integrity reached zero
	// Trigger: Controller | Consumer: AudioSystem, Console | Payload: *EpisodePayload
	EventFault

	// EventEpisodeStart signals Idle -> Running
	// Trigger: Start | Consumer: Console | Payload: *EpisodePayload
	EventEpisodeStart

	// EventEpisodeEnd carries the summary of a finished episode
	// Trigger: Stop, fault | Consumer: Console | Payload: *core.EpisodeSummary
	EventEpisodeEnd

	// EventReset signals ensemble and counters were reinitialized
	// Trigger: Reset, fault auto-reset | Consumer: Console | Payload: *EpisodePayload
	EventReset

	// === Control Event ===

	// EventSettingsChanged carries the clamped settings after an operator or advisor change
	// Trigger: Set*, ApplyAdvice | Consumer: Console | Payload: *SettingsPayload
	EventSettingsChanged

	// EventAdviceApplied reports an advisory decision taken by the controller
	// Trigger: ApplyAdvice | Consumer: Console | Payload: *AdvicePayload
	EventAdviceApplied
)

var eventNames = map[EventType]string{
	EventNone:            "none",
	EventFusion:          "fusion",
	EventWallHit:         "wall_hit",
	EventFault:           "fault",
	EventEpisodeStart:    "episode_start",
	EventEpisodeEnd:      "episode_end",
	EventReset:           "reset",
	EventSettingsChanged: "settings_changed",
	EventAdviceApplied:   "advice_applied",
}

// String returns the wire label of the event type
func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the label for JSON consumers
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SimEvent is the generic event container
type SimEvent struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
	Tick    uint64    `json:"tick"`
}
