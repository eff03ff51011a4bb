package audio

import (
	"github.com/lixenwraith/fusion-sim/event"
)

// Player is the minimal playback surface the listener drives
type Player interface {
	Play(SoundType) bool
}

// Listen registers the sonification handler on r
// Wall-hit batches collapse to one crackle per dispatch
func Listen(r *event.Router, p Player) {
	r.Register(event.HandlerFunc{
		Types: []event.EventType{
			event.EventFusion,
			event.EventWallHit,
			event.EventFault,
			event.EventEpisodeEnd,
		},
		Fn: func(ev event.SimEvent) {
			if st, ok := SoundFor(ev); ok {
				p.Play(st)
			}
		},
	})
}

// SoundFor maps an event to its sound
func SoundFor(ev event.SimEvent) (SoundType, bool) {
	switch ev.Type {
	case event.EventFusion:
		if pl, ok := ev.Payload.(*event.FusionPayload); ok {
			return SoundForReaction(pl.Event.Reaction)
		}
	case event.EventWallHit:
		if pl, ok := ev.Payload.(*event.WallHitPayload); ok && pl.Hits > 0 {
			return SoundWallHit, true
		}
	case event.EventFault:
		return SoundFault, true
	case event.EventEpisodeEnd:
		return SoundEpisodeEnd, true
	}
	return 0, false
}
