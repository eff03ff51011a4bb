package event

import (
	"sync/atomic"

	"github.com/lixenwraith/fusion-sim/parameter"
)

// slot is one ring entry; ready is set only after ev is fully written
type slot struct {
	ev    SimEvent
	ready atomic.Bool
}

// Queue is a lock-free MPSC ring of simulation events
//   - Push: any number of producers (tick path, command handlers)
//   - Consume: a single consumer, normally a Router
//
// When full, the oldest unread events are overwritten and counted
type Queue struct {
	slots       [parameter.EventQueueSize]slot
	head        atomic.Uint64 // next read sequence
	tail        atomic.Uint64 // next write sequence
	overwritten atomic.Uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push claims the next sequence and publishes ev into its slot
func (q *Queue) Push(ev SimEvent) {
	seq := q.tail.Add(1) - 1
	s := &q.slots[seq&parameter.EventBufferMask]
	s.ev = ev
	s.ready.Store(true)

	// Drag head forward past the slot just reclaimed
	for {
		head := q.head.Load()
		if seq+1-head <= parameter.EventQueueSize {
			return
		}
		if q.head.CompareAndSwap(head, seq+1-parameter.EventQueueSize) {
			q.overwritten.Add(seq + 1 - parameter.EventQueueSize - head)
			return
		}
	}
}

// window returns the readable range, clipped to the ring capacity
func (q *Queue) window() (head, n uint64) {
	head, tail := q.head.Load(), q.tail.Load()
	if tail <= head {
		return head, 0
	}
	n = tail - head
	if n > parameter.EventQueueSize {
		head = tail - parameter.EventQueueSize
		n = parameter.EventQueueSize
	}
	return head, n
}

// Consume drains published events in FIFO order
// Stops at the first slot whose producer has not finished writing; returns nil when empty
func (q *Queue) Consume() []SimEvent {
	for {
		head, n := q.window()
		if n == 0 {
			return nil
		}

		out := make([]SimEvent, 0, n)
		for i := uint64(0); i < n; i++ {
			s := &q.slots[(head+i)&parameter.EventBufferMask]
			if !s.ready.Load() {
				break
			}
			out = append(out, s.ev)
			s.ready.Store(false)
		}

		if q.head.CompareAndSwap(head, head+uint64(len(out))) {
			if len(out) == 0 {
				return nil
			}
			return out
		}
	}
}

// Len returns the approximate number of pending events
func (q *Queue) Len() int {
	_, n := q.window()
	return int(n)
}

// Overwritten returns how many unread events were lost to overflow
func (q *Queue) Overwritten() uint64 {
	return q.overwritten.Load()
}
