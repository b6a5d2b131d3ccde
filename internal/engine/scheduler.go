package engine

import "container/heap"

// ScheduledEvent is one entry in the scheduler's priority queue.
// Priority is 0 for system events else a clockwise
// turn-order offset from the current racer; Serial is a global monotonic
// tiebreaker assigned by the scheduler at push time.
type ScheduledEvent struct {
	Phase           Phase
	Depth           int
	Priority        int
	Serial          int64
	Event           Event
	Mode            TimingMode
	LockedAbilities map[string]struct{}
}

// depthKey returns the depth component of the sort key, which depends on
// TimingMode: FLAT ignores depth, BFS sorts shallow-first, DFS sorts
// deep-first.
func (se ScheduledEvent) depthKey() int {
	switch se.Mode {
	case BFS:
		return se.Depth
	case DFS:
		return -se.Depth
	default: // Flat
		return 0
	}
}

// less implements the mode-specific sort key: (phase, depthKey, priority,
// serial), all ascending.
func (se ScheduledEvent) less(other ScheduledEvent) bool {
	if se.Phase != other.Phase {
		return se.Phase < other.Phase
	}
	dk, odk := se.depthKey(), other.depthKey()
	if dk != odk {
		return dk < odk
	}
	if se.Priority != other.Priority {
		return se.Priority < other.Priority
	}
	return se.Serial < other.Serial
}

// schedHeap is the container/heap backing store. container/heap is the
// idiomatic standard-library priority queue in Go; there is no ecosystem
// library in the retrieval pack that does this better, so this one part
// of the scheduler legitimately stays on the standard library (see
// DESIGN.md).
type schedHeap []ScheduledEvent

func (h schedHeap) Len() int            { return len(h) }
func (h schedHeap) Less(i, j int) bool  { return h[i].less(h[j]) }
func (h schedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *schedHeap) Push(x any)         { *h = append(*h, x.(ScheduledEvent)) }
func (h *schedHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scheduler is the priority queue of ScheduledEvents. It assigns serials
// and owns ordering; depth and priority are computed by the caller
// (Engine.scheduleEvent) since they depend on turn-order and
// dispatch-nesting state that belongs to the engine, not the queue itself.
type Scheduler struct {
	mode   TimingMode
	h      schedHeap
	serial int64
}

// NewScheduler creates an empty scheduler configured with the given
// TimingMode.
func NewScheduler(mode TimingMode) *Scheduler {
	s := &Scheduler{mode: mode}
	heap.Init(&s.h)
	return s
}

// Push enqueues a fully-formed ScheduledEvent, stamping its Mode and
// Serial. The Phase/Depth/Priority fields must already be set by the
// caller.
func (s *Scheduler) Push(se ScheduledEvent) ScheduledEvent {
	s.serial++
	se.Serial = s.serial
	se.Mode = s.mode
	heap.Push(&s.h, se)
	return se
}

// Pop returns and removes the least event by the mode-specific sort key.
// Calling Pop on an empty scheduler is a programming error — the turn
// loop always checks Len() first.
func (s *Scheduler) Pop() ScheduledEvent {
	if s.h.Len() == 0 {
		panic("engine: Pop called on an empty scheduler")
	}
	return heap.Pop(&s.h).(ScheduledEvent)
}

// Len reports the number of queued events.
func (s *Scheduler) Len() int { return s.h.Len() }

// Clear empties the queue (used on race end).
func (s *Scheduler) Clear() {
	s.h = s.h[:0]
}
