// Package schedule provides the deterministic event queue drained by the
// mission update loop. Deferred work (decision reveals, auto-exit) is
// scheduled against display time and fired by RunDue, never by timers.
package schedule

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/chronomesh/timectrl"
)

// Queue schedules callbacks to run at specific display times.
type Queue interface {
	// Schedule registers f to run at 'at' and returns an ID for Cancel.
	Schedule(at time.Time, f func()) (id string)

	// Cancel drops a pending event. It reports false if the ID is unknown
	// or the event already ran.
	Cancel(id string) bool

	// CancelAll drops every pending event and returns how many were dropped.
	CancelAll() int

	// Pending is the number of events still waiting to run.
	Pending() int

	// Now returns the current display time from the underlying clock.
	Now() time.Time

	// RunDue executes every event whose time is <= Now() and returns how
	// many ran. Events sharing a fire time run in scheduling order.
	RunDue() int
}

type scheduledEvent struct {
	id        string
	when      time.Time
	f         func()
	cancelled bool
}

type eventQueue struct {
	clock timectrl.Clock

	mu      sync.Mutex
	counter uint64
	events  []*scheduledEvent // ordered by 'when', ties in insertion order
	index   map[string]*scheduledEvent
}

// NewQueue creates an event queue backed by clock.
func NewQueue(clock timectrl.Clock) Queue {
	return &eventQueue{
		clock: clock,
		index: make(map[string]*scheduledEvent),
	}
}

func (q *eventQueue) Schedule(at time.Time, f func()) (id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.counter++
	id = fmt.Sprintf("ev-%d", q.counter)
	ev := &scheduledEvent{id: id, when: at, f: f}

	// Insert after any event with the same time.
	idx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].when.After(at)
	})
	q.events = append(q.events, nil)
	copy(q.events[idx+1:], q.events[idx:])
	q.events[idx] = ev

	q.index[id] = ev
	return id
}

func (q *eventQueue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	ev, ok := q.index[id]
	if !ok {
		return false
	}
	// Removal from q.events is lazy; RunDue skips cancelled entries.
	ev.cancelled = true
	delete(q.index, id)
	return true
}

func (q *eventQueue) CancelAll() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.index)
	q.events = nil
	q.index = make(map[string]*scheduledEvent)
	return n
}

func (q *eventQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.index)
}

func (q *eventQueue) Now() time.Time {
	return q.clock.Now()
}

// popDueLocked removes and returns the earliest live event at or before
// now, or nil.
func (q *eventQueue) popDueLocked(now time.Time) *scheduledEvent {
	for len(q.events) > 0 {
		ev := q.events[0]
		if ev.cancelled {
			q.events = q.events[1:]
			continue
		}
		if ev.when.After(now) {
			return nil
		}
		q.events = q.events[1:]
		delete(q.index, ev.id)
		return ev
	}
	return nil
}

func (q *eventQueue) RunDue() int {
	ran := 0
	for {
		q.mu.Lock()
		ev := q.popDueLocked(q.clock.Now())
		q.mu.Unlock()
		if ev == nil {
			return ran
		}

		// Callbacks run outside the lock so they may schedule or cancel.
		if ev.f != nil {
			ev.f()
		}
		ran++
	}
}
