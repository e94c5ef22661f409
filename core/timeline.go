package core

import "github.com/signalsfoundry/chronomesh/model"

// DefaultTimelineCapacity is the number of events kept in the mission log.
const DefaultTimelineCapacity = 20

// Timeline is a bounded, most-recent-first event log.
type Timeline struct {
	capacity int
	events   []model.TimelineEvent
}

// NewTimeline returns a timeline holding at most capacity events. A
// capacity below one is raised to one.
func NewTimeline(capacity int) *Timeline {
	if capacity < 1 {
		capacity = 1
	}
	return &Timeline{capacity: capacity, events: make([]model.TimelineEvent, 0, capacity)}
}

// Add records ev as the newest entry, evicting the oldest on overflow.
func (t *Timeline) Add(ev model.TimelineEvent) {
	if len(t.events) < t.capacity {
		t.events = append(t.events, model.TimelineEvent{})
	}
	copy(t.events[1:], t.events[:len(t.events)-1])
	t.events[0] = ev
}

// Events returns the entries newest first.
func (t *Timeline) Events() []model.TimelineEvent {
	out := make([]model.TimelineEvent, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Timeline) Len() int      { return len(t.events) }
func (t *Timeline) Capacity() int { return t.capacity }

// Clear empties the log.
func (t *Timeline) Clear() { t.events = t.events[:0] }
