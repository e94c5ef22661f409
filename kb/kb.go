package kb

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/model"
)

var (
	// ErrMemberExists is returned when adding a name that is already on the
	// roster.
	ErrMemberExists = errors.New("member already on roster")
	// ErrMemberNotFound is returned for updates to an unknown name.
	ErrMemberNotFound = errors.New("member not found")
)

// EventType indicates what kind of change happened on the roster.
type EventType int

const (
	EventMemberAdded EventType = iota
	EventRosterCleared
)

func (t EventType) String() string {
	switch t {
	case EventMemberAdded:
		return "member_added"
	case EventRosterCleared:
		return "roster_cleared"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}

// Member is a decision recipient: a launched probe or a deployed council
// node.
type Member struct {
	Name  string
	Class model.RecipientClass
	// Location is the host body for council nodes and the trajectory kind
	// for probes.
	Location string
	Year     float64
	Position core.Vec3
}

// Event is emitted to subscribers when the roster changes. Position
// updates are not broadcast.
type Event struct {
	Type   EventType
	Member Member
}

// Roster is an in-memory, thread-safe store of decision recipients.
type Roster struct {
	mu sync.RWMutex

	members map[string]*Member
	order   []string

	nextSub int
	subs    map[int]func(Event)
}

// NewRoster constructs an empty roster.
func NewRoster() *Roster {
	return &Roster{
		members: make(map[string]*Member),
		subs:    make(map[int]func(Event)),
	}
}

// Add places m on the roster and notifies subscribers.
func (r *Roster) Add(m Member) error {
	r.mu.Lock()
	if _, exists := r.members[m.Name]; exists {
		r.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrMemberExists, m.Name)
	}
	stored := m
	r.members[m.Name] = &stored
	r.order = append(r.order, m.Name)
	subs := r.subscribersLocked()
	r.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(Event{Type: EventMemberAdded, Member: m})
	}
	return nil
}

// UpdatePosition moves a member.
func (r *Roster) UpdatePosition(name string, pos core.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMemberNotFound, name)
	}
	m.Position = pos
	return nil
}

// Get returns a copy of the named member.
func (r *Roster) Get(name string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[name]
	if !ok {
		return Member{}, false
	}
	return *m, true
}

// List returns a snapshot of all members in the order they were added.
func (r *Roster) List() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Member, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, *r.members[name])
	}
	return out
}

// ListClass returns a snapshot of the members of one class.
func (r *Roster) ListClass(class model.RecipientClass) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Member
	for _, name := range r.order {
		if m := r.members[name]; m.Class == class {
			out = append(out, *m)
		}
	}
	return out
}

// Count returns the number of members of class.
func (r *Roster) Count(class model.RecipientClass) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, m := range r.members {
		if m.Class == class {
			n++
		}
	}
	return n
}

// Len is the total number of members.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Clear removes every member and notifies subscribers once.
func (r *Roster) Clear() {
	r.mu.Lock()
	r.members = make(map[string]*Member)
	r.order = nil
	subs := r.subscribersLocked()
	r.mu.Unlock()

	for _, sub := range subs {
		sub(Event{Type: EventRosterCleared})
	}
}

// Subscribe registers a callback for roster events. It returns an
// unsubscribe function that is safe to call more than once.
func (r *Roster) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	}
}

// subscribersLocked returns subscribers in registration order.
func (r *Roster) subscribersLocked() []func(Event) {
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.subs[id])
	}
	return out
}
