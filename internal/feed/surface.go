package feed

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/display"
)

// MarkerUpdate is one entry of a frame message.
type MarkerUpdate struct {
	ID       string    `json:"id"`
	Position core.Vec3 `json:"position"`
	Scale    float64   `json:"scale"`
}

// FramePayload carries every marker that moved since the previous frame.
type FramePayload struct {
	Updates []MarkerUpdate `json:"updates"`
}

// DisposePayload names a removed marker.
type DisposePayload struct {
	ID string `json:"id"`
}

// Surface is a display.Surface that forwards marker operations to the
// hub. Creates and disposes go out immediately; updates are batched into
// one frame message, at most once per minFrame of display time.
type Surface struct {
	hub      *Hub
	minFrame time.Duration

	mu        sync.Mutex
	markers   map[string]display.Marker
	pending   map[string]MarkerUpdate
	lastFrame time.Time
}

var _ display.Surface = (*Surface)(nil)

// NewSurface binds a surface to hub and registers it as the hub's greeter
// so new viewers receive the live marker set.
func NewSurface(hub *Hub, minFrame time.Duration) *Surface {
	s := &Surface{
		hub:      hub,
		minFrame: minFrame,
		markers:  make(map[string]display.Marker),
		pending:  make(map[string]MarkerUpdate),
	}
	hub.SetGreeter(s.greeting)
	return s
}

// Ready reports whether the hub is still open.
func (s *Surface) Ready() bool { return s.hub.Open() }

func (s *Surface) CreateMarker(m display.Marker) error {
	s.mu.Lock()
	if _, ok := s.markers[m.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", display.ErrDuplicateMarker, m.ID)
	}
	s.markers[m.ID] = m
	s.mu.Unlock()
	return s.hub.Publish(Message{Type: TypeMarkerCreate, At: time.Now().UTC(), Payload: m})
}

func (s *Surface) UpdateMarker(id string, pos core.Vec3, scale float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[id]
	if !ok {
		return fmt.Errorf("%w: %s", display.ErrUnknownMarker, id)
	}
	if m.Position == pos && m.Scale == scale {
		return nil
	}
	m.Position = pos
	m.Scale = scale
	s.markers[id] = m
	s.pending[id] = MarkerUpdate{ID: id, Position: pos, Scale: scale}
	return nil
}

func (s *Surface) DisposeMarker(id string) error {
	s.mu.Lock()
	if _, ok := s.markers[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", display.ErrUnknownMarker, id)
	}
	delete(s.markers, id)
	delete(s.pending, id)
	s.mu.Unlock()
	return s.hub.Publish(Message{Type: TypeMarkerDispose, At: time.Now().UTC(), Payload: DisposePayload{ID: id}})
}

func (s *Surface) RenderFrame(at time.Time) error {
	s.mu.Lock()
	if len(s.pending) == 0 || (!s.lastFrame.IsZero() && at.Sub(s.lastFrame) < s.minFrame) {
		s.mu.Unlock()
		return nil
	}
	updates := make([]MarkerUpdate, 0, len(s.pending))
	for _, u := range s.pending {
		updates = append(updates, u)
	}
	s.pending = make(map[string]MarkerUpdate)
	s.lastFrame = at
	s.mu.Unlock()

	sort.Slice(updates, func(i, j int) bool { return updates[i].ID < updates[j].ID })
	return s.hub.Publish(Message{Type: TypeFrame, At: at, Payload: FramePayload{Updates: updates}})
}

// greeting is called under the hub lock and must not publish.
func (s *Surface) greeting() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.markers))
	for id := range s.markers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	now := time.Now().UTC()
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		out = append(out, Message{Type: TypeMarkerCreate, At: now, Payload: s.markers[id]})
	}
	return out
}
