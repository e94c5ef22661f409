package display

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
)

// Recorder is an in-memory Surface. It keeps the live marker set and frame
// count, which is all a headless run or a test needs.
type Recorder struct {
	mu        sync.RWMutex
	ready     bool
	markers   map[string]Marker
	frames    int
	lastFrame time.Time
	created   int
	disposed  int
}

// NewRecorder returns a ready recorder.
func NewRecorder() *Recorder {
	return &Recorder{ready: true, markers: make(map[string]Marker)}
}

// SetReady toggles availability.
func (r *Recorder) SetReady(ready bool) {
	r.mu.Lock()
	r.ready = ready
	r.mu.Unlock()
}

func (r *Recorder) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

func (r *Recorder) CreateMarker(m Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateMarker, m.ID)
	}
	r.markers[m.ID] = m
	r.created++
	return nil
}

func (r *Recorder) UpdateMarker(id string, pos core.Vec3, scale float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, id)
	}
	m.Position = pos
	m.Scale = scale
	r.markers[id] = m
	return nil
}

func (r *Recorder) DisposeMarker(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.markers[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMarker, id)
	}
	delete(r.markers, id)
	r.disposed++
	return nil
}

func (r *Recorder) RenderFrame(at time.Time) error {
	r.mu.Lock()
	r.frames++
	r.lastFrame = at
	r.mu.Unlock()
	return nil
}

// Marker returns a live marker by ID.
func (r *Recorder) Marker(id string) (Marker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markers[id]
	return m, ok
}

// Markers returns the live markers sorted by ID.
func (r *Recorder) Markers() []Marker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Marker, 0, len(r.markers))
	for _, m := range r.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Live is the number of markers currently alive.
func (r *Recorder) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markers)
}

// Frames is the number of frames rendered so far.
func (r *Recorder) Frames() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames
}

// Totals reports how many markers were ever created and disposed.
func (r *Recorder) Totals() (created, disposed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.created, r.disposed
}
