// Package display defines the contract between the mission simulation and
// whatever renders it. The simulation only creates, moves and disposes
// markers and asks for frames; it never owns rendering details.
package display

import (
	"errors"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
)

//go:generate go tool mockgen -destination=./mocks/surface_mock.go -package=mocks . Surface

var (
	// ErrUnknownMarker is returned when updating or disposing a marker that
	// was never created or is already gone.
	ErrUnknownMarker = errors.New("unknown marker")
	// ErrDuplicateMarker is returned when creating a marker whose ID is live.
	ErrDuplicateMarker = errors.New("marker already exists")
)

// MarkerKind is the visual primitive a marker is drawn with.
type MarkerKind string

const (
	KindSphere MarkerKind = "sphere"
	KindLine   MarkerKind = "line"
	KindRing   MarkerKind = "ring"
	KindSprite MarkerKind = "sprite"
)

// Marker is a visual primitive placed in scene space.
type Marker struct {
	ID       string     `json:"id"`
	Kind     MarkerKind `json:"kind"`
	Label    string     `json:"label,omitempty"`
	Color    string     `json:"color,omitempty"`
	Position core.Vec3  `json:"position"`
	Scale    float64    `json:"scale"`
}

// Surface is the rendering collaborator.
type Surface interface {
	// Ready reports whether the surface can accept markers.
	Ready() bool
	CreateMarker(m Marker) error
	UpdateMarker(id string, pos core.Vec3, scale float64) error
	DisposeMarker(id string) error
	// RenderFrame marks the end of one update frame.
	RenderFrame(at time.Time) error
}

// Marker ID helpers keep naming consistent between producers and viewers.
func BodyMarkerID(name string) string    { return "body/" + name }
func ProbeMarkerID(name string) string   { return "probe/" + name }
func CouncilMarkerID(name string) string { return "council/" + name }
func PulseMarkerID(id string) string     { return "pulse/" + id }
