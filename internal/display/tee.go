package display

import (
	"errors"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
)

// Tee forwards every operation to a primary surface and any number of
// followers. Readiness is the primary's. Follower errors are joined with
// the primary's but never stop delivery to the rest.
type Tee struct {
	primary   Surface
	followers []Surface
}

// NewTee builds a Tee.
func NewTee(primary Surface, followers ...Surface) *Tee {
	return &Tee{primary: primary, followers: followers}
}

func (t *Tee) Ready() bool { return t.primary.Ready() }

func (t *Tee) each(fn func(Surface) error) error {
	errs := []error{fn(t.primary)}
	for _, f := range t.followers {
		errs = append(errs, fn(f))
	}
	return errors.Join(errs...)
}

func (t *Tee) CreateMarker(m Marker) error {
	return t.each(func(s Surface) error { return s.CreateMarker(m) })
}

func (t *Tee) UpdateMarker(id string, pos core.Vec3, scale float64) error {
	return t.each(func(s Surface) error { return s.UpdateMarker(id, pos, scale) })
}

func (t *Tee) DisposeMarker(id string) error {
	return t.each(func(s Surface) error { return s.DisposeMarker(id) })
}

func (t *Tee) RenderFrame(at time.Time) error {
	return t.each(func(s Surface) error { return s.RenderFrame(at) })
}
