package core

import (
	"math"
	"sort"

	"github.com/signalsfoundry/chronomesh/model"
)

// Body is a propagated celestial body.
type Body struct {
	Name   string
	Def    model.BodyDefinition
	Motion MotionModel
}

// SolarSystem owns every body in the scene and propagates them together.
// Bodies are created once and never destroyed.
type SolarSystem struct {
	bodies map[string]*Body
	order  []string
}

// NewSolarSystem builds the planets and their satellites. Start angles are
// drawn from rng; a nil rng starts every body at angle 0.
func NewSolarSystem(planets []model.BodyDefinition, satellites []model.SatelliteDefinition, rng Rand) *SolarSystem {
	ss := &SolarSystem{bodies: make(map[string]*Body)}

	draw := func() float64 {
		if rng == nil {
			return 0
		}
		return rng.Float64() * 2 * math.Pi
	}

	for _, def := range planets {
		if _, dup := ss.bodies[def.Name]; dup || def.Name == "" {
			continue
		}
		ss.bodies[def.Name] = &Body{Name: def.Name, Def: def, Motion: NewMotionModel(def, draw())}
		ss.order = append(ss.order, def.Name)
	}
	for _, sat := range satellites {
		host, ok := ss.bodies[sat.Host]
		if !ok {
			continue
		}
		if _, dup := ss.bodies[sat.Name]; dup {
			continue
		}
		ss.bodies[sat.Name] = &Body{
			Name: sat.Name,
			Def: model.BodyDefinition{
				Name:  sat.Name,
				Size:  sat.Size,
				Color: sat.Color,
			},
			Motion: NewSatelliteOrbit(host.Motion, sat.Radius, sat.PeriodDays, draw()),
		}
		ss.order = append(ss.order, sat.Name)
	}
	return ss
}

// NewDefaultSolarSystem builds the standard eight planets plus the Moon.
func NewDefaultSolarSystem(rng Rand) *SolarSystem {
	return NewSolarSystem(model.DefaultBodies, model.DefaultSatellites, rng)
}

// Advance moves every body forward by days of simulated time.
func (ss *SolarSystem) Advance(days float64) {
	if days == 0 {
		return
	}
	for _, name := range ss.order {
		ss.bodies[name].Motion.Advance(days)
	}
}

// Reset returns every body to its starting phase.
func (ss *SolarSystem) Reset() {
	for _, name := range ss.order {
		ss.bodies[name].Motion.Reset()
	}
}

// Body looks up a body by name.
func (ss *SolarSystem) Body(name string) (*Body, bool) {
	b, ok := ss.bodies[name]
	return b, ok
}

// Position returns the named body's current position. Unknown names return
// ok=false and the origin.
func (ss *SolarSystem) Position(name string) (Vec3, bool) {
	b, ok := ss.bodies[name]
	if !ok {
		return Vec3{}, false
	}
	return b.Motion.Position(), true
}

// Velocity returns the named body's orbital velocity in scene units per
// simulated day. Satellites and unknown bodies report ok=false.
func (ss *SolarSystem) Velocity(name string) (Vec3, bool) {
	b, ok := ss.bodies[name]
	if !ok {
		return Vec3{}, false
	}
	orbit, ok := b.Motion.(*CircularOrbit)
	if !ok {
		return Vec3{}, false
	}
	return orbit.Velocity(), true
}

// Names returns the body names in creation order.
func (ss *SolarSystem) Names() []string {
	out := make([]string, len(ss.order))
	copy(out, ss.order)
	return out
}

// BodyPosition pairs a body name with its position.
type BodyPosition struct {
	Name     string
	Position Vec3
}

// Positions returns every body's position sorted by name.
func (ss *SolarSystem) Positions() []BodyPosition {
	out := make([]BodyPosition, 0, len(ss.order))
	for _, name := range ss.order {
		out = append(out, BodyPosition{Name: name, Position: ss.bodies[name].Motion.Position()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
