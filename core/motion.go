package core

import (
	"math"

	"github.com/signalsfoundry/chronomesh/model"
)

// DaysPerYear is the length of a simulated year in simulated days.
const DaysPerYear = 365.25

// Rand is the subset of *rand.Rand the simulation draws from. Injecting it
// keeps launches, start angles and votes reproducible under a fixed seed.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// MotionModel advances a body through simulated time and reports where it is.
type MotionModel interface {
	// Advance moves the model forward by days of simulated time.
	Advance(days float64)
	// Position returns the current scene position.
	Position() Vec3
	// Reset returns the model to its initial phase.
	Reset()
}

// CircularOrbit is a heliocentric circular orbit in the XZ plane.
//
// The angle is derived from the initial phase and the total simulated days
// advanced, so the result does not depend on how time was partitioned
// across frames.
type CircularOrbit struct {
	Distance       float64
	RelativePeriod float64

	startAngle float64
	days       float64
}

// NewCircularOrbit constructs an orbit starting at startAngle radians.
func NewCircularOrbit(distance, relativePeriod, startAngle float64) *CircularOrbit {
	return &CircularOrbit{
		Distance:       distance,
		RelativePeriod: relativePeriod,
		startAngle:     WrapAngle(startAngle),
	}
}

// PeriodDays is the orbital period in simulated days.
func (o *CircularOrbit) PeriodDays() float64 {
	return DaysPerYear * o.RelativePeriod
}

// AngularRate is the angle swept per simulated day, in radians.
func (o *CircularOrbit) AngularRate() float64 {
	p := o.PeriodDays()
	if p <= 0 {
		return 0
	}
	return 2 * math.Pi / p
}

// Advance implements MotionModel.
func (o *CircularOrbit) Advance(days float64) {
	o.days += days
}

// Angle returns the current orbital angle in [0, 2π).
func (o *CircularOrbit) Angle() float64 {
	return WrapAngle(o.startAngle + o.AngularRate()*o.days)
}

// StartAngle returns the phase the orbit was created with.
func (o *CircularOrbit) StartAngle() float64 { return o.startAngle }

// Position implements MotionModel.
func (o *CircularOrbit) Position() Vec3 {
	s, c := math.Sincos(o.Angle())
	return Vec3{X: c * o.Distance, Y: 0, Z: s * o.Distance}
}

// Velocity returns the instantaneous orbital velocity in scene units per
// simulated day.
func (o *CircularOrbit) Velocity() Vec3 {
	speed := o.Distance * o.AngularRate()
	return o.Position().Tangent().Scale(speed)
}

// Reset implements MotionModel.
func (o *CircularOrbit) Reset() { o.days = 0 }

// SatelliteOrbit circles a host body. Its phase advances with simulated
// time, so a paused mission freezes it along with everything else.
type SatelliteOrbit struct {
	Host       MotionModel
	Radius     float64
	PeriodDays float64

	startPhase float64
	days       float64
}

// NewSatelliteOrbit constructs an orbit around host starting at startPhase.
func NewSatelliteOrbit(host MotionModel, radius, periodDays, startPhase float64) *SatelliteOrbit {
	return &SatelliteOrbit{
		Host:       host,
		Radius:     radius,
		PeriodDays: periodDays,
		startPhase: WrapAngle(startPhase),
	}
}

// Advance implements MotionModel. The host is advanced separately.
func (o *SatelliteOrbit) Advance(days float64) {
	o.days += days
}

// Phase returns the current local phase in [0, 2π).
func (o *SatelliteOrbit) Phase() float64 {
	if o.PeriodDays <= 0 {
		return o.startPhase
	}
	return WrapAngle(o.startPhase + 2*math.Pi*o.days/o.PeriodDays)
}

// Position implements MotionModel.
func (o *SatelliteOrbit) Position() Vec3 {
	var host Vec3
	if o.Host != nil {
		host = o.Host.Position()
	}
	s, c := math.Sincos(o.Phase())
	return host.Add(Vec3{X: c * o.Radius, Z: s * o.Radius})
}

// Reset implements MotionModel.
func (o *SatelliteOrbit) Reset() { o.days = 0 }

// NewMotionModel chooses the orbit model for a body definition.
func NewMotionModel(def model.BodyDefinition, startAngle float64) MotionModel {
	return NewCircularOrbit(def.Distance, def.RelativePeriod, startAngle)
}
