package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/signalsfoundry/chronomesh/model"
)

// ErrProbeCapReached is returned by Launch once the fleet is complete.
var ErrProbeCapReached = errors.New("probe cap reached")

// Launch direction blend between the origin's orbital tangent and the
// outward radial direction.
const (
	tangentialWeight = 0.7
	radialWeight     = 0.3
)

// ProbeLauncherConfig controls launch cadence and probe kinematics.
type ProbeLauncherConfig struct {
	// Cap is the maximum number of probes ever launched.
	Cap int
	// FirstLaunchYear is when the first probe becomes due.
	FirstLaunchYear float64
	// IntervalYears is the base gap between launches.
	IntervalYears float64
	// JitterYears widens each gap by a uniform draw in ±JitterYears.
	JitterYears float64
	// Speed is the probe speed in scene units per simulated day.
	Speed float64
	// MaxPerturbation bounds the random launch heading offset, in radians.
	MaxPerturbation float64
	// TrailLength is the number of trail samples kept per probe.
	TrailLength int
}

// DefaultProbeLauncherConfig launches one probe every half year, up to 100,
// at a speed that covers Earth to Mars in roughly six simulated months.
func DefaultProbeLauncherConfig() ProbeLauncherConfig {
	return ProbeLauncherConfig{
		Cap:             100,
		FirstLaunchYear: 0.5,
		IntervalYears:   0.5,
		JitterYears:     0,
		Speed:           52 / 182.5,
		MaxPerturbation: 0.085,
		TrailLength:     150,
	}
}

// Probe is an elder probe in flight. Its velocity is fixed at launch.
type Probe struct {
	Name       string
	Index      int
	Principle  string
	Trajectory model.Trajectory
	LaunchYear float64

	Position Vec3
	// Velocity is in scene units per simulated day.
	Velocity Vec3

	trail    []Vec3
	trailCap int
}

// Advance integrates the probe's position over days of simulated time and
// records a trail sample.
func (p *Probe) Advance(days float64) {
	if days == 0 {
		return
	}
	p.Position = p.Position.Add(p.Velocity.Scale(days))
	p.trail = append(p.trail, p.Position)
	if p.trailCap > 0 && len(p.trail) > p.trailCap {
		drop := len(p.trail) - p.trailCap
		p.trail = append(p.trail[:0], p.trail[drop:]...)
	}
}

// Trail returns a copy of the recorded trail, oldest sample first.
func (p *Probe) Trail() []Vec3 {
	out := make([]Vec3, len(p.trail))
	copy(out, p.trail)
	return out
}

// ProbeLauncher schedules probe launches and propagates launched probes.
type ProbeLauncher struct {
	cfg    ProbeLauncherConfig
	rng    Rand
	probes []*Probe
	next   float64
}

// NewProbeLauncher constructs a launcher. A nil rng yields unperturbed
// headings and trajectories assigned in table order.
func NewProbeLauncher(cfg ProbeLauncherConfig, rng Rand) *ProbeLauncher {
	def := DefaultProbeLauncherConfig()
	if cfg.Cap < 0 {
		cfg.Cap = 0
	}
	if cfg.IntervalYears <= 0 {
		cfg.IntervalYears = def.IntervalYears
	}
	if cfg.JitterYears < 0 {
		cfg.JitterYears = -cfg.JitterYears
	}
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	if cfg.MaxPerturbation < 0 {
		cfg.MaxPerturbation = -cfg.MaxPerturbation
	}
	if cfg.TrailLength <= 0 {
		cfg.TrailLength = def.TrailLength
	}
	return &ProbeLauncher{cfg: cfg, rng: rng, next: cfg.FirstLaunchYear}
}

// Config returns the effective configuration.
func (l *ProbeLauncher) Config() ProbeLauncherConfig { return l.cfg }

// NextLaunchYear is the year the next probe becomes due.
func (l *ProbeLauncher) NextLaunchYear() float64 { return l.next }

// Due reports whether a launch should happen at year.
func (l *ProbeLauncher) Due(year float64) bool {
	return len(l.probes) < l.cfg.Cap && year >= l.next
}

// Launch creates the next probe at origin. originVelocity gives the
// tangential direction; when it is zero the orbit tangent of origin is used.
func (l *ProbeLauncher) Launch(year float64, origin, originVelocity Vec3) (*Probe, error) {
	if len(l.probes) >= l.cfg.Cap {
		return nil, ErrProbeCapReached
	}
	idx := len(l.probes)

	tangent := originVelocity.Normalize()
	if tangent == (Vec3{}) {
		tangent = origin.Tangent()
	}
	radial := origin.Normalize()
	dir := tangent.Scale(tangentialWeight).Add(radial.Scale(radialWeight)).Normalize()
	dir = dir.RotateY(l.uniform(l.cfg.MaxPerturbation))

	traj := model.Trajectories[idx%len(model.Trajectories)]
	if l.rng != nil {
		traj = model.Trajectories[l.rng.IntN(len(model.Trajectories))]
	}

	p := &Probe{
		Name:       fmt.Sprintf("ELDER-%d", idx+1),
		Index:      idx,
		Principle:  model.ElderPrinciples[idx%len(model.ElderPrinciples)],
		Trajectory: traj,
		LaunchYear: year,
		Position:   origin,
		Velocity:   dir.Scale(l.cfg.Speed),
		trail:      []Vec3{origin},
		trailCap:   l.cfg.TrailLength,
	}
	l.probes = append(l.probes, p)

	next := year + l.cfg.IntervalYears + l.uniform(l.cfg.JitterYears)
	if next <= year {
		next = year + l.cfg.IntervalYears
	}
	l.next = next
	return p, nil
}

// Update advances every probe by days of simulated time.
func (l *ProbeLauncher) Update(days float64) {
	for _, p := range l.probes {
		p.Advance(days)
	}
}

// Probes returns the launched probes in launch order.
func (l *ProbeLauncher) Probes() []*Probe {
	out := make([]*Probe, len(l.probes))
	copy(out, l.probes)
	return out
}

// Count is the number of probes launched so far.
func (l *ProbeLauncher) Count() int { return len(l.probes) }

// Clear drops every probe and rewinds the launch schedule.
func (l *ProbeLauncher) Clear() {
	l.probes = nil
	l.next = l.cfg.FirstLaunchYear
}

// uniform draws from [-limit, +limit].
func (l *ProbeLauncher) uniform(limit float64) float64 {
	if l.rng == nil || limit == 0 {
		return 0
	}
	return (l.rng.Float64()*2 - 1) * limit
}

// HeadingOffset returns the angle between the probe's heading and the
// unperturbed launch direction for origin, in radians.
func HeadingOffset(p *Probe, origin, originVelocity Vec3) float64 {
	tangent := originVelocity.Normalize()
	if tangent == (Vec3{}) {
		tangent = origin.Tangent()
	}
	base := tangent.Scale(tangentialWeight).Add(origin.Normalize().Scale(radialWeight)).Normalize()
	cos := base.Dot(p.Velocity.Normalize())
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}
