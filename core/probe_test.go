package core

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/signalsfoundry/chronomesh/model"
)

func TestProbeLauncher_DefaultCadence(t *testing.T) {
	l := NewProbeLauncher(DefaultProbeLauncherConfig(), nil)
	if l.Due(0.49) {
		t.Fatalf("launch due before first launch year")
	}
	if !l.Due(0.5) {
		t.Fatalf("launch not due at first launch year")
	}
	if _, err := l.Launch(0.5, Vec3{X: 100}, Vec3{}); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	if got := l.NextLaunchYear(); got != 1.0 {
		t.Fatalf("next launch = %v, want 1.0", got)
	}
	if l.Due(0.9) {
		t.Fatalf("launch due before interval elapsed")
	}
}

func TestProbeLauncher_LaunchDirectionBlend(t *testing.T) {
	l := NewProbeLauncher(DefaultProbeLauncherConfig(), nil)
	origin := Vec3{X: 100}
	p, err := l.Launch(0.5, origin, Vec3{})
	if err != nil {
		t.Fatalf("Launch: %v", err)
	}

	// Tangent at +X is +Z; radial is +X.
	want := Vec3{X: 0.3, Z: 0.7}.Normalize().Scale(52 / 182.5)
	if d := p.Velocity.DistanceTo(want); d > 1e-12 {
		t.Fatalf("velocity = %+v, want %+v", p.Velocity, want)
	}
	if p.Name != "ELDER-1" || p.Principle != model.ElderPrinciples[0] {
		t.Fatalf("unexpected identity %q/%q", p.Name, p.Principle)
	}
	if p.Position != origin {
		t.Fatalf("probe should start at origin, got %+v", p.Position)
	}
}

func TestProbeLauncher_PerturbationBounded(t *testing.T) {
	cfg := DefaultProbeLauncherConfig()
	l := NewProbeLauncher(cfg, rand.New(rand.NewPCG(3, 4)))
	origin := Vec3{X: 60, Z: 80}
	vel := origin.Tangent().Scale(1.7)

	for i := 0; i < 50; i++ {
		p, err := l.Launch(float64(i), origin, vel)
		if err != nil {
			t.Fatalf("Launch %d: %v", i, err)
		}
		if off := HeadingOffset(p, origin, vel); off > cfg.MaxPerturbation+1e-9 {
			t.Fatalf("probe %s heading offset %v exceeds %v", p.Name, off, cfg.MaxPerturbation)
		}
		if s := p.Velocity.Norm(); math.Abs(s-cfg.Speed) > 1e-12 {
			t.Fatalf("probe speed = %v, want %v", s, cfg.Speed)
		}
	}
}

func TestProbeLauncher_Cap(t *testing.T) {
	cfg := DefaultProbeLauncherConfig()
	cfg.Cap = 3
	l := NewProbeLauncher(cfg, nil)

	year := 0.0
	for i := 0; i < 1000; i++ {
		year += 0.1
		if l.Due(year) {
			if _, err := l.Launch(year, Vec3{X: 100}, Vec3{}); err != nil {
				t.Fatalf("Launch: %v", err)
			}
		}
	}
	if l.Count() != 3 {
		t.Fatalf("count = %d, want 3", l.Count())
	}
	if l.Due(1e6) {
		t.Fatalf("launch due after cap reached")
	}
	if _, err := l.Launch(1e6, Vec3{X: 100}, Vec3{}); !errors.Is(err, ErrProbeCapReached) {
		t.Fatalf("Launch past cap: err = %v, want ErrProbeCapReached", err)
	}
}

func TestProbeLauncher_JitterWithinBand(t *testing.T) {
	cfg := DefaultProbeLauncherConfig()
	cfg.JitterYears = 0.25
	l := NewProbeLauncher(cfg, rand.New(rand.NewPCG(9, 9)))

	year := 0.5
	for i := 0; i < 30; i++ {
		if _, err := l.Launch(year, Vec3{X: 100}, Vec3{}); err != nil {
			t.Fatalf("Launch: %v", err)
		}
		gap := l.NextLaunchYear() - year
		if gap < 0.25-1e-12 || gap > 0.75+1e-12 {
			t.Fatalf("gap %v outside 0.5±0.25", gap)
		}
		year = l.NextLaunchYear()
	}
}

func TestProbe_TrailBounded(t *testing.T) {
	cfg := DefaultProbeLauncherConfig()
	cfg.TrailLength = 5
	l := NewProbeLauncher(cfg, nil)
	p, _ := l.Launch(0.5, Vec3{X: 100}, Vec3{})

	for i := 0; i < 12; i++ {
		l.Update(1)
	}
	trail := p.Trail()
	if len(trail) != 5 {
		t.Fatalf("trail length = %d, want 5", len(trail))
	}
	if trail[len(trail)-1] != p.Position {
		t.Fatalf("newest trail sample should be the current position")
	}
	wantStart := Vec3{X: 100}.Add(p.Velocity.Scale(8))
	if d := trail[0].DistanceTo(wantStart); d > 1e-9 {
		t.Fatalf("oldest kept sample = %+v, want %+v", trail[0], wantStart)
	}
}

func TestProbe_VelocityDirectionFixed(t *testing.T) {
	l := NewProbeLauncher(DefaultProbeLauncherConfig(), nil)
	p, _ := l.Launch(0.5, Vec3{X: 100}, Vec3{})
	v := p.Velocity

	l.Update(2)
	l.Update(0)
	l.Update(7.5)
	if p.Velocity != v {
		t.Fatalf("velocity changed after launch")
	}
	want := Vec3{X: 100}.Add(v.Scale(9.5))
	if d := p.Position.DistanceTo(want); d > 1e-9 {
		t.Fatalf("position = %+v, want %+v", p.Position, want)
	}
}

func TestProbeLauncher_Clear(t *testing.T) {
	l := NewProbeLauncher(DefaultProbeLauncherConfig(), nil)
	for y := 0.5; y < 3; y += 0.5 {
		_, _ = l.Launch(y, Vec3{X: 100}, Vec3{})
	}
	l.Clear()
	if l.Count() != 0 || len(l.Probes()) != 0 {
		t.Fatalf("probes survived Clear")
	}
	if l.NextLaunchYear() != 0.5 {
		t.Fatalf("schedule not rewound: next = %v", l.NextLaunchYear())
	}
	p, _ := l.Launch(0.5, Vec3{X: 100}, Vec3{})
	if p.Name != "ELDER-1" {
		t.Fatalf("numbering not restarted: %s", p.Name)
	}
}
