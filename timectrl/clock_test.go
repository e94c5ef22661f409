package timectrl

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestMissionClockStoppedByDefault(t *testing.T) {
	c := NewMissionClock()
	if d := c.Advance(time.Second); d != 0 {
		t.Fatalf("stopped clock advanced %v days", d)
	}
	if c.Running() || c.Started() {
		t.Fatalf("new clock should be stopped")
	}
}

func TestMissionClockYearTakesTwentySeconds(t *testing.T) {
	c := NewMissionClock()
	if !c.Start() {
		t.Fatalf("first Start should report first=true")
	}
	if c.Start() {
		t.Fatalf("second Start should report first=false")
	}
	for i := 0; i < 20; i++ {
		c.Advance(time.Second)
	}
	if y := c.Year(); math.Abs(y-1) > 1e-9 {
		t.Fatalf("year after 20 s = %v, want 1", y)
	}
}

func TestMissionClockFrameRateIndependent(t *testing.T) {
	a, b := NewMissionClock(), NewMissionClock()
	a.Start()
	b.Start()
	// 20 ms and 40 ms frames divide a second exactly.
	for i := 0; i < 50; i++ {
		a.Advance(time.Second / 50)
	}
	for i := 0; i < 25; i++ {
		b.Advance(time.Second / 25)
	}
	if math.Abs(a.Days()-b.Days()) > 1e-9 {
		t.Fatalf("50 fps = %v days, 25 fps = %v days", a.Days(), b.Days())
	}
	if math.Abs(a.Days()-DaysPerSecond) > 1e-9 {
		t.Fatalf("one second = %v days, want %v", a.Days(), DaysPerSecond)
	}
}

func TestMissionClockSpeedLevels(t *testing.T) {
	c := NewMissionClock()
	c.Start()
	if err := c.SetSpeedLevel(5); err != nil {
		t.Fatalf("SetSpeedLevel: %v", err)
	}
	if d := c.Advance(time.Second); math.Abs(d-10*DaysPerSecond) > 1e-9 {
		t.Fatalf("10× advanced %v days, want %v", d, 10*DaysPerSecond)
	}
	for _, lvl := range []int{-1, len(SpeedLevels)} {
		if err := c.SetSpeedLevel(lvl); !errors.Is(err, ErrInvalidSpeedLevel) {
			t.Fatalf("SetSpeedLevel(%d) err = %v", lvl, err)
		}
	}
}

func TestMissionClockPauseFreezes(t *testing.T) {
	c := NewMissionClock()
	c.Start()
	c.Advance(time.Second)
	before := c.Days()
	c.Pause()
	c.Advance(5 * time.Second)
	if c.Days() != before {
		t.Fatalf("paused clock moved from %v to %v", before, c.Days())
	}
	if c.EffectiveSpeed() != 0 {
		t.Fatalf("effective speed while paused = %v", c.EffectiveSpeed())
	}
}

func TestMissionClockDecisionHold(t *testing.T) {
	c := NewMissionClock()
	c.Start()
	_ = c.SetSpeedLevel(3)
	c.HoldForDecision()

	if d := c.Advance(time.Second); d != 0 {
		t.Fatalf("held clock advanced %v days", d)
	}
	if err := c.SetSpeedLevel(0); !errors.Is(err, ErrSpeedLocked) {
		t.Fatalf("SetSpeedLevel during hold err = %v", err)
	}

	c.ReleaseDecision()
	if got := c.EffectiveSpeed(); got != 2 {
		t.Fatalf("speed after release = %v, want 2", got)
	}
}

func TestMissionClockReset(t *testing.T) {
	c := NewMissionClock()
	c.Start()
	_ = c.SetSpeedLevel(4)
	c.Advance(3 * time.Second)
	c.HoldForDecision()

	c.Reset()
	if c.Days() != 0 || c.Running() || c.Holding() || c.SpeedLevel() != DefaultSpeedLevel {
		t.Fatalf("reset left state: days=%v running=%v holding=%v level=%d",
			c.Days(), c.Running(), c.Holding(), c.SpeedLevel())
	}
	if !c.Start() {
		t.Fatalf("Start after reset should be a first start")
	}
}

func TestMissionClockDayOfYear(t *testing.T) {
	c := NewMissionClock()
	c.Start()
	wall := (DaysPerYear + 10.5) / DaysPerSecond
	c.Advance(time.Duration(wall * float64(time.Second)))
	if got := c.DayOfYear(); got != 10 {
		t.Fatalf("DayOfYear = %d, want 10", got)
	}
}

func TestMissionClockCalendar(t *testing.T) {
	epoch := time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)
	c := NewMissionClock()
	if got := c.JulianDate(epoch); math.Abs(got-2451545.0) > 1e-6 {
		t.Fatalf("J2000 Julian date = %v, want 2451545", got)
	}

	c.Start()
	c.Advance(time.Second) // 18.2625 days
	want := epoch.Add(438*time.Hour + 18*time.Minute)
	if diff := c.Date(epoch).Sub(want); diff < -time.Millisecond || diff > time.Millisecond {
		t.Fatalf("Date = %v, want %v", c.Date(epoch), want)
	}
	if got := c.JulianDate(epoch); math.Abs(got-(2451545.0+DaysPerSecond)) > 1e-6 {
		t.Fatalf("Julian date = %v, want %v", got, 2451545.0+DaysPerSecond)
	}
}
