package timectrl

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

const (
	// DaysPerYear is the simulated year length in days.
	DaysPerYear = 365.25
	// SecondsPerYear is the wall time one simulated year takes at 1×.
	SecondsPerYear = 20
	// DaysPerSecond is the simulated days that pass per wall second at 1×.
	DaysPerSecond = DaysPerYear / SecondsPerYear
)

// SpeedLevels are the selectable multipliers.
var SpeedLevels = []float64{0.1, 0.5, 1, 2, 5, 10}

// DefaultSpeedLevel selects 1×.
const DefaultSpeedLevel = 2

var (
	// ErrInvalidSpeedLevel is returned for a level outside SpeedLevels.
	ErrInvalidSpeedLevel = errors.New("invalid speed level")
	// ErrSpeedLocked is returned while a decision hold is active.
	ErrSpeedLocked = errors.New("speed locked during decision")
)

// MissionClock tracks simulated mission time. Days only advance while the
// clock is running and no decision hold is active; the frame driver keeps
// ticking either way.
type MissionClock struct {
	mu       sync.RWMutex
	days     float64
	level    int
	running  bool
	holding  bool
	anyStart bool
}

// NewMissionClock returns a stopped clock at day zero and 1× speed.
func NewMissionClock() *MissionClock {
	return &MissionClock{level: DefaultSpeedLevel}
}

// Days is the simulated time in days since mission start.
func (c *MissionClock) Days() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.days
}

// Year is Days expressed in simulated years.
func (c *MissionClock) Year() float64 {
	return c.Days() / DaysPerYear
}

// DayOfYear is the whole day within the current simulated year.
func (c *MissionClock) DayOfYear() int {
	return int(math.Floor(math.Mod(c.Days(), DaysPerYear)))
}

// Advance moves simulated time forward for a frame of wallDelta and
// returns the simulated days that elapsed.
func (c *MissionClock) Advance(wallDelta time.Duration) float64 {
	if wallDelta <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.effectiveSpeedLocked() * DaysPerSecond * wallDelta.Seconds()
	c.days += d
	return d
}

// EffectiveSpeed is the multiplier applied to the next Advance.
func (c *MissionClock) EffectiveSpeed() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.effectiveSpeedLocked()
}

func (c *MissionClock) effectiveSpeedLocked() float64 {
	if !c.running || c.holding {
		return 0
	}
	return SpeedLevels[c.level]
}

// Start resumes simulated time. It reports whether this is the first start
// since construction or the last reset.
func (c *MissionClock) Start() (first bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	first = !c.anyStart
	c.running = true
	c.anyStart = true
	return first
}

// Pause freezes simulated time.
func (c *MissionClock) Pause() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Running reports whether the clock has been started and not paused.
func (c *MissionClock) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Started reports whether Start has been called since the last reset.
func (c *MissionClock) Started() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.anyStart
}

// SpeedLevel returns the selected level index.
func (c *MissionClock) SpeedLevel() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// Speed returns the selected multiplier, ignoring pause and hold.
func (c *MissionClock) Speed() float64 {
	return SpeedLevels[c.SpeedLevel()]
}

// SetSpeedLevel selects one of SpeedLevels.
func (c *MissionClock) SetSpeedLevel(level int) error {
	if level < 0 || level >= len(SpeedLevels) {
		return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidSpeedLevel, level, len(SpeedLevels)-1)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.holding {
		return ErrSpeedLocked
	}
	c.level = level
	return nil
}

// HoldForDecision stops simulated time until ReleaseDecision. The selected
// speed is kept and applies again on release.
func (c *MissionClock) HoldForDecision() {
	c.mu.Lock()
	c.holding = true
	c.mu.Unlock()
}

// ReleaseDecision lifts a decision hold.
func (c *MissionClock) ReleaseDecision() {
	c.mu.Lock()
	c.holding = false
	c.mu.Unlock()
}

// Holding reports whether a decision hold is active.
func (c *MissionClock) Holding() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.holding
}

// Reset returns the clock to day zero, stopped, at the default speed.
func (c *MissionClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = 0
	c.running = false
	c.holding = false
	c.anyStart = false
	c.level = DefaultSpeedLevel
}

// Date maps simulated time onto the calendar starting at epoch.
func (c *MissionClock) Date(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(c.Days() * 24 * float64(time.Hour)))
}

// JulianDate returns the Julian date of the mission calendar date.
func (c *MissionClock) JulianDate(epoch time.Time) float64 {
	return JulianDate(c.Date(epoch))
}

// JulianDate converts t to a Julian date.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return satellite.JDay(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), int(math.Floor(sec))) +
		(sec-math.Floor(sec))/86400
}
