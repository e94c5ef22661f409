package timectrl

import (
	"context"
	"sync"
	"time"
)

// Clock reports display time. The event queue reads it instead of the
// wall clock so tests and the mission state can drive it directly.
type Clock interface {
	// Now returns the current display time.
	Now() time.Time
}

// SimClock is the read side of the frame driver.
type SimClock interface {
	Clock
	// After returns a channel that receives the display time once d has
	// elapsed on this clock.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController paces frames.
type Mode int

const (
	// RealTime waits one wall-clock Tick between frames.
	RealTime Mode = iota
	// Accelerated steps by Tick as fast as listeners allow. Headless runs
	// use it to replay a mission without waiting.
	Accelerated
)

// FrameListener is invoked once per frame with the new display time and
// the time elapsed since the previous frame.
type FrameListener func(now time.Time, delta time.Duration)

type pendingTimer struct {
	at time.Time
	ch chan time.Time
}

// TimeController drives display time and notifies registered listeners.
// It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []FrameListener
	timers      []pendingTimer
}

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current display time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SetTime jumps the clock to t without notifying listeners. Timers that
// have come due are fired.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	due := tc.takeDueLocked(t)
	tc.mu.Unlock()
	fire(due, t)
}

// After implements SimClock. The channel fires on the first frame at or
// past now+d.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	tc.mu.Lock()
	defer tc.mu.Unlock()
	at := tc.currentTime.Add(d)
	if d <= 0 {
		ch <- tc.currentTime
		return ch
	}
	tc.timers = append(tc.timers, pendingTimer{at: at, ch: ch})
	return ch
}

// AddListener registers a callback invoked on every frame.
func (tc *TimeController) AddListener(fn FrameListener) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// Step advances the clock by d and runs one frame. Negative steps are
// treated as zero.
func (tc *TimeController) Step(d time.Duration) time.Time {
	if d < 0 {
		d = 0
	}
	tc.mu.Lock()
	now := tc.currentTime.Add(d)
	tc.currentTime = now
	listeners := append([]FrameListener(nil), tc.listeners...)
	due := tc.takeDueLocked(now)
	tc.mu.Unlock()

	for _, fn := range listeners {
		fn(now, d)
	}
	fire(due, now)
	return now
}

// Start runs frames in a separate goroutine until ctx is done or, when
// duration is positive, until duration of display time has elapsed. The
// returned channel is closed when the loop exits.
//
// In RealTime mode each frame advances by the wall time since the previous
// frame, so slow listeners and dropped ticks do not lose time.
func (tc *TimeController) Start(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		tc.currentTime = tc.StartTime
		tc.mu.Unlock()

		var tick <-chan time.Time
		last := time.Now()
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			tick = ticker.C
		}

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			step := tc.Tick
			if tick != nil {
				select {
				case <-ctx.Done():
					return
				case at := <-tick:
					step = max(at.Sub(last), 0)
					last = at
				}
			} else if ctx.Err() != nil {
				return
			}
			tc.Step(step)
			elapsed += step
		}
	}()
	return done
}

func (tc *TimeController) takeDueLocked(now time.Time) []pendingTimer {
	if len(tc.timers) == 0 {
		return nil
	}
	var due []pendingTimer
	kept := tc.timers[:0]
	for _, t := range tc.timers {
		if !t.at.After(now) {
			due = append(due, t)
		} else {
			kept = append(kept, t)
		}
	}
	tc.timers = kept
	return due
}

func fire(due []pendingTimer, now time.Time) {
	for _, t := range due {
		t.ch <- now
	}
}
