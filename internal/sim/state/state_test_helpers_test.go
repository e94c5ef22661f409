package state

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/model"
	"github.com/signalsfoundry/chronomesh/timectrl"
)

// fixedRand returns the same draw every time.
type fixedRand float64

func (r fixedRand) Float64() float64 { return float64(r) }
func (r fixedRand) IntN(int) int     { return 0 }

var testStart = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

// frameStep at the fastest speed level advances 18.2625 days per frame.
const frameStep = 100 * time.Millisecond

type harness struct {
	t       *testing.T
	state   *MissionState
	surface *display.Recorder
	now     time.Time

	mu     sync.Mutex
	events []Event
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{t: t, surface: display.NewRecorder(), now: testStart}
	opts = append([]Option{WithSurface(h.surface), WithRand(fixedRand(0.25))}, opts...)
	h.state = NewMissionState(cfg, testStart, opts...)
	h.state.Subscribe(func(ev Event) {
		h.mu.Lock()
		h.events = append(h.events, ev)
		h.mu.Unlock()
	})
	return h
}

func (h *harness) startFast() {
	h.t.Helper()
	h.state.Start(ctxBG())
	if _, err := h.state.SetSpeed(ctxBG(), len(timectrl.SpeedLevels)-1); err != nil {
		h.t.Fatalf("SetSpeed: %v", err)
	}
}

func (h *harness) tick(d time.Duration) {
	h.now = h.now.Add(d)
	h.state.Tick(h.now, d)
}

// runUntilYear ticks at frameStep until the mission reaches year.
func (h *harness) runUntilYear(year float64) {
	h.t.Helper()
	for i := 0; h.state.Snapshot().Year < year; i++ {
		if i > 100000 {
			h.t.Fatalf("mission never reached year %.2f", year)
		}
		h.tick(frameStep)
	}
}

func (h *harness) eventsOf(t EventType) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Event
	for _, ev := range h.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (h *harness) timelineTexts() []string {
	var out []string
	for _, ev := range h.eventsOf(EventTimeline) {
		out = append(out, ev.Payload.(model.TimelineEvent).Text)
	}
	return out
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

type stubMetricsRecorder struct {
	mu       sync.Mutex
	probes   int
	council  int
	timeline int
	year     float64
	ticks    int
	failures map[string]int
	reveals  int
	outcomes map[string]int
}

func newStubMetrics() *stubMetricsRecorder {
	return &stubMetricsRecorder{failures: map[string]int{}, outcomes: map[string]int{}}
}

func (r *stubMetricsRecorder) SetMissionCounts(probes, council, timeline int) {
	r.mu.Lock()
	r.probes, r.council, r.timeline = probes, council, timeline
	r.mu.Unlock()
}

func (r *stubMetricsRecorder) SetMissionYear(year float64) {
	r.mu.Lock()
	r.year = year
	r.mu.Unlock()
}

func (r *stubMetricsRecorder) ObserveTick(time.Duration) {
	r.mu.Lock()
	r.ticks++
	r.mu.Unlock()
}

func (r *stubMetricsRecorder) IncSubsystemFailure(name string) {
	r.mu.Lock()
	r.failures[name]++
	r.mu.Unlock()
}

func (r *stubMetricsRecorder) IncReveal(string, string) {
	r.mu.Lock()
	r.reveals++
	r.mu.Unlock()
}

func (r *stubMetricsRecorder) IncDecision(outcome string) {
	r.mu.Lock()
	r.outcomes[outcome]++
	r.mu.Unlock()
}
