package state

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	"github.com/signalsfoundry/chronomesh/internal/schedule"
	"github.com/signalsfoundry/chronomesh/kb"
	"github.com/signalsfoundry/chronomesh/model"
	"github.com/signalsfoundry/chronomesh/timectrl"
)

// Re-export sentinel errors so control surfaces can depend on state.*
// alone.
var (
	ErrNoRecipients       = decision.ErrNoRecipients
	ErrDisplayUnavailable = decision.ErrDisplayUnavailable
	ErrInvalidSpeedLevel  = timectrl.ErrInvalidSpeedLevel
	ErrSpeedLocked        = timectrl.ErrSpeedLocked
	// ErrNoActiveDecision is returned by ExitDecision when nothing is open.
	ErrNoActiveDecision = errors.New("no active decision")
)

// Config describes the mission being simulated.
type Config struct {
	// Epoch is the calendar date of mission day zero.
	Epoch            time.Time
	Bodies           []model.BodyDefinition
	Satellites       []model.SatelliteDefinition
	Probes           core.ProbeLauncherConfig
	CouncilSchedule  []model.CouncilSlot
	TimelineCapacity int
	Decision         decision.Config
}

// DefaultConfig returns the standard mission.
func DefaultConfig() Config {
	return Config{
		Epoch:            time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Bodies:           model.DefaultBodies,
		Satellites:       model.DefaultSatellites,
		Probes:           core.DefaultProbeLauncherConfig(),
		CouncilSchedule:  model.DefaultCouncilSchedule,
		TimelineCapacity: core.DefaultTimelineCapacity,
		Decision:         decision.DefaultConfig(),
	}
}

// MetricsRecorder receives mission gauges and counters.
type MetricsRecorder interface {
	decision.Metrics
	SetMissionCounts(probes, council, timeline int)
	SetMissionYear(year float64)
	ObserveTick(d time.Duration)
	IncSubsystemFailure(subsystem string)
}

// SubsystemFunc is one per-frame update step. days is the simulated time
// that elapsed this frame.
type SubsystemFunc func(now time.Time, days float64) error

type subsystem struct {
	name string
	fn   SubsystemFunc
}

// MissionState owns every part of the simulation. All mutation goes
// through its lock; subscribers are notified after the lock is released.
type MissionState struct {
	mu sync.Mutex

	cfg      Config
	clock    *timectrl.MissionClock
	frame    *frameClock
	queue    schedule.Queue
	system   *core.SolarSystem
	launcher *core.ProbeLauncher
	deployer *core.CouncilDeployer
	councils map[string]*core.CouncilNode
	roster   *kb.Roster
	timeline *core.Timeline
	seq      *decision.Sequencer
	surface  display.Surface
	rng      core.Rand
	log      logging.Logger
	metrics  MetricsRecorder

	phase       model.Phase
	bodyMarkers bool
	// deferred holds markers created while the surface was not ready.
	deferred   map[string]display.Marker
	subsystems []subsystem
	extra      []subsystem

	outbox  []Event
	subs    map[int]func(Event)
	nextSub int
}

// Option customises MissionState construction.
type Option func(*MissionState)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *MissionState) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *MissionState) { s.metrics = m }
}

// WithSurface attaches the display surface.
func WithSurface(d display.Surface) Option {
	return func(s *MissionState) { s.surface = d }
}

// WithRand injects the random source used for start angles, launch
// perturbation, trajectories and votes.
func WithRand(r core.Rand) Option {
	return func(s *MissionState) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithSubsystem appends an extra per-frame step that runs after the
// built-in ones, isolated like them.
func WithSubsystem(name string, fn SubsystemFunc) Option {
	return func(s *MissionState) {
		s.extra = append(s.extra, subsystem{name: name, fn: fn})
	}
}

// NewMissionState builds a mission at day zero. start is the initial
// display time.
func NewMissionState(cfg Config, start time.Time, opts ...Option) *MissionState {
	def := DefaultConfig()
	if cfg.Epoch.IsZero() {
		cfg.Epoch = def.Epoch
	}
	if len(cfg.Bodies) == 0 {
		cfg.Bodies = def.Bodies
		if cfg.Satellites == nil {
			cfg.Satellites = def.Satellites
		}
	}
	if cfg.Probes == (core.ProbeLauncherConfig{}) {
		cfg.Probes = def.Probes
	}
	if cfg.CouncilSchedule == nil {
		cfg.CouncilSchedule = def.CouncilSchedule
	}
	if cfg.TimelineCapacity <= 0 {
		cfg.TimelineCapacity = def.TimelineCapacity
	}

	s := &MissionState{
		cfg:      cfg,
		clock:    timectrl.NewMissionClock(),
		frame:    &frameClock{now: start},
		councils: make(map[string]*core.CouncilNode),
		deferred: make(map[string]display.Marker),
		roster:   kb.NewRoster(),
		timeline: core.NewTimeline(cfg.TimelineCapacity),
		log:      logging.Noop(),
		phase:    model.InitializationPhase,
		subs:     make(map[int]func(Event)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(start.UnixNano()), 0x6368726f6e6f))
	}

	s.queue = schedule.NewQueue(s.frame)
	s.system = core.NewSolarSystem(cfg.Bodies, cfg.Satellites, s.rng)
	s.launcher = core.NewProbeLauncher(cfg.Probes, s.rng)
	s.deployer = core.NewCouncilDeployer(cfg.CouncilSchedule)

	seqOpts := []decision.Option{
		decision.WithLogger(s.log.With(logging.String("component", "decision"))),
		decision.WithHooks(decision.Hooks{
			OnStarted: s.onDecisionStarted,
			OnReveal:  s.onDecisionReveal,
			OnEnded:   s.onDecisionEnded,
		}),
	}
	if s.metrics != nil {
		seqOpts = append(seqOpts, decision.WithMetrics(s.metrics))
	}
	s.seq = decision.NewSequencer(cfg.Decision, s.queue, s.surface, s.rng, seqOpts...)

	s.subsystems = append([]subsystem{
		{name: "orbits", fn: s.updateOrbits},
		{name: "probes", fn: s.updateProbes},
		{name: "council", fn: s.updateCouncil},
		{name: "phase", fn: s.updatePhase},
		{name: "decision", fn: s.updateDecision},
		{name: "display", fn: s.updateDisplay},
	}, s.extra...)

	s.mu.Lock()
	s.ensureBodyMarkersLocked()
	s.updateMetricsLocked()
	s.mu.Unlock()
	return s
}

// Config returns the effective configuration.
func (s *MissionState) Config() Config { return s.cfg }

// Roster exposes the recipient roster for read access.
func (s *MissionState) Roster() *kb.Roster { return s.roster }

// Subscribe registers a callback for mission events. It returns an
// unsubscribe function.
func (s *MissionState) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Start resumes simulated time. The first start after construction or
// reset records the mission initialization milestone.
func (s *MissionState) Start(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.clock.Start() {
		s.addTimelineLocked("ChronoMesh mission initialized", model.CategoryMilestone)
		s.log.Info(ctx, "mission started", logging.String("epoch", s.cfg.Epoch.Format(time.DateOnly)))
	}
	snap := s.snapshotLocked()
	s.unlockAndFlush()
	return snap
}

// Pause freezes simulated time. Display time, the event queue and the
// decision pulse keep running.
func (s *MissionState) Pause(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.clock.Pause()
	s.log.Debug(ctx, "mission paused", logging.Float64("year", s.clock.Year()))
	snap := s.snapshotLocked()
	s.unlockAndFlush()
	return snap
}

// SetSpeed selects one of timectrl.SpeedLevels.
func (s *MissionState) SetSpeed(ctx context.Context, level int) (Snapshot, error) {
	s.mu.Lock()
	if err := s.clock.SetSpeedLevel(level); err != nil {
		snap := s.snapshotLocked()
		s.unlockAndFlush()
		return snap, err
	}
	s.log.Debug(ctx, "speed changed", logging.Int("level", level), logging.Float64("speed", s.clock.Speed()))
	snap := s.snapshotLocked()
	s.unlockAndFlush()
	return snap, nil
}

// Reset returns the mission to day zero: every probe, council node,
// timeline entry and pending decision is dropped and their markers are
// disposed.
func (s *MissionState) Reset(ctx context.Context) Snapshot {
	s.mu.Lock()
	ctx, reqLog := logging.WithRequestLogger(ctx, s.log)
	reqLog.Info(ctx, "resetting mission",
		logging.Int("probes", s.launcher.Count()),
		logging.Int("council", len(s.councils)),
		logging.Int("timeline", s.timeline.Len()),
	)

	s.seq.Reset()
	s.queue.CancelAll()

	for _, p := range s.launcher.Probes() {
		s.disposeMarkerLocked(display.ProbeMarkerID(p.Name))
	}
	s.launcher.Clear()

	for name := range s.councils {
		s.disposeMarkerLocked(display.CouncilMarkerID(name))
	}
	s.councils = make(map[string]*core.CouncilNode)
	s.deployer.Reset()

	s.roster.Clear()
	s.timeline.Clear()
	s.clock.Reset()
	s.system.Reset()
	s.phase = model.InitializationPhase
	s.syncBodyMarkersLocked()

	s.emitLocked(EventReset, NoticePayload{Message: "Mission reset"})
	s.updateMetricsLocked()
	snap := s.snapshotLocked()
	s.unlockAndFlush()
	return snap
}

// TriggerDecision broadcasts a decision from the origin body to every
// probe and council node. The mission clock holds until the broadcast
// ends.
func (s *MissionState) TriggerDecision(ctx context.Context) (decision.Snapshot, error) {
	s.mu.Lock()
	if s.roster.Len() == 0 {
		s.unlockAndFlush()
		return decision.Snapshot{}, ErrNoRecipients
	}

	origin, _ := s.system.Position(model.OriginBody)
	members := s.roster.List()
	recipients := make([]decision.Recipient, 0, len(members))
	for _, m := range members {
		recipients = append(recipients, decision.Recipient{Name: m.Name, Class: m.Class, Position: m.Position})
	}

	snap, err := s.seq.Trigger(ctx, origin, recipients)
	if err != nil {
		if errors.Is(err, ErrDisplayUnavailable) {
			s.emitLocked(EventNotice, NoticePayload{Message: "Display is not ready; decision broadcast aborted"})
			s.log.Warn(ctx, "decision trigger aborted", logging.Err(err))
		}
		s.unlockAndFlush()
		return decision.Snapshot{}, err
	}

	s.clock.HoldForDecision()
	s.addTimelineLocked(fmt.Sprintf("Decision broadcast to %d recipients", len(snap.Entries)), model.CategoryDecision)
	s.updateMetricsLocked()
	s.unlockAndFlush()
	return snap, nil
}

// ExitDecision closes the active broadcast. Reveals still in flight are
// dropped.
func (s *MissionState) ExitDecision(ctx context.Context) (decision.Snapshot, error) {
	s.mu.Lock()
	if !s.seq.Exit() {
		s.unlockAndFlush()
		return decision.Snapshot{}, ErrNoActiveDecision
	}
	snap, _ := s.seq.Current()
	s.log.Debug(ctx, "decision exited", logging.String("broadcast_id", snap.ID))
	s.unlockAndFlush()
	return snap, nil
}

func (s *MissionState) onDecisionStarted(snap decision.Snapshot) {
	s.emitLocked(EventDecisionStarted, snap)
}

func (s *MissionState) onDecisionReveal(r decision.Reveal) {
	s.emitLocked(EventDecisionReveal, r)
}

func (s *MissionState) onDecisionEnded(snap decision.Snapshot) {
	s.clock.ReleaseDecision()
	if snap.EndReason == decision.EndExited || snap.EndReason == decision.EndTimedOut {
		approve := snap.Tallies.Council.Approve + snap.Tallies.Probe.Approve
		deny := snap.Tallies.Council.Deny + snap.Tallies.Probe.Deny
		s.addTimelineLocked(fmt.Sprintf("Decision concluded: %d approve, %d deny (%d of %d replied)",
			approve, deny, snap.Revealed(), len(snap.Entries)), model.CategoryDecision)
	}
	s.emitLocked(EventDecisionEnded, snap)
}

func (s *MissionState) addTimelineLocked(text string, cat model.EventCategory) {
	ev := model.TimelineEvent{
		Days:     s.clock.Days(),
		Year:     s.clock.Year(),
		Text:     text,
		Category: cat,
	}
	s.timeline.Add(ev)
	s.emitLocked(EventTimeline, ev)
}

func (s *MissionState) emitLocked(t EventType, payload any) {
	s.outbox = append(s.outbox, Event{Type: t, At: s.frame.Now(), Payload: payload})
}

// unlockAndFlush releases the lock and delivers queued events.
func (s *MissionState) unlockAndFlush() {
	out := s.outbox
	s.outbox = nil
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Event), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, ev := range out {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (s *MissionState) updateMetricsLocked() {
	if s.metrics == nil {
		return
	}
	s.metrics.SetMissionCounts(s.launcher.Count(), len(s.councils), s.timeline.Len())
	s.metrics.SetMissionYear(s.clock.Year())
}

// frameClock is the display clock the event queue reads. It is set once
// per frame and has its own lock so queue reads never contend with the
// state lock.
type frameClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *frameClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// set moves display time forward; it never goes backwards.
func (c *frameClock) set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.After(c.now) {
		c.now = t
	}
}
