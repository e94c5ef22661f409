// Package decision sequences decision broadcasts: one signal leaves the
// origin, and each recipient's vote is revealed after its light round-trip,
// compressed for display.
package decision

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	"github.com/signalsfoundry/chronomesh/internal/schedule"
	"github.com/signalsfoundry/chronomesh/model"
)

const tracerName = "github.com/signalsfoundry/chronomesh/internal/decision"

var (
	// ErrNoRecipients is returned when there is nobody to broadcast to
	// besides the local mind.
	ErrNoRecipients = errors.New("no decision recipients")
	// ErrDisplayUnavailable is returned when the display surface is not
	// ready to show the broadcast.
	ErrDisplayUnavailable = errors.New("display surface unavailable")
)

// EndReason says why a broadcast closed.
type EndReason string

const (
	EndExited     EndReason = "exited"
	EndSuperseded EndReason = "superseded"
	EndTimedOut   EndReason = "timed_out"
	EndReset      EndReason = "reset"
)

// Recipient is a decision target at a known position.
type Recipient struct {
	Name     string               `json:"name"`
	Class    model.RecipientClass `json:"class"`
	Position core.Vec3            `json:"position"`
}

// Entry is one recipient's slot in a broadcast.
type Entry struct {
	Recipient   Recipient       `json:"recipient"`
	Delay       core.LightDelay `json:"delay"`
	RevealDelay time.Duration   `json:"reveal_delay"`
	FireAt      time.Time       `json:"fire_at"`
	Revealed    bool            `json:"revealed"`
	Vote        model.Vote      `json:"vote,omitempty"`
}

// Reveal is emitted when a recipient's vote arrives.
type Reveal struct {
	BroadcastID string    `json:"broadcast_id"`
	Order       int       `json:"order"`
	Entry       Entry     `json:"entry"`
	At          time.Time `json:"at"`
	Tallies     Tallies   `json:"tallies"`
}

// Tallies holds running vote counts per recipient class.
type Tallies struct {
	Council model.Tally `json:"council"`
	Probe   model.Tally `json:"probe"`
}

func (t *Tallies) add(class model.RecipientClass, v model.Vote) {
	if class == model.ClassProbe {
		t.Probe.Add(v)
		return
	}
	t.Council.Add(v)
}

// Snapshot is a copy of a broadcast's state.
type Snapshot struct {
	ID          string    `json:"id"`
	Active      bool      `json:"active"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at,omitzero"`
	EndReason   EndReason `json:"end_reason,omitempty"`
	Origin      core.Vec3 `json:"origin"`
	Entries     []Entry   `json:"entries"`
	Tallies     Tallies   `json:"tallies"`
	PulseRadius float64   `json:"pulse_radius"`
	PulseLive   bool      `json:"pulse_live"`
}

// Revealed counts entries whose vote has arrived.
func (s Snapshot) Revealed() int {
	n := 0
	for _, e := range s.Entries {
		if e.Revealed {
			n++
		}
	}
	return n
}

// Hooks receive broadcast notifications. Any field may be nil.
type Hooks struct {
	OnStarted func(Snapshot)
	OnReveal  func(Reveal)
	OnEnded   func(Snapshot)
}

// Metrics is the subset of the mission collector the sequencer reports to.
type Metrics interface {
	IncReveal(class, vote string)
	IncDecision(outcome string)
}

type broadcast struct {
	id        string
	active    bool
	startedAt time.Time
	endedAt   time.Time
	reason    EndReason
	origin    core.Vec3
	entries   []Entry
	tallies   Tallies
	eventIDs  []string

	pulseID     string
	pulseLive   bool
	pulseRadius float64

	span trace.Span
}

// Sequencer runs at most one decision broadcast at a time. It is owned by
// the update loop and is not safe for concurrent use; deferred reveals are
// queued on the event queue and fire from RunDue on that same loop.
type Sequencer struct {
	cfg     Config
	queue   schedule.Queue
	surface display.Surface
	rng     core.Rand
	log     logging.Logger
	metrics Metrics
	hooks   Hooks
	tracer  trace.Tracer

	current *broadcast
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithLogger sets the sequencer's logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Sequencer) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Sequencer) { s.metrics = m }
}

// WithHooks sets notification callbacks.
func WithHooks(h Hooks) Option {
	return func(s *Sequencer) { s.hooks = h }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Sequencer) {
		if t != nil {
			s.tracer = t
		}
	}
}

// NewSequencer builds a sequencer. surface may be nil for headless use.
func NewSequencer(cfg Config, queue schedule.Queue, surface display.Surface, rng core.Rand, opts ...Option) *Sequencer {
	cfg.ApplyDefaults()
	s := &Sequencer{
		cfg:     cfg,
		queue:   queue,
		surface: surface,
		rng:     rng,
		log:     logging.Noop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective configuration.
func (s *Sequencer) Config() Config { return s.cfg }

// Active reports whether a broadcast is in progress.
func (s *Sequencer) Active() bool {
	return s.current != nil && s.current.active
}

// Trigger starts a broadcast from origin to recipients, superseding any
// broadcast still in progress. The local mind is always added at zero
// distance.
func (s *Sequencer) Trigger(ctx context.Context, origin core.Vec3, recipients []Recipient) (Snapshot, error) {
	if s.surface != nil && !s.surface.Ready() {
		return Snapshot{}, ErrDisplayUnavailable
	}
	if len(recipients) == 0 {
		return Snapshot{}, ErrNoRecipients
	}

	if s.Active() {
		s.end(s.current, EndSuperseded)
	}

	now := s.queue.Now()
	b := &broadcast{
		id:        uuid.NewString(),
		active:    true,
		startedAt: now,
		origin:    origin,
	}

	all := make([]Recipient, 0, len(recipients)+1)
	all = append(all, Recipient{Name: LocalRecipient, Class: model.ClassCouncil, Position: origin})
	all = append(all, recipients...)

	b.entries = make([]Entry, len(all))
	for i, r := range all {
		d := core.DelayFor(origin, r.Position)
		rd := s.cfg.RevealDelay(d.RoundTrip)
		b.entries[i] = Entry{Recipient: r, Delay: d, RevealDelay: rd, FireAt: now.Add(rd)}
	}
	sort.SliceStable(b.entries, func(i, j int) bool {
		return b.entries[i].Delay.RoundTrip < b.entries[j].Delay.RoundTrip
	})

	_, b.span = s.tracer.Start(ctx, "decision.broadcast",
		trace.WithAttributes(
			attribute.String("decision.id", b.id),
			attribute.Int("decision.recipients", len(b.entries)),
		))

	last := now
	for i := range b.entries {
		idx := i
		fireAt := b.entries[i].FireAt
		b.eventIDs = append(b.eventIDs, s.queue.Schedule(fireAt, func() { s.reveal(b, idx) }))
		if fireAt.After(last) {
			last = fireAt
		}
	}
	b.eventIDs = append(b.eventIDs, s.queue.Schedule(last.Add(s.cfg.Linger), func() {
		if b.active {
			s.end(b, EndTimedOut)
		}
	}))

	b.pulseID = display.PulseMarkerID(b.id)
	b.pulseRadius = s.cfg.PulseInitialRadius
	if s.surface != nil {
		err := s.surface.CreateMarker(display.Marker{
			ID:       b.pulseID,
			Kind:     display.KindRing,
			Label:    "decision pulse",
			Color:    "#00ffff",
			Position: origin,
			Scale:    b.pulseRadius,
		})
		if err != nil {
			s.log.Warn(ctx, "pulse marker create failed", logging.String("broadcast_id", b.id), logging.Err(err))
		} else {
			b.pulseLive = true
		}
	}

	s.current = b
	s.incDecision("started")
	s.log.Info(ctx, "decision broadcast started",
		logging.String("broadcast_id", b.id),
		logging.Int("recipients", len(b.entries)),
		logging.Duration("last_reveal", last.Sub(now)),
	)

	snap := b.snapshot()
	if s.hooks.OnStarted != nil {
		s.hooks.OnStarted(snap)
	}
	return snap, nil
}

// reveal fires for entry idx of b. It is a no-op once b has ended.
func (s *Sequencer) reveal(b *broadcast, idx int) {
	if !b.active || s.current != b || idx >= len(b.entries) {
		return
	}
	e := &b.entries[idx]
	if e.Revealed {
		return
	}

	vote := model.VoteDeny
	if s.draw() < s.cfg.Approval(e.Recipient.Class) {
		vote = model.VoteApprove
	}
	e.Vote = vote
	e.Revealed = true
	b.tallies.add(e.Recipient.Class, vote)

	b.span.AddEvent("reveal", trace.WithAttributes(
		attribute.String("recipient", e.Recipient.Name),
		attribute.String("class", string(e.Recipient.Class)),
		attribute.String("vote", string(vote)),
		attribute.Float64("round_trip_seconds", e.Delay.RoundTrip),
	))
	if s.metrics != nil {
		s.metrics.IncReveal(string(e.Recipient.Class), string(vote))
	}
	if s.hooks.OnReveal != nil {
		s.hooks.OnReveal(Reveal{
			BroadcastID: b.id,
			Order:       idx,
			Entry:       *e,
			At:          s.queue.Now(),
			Tallies:     b.tallies,
		})
	}
}

func (s *Sequencer) draw() float64 {
	if s.rng == nil {
		return 0
	}
	return s.rng.Float64()
}

// Exit closes the active broadcast. Pending reveals are dropped. It
// reports false when nothing was active.
func (s *Sequencer) Exit() bool {
	if !s.Active() {
		return false
	}
	s.end(s.current, EndExited)
	return true
}

// Reset closes any active broadcast and forgets the last one.
func (s *Sequencer) Reset() {
	if s.Active() {
		s.end(s.current, EndReset)
	}
	s.current = nil
}

func (s *Sequencer) end(b *broadcast, reason EndReason) {
	b.active = false
	b.reason = reason
	b.endedAt = s.queue.Now()
	for _, id := range b.eventIDs {
		s.queue.Cancel(id)
	}
	b.eventIDs = nil
	s.disposePulse(b)

	b.span.SetAttributes(
		attribute.String("decision.end_reason", string(reason)),
		attribute.Int("decision.approve", b.tallies.Council.Approve+b.tallies.Probe.Approve),
		attribute.Int("decision.deny", b.tallies.Council.Deny+b.tallies.Probe.Deny),
	)
	b.span.End()

	s.incDecision(string(reason))
	s.log.Info(context.Background(), "decision broadcast ended",
		logging.String("broadcast_id", b.id),
		logging.String("reason", string(reason)),
	)
	if s.hooks.OnEnded != nil {
		s.hooks.OnEnded(b.snapshot())
	}
}

func (s *Sequencer) disposePulse(b *broadcast) {
	if !b.pulseLive {
		return
	}
	b.pulseLive = false
	if s.surface == nil {
		return
	}
	if err := s.surface.DisposeMarker(b.pulseID); err != nil {
		s.log.Warn(context.Background(), "pulse marker dispose failed",
			logging.String("broadcast_id", b.id), logging.Err(err))
	}
}

// Update animates the pulse for display time now. The pulse keeps growing
// while the mission clock is paused or held.
func (s *Sequencer) Update(now time.Time) error {
	b := s.current
	if b == nil || !b.active || !b.pulseLive {
		return nil
	}
	elapsed := now.Sub(b.startedAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	b.pulseRadius = s.cfg.PulseInitialRadius + s.cfg.PulseGrowth*elapsed
	if b.pulseRadius > s.cfg.PulseMaxRadius {
		s.disposePulse(b)
		return nil
	}
	if s.surface == nil {
		return nil
	}
	return s.surface.UpdateMarker(b.pulseID, b.origin, b.pulseRadius)
}

// Current returns the active or most recently ended broadcast.
func (s *Sequencer) Current() (Snapshot, bool) {
	if s.current == nil {
		return Snapshot{}, false
	}
	return s.current.snapshot(), true
}

func (s *Sequencer) incDecision(outcome string) {
	if s.metrics != nil {
		s.metrics.IncDecision(outcome)
	}
}

func (b *broadcast) snapshot() Snapshot {
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return Snapshot{
		ID:          b.id,
		Active:      b.active,
		StartedAt:   b.startedAt,
		EndedAt:     b.endedAt,
		EndReason:   b.reason,
		Origin:      b.origin,
		Entries:     entries,
		Tallies:     b.tallies,
		PulseRadius: b.pulseRadius,
		PulseLive:   b.pulseLive,
	}
}
