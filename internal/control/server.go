// Package control exposes the mission's control intents over gRPC.
package control

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
)

// Mission is the subset of *state.MissionState the server drives.
type Mission interface {
	Start(ctx context.Context) sim.Snapshot
	Pause(ctx context.Context) sim.Snapshot
	Reset(ctx context.Context) sim.Snapshot
	SetSpeed(ctx context.Context, level int) (sim.Snapshot, error)
	TriggerDecision(ctx context.Context) (decision.Snapshot, error)
	ExitDecision(ctx context.Context) (decision.Snapshot, error)
	Snapshot() sim.Snapshot
}

// Server implements MissionControlServer on top of a Mission.
type Server struct {
	mission Mission
	log     logging.Logger
}

var _ MissionControlServer = (*Server)(nil)

// NewServer constructs a Server.
func NewServer(m Mission, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{mission: m, log: log}
}

func (s *Server) logger(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return s.log
}

func (s *Server) Start(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	snap := s.mission.Start(ctx)
	s.logger(ctx).Info(ctx, "mission start requested", logging.Float64("year", snap.Year))
	return toStruct(snap)
}

func (s *Server) Pause(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	snap := s.mission.Pause(ctx)
	s.logger(ctx).Info(ctx, "mission pause requested", logging.Float64("year", snap.Year))
	return toStruct(snap)
}

func (s *Server) Reset(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	snap := s.mission.Reset(ctx)
	s.logger(ctx).Info(ctx, "mission reset requested")
	return toStruct(snap)
}

func (s *Server) SetSpeed(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	level := int(in.GetValue())
	snap, err := s.mission.SetSpeed(ctx, level)
	if err != nil {
		s.logger(ctx).Warn(ctx, "set speed rejected", logging.Int("level", level), logging.Err(err))
		return nil, ToStatusError(err)
	}
	return toStruct(snap)
}

func (s *Server) TriggerDecision(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	d, err := s.mission.TriggerDecision(ctx)
	if err != nil {
		s.logger(ctx).Warn(ctx, "decision trigger rejected", logging.Err(err))
		return nil, ToStatusError(err)
	}
	return toStruct(decisionSummary(d))
}

func (s *Server) ExitDecision(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	d, err := s.mission.ExitDecision(ctx)
	if err != nil {
		return nil, ToStatusError(err)
	}
	return toStruct(decisionSummary(d))
}

func (s *Server) GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	if s.mission == nil {
		return nil, ToStatusError(ErrNotReady)
	}
	return toStruct(s.mission.Snapshot())
}

// DecisionSummary is the TriggerDecision/ExitDecision response body.
type DecisionSummary struct {
	ID         string             `json:"id"`
	Active     bool               `json:"active"`
	EndReason  decision.EndReason `json:"end_reason,omitempty"`
	Recipients int                `json:"recipients"`
	Revealed   int                `json:"revealed"`
	// LastRevealSeconds is when the final reveal is due, relative to start.
	LastRevealSeconds float64          `json:"last_reveal_seconds"`
	Tallies           decision.Tallies `json:"tallies"`
	Entries           []SummaryEntry   `json:"entries"`
}

// SummaryEntry is one recipient row of a DecisionSummary.
type SummaryEntry struct {
	Name          string  `json:"name"`
	Class         string  `json:"class"`
	RoundTrip     float64 `json:"round_trip_seconds"`
	RevealSeconds float64 `json:"reveal_seconds"`
	Revealed      bool    `json:"revealed"`
	Vote          string  `json:"vote,omitempty"`
}

func decisionSummary(d decision.Snapshot) DecisionSummary {
	out := DecisionSummary{
		ID:         d.ID,
		Active:     d.Active,
		EndReason:  d.EndReason,
		Recipients: len(d.Entries),
		Revealed:   d.Revealed(),
		Tallies:    d.Tallies,
		Entries:    make([]SummaryEntry, 0, len(d.Entries)),
	}
	for _, e := range d.Entries {
		out.LastRevealSeconds = math.Max(out.LastRevealSeconds, e.RevealDelay.Seconds())
		out.Entries = append(out.Entries, SummaryEntry{
			Name:          e.Recipient.Name,
			Class:         string(e.Recipient.Class),
			RoundTrip:     e.Delay.RoundTrip,
			RevealSeconds: e.RevealDelay.Seconds(),
			Revealed:      e.Revealed,
			Vote:          string(e.Vote),
		})
	}
	return out
}

// toStruct renders v's JSON form as a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}
