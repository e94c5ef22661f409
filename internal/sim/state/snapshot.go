package state

import (
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/model"
)

// ProbeView is a probe as seen from the origin body.
type ProbeView struct {
	Name       string           `json:"name"`
	Principle  string           `json:"principle"`
	Trajectory model.Trajectory `json:"trajectory"`
	LaunchYear float64          `json:"launch_year"`
	Position   core.Vec3        `json:"position"`
	Delay      DelayView        `json:"delay"`
}

// CouncilView is a deployed council node as seen from the origin body.
type CouncilView struct {
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	DeployYear float64   `json:"deploy_year"`
	Position   core.Vec3 `json:"position"`
	Delay      DelayView `json:"delay"`
}

// DelayView carries light delay in seconds plus its display text.
type DelayView struct {
	DistanceAU float64 `json:"distance_au"`
	OneWay     float64 `json:"one_way_seconds"`
	RoundTrip  float64 `json:"round_trip_seconds"`
	Text       string  `json:"text"`
}

// Snapshot is a consistent copy of the mission for control surfaces.
type Snapshot struct {
	Days                 float64               `json:"days"`
	Year                 float64               `json:"year"`
	DayOfYear            int                   `json:"day_of_year"`
	Date                 time.Time             `json:"date"`
	JulianDate           float64               `json:"julian_date"`
	Speed                float64               `json:"speed"`
	SpeedLevel           int                   `json:"speed_level"`
	Running              bool                  `json:"running"`
	Holding              bool                  `json:"holding"`
	Phase                string                `json:"phase"`
	NextLaunchYear       float64               `json:"next_launch_year"`
	CouncilFullyDeployed bool                  `json:"council_fully_deployed"`
	DecisionAvailable    bool                  `json:"decision_available"`
	Probes               []ProbeView           `json:"probes"`
	Council              []CouncilView         `json:"council"`
	Timeline             []model.TimelineEvent `json:"timeline"`
	Decision             *decision.Snapshot    `json:"decision,omitempty"`
}

// Snapshot returns the current mission state.
func (s *MissionState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *MissionState) snapshotLocked() Snapshot {
	origin, _ := s.system.Position(model.OriginBody)

	snap := Snapshot{
		Days:                 s.clock.Days(),
		Year:                 s.clock.Year(),
		DayOfYear:            s.clock.DayOfYear(),
		Date:                 s.clock.Date(s.cfg.Epoch),
		JulianDate:           s.clock.JulianDate(s.cfg.Epoch),
		Speed:                s.clock.Speed(),
		SpeedLevel:           s.clock.SpeedLevel(),
		Running:              s.clock.Running(),
		Holding:              s.clock.Holding(),
		Phase:                s.phase.Name,
		NextLaunchYear:       s.launcher.NextLaunchYear(),
		CouncilFullyDeployed: s.deployer.FullyDeployed(),
		DecisionAvailable:    s.roster.Len() > 0,
		Timeline:             s.timeline.Events(),
	}

	for _, p := range s.launcher.Probes() {
		snap.Probes = append(snap.Probes, ProbeView{
			Name:       p.Name,
			Principle:  p.Principle,
			Trajectory: p.Trajectory,
			LaunchYear: p.LaunchYear,
			Position:   p.Position,
			Delay:      delayView(origin, p.Position),
		})
	}
	// Roster order is deployment order.
	for _, m := range s.roster.ListClass(model.ClassCouncil) {
		node, ok := s.councils[m.Name]
		if !ok {
			continue
		}
		snap.Council = append(snap.Council, CouncilView{
			Name:       node.Name,
			Location:   node.Location,
			DeployYear: node.DeployYear,
			Position:   node.Position,
			Delay:      delayView(origin, node.Position),
		})
	}
	if d, ok := s.seq.Current(); ok {
		snap.Decision = &d
	}
	return snap
}

func (s *MissionState) tickPayloadLocked() TickPayload {
	return TickPayload{
		Days:       s.clock.Days(),
		Year:       s.clock.Year(),
		DayOfYear:  s.clock.DayOfYear(),
		Date:       s.clock.Date(s.cfg.Epoch),
		JulianDate: s.clock.JulianDate(s.cfg.Epoch),
		Speed:      s.clock.EffectiveSpeed(),
		Running:    s.clock.Running(),
		Holding:    s.clock.Holding(),
		Phase:      s.phase.Name,
	}
}

func delayView(origin, pos core.Vec3) DelayView {
	d := core.DelayFor(origin, pos)
	return DelayView{
		DistanceAU: d.DistanceUnits / core.UnitsPerAU,
		OneWay:     d.OneWay,
		RoundTrip:  d.RoundTrip,
		Text:       core.FormatDelay(d.RoundTrip),
	}
}
