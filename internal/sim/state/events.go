package state

import (
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/model"
)

// EventType names an outbound notification.
type EventType string

const (
	EventTick            EventType = "tick"
	EventProbeLaunch     EventType = "probe_launch"
	EventCouncilDeploy   EventType = "council_deploy"
	EventTimeline        EventType = "timeline"
	EventDecisionStarted EventType = "decision_started"
	EventDecisionReveal  EventType = "decision_reveal"
	EventDecisionEnded   EventType = "decision_ended"
	EventNotice          EventType = "notice"
	EventReset           EventType = "reset"
)

// EventTypes lists every notification type in a stable order.
var EventTypes = []EventType{
	EventTick,
	EventProbeLaunch,
	EventCouncilDeploy,
	EventTimeline,
	EventDecisionStarted,
	EventDecisionReveal,
	EventDecisionEnded,
	EventNotice,
	EventReset,
}

// Event is delivered to subscribers after the state lock is released.
// Payload is one of the *Payload types below, a model.TimelineEvent, a
// decision.Snapshot or a decision.Reveal.
type Event struct {
	Type    EventType
	At      time.Time
	Payload any
}

// TickPayload accompanies EventTick.
type TickPayload struct {
	Days       float64   `json:"days"`
	Year       float64   `json:"year"`
	DayOfYear  int       `json:"day_of_year"`
	Date       time.Time `json:"date"`
	JulianDate float64   `json:"julian_date"`
	Speed      float64   `json:"speed"`
	Running    bool      `json:"running"`
	Holding    bool      `json:"holding"`
	Phase      string    `json:"phase"`
}

// ProbePayload accompanies EventProbeLaunch.
type ProbePayload struct {
	Name       string           `json:"name"`
	Principle  string           `json:"principle"`
	Trajectory model.Trajectory `json:"trajectory"`
	LaunchYear float64          `json:"launch_year"`
	Position   core.Vec3        `json:"position"`
	Velocity   core.Vec3        `json:"velocity"`
}

// CouncilPayload accompanies EventCouncilDeploy.
type CouncilPayload struct {
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	DeployYear float64   `json:"deploy_year"`
	Position   core.Vec3 `json:"position"`
}

// NoticePayload accompanies EventNotice.
type NoticePayload struct {
	Message string `json:"message"`
}
