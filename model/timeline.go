package model

// EventCategory tags a timeline entry for display grouping.
type EventCategory string

const (
	CategoryMilestone EventCategory = "milestone"
	CategoryElder     EventCategory = "elder"
	CategoryCouncil   EventCategory = "council"
	CategoryDecision  EventCategory = "decision"
)

// TimelineEvent is an immutable record in the mission log.
type TimelineEvent struct {
	// Days is the simulated time of the event in days since mission start.
	Days     float64       `json:"days"`
	Year     float64       `json:"year"`
	Text     string        `json:"text"`
	Category EventCategory `json:"category"`
}
