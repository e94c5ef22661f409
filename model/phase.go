package model

import "math"

// Phase is a named span of mission years. EndYear is exclusive.
type Phase struct {
	Name        string
	Description string
	StartYear   float64
	EndYear     float64
}

// InitializationPhase is reported before the mission has been started.
var InitializationPhase = Phase{
	Name:        "Initialization",
	Description: "Mission not yet started",
	StartYear:   math.Inf(-1),
	EndYear:     0,
}

// Phases are the mission phases in chronological order.
var Phases = []Phase{
	{
		Name:        "Phase 1: Launching Elder Fleet",
		Description: "Launching uncatchable probes on interstellar trajectories",
		StartYear:   0,
		EndYear:     5,
	},
	{
		Name:        "Phase 2: Solar Five Deployment",
		Description: "Establishing AI nodes across the solar system",
		StartYear:   5,
		EndYear:     10,
	},
	{
		Name:        "Phase 3: H5 Project Active",
		Description: "Full bicameral governance system active",
		StartYear:   10,
		EndYear:     math.Inf(1),
	},
}
