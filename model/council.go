package model

// CouncilSlot is one entry of a council deployment schedule.
type CouncilSlot struct {
	Name     string
	Location string
	// Year is the simulated year at which the node becomes due.
	Year float64
}

// DefaultCouncilSchedule deploys the Solar Five minds during phase 2.
var DefaultCouncilSchedule = []CouncilSlot{
	{Name: "LUNAR-MIND", Location: MoonName, Year: 5.0},
	{Name: "MARS-MIND", Location: "Mars", Year: 5.5},
	{Name: "JUPITER-MIND", Location: "Jupiter", Year: 6.5},
	{Name: "SATURN-MIND", Location: "Saturn", Year: 8.0},
}

// ExtendedCouncilSchedule is the later, five-node deployment plan that also
// places a mind on Earth.
var ExtendedCouncilSchedule = []CouncilSlot{
	{Name: "EARTH-MIND", Location: OriginBody, Year: 10.5},
	{Name: "LUNA-MIND", Location: MoonName, Year: 11.0},
	{Name: "MARS-MIND", Location: "Mars", Year: 12.0},
	{Name: "JUPITER-MIND", Location: "Jupiter", Year: 13.5},
	{Name: "SATURN-MIND", Location: "Saturn", Year: 14.5},
}

// CouncilSchedules indexes the built-in schedules by name.
var CouncilSchedules = map[string][]CouncilSlot{
	"solar-five": DefaultCouncilSchedule,
	"extended":   ExtendedCouncilSchedule,
}
