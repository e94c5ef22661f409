package model

// OriginBody is the body every decision broadcast and probe launch starts from.
const OriginBody = "Earth"

// MoonName identifies Earth's moon. It has no heliocentric entry in
// DefaultBodies; its position is derived from Earth's.
const MoonName = "Moon"

// BodyDefinition describes a planet on a circular heliocentric orbit.
// Distances are scene units (100 units = 1 AU).
type BodyDefinition struct {
	Name string

	// Distance is the orbital radius in scene units.
	Distance float64

	// RelativePeriod is the orbital period expressed in Earth years.
	RelativePeriod float64

	// Size and Color are display hints only.
	Size  float64
	Color string
}

// SatelliteDefinition describes a small body orbiting a host body.
type SatelliteDefinition struct {
	Name string
	Host string

	// Radius is the orbit radius around the host in scene units.
	Radius float64

	// PeriodDays is the sidereal period in simulated days.
	PeriodDays float64

	Size  float64
	Color string
}

// DefaultBodies is the planet table used by the mission scene.
var DefaultBodies = []BodyDefinition{
	{Name: "Mercury", Distance: 39, RelativePeriod: 0.24, Size: 6, Color: "#ffffff"},
	{Name: "Venus", Distance: 72, RelativePeriod: 0.62, Size: 10, Color: "#ffff00"},
	{Name: "Earth", Distance: 100, RelativePeriod: 1.0, Size: 10, Color: "#00aaff"},
	{Name: "Mars", Distance: 152, RelativePeriod: 1.88, Size: 8, Color: "#ff3333"},
	{Name: "Jupiter", Distance: 520, RelativePeriod: 11.86, Size: 25, Color: "#ffaa00"},
	{Name: "Saturn", Distance: 950, RelativePeriod: 29.46, Size: 20, Color: "#ffff66"},
	{Name: "Uranus", Distance: 1920, RelativePeriod: 84, Size: 15, Color: "#66ffff"},
	{Name: "Neptune", Distance: 3000, RelativePeriod: 165, Size: 15, Color: "#4444ff"},
}

// DefaultSatellites lists bodies that orbit a planet rather than the sun.
var DefaultSatellites = []SatelliteDefinition{
	{Name: MoonName, Host: OriginBody, Radius: 2.5, PeriodDays: 27.32, Size: 3, Color: "#cccccc"},
}
