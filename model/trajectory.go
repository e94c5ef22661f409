package model

// Trajectory is the cosmetic classification attached to a probe at launch.
// SpeedKmS is the nominal heliocentric speed used for labelling only.
type Trajectory struct {
	Kind     string  `json:"kind"`
	SpeedKmS float64 `json:"speed_km_s"`
	Color    string  `json:"color"`
}

// Trajectories is the fixed set a probe's classification is drawn from.
var Trajectories = []Trajectory{
	{Kind: "jupiter_assist", SpeedKmS: 17, Color: "#ff00ff"},
	{Kind: "solar_oberth", SpeedKmS: 25, Color: "#ff69b4"},
	{Kind: "out_of_ecliptic", SpeedKmS: 20, Color: "#9370db"},
	{Kind: "saturn_flyby", SpeedKmS: 18, Color: "#ba55d3"},
	{Kind: "pluto_escape", SpeedKmS: 16, Color: "#8b008b"},
	{Kind: "inner_system", SpeedKmS: 22, Color: "#ff1493"},
	{Kind: "polar_jupiter", SpeedKmS: 19, Color: "#dda0dd"},
	{Kind: "asteroid_belt", SpeedKmS: 15, Color: "#ee82ee"},
	{Kind: "solar_approach", SpeedKmS: 35, Color: "#ff00ff"},
}

// ElderPrinciples names the principle each elder probe carries, assigned in
// launch order and wrapping around.
var ElderPrinciples = []string{
	"Tjukurrpa",
	"Ma'at",
	"Ananke",
	"Dao",
	"Urd",
	"Dharma",
	"Ubuntu",
	"Logos",
	"Tikkun",
	"Wyrd",
	"Ahimsa",
	"Mana",
}
