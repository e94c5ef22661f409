package decision

import (
	"time"

	"github.com/signalsfoundry/chronomesh/model"
)

// LocalRecipient is the zero-distance mind at the broadcast origin. It is
// always part of a broadcast and always answers first.
const LocalRecipient = "EARTH-MIND"

// Config tunes reveal pacing, vote odds and the pulse visual.
type Config struct {
	// SpeedupFactor divides each round-trip delay to get the on-screen
	// reveal delay.
	SpeedupFactor float64
	// MaxRevealDelay caps any single reveal delay.
	MaxRevealDelay time.Duration
	// Linger is how long a broadcast stays open after its last reveal.
	Linger time.Duration

	ProbeApproval   float64
	CouncilApproval float64

	PulseInitialRadius float64
	// PulseGrowth is scene units per display second.
	PulseGrowth    float64
	PulseMaxRadius float64
}

// DefaultConfig returns the standard pacing: 300× speed-up, a 30 s cap and
// a 10 s linger.
func DefaultConfig() Config {
	return Config{
		SpeedupFactor:      300,
		MaxRevealDelay:     30 * time.Second,
		Linger:             10 * time.Second,
		ProbeApproval:      0.8,
		CouncilApproval:    0.7,
		PulseInitialRadius: 1,
		PulseGrowth:        60,
		PulseMaxRadius:     10000,
	}
}

// ApplyDefaults fills zero-valued fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	def := DefaultConfig()
	if c.SpeedupFactor <= 0 {
		c.SpeedupFactor = def.SpeedupFactor
	}
	if c.MaxRevealDelay <= 0 {
		c.MaxRevealDelay = def.MaxRevealDelay
	}
	if c.Linger <= 0 {
		c.Linger = def.Linger
	}
	if c.ProbeApproval <= 0 {
		c.ProbeApproval = def.ProbeApproval
	}
	if c.CouncilApproval <= 0 {
		c.CouncilApproval = def.CouncilApproval
	}
	if c.PulseInitialRadius <= 0 {
		c.PulseInitialRadius = def.PulseInitialRadius
	}
	if c.PulseGrowth <= 0 {
		c.PulseGrowth = def.PulseGrowth
	}
	if c.PulseMaxRadius <= 0 {
		c.PulseMaxRadius = def.PulseMaxRadius
	}
}

// Approval returns the approve probability for class.
func (c Config) Approval(class model.RecipientClass) float64 {
	if class == model.ClassProbe {
		return c.ProbeApproval
	}
	return c.CouncilApproval
}

// RevealDelay maps a round-trip delay in seconds to the on-screen delay.
func (c Config) RevealDelay(roundTripSeconds float64) time.Duration {
	d := time.Duration(roundTripSeconds / c.SpeedupFactor * float64(time.Second))
	if d > c.MaxRevealDelay {
		d = c.MaxRevealDelay
	}
	if d < 0 {
		d = 0
	}
	return d
}
