package core

import (
	"fmt"
	"time"
)

const (
	// AUKm is the astronomical unit in kilometres.
	AUKm = 149597870.7
	// SpeedOfLightKmS is c in kilometres per second.
	SpeedOfLightKmS = 299792.458
	// SecondsPerAU is the light travel time across one AU (≈499 s).
	SecondsPerAU = AUKm / SpeedOfLightKmS
	// UnitsPerAU is the scene scale used for bodies, probes and signals.
	UnitsPerAU = 100.0
)

// Formatting thresholds, in seconds.
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerYear   = 31536000
)

// OneWaySeconds converts a scene distance into the one-way light delay.
// Negative distances are treated as zero.
func OneWaySeconds(distanceUnits float64) float64 {
	if distanceUnits <= 0 {
		return 0
	}
	return distanceUnits / UnitsPerAU * SecondsPerAU
}

// RoundTripSeconds is twice the one-way delay.
func RoundTripSeconds(distanceUnits float64) float64 {
	return 2 * OneWaySeconds(distanceUnits)
}

// LightDelay bundles both delays for a distance.
type LightDelay struct {
	DistanceUnits float64 `json:"distance_units"`
	OneWay        float64 `json:"one_way_seconds"`
	RoundTrip     float64 `json:"round_trip_seconds"`
}

// DelayFor computes the light delay between two scene points.
func DelayFor(from, to Vec3) LightDelay {
	d := from.DistanceTo(to)
	ow := OneWaySeconds(d)
	return LightDelay{DistanceUnits: d, OneWay: ow, RoundTrip: 2 * ow}
}

// SecondsToDuration converts fractional seconds to a time.Duration.
func SecondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// FormatDelay renders a duration in seconds using the coarsest unit among
// seconds, minutes, hours, days and years.
func FormatDelay(seconds float64) string {
	switch {
	case seconds < secondsPerMinute:
		return fmt.Sprintf("%.0fs", seconds)
	case seconds < secondsPerHour:
		return fmt.Sprintf("%.1f min", seconds/secondsPerMinute)
	case seconds < secondsPerDay:
		return fmt.Sprintf("%.1f hours", seconds/secondsPerHour)
	case seconds < secondsPerYear:
		return fmt.Sprintf("%.1f days", seconds/secondsPerDay)
	default:
		return fmt.Sprintf("%.1f years", seconds/secondsPerYear)
	}
}
