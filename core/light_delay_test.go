package core

import (
	"math"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestSecondsPerAU(t *testing.T) {
	if math.Abs(SecondsPerAU-499.004784) > 1e-5 {
		t.Fatalf("SecondsPerAU = %v", SecondsPerAU)
	}
	if got := OneWaySeconds(UnitsPerAU); got != SecondsPerAU {
		t.Fatalf("one AU one-way = %v, want %v", got, SecondsPerAU)
	}
}

func TestRoundTripIsTwiceOneWay(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := rapid.Float64Range(0, 1e6).Draw(t, "distance")
		if rt, ow := RoundTripSeconds(d), OneWaySeconds(d); rt != 2*ow {
			t.Fatalf("round trip %v != 2 × %v", rt, ow)
		}
	})
}

func TestOneWayStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 1e6).Draw(t, "a")
		delta := rapid.Float64Range(1e-3, 1e6).Draw(t, "delta")
		if OneWaySeconds(a+delta) <= OneWaySeconds(a) {
			t.Fatalf("one-way delay not increasing between %v and %v", a, a+delta)
		}
	})
}

func TestOneWayNegativeDistance(t *testing.T) {
	if got := OneWaySeconds(-5); got != 0 {
		t.Fatalf("negative distance delay = %v, want 0", got)
	}
}

func TestDelayFor(t *testing.T) {
	d := DelayFor(Vec3{X: 100}, Vec3{X: 252})
	if d.DistanceUnits != 152 {
		t.Fatalf("distance = %v, want 152", d.DistanceUnits)
	}
	if d.RoundTrip != 2*d.OneWay {
		t.Fatalf("round trip %v != 2 × %v", d.RoundTrip, d.OneWay)
	}
	if got := SecondsToDuration(1.5); got != 1500*time.Millisecond {
		t.Fatalf("SecondsToDuration(1.5) = %v", got)
	}
}

func TestFormatDelay(t *testing.T) {
	cases := []struct {
		seconds float64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{150, "2.5 min"},
		{7200, "2.0 hours"},
		{200000, "2.3 days"},
		{40000000, "1.3 years"},
		{59.4, "59s"},
		{60, "1.0 min"},
		{3600, "1.0 hours"},
		{86400, "1.0 days"},
		{31536000, "1.0 years"},
	}
	for _, tc := range cases {
		if got := FormatDelay(tc.seconds); got != tc.want {
			t.Fatalf("FormatDelay(%v) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}
