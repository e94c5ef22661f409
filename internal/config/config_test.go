package config

import (
	"errors"
	"flag"
	"testing"
	"time"

	"github.com/signalsfoundry/chronomesh/model"
)

func TestDefaultMatchesMissionDefaults(t *testing.T) {
	c := Default()
	mc, err := c.ToMissionConfig()
	if err != nil {
		t.Fatalf("ToMissionConfig: %v", err)
	}
	if mc.Probes.Cap != 100 || mc.Probes.FirstLaunchYear != 0.5 || mc.Probes.IntervalYears != 0.5 {
		t.Fatalf("probe config = %+v", mc.Probes)
	}
	if len(mc.CouncilSchedule) != len(model.DefaultCouncilSchedule) {
		t.Fatalf("council schedule = %v", mc.CouncilSchedule)
	}
	if mc.TimelineCapacity != 20 {
		t.Fatalf("timeline capacity = %d, want 20", mc.TimelineCapacity)
	}
}

func TestApplyDefaults(t *testing.T) {
	c := Config{SpeedLevel: 42, ProbeCap: -1, LaunchJitterYears: -0.1, TimelineCapacity: 0}.ApplyDefaults()
	def := Default()
	if c.GRPCAddr != def.GRPCAddr || c.HTTPAddr != def.HTTPAddr {
		t.Fatalf("addresses not defaulted: %q %q", c.GRPCAddr, c.HTTPAddr)
	}
	if c.SpeedLevel != def.SpeedLevel {
		t.Fatalf("speed level = %d, want %d", c.SpeedLevel, def.SpeedLevel)
	}
	if c.ProbeCap != def.ProbeCap {
		t.Fatalf("probe cap = %d, want %d", c.ProbeCap, def.ProbeCap)
	}
	if c.LaunchJitterYears != 0.1 {
		t.Fatalf("jitter = %v, want 0.1", c.LaunchJitterYears)
	}
	if c.TimelineCapacity != def.TimelineCapacity {
		t.Fatalf("timeline capacity = %d", c.TimelineCapacity)
	}
	if c.Epoch.IsZero() || c.FrameInterval <= 0 {
		t.Fatalf("epoch/frame interval not defaulted")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvGRPCAddr, "127.0.0.1:7000")
	t.Setenv(EnvEpoch, "2040-06-01")
	t.Setenv(EnvProbeCap, "12")
	t.Setenv(EnvLaunchIntervalYears, "0.25")
	t.Setenv(EnvCouncilSchedule, "extended")
	t.Setenv(EnvFrameInterval, "50ms")
	t.Setenv(EnvAutoStart, "true")
	t.Setenv(EnvSeed, "7")

	c, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if c.GRPCAddr != "127.0.0.1:7000" {
		t.Fatalf("grpc addr = %q", c.GRPCAddr)
	}
	if want := time.Date(2040, 6, 1, 0, 0, 0, 0, time.UTC); !c.Epoch.Equal(want) {
		t.Fatalf("epoch = %v, want %v", c.Epoch, want)
	}
	if c.ProbeCap != 12 || c.LaunchIntervalYears != 0.25 {
		t.Fatalf("probe settings = %d %v", c.ProbeCap, c.LaunchIntervalYears)
	}
	if c.FrameInterval != 50*time.Millisecond || !c.AutoStart || c.Seed != 7 {
		t.Fatalf("frame=%v autostart=%v seed=%d", c.FrameInterval, c.AutoStart, c.Seed)
	}

	mc, err := c.ToMissionConfig()
	if err != nil {
		t.Fatalf("ToMissionConfig: %v", err)
	}
	if len(mc.CouncilSchedule) != len(model.ExtendedCouncilSchedule) {
		t.Fatalf("schedule = %v, want extended", mc.CouncilSchedule)
	}
}

func TestFromEnvReportsMalformedValues(t *testing.T) {
	t.Setenv(EnvProbeCap, "many")
	t.Setenv(EnvFrameInterval, "soon")
	t.Setenv(EnvHTTPAddr, ":8081")

	c, err := FromEnv()
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}
	if c.HTTPAddr != ":8081" {
		t.Fatalf("valid values should still apply, http addr = %q", c.HTTPAddr)
	}
	if c.ProbeCap != Default().ProbeCap {
		t.Fatalf("malformed probe cap applied: %d", c.ProbeCap)
	}
}

func TestUnknownSchedule(t *testing.T) {
	c := Default()
	c.CouncilSchedule = "andromeda"
	if _, err := c.ToMissionConfig(); !errors.Is(err, ErrUnknownSchedule) {
		t.Fatalf("err = %v, want ErrUnknownSchedule", err)
	}
}

func TestRegisterFlagsOverride(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	err := fs.Parse([]string{
		"-grpc-addr", ":6000",
		"-epoch", "2031-02-03",
		"-speed-level", "4",
		"-council-schedule", "extended",
		"-seed", "99",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.GRPCAddr != ":6000" || c.SpeedLevel != 4 || c.CouncilSchedule != "extended" || c.Seed != 99 {
		t.Fatalf("flags not applied: %+v", c)
	}
	if c.Epoch.Year() != 2031 || c.Epoch.Month() != time.February || c.Epoch.Day() != 3 {
		t.Fatalf("epoch = %v", c.Epoch)
	}
	if err := fs.Parse([]string{"-epoch", "not-a-date"}); err == nil {
		t.Fatalf("expected bad epoch to fail")
	}
}

func TestRandIsDeterministicForSeed(t *testing.T) {
	c := Default()
	c.Seed = 1234
	a := c.Rand(time.Now())
	b := c.Rand(time.Now().Add(time.Hour))
	for i := 0; i < 5; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("seeded sources diverged at draw %d", i)
		}
	}
}

func TestScheduleNamesDefaultFirst(t *testing.T) {
	names := ScheduleNames()
	if len(names) != len(model.CouncilSchedules) || names[0] != DefaultCouncilSchedule {
		t.Fatalf("names = %v", names)
	}
}

func TestTracingConfigCarriesMission(t *testing.T) {
	c := Default()
	c.Seed = 7
	c.CouncilSchedule = "extended"
	c.Tracing.ServiceName = "chronomesh-ci"

	tc := c.TracingConfig()
	if tc.ServiceName != "chronomesh-ci" {
		t.Fatalf("service name = %q", tc.ServiceName)
	}
	m := tc.Mission
	if m.Seed != 7 || m.CouncilSchedule != "extended" || m.ProbeCap != c.ProbeCap || !m.Epoch.Equal(c.Epoch) {
		t.Fatalf("mission attributes = %+v", m)
	}
}
