// Package config holds runtime configuration for the chronomesh binaries.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/observability"
	"github.com/signalsfoundry/chronomesh/internal/sim/state"
	"github.com/signalsfoundry/chronomesh/model"
	"github.com/signalsfoundry/chronomesh/timectrl"
)

// Environment variables read by FromEnv.
const (
	EnvGRPCAddr            = "CHRONOMESH_GRPC_ADDR"
	EnvHTTPAddr            = "CHRONOMESH_HTTP_ADDR"
	EnvFrameInterval       = "CHRONOMESH_FRAME_INTERVAL"
	EnvEpoch               = "CHRONOMESH_EPOCH"
	EnvSpeedLevel          = "CHRONOMESH_SPEED_LEVEL"
	EnvAutoStart           = "CHRONOMESH_AUTOSTART"
	EnvSeed                = "CHRONOMESH_SEED"
	EnvProbeCap            = "CHRONOMESH_PROBE_CAP"
	EnvFirstLaunchYear     = "CHRONOMESH_FIRST_LAUNCH_YEAR"
	EnvLaunchIntervalYears = "CHRONOMESH_LAUNCH_INTERVAL_YEARS"
	EnvLaunchJitterYears   = "CHRONOMESH_LAUNCH_JITTER_YEARS"
	EnvCouncilSchedule     = "CHRONOMESH_COUNCIL_SCHEDULE"
	EnvTimelineCapacity    = "CHRONOMESH_TIMELINE_CAPACITY"
)

// DefaultCouncilSchedule names the schedule used when none is configured.
const DefaultCouncilSchedule = "solar-five"

var (
	// ErrUnknownSchedule is returned for a council schedule name that is not
	// in model.CouncilSchedules.
	ErrUnknownSchedule = errors.New("unknown council schedule")
	// ErrInvalidValue wraps every malformed setting.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// Config is the full runtime configuration.
type Config struct {
	GRPCAddr string
	HTTPAddr string

	// FrameInterval is the wall time between display frames.
	FrameInterval time.Duration

	Epoch      time.Time
	SpeedLevel int
	AutoStart  bool
	// Seed fixes the random source; zero seeds from the wall clock.
	Seed uint64

	ProbeCap            int
	FirstLaunchYear     float64
	LaunchIntervalYears float64
	LaunchJitterYears   float64

	CouncilSchedule  string
	TimelineCapacity int

	Tracing observability.TracingConfig
}

// Default returns the standard configuration.
func Default() Config {
	probes := core.DefaultProbeLauncherConfig()
	return Config{
		GRPCAddr:            ":50051",
		HTTPAddr:            ":9090",
		FrameInterval:       time.Second / 60,
		Epoch:               state.DefaultConfig().Epoch,
		SpeedLevel:          timectrl.DefaultSpeedLevel,
		ProbeCap:            probes.Cap,
		FirstLaunchYear:     probes.FirstLaunchYear,
		LaunchIntervalYears: probes.IntervalYears,
		LaunchJitterYears:   probes.JitterYears,
		CouncilSchedule:     DefaultCouncilSchedule,
		TimelineCapacity:    core.DefaultTimelineCapacity,
		Tracing:             observability.TracingConfigFromEnv(),
	}
}

// ApplyDefaults replaces zero or out-of-range fields with defaults.
func (c Config) ApplyDefaults() Config {
	def := Default()
	if c.GRPCAddr == "" {
		c.GRPCAddr = def.GRPCAddr
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = def.HTTPAddr
	}
	if c.FrameInterval <= 0 {
		c.FrameInterval = def.FrameInterval
	}
	if c.Epoch.IsZero() {
		c.Epoch = def.Epoch
	}
	if c.SpeedLevel < 0 || c.SpeedLevel >= len(timectrl.SpeedLevels) {
		c.SpeedLevel = def.SpeedLevel
	}
	if c.ProbeCap < 0 {
		c.ProbeCap = def.ProbeCap
	}
	if c.LaunchIntervalYears <= 0 {
		c.LaunchIntervalYears = def.LaunchIntervalYears
	}
	if c.LaunchJitterYears < 0 {
		c.LaunchJitterYears = -c.LaunchJitterYears
	}
	if c.CouncilSchedule == "" {
		c.CouncilSchedule = def.CouncilSchedule
	}
	if c.TimelineCapacity < 1 {
		c.TimelineCapacity = def.TimelineCapacity
	}
	return c
}

// FromEnv overlays CHRONOMESH_* variables on Default. Every malformed
// variable is reported; valid ones still apply.
func FromEnv() (Config, error) {
	c := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v))
				return
			}
			*dst = f
		}
	}

	str(EnvGRPCAddr, &c.GRPCAddr)
	str(EnvHTTPAddr, &c.HTTPAddr)
	str(EnvCouncilSchedule, &c.CouncilSchedule)
	integer(EnvSpeedLevel, &c.SpeedLevel)
	integer(EnvProbeCap, &c.ProbeCap)
	integer(EnvTimelineCapacity, &c.TimelineCapacity)
	float(EnvFirstLaunchYear, &c.FirstLaunchYear)
	float(EnvLaunchIntervalYears, &c.LaunchIntervalYears)
	float(EnvLaunchJitterYears, &c.LaunchJitterYears)

	if v := os.Getenv(EnvFrameInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvFrameInterval, v))
		} else {
			c.FrameInterval = d
		}
	}
	if v := os.Getenv(EnvEpoch); v != "" {
		t, err := parseEpoch(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvEpoch, v))
		} else {
			c.Epoch = t
		}
	}
	if v := os.Getenv(EnvAutoStart); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvAutoStart, v))
		} else {
			c.AutoStart = b
		}
	}
	if v := os.Getenv(EnvSeed); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvSeed, v))
		} else {
			c.Seed = n
		}
	}
	return c, errors.Join(errs...)
}

// RegisterFlags binds c's fields to fs, using the current values as
// defaults. Call it after FromEnv so flags override the environment.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.GRPCAddr, "grpc-addr", c.GRPCAddr, "TCP address the control gRPC server listens on")
	fs.StringVar(&c.HTTPAddr, "http-addr", c.HTTPAddr, "HTTP address for /metrics, /feed and /healthz")
	fs.DurationVar(&c.FrameInterval, "frame-interval", c.FrameInterval, "wall time between display frames")
	fs.Func("epoch", "mission day-zero date (YYYY-MM-DD or RFC 3339)", func(v string) error {
		t, err := parseEpoch(v)
		if err != nil {
			return err
		}
		c.Epoch = t
		return nil
	})
	fs.IntVar(&c.SpeedLevel, "speed-level", c.SpeedLevel, fmt.Sprintf("initial speed level index into %v", timectrl.SpeedLevels))
	fs.BoolVar(&c.AutoStart, "autostart", c.AutoStart, "start the mission clock immediately")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed (0 seeds from the wall clock)")
	fs.IntVar(&c.ProbeCap, "probe-cap", c.ProbeCap, "maximum number of elder probes")
	fs.Float64Var(&c.FirstLaunchYear, "first-launch-year", c.FirstLaunchYear, "mission year of the first probe launch")
	fs.Float64Var(&c.LaunchIntervalYears, "launch-interval", c.LaunchIntervalYears, "years between probe launches")
	fs.Float64Var(&c.LaunchJitterYears, "launch-jitter", c.LaunchJitterYears, "uniform +/- jitter on the launch interval, in years")
	fs.StringVar(&c.CouncilSchedule, "council-schedule", c.CouncilSchedule, "council schedule name ("+strings.Join(ScheduleNames(), ", ")+")")
	fs.IntVar(&c.TimelineCapacity, "timeline-capacity", c.TimelineCapacity, "number of timeline entries kept")
}

// ScheduleNames lists the known council schedules, default first.
func ScheduleNames() []string {
	names := []string{DefaultCouncilSchedule}
	for name := range model.CouncilSchedules {
		if name != DefaultCouncilSchedule {
			names = append(names, name)
		}
	}
	slices.Sort(names[1:])
	return names
}

// ToMissionConfig builds the mission configuration.
func (c Config) ToMissionConfig() (state.Config, error) {
	c = c.ApplyDefaults()
	schedule, ok := model.CouncilSchedules[c.CouncilSchedule]
	if !ok {
		return state.Config{}, fmt.Errorf("%w: %q", ErrUnknownSchedule, c.CouncilSchedule)
	}

	mc := state.DefaultConfig()
	mc.Epoch = c.Epoch
	mc.CouncilSchedule = schedule
	mc.TimelineCapacity = c.TimelineCapacity
	mc.Probes.Cap = c.ProbeCap
	mc.Probes.FirstLaunchYear = c.FirstLaunchYear
	mc.Probes.IntervalYears = c.LaunchIntervalYears
	mc.Probes.JitterYears = c.LaunchJitterYears
	return mc, nil
}

// TracingConfig returns the tracing settings tagged with this mission.
func (c Config) TracingConfig() observability.TracingConfig {
	tc := c.Tracing
	tc.Mission = observability.MissionAttributes{
		Epoch:           c.Epoch,
		Seed:            c.Seed,
		CouncilSchedule: c.CouncilSchedule,
		ProbeCap:        c.ProbeCap,
	}
	return tc
}

// Rand returns the configured random source. A zero seed is replaced by
// one derived from now.
func (c Config) Rand(now time.Time) *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func parseEpoch(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}
