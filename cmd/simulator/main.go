package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/config"
	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
	"github.com/signalsfoundry/chronomesh/model"
	"github.com/signalsfoundry/chronomesh/timectrl"
)

// runOptions controls a headless run.
type runOptions struct {
	Years      float64
	Step       time.Duration
	DecisionAt float64
}

// runSummary is what a headless run reports.
type runSummary struct {
	Final     sim.Snapshot
	Timeline  []model.TimelineEvent
	Reveals   []decision.Reveal
	Decision  *decision.Snapshot
	Frames    int
	MaxLive   int
	Elapsed   time.Duration
	Decisions int
}

func main() {
	cfg, err := config.FromEnv()
	log := logging.NewFromEnv()
	if err != nil {
		log.Warn(context.Background(), "ignoring malformed environment settings", logging.Err(err))
	}
	cfg.SpeedLevel = len(timectrl.SpeedLevels) - 1
	cfg.RegisterFlags(flag.CommandLine)

	opts := runOptions{}
	flag.Float64Var(&opts.Years, "years", 12, "simulated years to run")
	flag.DurationVar(&opts.Step, "step", 100*time.Millisecond, "display time per frame")
	flag.Float64Var(&opts.DecisionAt, "decision-at", 6, "mission year to broadcast a decision (negative disables)")
	flag.Parse()

	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	summary, err := runSimulation(context.Background(), cfg.ApplyDefaults(), opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
	printSummary(os.Stdout, summary)
}

// runSimulation drives a mission frame by frame in accelerated mode until
// it reaches opts.Years. When opts.DecisionAt is reached a decision is
// broadcast and the run waits for it to conclude.
func runSimulation(ctx context.Context, cfg config.Config, opts runOptions, log logging.Logger) (runSummary, error) {
	if opts.Step <= 0 {
		opts.Step = 100 * time.Millisecond
	}
	missionCfg, err := cfg.ToMissionConfig()
	if err != nil {
		return runSummary{}, err
	}

	start := cfg.Epoch
	recorder := display.NewRecorder()
	state := sim.NewMissionState(missionCfg, start,
		sim.WithLogger(log),
		sim.WithSurface(recorder),
		sim.WithRand(cfg.Rand(start)),
	)

	var summary runSummary
	state.Subscribe(func(ev sim.Event) {
		switch p := ev.Payload.(type) {
		case model.TimelineEvent:
			summary.Timeline = append(summary.Timeline, p)
		case decision.Reveal:
			summary.Reveals = append(summary.Reveals, p)
		case decision.Snapshot:
			if ev.Type == sim.EventDecisionEnded {
				d := p
				summary.Decision = &d
			}
		}
	})

	tc := timectrl.NewTimeController(start, opts.Step, timectrl.Accelerated)
	tc.AddListener(state.Tick)

	if _, err := state.SetSpeed(ctx, cfg.SpeedLevel); err != nil {
		return runSummary{}, err
	}
	state.Start(ctx)

	triggered := opts.DecisionAt < 0
	began := tc.Now()
	maxFrames := int(opts.Years*core.DaysPerYear/(timectrl.DaysPerSecond*timectrl.SpeedLevels[0]*opts.Step.Seconds())) + 10000
	for summary.Frames = 0; summary.Frames < maxFrames; summary.Frames++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		snap := state.Snapshot()
		if snap.Year >= opts.Years && !snap.Holding {
			break
		}
		if !triggered && snap.Year >= opts.DecisionAt {
			triggered = true
			if _, err := state.TriggerDecision(ctx); err != nil {
				log.Warn(ctx, "decision not broadcast", logging.Err(err))
			} else {
				summary.Decisions++
			}
		}
		tc.Step(opts.Step)
		if n := recorder.Live(); n > summary.MaxLive {
			summary.MaxLive = n
		}
	}

	summary.Elapsed = tc.Now().Sub(began)
	summary.Final = state.Snapshot()
	sort.SliceStable(summary.Timeline, func(i, j int) bool { return summary.Timeline[i].Days < summary.Timeline[j].Days })
	return summary, nil
}

func printSummary(w io.Writer, s runSummary) {
	fmt.Fprintf(w, "ChronoMesh headless run: %d frames, %s display time\n", s.Frames, s.Elapsed)
	fmt.Fprintln(w, "Timeline:")
	for _, ev := range s.Timeline {
		fmt.Fprintf(w, "  [year %6.2f] %-9s %s\n", ev.Year, ev.Category, ev.Text)
	}
	if len(s.Reveals) > 0 {
		fmt.Fprintln(w, "Decision replies:")
		for _, r := range s.Reveals {
			fmt.Fprintf(w, "  %-14s %-7s %-7s round trip %s\n",
				r.Entry.Recipient.Name, r.Entry.Recipient.Class, r.Entry.Vote, core.FormatDelay(r.Entry.Delay.RoundTrip))
		}
	}
	if s.Decision != nil {
		t := s.Decision.Tallies
		fmt.Fprintf(w, "Decision %s: council %d/%d approve, probes %d/%d approve\n",
			s.Decision.EndReason, t.Council.Approve, t.Council.Total(), t.Probe.Approve, t.Probe.Total())
	}
	f := s.Final
	fmt.Fprintf(w, "Final: %s, year %.2f (%s), %d probes, %d council nodes, peak %d markers\n",
		f.Phase, f.Year, f.Date.Format(time.DateOnly), len(f.Probes), len(f.Council), s.MaxLive)
}
