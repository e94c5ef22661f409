package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/signalsfoundry/chronomesh/internal/config"
	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	"github.com/signalsfoundry/chronomesh/model"
)

func TestRunSimulationFullMission(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 42
	cfg.SpeedLevel = 5

	summary, err := runSimulation(context.Background(), cfg, runOptions{Years: 10.5, Step: 100 * time.Millisecond, DecisionAt: 6}, logging.Noop())
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}

	final := summary.Final
	if final.Year < 10.5 {
		t.Fatalf("final year = %.2f, want >= 10.5", final.Year)
	}
	if final.Phase != model.Phases[2].Name {
		t.Fatalf("final phase = %q", final.Phase)
	}
	if !final.CouncilFullyDeployed || len(final.Council) != len(model.DefaultCouncilSchedule) {
		t.Fatalf("council = %d deployed=%v", len(final.Council), final.CouncilFullyDeployed)
	}
	if len(final.Probes) < 15 || len(final.Probes) > 21 {
		t.Fatalf("probes = %d, want roughly two per year", len(final.Probes))
	}

	if summary.Decisions != 1 || summary.Decision == nil {
		t.Fatalf("decision not run: %d %v", summary.Decisions, summary.Decision)
	}
	if summary.Decision.EndReason != decision.EndTimedOut {
		t.Fatalf("decision end = %s, want timed_out", summary.Decision.EndReason)
	}
	if len(summary.Reveals) != len(summary.Decision.Entries) {
		t.Fatalf("reveals = %d, entries = %d", len(summary.Reveals), len(summary.Decision.Entries))
	}
	for i := 1; i < len(summary.Reveals); i++ {
		if summary.Reveals[i].Entry.RevealDelay < summary.Reveals[i-1].Entry.RevealDelay {
			t.Fatalf("reveals out of delay order at %d", i)
		}
	}
	for i := 1; i < len(summary.Timeline); i++ {
		if summary.Timeline[i].Days < summary.Timeline[i-1].Days {
			t.Fatalf("timeline not chronological at %d", i)
		}
	}

	var out bytes.Buffer
	printSummary(&out, summary)
	for _, want := range []string{"ChronoMesh mission initialized", "EARTH-MIND", "Council fully deployed", "Final: Phase 3"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunSimulationWithoutDecision(t *testing.T) {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.SpeedLevel = 5

	summary, err := runSimulation(context.Background(), cfg, runOptions{Years: 1, DecisionAt: -1}, logging.Noop())
	if err != nil {
		t.Fatalf("runSimulation: %v", err)
	}
	if summary.Decision != nil || len(summary.Reveals) != 0 {
		t.Fatalf("unexpected decision")
	}
	if summary.Frames == 0 {
		t.Fatalf("no frames run")
	}
}

func TestRunSimulationUnknownSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.CouncilSchedule = "missing"
	if _, err := runSimulation(context.Background(), cfg, runOptions{Years: 1}, logging.Noop()); err == nil {
		t.Fatalf("expected error")
	}
}
