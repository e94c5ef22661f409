package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MissionCollector exposes the simulation's Prometheus metrics. It
// satisfies the mission state's metrics recorder.
type MissionCollector struct {
	gatherer prometheus.Gatherer

	Probes        prometheus.Gauge
	CouncilNodes  prometheus.Gauge
	TimelineLen   prometheus.Gauge
	MissionYear   prometheus.Gauge
	LiveMarkers   prometheus.Gauge
	TickDuration  prometheus.Histogram
	Reveals       *prometheus.CounterVec
	Decisions     *prometheus.CounterVec
	SubsystemErrs *prometheus.CounterVec
}

// NewMissionCollector registers mission metrics against reg.
func NewMissionCollector(reg prometheus.Registerer) (*MissionCollector, error) {
	reg, gatherer := registryPair(reg)
	c := &MissionCollector{gatherer: gatherer}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Probes, "chronomesh_probes", "Elder probes launched and in flight."},
		{&c.CouncilNodes, "chronomesh_council_nodes", "Council nodes deployed."},
		{&c.TimelineLen, "chronomesh_timeline_events", "Entries currently held in the mission timeline."},
		{&c.MissionYear, "chronomesh_mission_year", "Current simulated mission year."},
		{&c.LiveMarkers, "chronomesh_display_markers", "Live markers on the display surface."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}

	var err error
	c.TickDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chronomesh_tick_duration_seconds",
		Help:    "Wall time spent in one mission update frame.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.1},
	}), "chronomesh_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	c.Reveals, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chronomesh_decision_reveals_total",
		Help: "Decision votes revealed, labeled by recipient class and vote.",
	}, []string{"class", "vote"}), "chronomesh_decision_reveals_total")
	if err != nil {
		return nil, err
	}

	c.Decisions, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chronomesh_decisions_total",
		Help: "Decision broadcast lifecycle transitions, labeled by outcome.",
	}, []string{"outcome"}), "chronomesh_decisions_total")
	if err != nil {
		return nil, err
	}

	c.SubsystemErrs, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chronomesh_subsystem_failures_total",
		Help: "Per-frame subsystem updates that failed or panicked.",
	}, []string{"subsystem"}), "chronomesh_subsystem_failures_total")
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *MissionCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a /metrics handler for the collector's registry.
func (c *MissionCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// SetMissionCounts updates the roster and timeline gauges.
func (c *MissionCollector) SetMissionCounts(probes, council, timeline int) {
	if c == nil {
		return
	}
	c.Probes.Set(float64(probes))
	c.CouncilNodes.Set(float64(council))
	c.TimelineLen.Set(float64(timeline))
}

// SetMissionYear records the simulated year.
func (c *MissionCollector) SetMissionYear(year float64) {
	if c == nil {
		return
	}
	c.MissionYear.Set(year)
}

// SetLiveMarkers records the display marker count.
func (c *MissionCollector) SetLiveMarkers(n int) {
	if c == nil {
		return
	}
	c.LiveMarkers.Set(float64(n))
}

// ObserveTick records one frame's duration.
func (c *MissionCollector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.TickDuration.Observe(d.Seconds())
}

// IncReveal counts a revealed vote.
func (c *MissionCollector) IncReveal(class, vote string) {
	if c == nil {
		return
	}
	c.Reveals.WithLabelValues(class, vote).Inc()
}

// IncDecision counts a broadcast lifecycle outcome (started, superseded,
// exited, timed_out).
func (c *MissionCollector) IncDecision(outcome string) {
	if c == nil {
		return
	}
	c.Decisions.WithLabelValues(outcome).Inc()
}

// IncSubsystemFailure counts a failed per-frame update.
func (c *MissionCollector) IncSubsystemFailure(subsystem string) {
	if c == nil {
		return
	}
	c.SubsystemErrs.WithLabelValues(subsystem).Inc()
}
