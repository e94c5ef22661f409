package state

import (
	"context"
	"fmt"
	"time"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	"github.com/signalsfoundry/chronomesh/kb"
	"github.com/signalsfoundry/chronomesh/model"
)

// Tick runs one frame: advance the mission clock by wall delta, propagate
// every subsystem, drain due events and render. It matches the
// timectrl.FrameListener signature. A failing or panicking subsystem is
// logged and counted; the rest of the frame still runs.
func (s *MissionState) Tick(now time.Time, delta time.Duration) {
	started := time.Now()

	s.mu.Lock()
	s.frame.set(now)
	days := s.clock.Advance(delta)

	for _, sub := range s.subsystems {
		s.runSubsystemLocked(sub, now, days)
	}

	s.emitLocked(EventTick, s.tickPayloadLocked())
	s.updateMetricsLocked()
	if s.metrics != nil {
		s.metrics.ObserveTick(time.Since(started))
	}
	s.unlockAndFlush()
}

func (s *MissionState) runSubsystemLocked(sub subsystem, now time.Time, days float64) {
	defer func() {
		if r := recover(); r != nil {
			s.subsystemFailedLocked(sub.name, fmt.Errorf("panic: %v", r))
		}
	}()
	if err := sub.fn(now, days); err != nil {
		s.subsystemFailedLocked(sub.name, err)
	}
}

func (s *MissionState) subsystemFailedLocked(name string, err error) {
	s.log.Error(context.Background(), "subsystem update failed",
		logging.String("subsystem", name),
		logging.Err(err),
	)
	if s.metrics != nil {
		s.metrics.IncSubsystemFailure(name)
	}
}

func (s *MissionState) updateOrbits(_ time.Time, days float64) error {
	s.system.Advance(days)
	return nil
}

func (s *MissionState) updateProbes(_ time.Time, days float64) error {
	s.launcher.Update(days)
	for _, p := range s.launcher.Probes() {
		if err := s.roster.UpdatePosition(p.Name, p.Position); err != nil {
			return err
		}
	}

	year := s.clock.Year()
	if !s.clock.Started() || !s.launcher.Due(year) {
		return nil
	}
	origin, ok := s.system.Position(model.OriginBody)
	if !ok {
		return nil
	}
	vel, _ := s.system.Velocity(model.OriginBody)
	p, err := s.launcher.Launch(year, origin, vel)
	if err != nil {
		return err
	}
	if err := s.roster.Add(kb.Member{
		Name:     p.Name,
		Class:    model.ClassProbe,
		Location: p.Trajectory.Kind,
		Year:     year,
		Position: p.Position,
	}); err != nil {
		return err
	}
	s.createMarkerLocked(display.Marker{
		ID:       display.ProbeMarkerID(p.Name),
		Kind:     display.KindSprite,
		Label:    p.Name,
		Color:    p.Trajectory.Color,
		Position: p.Position,
		Scale:    1,
	})

	s.emitLocked(EventProbeLaunch, ProbePayload{
		Name:       p.Name,
		Principle:  p.Principle,
		Trajectory: p.Trajectory,
		LaunchYear: p.LaunchYear,
		Position:   p.Position,
		Velocity:   p.Velocity,
	})
	s.addTimelineLocked(fmt.Sprintf("%s launched carrying %s (%s, %.0f km/s)",
		p.Name, p.Principle, p.Trajectory.Kind, p.Trajectory.SpeedKmS), model.CategoryElder)
	if s.launcher.Count() == s.launcher.Config().Cap {
		s.addTimelineLocked(fmt.Sprintf("Elder fleet complete: %d probes launched", s.launcher.Count()), model.CategoryMilestone)
	}
	return nil
}

func (s *MissionState) updateCouncil(_ time.Time, _ float64) error {
	for name, node := range s.councils {
		host, ok := s.system.Position(node.Location)
		if !ok {
			continue
		}
		node.Follow(host)
		if err := s.roster.UpdatePosition(name, node.Position); err != nil {
			return err
		}
	}

	if !s.clock.Started() {
		return nil
	}
	year := s.clock.Year()
	due := s.deployer.Due(year)
	if len(due) == 0 {
		return nil
	}
	for _, slot := range due {
		s.deployer.MarkDeployed(slot.Name)
		s.deployLocked(slot, year)
	}
	if s.deployer.FullyDeployed() {
		s.addTimelineLocked("Council fully deployed", model.CategoryMilestone)
	}
	return nil
}

// deployLocked places one council node. A slot whose host body is unknown
// is consumed without creating a node.
func (s *MissionState) deployLocked(slot model.CouncilSlot, year float64) {
	host, ok := s.system.Position(slot.Location)
	if !ok {
		s.log.Warn(context.Background(), "council host not found; slot skipped",
			logging.String("council", slot.Name),
			logging.String("location", slot.Location),
		)
		return
	}
	node := &core.CouncilNode{Name: slot.Name, Location: slot.Location, DeployYear: year}
	node.Follow(host)
	if err := s.roster.Add(kb.Member{
		Name:     node.Name,
		Class:    model.ClassCouncil,
		Location: node.Location,
		Year:     year,
		Position: node.Position,
	}); err != nil {
		s.log.Warn(context.Background(), "council roster add failed", logging.Err(err))
		return
	}
	s.councils[node.Name] = node
	s.createMarkerLocked(display.Marker{
		ID:       display.CouncilMarkerID(node.Name),
		Kind:     display.KindSphere,
		Label:    node.Name,
		Color:    "#00ff88",
		Position: node.Position,
		Scale:    1,
	})

	s.emitLocked(EventCouncilDeploy, CouncilPayload{
		Name:       node.Name,
		Location:   node.Location,
		DeployYear: year,
		Position:   node.Position,
	})
	s.addTimelineLocked(fmt.Sprintf("%s deployed at %s", node.Name, node.Location), model.CategoryCouncil)
}

func (s *MissionState) updatePhase(_ time.Time, _ float64) error {
	next := core.PhaseAt(s.clock.Year(), s.clock.Started())
	if next.Name == s.phase.Name {
		return nil
	}
	s.phase = next
	if s.clock.Started() {
		s.addTimelineLocked("Entering "+next.Name, model.CategoryMilestone)
	}
	return nil
}

func (s *MissionState) updateDecision(now time.Time, _ float64) error {
	s.queue.RunDue()
	return s.seq.Update(now)
}

func (s *MissionState) updateDisplay(now time.Time, _ float64) error {
	if s.surface == nil || !s.surface.Ready() {
		return nil
	}
	s.ensureBodyMarkersLocked()
	s.flushDeferredMarkersLocked()
	s.syncBodyMarkersLocked()
	for _, p := range s.launcher.Probes() {
		s.updateMarkerLocked(display.ProbeMarkerID(p.Name), p.Position, 1)
	}
	for name, node := range s.councils {
		s.updateMarkerLocked(display.CouncilMarkerID(name), node.Position, 1)
	}
	return s.surface.RenderFrame(now)
}

func (s *MissionState) ensureBodyMarkersLocked() {
	if s.bodyMarkers || s.surface == nil || !s.surface.Ready() {
		return
	}
	for _, name := range s.system.Names() {
		b, _ := s.system.Body(name)
		s.createMarkerLocked(display.Marker{
			ID:       display.BodyMarkerID(name),
			Kind:     display.KindSphere,
			Label:    name,
			Color:    b.Def.Color,
			Position: b.Motion.Position(),
			Scale:    b.Def.Size,
		})
	}
	s.bodyMarkers = true
}

func (s *MissionState) syncBodyMarkersLocked() {
	if !s.bodyMarkers || s.surface == nil {
		return
	}
	for _, name := range s.system.Names() {
		b, _ := s.system.Body(name)
		s.updateMarkerLocked(display.BodyMarkerID(name), b.Motion.Position(), b.Def.Size)
	}
}

// flushDeferredMarkersLocked creates the probe and council markers that
// were skipped while the surface was unavailable.
func (s *MissionState) flushDeferredMarkersLocked() {
	for id, m := range s.deferred {
		delete(s.deferred, id)
		s.createMarkerLocked(m)
	}
}

func (s *MissionState) createMarkerLocked(m display.Marker) {
	if s.surface == nil {
		return
	}
	if !s.surface.Ready() {
		s.deferred[m.ID] = m
		return
	}
	if err := s.surface.CreateMarker(m); err != nil {
		s.log.Warn(context.Background(), "marker create failed",
			logging.String("marker", m.ID), logging.Err(err))
	}
}

func (s *MissionState) updateMarkerLocked(id string, pos core.Vec3, scale float64) {
	if err := s.surface.UpdateMarker(id, pos, scale); err != nil {
		s.log.Debug(context.Background(), "marker update failed",
			logging.String("marker", id), logging.Err(err))
	}
}

func (s *MissionState) disposeMarkerLocked(id string) {
	if _, ok := s.deferred[id]; ok {
		delete(s.deferred, id)
		return
	}
	if s.surface == nil {
		return
	}
	if err := s.surface.DisposeMarker(id); err != nil {
		s.log.Debug(context.Background(), "marker dispose failed",
			logging.String("marker", id), logging.Err(err))
	}
}
