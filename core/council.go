package core

import "github.com/signalsfoundry/chronomesh/model"

// CouncilOffset lifts a council node above its host body.
var CouncilOffset = Vec3{X: 0, Y: 15, Z: 0}

// CouncilNode is a deployed mind attached to a host body. It has no
// position of its own beyond the host's plus CouncilOffset.
type CouncilNode struct {
	Name       string
	Location   string
	DeployYear float64
	Position   Vec3
}

// Follow re-samples the host position.
func (n *CouncilNode) Follow(host Vec3) {
	n.Position = host.Add(CouncilOffset)
}

// CouncilDeployer walks a fixed deployment schedule. Each slot is handed
// out at most once, and slots are never re-armed except by Reset.
type CouncilDeployer struct {
	schedule []model.CouncilSlot
	consumed map[string]bool
}

// NewCouncilDeployer copies schedule. Slots repeating an earlier name or
// location are dropped.
func NewCouncilDeployer(schedule []model.CouncilSlot) *CouncilDeployer {
	seenName := make(map[string]bool, len(schedule))
	seenLoc := make(map[string]bool, len(schedule))
	out := make([]model.CouncilSlot, 0, len(schedule))
	for _, s := range schedule {
		if seenName[s.Name] || seenLoc[s.Location] {
			continue
		}
		seenName[s.Name] = true
		seenLoc[s.Location] = true
		out = append(out, s)
	}
	return &CouncilDeployer{schedule: out, consumed: make(map[string]bool, len(out))}
}

// Schedule returns the slots in schedule order.
func (d *CouncilDeployer) Schedule() []model.CouncilSlot {
	out := make([]model.CouncilSlot, len(d.schedule))
	copy(out, d.schedule)
	return out
}

// Due returns every unconsumed slot whose year has been reached, in
// schedule order.
func (d *CouncilDeployer) Due(year float64) []model.CouncilSlot {
	if d.FullyDeployed() {
		return nil
	}
	var due []model.CouncilSlot
	for _, s := range d.schedule {
		if !d.consumed[s.Name] && year >= s.Year {
			due = append(due, s)
		}
	}
	return due
}

// MarkDeployed consumes the named slot. It reports false when the slot is
// unknown or already consumed.
func (d *CouncilDeployer) MarkDeployed(name string) bool {
	if d.consumed[name] {
		return false
	}
	for _, s := range d.schedule {
		if s.Name == name {
			d.consumed[name] = true
			return true
		}
	}
	return false
}

// Deployed reports whether the named slot has been consumed.
func (d *CouncilDeployer) Deployed(name string) bool { return d.consumed[name] }

// Remaining is the number of slots not yet consumed.
func (d *CouncilDeployer) Remaining() int { return len(d.schedule) - len(d.consumed) }

// FullyDeployed is true once every slot has been consumed.
func (d *CouncilDeployer) FullyDeployed() bool {
	return len(d.consumed) == len(d.schedule)
}

// Reset re-arms every slot.
func (d *CouncilDeployer) Reset() {
	d.consumed = make(map[string]bool, len(d.schedule))
}
