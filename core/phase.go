package core

import "github.com/signalsfoundry/chronomesh/model"

// PhaseAt returns the mission phase for year. Before the mission has been
// started the initialization phase is reported.
func PhaseAt(year float64, started bool) model.Phase {
	if !started {
		return model.InitializationPhase
	}
	for _, p := range model.Phases {
		if year >= p.StartYear && year < p.EndYear {
			return p
		}
	}
	if year < model.Phases[0].StartYear {
		return model.Phases[0]
	}
	return model.Phases[len(model.Phases)-1]
}
