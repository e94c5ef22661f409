package feed

import (
	"sort"

	"github.com/invopop/jsonschema"

	"github.com/signalsfoundry/chronomesh/internal/decision"
	"github.com/signalsfoundry/chronomesh/internal/display"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
	"github.com/signalsfoundry/chronomesh/model"
)

// PayloadTypes maps every message type to a zero value of its payload.
func PayloadTypes() map[string]any {
	return map[string]any{
		TypeHello:                        HelloPayload{},
		TypeMarkerCreate:                 display.Marker{},
		TypeMarkerDispose:                DisposePayload{},
		TypeFrame:                        FramePayload{},
		string(sim.EventTick):            sim.TickPayload{},
		string(sim.EventProbeLaunch):     sim.ProbePayload{},
		string(sim.EventCouncilDeploy):   sim.CouncilPayload{},
		string(sim.EventTimeline):        model.TimelineEvent{},
		string(sim.EventDecisionStarted): decision.Snapshot{},
		string(sim.EventDecisionReveal):  decision.Reveal{},
		string(sim.EventDecisionEnded):   decision.Snapshot{},
		string(sim.EventNotice):          sim.NoticePayload{},
		string(sim.EventReset):           sim.NoticePayload{},
	}
}

// SchemaDocument describes the feed wire format.
type SchemaDocument struct {
	Title    string                        `json:"title"`
	Types    []string                      `json:"types"`
	Envelope *jsonschema.Schema            `json:"envelope"`
	Payloads map[string]*jsonschema.Schema `json:"payloads"`
}

// BuildSchema reflects the envelope and every payload type.
func BuildSchema() SchemaDocument {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}

	envelope := reflector.Reflect(new(Message))
	envelope.Title = "ChronoMesh feed message"
	envelope.Description = "Envelope of every WebSocket message on /feed; payload depends on type."

	types := PayloadTypes()
	doc := SchemaDocument{
		Title:    "ChronoMesh feed",
		Envelope: envelope,
		Payloads: make(map[string]*jsonschema.Schema, len(types)),
	}
	for name, v := range types {
		s := reflector.Reflect(v)
		s.Title = name
		doc.Payloads[name] = s
		doc.Types = append(doc.Types, name)
	}
	sort.Strings(doc.Types)
	return doc
}
