package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/signalsfoundry/chronomesh/core"
	"github.com/signalsfoundry/chronomesh/internal/display"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
)

type wireMessage struct {
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

func dialFeed(t *testing.T, hub *Hub) (context.Context, *websocket.Conn) {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return ctx, conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) wireMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	var msg wireMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal %s: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestViewerReceivesHelloAndEvents(t *testing.T) {
	hub := NewHub(nil)
	ctx, conn := dialFeed(t, hub)

	hello := readMessage(t, ctx, conn)
	if hello.Type != TypeHello {
		t.Fatalf("first message = %q, want hello", hello.Type)
	}
	waitForClients(t, hub, 1)

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	hub.PublishEvent(sim.Event{Type: sim.EventNotice, At: at, Payload: sim.NoticePayload{Message: "hi"}})

	msg := readMessage(t, ctx, conn)
	if msg.Type != string(sim.EventNotice) || !msg.At.Equal(at) {
		t.Fatalf("message = %+v", msg)
	}
	var notice sim.NoticePayload
	if err := json.Unmarshal(msg.Payload, &notice); err != nil || notice.Message != "hi" {
		t.Fatalf("payload = %s (%v)", msg.Payload, err)
	}
}

func TestTickEventsAreThinned(t *testing.T) {
	hub := NewHub(nil, WithTickInterval(time.Second))
	ctx, conn := dialFeed(t, hub)
	readMessage(t, ctx, conn)
	waitForClients(t, hub, 1)

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		hub.PublishEvent(sim.Event{Type: sim.EventTick, At: base.Add(time.Duration(i) * 100 * time.Millisecond)})
	}
	hub.PublishEvent(sim.Event{Type: sim.EventTick, At: base.Add(1500 * time.Millisecond)})
	hub.PublishEvent(sim.Event{Type: sim.EventReset, At: base.Add(2 * time.Second)})

	var types []string
	for {
		msg := readMessage(t, ctx, conn)
		types = append(types, msg.Type)
		if msg.Type == string(sim.EventReset) {
			break
		}
	}
	if len(types) != 3 {
		t.Fatalf("messages = %v, want two ticks and a reset", types)
	}
}

func TestSurfaceForwardsMarkerOperations(t *testing.T) {
	hub := NewHub(nil)
	surface := NewSurface(hub, 0)
	ctx, conn := dialFeed(t, hub)
	readMessage(t, ctx, conn)
	waitForClients(t, hub, 1)

	if !surface.Ready() {
		t.Fatalf("surface should be ready while hub is open")
	}
	if err := surface.CreateMarker(display.Marker{ID: "probe/ELDER-1", Kind: display.KindSprite}); err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}
	if msg := readMessage(t, ctx, conn); msg.Type != TypeMarkerCreate {
		t.Fatalf("type = %q, want marker_create", msg.Type)
	}

	if err := surface.UpdateMarker("probe/ELDER-1", core.Vec3{X: 1}, 2); err != nil {
		t.Fatalf("UpdateMarker: %v", err)
	}
	if err := surface.RenderFrame(time.Now()); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	frame := readMessage(t, ctx, conn)
	if frame.Type != TypeFrame {
		t.Fatalf("type = %q, want frame", frame.Type)
	}
	var fp FramePayload
	if err := json.Unmarshal(frame.Payload, &fp); err != nil {
		t.Fatalf("Unmarshal frame: %v", err)
	}
	if len(fp.Updates) != 1 || fp.Updates[0].Position.X != 1 || fp.Updates[0].Scale != 2 {
		t.Fatalf("frame = %+v", fp)
	}

	if err := surface.DisposeMarker("probe/ELDER-1"); err != nil {
		t.Fatalf("DisposeMarker: %v", err)
	}
	if msg := readMessage(t, ctx, conn); msg.Type != TypeMarkerDispose {
		t.Fatalf("type = %q, want marker_dispose", msg.Type)
	}

	if err := surface.UpdateMarker("probe/ELDER-1", core.Vec3{}, 1); !errors.Is(err, display.ErrUnknownMarker) {
		t.Fatalf("update after dispose err = %v", err)
	}
}

func TestSurfaceGreetsLateViewers(t *testing.T) {
	hub := NewHub(nil)
	surface := NewSurface(hub, 0)
	for _, id := range []string{"body/Mars", "body/Earth"} {
		if err := surface.CreateMarker(display.Marker{ID: id, Kind: display.KindSphere}); err != nil {
			t.Fatalf("CreateMarker: %v", err)
		}
	}
	if err := surface.CreateMarker(display.Marker{ID: "body/Earth"}); !errors.Is(err, display.ErrDuplicateMarker) {
		t.Fatalf("duplicate create err = %v", err)
	}

	ctx, conn := dialFeed(t, hub)
	readMessage(t, ctx, conn)
	var ids []string
	for i := 0; i < 2; i++ {
		msg := readMessage(t, ctx, conn)
		var m display.Marker
		if err := json.Unmarshal(msg.Payload, &m); err != nil {
			t.Fatalf("Unmarshal marker: %v", err)
		}
		ids = append(ids, m.ID)
	}
	if ids[0] != "body/Earth" || ids[1] != "body/Mars" {
		t.Fatalf("greeting ids = %v", ids)
	}
}

func TestFrameSkippedWithoutChanges(t *testing.T) {
	hub := NewHub(nil)
	surface := NewSurface(hub, time.Second)
	ctx, conn := dialFeed(t, hub)
	readMessage(t, ctx, conn)
	waitForClients(t, hub, 1)

	if err := surface.CreateMarker(display.Marker{ID: "body/Earth"}); err != nil {
		t.Fatalf("CreateMarker: %v", err)
	}
	readMessage(t, ctx, conn)

	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	_ = surface.UpdateMarker("body/Earth", core.Vec3{X: 1}, 1)
	_ = surface.RenderFrame(base)
	_ = surface.UpdateMarker("body/Earth", core.Vec3{X: 2}, 1)
	_ = surface.RenderFrame(base.Add(100 * time.Millisecond)) // throttled
	_ = surface.RenderFrame(base.Add(2 * time.Second))        // flushes X=2

	first := readMessage(t, ctx, conn)
	second := readMessage(t, ctx, conn)
	var fp FramePayload
	if err := json.Unmarshal(second.Payload, &fp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if first.Type != TypeFrame || second.Type != TypeFrame || fp.Updates[0].Position.X != 2 {
		t.Fatalf("frames = %+v / %+v", first, fp)
	}
}

func TestCloseDisconnectsViewers(t *testing.T) {
	hub := NewHub(nil)
	surface := NewSurface(hub, 0)
	ctx, conn := dialFeed(t, hub)
	readMessage(t, ctx, conn)
	waitForClients(t, hub, 1)

	hub.Close()
	if surface.Ready() {
		t.Fatalf("surface should not be ready after close")
	}
	if err := hub.Publish(Message{Type: "x"}); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("Publish after close err = %v", err)
	}
	_, _, err := conn.Read(ctx)
	if websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Fatalf("close status = %v (%v), want going away", websocket.CloseStatus(err), err)
	}
}
