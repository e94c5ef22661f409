package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/signalsfoundry/chronomesh/internal/config"
	"github.com/signalsfoundry/chronomesh/internal/control"
	"github.com/signalsfoundry/chronomesh/internal/feed"
	"github.com/signalsfoundry/chronomesh/internal/logging"
)

func TestServeEndToEnd(t *testing.T) {
	cfg := config.Default()
	cfg.AutoStart = true
	cfg.Seed = 1
	cfg.FrameInterval = 5 * time.Millisecond
	cfg.SpeedLevel = 5

	a, err := newApp(cfg, logging.Noop(), prometheus.NewRegistry(), time.Now().UTC())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}

	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen grpc: %v", err)
	}
	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen http: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, grpcLis, httpLis) }()
	defer func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("serve did not stop")
		}
	}()

	base := "http://" + httpLis.Addr().String()

	resp, err := http.Get(base + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/healthz status = %d", resp.StatusCode)
	}

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc.NewClient: %v", err)
	}
	defer conn.Close()
	client := control.NewMissionControlClient(conn)

	deadline := time.Now().Add(3 * time.Second)
	for {
		snap, err := client.GetSnapshot(reqCtx, &emptypb.Empty{})
		if err != nil {
			t.Fatalf("GetSnapshot: %v", err)
		}
		if snap.GetFields()["days"].GetNumberValue() > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("mission clock never advanced")
		}
		time.Sleep(20 * time.Millisecond)
	}

	ws, _, err := websocket.Dial(reqCtx, "ws://"+httpLis.Addr().String()+"/feed", nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer ws.CloseNow()
	_, data, err := ws.Read(reqCtx)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	var hello feed.Message
	if err := json.Unmarshal(data, &hello); err != nil || hello.Type != feed.TypeHello {
		t.Fatalf("first feed message = %s (%v)", data, err)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	for _, name := range []string{"chronomesh_mission_year", "chronomesh_tick_duration_seconds", "chronomesh_control_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Fatalf("/metrics missing %s", name)
		}
	}
}

func TestNewAppRejectsUnknownSchedule(t *testing.T) {
	cfg := config.Default()
	cfg.CouncilSchedule = "nowhere"
	if _, err := newApp(cfg, logging.Noop(), prometheus.NewRegistry(), time.Now()); err == nil {
		t.Fatalf("expected error for unknown schedule")
	}
}
