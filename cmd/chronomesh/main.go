package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/signalsfoundry/chronomesh/internal/config"
	"github.com/signalsfoundry/chronomesh/internal/control"
	"github.com/signalsfoundry/chronomesh/internal/display"
	"github.com/signalsfoundry/chronomesh/internal/feed"
	"github.com/signalsfoundry/chronomesh/internal/logging"
	"github.com/signalsfoundry/chronomesh/internal/observability"
	sim "github.com/signalsfoundry/chronomesh/internal/sim/state"
	"github.com/signalsfoundry/chronomesh/timectrl"
)

func main() {
	log := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Warn(ctx, "ignoring malformed environment settings", logging.Err(err))
	}
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()
	cfg = cfg.ApplyDefaults()

	log = log.With(logging.String("council_schedule", cfg.CouncilSchedule))

	shutdownTracing, err := observability.InitTracing(ctx, cfg.TracingConfig(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	a, err := newApp(cfg, log, prometheus.NewRegistry(), time.Now().UTC())
	if err != nil {
		log.Error(ctx, "failed to build mission", logging.Err(err))
		os.Exit(1)
	}

	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for gRPC", logging.String("addr", cfg.GRPCAddr), logging.Err(err))
		os.Exit(1)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		log.Error(ctx, "failed to listen for HTTP", logging.String("addr", cfg.HTTPAddr), logging.Err(err))
		os.Exit(1)
	}

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.serve(stopCtx, grpcLis, httpLis); err != nil {
		log.Error(ctx, "chronomesh exited with error", logging.Err(err))
		os.Exit(1)
	}
	log.Info(ctx, "chronomesh stopped")
}

type app struct {
	cfg     config.Config
	log     logging.Logger
	state   *sim.MissionState
	clock   *timectrl.TimeController
	hub     *feed.Hub
	metrics *observability.MissionCollector
	control *observability.ControlCollector
	grpc    *grpc.Server
	http    *http.Server
}

func newApp(cfg config.Config, log logging.Logger, reg *prometheus.Registry, start time.Time) (*app, error) {
	ctx := context.Background()

	missionCfg, err := cfg.ToMissionConfig()
	if err != nil {
		return nil, err
	}
	missionMetrics, err := observability.NewMissionCollector(reg)
	if err != nil {
		return nil, err
	}
	controlMetrics, err := observability.NewControlCollector(reg)
	if err != nil {
		return nil, err
	}

	hub := feed.NewHub(log.With(logging.String("component", "feed")))
	recorder := display.NewRecorder()
	surface := display.NewTee(recorder, feed.NewSurface(hub, 50*time.Millisecond))

	state := sim.NewMissionState(missionCfg, start,
		sim.WithLogger(log.With(logging.String("component", "mission"))),
		sim.WithMetricsRecorder(missionMetrics),
		sim.WithSurface(surface),
		sim.WithRand(cfg.Rand(start)),
		sim.WithSubsystem("markers", func(time.Time, float64) error {
			missionMetrics.SetLiveMarkers(recorder.Live())
			return nil
		}),
	)
	state.Subscribe(hub.PublishEvent)

	if _, err := state.SetSpeed(ctx, cfg.SpeedLevel); err != nil {
		return nil, err
	}
	if cfg.AutoStart {
		state.Start(ctx)
	}

	clock := timectrl.NewTimeController(start, cfg.FrameInterval, timectrl.RealTime)
	clock.AddListener(state.Tick)

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			control.RequestIDUnaryServerInterceptor(log),
			control.TracingUnaryServerInterceptor(),
			controlMetrics.UnaryServerInterceptor(),
		),
	)
	control.RegisterMissionControlServer(server, control.NewServer(state, log.With(logging.String("component", "control"))))

	mux := http.NewServeMux()
	mux.Handle("/metrics", missionMetrics.Handler())
	mux.Handle("/feed", hub)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	return &app{
		cfg:     cfg,
		log:     log,
		state:   state,
		clock:   clock,
		hub:     hub,
		metrics: missionMetrics,
		control: controlMetrics,
		grpc:    server,
		http:    &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}, nil
}

// serve runs the frame loop and both servers until ctx is done.
func (a *app) serve(ctx context.Context, grpcLis, httpLis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info(ctx, "starting control gRPC server", logging.String("addr", grpcLis.Addr().String()))
		return a.grpc.Serve(grpcLis)
	})
	g.Go(func() error {
		a.log.Info(ctx, "serving metrics and feed", logging.String("addr", httpLis.Addr().String()))
		if err := a.http.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.log.Info(ctx, "frame loop running", logging.Duration("frame_interval", a.cfg.FrameInterval))
		<-a.clock.Start(ctx, 0)
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.log.Info(context.Background(), "shutting down chronomesh")
		a.hub.Close()
		a.grpc.GracefulStop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.http.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
