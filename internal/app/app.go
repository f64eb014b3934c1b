// Package app wires together the HTTP server, WebSocket hub, tracking
// session, and optional demo seeding. It owns the daemon's lifecycle and is
// the single source of truth for the current operating state.
package app

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/large-farva/skywatch/internal/config"
	"github.com/large-farva/skywatch/internal/demo"
	"github.com/large-farva/skywatch/internal/metrics"
	"github.com/large-farva/skywatch/internal/predict"
	"github.com/large-farva/skywatch/internal/scheduler"
	"github.com/large-farva/skywatch/internal/telemetry"
	"github.com/large-farva/skywatch/internal/tracing"
	"github.com/large-farva/skywatch/internal/track"
	"github.com/large-farva/skywatch/internal/transform"
	"github.com/large-farva/skywatch/internal/ws"
)

// Operating states reported on /api/status and in state events.
const (
	StateBooting   = "BOOTING"
	StateIdle      = "IDLE"
	StateTracking  = "TRACKING"
	StatePaused    = "PAUSED"
	StateFixedTime = "FIXED_TIME"
)

// Options holds everything the App needs from the caller.
type Options struct {
	Logger *log.Logger
	Cfg    config.Config
	Bind   string

	// Registry receives the Prometheus collectors. Nil means the global
	// default registry.
	Registry prometheus.Registerer
}

// App is the top-level daemon process.
type App struct {
	log    *log.Logger
	logs   *logMirror
	cfg    config.Config
	bind   string
	server *http.Server

	startedAt time.Time
	state     atomic.Value // current state string (BOOTING, IDLE, etc.)

	wsHub   *ws.Hub
	metrics *metrics.Collector
	session *track.Session

	// locate resolves the observer from gpsd; replaced in tests.
	locate func(ctx context.Context, addr string, timeout time.Duration) (transform.Observer, error)
}

// New creates an App in the BOOTING state. Call Run to start serving.
func New(opts Options) (*App, error) {
	a := &App{
		cfg:       opts.Cfg,
		bind:      opts.Bind,
		startedAt: time.Now(),
		wsHub:     ws.NewHub(),
		locate:    predict.LocationFromGPSD,
	}
	a.state.Store(StateBooting)

	base := opts.Logger
	if base == nil {
		base = log.Default()
	}
	a.logs = newLogMirror(base, opts.Cfg.Logging.Level, a.wsHub.BroadcastJSON)
	a.log = log.New(a.logs, "", 0)

	if opts.Cfg.Metrics.Enabled {
		m, err := metrics.New(opts.Registry)
		if err != nil {
			return nil, err
		}
		a.metrics = m
	}

	st := opts.Cfg.Station
	sess, err := track.New(track.Options{
		Interval: opts.Cfg.Tracker.Interval(),
		Observer: transform.Observer{Name: st.Name, Latitude: st.Latitude, Longitude: st.Longitude, HeightKm: st.HeightKm},
		Predict:  opts.Cfg.Predict,
		Logger:   a.log,
		Metrics:  a.metrics,
		Hooks: track.Hooks{
			Tracking: a.onTracking,
			Position: a.onPosition,
			Changed:  a.onChanged,
		},
	})
	if err != nil {
		return nil, err
	}
	a.session = sess

	a.wsHub.Snapshot = a.snapshot
	a.wsHub.ClientsChanged = a.metrics.SetClients
	return a, nil
}

// Run starts the HTTP server, WebSocket hub, heartbeat ticker, tracking
// session, and the optional demo and gpsd seeding. It blocks until the
// context is cancelled or the server returns an error.
func (a *App) Run(ctx context.Context) error {
	bind := a.bind
	if bind == "" && a.cfg.Server.Bind != "" {
		bind = a.cfg.Server.Bind
	}
	if bind == "" {
		bind = "0.0.0.0:8080"
	}

	shutdownTracing, err := tracing.Init(ctx, a.cfg.Tracing, a.log)
	if err != nil {
		return err
	}
	defer tracing.ShutdownWithTimeout(context.Background(), shutdownTracing, a.log)

	a.server = &http.Server{
		Addr:              bind,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", bind)
	if err != nil {
		return err
	}

	a.log.Printf("listening on http://%s", bind)

	go a.wsHub.Run(ctx)
	go a.session.Run(ctx)
	a.transition(StateIdle)
	go a.heartbeatLoop(ctx)

	if a.cfg.Station.UseGPSD {
		go a.locateFromGPSD(ctx)
	}
	if a.cfg.Demo.Enabled {
		go demo.Run(ctx, a.submitText, a.log)
	}

	go func() {
		<-ctx.Done()
		a.log.Printf("shutdown requested")
		_ = a.server.Shutdown(context.Background())
	}()

	return a.server.Serve(ln)
}

// Handler builds the HTTP routes. Run serves it; tests call it directly.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	a.route(mux, "GET /healthz", a.handleHealthz)
	a.route(mux, "GET /api/status", a.handleStatus)
	a.route(mux, "GET /api/version", a.handleVersion)
	a.route(mux, "GET /api/logs", a.handleLogs)

	a.route(mux, "POST /api/elements", a.handleSubmit)
	a.route(mux, "GET /api/elements", a.handleElements)
	a.route(mux, "GET /api/position", a.handlePosition)
	a.route(mux, "GET /api/passes", a.handlePasses)

	a.route(mux, "POST /api/pause", a.handlePause)
	a.route(mux, "POST /api/resume", a.handleResume)
	a.route(mux, "PUT /api/time", a.handleSetTime)
	a.route(mux, "DELETE /api/time", a.handleClearTime)

	a.route(mux, "GET /api/observer", a.handleObserver)
	a.route(mux, "PUT /api/observer", a.handleSetObserver)
	a.route(mux, "POST /api/observer/gpsd", a.handleObserverGPSD)

	if a.metrics != nil {
		mux.Handle("GET "+a.cfg.Metrics.Path, a.metrics.Handler())
	}
	// Not wrapped by the metrics middleware: the upgrade needs the raw
	// ResponseWriter.
	mux.Handle("GET /ws", a.wsHub.Handler())

	return mux
}

func (a *App) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, a.metrics.Middleware(pattern, h))
}

// transition atomically updates the daemon state and broadcasts the change
// to all connected WebSocket clients.
func (a *App) transition(newState string) {
	old := a.state.Swap(newState).(string)
	if old == newState {
		return
	}
	a.wsHub.BroadcastJSON(telemetry.NewStateTransition(old, newState, a.session.Status().Time.String()))
}

// stateFor maps a scheduler snapshot to an operating state.
func stateFor(st scheduler.Status) string {
	switch {
	case !st.Tracking:
		return StateIdle
	case st.Time.Fixed:
		return StateFixedTime
	case st.State == scheduler.Running:
		return StateTracking
	default:
		return StatePaused
	}
}

func (a *App) onChanged(st scheduler.Status) {
	a.transition(stateFor(st))
}

func (a *App) onTracking(t *track.Tracked) {
	l1, l2 := t.Propagator.Lines()
	a.wsHub.BroadcastJSON(telemetry.NewElementsLoaded(t.Ingested, l1, l2))
}

func (a *App) onPosition(t *track.Tracked, obs transform.Observer, pos transform.Position) {
	a.wsHub.BroadcastJSON(telemetry.NewPositionUpdate(t.Elements(), obs, pos))
}

// snapshot is what a newly connected WebSocket client receives first.
func (a *App) snapshot() []any {
	state := a.state.Load().(string)
	events := []any{telemetry.NewStateTransition(state, state, a.session.Status().Time.String())}

	t, pos, ok := a.session.Current()
	if t == nil {
		return events
	}
	l1, l2 := t.Propagator.Lines()
	events = append(events, telemetry.NewElementsLoaded(t.Ingested, l1, l2))
	if ok {
		events = append(events, telemetry.NewPositionUpdate(t.Elements(), a.session.Observer(), pos))
	}
	return events
}

// heartbeatLoop sends a periodic heartbeat event so clients can detect
// connectivity and track uptime without polling.
func (a *App) heartbeatLoop(ctx context.Context) {
	t := time.NewTicker(10 * time.Second)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			a.wsHub.BroadcastJSON(telemetry.NewHeartbeat(a.state.Load().(string), time.Since(a.startedAt)))
		}
	}
}

func (a *App) submitText(ctx context.Context, raw string) error {
	_, err := a.session.Submit(ctx, raw)
	return err
}

func (a *App) locateFromGPSD(ctx context.Context) (transform.Observer, error) {
	timeout := time.Duration(a.cfg.Station.GPSDTimeoutSeconds) * time.Second
	obs, err := a.locate(ctx, a.cfg.Station.GPSDHost, timeout)
	if err != nil {
		a.log.Printf("gpsd: location lookup failed: %v", err)
		return transform.Observer{}, err
	}
	if err := a.session.SetObserver(ctx, obs); err != nil {
		a.log.Printf("gpsd: observer update failed: %v", err)
		return transform.Observer{}, err
	}
	return obs, nil
}
