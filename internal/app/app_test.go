package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/large-farva/skywatch/internal/config"
	"github.com/large-farva/skywatch/internal/scheduler"
	"github.com/large-farva/skywatch/internal/transform"
)

const issTLE = "ISS (ZARYA)\n" +
	"1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994\n" +
	"2 25544  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533\n"

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	cfg := config.Default()
	cfg.Tracker.IntervalMS = 100

	a, err := New(Options{
		Logger:   log.New(io.Discard, "", 0),
		Cfg:      cfg,
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go a.wsHub.Run(ctx)
	go a.session.Run(ctx)
	a.transition(StateIdle)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return a, srv
}

func do(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var m map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&m)
	return resp.StatusCode, m
}

func TestHealthz(t *testing.T) {
	_, srv := newTestApp(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(b) != "ok\n" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, b)
	}
}

func TestSubmitErrorsMapToStatusCodes(t *testing.T) {
	_, srv := newTestApp(t)

	mismatched := "1 25544U 98067A   25138.37048074  .00007749  00000+0  14567-3 0  9994\n" +
		"2 25545  51.6369  94.7823 0002558 120.7586  15.7840 15.49587957510533\n"
	hyperbolic := `{"OBJECT_NAME":"X","NORAD_CAT_ID":1,"EPOCH":"2025-05-18T08:53:29","MEAN_MOTION":15.5,` +
		`"ECCENTRICITY":1.2,"INCLINATION":51.6,"RA_OF_ASC_NODE":94.8,"ARG_OF_PERICENTER":120.8,"MEAN_ANOMALY":15.8}`

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantKind string
	}{
		{"garbage", "hello world", http.StatusBadRequest, "UnrecognizedFormat"},
		{"catalog mismatch", mismatched, http.StatusBadRequest, "InvalidTle"},
		{"missing fields", `{"OBJECT_NAME":"X"}`, http.StatusBadRequest, "InvalidOmm"},
		{"hyperbolic", hyperbolic, http.StatusUnprocessableEntity, "PropagationError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, http.MethodPost, srv.URL+"/api/elements", tt.body)
			if code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%v)", code, tt.wantCode, body)
			}
			if body["ok"] != false || body["kind"] != tt.wantKind {
				t.Fatalf("body = %v, want kind %s", body, tt.wantKind)
			}
		})
	}

	_, body := do(t, http.MethodPost, srv.URL+"/api/elements", mismatched)
	if reasons, _ := body["reasons"].([]any); len(reasons) == 0 {
		t.Fatalf("InvalidTle response carries no reasons: %v", body)
	}
}

func TestNothingTracked(t *testing.T) {
	_, srv := newTestApp(t)

	for _, path := range []string{"/api/elements", "/api/position"} {
		if code, _ := do(t, http.MethodGet, srv.URL+path, ""); code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, code)
		}
	}
	if code, _ := do(t, http.MethodGet, srv.URL+"/api/passes", ""); code != http.StatusConflict {
		t.Errorf("GET /api/passes = %d, want 409", code)
	}
	if code, _ := do(t, http.MethodPost, srv.URL+"/api/resume", ""); code != http.StatusConflict {
		t.Errorf("POST /api/resume = %d, want 409", code)
	}
}

func TestFixedTimeFlow(t *testing.T) {
	a, srv := newTestApp(t)

	code, _ := do(t, http.MethodPut, srv.URL+"/api/time", `{"time":"2025-05-18T12:30:00Z"}`)
	if code != http.StatusOK {
		t.Fatalf("PUT /api/time = %d", code)
	}

	code, body := do(t, http.MethodPost, srv.URL+"/api/elements", issTLE)
	if code != http.StatusOK {
		t.Fatalf("POST /api/elements = %d %v", code, body)
	}
	if body["format"] != "TLE" || !strings.HasPrefix(body["line1"].(string), "1 25544U") {
		t.Fatalf("submit response = %v", body)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/api/position", "")
	if code != http.StatusOK {
		t.Fatalf("GET /api/position = %d %v", code, body)
	}
	pos := body["position"].(map[string]any)
	if pos["time"] != "2025-05-18T12:30:00Z" {
		t.Fatalf("position time = %v", pos["time"])
	}

	if got := a.state.Load().(string); got != StateFixedTime {
		t.Fatalf("state = %s, want %s", got, StateFixedTime)
	}
	if code, _ := do(t, http.MethodPost, srv.URL+"/api/resume", ""); code != http.StatusConflict {
		t.Fatalf("resume under fixed time = %d, want 409", code)
	}

	code, body = do(t, http.MethodGet, srv.URL+"/api/position?at=2025-05-18T12:31:00Z", "")
	if code != http.StatusOK || body["position"].(map[string]any)["time"] != "2025-05-18T12:31:00Z" {
		t.Fatalf("one-off position = %d %v", code, body)
	}

	if code, _ := do(t, http.MethodDelete, srv.URL+"/api/time", ""); code != http.StatusOK {
		t.Fatalf("DELETE /api/time = %d", code)
	}
	if got := a.state.Load().(string); got != StateTracking {
		t.Fatalf("state after clearing time = %s, want %s", got, StateTracking)
	}

	if code, _ := do(t, http.MethodPost, srv.URL+"/api/pause", ""); code != http.StatusOK {
		t.Fatalf("pause = %d", code)
	}
	if got := a.state.Load().(string); got != StatePaused {
		t.Fatalf("state after pause = %s, want %s", got, StatePaused)
	}

	_, status := do(t, http.MethodGet, srv.URL+"/api/status", "")
	if sat, _ := status["satellite"].(map[string]any); sat["catalog"] != float64(25544) {
		t.Fatalf("status satellite = %v", status["satellite"])
	}
}

func TestSetTimeRejectsBadBody(t *testing.T) {
	_, srv := newTestApp(t)
	for _, body := range []string{"", `{"time":"yesterday"}`} {
		if code, _ := do(t, http.MethodPut, srv.URL+"/api/time", body); code != http.StatusBadRequest {
			t.Errorf("PUT /api/time %q = %d, want 400", body, code)
		}
	}
}

func TestObserverEndpoints(t *testing.T) {
	a, srv := newTestApp(t)

	if code, _ := do(t, http.MethodPut, srv.URL+"/api/observer", `{"latitude":95,"longitude":0}`); code != http.StatusBadRequest {
		t.Fatalf("invalid observer = %d, want 400", code)
	}

	code, body := do(t, http.MethodPut, srv.URL+"/api/observer", `{"latitude":51.4779,"longitude":-0.0015,"height":0.046}`)
	if code != http.StatusOK || body["name"] != "manual" {
		t.Fatalf("PUT /api/observer = %d %v", code, body)
	}
	if got := a.session.Observer().Latitude; got != 51.4779 {
		t.Fatalf("session latitude = %v", got)
	}

	a.locate = func(context.Context, string, time.Duration) (transform.Observer, error) {
		return transform.Observer{}, errors.New("no fix")
	}
	if code, _ := do(t, http.MethodPost, srv.URL+"/api/observer/gpsd", ""); code != http.StatusBadGateway {
		t.Fatalf("gpsd failure = %d, want 502", code)
	}

	a.locate = func(context.Context, string, time.Duration) (transform.Observer, error) {
		return transform.Observer{Name: "gpsd", Latitude: 10, Longitude: 20, HeightKm: 0.1}, nil
	}
	code, body = do(t, http.MethodPost, srv.URL+"/api/observer/gpsd", "")
	if code != http.StatusOK || body["name"] != "gpsd" {
		t.Fatalf("gpsd success = %d %v", code, body)
	}
	if _, body := do(t, http.MethodGet, srv.URL+"/api/observer", ""); body["latitude"] != float64(10) {
		t.Fatalf("GET /api/observer = %v", body)
	}
}

func TestMetricsAndLogs(t *testing.T) {
	_, srv := newTestApp(t)

	do(t, http.MethodPost, srv.URL+"/api/elements", "hello world")

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	for _, want := range []string{
		`skywatch_element_submissions_total{format="UNRECOGNIZED",outcome="rejected"} 1`,
		`skywatch_http_requests_total{code="400",method="POST",path="POST /api/elements"} 1`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	_, body := do(t, http.MethodGet, srv.URL+"/api/logs?level=warn", "")
	logs, _ := body["logs"].([]any)
	if len(logs) == 0 {
		t.Fatal("no warn log for the rejected submission")
	}
	entry := logs[len(logs)-1].(map[string]any)
	if entry["component"] != "track" || !strings.Contains(entry["message"].(string), "rejected") {
		t.Fatalf("log entry = %v", entry)
	}
}

func TestSplitComponentAndLevel(t *testing.T) {
	tests := []struct {
		line, component, msg, level string
	}{
		{"track: submission rejected: x", "track", "submission rejected: x", "warn"},
		{"scheduler: recompute at T failed: boom", "scheduler", "recompute at T failed: boom", "error"},
		{"listening on http://0.0.0.0:8080", "skywatchd", "listening on http://0.0.0.0:8080", "info"},
		{"track: warning: ECCENTRICITY", "track", "warning: ECCENTRICITY", "warn"},
	}
	for _, tt := range tests {
		c, m := splitComponent(tt.line)
		if c != tt.component || m != tt.msg {
			t.Errorf("splitComponent(%q) = %q, %q", tt.line, c, m)
		}
		if got := levelOf(m); got != tt.level {
			t.Errorf("levelOf(%q) = %s, want %s", m, got, tt.level)
		}
	}
}

func TestStateFor(t *testing.T) {
	if got := stateFor(schedulerStatus(false, false, false)); got != StateIdle {
		t.Errorf("untracked = %s", got)
	}
	if got := stateFor(schedulerStatus(true, true, false)); got != StateTracking {
		t.Errorf("running = %s", got)
	}
	if got := stateFor(schedulerStatus(true, false, true)); got != StateFixedTime {
		t.Errorf("fixed = %s", got)
	}
	if got := stateFor(schedulerStatus(true, false, false)); got != StatePaused {
		t.Errorf("paused = %s", got)
	}
}

func schedulerStatus(tracking, running, fixed bool) scheduler.Status {
	st := scheduler.Status{Tracking: tracking}
	if running {
		st.State = scheduler.Running
	}
	if fixed {
		st.Time = scheduler.FixedAt(time.Now())
	}
	return st
}
