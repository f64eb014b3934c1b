package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/large-farva/skywatch/internal/elements"
	"github.com/large-farva/skywatch/internal/predict"
	"github.com/large-farva/skywatch/internal/scheduler"
	"github.com/large-farva/skywatch/internal/track"
	"github.com/large-farva/skywatch/internal/transform"
)

// maxElementBytes caps a submitted element document. Real TLEs and OMMs
// are well under a kilobyte.
const maxElementBytes = 64 << 10

// ---------------------------------------------------------------------------
// Core handlers
// ---------------------------------------------------------------------------

func (a *App) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (a *App) handleStatus(w http.ResponseWriter, _ *http.Request) {
	st := a.session.Status()

	resp := map[string]any{
		"name":           "skywatch",
		"state":          a.state.Load().(string),
		"uptime_seconds": int64(time.Since(a.startedAt).Seconds()),
		"scheduler":      st,
		"observer":       a.session.Observer(),
		"demo_enabled":   a.cfg.Demo.Enabled,
	}
	t, pos, ok := a.session.Current()
	if t != nil {
		el := t.Elements()
		resp["satellite"] = map[string]any{
			"name":    el.DisplayName(),
			"catalog": el.CatalogNumber,
			"format":  t.Ingested.Format,
			"epoch":   el.Epoch,
		}
	}
	if ok {
		resp["position"] = pos
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    Version,
		"go_version": GoVersion,
		"built_at":   BuiltAt,
	})
}

func (a *App) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			jsonError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries := a.logs.entries(r.URL.Query().Get("level"), limit)
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// ---------------------------------------------------------------------------
// Elements and results
// ---------------------------------------------------------------------------

func (a *App) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxElementBytes))
	if err != nil {
		jsonError(w, "read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	t, err := a.session.Submit(r.Context(), string(body))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elementsResponse(t))
}

func (a *App) handleElements(w http.ResponseWriter, _ *http.Request) {
	t := a.session.Tracked()
	if t == nil {
		jsonError(w, scheduler.ErrNoJob.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, elementsResponse(t))
}

func elementsResponse(t *track.Tracked) map[string]any {
	l1, l2 := t.Propagator.Lines()
	return map[string]any{
		"ok":       true,
		"format":   t.Ingested.Format,
		"elements": t.Ingested.Elements,
		"warnings": t.Ingested.Warnings,
		"line1":    l1,
		"line2":    l2,
	}
}

// handlePosition returns the last published result, or with ?at= a
// one-off computation that leaves the scheduler alone.
func (a *App) handlePosition(w http.ResponseWriter, r *http.Request) {
	t, pos, ok := a.session.Current()
	if t == nil {
		jsonError(w, scheduler.ErrNoJob.Error(), http.StatusNotFound)
		return
	}
	obs := a.session.Observer()

	if s := r.URL.Query().Get("at"); s != "" {
		at, err := time.Parse(time.RFC3339, s)
		if err != nil {
			jsonError(w, "at must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		p, err := track.Compute(t.Propagator, obs, at)
		if err != nil {
			writeError(w, err)
			return
		}
		pos, ok = p, true
	}
	if !ok {
		jsonError(w, "no position has been computed yet", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"satellite": t.Elements().DisplayName(),
		"catalog":   t.Elements().CatalogNumber,
		"observer":  obs,
		"position":  pos,
	})
}

func (a *App) handlePasses(w http.ResponseWriter, r *http.Request) {
	from := time.Now().UTC()
	if s := r.URL.Query().Get("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			jsonError(w, "from must be an RFC 3339 timestamp", http.StatusBadRequest)
			return
		}
		from = t
	}

	t := a.session.Tracked()
	if t == nil {
		writeError(w, scheduler.ErrNoJob)
		return
	}
	passes, err := a.session.Passes(from)
	if err != nil {
		writeError(w, err)
		return
	}
	if passes == nil {
		passes = []predict.Pass{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"satellite": t.Elements().DisplayName(),
		"observer":  a.session.Observer(),
		"from":      from,
		"hours":     a.cfg.Predict.LookaheadHours,
		"passes":    passes,
	})
}

// ---------------------------------------------------------------------------
// Scheduler controls
// ---------------------------------------------------------------------------

func (a *App) handlePause(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, "live updates paused", func(ctx context.Context) error {
		return a.session.Pause(ctx)
	})
}

func (a *App) handleResume(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, "live updates resumed", func(ctx context.Context) error {
		return a.session.Resume(ctx)
	})
}

func (a *App) handleSetTime(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "body must be {\"time\": \"<RFC 3339>\"}", http.StatusBadRequest)
		return
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(body.Time))
	if err != nil {
		jsonError(w, "time must be an RFC 3339 timestamp", http.StatusBadRequest)
		return
	}

	a.command(w, r, "time fixed at "+at.UTC().Format(time.RFC3339), func(ctx context.Context) error {
		return a.session.SetTime(ctx, at)
	})
}

func (a *App) handleClearTime(w http.ResponseWriter, r *http.Request) {
	a.command(w, r, "live time restored", func(ctx context.Context) error {
		return a.session.ClearTime(ctx)
	})
}

func (a *App) command(w http.ResponseWriter, r *http.Request, msg string, fn func(context.Context) error) {
	if err := fn(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduler.CommandResult{OK: true, Message: msg})
}

// ---------------------------------------------------------------------------
// Observer
// ---------------------------------------------------------------------------

func (a *App) handleObserver(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.session.Observer())
}

func (a *App) handleSetObserver(w http.ResponseWriter, r *http.Request) {
	var obs transform.Observer
	if err := json.NewDecoder(r.Body).Decode(&obs); err != nil {
		jsonError(w, "malformed observer: "+err.Error(), http.StatusBadRequest)
		return
	}
	if obs.Name == "" {
		obs.Name = "manual"
	}
	if err := obs.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.session.SetObserver(r.Context(), obs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func (a *App) handleObserverGPSD(w http.ResponseWriter, r *http.Request) {
	obs, err := a.locateFromGPSD(r.Context())
	if err != nil {
		jsonError(w, fmt.Sprintf("gpsd at %s: %v", a.cfg.Station.GPSDHost, err), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{
		"ok":    false,
		"error": msg,
	})
}

// writeError maps pipeline and scheduler errors to status codes. Input
// problems are 400, elements that cannot be propagated or projected are
// 422, and scheduler refusals are 409.
func writeError(w http.ResponseWriter, err error) {
	var pe *elements.Error
	if errors.As(err, &pe) {
		code := http.StatusBadRequest
		if pe.Kind == elements.KindPropagation || pe.Kind == elements.KindTransform {
			code = http.StatusUnprocessableEntity
		}
		body := map[string]any{
			"ok":    false,
			"error": err.Error(),
			"kind":  pe.Kind.String(),
		}
		if len(pe.Reasons) > 0 {
			body["reasons"] = pe.Reasons
		}
		if pe.Kind == elements.KindPropagation {
			body["code"] = pe.Code
		}
		writeJSON(w, code, body)
		return
	}

	switch {
	case errors.Is(err, scheduler.ErrFixedTime), errors.Is(err, scheduler.ErrNoJob):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, scheduler.ErrStopped), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}
