// Package scheduler drives live recomputation of the tracked satellite's
// position. A single goroutine owns the timer and every state change, so
// ticks never overlap and a slow tick never queues a backlog.
//
// The runner has two states, Running and Paused, and an orthogonal time
// selector. Selecting a fixed time forces Paused and refuses Start until
// the selector returns to live.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/large-farva/skywatch/internal/transform"
)

// State is the run state of the live loop.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "PAUSED"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// TimeSelector picks the instant each recompute uses: wall-clock time when
// live, or a pinned timestamp.
type TimeSelector struct {
	Fixed bool      `json:"fixed"`
	At    time.Time `json:"at,omitempty"`
}

// Live selects wall-clock time.
func Live() TimeSelector { return TimeSelector{} }

// FixedAt pins recomputation to t.
func FixedAt(t time.Time) TimeSelector { return TimeSelector{Fixed: true, At: t.UTC()} }

// Resolve returns the instant a recompute started now should use.
func (s TimeSelector) Resolve(now time.Time) time.Time {
	if s.Fixed {
		return s.At
	}
	return now.UTC()
}

func (s TimeSelector) String() string {
	if s.Fixed {
		return "fixed " + s.At.Format(time.RFC3339)
	}
	return "live"
}

// Job propagates and transforms the tracked satellite at one instant.
type Job func(ctx context.Context, at time.Time) (transform.Position, error)

var (
	ErrFixedTime = errors.New("live updates are disabled while a fixed time is selected")
	ErrNoJob     = errors.New("no satellite is being tracked")
	ErrStopped   = errors.New("scheduler is not running")
)

// Status is a snapshot of the runner.
type Status struct {
	State     State        `json:"state"`
	Time      TimeSelector `json:"time"`
	Tracking  bool         `json:"tracking"`
	Interval  string       `json:"interval"`
	Ticks     uint64       `json:"ticks"`
	Failures  uint64       `json:"failures"`
	LastTick  time.Time    `json:"last_tick,omitempty"`
	LastError string       `json:"last_error,omitempty"`
}

// Hooks are called from the runner goroutine. Any of them may be nil.
type Hooks struct {
	// Publish receives every successful result.
	Publish func(transform.Position)
	// Failure receives every failed recompute; the loop keeps going.
	Failure func(error)
	// Changed receives the status after a state, selector, or tracking
	// change.
	Changed func(Status)
	// Observe receives the duration and outcome of each recompute.
	Observe func(d time.Duration, err error)
}

// Command types accepted on the Commands channel.
const (
	CmdStart     = "start"
	CmdPause     = "pause"
	CmdFixed     = "fixed"
	CmdLive      = "live"
	CmdReplace   = "replace"
	CmdRecompute = "recompute"
)

// Command is an external request handled by the runner goroutine. Reply
// receives exactly one result.
type Command struct {
	Type  string
	Job   Job
	At    time.Time
	Reply chan<- CommandResult
}

// CommandResult is the response sent back through a Command's Reply
// channel.
type CommandResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`
}

// Runner owns the live recompute loop.
type Runner struct {
	Interval time.Duration
	Log      *log.Logger

	// Commands receives requests from the HTTP layer.
	Commands chan Command

	hooks Hooks
	done  chan struct{}

	// Owned by the Run goroutine.
	job   Job
	timer *time.Timer
	tick  <-chan time.Time

	mu     sync.Mutex
	status Status
}

// New creates a paused, live-selected runner. Call Run in a goroutine.
func New(interval time.Duration, logger *log.Logger, hooks Hooks) *Runner {
	return &Runner{
		Interval: interval,
		Log:      logger,
		Commands: make(chan Command, 4),
		hooks:    hooks,
		done:     make(chan struct{}),
		status:   Status{State: Paused, Interval: interval.String()},
	}
}

// Status returns a snapshot of the runner.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Run is the runner loop. It returns when ctx is cancelled; commands sent
// afterwards fail with ErrStopped.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)
	defer r.disarm()

	r.logf("scheduler started (interval %s)", r.Interval)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-r.Commands:
			cmd.Reply <- r.handleCommand(ctx, cmd)
		case <-r.tick:
			r.recompute(ctx)
			r.arm()
		}
	}
}

func (r *Runner) handleCommand(ctx context.Context, cmd Command) CommandResult {
	st := r.Status()

	switch cmd.Type {
	case CmdStart:
		if st.Time.Fixed {
			return fail(ErrFixedTime)
		}
		if r.job == nil {
			return fail(ErrNoJob)
		}
		if st.State == Running {
			return CommandResult{OK: true, Message: "already running"}
		}
		r.setState(Running, st.Time)
		r.recompute(ctx)
		r.arm()
		return CommandResult{OK: true, Message: "live updates started"}

	case CmdPause:
		r.disarm()
		if st.State == Paused {
			return CommandResult{OK: true, Message: "already paused"}
		}
		r.setState(Paused, st.Time)
		return CommandResult{OK: true, Message: "live updates paused"}

	case CmdFixed:
		r.disarm()
		r.setState(Paused, FixedAt(cmd.At))
		if r.job != nil {
			r.recompute(ctx)
		}
		return CommandResult{OK: true, Message: "time fixed at " + cmd.At.UTC().Format(time.RFC3339)}

	case CmdLive:
		r.setState(st.State, Live())
		return CommandResult{OK: true, Message: "live time selected"}

	case CmdReplace:
		r.disarm()
		r.job = cmd.Job
		r.setTracking(cmd.Job != nil)
		if r.job == nil {
			r.setState(Paused, st.Time)
			return CommandResult{OK: true, Message: "tracking cleared"}
		}
		if st.Time.Fixed {
			r.setState(Paused, st.Time)
			r.recompute(ctx)
			return CommandResult{OK: true, Message: "satellite replaced at fixed time"}
		}
		r.setState(Running, st.Time)
		r.recompute(ctx)
		r.arm()
		return CommandResult{OK: true, Message: "satellite replaced, live updates running"}

	case CmdRecompute:
		if r.job == nil {
			return fail(ErrNoJob)
		}
		r.recompute(ctx)
		return CommandResult{OK: true, Message: "recomputed"}

	default:
		return fail(fmt.Errorf("unknown command: %s", cmd.Type))
	}
}

// recompute runs the job once at the selected time.
func (r *Runner) recompute(ctx context.Context) {
	if r.job == nil {
		return
	}
	at := r.Status().Time.Resolve(time.Now())

	start := time.Now()
	pos, err := r.job(ctx, at)
	elapsed := time.Since(start)

	r.mu.Lock()
	r.status.Ticks++
	r.status.LastTick = at
	if err != nil {
		r.status.Failures++
		r.status.LastError = err.Error()
	} else {
		r.status.LastError = ""
	}
	r.mu.Unlock()

	if r.hooks.Observe != nil {
		r.hooks.Observe(elapsed, err)
	}

	if err != nil {
		r.logf("recompute at %s failed: %v", at.Format(time.RFC3339), err)
		if r.hooks.Failure != nil {
			r.hooks.Failure(err)
		}
		return
	}
	if r.hooks.Publish != nil {
		r.hooks.Publish(pos)
	}
}

func (r *Runner) arm() {
	r.disarm()
	r.timer = time.NewTimer(r.Interval)
	r.tick = r.timer.C
}

func (r *Runner) disarm() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.tick = nil
}

func (r *Runner) setState(s State, sel TimeSelector) {
	r.mu.Lock()
	changed := r.status.State != s || r.status.Time != sel
	r.status.State = s
	r.status.Time = sel
	snap := r.status
	r.mu.Unlock()

	if changed {
		r.logf("state %s, time %s", s, sel)
		if r.hooks.Changed != nil {
			r.hooks.Changed(snap)
		}
	}
}

func (r *Runner) setTracking(on bool) {
	r.mu.Lock()
	changed := r.status.Tracking != on
	r.status.Tracking = on
	snap := r.status
	r.mu.Unlock()

	if changed && r.hooks.Changed != nil {
		r.hooks.Changed(snap)
	}
}

func (r *Runner) logf(format string, args ...any) {
	if r.Log != nil {
		r.Log.Printf("scheduler: "+format, args...)
	}
}

func fail(err error) CommandResult {
	return CommandResult{OK: false, Message: err.Error(), Err: err}
}

// send delivers a command to the runner goroutine and waits for its reply.
func (r *Runner) send(ctx context.Context, cmd Command) error {
	reply := make(chan CommandResult, 1)
	cmd.Reply = reply

	select {
	case r.Commands <- cmd:
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case res := <-reply:
		return res.Err
	case <-r.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start moves Paused to Running and recomputes immediately. It fails with
// ErrFixedTime while a fixed time is selected and ErrNoJob when nothing is
// tracked.
func (r *Runner) Start(ctx context.Context) error {
	return r.send(ctx, Command{Type: CmdStart})
}

// Pause stops the timer. No tick runs after Pause returns.
func (r *Runner) Pause(ctx context.Context) error {
	return r.send(ctx, Command{Type: CmdPause})
}

// SetFixed pauses live updates and recomputes once at t.
func (r *Runner) SetFixed(ctx context.Context, t time.Time) error {
	return r.send(ctx, Command{Type: CmdFixed, At: t})
}

// SetLive returns the selector to wall-clock time. The runner stays
// Paused until Start.
func (r *Runner) SetLive(ctx context.Context) error {
	return r.send(ctx, Command{Type: CmdLive})
}

// Replace swaps the tracked job. The old timer is cancelled before the new
// one is armed. A nil job stops tracking.
func (r *Runner) Replace(ctx context.Context, job Job) error {
	return r.send(ctx, Command{Type: CmdReplace, Job: job})
}

// Recompute runs the job once at the selected time without touching the
// timer.
func (r *Runner) Recompute(ctx context.Context) error {
	return r.send(ctx, Command{Type: CmdRecompute})
}
