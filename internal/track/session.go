// Package track holds the tracking session: the one satellite being
// followed, the observer it is seen from, and the scheduler that keeps
// its position current.
package track

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/large-farva/skywatch/internal/config"
	"github.com/large-farva/skywatch/internal/elements"
	"github.com/large-farva/skywatch/internal/metrics"
	"github.com/large-farva/skywatch/internal/predict"
	"github.com/large-farva/skywatch/internal/scheduler"
	"github.com/large-farva/skywatch/internal/tracing"
	"github.com/large-farva/skywatch/internal/transform"
)

// Tracked is an accepted element set together with its initialized
// propagator.
type Tracked struct {
	Ingested   elements.Ingested
	Propagator *predict.Propagator
}

// Elements is shorthand for t.Ingested.Elements.
func (t *Tracked) Elements() elements.Elements { return t.Ingested.Elements }

// Hooks let the caller observe the session. Each may be nil. Position,
// Failure, and Changed run on the scheduler goroutine.
type Hooks struct {
	Tracking func(*Tracked)
	Position func(*Tracked, transform.Observer, transform.Position)
	Failure  func(error)
	Changed  func(scheduler.Status)
}

// Options configures a Session.
type Options struct {
	Interval time.Duration
	Observer transform.Observer
	Predict  config.PredictConfig
	Logger   *log.Logger
	Metrics  *metrics.Collector
	Hooks    Hooks
}

// Session is safe for concurrent use. Observer, tracked elements, and the
// latest result are swapped as whole values, so readers never see a
// partially updated record.
type Session struct {
	log       *log.Logger
	metrics   *metrics.Collector
	hooks     Hooks
	sched     *scheduler.Runner
	predictor *predict.Predictor

	observer atomic.Pointer[transform.Observer]
	tracked  atomic.Pointer[Tracked]
	latest   atomic.Pointer[fix]

	// computed is written by a job and read by publish right after it;
	// both run on the scheduler goroutine.
	computed fix
}

// fix is a published position with the element set and observer it was
// computed for.
type fix struct {
	tracked  *Tracked
	observer transform.Observer
	position transform.Position
}

// New creates a session with nothing tracked. Call Run to start the
// scheduler.
func New(opts Options) (*Session, error) {
	if err := opts.Observer.Validate(); err != nil {
		return nil, fmt.Errorf("default observer: %w", err)
	}

	s := &Session{
		log:       opts.Logger,
		metrics:   opts.Metrics,
		hooks:     opts.Hooks,
		predictor: predict.NewPredictor(opts.Predict, opts.Logger),
	}
	obs := opts.Observer
	s.observer.Store(&obs)

	s.sched = scheduler.New(opts.Interval, opts.Logger, scheduler.Hooks{
		Publish: s.publish,
		Failure: opts.Hooks.Failure,
		Changed: opts.Hooks.Changed,
		Observe: func(d time.Duration, err error) {
			s.metrics.ObserveRecompute(d, err == nil, elements.KindOf(err).String())
		},
	})
	return s, nil
}

// Run drives the scheduler until ctx is cancelled.
func (s *Session) Run(ctx context.Context) {
	s.sched.Run(ctx)
}

// Submit runs raw element text through the whole ingest pipeline and, on
// success, makes it the tracked satellite. The previous satellite keeps
// being tracked when Submit fails.
func (s *Session) Submit(ctx context.Context, raw string) (*Tracked, error) {
	ctx, span := tracing.Tracer().Start(ctx, "track.Submit")
	defer span.End()

	in, err := elements.Ingest(raw)
	span.SetAttributes(attribute.String("elements.format", in.Format.String()))
	if err != nil {
		return nil, s.rejected(span, in.Format, err)
	}

	prop, err := predict.NewPropagator(in.Elements)
	if err != nil {
		return nil, s.rejected(span, in.Format, err)
	}

	t := &Tracked{Ingested: in, Propagator: prop}
	span.SetAttributes(
		attribute.Int("satellite.catalog", in.Elements.CatalogNumber),
		attribute.String("satellite.name", in.Elements.DisplayName()),
	)

	prev := s.tracked.Swap(t)
	if s.hooks.Tracking != nil {
		s.hooks.Tracking(t)
	}
	if err := s.sched.Replace(ctx, s.job(t)); err != nil {
		s.tracked.CompareAndSwap(t, prev)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.ObserveSubmission(in.Format.String(), "accepted")
	for _, w := range in.Warnings {
		s.logf("warning: %s", w)
	}
	s.logf("tracking %s (catalog %d, %s, epoch %s)",
		in.Elements.DisplayName(), in.Elements.CatalogNumber, in.Format, in.Elements.Epoch.Format(time.RFC3339))
	return t, nil
}

func (s *Session) rejected(span trace.Span, format elements.Format, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.metrics.ObserveSubmission(format.String(), "rejected")
	s.logf("submission rejected: %v", err)
	return err
}

// job binds a tracked satellite into a scheduler job. The observer is read
// on every tick so a changed observer applies from the next recompute.
func (s *Session) job(t *Tracked) scheduler.Job {
	return func(ctx context.Context, at time.Time) (transform.Position, error) {
		_, span := tracing.Tracer().Start(ctx, "track.Recompute")
		defer span.End()
		span.SetAttributes(attribute.String("recompute.time", at.Format(time.RFC3339)))

		obs := *s.observer.Load()
		pos, err := Compute(t.Propagator, obs, at)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return pos, err
		}
		s.computed = fix{tracked: t, observer: obs}
		return pos, nil
	}
}

// Compute propagates prop to at and projects the result for obs.
func Compute(prop *predict.Propagator, obs transform.Observer, at time.Time) (transform.Position, error) {
	eci, err := prop.Propagate(at)
	if err != nil {
		return transform.Position{}, err
	}
	return transform.Observe(eci, at, obs)
}

// publish stores a result under the element set that produced it, which
// may already have been replaced by a newer submission.
func (s *Session) publish(pos transform.Position) {
	f := s.computed
	f.position = pos
	s.latest.Store(&f)
	if s.hooks.Position != nil && f.tracked != nil {
		s.hooks.Position(f.tracked, f.observer, pos)
	}
}

// Tracked returns the tracked satellite, or nil.
func (s *Session) Tracked() *Tracked {
	return s.tracked.Load()
}

// Latest returns the last position published for the tracked satellite.
// A result computed for an earlier submission is never returned.
func (s *Session) Latest() (transform.Position, bool) {
	_, pos, ok := s.Current()
	return pos, ok
}

// Current returns the tracked satellite and its latest position as one
// consistent pair. ok is false when nothing has been published for t yet.
func (s *Session) Current() (t *Tracked, pos transform.Position, ok bool) {
	t = s.tracked.Load()
	f := s.latest.Load()
	if t == nil || f == nil || f.tracked != t {
		return t, transform.Position{}, false
	}
	return t, f.position, true
}

// Observer returns the current observer.
func (s *Session) Observer() transform.Observer {
	return *s.observer.Load()
}

// SetObserver replaces the observer and, when a satellite is tracked,
// recomputes once so the change is visible immediately.
func (s *Session) SetObserver(ctx context.Context, obs transform.Observer) error {
	if err := obs.Validate(); err != nil {
		return err
	}
	s.observer.Store(&obs)
	s.logf("observer set to %s (%.4f, %.4f, %.3f km)", obs.Name, obs.Latitude, obs.Longitude, obs.HeightKm)

	if err := s.sched.Recompute(ctx); err != nil && !errors.Is(err, scheduler.ErrNoJob) {
		return err
	}
	return nil
}

// SetTime pins recomputation to t and pauses live updates.
func (s *Session) SetTime(ctx context.Context, t time.Time) error {
	return s.sched.SetFixed(ctx, t)
}

// ClearTime returns to wall-clock time and resumes live updates when a
// satellite is tracked.
func (s *Session) ClearTime(ctx context.Context) error {
	if err := s.sched.SetLive(ctx); err != nil {
		return err
	}
	if err := s.sched.Start(ctx); err != nil && !errors.Is(err, scheduler.ErrNoJob) {
		return err
	}
	return nil
}

// Pause stops live updates.
func (s *Session) Pause(ctx context.Context) error {
	return s.sched.Pause(ctx)
}

// Resume restarts live updates.
func (s *Session) Resume(ctx context.Context) error {
	return s.sched.Start(ctx)
}

// Status returns the scheduler snapshot.
func (s *Session) Status() scheduler.Status {
	return s.sched.Status()
}

// Passes predicts upcoming passes of the tracked satellite over the
// current observer.
func (s *Session) Passes(from time.Time) ([]predict.Pass, error) {
	t := s.tracked.Load()
	if t == nil {
		return nil, scheduler.ErrNoJob
	}
	return s.predictor.Passes(t.Propagator, s.Observer(), from)
}

func (s *Session) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf("track: "+format, args...)
	}
}
