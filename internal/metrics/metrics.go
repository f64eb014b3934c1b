// Package metrics holds the Prometheus collectors exported by skywatchd.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles every skywatchd metric. A nil *Collector is valid and
// records nothing, so callers never need to check whether metrics are on.
type Collector struct {
	gatherer prometheus.Gatherer

	Ticks        prometheus.Counter
	TickFailures *prometheus.CounterVec
	TickDuration prometheus.Histogram
	Submissions  *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	WSClients prometheus.Gauge
}

// New registers the collectors against reg, defaulting to the global
// registry when reg is nil.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Ticks, err = registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skywatch_recompute_total",
		Help: "Total number of position recomputes, successful or not.",
	}), "skywatch_recompute_total"); err != nil {
		return nil, err
	}

	if c.TickFailures, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skywatch_recompute_failures_total",
		Help: "Failed recomputes, labeled by error kind.",
	}, []string{"kind"}), "skywatch_recompute_failures_total"); err != nil {
		return nil, err
	}

	if c.TickDuration, err = registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skywatch_recompute_duration_seconds",
		Help:    "Time spent propagating and transforming one position.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}), "skywatch_recompute_duration_seconds"); err != nil {
		return nil, err
	}

	if c.Submissions, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skywatch_element_submissions_total",
		Help: "Element set submissions, labeled by detected format and outcome.",
	}, []string{"format", "outcome"}), "skywatch_element_submissions_total"); err != nil {
		return nil, err
	}

	if c.HTTPRequests, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skywatch_http_requests_total",
		Help: "Total HTTP requests by path, method, and status code.",
	}, []string{"path", "method", "code"}), "skywatch_http_requests_total"); err != nil {
		return nil, err
	}

	if c.HTTPDuration, err = registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skywatch_http_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"}), "skywatch_http_duration_seconds"); err != nil {
		return nil, err
	}

	if c.WSClients, err = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skywatch_ws_clients",
		Help: "Connected WebSocket clients.",
	}), "skywatch_ws_clients"); err != nil {
		return nil, err
	}

	return c, nil
}

// ObserveRecompute records one scheduler tick. kind labels the failure and
// is ignored when ok is true.
func (c *Collector) ObserveRecompute(d time.Duration, ok bool, kind string) {
	if c == nil {
		return
	}
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
	if !ok {
		c.TickFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveSubmission records one element set submission.
func (c *Collector) ObserveSubmission(format, outcome string) {
	if c == nil {
		return
	}
	c.Submissions.WithLabelValues(format, outcome).Inc()
}

// SetClients reports the number of connected WebSocket clients.
func (c *Collector) SetClients(n int) {
	if c == nil {
		return
	}
	c.WSClients.Set(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer, which
// the WebSocket upgrade needs for Hijack.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware counts requests and records their latency. path labels the
// route pattern rather than the raw URL to keep cardinality bounded.
func (c *Collector) Middleware(path string, next http.Handler) http.Handler {
	if c == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		c.HTTPDuration.WithLabelValues(path, r.Method).Observe(time.Since(start).Seconds())
		c.HTTPRequests.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
	})
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
