// Package metrics exposes Prometheus instruments for the reminder pipeline,
// the feed sources, deliveries and the daily scheduler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "tennis_reminder"

// Option configures a Recorder.
type Option func(*Recorder)

func WithNamespace(namespace string) Option {
	return func(r *Recorder) {
		if namespace != "" {
			r.namespace = namespace
		}
	}
}

// WithRegistry sets a dedicated registry. Tests use a fresh one per case.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(r *Recorder) {
		if registry != nil {
			r.registry = registry
		}
	}
}

func WithProcessCollectors() Option {
	return func(r *Recorder) {
		r.processCollectors = true
	}
}

// Recorder owns every instrument. A nil *Recorder is valid and records
// nothing, so callers never need to guard.
type Recorder struct {
	namespace         string
	registry          *prometheus.Registry
	processCollectors bool

	pipelineRuns     *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
	matchesRendered  prometheus.Gauge
	sourceFetches    *prometheus.CounterVec
	sourceDuration   *prometheus.HistogramVec
	circuitState     *prometheus.GaugeVec
	deliveries       *prometheus.CounterVec
	subscribers      prometheus.Gauge
	schedulerFires   *prometheus.CounterVec
	nextFireUnix     prometheus.Gauge
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: defaultNamespace,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.processCollectors {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	auto := promauto.With(r.registry)
	r.pipelineRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Matchday pipeline runs by trigger (on_demand, scheduled).",
	}, []string{"trigger"})
	r.pipelineDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Wall time of one pipeline run including feed fetches.",
		Buckets:   prometheus.DefBuckets,
	})
	r.matchesRendered = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: "pipeline",
		Name:      "matches_last_run",
		Help:      "Number of matches retained by the last pipeline run.",
	})
	r.sourceFetches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "feed",
		Name:      "fetches_total",
		Help:      "Feed fetches by source and outcome.",
	}, []string{"source", "outcome"})
	r.sourceDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: "feed",
		Name:      "fetch_duration_seconds",
		Help:      "Feed fetch latency by source.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"source"})
	r.circuitState = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "circuit_open",
		Help:      "1 while the named circuit breaker is open or half open.",
	}, []string{"name"})
	r.deliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "delivery",
		Name:      "attempts_total",
		Help:      "Per-recipient delivery outcomes.",
	}, []string{"status"})
	r.subscribers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: "delivery",
		Name:      "subscribers",
		Help:      "Subscribers in the current process.",
	})
	r.schedulerFires = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: "scheduler",
		Name:      "fires_total",
		Help:      "Scheduler fires by outcome (ok, error, panic).",
	}, []string{"outcome"})
	r.nextFireUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Subsystem: "scheduler",
		Name:      "next_fire_timestamp_seconds",
		Help:      "Unix time of the next scheduled fire.",
	})

	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ObservePipeline(trigger string, took time.Duration, matches int) {
	if r == nil {
		return
	}
	r.pipelineRuns.WithLabelValues(trigger).Inc()
	r.pipelineDuration.Observe(took.Seconds())
	r.matchesRendered.Set(float64(matches))
}

func (r *Recorder) ObserveFetch(source string, took time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.sourceFetches.WithLabelValues(source, outcome).Inc()
	r.sourceDuration.WithLabelValues(source).Observe(took.Seconds())
}

func (r *Recorder) SetCircuitOpen(name string, open bool) {
	if r == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	r.circuitState.WithLabelValues(name).Set(v)
}

func (r *Recorder) ObserveDelivery(status string) {
	if r == nil {
		return
	}
	r.deliveries.WithLabelValues(status).Inc()
}

func (r *Recorder) SetSubscribers(n int) {
	if r == nil {
		return
	}
	r.subscribers.Set(float64(n))
}

func (r *Recorder) ObserveFire(outcome string) {
	if r == nil {
		return
	}
	r.schedulerFires.WithLabelValues(outcome).Inc()
}

func (r *Recorder) SetNextFire(at time.Time) {
	if r == nil {
		return
	}
	r.nextFireUnix.Set(float64(at.Unix()))
}
