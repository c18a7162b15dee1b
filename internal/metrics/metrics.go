// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by workflow counters.
const (
	OutcomeRecognized    = "recognized"
	OutcomeNotRecognized = "not_recognized"
	OutcomeNoFace        = "no_face"
	OutcomeCreated       = "created"
	OutcomeDuplicate     = "duplicate"
	OutcomeError         = "error"
	OutcomeSent          = "sent"
	OutcomeFailed        = "failed"
	OutcomeDropped       = "dropped"
)

// Metrics is a set of collectors registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestCounter  *prometheus.CounterVec
	Recognitions    *prometheus.CounterVec
	Registrations   *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
	EncoderDuration prometheus.Histogram
	WorkersQueued   prometheus.Gauge
	WorkersRejected prometheus.Counter
}

// New creates and registers all collectors under the given namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		Recognitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recognitions_total",
				Help:      "Recognition attempts by outcome",
			},
			[]string{"outcome"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "User registrations by outcome",
			},
			[]string{"outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "NX Witness bookmark notifications by outcome",
			},
			[]string{"outcome"},
		),
		EncoderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "encoder_duration_seconds",
			Help:      "Duration of face encoder calls in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		WorkersQueued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "worker_pool_admitted",
			Help:      "Jobs currently running or waiting in the worker pool",
		}),
		WorkersRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "worker_pool_rejected_total",
			Help:      "Jobs rejected because the worker queue was full",
		}),
	}

	reg.MustRegister(
		m.RequestDuration,
		m.RequestCounter,
		m.Recognitions,
		m.Registrations,
		m.Notifications,
		m.EncoderDuration,
		m.WorkersQueued,
		m.WorkersRejected,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveEncoder returns a function recording the duration of an encoder call.
func (m *Metrics) ObserveEncoder() func() {
	start := time.Now()
	return func() {
		m.EncoderDuration.Observe(time.Since(start).Seconds())
	}
}
