package synapse

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsObserver records request counts and latencies per client and operation
type MetricsObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsObserver registers the client metrics with reg, or the default
// registerer when reg is nil. Registering twice reuses the existing collectors.
func NewMetricsObserver(reg prometheus.Registerer) (*MetricsObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "synapse",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Requests issued by generated clients, by outcome.",
	}, []string{"client", "operation", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "synapse",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Time from request dispatch to response classification.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"client", "operation"})

	if err := reg.Register(requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		requests = are.ExistingCollector.(*prometheus.CounterVec)
	}
	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		duration = are.ExistingCollector.(*prometheus.HistogramVec)
	}

	return &MetricsObserver{requests: requests, duration: duration}, nil
}

func (m *MetricsObserver) Before(context.Context, Event) {}

func (m *MetricsObserver) After(_ context.Context, e Event) {
	m.record(e, "success")
}

func (m *MetricsObserver) Fail(_ context.Context, e Event) {
	m.record(e, "failed")
}

// Error counts only invocations that never received a status; the others
// were already counted by After or Fail.
func (m *MetricsObserver) Error(_ context.Context, e Event) {
	if e.StatusCode != 0 {
		return
	}
	m.record(e, "error")
}

func (m *MetricsObserver) record(e Event, outcome string) {
	m.requests.WithLabelValues(e.Client, e.Operation, outcome).Inc()
	m.duration.WithLabelValues(e.Client, e.Operation).Observe(e.Elapsed.Seconds())
}
