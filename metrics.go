package campaignbridge

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "campaignbridge"

// Metrics records per-attempt and per-call outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	retries  *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "attempts_total",
			Help:      "Network attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "retries_total",
			Help:      "Retries scheduled after a transient failure.",
		}, []string{"method"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "failures_total",
			Help:      "Logical calls that ended in a failure, by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "request_duration_seconds",
			Help:      "Duration of logical calls including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.retries, m.failures, m.duration)
	}
	return m
}

func (m *Metrics) observeAttempt(method Method, outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(string(method), outcome).Inc()
}

func (m *Metrics) observeRetry(method Method) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(string(method)).Inc()
}

func (m *Metrics) observeCall(method Method, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(method)).Observe(time.Since(start).Seconds())
	if re, ok := asRequestError(err); ok {
		m.failures.WithLabelValues(re.Kind.String()).Inc()
	}
}
