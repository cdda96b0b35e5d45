package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics tracks moderation pipeline throughput per envelope kind and
// outcome, plus intake sweep activity.
type WorkerMetrics struct {
	registry *prometheus.Registry

	moderationTotal    *prometheus.CounterVec
	moderationDuration *prometheus.HistogramVec
	moderationInFlight prometheus.Gauge
	sweepItems         prometheus.Counter
	sweepDuration      prometheus.Histogram
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	moderationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "moderator",
			Subsystem: "worker",
			Name:      "moderation_total",
			Help:      "Processed trigger envelopes by kind and outcome.",
		},
		[]string{"service", "kind", "outcome"},
	)
	moderationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "moderator",
			Subsystem: "worker",
			Name:      "moderation_duration_seconds",
			Help:      "Envelope handling duration in seconds by kind and outcome.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "kind", "outcome"},
	)
	moderationInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "moderator",
			Subsystem: "worker",
			Name:      "moderation_in_flight",
			Help:      "Number of envelopes currently being handled.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	sweepItems := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "moderator",
			Subsystem: "sweeper",
			Name:      "intake_items_total",
			Help:      "Items staged for moderation by the intake sweep.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	sweepDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "moderator",
			Subsystem: "sweeper",
			Name:      "intake_sweep_duration_seconds",
			Help:      "Full intake sweep duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(moderationTotal, moderationDuration, moderationInFlight, sweepItems, sweepDuration)

	return &WorkerMetrics{
		registry:           registry,
		moderationTotal:    moderationTotal,
		moderationDuration: moderationDuration,
		moderationInFlight: moderationInFlight,
		sweepItems:         sweepItems,
		sweepDuration:      sweepDuration,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartEnvelope() {
	m.moderationInFlight.Inc()
}

func (m *WorkerMetrics) FinishEnvelope(service, kind string, duration time.Duration, err error) {
	m.moderationInFlight.Dec()

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.moderationTotal.WithLabelValues(service, kind, outcome).Inc()
	m.moderationDuration.WithLabelValues(service, kind, outcome).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveSweep(items int, duration time.Duration) {
	m.sweepItems.Add(float64(items))
	m.sweepDuration.Observe(duration.Seconds())
}
