package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	retrainTotal    *prometheus.CounterVec
	retrainDuration *prometheus.HistogramVec
	retrainInFlight prometheus.Gauge
	queueLag        *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	retrainTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salescast",
			Subsystem: "worker",
			Name:      "retrain_total",
			Help:      "Total retrain jobs by status.",
		},
		[]string{"service", "status"},
	)
	retrainDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "worker",
			Name:      "retrain_duration_seconds",
			Help:      "Retrain job duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	retrainInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salescast",
			Subsystem: "worker",
			Name:      "retrain_in_flight",
			Help:      "Number of in-flight retrain jobs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between dataset registration and retrain start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(retrainTotal, retrainDuration, retrainInFlight, queueLag)

	return &WorkerMetrics{
		registry:        registry,
		retrainTotal:    retrainTotal,
		retrainDuration: retrainDuration,
		retrainInFlight: retrainInFlight,
		queueLag:        queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartRetrain() {
	m.retrainInFlight.Inc()
}

func (m *WorkerMetrics) FinishRetrain(service string, duration time.Duration, err error) {
	m.retrainInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.retrainTotal.WithLabelValues(service, status).Inc()
	m.retrainDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
