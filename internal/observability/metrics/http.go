package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	predictionsTotal    *prometheus.CounterVec
	predictionDuration  *prometheus.HistogramVec
	trainingRunsTotal   *prometheus.CounterVec
	trainingDuration    *prometheus.HistogramVec
	trainingRowsUsed    *prometheus.HistogramVec
	modelSelectionTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salescast",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "salescast",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	predictionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salescast",
			Subsystem: "predict",
			Name:      "requests_total",
			Help:      "Total prediction requests by outcome.",
		},
		[]string{"service", "status"},
	)
	predictionDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "predict",
			Name:      "duration_seconds",
			Help:      "Prediction serving duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	trainingRunsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salescast",
			Subsystem: "training",
			Name:      "runs_total",
			Help:      "Total training runs by trigger and outcome.",
		},
		[]string{"service", "trigger", "status"},
	)
	trainingDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "training",
			Name:      "duration_seconds",
			Help:      "Full training pipeline duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service", "trigger"},
	)
	trainingRowsUsed := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "salescast",
			Subsystem: "training",
			Name:      "rows_used",
			Help:      "Distribution of cleaned rows per training run.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"service"},
	)
	modelSelectionTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salescast",
			Subsystem: "models",
			Name:      "selections_total",
			Help:      "Total model promotions by candidate name.",
		},
		[]string{"service", "model"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		predictionsTotal,
		predictionDuration,
		trainingRunsTotal,
		trainingDuration,
		trainingRowsUsed,
		modelSelectionTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		predictionsTotal:    predictionsTotal,
		predictionDuration:  predictionDuration,
		trainingRunsTotal:   trainingRunsTotal,
		trainingDuration:    trainingDuration,
		trainingRowsUsed:    trainingRowsUsed,
		modelSelectionTotal: modelSelectionTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses resource IDs so per-ID label explosions cannot
// happen.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/admin/datasets/"):
		if strings.HasSuffix(path, "/retrain") {
			return "/v1/admin/datasets/{dataset_id}/retrain"
		}
		return "/v1/admin/datasets/{dataset_id}"
	case strings.HasPrefix(path, "/v1/admin/users/"):
		return "/v1/admin/users/{user_id}"
	case strings.HasPrefix(path, "/v1/admin/roles/"):
		return "/v1/admin/roles/{role_id}"
	case strings.HasPrefix(path, "/v1/admin/predictions/"):
		return "/v1/admin/predictions/{user_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordPrediction(service string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.predictionsTotal.WithLabelValues(service, status).Inc()
	m.predictionDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordTrainingRun(service, trigger string, rowsUsed int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.trainingRunsTotal.WithLabelValues(service, trigger, status).Inc()
	m.trainingDuration.WithLabelValues(service, trigger).Observe(duration.Seconds())
	if err == nil && rowsUsed > 0 {
		m.trainingRowsUsed.WithLabelValues(service).Observe(float64(rowsUsed))
	}
}

func (m *HTTPServerMetrics) RecordModelSelection(service, model string) {
	if model == "" {
		model = "unknown"
	}
	m.modelSelectionTotal.WithLabelValues(service, model).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
