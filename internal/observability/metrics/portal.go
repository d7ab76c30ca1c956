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

// PortalMetrics bundles the HTTP server metrics with the portal's domain
// counters on one private registry.
type PortalMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentUploadsTotal     *prometheus.CounterVec
	documentReviewsTotal     *prometheus.CounterVec
	chatTurnsTotal           *prometheus.CounterVec
	functionCallsTotal       *prometheus.CounterVec
	scenarioCompletionsTotal *prometheus.CounterVec
	scenarioScore            *prometheus.HistogramVec
	appointmentsTotal        *prometheus.CounterVec
}

func NewPortalMetrics(service string) *PortalMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentUploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "documents",
			Name:      "uploads_total",
			Help:      "Total accepted document uploads by type.",
		},
		[]string{"service", "type"},
	)
	documentReviewsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "documents",
			Name:      "reviews_total",
			Help:      "Total review decisions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "chatbot",
			Name:      "turns_total",
			Help:      "Total processed chatbot turns by status.",
		},
		[]string{"service", "status"},
	)
	functionCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "chatbot",
			Name:      "function_calls_total",
			Help:      "Total assistant function calls by dispatch outcome.",
		},
		[]string{"service", "function", "status"},
	)
	scenarioCompletionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "simulations",
			Name:      "completions_total",
			Help:      "Total recorded scenario completions.",
		},
		[]string{"service", "category"},
	)
	scenarioScore := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "simulations",
			Name:      "completion_score",
			Help:      "Distribution of completion scores.",
			Buckets:   []float64{10, 25, 50, 65, 75, 85, 95, 100},
		},
		[]string{"service", "category"},
	)
	appointmentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "telehealth",
			Name:      "appointments_total",
			Help:      "Total appointment status changes.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentUploadsTotal,
		documentReviewsTotal,
		chatTurnsTotal,
		functionCallsTotal,
		scenarioCompletionsTotal,
		scenarioScore,
		appointmentsTotal,
	)

	return &PortalMetrics{
		registry:                 registry,
		requestTotal:             requestTotal,
		requestDuration:          requestDuration,
		requestInFlight:          requestInFlight,
		documentUploadsTotal:     documentUploadsTotal,
		documentReviewsTotal:     documentReviewsTotal,
		chatTurnsTotal:           chatTurnsTotal,
		functionCallsTotal:       functionCallsTotal,
		scenarioCompletionsTotal: scenarioCompletionsTotal,
		scenarioScore:            scenarioScore,
		appointmentsTotal:        appointmentsTotal,
	}
}

func (m *PortalMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PortalMetrics) Middleware(service string, next http.Handler) http.Handler {
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

// normalizePath collapses resource ids so the path label stays bounded.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		if strings.HasPrefix(path, "/v1/documents/export") {
			return path
		}
		return "/v1/documents/{id}"
	case strings.HasPrefix(path, "/v1/simulations/scenarios/"):
		return "/v1/simulations/scenarios/{id}"
	case strings.HasPrefix(path, "/v1/chatbot/conversations/"):
		return "/v1/chatbot/conversations/{id}"
	case strings.HasPrefix(path, "/v1/telehealth/appointments/"):
		return "/v1/telehealth/appointments/{id}"
	default:
		return path
	}
}

func (m *PortalMetrics) RecordDocumentUpload(service, docType string) {
	m.documentUploadsTotal.WithLabelValues(service, docType).Inc()
}

func (m *PortalMetrics) RecordReviewDecision(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.documentReviewsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *PortalMetrics) RecordChatTurn(service, status string) {
	m.chatTurnsTotal.WithLabelValues(service, status).Inc()
}

func (m *PortalMetrics) RecordFunctionCall(service, function, status string) {
	if function == "" {
		function = "unknown"
	}
	m.functionCallsTotal.WithLabelValues(service, function, status).Inc()
}

func (m *PortalMetrics) RecordScenarioCompletion(service, category string, score float64) {
	m.scenarioCompletionsTotal.WithLabelValues(service, category).Inc()
	m.scenarioScore.WithLabelValues(service, category).Observe(score)
}

func (m *PortalMetrics) RecordAppointmentStatus(service, status string) {
	m.appointmentsTotal.WithLabelValues(service, status).Inc()
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
