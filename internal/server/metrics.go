package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nao1215/a11yscan/internal/model"
)

const metricsNamespace = "a11yscan"

// Analysis outcomes used as the "outcome" label.
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeTimeout  = "timeout"
	outcomeError    = "error"
)

// metrics holds the server's collectors on a private registry, so several
// servers in one process (tests) never collide.
type metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	failedChecks     *prometheus.CounterVec
	rateLimited      prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of /api/check analyses by outcome.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		}, []string{"outcome"}),
		failedChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "check_failures_total",
			Help:      "Failed compliance checks by check name.",
		}, []string{"check"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-IP rate limiter.",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.analysisDuration,
		m.failedChecks,
		m.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeRequest(route string, status int) {
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (m *metrics) observeAnalysis(outcome string, elapsed time.Duration) {
	m.analysisDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *metrics) observeFailedChecks(result *model.Result) {
	for _, c := range result.FailedChecks() {
		m.failedChecks.WithLabelValues(string(c.Name)).Inc()
	}
}
