package framequery

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for SDK traffic. Optional: attach one
// with WithMetrics. All methods are nil-safe so the client never checks.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    prometheus.Counter
	pollsTotal      prometheus.Counter
}

// NewMetrics registers the SDK collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "framequery",
			Name:      "api_requests_total",
			Help:      "API request attempts by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "framequery",
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		retriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "framequery",
			Name:      "api_retries_total",
			Help:      "Retry attempts across all API requests.",
		}),
		pollsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "framequery",
			Name:      "job_polls_total",
			Help:      "Job status polls issued while waiting for completion.",
		}),
	}
}

// observeRequest records one attempt. status 0 means no response arrived.
func (m *Metrics) observeRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(method, label).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

func (m *Metrics) observePoll() {
	if m == nil {
		return
	}
	m.pollsTotal.Inc()
}
