package arduinocloud

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by a Client.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	retries        *prometheus.CounterVec
	tokenExchanges *prometheus.CounterVec
	tokenCacheHits *prometheus.CounterVec
}

// NewMetrics creates the client collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arduinocloud_requests_total",
				Help: "Total number of API calls by endpoint and final status code",
			},
			[]string{"endpoint", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arduinocloud_request_duration_seconds",
				Help:    "API call latency including retries, in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arduinocloud_retries_total",
				Help: "Total number of retried attempts by reason",
			},
			[]string{"reason"},
		),
		tokenExchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arduinocloud_token_exchanges_total",
				Help: "Total number of client-credentials token exchanges by result",
			},
			[]string{"result"},
		),
		tokenCacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arduinocloud_token_cache_hits_total",
				Help: "Total number of access tokens served from a cache by source",
			},
			[]string{"source"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.requests, m.latency, m.retries, m.tokenExchanges, m.tokenCacheHits)
	}
	return m
}

func (m *Metrics) observeRequest(endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	m.requests.WithLabelValues(endpoint, code).Inc()
	m.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *Metrics) retry(reason string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(reason).Inc()
}

func (m *Metrics) tokenExchange(result string) {
	if m == nil {
		return
	}
	m.tokenExchanges.WithLabelValues(result).Inc()
}

func (m *Metrics) tokenCacheHit(source string) {
	if m == nil {
		return
	}
	m.tokenCacheHits.WithLabelValues(source).Inc()
}
