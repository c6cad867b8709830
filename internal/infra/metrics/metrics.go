// Package metrics holds the Prometheus collectors of the REST service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	requests   *prometheus.CounterVec
	latency    *prometheus.HistogramVec
	dispensed  *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

// New registers the collectors on reg; pass prometheus.DefaultRegisterer in
// production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_stock",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic_stock",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		dispensed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_stock",
			Name:      "transactions_total",
			Help:      "Applied stock transactions by direction and narcotic flag.",
		}, []string{"direction", "narcotic"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic_stock",
			Name:      "transactions_rejected_total",
			Help:      "Refused stock transactions by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.requests, m.latency, m.dispensed, m.rejections)
	return m
}

func (m *Metrics) ObserveRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.latency.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Metrics) Transaction(delta float64, narcotic bool) {
	if m == nil {
		return
	}
	dir := "in"
	if delta < 0 {
		dir = "out"
	}
	m.dispensed.WithLabelValues(dir, strconv.FormatBool(narcotic)).Inc()
}

func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(reason).Inc()
}
