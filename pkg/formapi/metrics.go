package formapi

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serviceinfo",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Total number of remote form requests broken down by op and result.",
		}, []string{"op", "result"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "serviceinfo",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for remote form requests.",
			Buckets: []float64{
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10, 30,
			},
		}, []string{"op"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

const (
	resultOK        = "ok"
	resultRejected  = "rejected"
	resultTransport = "transport_error"
)

func (m *metrics) record(op, result string, seconds float64) {
	if op == "" {
		op = "unknown"
	}
	m.requestsTotal.WithLabelValues(op, result).Inc()
	m.requestDuration.WithLabelValues(op).Observe(seconds)
}
