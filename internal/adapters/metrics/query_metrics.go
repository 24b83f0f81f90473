package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QueryMetricsCollector implements QueryMetricsRecorder over Prometheus
// vectors
type QueryMetricsCollector struct {
	queriesTotal  *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
}

// NewQueryMetricsCollector creates and registers the query collectors
func NewQueryMetricsCollector(registry *prometheus.Registry) *QueryMetricsCollector {
	c := &QueryMetricsCollector{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trip_queries_total",
			Help:      "Trip queries by outcome",
		}, []string{"outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "trip_query_duration_seconds",
			Help:      "Trip query latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"outcome"}),
	}

	registry.MustRegister(c.queriesTotal, c.queryDuration)
	return c
}

// RecordQuery records one trip query
func (c *QueryMetricsCollector) RecordQuery(outcome string, durationSeconds float64) {
	c.queriesTotal.WithLabelValues(outcome).Inc()
	c.queryDuration.WithLabelValues(outcome).Observe(durationSeconds)
}
