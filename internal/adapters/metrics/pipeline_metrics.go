package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetricsCollector implements PipelineMetricsRecorder over
// Prometheus vectors
type PipelineMetricsCollector struct {
	workerRunsTotal   *prometheus.CounterVec
	workerRunDuration *prometheus.HistogramVec
	graphNodes        prometheus.Gauge
	graphEdges        prometheus.Gauge
}

// NewPipelineMetricsCollector creates and registers the pipeline collectors
func NewPipelineMetricsCollector(registry *prometheus.Registry) *PipelineMetricsCollector {
	c := &PipelineMetricsCollector{
		workerRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "worker_runs_total",
			Help:      "Worker runs by worker id, success and error code",
		}, []string{"worker_id", "success", "error_code"}),
		workerRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "worker_run_duration_seconds",
			Help:      "Worker run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"worker_id"}),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "graph_nodes",
			Help:      "Node count of the most recently built graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "graph_edges",
			Help:      "Edge count of the most recently built graph",
		}),
	}

	registry.MustRegister(c.workerRunsTotal, c.workerRunDuration, c.graphNodes, c.graphEdges)
	return c
}

// RecordWorkerRun records one worker run
func (c *PipelineMetricsCollector) RecordWorkerRun(workerID string, success bool, errorCode string, durationSeconds float64) {
	if errorCode == "" {
		errorCode = "none"
	}
	c.workerRunsTotal.WithLabelValues(workerID, strconv.FormatBool(success), errorCode).Inc()
	c.workerRunDuration.WithLabelValues(workerID).Observe(durationSeconds)
}

// RecordGraphBuild records the size of a freshly built graph
func (c *PipelineMetricsCollector) RecordGraphBuild(totalNodes, totalEdges int) {
	c.graphNodes.Set(float64(totalNodes))
	c.graphEdges.Set(float64(totalEdges))
}
