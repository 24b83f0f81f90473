package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "sakhatrip"
	// Subsystem for pipeline and query metrics
	subsystem = "backend"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPipelineCollector records worker runs when metrics are enabled
	globalPipelineCollector PipelineMetricsRecorder

	// globalQueryCollector records trip queries when metrics are enabled
	globalQueryCollector QueryMetricsRecorder
)

// PipelineMetricsRecorder records pipeline worker events
type PipelineMetricsRecorder interface {
	RecordWorkerRun(workerID string, success bool, errorCode string, durationSeconds float64)
	RecordGraphBuild(totalNodes, totalEdges int)
}

// QueryMetricsRecorder records trip-query events
type QueryMetricsRecorder interface {
	RecordQuery(outcome string, durationSeconds float64)
}

// InitRegistry initializes the Prometheus registry.
// Should be called once at application startup if metrics are enabled.
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry, nil when metrics
// are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPipelineCollector sets the global pipeline metrics collector
func SetGlobalPipelineCollector(collector PipelineMetricsRecorder) {
	globalPipelineCollector = collector
}

// SetGlobalQueryCollector sets the global query metrics collector
func SetGlobalQueryCollector(collector QueryMetricsRecorder) {
	globalQueryCollector = collector
}

// RecordWorkerRun records one worker run globally
func RecordWorkerRun(workerID string, success bool, errorCode string, durationSeconds float64) {
	if globalPipelineCollector != nil {
		globalPipelineCollector.RecordWorkerRun(workerID, success, errorCode, durationSeconds)
	}
}

// RecordGraphBuild records the size of a freshly built graph globally
func RecordGraphBuild(totalNodes, totalEdges int) {
	if globalPipelineCollector != nil {
		globalPipelineCollector.RecordGraphBuild(totalNodes, totalEdges)
	}
}

// RecordQuery records one trip query globally
func RecordQuery(outcome string, durationSeconds float64) {
	if globalQueryCollector != nil {
		globalQueryCollector.RecordQuery(outcome, durationSeconds)
	}
}
