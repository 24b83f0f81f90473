package common

import "context"

// WorkerLogger provides logging functionality for pipeline worker runs
type WorkerLogger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing the logger and run id through context
type contextKey int

const (
	loggerKey contextKey = iota
	runIDKey
)

// WithWorkerLogger adds a logger to the context
func WithWorkerLogger(ctx context.Context, logger WorkerLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WorkerLoggerFromContext extracts the logger from context, or returns a
// no-op logger if not found
func WorkerLoggerFromContext(ctx context.Context) WorkerLogger {
	if logger, ok := ctx.Value(loggerKey).(WorkerLogger); ok {
		return logger
	}
	return &noOpLogger{}
}

// WithRunID tags the context with a pipeline run id for log correlation
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// RunIDFromContext extracts the run id, "" when absent
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// noOpLogger is a logger that does nothing (fallback when no logger in context)
type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {
	// Do nothing
}
