package worker

import (
	"context"
	"time"
)

// LogEntry is one persisted line of a pipeline run's audit trail
type LogEntry struct {
	ID        int64
	RunID     string
	WorkerID  string
	Timestamp time.Time
	Level     string
	Message   string
	Metadata  map[string]string
}

// LogRepository persists worker run logs
type LogRepository interface {
	Append(ctx context.Context, entry *LogEntry) error
	ListByRun(ctx context.Context, runID string) ([]*LogEntry, error)
}
