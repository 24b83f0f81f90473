package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
)

// persistentLogger writes worker log lines to the worker_logs audit trail
// and mirrors them to the process log. Persistence failures are reported
// and swallowed so a broken audit trail never fails a run.
type persistentLogger struct {
	repo     worker.LogRepository
	clock    shared.Clock
	runID    string
	workerID string
}

func newPersistentLogger(repo worker.LogRepository, clock shared.Clock, runID, workerID string) *persistentLogger {
	return &persistentLogger{repo: repo, clock: clock, runID: runID, workerID: workerID}
}

func (l *persistentLogger) Log(level, message string, metadata map[string]interface{}) {
	log.Printf("[%s] [%s] %s: %s", l.runID, l.workerID, level, message)
	if l.repo == nil {
		return
	}

	entry := &worker.LogEntry{
		RunID:     l.runID,
		WorkerID:  l.workerID,
		Timestamp: l.clock.Now(),
		Level:     level,
		Message:   message,
		Metadata:  stringifyMetadata(metadata),
	}
	if err := l.repo.Append(context.Background(), entry); err != nil {
		log.Printf("[%s] [%s] failed to persist log entry: %v", l.runID, l.workerID, err)
	}
}

func stringifyMetadata(metadata map[string]interface{}) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(metadata))
	for k, v := range metadata {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
