package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/metrics"
	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
)

// Retention holds the sweep keep-counts applied after a successful pass
type Retention struct {
	DatasetKeepCount int
	GraphKeepCount   int
}

// RunReport aggregates one pipeline pass
type RunReport struct {
	RunID    string           `json:"runId"`
	Outcomes []worker.Outcome `json:"outcomes"`
}

// Succeeded reports whether every executed worker succeeded. Skipped
// workers (CANNOT_RUN) do not count as failures; their output already
// exists.
func (r *RunReport) Succeeded() bool {
	for _, o := range r.Outcomes {
		if !o.Success && o.ErrorCode != worker.ErrCannotRun {
			return false
		}
	}
	return true
}

// Runner executes the dataset pipeline strictly serially in registration
// order. Each worker's idempotence guard makes repeated passes no-ops, so
// the runner itself is re-entrant.
type Runner struct {
	workers   []worker.Worker
	logs      worker.LogRepository
	datasets  transport.DatasetRepository
	graphMeta graph.MetadataRepository
	store     graph.Store
	retention Retention
	clock     shared.Clock
}

func NewRunner(
	workers []worker.Worker,
	logs worker.LogRepository,
	datasets transport.DatasetRepository,
	graphMeta graph.MetadataRepository,
	store graph.Store,
	retention Retention,
	clock shared.Clock,
) *Runner {
	return &Runner{
		workers:   workers,
		logs:      logs,
		datasets:  datasets,
		graphMeta: graphMeta,
		store:     store,
		retention: retention,
		clock:     clock,
	}
}

// RunAll executes every registered worker in order and sweeps retention
// afterwards when the pass succeeded.
func (r *Runner) RunAll(ctx context.Context) (*RunReport, error) {
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	report := &RunReport{RunID: runID}

	for _, w := range r.workers {
		outcome := r.runWorker(ctx, runID, w)
		report.Outcomes = append(report.Outcomes, outcome)
		if !outcome.Success && outcome.ErrorCode != worker.ErrCannotRun {
			log.Printf("[%s] pipeline stopped at worker %s: %s", runID, w.ID(), outcome.Message)
			return report, nil
		}
	}

	if report.Succeeded() {
		if err := r.sweepRetention(ctx, runID); err != nil {
			log.Printf("[%s] retention sweep failed: %v", runID, err)
		}
	}
	return report, nil
}

// RunOne executes a single worker by id.
func (r *Runner) RunOne(ctx context.Context, workerID string) (*RunReport, error) {
	w := r.workerByID(workerID)
	if w == nil {
		return nil, fmt.Errorf("unknown worker %q", workerID)
	}
	runID := uuid.New().String()
	ctx = common.WithRunID(ctx, runID)
	return &RunReport{
		RunID:    runID,
		Outcomes: []worker.Outcome{r.runWorker(ctx, runID, w)},
	}, nil
}

func (r *Runner) workerByID(id string) worker.Worker {
	for _, w := range r.workers {
		if w.ID() == id {
			return w
		}
	}
	return nil
}

func (r *Runner) runWorker(ctx context.Context, runID string, w worker.Worker) (outcome worker.Outcome) {
	logger := newPersistentLogger(r.logs, r.clock, runID, w.ID())
	ctx = common.WithWorkerLogger(ctx, logger)

	// A panicking worker must not take the daemon down; it becomes a
	// failed outcome and the pipeline stops normally.
	defer func() {
		if p := recover(); p != nil {
			log.Printf("[%s] worker %s panicked: %v", runID, w.ID(), p)
			outcome = worker.ExecutionFailure(w.ID(), fmt.Errorf("worker panicked: %v", p), 0)
			r.recordOutcome(logger, outcome)
		}
	}()

	canRun, reason, err := w.CanRun(ctx)
	if err != nil {
		outcome := worker.ExecutionFailure(w.ID(), err, 0)
		r.recordOutcome(logger, outcome)
		return outcome
	}
	if !canRun {
		outcome := worker.Skipped(w.ID(), reason)
		r.recordOutcome(logger, outcome)
		return outcome
	}

	outcome = w.Run(ctx)
	r.recordOutcome(logger, outcome)
	return outcome
}

func (r *Runner) recordOutcome(logger *persistentLogger, outcome worker.Outcome) {
	level := "INFO"
	if !outcome.Success {
		level = "WARN"
	}
	message := outcome.Message
	if outcome.Error != "" {
		message = fmt.Sprintf("%s: %s", message, outcome.Error)
	}
	logger.Log(level, message, map[string]interface{}{
		"success":   outcome.Success,
		"errorCode": string(outcome.ErrorCode),
		"elapsedMs": outcome.ExecutionTimeMs,
	})

	metrics.RecordWorkerRun(outcome.WorkerID, outcome.Success, string(outcome.ErrorCode),
		float64(outcome.ExecutionTimeMs)/1000.0)
}

// sweepRetention drops inactive datasets and graph versions beyond the
// keep counts, clearing the swept graphs' KV keyspaces as well.
func (r *Runner) sweepRetention(ctx context.Context, runID string) error {
	removed, err := r.datasets.DeleteOld(ctx, r.retention.DatasetKeepCount)
	if err != nil {
		return fmt.Errorf("failed to sweep old datasets: %w", err)
	}
	if removed > 0 {
		log.Printf("[%s] swept %d old datasets", runID, removed)
	}

	versions, err := r.graphMeta.DeleteOld(ctx, r.retention.GraphKeepCount)
	if err != nil {
		return fmt.Errorf("failed to sweep old graph metadata: %w", err)
	}
	for _, version := range versions {
		keys, err := r.store.DeleteGraph(ctx, version)
		if err != nil {
			return fmt.Errorf("failed to sweep graph %s keyspace: %w", version, err)
		}
		log.Printf("[%s] swept graph %s (%d keys)", runID, version, keys)
	}
	return nil
}
