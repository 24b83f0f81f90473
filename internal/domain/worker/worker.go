package worker

import "context"

// Worker ids used by the pipeline runner and NextWorker chaining
const (
	VirtualEntitiesWorkerID = "virtual-entities"
	AirRoutesWorkerID       = "air-routes"
	GraphBuilderWorkerID    = "graph-builder"
)

// ErrorCode is the machine-readable failure class of a worker run
type ErrorCode string

const (
	ErrCannotRun         ErrorCode = "CANNOT_RUN"
	ErrNoDataset         ErrorCode = "NO_DATASET"
	ErrNoHubStops        ErrorCode = "NO_HUB_STOPS"
	ErrInsufficientStops ErrorCode = "INSUFFICIENT_STOPS"
	ErrExecution         ErrorCode = "EXECUTION_ERROR"
)

// DataProcessed counts entity changes made by one run
type DataProcessed struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

// Outcome is the structured result of one worker run
type Outcome struct {
	Success         bool           `json:"success"`
	WorkerID        string         `json:"workerId"`
	ExecutionTimeMs int64          `json:"executionTimeMs"`
	Message         string         `json:"message"`
	ErrorCode       ErrorCode      `json:"errorCode,omitempty"`
	Error           string         `json:"error,omitempty"`
	NextWorker      string         `json:"nextWorker,omitempty"`
	DataProcessed   *DataProcessed `json:"dataProcessed,omitempty"`
}

// Worker is one stage of the serial dataset pipeline. CanRun is the
// idempotence guard: a worker whose output already exists reports false
// and the runner records a CANNOT_RUN outcome without executing the body.
type Worker interface {
	ID() string

	// CanRun returns whether the worker should execute plus a
	// human-readable reason when it should not
	CanRun(ctx context.Context) (bool, string, error)

	Run(ctx context.Context) Outcome
}

// Success builds a successful outcome.
func Success(workerID, message string, elapsedMs int64) Outcome {
	return Outcome{
		Success:         true,
		WorkerID:        workerID,
		ExecutionTimeMs: elapsedMs,
		Message:         message,
	}
}

// Failure builds a failed outcome with a machine-readable code.
func Failure(workerID string, code ErrorCode, message string, elapsedMs int64) Outcome {
	return Outcome{
		Success:         false,
		WorkerID:        workerID,
		ExecutionTimeMs: elapsedMs,
		Message:         message,
		ErrorCode:       code,
	}
}

// ExecutionFailure wraps an unexpected error into an EXECUTION_ERROR
// outcome with the underlying message attached.
func ExecutionFailure(workerID string, err error, elapsedMs int64) Outcome {
	out := Failure(workerID, ErrExecution, "worker execution failed", elapsedMs)
	if err != nil {
		out.Error = err.Error()
	}
	return out
}

// Skipped builds the CANNOT_RUN outcome recorded when the idempotence
// guard refuses a run.
func Skipped(workerID, reason string) Outcome {
	return Outcome{
		Success:   false,
		WorkerID:  workerID,
		Message:   reason,
		ErrorCode: ErrCannotRun,
	}
}
