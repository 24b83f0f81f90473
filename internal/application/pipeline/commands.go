package pipeline

import (
	"context"
	"fmt"

	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
)

// RunPipelineCommand executes the whole dataset pipeline once
type RunPipelineCommand struct{}

// RunWorkerCommand executes a single pipeline worker by id
type RunWorkerCommand struct {
	WorkerID string
}

// RunPipelineHandler dispatches RunPipelineCommand to the runner
type RunPipelineHandler struct {
	runner *Runner
}

func NewRunPipelineHandler(runner *Runner) *RunPipelineHandler {
	return &RunPipelineHandler{runner: runner}
}

func (h *RunPipelineHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	if _, ok := request.(*RunPipelineCommand); !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	return h.runner.RunAll(ctx)
}

// RunWorkerHandler dispatches RunWorkerCommand to the runner
type RunWorkerHandler struct {
	runner *Runner
}

func NewRunWorkerHandler(runner *Runner) *RunWorkerHandler {
	return &RunWorkerHandler{runner: runner}
}

func (h *RunWorkerHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*RunWorkerCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if cmd.WorkerID == "" {
		return nil, fmt.Errorf("worker id cannot be empty")
	}
	return h.runner.RunOne(ctx, cmd.WorkerID)
}
