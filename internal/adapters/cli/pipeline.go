package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakhatrip/sakhatrip-go/internal/application/pipeline"
)

// NewPipelineCommand builds the one-shot pipeline command.
func NewPipelineCommand() *cobra.Command {
	var workerID string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Run the dataset pipeline once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := NewApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			var request interface{}
			if workerID != "" {
				request = &pipeline.RunWorkerCommand{WorkerID: workerID}
			} else {
				request = &pipeline.RunPipelineCommand{}
			}

			resp, err := app.Mediator.Send(ctx, request)
			if err != nil {
				return err
			}

			report := resp.(*pipeline.RunReport)
			fmt.Printf("run %s\n", report.RunID)
			for _, outcome := range report.Outcomes {
				status := "ok"
				if !outcome.Success {
					status = string(outcome.ErrorCode)
				}
				fmt.Printf("  %-18s %-18s %6dms  %s\n",
					outcome.WorkerID, status, outcome.ExecutionTimeMs, outcome.Message)
			}
			if !report.Succeeded() {
				return fmt.Errorf("pipeline run %s did not complete", report.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&workerID, "worker", "", "Run only this worker")
	return cmd
}
