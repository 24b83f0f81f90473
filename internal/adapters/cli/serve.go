package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/metrics"
	"github.com/sakhatrip/sakhatrip-go/internal/application/pipeline"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/pidfile"
)

// NewServeCommand builds the long-running daemon command: single
// instance via pid file, pipeline on an interval, SIGTERM shutdown.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the SakhaTrip daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(ctx, configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			pf := pidfile.New(app.Config.Daemon.PIDFile)
			if err := pf.Acquire(); err != nil {
				return fmt.Errorf("failed to acquire pid file lock: %w", err)
			}
			defer func() {
				if err := pf.Release(); err != nil {
					log.Printf("failed to release pid file: %v", err)
				}
			}()

			metricsServer := startMetricsServer(app)

			if app.Config.Pipeline.RunOnStart {
				runPipelinePass(ctx, app)
			}

			ticker := time.NewTicker(app.Config.Daemon.PipelineInterval)
			defer ticker.Stop()

			log.Printf("daemon up, pipeline every %s", app.Config.Daemon.PipelineInterval)
			for {
				select {
				case <-ticker.C:
					runPipelinePass(ctx, app)
				case <-ctx.Done():
					log.Println("shutdown signal received")
					shutdownMetricsServer(metricsServer, app.Config.Daemon.ShutdownTimeout)
					return nil
				}
			}
		},
	}
}

func runPipelinePass(ctx context.Context, app *App) {
	resp, err := app.Mediator.Send(ctx, &pipeline.RunPipelineCommand{})
	if err != nil {
		log.Printf("pipeline pass failed: %v", err)
		return
	}
	report := resp.(*pipeline.RunReport)
	for _, outcome := range report.Outcomes {
		log.Printf("[%s] %s: success=%v %s", report.RunID, outcome.WorkerID, outcome.Success, outcome.Message)
	}
}

func startMetricsServer(app *App) *http.Server {
	if !app.Config.Metrics.Enabled || !metrics.IsEnabled() {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle(app.Config.Metrics.Path, promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", app.Config.Metrics.Host, app.Config.Metrics.Port),
		Handler: mux,
	}
	go func() {
		log.Printf("metrics endpoint on http://%s%s", server.Addr, app.Config.Metrics.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()
	return server
}

func shutdownMetricsServer(server *http.Server, timeout time.Duration) {
	if server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}
}
