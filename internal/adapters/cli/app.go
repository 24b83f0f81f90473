package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/graphstore"
	"github.com/sakhatrip/sakhatrip-go/internal/adapters/metrics"
	"github.com/sakhatrip/sakhatrip-go/internal/adapters/persistence"
	riskadapter "github.com/sakhatrip/sakhatrip-go/internal/adapters/risk"
	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/application/pipeline"
	"github.com/sakhatrip/sakhatrip-go/internal/application/trips"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/risk"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/config"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/database"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/redis"
)

// App wires configuration, stores, workers and handlers into one running
// unit shared by every subcommand.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *goredis.Client
	Mediator common.Mediator
	Runner   *pipeline.Runner
}

// NewApp connects the stores and registers every handler.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metrics.SetGlobalPipelineCollector(metrics.NewPipelineMetricsCollector(metrics.GetRegistry()))
		metrics.SetGlobalQueryCollector(metrics.NewQueryMetricsCollector(metrics.GetRegistry()))
	}

	datasetRepo := persistence.NewGormDatasetRepository(db)
	stopRepo := persistence.NewGormStopRepository(db)
	virtualStopRepo := persistence.NewGormVirtualStopRepository(db)
	routeRepo := persistence.NewGormRouteRepository(db)
	virtualRouteRepo := persistence.NewGormVirtualRouteRepository(db)
	flightRepo := persistence.NewGormFlightRepository(db)
	graphMetaRepo := persistence.NewGormGraphMetadataRepository(db)

	store := graphstore.NewRedisGraphStore(redisClient)
	directory := reference.Embedded()
	clock := shared.NewRealClock()

	var logRepo worker.LogRepository
	if cfg.Logging.PersistWorkerLogs {
		logRepo = persistence.NewGormWorkerLogRepository(db)
	}

	workers := orderedWorkers(cfg.Pipeline.Workers, map[string]worker.Worker{
		worker.VirtualEntitiesWorkerID: pipeline.NewVirtualEntitiesWorker(
			datasetRepo, stopRepo, virtualStopRepo, routeRepo, virtualRouteRepo, flightRepo, directory, clock),
		worker.AirRoutesWorkerID: pipeline.NewAirRoutesWorker(
			datasetRepo, stopRepo, routeRepo, flightRepo, directory, clock),
		worker.GraphBuilderWorkerID: pipeline.NewGraphBuilderWorker(
			datasetRepo, stopRepo, virtualStopRepo, routeRepo, virtualRouteRepo, flightRepo,
			store, graphMetaRepo, directory, clock),
	})

	runner := pipeline.NewRunner(
		workers,
		logRepo,
		datasetRepo,
		graphMetaRepo,
		store,
		pipeline.Retention{
			DatasetKeepCount: cfg.Pipeline.DatasetKeepCount,
			GraphKeepCount:   cfg.Pipeline.GraphKeepCount,
		},
		clock,
	)

	var assessor risk.Assessor
	if cfg.Risk.Enabled {
		assessor = riskadapter.NewLocalAssessor(cfg.Risk.RateLimit.Requests, cfg.Risk.RateLimit.Burst)
	}

	med := common.NewMediator()
	if err := common.RegisterHandler[*pipeline.RunPipelineCommand](med, pipeline.NewRunPipelineHandler(runner)); err != nil {
		return nil, err
	}
	if err := common.RegisterHandler[*pipeline.RunWorkerCommand](med, pipeline.NewRunWorkerHandler(runner)); err != nil {
		return nil, err
	}
	planHandler := trips.NewPlanTripHandler(
		store, stopRepo, virtualStopRepo, flightRepo, assessor, clock,
		cfg.Query.Timeout, cfg.Query.MaxAlternatives,
	)
	if err := common.RegisterHandler[*trips.PlanTripQuery](med, planHandler); err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Mediator: med,
		Runner:   runner,
	}, nil
}

// Close releases the store connections.
func (a *App) Close() {
	_ = redis.Close(a.Redis)
	_ = database.Close(a.DB)
}

// orderedWorkers arranges the registered workers per the configured
// order, appending any not mentioned in their default order.
func orderedWorkers(order []string, byID map[string]worker.Worker) []worker.Worker {
	defaultOrder := []string{
		worker.VirtualEntitiesWorkerID,
		worker.AirRoutesWorkerID,
		worker.GraphBuilderWorkerID,
	}

	var out []worker.Worker
	seen := make(map[string]bool)
	for _, id := range order {
		if w, ok := byID[id]; ok && !seen[id] {
			out = append(out, w)
			seen[id] = true
		}
	}
	for _, id := range defaultOrder {
		if !seen[id] {
			out = append(out, byID[id])
		}
	}
	return out
}
