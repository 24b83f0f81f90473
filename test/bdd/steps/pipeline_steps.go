package steps

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cucumber/godog"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/graphstore"
	"github.com/sakhatrip/sakhatrip-go/internal/application/pipeline"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/database"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

type pipelineContext struct {
	redisServer *miniredis.Miniredis
	repos       *helpers.Repos
	workers     map[string]worker.Worker

	outcome *worker.Outcome
}

func (pc *pipelineContext) reset() error {
	if pc.redisServer != nil {
		pc.redisServer.Close()
	}

	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}
	pc.repos = helpers.NewRepos(db)

	pc.redisServer, err = miniredis.Run()
	if err != nil {
		return err
	}
	client := goredis.NewClient(&goredis.Options{Addr: pc.redisServer.Addr()})
	store := graphstore.NewRedisGraphStore(client)

	directory := helpers.TestDirectory()
	clock := shared.NewMockClock(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))

	pc.workers = map[string]worker.Worker{
		worker.VirtualEntitiesWorkerID: pipeline.NewVirtualEntitiesWorker(
			pc.repos.Datasets, pc.repos.Stops, pc.repos.VirtualStops,
			pc.repos.Routes, pc.repos.VirtualRoutes, pc.repos.Flights,
			directory, clock,
		),
		worker.AirRoutesWorkerID: pipeline.NewAirRoutesWorker(
			pc.repos.Datasets, pc.repos.Stops, pc.repos.Routes, pc.repos.Flights,
			directory, clock,
		),
		worker.GraphBuilderWorkerID: pipeline.NewGraphBuilderWorker(
			pc.repos.Datasets, pc.repos.Stops, pc.repos.VirtualStops,
			pc.repos.Routes, pc.repos.VirtualRoutes, pc.repos.Flights,
			store, pc.repos.GraphMetadata, directory, clock,
		),
	}
	pc.outcome = nil
	return nil
}

// Setup steps

func (pc *pipelineContext) anActiveDataset(version string) error {
	ctx := context.Background()
	dataset := &transport.Dataset{
		Version:     version,
		Source:      transport.SourceMock,
		ContentHash: "hash-" + version,
		CreatedAt:   time.Now(),
	}
	if err := pc.repos.Datasets.Save(ctx, dataset); err != nil {
		return err
	}
	return pc.repos.Datasets.SetActive(ctx, version)
}

func (pc *pipelineContext) aRealAirportStop(id, city string) error {
	return pc.repos.Stops.SaveBatch(context.Background(), []*transport.Stop{
		helpers.AirportStop(id, city, 62.0, 129.0),
	})
}

// Action steps

func (pc *pipelineContext) iRunTheWorker(workerID string) error {
	w, ok := pc.workers[workerID]
	if !ok {
		return fmt.Errorf("unknown worker %s", workerID)
	}
	outcome := w.Run(context.Background())
	pc.outcome = &outcome
	return nil
}

// Assertion steps

func (pc *pipelineContext) theWorkerShouldSucceed() error {
	if pc.outcome == nil {
		return fmt.Errorf("no worker was run")
	}
	if !pc.outcome.Success {
		return fmt.Errorf("worker failed with %s: %s %s", pc.outcome.ErrorCode, pc.outcome.Message, pc.outcome.Error)
	}
	return nil
}

func (pc *pipelineContext) theWorkerShouldFailWithCode(code string) error {
	if pc.outcome == nil {
		return fmt.Errorf("no worker was run")
	}
	if pc.outcome.Success {
		return fmt.Errorf("expected failure %s but the worker succeeded", code)
	}
	if string(pc.outcome.ErrorCode) != code {
		return fmt.Errorf("expected error code %s, got %s", code, pc.outcome.ErrorCode)
	}
	return nil
}

func (pc *pipelineContext) aVirtualStopShouldExistForCity(cityID string) error {
	stops, err := pc.repos.VirtualStops.FindByCityID(context.Background(), cityID)
	if err != nil {
		return err
	}
	if len(stops) == 0 {
		return fmt.Errorf("no virtual stop for city %s", cityID)
	}
	return nil
}

func (pc *pipelineContext) noVirtualStopShouldExistForCity(cityID string) error {
	stops, err := pc.repos.VirtualStops.FindByCityID(context.Background(), cityID)
	if err != nil {
		return err
	}
	if len(stops) != 0 {
		return fmt.Errorf("expected no virtual stop for city %s, found %d", cityID, len(stops))
	}
	return nil
}

func (pc *pipelineContext) planeRoutesShouldExistBetween(count int, stopA, stopB string) error {
	routes, err := pc.repos.Routes.FindAll(context.Background())
	if err != nil {
		return err
	}
	found := 0
	for _, r := range routes {
		if r.TransportType != transport.TransportPlane {
			continue
		}
		if (r.FromStopID == stopA && r.ToStopID == stopB) || (r.FromStopID == stopB && r.ToStopID == stopA) {
			found++
		}
	}
	if found != count {
		return fmt.Errorf("expected %d plane routes between %s and %s, found %d", count, stopA, stopB, found)
	}
	return nil
}

// InitializePipelineScenario registers the dataset pipeline steps.
func InitializePipelineScenario(sc *godog.ScenarioContext) {
	pc := &pipelineContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, pc.reset()
	})

	sc.Step(`^an active dataset "([^"]*)"$`, pc.anActiveDataset)
	sc.Step(`^a real airport stop "([^"]*)" in "([^"]*)"$`, pc.aRealAirportStop)
	sc.Step(`^I run the "([^"]*)" worker$`, pc.iRunTheWorker)
	sc.Step(`^the worker should succeed$`, pc.theWorkerShouldSucceed)
	sc.Step(`^the worker should fail with code "([^"]*)"$`, pc.theWorkerShouldFailWithCode)
	sc.Step(`^a virtual stop should exist for city "([^"]*)"$`, pc.aVirtualStopShouldExistForCity)
	sc.Step(`^no virtual stop should exist for city "([^"]*)"$`, pc.noVirtualStopShouldExistForCity)
	sc.Step(`^(\d+) plane routes should exist between "([^"]*)" and "([^"]*)"$`, pc.planeRoutesShouldExistBetween)
}
