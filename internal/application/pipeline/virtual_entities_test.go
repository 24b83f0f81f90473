package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/application/pipeline"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

func newVirtualEntitiesWorker(t *testing.T, repos *helpers.Repos, clock shared.Clock) *pipeline.VirtualEntitiesWorker {
	t.Helper()
	return pipeline.NewVirtualEntitiesWorker(
		repos.Datasets,
		repos.Stops,
		repos.VirtualStops,
		repos.Routes,
		repos.VirtualRoutes,
		repos.Flights,
		helpers.TestDirectory(),
		clock,
	)
}

func TestVirtualEntitiesWorker_NoDataset(t *testing.T) {
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	w := newVirtualEntitiesWorker(t, repos, shared.NewMockClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)))

	outcome := w.Run(context.Background())

	assert.False(t, outcome.Success)
	assert.Equal(t, worker.ErrNoDataset, outcome.ErrorCode)
}

func TestVirtualEntitiesWorker_CreatesStopsForUncoveredCities(t *testing.T) {
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	ctx := context.Background()

	helpers.SeedDataset(t, repos, "v1")
	require.NoError(t, repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-yakutsk-air", "Якутск", 62.09, 129.77),
	}))

	clock := shared.NewMockClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	w := newVirtualEntitiesWorker(t, repos, clock)

	canRun, _, err := w.CanRun(ctx)
	require.NoError(t, err)
	require.True(t, canRun)

	outcome := w.Run(ctx)
	require.True(t, outcome.Success, outcome.Error)
	assert.Equal(t, worker.GraphBuilderWorkerID, outcome.NextWorker)

	// Every reference city without a real stop got a virtual one
	virtualStops, err := repos.VirtualStops.FindAll(ctx)
	require.NoError(t, err)
	cities := make(map[string]bool)
	for _, vs := range virtualStops {
		cities[vs.CityID] = true
		assert.Contains(t, vs.ID, "virtual-stop-")
		assert.Equal(t, transport.GridMain, vs.GridType)
	}
	assert.False(t, cities["якутск"], "hub has a real stop, no virtual needed")
	for _, city := range []string{"мирный", "нерюнгри", "москва", "новосибирск"} {
		assert.True(t, cities[city], "expected virtual stop for %s", city)
	}
}

func TestVirtualEntitiesWorker_FederalHubLegsArePlane(t *testing.T) {
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	ctx := context.Background()

	helpers.SeedDataset(t, repos, "v1")
	require.NoError(t, repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-yakutsk-air", "Якутск", 62.09, 129.77),
	}))

	clock := shared.NewMockClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	outcome := newVirtualEntitiesWorker(t, repos, clock).Run(ctx)
	require.True(t, outcome.Success, outcome.Error)

	routes, err := repos.VirtualRoutes.FindAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, routes)

	byPair := make(map[string]*transport.VirtualRoute)
	for _, r := range routes {
		assert.Equal(t, transport.ModeShuttle, r.TransportMode)
		byPair[r.FromStopID+"->"+r.ToStopID] = r
	}

	moscow := "virtual-stop-москва"
	hub := "stop-yakutsk-air"
	outbound, ok := byPair[moscow+"->"+hub]
	require.True(t, ok, "expected Moscow->hub leg")
	assert.Equal(t, string(transport.TransportPlane), outbound.TransportTag())
	assert.Equal(t, 240, outbound.DurationMinutes)

	mirny := "virtual-stop-мирный"
	shuttle, ok := byPair[mirny+"->"+hub]
	require.True(t, ok, "expected Mirny->hub leg")
	assert.Equal(t, string(transport.TransportBus), shuttle.TransportTag())
	assert.GreaterOrEqual(t, shuttle.DurationMinutes, 60)
}

func TestVirtualEntitiesWorker_GeneratesYearOfFlights(t *testing.T) {
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	ctx := context.Background()

	helpers.SeedDataset(t, repos, "v1")
	require.NoError(t, repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-yakutsk-air", "Якутск", 62.09, 129.77),
	}))

	clock := shared.NewMockClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	outcome := newVirtualEntitiesWorker(t, repos, clock).Run(ctx)
	require.True(t, outcome.Success, outcome.Error)

	routes, err := repos.VirtualRoutes.FindAll(ctx)
	require.NoError(t, err)
	flightCount, err := repos.Flights.CountAll(ctx)
	require.NoError(t, err)

	// Two departures per day for a year on every synthesized route
	assert.Equal(t, int64(len(routes)*730), flightCount)

	flights, err := repos.Flights.FindBetweenStops(ctx, routes[0].FromStopID, routes[0].ToStopID, clock.Now())
	require.NoError(t, err)
	require.NotEmpty(t, flights)
	assert.Equal(t, "08:00", flights[0].DepartureTime)
	assert.True(t, flights[0].IsVirtual)
	assert.Equal(t, float64(1000), flights[0].PriceRub)

	// Statistics were refreshed on the dataset
	dataset, err := repos.Datasets.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int(flightCount), dataset.Statistics.TotalFlights)
	assert.Equal(t, len(routes), dataset.Statistics.TotalVirtualRoutes)
}

func TestVirtualEntitiesWorker_SecondRunIsBlocked(t *testing.T) {
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	ctx := context.Background()

	helpers.SeedDataset(t, repos, "v1")
	require.NoError(t, repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-yakutsk-air", "Якутск", 62.09, 129.77),
	}))

	clock := shared.NewMockClock(time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC))
	w := newVirtualEntitiesWorker(t, repos, clock)
	require.True(t, w.Run(ctx).Success)

	canRun, reason, err := w.CanRun(ctx)
	require.NoError(t, err)
	assert.False(t, canRun)
	assert.Contains(t, reason, "already exist")
}
