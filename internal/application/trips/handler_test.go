package trips_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/graphstore"
	riskadapter "github.com/sakhatrip/sakhatrip-go/internal/adapters/risk"
	"github.com/sakhatrip/sakhatrip-go/internal/application/trips"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

type tripFixture struct {
	repos    *helpers.Repos
	store    *graphstore.RedisGraphStore
	assessor *riskadapter.MockAssessor
	handler  *trips.PlanTripHandler
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()
	db := helpers.NewTestDB(t)
	repos := helpers.NewRepos(db)
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	assessor := &riskadapter.MockAssessor{}
	clock := shared.NewMockClock(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))

	handler := trips.NewPlanTripHandler(
		store,
		repos.Stops,
		repos.VirtualStops,
		repos.Flights,
		assessor,
		clock,
		5*time.Second,
		2,
	)
	return &tripFixture{repos: repos, store: store, assessor: assessor, handler: handler}
}

// seedDirectFlight persists the two-airport scenario: the hub and Moscow
// connected by a six-hour morning flight.
func (f *tripFixture) seedDirectFlight(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-1", "Якутск", 62.09, 129.77),
		helpers.AirportStop("stop-2", "Москва", 55.97, 37.41),
	}))
	require.NoError(t, f.repos.Flights.SaveBatch(ctx, []*transport.Flight{
		helpers.DailyFlight("flight-1", "stop-1", "stop-2", "08:00", "14:00", 15000, "air-route-1"),
	}))

	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "stop-1", Name: "Аэропорт Якутск", CityID: "якутск", Latitude: 62.09, Longitude: 129.77})
	g.AddNode(graph.Node{ID: "stop-2", Name: "Аэропорт Москва", CityID: "москва", Latitude: 55.97, Longitude: 37.41})
	g.AddEdge("stop-1", "stop-2", 360, graph.EdgeMetadata{
		DistanceKm:    4900,
		TransportType: "PLANE",
		RouteID:       "air-route-1",
	})

	md := &graph.Metadata{Version: "graph-v1", DatasetVersion: "v1", TotalNodes: 2, TotalEdges: 1, Active: true}
	require.NoError(t, f.store.SaveGraph(ctx, "graph-v1", g, md))
}

func planTrip(t *testing.T, f *tripFixture, query *trips.PlanTripQuery) *trips.PlanTripResponse {
	t.Helper()
	resp, err := f.handler.Handle(context.Background(), query)
	require.NoError(t, err)
	return resp.(*trips.PlanTripResponse)
}

func TestPlanTrip_GraphUnavailable(t *testing.T) {
	f := newTripFixture(t)

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 1})

	assert.False(t, resp.Success)
	assert.False(t, resp.GraphAvailable)
	assert.Equal(t, trips.ErrGraphUnavailable, resp.ErrorCode)
}

func TestPlanTrip_ValidationRejectsBadInput(t *testing.T) {
	f := newTripFixture(t)

	for _, query := range []*trips.PlanTripQuery{
		{FromCity: "", ToCity: "Москва", Date: "2025-02-03", Passengers: 1},
		{FromCity: "Якутск", ToCity: "Москва", Date: "03.02.2025", Passengers: 1},
		{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 0},
		{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 101},
	} {
		resp := planTrip(t, f, query)
		assert.False(t, resp.Success)
		assert.Equal(t, trips.ErrValidation, resp.ErrorCode)
	}
}

func TestPlanTrip_NoStopsFound(t *testing.T) {
	f := newTripFixture(t)
	f.seedDirectFlight(t)

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Атлантида", ToCity: "Москва", Date: "2025-02-03", Passengers: 1})

	assert.False(t, resp.Success)
	assert.Equal(t, trips.ErrNoStopsFound, resp.ErrorCode)
}

func TestPlanTrip_GraphOutOfSync(t *testing.T) {
	f := newTripFixture(t)
	f.seedDirectFlight(t)
	ctx := context.Background()

	// A stop known to the database but absent from the active graph
	require.NoError(t, f.repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.GroundStop("stop-3", "Мирный", 62.54, 113.96),
	}))

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Мирный", ToCity: "Москва", Date: "2025-02-03", Passengers: 1})

	assert.False(t, resp.Success)
	assert.Equal(t, trips.ErrGraphOutOfSync, resp.ErrorCode)
	assert.Equal(t, []string{"stop-3"}, resp.MissingNodes)
	assert.True(t, resp.GraphAvailable)
}

func TestPlanTrip_DirectFlight(t *testing.T) {
	f := newTripFixture(t)
	f.seedDirectFlight(t)

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 3})

	require.True(t, resp.Success, resp.Error)
	assert.True(t, resp.GraphAvailable)
	assert.Equal(t, "graph-v1", resp.GraphVersion)
	require.Len(t, resp.Routes, 1)

	route := resp.Routes[0]
	assert.Equal(t, "Якутск", route.FromCity)
	assert.Equal(t, "Москва", route.ToCity)
	assert.Equal(t, "2025-02-03", route.DepartureDate)
	require.Len(t, route.Segments, 1)
	segment := route.Segments[0]
	assert.Equal(t, "Аэропорт Якутск", segment.FromName)
	assert.Equal(t, "Аэропорт Москва", segment.ToName)
	assert.Equal(t, trips.KindAirplane, segment.TransportType)
	assert.Equal(t, float64(360), segment.DurationMinutes)
	assert.Equal(t, "08:00", segment.DepartureTime)
	assert.Equal(t, "14:00", segment.ArrivalTime)

	assert.Equal(t, float64(360), route.TotalDuration)
	assert.Equal(t, float64(45000), route.TotalPriceRub) // 15000 x 3 passengers
	assert.Equal(t, "08:00", route.DepartureTime)
	assert.Equal(t, "14:00", route.ArrivalTime)
	assert.Equal(t, 0, route.TransferCount)

	// Primary route went through the risk scorer
	require.Len(t, f.assessor.Calls, 1)
	assert.NotNil(t, resp.RiskAssessment)
	assert.Equal(t, "2025-02-03", f.assessor.Calls[0].TravelDate)
}

func TestPlanTrip_NoRoute(t *testing.T) {
	f := newTripFixture(t)
	f.seedDirectFlight(t)

	// Reverse direction has no edge
	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Москва", ToCity: "Якутск", Date: "2025-02-03", Passengers: 1})

	assert.False(t, resp.Success)
	assert.Equal(t, trips.ErrNoRoute, resp.ErrorCode)
	assert.True(t, resp.GraphAvailable)
}

func TestPlanTrip_RiskFailureDoesNotFailQuery(t *testing.T) {
	f := newTripFixture(t)
	f.seedDirectFlight(t)
	f.assessor.Err = errors.New("scorer unavailable")

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 1})

	require.True(t, resp.Success, resp.Error)
	assert.Nil(t, resp.RiskAssessment)
}

func TestPlanTrip_AlternativePathSortedByDuration(t *testing.T) {
	f := newTripFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.Stops.SaveBatch(ctx, []*transport.Stop{
		helpers.AirportStop("stop-1", "Якутск", 62.09, 129.77),
		helpers.AirportStop("stop-2", "Москва", 55.97, 37.41),
		helpers.GroundStop("stop-3", "Нерюнгри", 56.66, 124.72),
	}))

	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "stop-1", Name: "Аэропорт Якутск", CityID: "якутск"})
	g.AddNode(graph.Node{ID: "stop-2", Name: "Аэропорт Москва", CityID: "москва"})
	g.AddNode(graph.Node{ID: "stop-3", Name: "Автовокзал Нерюнгри", CityID: "нерюнгри"})
	// Fast direct leg and a slower detour through Neryungri
	g.AddEdge("stop-1", "stop-2", 360, graph.EdgeMetadata{TransportType: "PLANE", RouteID: "r-direct"})
	g.AddEdge("stop-1", "stop-3", 300, graph.EdgeMetadata{TransportType: "BUS", RouteID: "r-leg1"})
	g.AddEdge("stop-3", "stop-2", 300, graph.EdgeMetadata{TransportType: "PLANE", RouteID: "r-leg2"})

	md := &graph.Metadata{Version: "graph-v1", DatasetVersion: "v1", TotalNodes: 3, TotalEdges: 3, Active: true}
	require.NoError(t, f.store.SaveGraph(ctx, "graph-v1", g, md))

	resp := planTrip(t, f, &trips.PlanTripQuery{FromCity: "Якутск", ToCity: "Москва", Date: "2025-02-03", Passengers: 1})

	require.True(t, resp.Success, resp.Error)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, float64(360), resp.Routes[0].TotalDuration)

	require.Len(t, resp.Alternatives, 1)
	assert.Equal(t, float64(600), resp.Alternatives[0].TotalDuration)
	require.Len(t, resp.Alternatives[0].Segments, 2)
}
