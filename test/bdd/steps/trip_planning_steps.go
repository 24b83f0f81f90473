package steps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cucumber/godog"
	messages "github.com/cucumber/messages/go/v21"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/graphstore"
	riskadapter "github.com/sakhatrip/sakhatrip-go/internal/adapters/risk"
	"github.com/sakhatrip/sakhatrip-go/internal/application/trips"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/infrastructure/database"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

type tripPlanningContext struct {
	redisServer *miniredis.Miniredis
	repos       *helpers.Repos
	store       *graphstore.RedisGraphStore
	handler     *trips.PlanTripHandler

	stops    map[string]*transport.Stop
	response *trips.PlanTripResponse
}

func (tc *tripPlanningContext) reset() error {
	if tc.redisServer != nil {
		tc.redisServer.Close()
	}

	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}
	tc.repos = helpers.NewRepos(db)

	tc.redisServer, err = miniredis.Run()
	if err != nil {
		return err
	}
	client := goredis.NewClient(&goredis.Options{Addr: tc.redisServer.Addr()})
	tc.store = graphstore.NewRedisGraphStore(client)

	clock := shared.NewMockClock(time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))
	tc.handler = trips.NewPlanTripHandler(
		tc.store,
		tc.repos.Stops,
		tc.repos.VirtualStops,
		tc.repos.Flights,
		&riskadapter.MockAssessor{},
		clock,
		5*time.Second,
		2,
	)

	tc.stops = make(map[string]*transport.Stop)
	tc.response = nil
	return nil
}

// dataRows returns the table body, skipping the header row.
func dataRows(table *godog.Table) []*messages.PickleTableRow {
	if len(table.Rows) < 2 {
		return nil
	}
	return table.Rows[1:]
}

// Setup steps

func (tc *tripPlanningContext) theFollowingStops(table *godog.Table) error {
	ctx := context.Background()
	batch := make([]*transport.Stop, 0, len(table.Rows))
	for _, row := range dataRows(table) {
		id := row.Cells[0].Value
		city := row.Cells[1].Value
		isAirport := row.Cells[2].Value == "yes"
		lat, _ := strconv.ParseFloat(row.Cells[3].Value, 64)
		lon, _ := strconv.ParseFloat(row.Cells[4].Value, 64)

		var stop *transport.Stop
		if isAirport {
			stop = helpers.AirportStop(id, city, lat, lon)
		} else {
			stop = helpers.GroundStop(id, city, lat, lon)
		}
		tc.stops[id] = stop
		batch = append(batch, stop)
	}
	return tc.repos.Stops.SaveBatch(ctx, batch)
}

func (tc *tripPlanningContext) anActiveGraphWithEdges(table *godog.Table) error {
	g := graph.NewGraph()
	edges := 0
	for _, row := range dataRows(table) {
		from := row.Cells[0].Value
		to := row.Cells[1].Value
		minutes, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return fmt.Errorf("bad minutes in edge table: %w", err)
		}
		tt := row.Cells[3].Value
		routeID := row.Cells[4].Value

		for _, id := range []string{from, to} {
			stop, ok := tc.stops[id]
			if !ok {
				return fmt.Errorf("edge references unknown stop %s", id)
			}
			g.AddNode(graph.Node{
				ID:        stop.ID,
				Name:      stop.Name,
				CityID:    stop.CityID,
				Latitude:  stop.Latitude,
				Longitude: stop.Longitude,
			})
		}
		g.AddEdge(from, to, minutes, graph.EdgeMetadata{TransportType: tt, RouteID: routeID})
		edges++
	}

	md := &graph.Metadata{
		Version:        "graph-v1",
		DatasetVersion: "v1",
		TotalNodes:     len(tc.stops),
		TotalEdges:     edges,
		Active:         true,
	}
	return tc.store.SaveGraph(context.Background(), "graph-v1", g, md)
}

func (tc *tripPlanningContext) aDailyFlight(id, from, to, dep, arr string, price int, routeID string) error {
	return tc.repos.Flights.SaveBatch(context.Background(), []*transport.Flight{
		helpers.DailyFlight(id, from, to, dep, arr, float64(price), routeID),
	})
}

// Action steps

func (tc *tripPlanningContext) iPlanATrip(from, to, date string, passengers int) error {
	resp, err := tc.handler.Handle(context.Background(), &trips.PlanTripQuery{
		FromCity:   from,
		ToCity:     to,
		Date:       date,
		Passengers: passengers,
	})
	if err != nil {
		return err
	}
	tc.response = resp.(*trips.PlanTripResponse)
	return nil
}

// Assertion steps

func (tc *tripPlanningContext) theQueryShouldSucceed() error {
	if tc.response == nil {
		return fmt.Errorf("no query was executed")
	}
	if !tc.response.Success {
		return fmt.Errorf("query failed with %s: %s", tc.response.ErrorCode, tc.response.Error)
	}
	return nil
}

func (tc *tripPlanningContext) theQueryShouldFailWithCode(code string) error {
	if tc.response == nil {
		return fmt.Errorf("no query was executed")
	}
	if tc.response.Success {
		return fmt.Errorf("expected failure %s but the query succeeded", code)
	}
	if tc.response.ErrorCode != code {
		return fmt.Errorf("expected error code %s, got %s", code, tc.response.ErrorCode)
	}
	return nil
}

func (tc *tripPlanningContext) bestRoute() (*trips.TripRoute, error) {
	if tc.response == nil || len(tc.response.Routes) == 0 {
		return nil, fmt.Errorf("no routes in the response")
	}
	return &tc.response.Routes[0], nil
}

func (tc *tripPlanningContext) theBestRouteShouldTake(minutes float64, transfers int) error {
	route, err := tc.bestRoute()
	if err != nil {
		return err
	}
	if route.TotalDuration != minutes {
		return fmt.Errorf("expected %v minutes, got %v", minutes, route.TotalDuration)
	}
	if route.TransferCount != transfers {
		return fmt.Errorf("expected %d transfers, got %d", transfers, route.TransferCount)
	}
	return nil
}

func (tc *tripPlanningContext) theBestRouteShouldCost(rubles float64) error {
	route, err := tc.bestRoute()
	if err != nil {
		return err
	}
	if route.TotalPriceRub != rubles {
		return fmt.Errorf("expected %v rubles, got %v", rubles, route.TotalPriceRub)
	}
	return nil
}

func (tc *tripPlanningContext) theBestRouteShouldDepartAndArrive(dep, arr string) error {
	route, err := tc.bestRoute()
	if err != nil {
		return err
	}
	if route.DepartureTime != dep || route.ArrivalTime != arr {
		return fmt.Errorf("expected %s -> %s, got %s -> %s", dep, arr, route.DepartureTime, route.ArrivalTime)
	}
	return nil
}

func (tc *tripPlanningContext) anAlternativeRouteShouldTake(minutes float64) error {
	if tc.response == nil {
		return fmt.Errorf("no query was executed")
	}
	for _, alt := range tc.response.Alternatives {
		if alt.TotalDuration == minutes {
			return nil
		}
	}
	return fmt.Errorf("no alternative taking %v minutes among %d alternatives", minutes, len(tc.response.Alternatives))
}

func (tc *tripPlanningContext) theMissingNodesShouldInclude(nodeID string) error {
	if tc.response == nil {
		return fmt.Errorf("no query was executed")
	}
	for _, id := range tc.response.MissingNodes {
		if id == nodeID {
			return nil
		}
	}
	return fmt.Errorf("node %s not in missing nodes %v", nodeID, tc.response.MissingNodes)
}

// InitializeTripPlanningScenario registers the trip planning steps.
func InitializeTripPlanningScenario(sc *godog.ScenarioContext) {
	tc := &tripPlanningContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})

	sc.Step(`^the following stops:$`, tc.theFollowingStops)
	sc.Step(`^an active graph with edges:$`, tc.anActiveGraphWithEdges)
	sc.Step(`^a daily flight "([^"]*)" from "([^"]*)" to "([^"]*)" departing "([^"]*)" arriving "([^"]*)" for (\d+) rubles on route "([^"]*)"$`, tc.aDailyFlight)
	sc.Step(`^I plan a trip from "([^"]*)" to "([^"]*)" on "([^"]*)" for (\d+) passengers?$`, tc.iPlanATrip)
	sc.Step(`^the query should succeed$`, tc.theQueryShouldSucceed)
	sc.Step(`^the query should fail with code "([^"]*)"$`, tc.theQueryShouldFailWithCode)
	sc.Step(`^the best route should take (\d+) minutes with (\d+) transfers$`, tc.theBestRouteShouldTake)
	sc.Step(`^the best route should cost (\d+) rubles$`, tc.theBestRouteShouldCost)
	sc.Step(`^the best route should depart at "([^"]*)" and arrive at "([^"]*)"$`, tc.theBestRouteShouldDepartAndArrive)
	sc.Step(`^an alternative route should take (\d+) minutes$`, tc.anAlternativeRouteShouldTake)
	sc.Step(`^the missing nodes should include "([^"]*)"$`, tc.theMissingNodesShouldInclude)
}
