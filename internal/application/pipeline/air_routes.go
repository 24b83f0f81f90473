package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
)

const (
	airRouteDurationMinutes = 240
	airRouteDistanceKm      = 2000
	airRouteBaseFareRub     = 15000
	airRouteOperator        = "SakhaTrip Air"
)

var airRouteDepartures = []string{"08:00", "14:00", "20:00"}

// AirRoutesWorker creates scheduled PLANE routes between the hub and every
// federal city that exposes an admissible stop. Each direction is skipped
// independently when a direct real route already connects the endpoints.
type AirRoutesWorker struct {
	datasets  transport.DatasetRepository
	stops     transport.StopRepository
	routes    transport.RouteRepository
	flights   transport.FlightRepository
	directory *reference.Directory
	clock     shared.Clock
}

func NewAirRoutesWorker(
	datasets transport.DatasetRepository,
	stops transport.StopRepository,
	routes transport.RouteRepository,
	flights transport.FlightRepository,
	directory *reference.Directory,
	clock shared.Clock,
) *AirRoutesWorker {
	return &AirRoutesWorker{
		datasets:  datasets,
		stops:     stops,
		routes:    routes,
		flights:   flights,
		directory: directory,
		clock:     clock,
	}
}

func (w *AirRoutesWorker) ID() string {
	return worker.AirRoutesWorkerID
}

// CanRun always permits execution; the per-direction existence checks
// inside Run make repeated runs no-ops.
func (w *AirRoutesWorker) CanRun(ctx context.Context) (bool, string, error) {
	return true, "", nil
}

func (w *AirRoutesWorker) Run(ctx context.Context) worker.Outcome {
	start := w.clock.Now()
	elapsed := func() int64 { return w.clock.Now().Sub(start).Milliseconds() }
	logger := common.WorkerLoggerFromContext(ctx)

	if _, err := w.datasets.GetLatest(ctx); err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return worker.Failure(w.ID(), worker.ErrNoDataset, "no dataset has been ingested yet", elapsed())
		}
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	hub, err := w.resolveHubStop(ctx)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return worker.Failure(w.ID(), worker.ErrNoHubStops,
				fmt.Sprintf("no stops found for hub city %s", reference.HubCityName), elapsed())
		}
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	var newRoutes []*transport.Route
	for _, city := range w.directory.FederalCities() {
		federal, err := w.resolveFederalStop(ctx, city)
		if err != nil {
			return worker.ExecutionFailure(w.ID(), err, elapsed())
		}
		if federal == nil {
			logger.Log("WARN", fmt.Sprintf("no admissible stop for federal city %s, skipping", city.Name), nil)
			continue
		}

		for _, direction := range []struct {
			from, to *transport.Stop
			ordinal  int
		}{
			{hub, federal, 1},
			{federal, hub, 2},
		} {
			exists, err := w.routes.ExistsDirect(ctx, direction.from.ID, direction.to.ID)
			if err != nil {
				return worker.ExecutionFailure(w.ID(), err, elapsed())
			}
			if exists {
				continue
			}
			route, err := w.buildAirRoute(direction.from, direction.to, direction.ordinal)
			if err != nil {
				return worker.ExecutionFailure(w.ID(), err, elapsed())
			}
			newRoutes = append(newRoutes, route)
		}
	}

	if len(newRoutes) == 0 {
		return worker.Success(w.ID(), "all air routes already exist", elapsed())
	}

	if err := w.routes.SaveBatch(ctx, newRoutes); err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	flights := w.generateWeeklyTimetable(newRoutes)
	if err := w.flights.SaveBatch(ctx, flights); err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	logger.Log("INFO", fmt.Sprintf("created %d air routes with %d flights", len(newRoutes), len(flights)), nil)

	out := worker.Success(w.ID(),
		fmt.Sprintf("created %d air routes and %d flights", len(newRoutes), len(flights)),
		elapsed())
	out.NextWorker = worker.GraphBuilderWorkerID
	out.DataProcessed = &worker.DataProcessed{Added: len(newRoutes) + len(flights)}
	return out
}

// resolveHubStop picks the hub city's airport stop, falling back to the
// first hub stop when none is an airport.
func (w *AirRoutesWorker) resolveHubStop(ctx context.Context) (*transport.Stop, error) {
	hubStops, err := w.stops.FindByCityID(ctx, reference.HubCityID())
	if err != nil {
		return nil, err
	}
	if len(hubStops) == 0 {
		return nil, shared.NewNotFoundError("stop", reference.HubCityID())
	}
	for _, s := range hubStops {
		if s.IsAirport {
			return s, nil
		}
	}
	return hubStops[0], nil
}

// resolveFederalStop returns the city's first admissible stop, airports
// first. A nil stop with nil error means the city has none.
func (w *AirRoutesWorker) resolveFederalStop(ctx context.Context, city reference.UnifiedCity) (*transport.Stop, error) {
	stops, err := w.stops.FindByCityID(ctx, reference.NormalizeCityName(city.Name))
	if err != nil {
		return nil, err
	}

	var candidates []*transport.Stop
	for _, s := range stops {
		if transport.AdmitStop(s.Record(), w.directory) == nil {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	for _, s := range candidates {
		if s.IsAirport {
			return s, nil
		}
	}
	return candidates[0], nil
}

func (w *AirRoutesWorker) buildAirRoute(from, to *transport.Stop, direction int) (*transport.Route, error) {
	id, err := transport.AirRouteID(from.CityID, to.CityID, direction)
	if err != nil {
		return nil, fmt.Errorf("failed to derive air route id %s->%s: %w", from.ID, to.ID, err)
	}
	now := w.clock.Now()
	return &transport.Route{
		ID:            id,
		TransportType: transport.TransportPlane,
		FromStopID:    from.ID,
		ToStopID:      to.ID,
		Stops: []transport.RouteStop{
			{StopID: from.ID, Sequence: 1},
			{StopID: to.ID, Sequence: 2},
		},
		DurationMinutes: airRouteDurationMinutes,
		DistanceKm:      airRouteDistanceKm,
		Operator:        airRouteOperator,
		Metadata:        map[string]string{"baseFare": fmt.Sprintf("%d", airRouteBaseFareRub)},
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// generateWeeklyTimetable emits one flight per ISO weekday per departure
// slot for each route
func (w *AirRoutesWorker) generateWeeklyTimetable(routes []*transport.Route) []*transport.Flight {
	var flights []*transport.Flight
	for _, route := range routes {
		for day := 1; day <= 7; day++ {
			for _, departure := range airRouteDepartures {
				depMinutes, err := transport.ParseClock(departure)
				if err != nil {
					continue
				}
				flights = append(flights, &transport.Flight{
					ID:            transport.FlightID(route.ID, day, departure),
					FromStopID:    route.FromStopID,
					ToStopID:      route.ToStopID,
					DepartureTime: departure,
					ArrivalTime:   transport.FormatClock(depMinutes + airRouteDurationMinutes),
					DaysOfWeek:    []int{day},
					RouteID:       route.ID,
					PriceRub:      airRouteBaseFareRub,
					IsVirtual:     false,
					TransportType: transport.TransportPlane,
				})
			}
		}
	}
	return flights
}
