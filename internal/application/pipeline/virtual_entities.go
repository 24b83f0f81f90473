package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
	"github.com/sakhatrip/sakhatrip-go/pkg/geo"
)

// Fixed leg durations for synthesized inter-city connectivity, in minutes
const (
	federalHubFlightMinutes  = 240
	hubYakutiaBusMinutes     = 180
	federalFederalPlaneMin   = 180
	defaultVirtualFlightFare = 1000
)

// Daily departures generated for every virtual route, one year ahead
var virtualDepartureTimes = []string{"08:00", "16:00"}

const virtualScheduleDays = 365

// VirtualEntitiesWorker synthesizes virtual stops, routes and flights so
// that every city of the unified reference is reachable in the graph.
// Runs once per dataset: the presence of any virtual stop blocks re-runs.
type VirtualEntitiesWorker struct {
	datasets      transport.DatasetRepository
	stops         transport.StopRepository
	virtualStops  transport.VirtualStopRepository
	routes        transport.RouteRepository
	virtualRoutes transport.VirtualRouteRepository
	flights       transport.FlightRepository
	directory     *reference.Directory
	clock         shared.Clock
}

// NewVirtualEntitiesWorker wires the worker's repositories
func NewVirtualEntitiesWorker(
	datasets transport.DatasetRepository,
	stops transport.StopRepository,
	virtualStops transport.VirtualStopRepository,
	routes transport.RouteRepository,
	virtualRoutes transport.VirtualRouteRepository,
	flights transport.FlightRepository,
	directory *reference.Directory,
	clock shared.Clock,
) *VirtualEntitiesWorker {
	return &VirtualEntitiesWorker{
		datasets:      datasets,
		stops:         stops,
		virtualStops:  virtualStops,
		routes:        routes,
		virtualRoutes: virtualRoutes,
		flights:       flights,
		directory:     directory,
		clock:         clock,
	}
}

func (w *VirtualEntitiesWorker) ID() string {
	return worker.VirtualEntitiesWorkerID
}

// CanRun is the idempotence guard: virtual entities are generated at most
// once; regeneration requires deleting the whole set first.
func (w *VirtualEntitiesWorker) CanRun(ctx context.Context) (bool, string, error) {
	count, err := w.virtualStops.CountAll(ctx)
	if err != nil {
		return false, "", fmt.Errorf("failed to count virtual stops: %w", err)
	}
	if count > 0 {
		return false, fmt.Sprintf("virtual stops already exist (%d), delete them to regenerate", count), nil
	}
	return true, "", nil
}

func (w *VirtualEntitiesWorker) Run(ctx context.Context) worker.Outcome {
	start := w.clock.Now()
	elapsed := func() int64 { return w.clock.Now().Sub(start).Milliseconds() }

	dataset, err := w.datasets.GetLatest(ctx)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return worker.Failure(w.ID(), worker.ErrNoDataset, "no dataset has been ingested yet", elapsed())
		}
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	added, err := w.execute(ctx, dataset)
	if err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	out := worker.Success(w.ID(),
		fmt.Sprintf("generated %d virtual stops, %d virtual routes, %d virtual flights",
			added.stops, added.routes, added.flights),
		elapsed())
	out.NextWorker = worker.GraphBuilderWorkerID
	out.DataProcessed = &worker.DataProcessed{Added: added.stops + added.routes + added.flights}
	return out
}

type virtualAdditions struct {
	stops   int
	routes  int
	flights int
}

// cityStop is the representative endpoint a city exposes to synthesized
// connectivity
type cityStop struct {
	id        string
	name      string
	latitude  float64
	longitude float64
	isVirtual bool
}

func (w *VirtualEntitiesWorker) execute(ctx context.Context, dataset *transport.Dataset) (virtualAdditions, error) {
	logger := common.WorkerLoggerFromContext(ctx)
	var added virtualAdditions

	realStops, err := w.stops.FindAll(ctx)
	if err != nil {
		return added, err
	}

	// Cities covered by real stops, by normalized cityId
	realByCity := make(map[string][]*transport.Stop)
	for _, s := range realStops {
		cityID := reference.NormalizeCityName(s.CityID)
		if cityID != "" {
			realByCity[cityID] = append(realByCity[cityID], s)
		}
	}

	// 1. Virtual stops for reference cities without any real stop
	created, err := w.createVirtualStops(ctx, realByCity)
	if err != nil {
		return added, err
	}
	added.stops = len(created)
	logger.Log("INFO", fmt.Sprintf("created %d virtual stops", len(created)), nil)

	// 2. Hub-spoke (or full-mesh) virtual routes for the created stops
	newRoutes, err := w.connectVirtualStopsToHub(ctx, realByCity, created)
	if err != nil {
		return added, err
	}

	// 3. City-pair connectivity over every city that now has a stop
	pairRoutes, err := w.ensureCityPairConnectivity(ctx, realByCity, created, newRoutes)
	if err != nil {
		return added, err
	}
	newRoutes = append(newRoutes, pairRoutes...)

	if err := w.virtualRoutes.SaveBatch(ctx, newRoutes); err != nil {
		return added, err
	}
	added.routes = len(newRoutes)
	logger.Log("INFO", fmt.Sprintf("created %d virtual routes", len(newRoutes)), nil)

	// 4. Daily departures for one year ahead on every synthesized route
	flights := w.generateVirtualFlights(newRoutes)
	if err := w.flights.SaveBatch(ctx, flights); err != nil {
		return added, err
	}
	added.flights = len(flights)
	logger.Log("INFO", fmt.Sprintf("created %d virtual flights", len(flights)), nil)

	// 5. Refresh dataset totals
	if err := w.updateStatistics(ctx, dataset); err != nil {
		return added, err
	}

	return added, nil
}

func (w *VirtualEntitiesWorker) createVirtualStops(ctx context.Context, realByCity map[string][]*transport.Stop) ([]*transport.VirtualStop, error) {
	now := w.clock.Now()
	var created []*transport.VirtualStop

	for _, city := range w.directory.All() {
		cityID := reference.NormalizeCityName(city.Name)
		if len(realByCity[cityID]) > 0 {
			continue
		}
		id, err := transport.VirtualStopID(city.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to derive virtual stop id for %s: %w", city.Name, err)
		}
		created = append(created, &transport.VirtualStop{
			ID:        id,
			Name:      "г. " + city.Name,
			Latitude:  city.Latitude,
			Longitude: city.Longitude,
			GridType:  transport.GridMain,
			CityID:    cityID,
			CreatedAt: now,
		})
	}

	if err := w.virtualStops.SaveBatch(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// connectVirtualStopsToHub links every created virtual stop to the hub
// stop in both directions. Without a hub the created stops form a full
// mesh instead so no city is left unreachable.
func (w *VirtualEntitiesWorker) connectVirtualStopsToHub(ctx context.Context, realByCity map[string][]*transport.Stop, created []*transport.VirtualStop) ([]*transport.VirtualRoute, error) {
	hub := w.resolveHub(realByCity, created)
	var routes []*transport.VirtualRoute
	seen := make(map[string]struct{})

	if hub == nil {
		log.Printf("[%s] no hub stop found, falling back to a full mesh of %d virtual stops", w.ID(), len(created))
		for _, a := range created {
			for _, b := range created {
				if a.ID == b.ID {
					continue
				}
				route, err := w.buildVirtualRoute(stopFromVirtual(a), stopFromVirtual(b), "", 0, seen)
				if err != nil {
					return nil, err
				}
				if route != nil {
					routes = append(routes, route)
				}
			}
		}
		return routes, nil
	}

	for _, vs := range created {
		if vs.ID == hub.id {
			continue
		}
		// Federal cities fly to the hub; Yakutia towns ride a shuttle bus
		// timed by distance
		tag, duration := "", 0
		if w.isFederal(vs.CityID) {
			tag, duration = string(transport.TransportPlane), federalHubFlightMinutes
		}
		forward, err := w.buildVirtualRoute(stopFromVirtual(vs), *hub, tag, duration, seen)
		if err != nil {
			return nil, err
		}
		backward, err := w.buildVirtualRoute(*hub, stopFromVirtual(vs), tag, duration, seen)
		if err != nil {
			return nil, err
		}
		if forward != nil {
			routes = append(routes, forward)
		}
		if backward != nil {
			routes = append(routes, backward)
		}
	}
	return routes, nil
}

// resolveHub picks the hub city's stop, real preferred over virtual
func (w *VirtualEntitiesWorker) resolveHub(realByCity map[string][]*transport.Stop, created []*transport.VirtualStop) *cityStop {
	hubID := reference.HubCityID()
	if hubStops := realByCity[hubID]; len(hubStops) > 0 {
		s := preferredRealStop(hubStops)
		return &cityStop{id: s.ID, name: s.Name, latitude: s.Latitude, longitude: s.Longitude}
	}
	for _, vs := range created {
		if vs.CityID == hubID {
			hub := stopFromVirtual(vs)
			return &hub
		}
	}
	return nil
}

// ensureCityPairConnectivity walks every unordered pair of cities with a
// stop and synthesizes the missing legs per the hub routing policy.
func (w *VirtualEntitiesWorker) ensureCityPairConnectivity(ctx context.Context, realByCity map[string][]*transport.Stop, created []*transport.VirtualStop, existing []*transport.VirtualRoute) ([]*transport.VirtualRoute, error) {
	hubID := reference.HubCityID()

	mains := w.mainStopsByCity(realByCity, created)
	cities := make([]string, 0, len(mains))
	for cityID := range mains {
		cities = append(cities, cityID)
	}
	sort.Strings(cities)

	seen := make(map[string]struct{})
	for _, r := range existing {
		seen[pairKey(r.FromStopID, r.ToStopID)] = struct{}{}
	}

	hubMain, hasHub := mains[hubID]

	var routes []*transport.VirtualRoute
	addLeg := func(from, to cityStop, tag string, durationMin int) error {
		exists, err := w.legExists(ctx, from.id, to.id, seen)
		if err != nil || exists {
			return err
		}
		route, err := w.buildVirtualRoute(from, to, tag, durationMin, seen)
		if err != nil {
			return err
		}
		if route != nil {
			routes = append(routes, route)
		}
		return nil
	}

	for i := 0; i < len(cities); i++ {
		for j := i + 1; j < len(cities); j++ {
			a, b := cities[i], cities[j]
			stopA, stopB := mains[a], mains[b]

			connected, err := w.pairConnected(ctx, stopA.id, stopB.id, seen)
			if err != nil {
				return nil, err
			}
			if connected {
				continue
			}

			aFederal := w.isFederal(a)
			bFederal := w.isFederal(b)

			switch {
			case aFederal != bFederal:
				// Federal to Yakutia runs through the hub
				fed, yak := stopA, stopB
				yakCity := b
				if bFederal {
					fed, yak = stopB, stopA
					yakCity = a
				}
				if yakCity == hubID {
					if err := addLeg(fed, yak, string(transport.TransportPlane), federalHubFlightMinutes); err != nil {
						return nil, err
					}
					if err := addLeg(yak, fed, string(transport.TransportPlane), federalHubFlightMinutes); err != nil {
						return nil, err
					}
					continue
				}
				if !hasHub {
					// No hub to route through, connect directly
					if err := addLeg(fed, yak, string(transport.TransportPlane), federalHubFlightMinutes); err != nil {
						return nil, err
					}
					if err := addLeg(yak, fed, string(transport.TransportPlane), federalHubFlightMinutes); err != nil {
						return nil, err
					}
					continue
				}
				for _, leg := range [][2]cityStop{{fed, hubMain}, {hubMain, fed}} {
					if err := addLeg(leg[0], leg[1], string(transport.TransportPlane), federalHubFlightMinutes); err != nil {
						return nil, err
					}
				}
				for _, leg := range [][2]cityStop{{hubMain, yak}, {yak, hubMain}} {
					if err := addLeg(leg[0], leg[1], string(transport.TransportBus), hubYakutiaBusMinutes); err != nil {
						return nil, err
					}
				}

			case aFederal && bFederal:
				if err := addLeg(stopA, stopB, string(transport.TransportPlane), federalFederalPlaneMin); err != nil {
					return nil, err
				}
				if err := addLeg(stopB, stopA, string(transport.TransportPlane), federalFederalPlaneMin); err != nil {
					return nil, err
				}

			default:
				// Yakutia pair: direct bus, duration from distance
				if err := addLeg(stopA, stopB, string(transport.TransportBus), 0); err != nil {
					return nil, err
				}
				if err := addLeg(stopB, stopA, string(transport.TransportBus), 0); err != nil {
					return nil, err
				}
			}
		}
	}
	return routes, nil
}

// mainStopsByCity selects each city's representative stop: airport, then
// railway station, then the first real stop, then the virtual stop
func (w *VirtualEntitiesWorker) mainStopsByCity(realByCity map[string][]*transport.Stop, created []*transport.VirtualStop) map[string]cityStop {
	mains := make(map[string]cityStop)
	for cityID, stops := range realByCity {
		s := preferredRealStop(stops)
		mains[cityID] = cityStop{id: s.ID, name: s.Name, latitude: s.Latitude, longitude: s.Longitude}
	}
	for _, vs := range created {
		if _, ok := mains[vs.CityID]; !ok {
			mains[vs.CityID] = stopFromVirtual(vs)
		}
	}
	return mains
}

func (w *VirtualEntitiesWorker) isFederal(cityID string) bool {
	city, ok := w.directory.CityByNormalizedName(cityID)
	return ok && city.IsFederalCity
}

// pairConnected reports whether any direct connection exists between the
// two stops in either direction
func (w *VirtualEntitiesWorker) pairConnected(ctx context.Context, aID, bID string, seen map[string]struct{}) (bool, error) {
	for _, pair := range [][2]string{{aID, bID}, {bID, aID}} {
		exists, err := w.legExists(ctx, pair[0], pair[1], seen)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

func (w *VirtualEntitiesWorker) legExists(ctx context.Context, fromID, toID string, seen map[string]struct{}) (bool, error) {
	if _, ok := seen[pairKey(fromID, toID)]; ok {
		return true, nil
	}
	real, err := w.routes.ExistsDirect(ctx, fromID, toID)
	if err != nil {
		return false, err
	}
	if real {
		return true, nil
	}
	virt, err := w.virtualRoutes.ExistsBetween(ctx, fromID, toID)
	if err != nil {
		return false, err
	}
	return virt, nil
}

// buildVirtualRoute synthesizes one SHUTTLE leg. A zero durationMin means
// derive it from the Haversine distance at highway speed, floored at an
// hour. An empty tag defaults by leg length.
func (w *VirtualEntitiesWorker) buildVirtualRoute(from, to cityStop, tag string, durationMin int, seen map[string]struct{}) (*transport.VirtualRoute, error) {
	key := pairKey(from.id, to.id)
	if _, ok := seen[key]; ok {
		return nil, nil
	}

	distanceKm := geo.HaversineKm(from.latitude, from.longitude, to.latitude, to.longitude)
	if durationMin == 0 {
		durationMin = estimateBusMinutes(distanceKm)
	}
	if tag == "" {
		tag = string(transport.TransportBus)
	}

	id, err := transport.VirtualRouteID(from.id, to.id)
	if err != nil {
		return nil, err
	}

	route, err := transport.NewVirtualRoute(
		id,
		routeTypeFor(from.isVirtual, to.isVirtual),
		from.id,
		to.id,
		distanceKm,
		durationMin,
		transport.ModeShuttle,
		map[string]string{transport.MetadataKeyTransportType: tag},
	)
	if err != nil {
		return nil, err
	}
	route.CreatedAt = w.clock.Now()

	seen[key] = struct{}{}
	return route, nil
}

// generateVirtualFlights emits two daily departures for one year ahead on
// every synthesized route
func (w *VirtualEntitiesWorker) generateVirtualFlights(routes []*transport.VirtualRoute) []*transport.Flight {
	start := w.clock.Now()
	allDays := []int{1, 2, 3, 4, 5, 6, 7}

	var flights []*transport.Flight
	for _, route := range routes {
		fare := float64(defaultVirtualFlightFare)
		if raw, ok := route.Metadata["baseFare"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil && parsed > 0 {
				fare = parsed
			}
		}

		for day := 0; day < virtualScheduleDays; day++ {
			date := start.AddDate(0, 0, day)
			for _, departure := range virtualDepartureTimes {
				depMinutes, err := transport.ParseClock(departure)
				if err != nil {
					continue
				}
				flights = append(flights, &transport.Flight{
					ID:            fmt.Sprintf("flight-%s-%s-%s", route.ID, date.Format("20060102"), strings.ReplaceAll(departure, ":", "")),
					FromStopID:    route.FromStopID,
					ToStopID:      route.ToStopID,
					DepartureTime: departure,
					ArrivalTime:   transport.FormatClock(depMinutes + route.DurationMinutes),
					DaysOfWeek:    allDays,
					RouteID:       route.ID,
					PriceRub:      fare,
					IsVirtual:     true,
					TransportType: transport.TransportType(route.TransportTag()),
				})
			}
		}
	}
	return flights
}

func (w *VirtualEntitiesWorker) updateStatistics(ctx context.Context, dataset *transport.Dataset) error {
	stats := transport.DatasetStatistics{}
	counters := []struct {
		target *int
		count  func(context.Context) (int64, error)
	}{
		{&stats.TotalStops, w.stops.CountAll},
		{&stats.TotalRoutes, w.routes.CountAll},
		{&stats.TotalFlights, w.flights.CountAll},
		{&stats.TotalVirtualStops, w.virtualStops.CountAll},
		{&stats.TotalVirtualRoutes, w.virtualRoutes.CountAll},
	}
	for _, c := range counters {
		n, err := c.count(ctx)
		if err != nil {
			return err
		}
		*c.target = int(n)
	}
	return w.datasets.UpdateStatistics(ctx, dataset.ID, stats)
}

func preferredRealStop(stops []*transport.Stop) *transport.Stop {
	for _, s := range stops {
		if s.IsAirport {
			return s
		}
	}
	for _, s := range stops {
		if s.IsRailwayStation {
			return s
		}
	}
	return stops[0]
}

func stopFromVirtual(vs *transport.VirtualStop) cityStop {
	return cityStop{id: vs.ID, name: vs.Name, latitude: vs.Latitude, longitude: vs.Longitude, isVirtual: true}
}

func routeTypeFor(fromVirtual, toVirtual bool) transport.RouteType {
	switch {
	case fromVirtual && toVirtual:
		return transport.RouteVirtualToVirtual
	case fromVirtual:
		return transport.RouteVirtualToReal
	case toVirtual:
		return transport.RouteRealToVirtual
	default:
		// The connection itself is synthetic even between two real stops
		return transport.RouteVirtualToVirtual
	}
}

func pairKey(fromID, toID string) string {
	return fromID + "->" + toID
}

// estimateBusMinutes derives a leg duration from distance at 60 km/h,
// never under an hour
func estimateBusMinutes(distanceKm float64) int {
	minutes := int(math.Round(distanceKm / 60.0 * 60.0))
	if minutes < 60 {
		return 60
	}
	return minutes
}
