package trips

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/metrics"
	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/risk"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// PlanTripHandler answers trip queries against the active graph version.
// Read-only: it never mutates the relational store or the graph store.
type PlanTripHandler struct {
	store           graph.Store
	stops           transport.StopRepository
	virtualStops    transport.VirtualStopRepository
	flights         transport.FlightRepository
	assessor        risk.Assessor
	validate        *validator.Validate
	clock           shared.Clock
	timeout         time.Duration
	maxAlternatives int
}

func NewPlanTripHandler(
	store graph.Store,
	stops transport.StopRepository,
	virtualStops transport.VirtualStopRepository,
	flights transport.FlightRepository,
	assessor risk.Assessor,
	clock shared.Clock,
	timeout time.Duration,
	maxAlternatives int,
) *PlanTripHandler {
	return &PlanTripHandler{
		store:           store,
		stops:           stops,
		virtualStops:    virtualStops,
		flights:         flights,
		assessor:        assessor,
		validate:        validator.New(),
		clock:           clock,
		timeout:         timeout,
		maxAlternatives: maxAlternatives,
	}
}

// Handle executes the query
func (h *PlanTripHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*PlanTripQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}

	start := h.clock.Now()
	resp := h.plan(ctx, query, start)
	resp.ExecutionTimeMs = h.clock.Now().Sub(start).Milliseconds()

	outcome := resp.ErrorCode
	if resp.Success {
		outcome = "success"
	}
	metrics.RecordQuery(outcome, float64(resp.ExecutionTimeMs)/1000.0)
	return resp, nil
}

func (h *PlanTripHandler) plan(ctx context.Context, query *PlanTripQuery, start time.Time) *PlanTripResponse {
	if err := h.validate.Struct(query); err != nil {
		return &PlanTripResponse{ErrorCode: ErrValidation, Error: err.Error()}
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	// Pin the active version once so an activation landing mid-request
	// cannot mix two snapshots into one answer.
	reader, err := h.store.Snapshot(ctx)
	if err != nil {
		return h.failure(ctx, "", err)
	}
	version := reader.Version()
	if version == "" {
		return &PlanTripResponse{ErrorCode: ErrGraphUnavailable, Error: "no active graph version"}
	}

	fromStop, err := h.resolveCityStop(ctx, query.FromCity)
	if err != nil {
		return h.failure(ctx, version, err)
	}
	toStop, err := h.resolveCityStop(ctx, query.ToCity)
	if err != nil {
		return h.failure(ctx, version, err)
	}

	var missing []string
	for _, id := range []string{fromStop, toStop} {
		present, err := reader.HasNode(ctx, id)
		if err != nil {
			return h.failure(ctx, version, err)
		}
		if !present {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		staleErr := shared.NewStaleGraphError(missing)
		return &PlanTripResponse{
			ErrorCode:      ErrGraphOutOfSync,
			Error:          staleErr.Error(),
			MissingNodes:   missing,
			GraphAvailable: true,
			GraphVersion:   version,
		}
	}

	date, err := time.Parse("2006-01-02", query.Date)
	if err != nil {
		return &PlanTripResponse{ErrorCode: ErrValidation, Error: err.Error(), GraphAvailable: true, GraphVersion: version}
	}

	finder := newPathFinder(reader)
	path, _, found, err := finder.shortestPath(ctx, fromStop, toStop, nil)
	if err != nil {
		return h.failure(ctx, version, err)
	}
	if !found {
		return &PlanTripResponse{
			ErrorCode:      ErrNoRoute,
			Error:          fmt.Sprintf("no route between %s and %s", query.FromCity, query.ToCity),
			GraphAvailable: true,
			GraphVersion:   version,
		}
	}

	primary, err := h.hydrate(ctx, reader, path, query, date)
	if err != nil {
		return h.failure(ctx, version, err)
	}

	alternatives, err := h.findAlternatives(ctx, reader, finder, path, primary, query, date, fromStop, toStop)
	if err != nil {
		// Alternatives are best-effort; the primary route still answers
		log.Printf("alternative search failed: %v", err)
	}

	resp := &PlanTripResponse{
		Success:        true,
		Routes:         []TripRoute{*primary},
		Alternatives:   alternatives,
		GraphAvailable: true,
		GraphVersion:   version,
	}

	if h.assessor != nil {
		if assessment, err := h.assessor.AssessRoute(ctx, builtRouteFor(primary, query.Date)); err != nil {
			log.Printf("risk assessment failed, returning route without it: %v", err)
		} else {
			resp.RiskAssessment = assessment
		}
	}
	return resp
}

func (h *PlanTripHandler) failure(ctx context.Context, version string, err error) *PlanTripResponse {
	code := ErrNoRoute
	var notFound *shared.NotFoundError
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		code = ErrTimeout
	case errors.As(err, &notFound):
		code = ErrNoStopsFound
	default:
		code = "INTERNAL_ERROR"
	}
	return &PlanTripResponse{
		ErrorCode:      code,
		Error:          err.Error(),
		GraphAvailable: version != "",
		GraphVersion:   version,
	}
}

// resolveCityStop maps a city name to its representative stop id: the
// first real stop matching the city search, else the first virtual one.
func (h *PlanTripHandler) resolveCityStop(ctx context.Context, city string) (string, error) {
	realStops, err := h.stops.SearchByCityName(ctx, city)
	if err != nil {
		return "", err
	}
	if len(realStops) > 0 {
		return realStops[0].ID, nil
	}
	virtualStops, err := h.virtualStops.SearchByCityName(ctx, city)
	if err != nil {
		return "", err
	}
	if len(virtualStops) > 0 {
		return virtualStops[0].ID, nil
	}
	return "", shared.NewNotFoundError("stop", city)
}

// segmentData collects the three concurrent per-segment lookups
type segmentData struct {
	weight    float64
	weightOK  bool
	weightErr error

	metadata    *graph.EdgeMetadata
	metadataErr error

	flights    []*transport.Flight
	flightsErr error
}

// hydrate turns a node path into a fully priced route. For every segment
// the edge weight, edge metadata and the day's timetable are fetched
// concurrently and joined.
func (h *PlanTripHandler) hydrate(ctx context.Context, reader graph.Reader, path []string, query *PlanTripQuery, date time.Time) (*TripRoute, error) {
	segments := len(path) - 1
	data := make([]segmentData, segments)

	var wg sync.WaitGroup
	for i := 0; i < segments; i++ {
		from, to := path[i], path[i+1]
		wg.Add(3)
		go func(i int, from, to string) {
			defer wg.Done()
			data[i].weight, data[i].weightOK, data[i].weightErr = reader.EdgeWeight(ctx, from, to)
		}(i, from, to)
		go func(i int, from, to string) {
			defer wg.Done()
			data[i].metadata, _, data[i].metadataErr = reader.EdgeMetadata(ctx, from, to)
		}(i, from, to)
		go func(i int, from, to string) {
			defer wg.Done()
			data[i].flights, data[i].flightsErr = h.flights.FindBetweenStops(ctx, from, to, date)
		}(i, from, to)
	}
	wg.Wait()

	names, err := h.resolveCityNames(ctx, path)
	if err != nil {
		return nil, err
	}

	route := &TripRoute{
		FromCity:      query.FromCity,
		ToCity:        query.ToCity,
		DepartureDate: query.Date,
	}
	var priceSum float64
	for i := 0; i < segments; i++ {
		d := data[i]
		if d.weightErr != nil {
			return nil, d.weightErr
		}
		if !d.weightOK {
			log.Printf("dropping segment %s->%s: no edge weight", path[i], path[i+1])
			continue
		}
		if d.metadataErr != nil {
			return nil, d.metadataErr
		}
		if d.flightsErr != nil {
			return nil, d.flightsErr
		}

		segment := TripSegment{
			FromStopID:      path[i],
			ToStopID:        path[i+1],
			FromName:        names[path[i]],
			ToName:          names[path[i+1]],
			DurationMinutes: d.weight,
			TransportType:   KindUnknown,
		}
		rawTag := ""
		if d.metadata != nil {
			rawTag = d.metadata.TransportType
			segment.DistanceKm = d.metadata.DistanceKm
			segment.RouteID = d.metadata.RouteID
			segment.TransportType = NormalizeTransportTag(d.metadata.TransportType)
		}
		if len(d.flights) > 0 {
			first := d.flights[0]
			segment.DepartureTime = first.DepartureTime
			segment.ArrivalTime = first.ArrivalTime
			segment.PriceRub = first.PriceRub
		}
		if rawTag == graph.EdgeTransportTransfer {
			route.TransferCount++
		}

		priceSum += segment.PriceRub
		route.TotalDuration += segment.DurationMinutes
		route.TotalDistanceKm += segment.DistanceKm
		route.Segments = append(route.Segments, segment)
	}

	route.TotalPriceRub = priceSum * float64(query.Passengers)
	if len(route.Segments) > 0 {
		route.DepartureTime = route.Segments[0].DepartureTime
		route.ArrivalTime = route.Segments[len(route.Segments)-1].ArrivalTime
	}
	return route, nil
}

// resolveCityNames maps every path node to its display city name, real
// stops first, then virtual.
func (h *PlanTripHandler) resolveCityNames(ctx context.Context, path []string) (map[string]string, error) {
	names := make(map[string]string, len(path))
	for _, id := range path {
		if _, done := names[id]; done {
			continue
		}
		stop, err := h.stops.FindByID(ctx, id)
		if err == nil {
			names[id] = reference.DisplayCityName(stop.Name)
			continue
		}
		var notFound *shared.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		virtual, err := h.virtualStops.FindByID(ctx, id)
		if err == nil {
			names[id] = reference.DisplayCityName(virtual.Name)
			continue
		}
		if !errors.As(err, &notFound) {
			return nil, err
		}
		names[id] = id
	}
	return names, nil
}

// findAlternatives searches up to maxAlternatives distinct paths by
// excluding the edges of each best-known path and rerunning the search.
func (h *PlanTripHandler) findAlternatives(ctx context.Context, reader graph.Reader, finder *pathFinder, primaryPath []string, primary *TripRoute, query *PlanTripQuery, date time.Time, from, to string) ([]TripRoute, error) {
	if h.maxAlternatives <= 0 {
		return nil, nil
	}

	excluded := make(map[edgeRef]struct{})
	excludePath := func(path []string) {
		for i := 0; i+1 < len(path); i++ {
			excluded[edgeRef{from: path[i], to: path[i+1]}] = struct{}{}
		}
	}
	excludePath(primaryPath)

	seen := map[string]struct{}{primary.PathKey(): {}}
	var alternatives []TripRoute

	for len(alternatives) < h.maxAlternatives {
		path, _, found, err := finder.shortestPath(ctx, from, to, excluded)
		if err != nil {
			return alternatives, err
		}
		if !found {
			break
		}
		excludePath(path)

		route, err := h.hydrate(ctx, reader, path, query, date)
		if err != nil {
			return alternatives, err
		}
		key := route.PathKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		alternatives = append(alternatives, *route)
	}

	sort.Slice(alternatives, func(i, j int) bool {
		return alternatives[i].TotalDuration < alternatives[j].TotalDuration
	})
	return alternatives, nil
}

// builtRouteFor shapes the primary route the way the risk scorer expects.
func builtRouteFor(route *TripRoute, travelDate string) *risk.BuiltRoute {
	built := &risk.BuiltRoute{
		TransferCount: route.TransferCount,
		DepartureTime: route.DepartureTime,
		ArrivalTime:   route.ArrivalTime,
		TravelDate:    travelDate,
	}
	kinds := make(map[string]struct{})
	for _, s := range route.Segments {
		built.Segments = append(built.Segments, risk.RouteSegment{
			FromStopID:      s.FromStopID,
			ToStopID:        s.ToStopID,
			TransportType:   string(s.TransportType),
			DurationMinutes: s.DurationMinutes,
			DistanceKm:      s.DistanceKm,
			DepartureTime:   s.DepartureTime,
			ArrivalTime:     s.ArrivalTime,
		})
		if _, dup := kinds[string(s.TransportType)]; !dup {
			kinds[string(s.TransportType)] = struct{}{}
			built.TransportTypes = append(built.TransportTypes, string(s.TransportType))
		}
	}
	return built
}
