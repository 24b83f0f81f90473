package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/metrics"
	"github.com/sakhatrip/sakhatrip-go/internal/application/common"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/shared"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/worker"
	"github.com/sakhatrip/sakhatrip-go/pkg/geo"
)

const (
	// Below minGraphStops the build aborts, below warnGraphStops it only warns
	minGraphStops  = 10
	warnGraphStops = 30

	defaultFlightEdgeMinutes = 180
	defaultRouteEdgeMinutes  = 60

	// Synthetic routeId carried on intra-city transfer edges so they never
	// collide with the (from, to, "direct") key of a real connection
	transferRouteID = "transfer"
)

// GraphBuilderWorker materializes the routable graph from the persisted
// dataset: nodes from admissible stops, edges from flights, routes and
// intra-city transfers, validated and then activated as a new version.
type GraphBuilderWorker struct {
	datasets      transport.DatasetRepository
	stops         transport.StopRepository
	virtualStops  transport.VirtualStopRepository
	routes        transport.RouteRepository
	virtualRoutes transport.VirtualRouteRepository
	flights       transport.FlightRepository
	store         graph.Store
	metadata      graph.MetadataRepository
	directory     *reference.Directory
	clock         shared.Clock
}

func NewGraphBuilderWorker(
	datasets transport.DatasetRepository,
	stops transport.StopRepository,
	virtualStops transport.VirtualStopRepository,
	routes transport.RouteRepository,
	virtualRoutes transport.VirtualRouteRepository,
	flights transport.FlightRepository,
	store graph.Store,
	metadata graph.MetadataRepository,
	directory *reference.Directory,
	clock shared.Clock,
) *GraphBuilderWorker {
	return &GraphBuilderWorker{
		datasets:      datasets,
		stops:         stops,
		virtualStops:  virtualStops,
		routes:        routes,
		virtualRoutes: virtualRoutes,
		flights:       flights,
		store:         store,
		metadata:      metadata,
		directory:     directory,
		clock:         clock,
	}
}

func (w *GraphBuilderWorker) ID() string {
	return worker.GraphBuilderWorkerID
}

// CanRun refuses to rebuild when a graph already exists for the latest
// dataset version.
func (w *GraphBuilderWorker) CanRun(ctx context.Context) (bool, string, error) {
	dataset, err := w.datasets.GetLatest(ctx)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return true, "", nil // Run reports NO_DATASET
		}
		return false, "", fmt.Errorf("failed to load latest dataset: %w", err)
	}
	exists, err := w.metadata.ExistsForDatasetVersion(ctx, dataset.Version)
	if err != nil {
		return false, "", fmt.Errorf("failed to probe graph metadata: %w", err)
	}
	if exists {
		return false, fmt.Sprintf("graph already built for dataset %s", dataset.Version), nil
	}
	return true, "", nil
}

func (w *GraphBuilderWorker) Run(ctx context.Context) worker.Outcome {
	start := w.clock.Now()
	elapsed := func() int64 { return w.clock.Now().Sub(start).Milliseconds() }
	logger := common.WorkerLoggerFromContext(ctx)

	dataset, err := w.datasets.GetLatest(ctx)
	if err != nil {
		var notFound *shared.NotFoundError
		if errors.As(err, &notFound) {
			return worker.Failure(w.ID(), worker.ErrNoDataset, "no dataset has been ingested yet", elapsed())
		}
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	admitted, err := w.loadAdmissibleStops(ctx, logger)
	if err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}
	if len(admitted) < minGraphStops {
		return worker.Failure(w.ID(), worker.ErrInsufficientStops,
			fmt.Sprintf("only %d admissible stops, need at least %d", len(admitted), minGraphStops), elapsed())
	}
	if len(admitted) < warnGraphStops {
		logger.Log("WARN", fmt.Sprintf("building graph from only %d stops", len(admitted)), nil)
	}

	g, err := w.build(ctx, admitted, logger)
	if err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	if err := w.validate(g, logger); err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	version := graph.VersionFromTime(w.clock.Now())
	md := &graph.Metadata{
		Version:         version,
		DatasetVersion:  dataset.Version,
		TotalNodes:      g.NodeCount(),
		TotalEdges:      g.EdgeCount(),
		BuildDurationMs: elapsed(),
		StoreKey:        "graph:" + version,
		CreatedAt:       w.clock.Now(),
	}
	if err := w.activate(ctx, version, g, md); err != nil {
		return worker.ExecutionFailure(w.ID(), err, elapsed())
	}

	w.logFederalCityCoverage(g, logger)
	metrics.RecordGraphBuild(g.NodeCount(), g.EdgeCount())

	out := worker.Success(w.ID(),
		fmt.Sprintf("built and activated graph %s: %d nodes, %d edges", version, g.NodeCount(), g.EdgeCount()),
		elapsed())
	out.DataProcessed = &worker.DataProcessed{Added: g.NodeCount() + g.EdgeCount()}
	return out
}

func (w *GraphBuilderWorker) loadAdmissibleStops(ctx context.Context, logger common.WorkerLogger) ([]transport.StopRecord, error) {
	realStops, err := w.stops.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	virtualStops, err := w.virtualStops.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]transport.StopRecord, 0, len(realStops)+len(virtualStops))
	for _, s := range realStops {
		records = append(records, s.Record())
	}
	for _, vs := range virtualStops {
		records = append(records, vs.Record())
	}

	admitted, rejected := transport.FilterAdmissibleStops(records, w.directory)
	for _, rej := range rejected {
		logger.Log("WARN", fmt.Sprintf("stop rejected: %s", rej.Reason), nil)
	}
	return admitted, nil
}

// build assembles the in-memory graph: one node per admitted stop, then
// flight edges, route edges and intra-city transfer edges.
func (w *GraphBuilderWorker) build(ctx context.Context, admitted []transport.StopRecord, logger common.WorkerLogger) (*graph.Graph, error) {
	g := graph.NewGraph()
	byID := make(map[string]transport.StopRecord, len(admitted))
	for _, r := range admitted {
		byID[r.ID] = r
		g.AddNode(graph.Node{
			ID:        r.ID,
			Name:      r.Name,
			CityID:    r.NormalizedCityID(),
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Metadata:  r.Metadata,
			IsVirtual: r.IsVirtual,
		})
	}

	sources, err := w.loadEdgeSources(ctx)
	if err != nil {
		return nil, err
	}
	sourceByID := make(map[string]transport.EdgeSource, len(sources))
	for _, s := range sources {
		sourceByID[s.SourceID()] = s
	}

	if err := w.addFlightEdges(ctx, g, byID, sourceByID, logger); err != nil {
		return nil, err
	}
	w.addRouteEdges(g, byID, sources, logger)
	w.addTransferEdges(g, admitted)

	return g, nil
}

func (w *GraphBuilderWorker) loadEdgeSources(ctx context.Context) ([]transport.EdgeSource, error) {
	realRoutes, err := w.routes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	virtualRoutes, err := w.virtualRoutes.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sources := make([]transport.EdgeSource, 0, len(realRoutes)+len(virtualRoutes))
	for _, r := range realRoutes {
		sources = append(sources, r)
	}
	for _, vr := range virtualRoutes {
		sources = append(sources, vr)
	}
	return sources, nil
}

func (w *GraphBuilderWorker) addFlightEdges(ctx context.Context, g *graph.Graph, stops map[string]transport.StopRecord, sources map[string]transport.EdgeSource, logger common.WorkerLogger) error {
	flights, err := w.flights.FindAll(ctx)
	if err != nil {
		return err
	}

	for _, f := range flights {
		if _, ok := stops[f.FromStopID]; !ok {
			continue
		}
		if _, ok := stops[f.ToStopID]; !ok {
			continue
		}

		route := sources[f.RouteID]
		tag := string(f.TransportType)
		var distanceKm float64
		if route != nil {
			if t := route.TransportTag(); t != "" {
				tag = t
			}
			if d, ok := route.Distance(); ok {
				distanceKm = d
			}
		}

		if tag == string(transport.TransportFerry) {
			if !w.admitFerryEdge(stops[f.FromStopID], stops[f.ToStopID], logger) {
				continue
			}
			minutes, hasSchedule := flightMinutes(f)
			weight := ferryEdgeWeight(minutes, hasSchedule, route, w.clock)
			g.AddEdge(f.FromStopID, f.ToStopID, weight, graph.EdgeMetadata{
				DistanceKm:    distanceKm,
				TransportType: graph.EdgeTransportFerry,
				RouteID:       f.RouteID,
			})
			continue
		}

		weight := float64(defaultFlightEdgeMinutes)
		if minutes, ok := flightMinutes(f); ok {
			weight = float64(minutes)
		}
		g.AddEdge(f.FromStopID, f.ToStopID, weight, graph.EdgeMetadata{
			DistanceKm:    distanceKm,
			TransportType: tag,
			RouteID:       f.RouteID,
		})
	}
	return nil
}

// flightMinutes returns the flight duration when it parses into the sane
// band [1, 10000).
func flightMinutes(f *transport.Flight) (int, bool) {
	minutes, err := f.DurationMinutes()
	if err != nil || minutes < 1 || minutes >= 10000 {
		return 0, false
	}
	return minutes, true
}

// ferryEdgeWeight is the crossing duration plus the seasonal wait, kept
// inside the accepted ferry band.
func ferryEdgeWeight(scheduledMinutes int, hasSchedule bool, route transport.EdgeSource, clock shared.Clock) float64 {
	base := graph.FerryWeightMin
	if hasSchedule {
		base = float64(scheduledMinutes)
	} else if route != nil {
		if minutes, ok := route.Duration(); ok {
			base = float64(minutes)
		}
	}
	weight := graph.ClampFerryBase(base) + graph.SeasonalFerryWaitMinutes(clock.Now().Month())
	return math.Min(weight, graph.FerryWeightMax)
}

func (w *GraphBuilderWorker) admitFerryEdge(from, to transport.StopRecord, logger common.WorkerLogger) bool {
	if transport.IsFerryTerminal(from) && transport.IsFerryTerminal(to) {
		return true
	}
	logger.Log("WARN", fmt.Sprintf("dropping ferry edge %s->%s: endpoint is not a ferry terminal", from.ID, to.ID), nil)
	return false
}

// addRouteEdges walks every route's consecutive stop pairs, filling in
// edges the flight pass did not cover. Routes without a stop sequence
// contribute their single from->to leg.
func (w *GraphBuilderWorker) addRouteEdges(g *graph.Graph, stops map[string]transport.StopRecord, sources []transport.EdgeSource, logger common.WorkerLogger) {
	for _, source := range sources {
		for _, pair := range consecutivePairs(source) {
			from, to := pair[0], pair[1]
			if _, ok := stops[from]; !ok {
				continue
			}
			if _, ok := stops[to]; !ok {
				continue
			}
			if g.HasEdgeKey(from, to, source.SourceID()) {
				continue
			}

			distanceKm, _ := source.Distance()
			if source.TransportTag() == string(transport.TransportFerry) {
				if !w.admitFerryEdge(stops[from], stops[to], logger) {
					continue
				}
				g.AddEdge(from, to, ferryEdgeWeight(0, false, source, w.clock), graph.EdgeMetadata{
					DistanceKm:    distanceKm,
					TransportType: graph.EdgeTransportFerry,
					RouteID:       source.SourceID(),
				})
				continue
			}

			weight := float64(defaultRouteEdgeMinutes)
			if minutes, ok := source.Duration(); ok {
				weight = float64(minutes)
			}
			g.AddEdge(from, to, weight, graph.EdgeMetadata{
				DistanceKm:    distanceKm,
				TransportType: source.TransportTag(),
				RouteID:       source.SourceID(),
			})
		}
	}
}

func consecutivePairs(source transport.EdgeSource) [][2]string {
	seq := source.StopSequence()
	if len(seq) < 2 {
		return [][2]string{{source.FromStop(), source.ToStop()}}
	}
	pairs := make([][2]string, 0, len(seq)-1)
	for i := 0; i+1 < len(seq); i++ {
		pairs = append(pairs, [2]string{seq[i].StopID, seq[i+1].StopID})
	}
	return pairs
}

// addTransferEdges connects every pair of same-city stops bidirectionally
// with class-dependent weights.
func (w *GraphBuilderWorker) addTransferEdges(g *graph.Graph, admitted []transport.StopRecord) {
	byCity := make(map[string][]transport.StopRecord)
	for _, r := range admitted {
		cityID := r.NormalizedCityID()
		if cityID != "" {
			byCity[cityID] = append(byCity[cityID], r)
		}
	}

	for _, cityStops := range byCity {
		if len(cityStops) < 2 {
			continue
		}
		for i := 0; i < len(cityStops); i++ {
			for j := i + 1; j < len(cityStops); j++ {
				a, b := cityStops[i], cityStops[j]
				distanceKm := geo.HaversineKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
				for _, pair := range [][2]transport.StopRecord{{a, b}, {b, a}} {
					from, to := pair[0], pair[1]
					g.AddEdge(from.ID, to.ID,
						graph.TransferWeight(transport.ClassifyStop(from), transport.ClassifyStop(to)),
						graph.EdgeMetadata{
							DistanceKm:    distanceKm,
							TransportType: graph.EdgeTransportTransfer,
							RouteID:       transferRouteID,
						})
				}
			}
		}
	}
}

// validate runs the three validators: structural and transfer failures
// abort the build, ferry findings are downgraded to warnings.
func (w *GraphBuilderWorker) validate(g *graph.Graph, logger common.WorkerLogger) error {
	structural := graph.NewStructuralValidator().Validate(g)
	for _, warning := range structural.Warnings {
		logger.Log("WARN", "structural: "+warning, nil)
	}
	if !structural.IsValid {
		return shared.NewInvariantViolationError("structural", structural.Errors)
	}

	transfer := graph.NewTransferValidator().Validate(g)
	if !transfer.IsValid {
		return shared.NewInvariantViolationError("transfer", transfer.Errors)
	}

	ferry := graph.NewFerryValidator().Validate(g)
	for _, finding := range append(ferry.Errors, ferry.Warnings...) {
		logger.Log("WARN", "ferry: "+finding, nil)
	}
	return nil
}

// activate persists the metadata row inactive, flips the relational
// active flag, then writes the snapshot and the KV pointer in one
// pipelined batch. Readers keep seeing the previous graph until the
// final step completes.
func (w *GraphBuilderWorker) activate(ctx context.Context, version string, g *graph.Graph, md *graph.Metadata) error {
	if err := w.metadata.Save(ctx, md); err != nil {
		return fmt.Errorf("failed to persist graph metadata: %w", err)
	}
	if err := w.metadata.SetActive(ctx, version); err != nil {
		return fmt.Errorf("failed to activate graph metadata: %w", err)
	}
	md.Active = true
	if err := w.store.SaveGraph(ctx, version, g, md); err != nil {
		return fmt.Errorf("failed to materialize graph %s: %w", version, err)
	}
	return nil
}

// logFederalCityCoverage reports, per federal city, how many nodes it
// contributed and whether it is edge-connected to Yakutia and to the hub.
func (w *GraphBuilderWorker) logFederalCityCoverage(g *graph.Graph, logger common.WorkerLogger) {
	hubID := reference.HubCityID()

	cityOf := make(map[string]string, g.NodeCount())
	federalOf := make(map[string]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		cityOf[n.ID] = n.CityID
		if city, ok := w.directory.CityByNormalizedName(n.CityID); ok {
			federalOf[n.ID] = city.IsFederalCity
		}
	}

	for _, city := range w.directory.FederalCities() {
		cityID := reference.NormalizeCityName(city.Name)
		nodes := 0
		yakutiaEdges := 0
		hubConnected := false
		for _, n := range g.Nodes() {
			if n.CityID != cityID {
				continue
			}
			nodes++
			for _, nb := range g.Neighbors(n.ID) {
				if cityOf[nb.NeighborID] == hubID {
					hubConnected = true
				}
				if !federalOf[nb.NeighborID] {
					yakutiaEdges++
				}
			}
		}
		logger.Log("INFO", fmt.Sprintf("federal city %s: %d nodes, %d edges into Yakutia, hub-connected=%v",
			city.Name, nodes, yakutiaEdges, hubConnected), nil)
	}
}
