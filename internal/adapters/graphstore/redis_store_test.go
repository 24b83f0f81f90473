package graphstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakhatrip/sakhatrip-go/internal/adapters/graphstore"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
	"github.com/sakhatrip/sakhatrip-go/test/helpers"
)

func buildTestGraph() *graph.Graph {
	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "stop-1", Name: "Аэропорт Якутск", CityID: "якутск"})
	g.AddNode(graph.Node{ID: "stop-2", Name: "Аэропорт Москва", CityID: "москва"})
	g.AddNode(graph.Node{ID: "stop-3", Name: "Автовокзал", CityID: "якутск"})
	g.AddEdge("stop-1", "stop-2", 360, graph.EdgeMetadata{DistanceKm: 4900, TransportType: "PLANE", RouteID: "route-1"})
	g.AddEdge("stop-2", "stop-1", 360, graph.EdgeMetadata{DistanceKm: 4900, TransportType: "PLANE", RouteID: "route-2"})
	g.AddEdge("stop-1", "stop-3", 90, graph.EdgeMetadata{TransportType: "TRANSFER", RouteID: "transfer"})
	return g
}

func TestRedisGraphStore_SaveAndRead(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()
	g := buildTestGraph()

	md := &graph.Metadata{Version: "graph-v1", DatasetVersion: "ds-1", TotalNodes: 3, TotalEdges: 3}
	require.NoError(t, store.SaveGraph(ctx, "graph-v1", g, md))

	version, err := store.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v1", version)

	loaded, err := store.CurrentMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ds-1", loaded.DatasetVersion)

	ok, err := store.HasNode(ctx, "stop-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.HasNode(ctx, "stop-unknown")
	require.NoError(t, err)
	assert.False(t, ok)

	neighbors, err := store.GetNeighbors(ctx, "stop-1")
	require.NoError(t, err)
	assert.Len(t, neighbors, 2)

	// Nodes without out-edges yield an empty list, not an error
	neighbors, err = store.GetNeighbors(ctx, "stop-3")
	require.NoError(t, err)
	assert.Empty(t, neighbors)

	weight, found, err := store.EdgeWeight(ctx, "stop-1", "stop-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 360.0, weight)

	_, found, err = store.EdgeWeight(ctx, "stop-3", "stop-2")
	require.NoError(t, err)
	assert.False(t, found)

	edgeMD, found, err := store.EdgeMetadata(ctx, "stop-1", "stop-3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "TRANSFER", edgeMD.TransportType)
}

func TestRedisGraphStore_VersionPointerSwitchesSnapshots(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()

	g1 := graph.NewGraph()
	g1.AddNode(graph.Node{ID: "a"})
	g1.AddNode(graph.Node{ID: "b"})
	g1.AddEdge("a", "b", 60, graph.EdgeMetadata{TransportType: "BUS"})
	require.NoError(t, store.SaveGraph(ctx, "graph-v1", g1, &graph.Metadata{Version: "graph-v1"}))

	g2 := graph.NewGraph()
	g2.AddNode(graph.Node{ID: "a"})
	g2.AddNode(graph.Node{ID: "c"})
	g2.AddEdge("a", "c", 90, graph.EdgeMetadata{TransportType: "PLANE"})
	require.NoError(t, store.SaveGraph(ctx, "graph-v2", g2, &graph.Metadata{Version: "graph-v2"}))

	// Readers keyed by the pointer see only the new snapshot
	ok, err := store.HasNode(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.HasEdge(ctx, "a", "c")
	require.NoError(t, err)
	assert.True(t, ok)

	// Flipping the pointer back restores the old view
	require.NoError(t, store.SetCurrentVersion(ctx, "graph-v1"))
	ok, err = store.HasEdge(ctx, "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGraphStore_SnapshotPinsVersionAcrossActivation(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()

	g1 := graph.NewGraph()
	g1.AddNode(graph.Node{ID: "a"})
	g1.AddNode(graph.Node{ID: "b"})
	g1.AddEdge("a", "b", 60, graph.EdgeMetadata{TransportType: "BUS"})
	require.NoError(t, store.SaveGraph(ctx, "graph-v1", g1, &graph.Metadata{Version: "graph-v1"}))

	reader, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v1", reader.Version())

	// A new graph is activated while the reader is still in use
	g2 := graph.NewGraph()
	g2.AddNode(graph.Node{ID: "a"})
	g2.AddNode(graph.Node{ID: "c"})
	g2.AddEdge("a", "c", 90, graph.EdgeMetadata{TransportType: "PLANE"})
	require.NoError(t, store.SaveGraph(ctx, "graph-v2", g2, &graph.Metadata{Version: "graph-v2"}))

	// The pinned reader still answers from graph-v1
	ok, err := reader.HasNode(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reader.HasNode(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)

	weight, found, err := reader.EdgeWeight(ctx, "a", "b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 60.0, weight)

	neighbors, err := reader.GetNeighbors(ctx, "a")
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, "b", neighbors[0].NeighborID)

	// A fresh snapshot follows the new pointer
	fresh, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v2", fresh.Version())

	ok, err = fresh.HasNode(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGraphStore_SnapshotWithoutActiveVersion(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()

	reader, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, reader.Version())

	ok, err := reader.HasNode(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	neighbors, err := reader.GetNeighbors(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestRedisGraphStore_ExportImportRoundTrip(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()
	g := buildTestGraph()

	require.NoError(t, store.SaveGraph(ctx, "graph-v1", g, &graph.Metadata{Version: "graph-v1"}))

	export, err := store.ExportGraphStructure(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"stop-1", "stop-2", "stop-3"}, export.Nodes)

	require.NoError(t, store.ImportGraphStructure(ctx, export, "graph-v2"))

	reexport, err := store.ExportGraphStructure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "graph-v2", reexport.Version)
	assert.Equal(t, export.Nodes, reexport.Nodes)
	assert.Equal(t, export.Neighbors, reexport.Neighbors)
}

func TestRedisGraphStore_DeleteGraphSparesOtherVersions(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()
	g := buildTestGraph()

	require.NoError(t, store.SaveGraph(ctx, "graph-v1", g, &graph.Metadata{Version: "graph-v1"}))
	require.NoError(t, store.SaveGraph(ctx, "graph-v2", g, &graph.Metadata{Version: "graph-v2"}))

	deleted, err := store.DeleteGraph(ctx, "graph-v1")
	require.NoError(t, err)
	// nodes set + two neighbor lists
	assert.Equal(t, int64(3), deleted)

	versions, err := store.ListVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"graph-v2"}, versions)

	ok, err := store.HasNode(ctx, "stop-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisGraphStore_Statistics(t *testing.T) {
	store := graphstore.NewRedisGraphStore(helpers.NewTestRedis(t))
	ctx := context.Background()

	stats, err := store.GraphStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalNodes)

	require.NoError(t, store.SaveGraph(ctx, "graph-v1", buildTestGraph(), &graph.Metadata{Version: "graph-v1"}))

	stats, err = store.GraphStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalNodes)
	assert.Equal(t, 3, stats.TotalEdges)
	assert.InDelta(t, 1.0, stats.AvgOutDegree, 0.001)
	assert.InDelta(t, 50.0, stats.DensityPct, 0.001)
}
