package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
)

func TestGraph_AddEdgeDedupesByRouteKey(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "a"})
	g.AddNode(graph.Node{ID: "b"})

	added := g.AddEdge("a", "b", 60, graph.EdgeMetadata{RouteID: "r1"})
	dup := g.AddEdge("a", "b", 90, graph.EdgeMetadata{RouteID: "r1"})
	other := g.AddEdge("a", "b", 90, graph.EdgeMetadata{RouteID: "r2"})

	assert.True(t, added)
	assert.False(t, dup)
	assert.True(t, other)
	assert.Equal(t, 2, g.EdgeCount())
	assert.Len(t, g.Neighbors("a"), 2)
}

func TestGraph_EmptyRouteIDSharesDirectKey(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "a"})
	g.AddNode(graph.Node{ID: "b"})

	assert.True(t, g.AddEdge("a", "b", 60, graph.EdgeMetadata{}))
	assert.False(t, g.AddEdge("a", "b", 45, graph.EdgeMetadata{}))
	assert.True(t, g.HasEdgeKey("a", "b", ""))
	assert.True(t, g.HasEdgeKey("a", "b", "direct"))
}

func TestGraph_NeighborsEmptyForUnknownNode(t *testing.T) {
	g := graph.NewGraph()

	assert.Empty(t, g.Neighbors("missing"))
}

func TestGraph_NodeIDsSorted(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(graph.Node{ID: "b"})
	g.AddNode(graph.Node{ID: "a"})
	g.AddNode(graph.Node{ID: "c"})

	assert.Equal(t, []string{"a", "b", "c"}, g.NodeIDs())
}

func TestIsFiniteWeight(t *testing.T) {
	assert.True(t, graph.IsFiniteWeight(10))
	assert.False(t, graph.IsFiniteWeight(inf()))
	assert.False(t, graph.IsFiniteWeight(nan()))
}

func inf() float64 {
	zero := 0.0
	return 1 / zero
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
