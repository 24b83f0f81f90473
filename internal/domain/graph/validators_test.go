package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
)

func cityNode(id, cityID string) graph.Node {
	return graph.Node{ID: id, Name: "Остановка " + id, CityID: cityID}
}

func TestStructuralValidator_AcceptsSimpleGraph(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddNode(cityNode("b", "москва"))
	g.AddEdge("a", "b", 360, graph.EdgeMetadata{TransportType: "PLANE"})
	g.AddEdge("b", "a", 360, graph.EdgeMetadata{TransportType: "PLANE"})

	report := graph.NewStructuralValidator().Validate(g)

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
}

func TestStructuralValidator_RejectsNonPositiveWeight(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddNode(cityNode("b", "москва"))
	g.AddEdge("a", "b", 0, graph.EdgeMetadata{})

	report := graph.NewStructuralValidator().Validate(g)

	assert.False(t, report.IsValid)
	assert.NotEmpty(t, report.Errors)
}

func TestStructuralValidator_RejectsEdgeToMissingNode(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddEdge("a", "ghost", 60, graph.EdgeMetadata{})

	report := graph.NewStructuralValidator().Validate(g)

	assert.False(t, report.IsValid)
}

func TestStructuralValidator_WarnsOnIsolatedNode(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddNode(cityNode("b", "москва"))
	g.AddNode(cityNode("island", "мирный"))
	g.AddEdge("a", "b", 60, graph.EdgeMetadata{})

	report := graph.NewStructuralValidator().Validate(g)

	assert.True(t, report.IsValid)
	found := false
	for _, w := range report.Warnings {
		if w == "node island is isolated" {
			found = true
		}
	}
	assert.True(t, found, "expected isolation warning, got %v", report.Warnings)
}

func TestStructuralValidator_WarnsOnPoorHubReachability(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("hub", "якутск"))
	// Four nodes the hub cannot reach
	g.AddNode(cityNode("m1", "москва"))
	g.AddNode(cityNode("m2", "казань"))
	g.AddNode(cityNode("m3", "сочи"))
	g.AddNode(cityNode("m4", "иркутск"))
	g.AddEdge("m1", "m2", 60, graph.EdgeMetadata{})
	g.AddEdge("m2", "m3", 60, graph.EdgeMetadata{})
	g.AddEdge("m3", "m4", 60, graph.EdgeMetadata{})
	g.AddEdge("m4", "hub", 60, graph.EdgeMetadata{})

	report := graph.NewStructuralValidator().Validate(g)

	assert.True(t, report.IsValid)
	assert.NotEmpty(t, report.Warnings)
}

func TestTransferValidator_BoundaryWeights(t *testing.T) {
	cases := []struct {
		weight float64
		valid  bool
	}{
		{29, false},
		{30, true},
		{120, true},
		{121, false},
	}

	for _, tc := range cases {
		g := graph.NewGraph()
		g.AddNode(cityNode("a", "якутск"))
		g.AddNode(cityNode("b", "якутск"))
		g.AddEdge("a", "b", tc.weight, graph.EdgeMetadata{TransportType: graph.EdgeTransportTransfer})

		report := graph.NewTransferValidator().Validate(g)

		assert.Equal(t, tc.valid, report.IsValid, "weight %v", tc.weight)
	}
}

func TestTransferValidator_RejectsCrossCityTransfer(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddNode(cityNode("b", "москва"))
	g.AddEdge("a", "b", 60, graph.EdgeMetadata{TransportType: graph.EdgeTransportTransfer})

	report := graph.NewTransferValidator().Validate(g)

	assert.False(t, report.IsValid)
}

func TestTransferValidator_RejectsEmptyCityID(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", ""))
	g.AddNode(cityNode("b", ""))
	g.AddEdge("a", "b", 60, graph.EdgeMetadata{TransportType: graph.EdgeTransportTransfer})

	report := graph.NewTransferValidator().Validate(g)

	assert.False(t, report.IsValid)
}

func TestTransferValidator_IgnoresNonTransferEdges(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(cityNode("a", "якутск"))
	g.AddNode(cityNode("b", "москва"))
	g.AddEdge("a", "b", 360, graph.EdgeMetadata{TransportType: "PLANE"})

	report := graph.NewTransferValidator().Validate(g)

	assert.True(t, report.IsValid)
}

func ferryNode(id string) graph.Node {
	return graph.Node{
		ID:       id,
		Name:     "Переправа " + id,
		CityID:   "якутск",
		Metadata: map[string]string{"type": "ferry_terminal"},
	}
}

func TestFerryValidator_BoundaryWeights(t *testing.T) {
	cases := []struct {
		weight float64
		valid  bool
	}{
		{19, false},
		{20, true},
		{65, true},
		{66, false},
	}

	for _, tc := range cases {
		g := graph.NewGraph()
		g.AddNode(ferryNode("f1"))
		g.AddNode(ferryNode("f2"))
		g.AddEdge("f1", "f2", tc.weight, graph.EdgeMetadata{TransportType: graph.EdgeTransportFerry})

		report := graph.NewFerryValidator().Validate(g)

		assert.Equal(t, tc.valid, report.IsValid, "weight %v", tc.weight)
	}
}

func TestFerryValidator_RejectsNonTerminalEndpoint(t *testing.T) {
	g := graph.NewGraph()
	g.AddNode(ferryNode("f1"))
	g.AddNode(cityNode("bus", "якутск"))
	g.AddEdge("f1", "bus", 40, graph.EdgeMetadata{TransportType: graph.EdgeTransportFerry})

	report := graph.NewFerryValidator().Validate(g)

	assert.False(t, report.IsValid)
}

func TestTransferWeightTable(t *testing.T) {
	assert.Equal(t, 90.0, graph.TransferWeight("airport", "ground"))
	assert.Equal(t, 120.0, graph.TransferWeight("ground", "airport"))
	assert.Equal(t, 90.0, graph.TransferWeight("airport", "ferry_terminal"))
	assert.Equal(t, 30.0, graph.TransferWeight("ferry_terminal", "ground"))
	assert.Equal(t, 60.0, graph.TransferWeight("ground", "ground"))
	assert.Equal(t, 60.0, graph.TransferWeight("airport", "airport"))
}

func TestSeasonalFerryWaitMinutes(t *testing.T) {
	assert.Equal(t, 17.5, graph.SeasonalFerryWaitMinutes(4))  // April
	assert.Equal(t, 17.5, graph.SeasonalFerryWaitMinutes(9))  // September
	assert.Equal(t, 37.5, graph.SeasonalFerryWaitMinutes(3))  // March
	assert.Equal(t, 37.5, graph.SeasonalFerryWaitMinutes(10)) // October
	assert.Equal(t, 37.5, graph.SeasonalFerryWaitMinutes(1))  // January
}

func TestClampFerryBase(t *testing.T) {
	assert.Equal(t, 20.0, graph.ClampFerryBase(0))
	assert.Equal(t, 40.0, graph.ClampFerryBase(40))
	assert.Equal(t, 65.0, graph.ClampFerryBase(100))
}
