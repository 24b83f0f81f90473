package graph

import (
	"fmt"
	"math"
	"sort"
)

// Node is one vertex of the transportation graph
type Node struct {
	ID        string
	Name      string
	CityID    string
	Latitude  float64
	Longitude float64
	Metadata  map[string]string
	IsVirtual bool
}

// EdgeMetadata travels with every edge into the materialized store
type EdgeMetadata struct {
	DistanceKm    float64 `json:"distanceKm"`
	TransportType string  `json:"transportType"`
	RouteID       string  `json:"routeId"`
}

// Neighbor is one adjacency entry: the edge target plus its weight in
// minutes and metadata
type Neighbor struct {
	NeighborID string       `json:"neighborId"`
	Weight     float64      `json:"weight"`
	Metadata   EdgeMetadata `json:"metadata"`
}

// Edge is a materialization-independent edge view used by validators
type Edge struct {
	From     string
	To       string
	Weight   float64
	Metadata EdgeMetadata
}

// Edge-level transport tags that never appear on routes
const (
	EdgeTransportTransfer = "TRANSFER"
	EdgeTransportFerry    = "FERRY"
)

// Graph is the in-memory build product. Edges are deduplicated by the
// (from, to, routeId|"direct") key, so re-adding the same logical edge is
// a no-op.
type Graph struct {
	nodes     map[string]Node
	adjacency map[string][]Neighbor
	edgeKeys  map[string]struct{}
	edgeCount int
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]Node),
		adjacency: make(map[string][]Neighbor),
		edgeKeys:  make(map[string]struct{}),
	}
}

// AddNode inserts or replaces a node.
func (g *Graph) AddNode(n Node) {
	g.nodes[n.ID] = n
}

// HasNode reports node membership.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

func edgeKey(from, to, routeID string) string {
	if routeID == "" {
		routeID = "direct"
	}
	return fmt.Sprintf("%s|%s|%s", from, to, routeID)
}

// AddEdge appends a directed edge unless the same (from, to, routeId) key
// was already added. Returns false on duplicate.
func (g *Graph) AddEdge(from, to string, weight float64, md EdgeMetadata) bool {
	key := edgeKey(from, to, md.RouteID)
	if _, dup := g.edgeKeys[key]; dup {
		return false
	}
	g.edgeKeys[key] = struct{}{}
	g.adjacency[from] = append(g.adjacency[from], Neighbor{
		NeighborID: to,
		Weight:     weight,
		Metadata:   md,
	})
	g.edgeCount++
	return true
}

// HasEdgeKey reports whether the (from, to, routeId) key is present.
func (g *Graph) HasEdgeKey(from, to, routeID string) bool {
	_, ok := g.edgeKeys[edgeKey(from, to, routeID)]
	return ok
}

// Neighbors returns the out-edges of a node, nil when there are none.
func (g *Graph) Neighbors(id string) []Neighbor {
	return g.adjacency[id]
}

// NodeIDs returns all node ids sorted for deterministic iteration.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Nodes returns all nodes in id order.
func (g *Graph) Nodes() []Node {
	ids := g.NodeIDs()
	out := make([]Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges flattens the adjacency into an edge list for validation.
func (g *Graph) Edges() []Edge {
	var out []Edge
	for _, from := range g.NodeIDs() {
		for _, nb := range g.adjacency[from] {
			out = append(out, Edge{From: from, To: nb.NeighborID, Weight: nb.Weight, Metadata: nb.Metadata})
		}
	}
	// Adjacency may reference sources that never became nodes; keep
	// their edges visible to the structural validator as well
	for from, nbs := range g.adjacency {
		if _, ok := g.nodes[from]; ok {
			continue
		}
		for _, nb := range nbs {
			out = append(out, Edge{From: from, To: nb.NeighborID, Weight: nb.Weight, Metadata: nb.Metadata})
		}
	}
	return out
}

// AdjacencyByFrom exposes the raw adjacency map for materialization.
func (g *Graph) AdjacencyByFrom() map[string][]Neighbor {
	return g.adjacency
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// IsFiniteWeight reports whether a weight is usable on an edge.
func IsFiniteWeight(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, 0)
}
