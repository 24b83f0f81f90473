package graph

import (
	"fmt"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/reference"
	"github.com/sakhatrip/sakhatrip-go/internal/domain/transport"
)

// ValidationReport separates build-aborting errors from log-only warnings
type ValidationReport struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

func newValidationReport() ValidationReport {
	return ValidationReport{IsValid: true}
}

func (r *ValidationReport) addError(format string, args ...interface{}) {
	r.IsValid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) addWarning(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// StructuralValidator checks weight sanity, endpoint membership,
// isolation, hub reachability and connectivity of a just-built graph.
type StructuralValidator struct{}

func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

func (v *StructuralValidator) Validate(g *Graph) ValidationReport {
	report := newValidationReport()
	edges := g.Edges()

	for _, e := range edges {
		if !IsFiniteWeight(e.Weight) || e.Weight <= 0 {
			report.addError("edge %s->%s has non-positive or non-finite weight %v", e.From, e.To, e.Weight)
		}
		if !g.HasNode(e.From) {
			report.addError("edge %s->%s references missing source node", e.From, e.To)
		}
		if !g.HasNode(e.To) {
			report.addError("edge %s->%s references missing target node", e.From, e.To)
		}
	}

	incident := make(map[string]bool, g.NodeCount())
	for _, e := range edges {
		incident[e.From] = true
		incident[e.To] = true
	}
	for _, id := range g.NodeIDs() {
		if !incident[id] {
			report.addWarning("node %s is isolated", id)
		}
	}

	v.checkHubReachability(g, &report)
	v.checkComponents(g, edges, &report)

	return report
}

func (v *StructuralValidator) checkHubReachability(g *Graph, report *ValidationReport) {
	hubID := reference.HubCityID()
	var start string
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if reference.NormalizeCityName(n.CityID) == hubID {
			start = id
			break
		}
	}
	if start == "" {
		report.addWarning("no node belongs to the hub city %s", hubID)
		return
	}

	reached := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(cur) {
			if !reached[nb.NeighborID] {
				reached[nb.NeighborID] = true
				queue = append(queue, nb.NeighborID)
			}
		}
	}

	total := g.NodeCount()
	if total > 0 && len(reached)*2 < total {
		report.addWarning("only %d of %d nodes reachable from the hub", len(reached), total)
	}
}

func (v *StructuralValidator) checkComponents(g *Graph, edges []Edge, report *ValidationReport) {
	// Weak connectivity: treat every edge as undirected
	undirected := make(map[string][]string)
	for _, e := range edges {
		undirected[e.From] = append(undirected[e.From], e.To)
		undirected[e.To] = append(undirected[e.To], e.From)
	}

	seen := make(map[string]bool, g.NodeCount())
	components := 0
	for _, id := range g.NodeIDs() {
		if seen[id] {
			continue
		}
		components++
		queue := []string{id}
		seen[id] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, next := range undirected[cur] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
	}

	if components > 1 {
		report.addWarning("graph splits into %d weakly-connected components", components)
	}
}

// TransferValidator checks that transfer edges stay inside one city and
// inside the accepted weight band. Violations abort the build.
type TransferValidator struct{}

func NewTransferValidator() *TransferValidator {
	return &TransferValidator{}
}

func (v *TransferValidator) Validate(g *Graph) ValidationReport {
	report := newValidationReport()

	for _, e := range g.Edges() {
		if e.Metadata.TransportType != EdgeTransportTransfer {
			continue
		}

		fromNode, fromOK := g.Node(e.From)
		toNode, toOK := g.Node(e.To)
		if !fromOK || !toOK {
			report.addError("transfer edge %s->%s references a missing node", e.From, e.To)
			continue
		}

		fromCity := reference.NormalizeCityName(fromNode.CityID)
		toCity := reference.NormalizeCityName(toNode.CityID)
		if fromCity == "" || toCity == "" {
			report.addError("transfer edge %s->%s has an endpoint without cityId", e.From, e.To)
		} else if fromCity != toCity {
			report.addError("transfer edge %s->%s crosses cities %s and %s", e.From, e.To, fromCity, toCity)
		}

		if e.Weight < TransferWeightMin || e.Weight > TransferWeightMax {
			report.addError("transfer edge %s->%s weight %.1f outside [%.0f,%.0f]",
				e.From, e.To, e.Weight, TransferWeightMin, TransferWeightMax)
		}
	}

	return report
}

// FerryValidator checks ferry edges terminate at ferry terminals within
// the accepted weight band. Violations are reported but the build
// proceeds; the caller downgrades them to warnings.
type FerryValidator struct{}

func NewFerryValidator() *FerryValidator {
	return &FerryValidator{}
}

func (v *FerryValidator) Validate(g *Graph) ValidationReport {
	report := newValidationReport()

	for _, e := range g.Edges() {
		if e.Metadata.TransportType != EdgeTransportFerry {
			continue
		}

		for _, endpoint := range []string{e.From, e.To} {
			n, ok := g.Node(endpoint)
			if !ok {
				report.addError("ferry edge %s->%s references missing node %s", e.From, e.To, endpoint)
				continue
			}
			record := transport.StopRecord{ID: n.ID, Name: n.Name, CityID: n.CityID, Metadata: n.Metadata}
			if !transport.IsFerryTerminal(record) {
				report.addError("ferry edge %s->%s endpoint %s is not a ferry terminal", e.From, e.To, endpoint)
			}
		}

		if e.Weight < FerryWeightMin || e.Weight > FerryWeightMax {
			report.addError("ferry edge %s->%s weight %.1f outside [%.0f,%.0f]",
				e.From, e.To, e.Weight, FerryWeightMin, FerryWeightMax)
		}
	}

	return report
}
