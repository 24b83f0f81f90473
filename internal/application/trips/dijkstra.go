package trips

import (
	"context"

	"github.com/sakhatrip/sakhatrip-go/internal/domain/graph"
)

// edgeRef identifies a directed edge for exclusion during alternative
// search
type edgeRef struct {
	from string
	to   string
}

// pathFinder runs Dijkstra over one pinned graph snapshot. Nodes are
// discovered lazily through GetNeighbors, so only the explored frontier
// is ever held in memory.
type pathFinder struct {
	reader graph.Reader
}

func newPathFinder(reader graph.Reader) *pathFinder {
	return &pathFinder{reader: reader}
}

// shortestPath returns the node sequence from start to end with minimal
// total weight, skipping excluded edges. found=false when end is
// unreachable.
func (p *pathFinder) shortestPath(ctx context.Context, start, end string, excluded map[edgeRef]struct{}) ([]string, float64, bool, error) {
	dist := map[string]float64{start: 0}
	prev := make(map[string]string)
	visited := make(map[string]bool)

	for {
		// Linear scan for the nearest unvisited frontier node. The
		// frontier stays small enough that a heap buys nothing here.
		current := ""
		best := 0.0
		for id, d := range dist {
			if visited[id] {
				continue
			}
			if current == "" || d < best {
				current, best = id, d
			}
		}
		if current == "" {
			break
		}
		if current == end {
			return p.reconstruct(prev, start, end), best, true, nil
		}
		visited[current] = true

		neighbors, err := p.reader.GetNeighbors(ctx, current)
		if err != nil {
			return nil, 0, false, err
		}
		for _, nb := range neighbors {
			if _, skip := excluded[edgeRef{from: current, to: nb.NeighborID}]; skip {
				continue
			}
			if visited[nb.NeighborID] || !graph.IsFiniteWeight(nb.Weight) || nb.Weight <= 0 {
				continue
			}
			candidate := best + nb.Weight
			if existing, seen := dist[nb.NeighborID]; !seen || candidate < existing {
				dist[nb.NeighborID] = candidate
				prev[nb.NeighborID] = current
			}
		}
	}

	return nil, 0, false, nil
}

func (p *pathFinder) reconstruct(prev map[string]string, start, end string) []string {
	var reversed []string
	for cur := end; ; {
		reversed = append(reversed, cur)
		if cur == start {
			break
		}
		next, ok := prev[cur]
		if !ok {
			return nil
		}
		cur = next
	}
	path := make([]string, len(reversed))
	for i, id := range reversed {
		path[len(reversed)-1-i] = id
	}
	return path
}
