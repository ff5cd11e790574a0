package graph

import (
	gg "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// DefaultEgoRadius is the neighbourhood size shown around a facility.
const DefaultEgoRadius = 2

// Ego returns the subgraph induced by the nodes at most radius hops from
// center. The second result is false when center is not in the graph.
func (g *Graph) Ego(center string, radius int) (*Graph, bool) {
	start, ok := g.Node(center)
	if !ok {
		return nil, false
	}
	if radius < 0 {
		radius = 0
	}

	within := make(map[int64]struct{})
	bfs := traverse.BreadthFirst{}
	bfs.Walk(g.g, start, func(n gg.Node, depth int) bool {
		if depth > radius {
			return true
		}
		within[n.ID()] = struct{}{}
		return false
	})

	sub := New()
	for _, id := range g.order {
		if _, ok := within[id]; ok {
			// Payload kinds are unique per key, so this cannot conflict.
			_, _ = sub.AddNode(g.nodes[id].Data)
		}
	}
	for p, kind := range g.relations {
		_, okA := within[p.a]
		_, okB := within[p.b]
		if okA && okB {
			_ = sub.AddEdge(g.nodes[p.a].Key(), g.nodes[p.b].Key(), kind)
		}
	}

	return sub, true
}
