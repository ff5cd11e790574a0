package graph

import (
	"errors"
	"fmt"
	"sort"

	gg "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

var (
	ErrUnknownNode  = errors.New("graph: node not present")
	ErrSelfLoop     = errors.New("graph: self loops are not allowed")
	ErrKindConflict = errors.New("graph: node key already used by another kind")
)

// Graph is an undirected claim graph keyed by node key. Adding an existing
// node replaces its payload; adding an existing edge replaces its relation.
//
// A Graph is not safe for concurrent mutation.
type Graph struct {
	g         *simple.UndirectedGraph
	keys      map[string]int64
	nodes     map[int64]*Node
	order     []int64
	relations map[pair]EdgeKind
}

type pair struct {
	a, b int64
}

func newPair(x, y int64) pair {
	if x > y {
		x, y = y, x
	}
	return pair{a: x, b: y}
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		g:         simple.NewUndirectedGraph(),
		keys:      make(map[string]int64),
		nodes:     make(map[int64]*Node),
		relations: make(map[pair]EdgeKind),
	}
}

// AddNode inserts data, or replaces the payload of the node with the same
// key. A key held by a node of a different kind is rejected.
func (g *Graph) AddNode(data NodeData) (*Node, error) {
	key := data.Key()
	if id, ok := g.keys[key]; ok {
		n := g.nodes[id]
		if n.Kind() != data.Kind() {
			return nil, fmt.Errorf("%w: %q is a %s, not a %s", ErrKindConflict, key, n.Kind(), data.Kind())
		}
		n.Data = data
		return n, nil
	}

	n := &Node{id: g.g.NewNode().ID(), Data: data}
	g.g.AddNode(n)
	g.keys[key] = n.id
	g.nodes[n.id] = n
	g.order = append(g.order, n.id)
	return n, nil
}

// AddEdge connects two existing nodes.
func (g *Graph) AddEdge(from, to string, kind EdgeKind) error {
	fid, ok := g.keys[from]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, from)
	}
	tid, ok := g.keys[to]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, to)
	}
	if fid == tid {
		return fmt.Errorf("%w: %q", ErrSelfLoop, from)
	}

	g.g.SetEdge(simple.Edge{F: g.nodes[fid], T: g.nodes[tid]})
	g.relations[newPair(fid, tid)] = kind
	return nil
}

func (g *Graph) HasNode(key string) bool {
	_, ok := g.keys[key]
	return ok
}

func (g *Graph) Node(key string) (*Node, bool) {
	id, ok := g.keys[key]
	if !ok {
		return nil, false
	}
	return g.nodes[id], true
}

func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

func (g *Graph) NumEdges() int {
	return len(g.relations)
}

// insertionOrder returns all nodes in the order they were first added.
func (g *Graph) insertionOrder() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Nodes returns all nodes ordered by key.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sortNodes(out)
	return out
}

// Edges returns all edges ordered by (From, To).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.relations))
	for p, kind := range g.relations {
		from, to := g.nodes[p.a].Key(), g.nodes[p.b].Key()
		if from > to {
			from, to = to, from
		}
		out = append(out, Edge{From: from, To: to, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Neighbors returns the nodes adjacent to key, ordered by key.
func (g *Graph) Neighbors(key string) []*Node {
	id, ok := g.keys[key]
	if !ok {
		return nil
	}
	adj := gg.NodesOf(g.g.From(id))
	out := make([]*Node, 0, len(adj))
	for _, n := range adj {
		out = append(out, g.nodes[n.ID()])
	}
	sortNodes(out)
	return out
}

// Degree returns the number of neighbours of key, 0 if it is absent.
func (g *Graph) Degree(key string) int {
	id, ok := g.keys[key]
	if !ok {
		return 0
	}
	return len(gg.NodesOf(g.g.From(id)))
}

// Relation returns the relation between two nodes.
func (g *Graph) Relation(a, b string) (EdgeKind, bool) {
	aid, ok := g.keys[a]
	if !ok {
		return 0, false
	}
	bid, ok := g.keys[b]
	if !ok {
		return 0, false
	}
	kind, ok := g.relations[newPair(aid, bid)]
	return kind, ok
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Key() < nodes[j].Key()
	})
}
