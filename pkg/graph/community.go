package graph

import (
	"math"
	"sort"

	gg "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/community"
)

// gainTolerance absorbs float noise when comparing modularity gains, so
// gains within it of each other tie and gains within it of zero count as zero.
const gainTolerance = 1e-12

// Community is a set of node keys, sorted.
type Community struct {
	Members []string `json:"members"`
}

func (c Community) Size() int {
	return len(c.Members)
}

func (c Community) Contains(key string) bool {
	i := sort.SearchStrings(c.Members, key)
	return i < len(c.Members) && c.Members[i] == key
}

// Communities partitions g with greedy modularity maximisation
// (Clauset-Newman-Moore): starting from singletons, the connected pair of
// communities with the largest modularity gain is merged until every
// remaining merge would decrease modularity. Zero-gain merges are taken.
//
// Communities are identified by the insertion index of a node. Equal gains go
// to the pair with the lowest (smaller, larger) index, and the smaller one is
// merged into the larger one, which keeps its index.
//
// Communities are returned largest first, ties ordered by first member.
func Communities(g *Graph) []Community {
	nodes := g.insertionOrder()
	n := len(nodes)
	if n == 0 {
		return nil
	}

	index := make(map[int64]int, n)
	members := make([][]string, n)
	for i, node := range nodes {
		index[node.id] = i
		members[i] = []string{node.Key()}
	}

	if m := float64(g.NumEdges()); m > 0 {
		// e[i][j] is the fraction of edge ends joining i and j, a[i] the
		// fraction of edge ends attached to i.
		e := make([]map[int]float64, n)
		a := make([]float64, n)
		for i := range e {
			e[i] = make(map[int]float64)
		}
		w := 1 / (2 * m)
		for p := range g.relations {
			i, j := index[p.a], index[p.b]
			e[i][j] += w
			e[j][i] += w
			a[i] += w
			a[j] += w
		}

		for {
			bi, bj, best := -1, -1, 0.0
			for i := 0; i < n; i++ {
				for j, eij := range e[i] {
					if j <= i {
						continue
					}
					gain := 2 * (eij - a[i]*a[j])
					switch {
					case bi < 0 || gain > best+gainTolerance:
						bi, bj, best = i, j, gain
					case gain >= best-gainTolerance && (i < bi || (i == bi && j < bj)):
						bi, bj, best = i, j, gain
					}
				}
			}
			if bi < 0 || best < -gainTolerance {
				break
			}

			// Merge bi into bj.
			for k, eik := range e[bi] {
				delete(e[k], bi)
				if k == bj {
					continue
				}
				e[bj][k] += eik
				e[k][bj] += eik
			}
			e[bi] = nil
			a[bj] += a[bi]
			a[bi] = 0
			members[bj] = append(members[bj], members[bi]...)
			members[bi] = nil
		}
	}

	var out []Community
	for _, keys := range members {
		if len(keys) == 0 {
			continue
		}
		sort.Strings(keys)
		out = append(out, Community{Members: keys})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size() != out[j].Size() {
			return out[i].Size() > out[j].Size()
		}
		return out[i].Members[0] < out[j].Members[0]
	})
	return out
}

// Modularity returns the modularity Q of the given partition of g.
func Modularity(g *Graph, communities []Community) float64 {
	if g.NumEdges() == 0 {
		return 0
	}
	parts := make([][]gg.Node, 0, len(communities))
	for _, c := range communities {
		part := make([]gg.Node, 0, c.Size())
		for _, key := range c.Members {
			if n, ok := g.Node(key); ok {
				part = append(part, n)
			}
		}
		parts = append(parts, part)
	}
	q := community.Q(g.g, parts, 1)
	if math.IsNaN(q) {
		return 0
	}
	return q
}
