package graph

import (
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/common"
)

type nodeStyle struct {
	color string
	shape string
	size  int
}

var nodeStyles = map[NodeKind]nodeStyle{
	KindFacility:    {color: "#ff6666", shape: "dot", size: 20},
	KindParticipant: {color: "#66b3ff", shape: "dot", size: 10},
	KindPhysician:   {color: "#99ff99", shape: "diamond", size: 14},
	KindDiagnosis:   {color: "#ffcc66", shape: "triangle", size: 14},
}

var defaultStyle = nodeStyle{color: "#cccccc", shape: "dot", size: 8}

// Visualize converts g into the renderer's node/edge lists. center is
// recorded as-is and may be empty.
func Visualize(g *Graph, center string) common.Graph {
	out := common.Graph{
		Center: center,
		Nodes:  make([]common.Node, 0, g.NumNodes()),
		Edges:  make([]common.Edge, 0, g.NumEdges()),
	}

	for _, n := range g.Nodes() {
		style, ok := nodeStyles[n.Kind()]
		if !ok {
			style = defaultStyle
		}
		vn := common.Node{
			ID:    n.Key(),
			Label: n.Key(),
			Kind:  n.Kind().String(),
			Color: style.color,
			Shape: style.shape,
			Size:  style.size,
		}
		if claim, ok := n.Data.(ClaimNode); ok && claim.Fraud != claims.FraudUnknown {
			fraud := int(claim.Fraud)
			vn.Fraud = &fraud
		}
		out.Nodes = append(out.Nodes, vn)
	}

	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, common.Edge{
			From:  e.From,
			To:    e.To,
			Label: e.Kind.String(),
		})
	}

	return out
}
