package graph

import (
	"testing"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/common"
)

func TestVisualize(t *testing.T) {
	g, err := Build([]claims.Row{
		row("C1", "P1", "F1", "D1", "A00", claims.FraudSuspected),
		row("C2", "P1", "F1", "D1", "A00", claims.FraudUnknown),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := Visualize(g, "FSK_F1")
	if out.Center != "FSK_F1" {
		t.Fatalf("expected center FSK_F1, got %q", out.Center)
	}
	if len(out.Nodes) != g.NumNodes() || len(out.Edges) != g.NumEdges() {
		t.Fatalf("expected %d nodes and %d edges, got %d and %d", g.NumNodes(), g.NumEdges(), len(out.Nodes), len(out.Edges))
	}

	byID := make(map[string]common.Node, len(out.Nodes))
	for _, n := range out.Nodes {
		byID[n.ID] = n
	}

	tests := []struct {
		id    string
		kind  string
		color string
		shape string
		size  int
	}{
		{"FSK_F1", "faskes", "#ff6666", "dot", 20},
		{"PTC_P1", "participant", "#66b3ff", "dot", 10},
		{"DR_D1", "dpjp", "#99ff99", "diamond", 14},
		{"ICD_A00", "icd", "#ffcc66", "triangle", 14},
		{"C1", "claim", "#cccccc", "dot", 8},
	}
	for _, tt := range tests {
		n, ok := byID[tt.id]
		if !ok {
			t.Errorf("node %q missing", tt.id)
			continue
		}
		if n.Kind != tt.kind || n.Color != tt.color || n.Shape != tt.shape || n.Size != tt.size {
			t.Errorf("node %q styled as %+v", tt.id, n)
		}
	}

	if f := byID["C1"].Fraud; f == nil || *f != 1 {
		t.Errorf("expected C1 fraud flag 1, got %v", f)
	}
	if f := byID["C2"].Fraud; f != nil {
		t.Errorf("expected no fraud flag for unknown label, got %v", *f)
	}
	if byID["FSK_F1"].Fraud != nil {
		t.Error("non-claim nodes must not carry a fraud flag")
	}

	for _, e := range out.Edges {
		if e.From >= e.To {
			t.Errorf("edge %v not ordered", e)
		}
	}
}
