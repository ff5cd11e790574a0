package graph

import (
	"reflect"
	"testing"
)

func pathGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, data := range []NodeData{
		FacilityNode{FaskesID: "F"},
		PhysicianNode{DPJPID: "D"},
		ClaimNode{ClaimID: "C1"},
		ParticipantNode{ParticipantID: "P"},
	} {
		if _, err := g.AddNode(data); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []Edge{
		{From: "FSK_F", To: "DR_D", Kind: EdgeDoctorInCharge},
		{From: "DR_D", To: "C1", Kind: EdgeAttendedBy},
		{From: "C1", To: "PTC_P", Kind: EdgeFiledBy},
	} {
		if err := g.AddEdge(e.From, e.To, e.Kind); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestEgo(t *testing.T) {
	tests := []struct {
		name      string
		radius    int
		wantNodes []string
		wantEdges int
	}{
		{"center only", 0, []string{"FSK_F"}, 0},
		{"negative radius", -3, []string{"FSK_F"}, 0},
		{"one hop", 1, []string{"DR_D", "FSK_F"}, 1},
		{"two hops", DefaultEgoRadius, []string{"C1", "DR_D", "FSK_F"}, 2},
		{"whole graph", 10, []string{"C1", "DR_D", "FSK_F", "PTC_P"}, 3},
	}
	g := pathGraph(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, ok := g.Ego("FSK_F", tt.radius)
			if !ok {
				t.Fatal("expected center to be found")
			}
			if got := nodeKeys(sub); !reflect.DeepEqual(got, tt.wantNodes) {
				t.Fatalf("nodes = %v, want %v", got, tt.wantNodes)
			}
			if sub.NumEdges() != tt.wantEdges {
				t.Fatalf("expected %d edges, got %d", tt.wantEdges, sub.NumEdges())
			}
		})
	}
}

func TestEgo_KeepsPayloadsAndRelations(t *testing.T) {
	g := pathGraph(t)
	sub, _ := g.Ego("DR_D", 1)
	if kind, ok := sub.Relation("DR_D", "C1"); !ok || kind != EdgeAttendedBy {
		t.Fatalf("expected attended_by relation, got %v %v", kind, ok)
	}
	n, ok := sub.Node("C1")
	if !ok || n.Kind() != KindClaim {
		t.Fatalf("expected claim node in subgraph, got %+v", n)
	}
	if g.NumNodes() != 4 || g.NumEdges() != 3 {
		t.Fatal("source graph was modified")
	}
}

func TestEgo_UnknownCenter(t *testing.T) {
	if sub, ok := pathGraph(t).Ego("FSK_missing", 2); ok || sub != nil {
		t.Fatalf("expected no subgraph, got %v", sub)
	}
}
