package common

// Graph is the serialisable form of a claim graph, shaped for the
// dashboard's network renderer (vis-network style nodes and edges).
//
// A graph contains:
//   - Nodes: claims, participants, facilities, physicians and diagnoses
//   - Edges: undirected relations between them, labelled by relation kind
type Graph struct {
	Center string `json:"center,omitempty"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Node is a styled graph node. Kind is one of claim, participant, faskes,
// dpjp or icd; the styling fields are derived from it.
//
// Fraud is only set for claim nodes whose prediction is known.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Color string `json:"color"`
	Shape string `json:"shape"`
	Size  int    `json:"size"`
	Fraud *int   `json:"fraud,omitempty"`
}

// Edge connects two nodes by id. Edges are undirected; From is the smaller
// id of the pair.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}
