package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
)

var (
	ErrMissingValues = errors.New("claim rows have empty values in a required column")
	ErrEmptyGraph    = errors.New("claim graph has no nodes after construction")
)

// Build constructs the claim graph: every row contributes a claim node linked
// to its participant, physician and diagnosis, and its facility linked to the
// physician. Identical identifiers across rows collapse into one node; for a
// repeated claim id the last row's fraud label wins.
//
// Every row is checked for missing identifiers before any node is created.
func Build(rows []claims.Row) (*Graph, error) {
	for i, row := range rows {
		if missing := row.MissingColumns(); len(missing) > 0 {
			return nil, fmt.Errorf("%w: row %d: %s", ErrMissingValues, i, strings.Join(missing, ", "))
		}
	}

	g := New()
	for i, row := range rows {
		if err := g.addRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	if g.NumNodes() == 0 {
		return nil, ErrEmptyGraph
	}

	return g, nil
}

func (g *Graph) addRow(row claims.Row) error {
	payloads := []NodeData{
		ClaimNode{ClaimID: row.ClaimID, Fraud: row.FraudPrediction},
		ParticipantNode{ParticipantID: row.ParticipantID},
		FacilityNode{FaskesID: row.FaskesID},
		PhysicianNode{DPJPID: row.DPJPID},
		DiagnosisNode{Code: row.KodeICD10},
	}
	keys := make([]string, len(payloads))
	for i, data := range payloads {
		n, err := g.AddNode(data)
		if err != nil {
			return err
		}
		keys[i] = n.Key()
	}
	claim, participant, facility, physician, diagnosis := keys[0], keys[1], keys[2], keys[3], keys[4]

	edges := []struct {
		from, to string
		kind     EdgeKind
	}{
		{facility, physician, EdgeDoctorInCharge},
		{claim, participant, EdgeFiledBy},
		{claim, physician, EdgeAttendedBy},
		{claim, diagnosis, EdgeDiagnosis},
	}
	for _, e := range edges {
		if err := g.AddEdge(e.from, e.to, e.kind); err != nil {
			return err
		}
	}
	return nil
}
