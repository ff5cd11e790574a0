package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OFFIS-RIT/claimnet/pkg/common"
	"github.com/OFFIS-RIT/claimnet/pkg/graph"
)

const claimsCSV = "claim_id,participant_id,faskes_id,dpjp_id,kode_icd10,fraud_prediction\n" +
	"C1,P1,F1,D1,A00,0\n"

func writeClaims(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := os.WriteFile(path, []byte(claimsCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScoreCommand(t *testing.T) {
	out, err := run(t, "score", "--file", writeClaims(t), "--faskes", "F1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var score graph.RiskScore
	if err := json.Unmarshal([]byte(out), &score); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if score.FinalRisk != 16.5 || score.Level != graph.RiskLow {
		t.Fatalf("unexpected score %+v", score)
	}
}

func TestScoreCommand_UnknownFacility(t *testing.T) {
	if _, err := run(t, "score", "--file", writeClaims(t), "--faskes", "F9"); err == nil {
		t.Fatal("expected error for unknown facility")
	}
}

func TestGraphCommand(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "graph.json")
	if _, err := run(t, "graph", "--file", writeClaims(t), "--faskes", "F1", "--radius", "1", "--out", dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	var g common.Graph
	if err := json.Unmarshal(raw, &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.Center != "FSK_F1" || len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Fatalf("unexpected graph %+v", g)
	}
}

func TestCommunitiesCommand(t *testing.T) {
	out, err := run(t, "communities", "--file", writeClaims(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got communitiesOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Communities) != 2 || math.Abs(got.Modularity-0.21875) > 1e-9 {
		t.Fatalf("unexpected communities %+v", got)
	}
}

func TestMissingFlags(t *testing.T) {
	_, err := run(t, "score", "--file", "x.csv")
	if err == nil || !strings.Contains(err.Error(), "faskes") {
		t.Fatalf("expected missing faskes flag error, got %v", err)
	}
}
