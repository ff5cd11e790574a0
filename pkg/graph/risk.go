package graph

import (
	"math"

	"gonum.org/v1/gonum/graph/network"
)

// Weights of the collusion risk signals.
const (
	BetweennessWeight = 0.4
	DegreeWeight      = 0.3
	CommunityWeight   = 0.3
)

// RiskLevel bands a final risk score for display.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// LevelFor bands a 0-100 risk score: below 40 is low, below 70 medium.
func LevelFor(score float64) RiskLevel {
	switch {
	case score >= 70:
		return RiskHigh
	case score >= 40:
		return RiskMedium
	default:
		return RiskLow
	}
}

// RiskScore is the collusion risk of one facility.
type RiskScore struct {
	FaskesID       string    `json:"faskes_id"`
	Betweenness    float64   `json:"betweenness"`
	Degree         float64   `json:"degree"`
	CommunityScore float64   `json:"community_score"`
	CommunitySize  int       `json:"community_size"`
	FinalRisk      float64   `json:"final_risk"`
	Level          RiskLevel `json:"level"`
}

// CommunityTier maps the size of a facility's community to its score. Size 0
// means the facility was not in any community.
func CommunityTier(size int) float64 {
	switch {
	case size > 7:
		return 1.0
	case size > 4:
		return 0.7
	case size > 0:
		return 0.3
	default:
		return 0
	}
}

// ScoreFacility computes the collusion risk of the facility faskesID over the
// whole graph. The second result is false when the facility is not in g,
// which is not an error.
func ScoreFacility(g *Graph, faskesID string) (*RiskScore, bool) {
	key := FacilityKey(faskesID)
	node, ok := g.Node(key)
	if !ok {
		return nil, false
	}

	score := &RiskScore{
		FaskesID:    faskesID,
		Betweenness: Betweenness(g, key),
		Degree:      DegreeCentrality(g, key),
	}

	for _, c := range Communities(g) {
		if c.Contains(node.Key()) {
			score.CommunitySize = c.Size()
			break
		}
	}
	score.CommunityScore = CommunityTier(score.CommunitySize)

	raw := BetweennessWeight*score.Betweenness +
		DegreeWeight*score.Degree +
		CommunityWeight*score.CommunityScore
	score.FinalRisk = round2(raw * 100)
	score.Level = LevelFor(score.FinalRisk)

	return score, true
}

// Betweenness returns the betweenness centrality of key normalised by
// (n-1)(n-2), the number of ordered node pairs excluding key.
func Betweenness(g *Graph, key string) float64 {
	node, ok := g.Node(key)
	if !ok {
		return 0
	}
	n := g.NumNodes()
	if n <= 2 {
		return 0
	}
	// gonum counts each unordered pair in both directions.
	raw := network.Betweenness(g.g)[node.ID()]
	return raw / float64((n-1)*(n-2))
}

// DegreeCentrality returns the degree of key divided by n-1.
func DegreeCentrality(g *Graph, key string) float64 {
	n := g.NumNodes()
	if n <= 1 {
		return 0
	}
	return float64(g.Degree(key)) / float64(n-1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
