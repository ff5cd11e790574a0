package graph

import (
	"github.com/OFFIS-RIT/claimnet/pkg/claims"
)

// Key prefixes for non-claim nodes. Claim nodes use the raw claim id.
const (
	ParticipantPrefix = "PTC_"
	FacilityPrefix    = "FSK_"
	PhysicianPrefix   = "DR_"
	DiagnosisPrefix   = "ICD_"
)

// NodeKind enumerates the entity types of a claim graph.
type NodeKind uint8

const (
	KindClaim NodeKind = iota + 1
	KindParticipant
	KindFacility
	KindPhysician
	KindDiagnosis
)

func (k NodeKind) String() string {
	switch k {
	case KindClaim:
		return "claim"
	case KindParticipant:
		return "participant"
	case KindFacility:
		return "faskes"
	case KindPhysician:
		return "dpjp"
	case KindDiagnosis:
		return "icd"
	default:
		return "unknown"
	}
}

// NodeData is the typed payload of a node. Implementations are limited to
// the payload types of this package.
type NodeData interface {
	Kind() NodeKind
	Key() string
	isNodeData()
}

type ClaimNode struct {
	ClaimID string
	Fraud   claims.FraudLabel
}

type ParticipantNode struct {
	ParticipantID string
}

type FacilityNode struct {
	FaskesID string
}

type PhysicianNode struct {
	DPJPID string
}

type DiagnosisNode struct {
	Code string
}

func (n ClaimNode) Kind() NodeKind       { return KindClaim }
func (n ParticipantNode) Kind() NodeKind { return KindParticipant }
func (n FacilityNode) Kind() NodeKind    { return KindFacility }
func (n PhysicianNode) Kind() NodeKind   { return KindPhysician }
func (n DiagnosisNode) Kind() NodeKind   { return KindDiagnosis }

func (n ClaimNode) Key() string       { return n.ClaimID }
func (n ParticipantNode) Key() string { return ParticipantPrefix + n.ParticipantID }
func (n FacilityNode) Key() string    { return FacilityKey(n.FaskesID) }
func (n PhysicianNode) Key() string   { return PhysicianPrefix + n.DPJPID }
func (n DiagnosisNode) Key() string   { return DiagnosisPrefix + n.Code }

func (ClaimNode) isNodeData()       {}
func (ParticipantNode) isNodeData() {}
func (FacilityNode) isNodeData()    {}
func (PhysicianNode) isNodeData()   {}
func (DiagnosisNode) isNodeData()   {}

// FacilityKey returns the node key of a faskes id.
func FacilityKey(faskesID string) string {
	return FacilityPrefix + faskesID
}

// Node is a vertex of the claim graph. It satisfies gonum's graph.Node.
type Node struct {
	id   int64
	Data NodeData
}

func (n *Node) ID() int64 {
	return n.id
}

func (n *Node) Key() string {
	return n.Data.Key()
}

func (n *Node) Kind() NodeKind {
	return n.Data.Kind()
}

// EdgeKind enumerates the relations between claim graph entities.
type EdgeKind uint8

const (
	// EdgeDoctorInCharge links a facility and a physician.
	EdgeDoctorInCharge EdgeKind = iota + 1
	// EdgeFiledBy links a claim and its participant.
	EdgeFiledBy
	// EdgeAttendedBy links a claim and its physician.
	EdgeAttendedBy
	// EdgeDiagnosis links a claim and its ICD-10 code.
	EdgeDiagnosis
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeDoctorInCharge:
		return "doctor_in_charge"
	case EdgeFiledBy:
		return "filed_by"
	case EdgeAttendedBy:
		return "attended_by"
	case EdgeDiagnosis:
		return "diagnosis"
	default:
		return "unknown"
	}
}

// Edge is an undirected relation between two node keys, with From <= To.
type Edge struct {
	From string
	To   string
	Kind EdgeKind
}
