package claims

import (
	"strconv"
	"strings"
)

// Column names used by uploaded claim tables and the scoring backend.
const (
	ColumnClaimID         = "claim_id"
	ColumnParticipantID   = "participant_id"
	ColumnFaskesID        = "faskes_id"
	ColumnDPJPID          = "dpjp_id"
	ColumnKodeICD10       = "kode_icd10"
	ColumnFraudPrediction = "fraud_prediction"
)

// RequiredColumns lists the identifier columns every claim row must carry
// before a claim graph can be built from it.
var RequiredColumns = []string{
	ColumnClaimID,
	ColumnParticipantID,
	ColumnFaskesID,
	ColumnDPJPID,
	ColumnKodeICD10,
}

// missingMarkers are the cell values treated as null, matching the default
// NA markers of the dashboard's dataframe reader.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-NaN":     {},
	"-nan":     {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissing reports whether a raw cell value counts as a missing value.
func IsMissing(value string) bool {
	_, ok := missingMarkers[strings.TrimSpace(value)]
	return ok
}

// FraudLabel is the fraud prediction attached to a claim, if any.
type FraudLabel int8

const (
	FraudUnknown FraudLabel = iota - 1
	FraudLegit
	FraudSuspected
)

// ParseFraudLabel converts a fraud_prediction cell into a label. Any non-zero
// number is a positive prediction; unparseable or missing cells are unknown.
func ParseFraudLabel(value string) FraudLabel {
	if IsMissing(value) {
		return FraudUnknown
	}
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "true":
		return FraudSuspected
	case "false":
		return FraudLegit
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return FraudUnknown
	}
	if f != 0 {
		return FraudSuspected
	}
	return FraudLegit
}

func (l FraudLabel) String() string {
	switch l {
	case FraudLegit:
		return "0"
	case FraudSuspected:
		return "1"
	default:
		return "unknown"
	}
}

// Row is one claim record reduced to the identifiers the claim graph needs.
// An empty identifier means the source cell was missing.
type Row struct {
	ClaimID         string
	ParticipantID   string
	FaskesID        string
	DPJPID          string
	KodeICD10       string
	FraudPrediction FraudLabel
}

// MissingColumns returns the required columns whose value is empty in r.
func (r Row) MissingColumns() []string {
	var missing []string
	values := map[string]string{
		ColumnClaimID:       r.ClaimID,
		ColumnParticipantID: r.ParticipantID,
		ColumnFaskesID:      r.FaskesID,
		ColumnDPJPID:        r.DPJPID,
		ColumnKodeICD10:     r.KodeICD10,
	}
	for _, col := range RequiredColumns {
		if IsMissing(values[col]) {
			missing = append(missing, col)
		}
	}
	return missing
}
