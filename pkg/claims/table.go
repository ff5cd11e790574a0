package claims

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMissingColumn = errors.New("claims: required column not present")

// Table is an uploaded claims file kept as raw string cells. Records are
// always padded to the header width.
type Table struct {
	Header  []string
	Records [][]string
}

// NewTable builds a table, trimming header names and padding short records.
func NewTable(header []string, records [][]string) *Table {
	h := make([]string, len(header))
	for i, name := range header {
		h[i] = strings.TrimSpace(name)
	}
	recs := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(h))
		copy(row, rec)
		recs = append(recs, row)
	}
	return &Table{Header: h, Records: recs}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, bool) {
	for i, h := range t.Header {
		if h == name {
			return i, true
		}
	}
	return -1, false
}

// Value returns the cell of record i in the named column, or "" when the
// column does not exist.
func (t *Table) Value(i int, column string) string {
	idx, ok := t.Column(column)
	if !ok || i < 0 || i >= len(t.Records) {
		return ""
	}
	return t.Records[i][idx]
}

// Head returns a table holding at most the first n records.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Records) {
		n = len(t.Records)
	}
	return &Table{Header: t.Header, Records: t.Records[:n]}
}

// FacilityIDs lists the distinct faskes ids in order of first appearance.
// Missing cells are skipped.
func (t *Table) FacilityIDs() []string {
	idx, ok := t.Column(ColumnFaskesID)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	var ids []string
	for _, rec := range t.Records {
		id := strings.TrimSpace(rec[idx])
		if IsMissing(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FilterFacility returns the records whose faskes_id equals id.
func (t *Table) FilterFacility(id string) *Table {
	out := &Table{Header: t.Header}
	idx, ok := t.Column(ColumnFaskesID)
	if !ok {
		return out
	}
	for _, rec := range t.Records {
		if strings.TrimSpace(rec[idx]) == id {
			out.Records = append(out.Records, rec)
		}
	}
	return out
}

// MissingRequired lists the required columns absent from the header.
func (t *Table) MissingRequired() []string {
	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := t.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Rows maps every record to a claim Row. Missing cells become empty
// identifiers; the fraud_prediction column is optional.
func (t *Table) Rows() ([]Row, error) {
	cols := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		idx, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		cols[name] = idx
	}
	fraudIdx, hasFraud := t.Column(ColumnFraudPrediction)

	cell := func(rec []string, name string) string {
		v := strings.TrimSpace(rec[cols[name]])
		if IsMissing(v) {
			return ""
		}
		return v
	}

	rows := make([]Row, 0, len(t.Records))
	for _, rec := range t.Records {
		row := Row{
			ClaimID:         cell(rec, ColumnClaimID),
			ParticipantID:   cell(rec, ColumnParticipantID),
			FaskesID:        cell(rec, ColumnFaskesID),
			DPJPID:          cell(rec, ColumnDPJPID),
			KodeICD10:       cell(rec, ColumnKodeICD10),
			FraudPrediction: FraudUnknown,
		}
		if hasFraud {
			row.FraudPrediction = ParseFraudLabel(rec[fraudIdx])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Maps returns the records as column→value maps, the shape used for table
// previews.
func (t *Table) Maps() []map[string]string {
	out := make([]map[string]string, 0, len(t.Records))
	for _, rec := range t.Records {
		m := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			m[h] = rec[i]
		}
		out = append(out, m)
	}
	return out
}

type tableJSON struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(tableJSON{Columns: t.Header, Rows: t.Maps()})
}

func (t *Table) UnmarshalJSON(data []byte) error {
	var raw tableJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	records := make([][]string, 0, len(raw.Rows))
	for _, m := range raw.Rows {
		rec := make([]string, len(raw.Columns))
		for i, c := range raw.Columns {
			rec[i] = m[c]
		}
		records = append(records, rec)
	}
	*t = *NewTable(raw.Columns, records)
	return nil
}
