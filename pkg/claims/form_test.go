package claims

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
)

func validForm() ClaimForm {
	return ClaimForm{
		ClaimID:       "C1",
		ParticipantID: "P1",
		FaskesID:      "F1",
		DPJPID:        "D1",
		TglPelayanan:  "2025-03-14",
		KodeICD10:     "A00",
		ClaimMonth:    5,
		BilledAmount:  2_000_000,
		PaidAmount:    1_600_000,
		DrugCost:      500_000,
		ProcedureCost: 300_000,
	}
}

func TestClaimForm_Payload(t *testing.T) {
	p := validForm().Payload()

	if p.ClaimQuarter != 2 {
		t.Errorf("expected quarter 2, got %d", p.ClaimQuarter)
	}
	if p.SelisihKlaim != 400_000 {
		t.Errorf("expected selisih 400000, got %v", p.SelisihKlaim)
	}
	if p.ClaimRatio != 1.25 {
		t.Errorf("expected claim ratio 1.25, got %v", p.ClaimRatio)
	}
	if p.DrugRatio != 0.25 {
		t.Errorf("expected drug ratio 0.25, got %v", p.DrugRatio)
	}
	if p.ProcedureRatio != 0.15 {
		t.Errorf("expected procedure ratio 0.15, got %v", p.ProcedureRatio)
	}
}

func TestClaimForm_PayloadZeroDenominators(t *testing.T) {
	f := validForm()
	f.BilledAmount = 0
	f.PaidAmount = 0
	p := f.Payload()
	if p.ClaimRatio != 0 || p.DrugRatio != 0 || p.ProcedureRatio != 0 {
		t.Fatalf("expected zero ratios, got %v %v %v", p.ClaimRatio, p.DrugRatio, p.ProcedureRatio)
	}
}

func TestClaimForm_PayloadQuarters(t *testing.T) {
	want := map[int]int{1: 1, 3: 1, 4: 2, 6: 2, 7: 3, 9: 3, 10: 4, 12: 4}
	for month, quarter := range want {
		f := validForm()
		f.ClaimMonth = month
		if got := f.Payload().ClaimQuarter; got != quarter {
			t.Errorf("month %d: expected quarter %d, got %d", month, quarter, got)
		}
	}
}

func TestClaimForm_PayloadJSONFlattensForm(t *testing.T) {
	data, err := json.Marshal(validForm().Payload())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"claim_id", "faskes_id", "claim_quarter", "selisih_klaim", "claim_ratio"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in payload", key)
		}
	}
	if _, ok := m["ClaimForm"]; ok {
		t.Error("embedded form should be flattened")
	}
}

func TestClaimForm_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		mutate  func(*ClaimForm)
		wantErr bool
	}{
		{"valid", func(*ClaimForm) {}, false},
		{"missing claim id", func(f *ClaimForm) { f.ClaimID = "" }, true},
		{"month out of range", func(f *ClaimForm) { f.ClaimMonth = 13 }, true},
		{"bad sex", func(f *ClaimForm) { f.Sex = "X" }, true},
		{"valid sex", func(f *ClaimForm) { f.Sex = "F" }, false},
		{"bad faskes level", func(f *ClaimForm) { f.FaskesLevel = "RS" }, true},
		{"deviation above one", func(f *ClaimForm) { f.ClinicalPathwayDeviationScore = 1.5 }, true},
		{"negative amount", func(f *ClaimForm) { f.PaidAmount = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := v.Struct(f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClaimForm_CheckChoices(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ClaimForm)
		wantErr bool
	}{
		{"valid", func(*ClaimForm) {}, false},
		{"bad date", func(f *ClaimForm) { f.TglPelayanan = "14/03/2025" }, true},
		{"known service", func(f *ClaimForm) { f.JenisPelayanan = "Rawat Inap" }, false},
		{"unknown service", func(f *ClaimForm) { f.JenisPelayanan = "Home Care" }, true},
		{"known room", func(f *ClaimForm) { f.RoomClass = "VIP" }, false},
		{"unknown room", func(f *ClaimForm) { f.RoomClass = "Kelas 4" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			err := f.CheckChoices()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckChoices() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
