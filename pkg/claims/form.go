package claims

import (
	"fmt"
	"slices"
	"time"
)

// Choices offered by the single claim checker for fields whose values
// contain spaces and therefore cannot be expressed as oneof tags.
var (
	JenisPelayananChoices = []string{"Rawat Jalan", "Rawat Inap"}
	RoomClassChoices      = []string{"Kelas 1", "Kelas 2", "Kelas 3", "VIP"}
)

// ClaimForm is the input of the single claim checker. Computed features are
// not part of the form; Payload derives them.
type ClaimForm struct {
	// Core identifiers
	ClaimID           string `json:"claim_id" validate:"required"`
	EpisodeID         string `json:"episode_id"`
	ParticipantID     string `json:"participant_id" validate:"required"`
	NIKHash           string `json:"nik_hash"`
	NIKHashReuseCount int    `json:"nik_hash_reuse_count" validate:"min=0"`
	FaskesID          string `json:"faskes_id" validate:"required"`
	DPJPID            string `json:"dpjp_id" validate:"required"`

	// Demographic and geographic
	Age         int    `json:"age" validate:"min=0,max=150"`
	Sex         string `json:"sex" validate:"omitempty,oneof=M F"`
	Provinsi    string `json:"provinsi"`
	Kabupaten   string `json:"kabupaten"`
	FaskesLevel string `json:"faskes_level" validate:"omitempty,oneof=FKTP FKRTL"`

	// Clinical information
	TglPelayanan      string `json:"tgl_pelayanan" validate:"required"`
	KodeICD10         string `json:"kode_icd10" validate:"required"`
	TimeDiffPrevClaim int    `json:"time_diff_prev_claim" validate:"min=0"`
	KodeProsedur      string `json:"kode_prosedur"`
	JenisPelayanan    string `json:"jenis_pelayanan"`
	ClaimMonth        int    `json:"claim_month" validate:"required,min=1,max=12"`
	RoomClass         string `json:"room_class"`
	LamaDirawat       int    `json:"lama_dirawat" validate:"min=0"`

	// Financial data, in Rupiah
	BilledAmount          float64 `json:"billed_amount" validate:"min=0"`
	PaidAmount            float64 `json:"paid_amount" validate:"min=0"`
	TarifINACBG           float64 `json:"tarif_inacbg" validate:"min=0"`
	DrugCost              float64 `json:"drug_cost" validate:"min=0"`
	ProcedureCost         float64 `json:"procedure_cost" validate:"min=0"`
	RollingAvgCost30d     float64 `json:"rolling_avg_cost_30d" validate:"min=0"`
	ProviderMonthlyClaims float64 `json:"provider_monthly_claims" validate:"min=0"`

	// Behavioral metrics
	VisitCount30d                 int     `json:"visit_count_30d" validate:"min=0"`
	ClinicalPathwayDeviationScore float64 `json:"clinical_pathway_deviation_score" validate:"min=0,max=1"`
	KapitasiFlag                  bool    `json:"kapitasi_flag"`
	ReferralFlag                  bool    `json:"referral_flag"`
	ReferralToSameFacility        bool    `json:"referral_to_same_facility"`
	ProviderClaimShare            float64 `json:"provider_claim_share" validate:"min=0,max=1"`
}

// CheckChoices validates the fields the tag validator cannot express.
func (f *ClaimForm) CheckChoices() error {
	if _, err := time.Parse(time.DateOnly, f.TglPelayanan); err != nil {
		return fmt.Errorf("tgl_pelayanan must be a YYYY-MM-DD date: %q", f.TglPelayanan)
	}
	if f.JenisPelayanan != "" && !slices.Contains(JenisPelayananChoices, f.JenisPelayanan) {
		return fmt.Errorf("jenis_pelayanan must be one of %v", JenisPelayananChoices)
	}
	if f.RoomClass != "" && !slices.Contains(RoomClassChoices, f.RoomClass) {
		return fmt.Errorf("room_class must be one of %v", RoomClassChoices)
	}
	return nil
}

// ClaimPayload is the body sent to the scoring backend's single claim
// endpoint: the form plus the derived features.
type ClaimPayload struct {
	ClaimForm

	ClaimQuarter   int     `json:"claim_quarter"`
	SelisihKlaim   float64 `json:"selisih_klaim"`
	ClaimRatio     float64 `json:"claim_ratio"`
	DrugRatio      float64 `json:"drug_ratio"`
	ProcedureRatio float64 `json:"procedure_ratio"`
}

// Payload derives the computed features. Ratios with a zero denominator
// are 0.
func (f ClaimForm) Payload() ClaimPayload {
	p := ClaimPayload{
		ClaimForm:    f,
		ClaimQuarter: (f.ClaimMonth-1)/3 + 1,
		SelisihKlaim: f.BilledAmount - f.PaidAmount,
	}
	if f.PaidAmount != 0 {
		p.ClaimRatio = f.BilledAmount / f.PaidAmount
	}
	if f.BilledAmount != 0 {
		p.DrugRatio = f.DrugCost / f.BilledAmount
		p.ProcedureRatio = f.ProcedureCost / f.BilledAmount
	}
	return p
}
