package models

import (
	"strconv"
	"strings"
)

// PatientInputs are the values the upstream rule engine used to compute its recommendation.
type PatientInputs struct {
	Hemoglobin           float64  `json:"hemoglobin"`
	PreviousHemoglobin   *float64 `json:"previousHemoglobin,omitempty"`
	CurrentDose          *float64 `json:"currentDose,omitempty"`
	EsaAgent             string   `json:"esaAgent" validate:"required,notblank"`
	Weight               float64  `json:"weight"`
	WeeksSinceLastChange *float64 `json:"weeksSinceLastChange,omitempty"`
}

// RuleOutput is the deterministic recommendation produced by the rule engine.
// It is trusted once its shape is valid and never recomputed here.
type RuleOutput struct {
	WeeklyDose float64 `json:"weeklyDose"`
	PerDose    float64 `json:"perDose"`
	Unit       string  `json:"unit"`
	Note       string  `json:"note"`
}

// IdentityExtra carries optional patient identity fields recorded with the audit row.
type IdentityExtra struct {
	PatientName *string `json:"patientName,omitempty" validate:"omitempty,max=255"`
	Age         *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=150"`
	Sex         *string `json:"sex,omitempty" validate:"omitempty,max=32"`
}

// RationaleRequest is a validated POST /api/kdigo-rationale payload.
type RationaleRequest struct {
	Inputs     PatientInputs
	RuleOutput RuleOutput
	Extra      IdentityExtra
}

// Identity defaults applied when the caller omits the optional fields.
const (
	DefaultPatientName = "Anonymous"
	DefaultSex         = "N/A"
)

// RecommendedDoseText renders the dose with its unit, e.g. "31.5 mcg/week".
// The per-dose amount stands in when no weekly dose was computed.
func (r RuleOutput) RecommendedDoseText() string {
	dose := r.WeeklyDose
	if dose == 0 {
		dose = r.PerDose
	}
	return strings.TrimSpace(strconv.FormatFloat(dose, 'f', -1, 64) + " " + r.Unit)
}

// PatientNameOrDefault returns the supplied name, or "Anonymous" when blank.
func (e IdentityExtra) PatientNameOrDefault() string {
	if e.PatientName == nil || strings.TrimSpace(*e.PatientName) == "" {
		return DefaultPatientName
	}
	return *e.PatientName
}

// SexOrDefault returns the supplied sex, or "N/A" when blank.
func (e IdentityExtra) SexOrDefault() string {
	if e.Sex == nil || strings.TrimSpace(*e.Sex) == "" {
		return DefaultSex
	}
	return *e.Sex
}

// AgeOrNil treats a zero age as unknown.
func (e IdentityExtra) AgeOrNil() *int {
	if e.Age == nil || *e.Age == 0 {
		return nil
	}
	age := *e.Age
	return &age
}

// CurrentDoseOrZero returns the current dose, or 0 when absent.
func (p PatientInputs) CurrentDoseOrZero() float64 {
	if p.CurrentDose == nil {
		return 0
	}
	return *p.CurrentDose
}
