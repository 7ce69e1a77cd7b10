package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendedDoseText(t *testing.T) {
	tests := []struct {
		name string
		out  RuleOutput
		want string
	}{
		{"weekly dose", RuleOutput{WeeklyDose: 31.5, PerDose: 31.5, Unit: "mcg/week"}, "31.5 mcg/week"},
		{"falls back to per dose", RuleOutput{WeeklyDose: 0, PerDose: 4000, Unit: "units/dose"}, "4000 units/dose"},
		{"no unit", RuleOutput{WeeklyDose: 12}, "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.out.RecommendedDoseText())
		})
	}
}

func TestIdentityDefaults(t *testing.T) {
	var empty IdentityExtra
	assert.Equal(t, DefaultPatientName, empty.PatientNameOrDefault())
	assert.Equal(t, DefaultSex, empty.SexOrDefault())
	assert.Nil(t, empty.AgeOrNil())

	name, sex, age := "Jane", "F", 61
	full := IdentityExtra{PatientName: &name, Sex: &sex, Age: &age}
	assert.Equal(t, "Jane", full.PatientNameOrDefault())
	assert.Equal(t, "F", full.SexOrDefault())
	if assert.NotNil(t, full.AgeOrNil()) {
		assert.Equal(t, 61, *full.AgeOrNil())
	}

	zero := 0
	assert.Nil(t, IdentityExtra{Age: &zero}.AgeOrNil())
}

func TestCurrentDoseOrZero(t *testing.T) {
	assert.Zero(t, PatientInputs{}.CurrentDoseOrZero())
	dose := 40.0
	assert.Equal(t, 40.0, PatientInputs{CurrentDose: &dose}.CurrentDoseOrZero())
}
