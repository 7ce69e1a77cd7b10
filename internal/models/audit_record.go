package models

import (
	"time"
)

// AuditRecord is one immutable row per successful rationale generation.
type AuditRecord struct {
	ID               uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Timestamp        time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	PatientName      string    `gorm:"size:255;not null" json:"patientName"`
	Age              *int      `json:"age"`
	Sex              string    `gorm:"size:32;not null" json:"sex"`
	Hemoglobin       float64   `json:"hemoglobin"`
	Weight           float64   `json:"weight"`
	EsaAgent         string    `gorm:"size:100" json:"esaAgent"`
	CurrentDose      float64   `json:"currentDose"`
	RecommendedDose  string    `gorm:"column:recommended_dose;size:100" json:"recommendedDoseText"`
	Note             string    `gorm:"type:text" json:"note"`
	AIExplanation    string    `gorm:"column:ai_explanation;type:text" json:"aiExplanation"`
	GuidelineEdition string    `gorm:"size:100" json:"guidelineEdition"`
	Model            string    `gorm:"size:100" json:"model"`
	RequestID        string    `gorm:"size:36;index" json:"requestId"`
}

// TableName keeps the table name used by existing history databases.
func (AuditRecord) TableName() string {
	return "history"
}
