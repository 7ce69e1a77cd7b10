// Package audit records one immutable row per generated rationale and reads
// the most recent rows back for display.
package audit

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kdigo-rationale-server/internal/models"
)

// HistoryLimit caps how many rows Recent returns.
const HistoryLimit = 50

// Entry is everything recorded about one successful generation.
type Entry struct {
	Inputs           models.PatientInputs
	RuleOutput       models.RuleOutput
	Extra            models.IdentityExtra
	Explanation      string
	GuidelineEdition string
	Model            string
	RequestID        string
}

// Recorder appends audit rows. It is the only writer of the history table.
type Recorder interface {
	Record(ctx context.Context, entry Entry) (*models.AuditRecord, error)
}

// Reader reads recent audit rows.
type Reader interface {
	Recent(ctx context.Context) ([]models.AuditRecord, error)
}

// Store implements Recorder and Reader on a gorm database.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record inserts exactly one row. Rows are never updated or deleted here.
func (s *Store) Record(ctx context.Context, entry Entry) (*models.AuditRecord, error) {
	record := models.AuditRecord{
		PatientName:      entry.Extra.PatientNameOrDefault(),
		Age:              entry.Extra.AgeOrNil(),
		Sex:              entry.Extra.SexOrDefault(),
		Hemoglobin:       entry.Inputs.Hemoglobin,
		Weight:           entry.Inputs.Weight,
		EsaAgent:         entry.Inputs.EsaAgent,
		CurrentDose:      entry.Inputs.CurrentDoseOrZero(),
		RecommendedDose:  entry.RuleOutput.RecommendedDoseText(),
		Note:             entry.RuleOutput.Note,
		AIExplanation:    entry.Explanation,
		GuidelineEdition: entry.GuidelineEdition,
		Model:            entry.Model,
		RequestID:        entry.RequestID,
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, &PersistenceError{Op: "insert", Err: err}
	}
	return &record, nil
}

// Recent returns up to HistoryLimit rows, newest first.
func (s *Store) Recent(ctx context.Context) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	err := s.db.WithContext(ctx).
		Order("timestamp desc").
		Order("id desc").
		Limit(HistoryLimit).
		Find(&records).Error
	if err != nil {
		return nil, &PersistenceError{Op: "select", Err: err}
	}
	return records, nil
}

// PersistenceError reports a failed audit read or write. It is kept apart
// from generation failures so callers can log and decide independently.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("audit %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
