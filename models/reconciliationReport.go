package models

import "time"

const (
	CheckTypeNoteTotals = "NOTE_TOTALS"
)

// Drift between the cached note totals and a fresh CalculateBalance (admin-triggered or CLI).
type ReconciliationReport struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CheckType     string    `gorm:"size:50;index;not null" json:"check_type"`  // e.g. NOTE_TOTALS
	EntityType    string    `gorm:"size:50;index;not null" json:"entity_type"` // e.g. ConsignmentNote
	EntityId      int       `gorm:"index;not null" json:"entity_id"`
	Details       string    `gorm:"type:text" json:"details"` // human-readable mismatch detail
	Repaired      bool      `gorm:"not null;default:false" json:"repaired"`
	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
