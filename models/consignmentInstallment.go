package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ConsignmentInstallment struct {
	ID         int             `gorm:"primary_key" json:"id"`
	NoteId     int             `gorm:"index;not null" json:"note_id"`
	SequenceNo int             `gorm:"not null" json:"sequence_no"`
	DueDate    *time.Time      `json:"due_date"`
	Amount     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	PaidAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"paid_amount"`
	IsPaid     bool            `gorm:"not null;default:false" json:"is_paid"`
	PaidAt     *time.Time      `json:"paid_at"`
	Note       string          `gorm:"size:255" json:"note"`
	// Deleted marks an entry of an edit session for removal on commit; never stored.
	Deleted   bool      `gorm:"-" json:"deleted,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
