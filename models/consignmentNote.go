package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ConsignmentNote struct {
	ID         int               `gorm:"primary_key" json:"id"`
	Number     string            `gorm:"size:20;uniqueIndex;not null" json:"number"`
	SellerId   int               `gorm:"index;not null" json:"seller_id"`
	Seller     *Seller           `gorm:"foreignKey:SellerId" json:"seller,omitempty"`
	IssueDate  time.Time         `gorm:"not null" json:"issue_date"`
	DueDate    *time.Time        `json:"due_date"`
	Origin     StockOrigin       `gorm:"size:10;not null;default:store" json:"origin"`
	Notes      string            `gorm:"type:text" json:"notes"`
	Status     ConsignmentStatus `gorm:"size:20;index;not null;default:open" json:"status"`
	IsArchived bool              `gorm:"index;not null;default:false" json:"archived"`

	// cached from CalculateBalance at the end of every write, listed without loading lines
	OriginalTotal      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"original_total"`
	ReturnedValue      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"returned_value"`
	CurrentPayable     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"current_payable"`
	TotalPaid          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_paid"`
	OutstandingBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"outstanding_balance"`

	Items        []ConsignmentItem        `gorm:"foreignKey:NoteId" json:"items,omitempty"`
	Installments []ConsignmentInstallment `gorm:"foreignKey:NoteId" json:"installments,omitempty"`
	CreatedAt    time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewConsignmentNote struct {
	SellerId  int                  `json:"seller_id"`
	Origin    StockOrigin          `json:"origin"`
	IssueDate *time.Time           `json:"issue_date"`
	DueDate   *time.Time           `json:"due_date"`
	Notes     string               `json:"notes"`
	Items     []NewConsignmentItem `json:"items"`
}

// Validate checks the input without touching storage; the seller's existence is checked by the caller.
func (input *NewConsignmentNote) Validate() error {
	if input.SellerId <= 0 {
		return NewValidationError("seller is required")
	}
	if input.Origin == "" {
		input.Origin = StockOriginStore
	}
	if !input.Origin.IsValid() {
		return NewValidationError("invalid stock origin")
	}
	input.Notes = strings.TrimSpace(input.Notes)
	return ValidateConsignmentItems(input.Items)
}

// UpdateConsignmentHeader replaces due date, notes and status as a whole.
type UpdateConsignmentHeader struct {
	DueDate *time.Time        `json:"due_date"`
	Notes   string            `json:"notes"`
	Status  ConsignmentStatus `json:"status"`
}

func (input *UpdateConsignmentHeader) Validate(current *ConsignmentNote) error {
	if input.Status == "" {
		input.Status = current.Status
	}
	if !input.Status.IsValid() {
		return NewValidationError("invalid consignment status")
	}
	if input.Status != current.Status {
		if current.IsArchived {
			return NewValidationError("archived notes cannot change status")
		}
		if !current.Status.CanTransitionTo(input.Status) {
			return NewValidationError("cannot change status from %s to %s", current.Status, input.Status)
		}
	}
	return nil
}

// Balance recomputes the derived totals from the loaded lines and installments.
func (note *ConsignmentNote) Balance() NoteBalance {
	return CalculateBalance(note.Items, note.Installments)
}

// ApplyBalance copies the derived totals onto the cached header columns.
func (note *ConsignmentNote) ApplyBalance(b NoteBalance) {
	note.OriginalTotal = b.OriginalTotal
	note.ReturnedValue = b.ReturnedValue
	note.CurrentPayable = b.CurrentPayable
	note.TotalPaid = b.TotalPaid
	note.OutstandingBalance = b.OutstandingBalance
}

// CachedTotalsMatch compares the header columns with a fresh balance.
func (note *ConsignmentNote) CachedTotalsMatch(b NoteBalance) bool {
	return note.OriginalTotal.Equal(b.OriginalTotal) &&
		note.ReturnedValue.Equal(b.ReturnedValue) &&
		note.CurrentPayable.Equal(b.CurrentPayable) &&
		note.TotalPaid.Equal(b.TotalPaid) &&
		note.OutstandingBalance.Equal(b.OutstandingBalance)
}
