package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

type ConsignmentItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	NoteId           int             `gorm:"index;not null" json:"note_id"`
	ProductId        *int            `gorm:"index" json:"product_id"`
	Reference        string          `gorm:"size:50;not null" json:"reference"`
	Size             string          `gorm:"size:20;not null" json:"size"`
	Color            string          `gorm:"size:50;not null" json:"color"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	ReturnedQuantity int             `gorm:"not null;default:0" json:"returned_quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"unit_price"`
}

func (item ConsignmentItem) RemainingQuantity() int {
	return item.Quantity - item.ReturnedQuantity
}

func (item ConsignmentItem) PayableValue() decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.RemainingQuantity())))
}

// ClampReturned bounds a requested returned quantity to [0, quantity].
func (item ConsignmentItem) ClampReturned(requested int) int {
	return min(max(requested, 0), item.Quantity)
}

type NewConsignmentItem struct {
	Reference string          `json:"reference"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// only honoured when replacing the lines of an existing note
	ReturnedQuantity int `json:"returned_quantity"`
}

func (input *NewConsignmentItem) validate(index int) error {
	input.Reference = strings.TrimSpace(input.Reference)
	input.Size = strings.TrimSpace(input.Size)
	input.Color = strings.TrimSpace(input.Color)
	if input.Reference == "" || input.Size == "" || input.Color == "" {
		return NewValidationError("line %d: reference, size and color are required", index+1)
	}
	if input.Quantity < 1 {
		return NewValidationError("line %d: quantity must be at least 1", index+1)
	}
	if input.UnitPrice.IsNegative() {
		return NewValidationError("line %d: unit price cannot be negative", index+1)
	}
	return nil
}

// ValidateConsignmentItems checks every line; an empty list is allowed.
func ValidateConsignmentItems(lines []NewConsignmentItem) error {
	for i := range lines {
		if err := lines[i].validate(i); err != nil {
			return err
		}
	}
	return nil
}

// ToItem builds an unsaved line; the returned quantity is clamped to the shipped one.
func (input NewConsignmentItem) ToItem(noteId int) ConsignmentItem {
	item := ConsignmentItem{
		NoteId:    noteId,
		Reference: input.Reference,
		Size:      input.Size,
		Color:     input.Color,
		Quantity:  input.Quantity,
		UnitPrice: input.UnitPrice,
	}
	item.ReturnedQuantity = item.ClampReturned(input.ReturnedQuantity)
	return item
}
