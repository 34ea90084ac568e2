package models

import "github.com/shopspring/decimal"

type NoteBalance struct {
	OriginalTotal      decimal.Decimal `json:"original_total"`
	ReturnedValue      decimal.Decimal `json:"returned_value"`
	CurrentPayable     decimal.Decimal `json:"current_payable"`
	TotalScheduled     decimal.Decimal `json:"total_scheduled"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

// SoldValue is what the seller keeps and must pay for.
func (b NoteBalance) SoldValue() decimal.Decimal {
	return b.CurrentPayable
}

// CalculateBalance derives every note total from raw lines and installments.
// Installments flagged Deleted are ignored. The outstanding balance is never negative.
func CalculateBalance(items []ConsignmentItem, installments []ConsignmentInstallment) NoteBalance {
	var b NoteBalance
	for _, item := range items {
		b.OriginalTotal = b.OriginalTotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		b.ReturnedValue = b.ReturnedValue.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.ReturnedQuantity))))
	}
	b.CurrentPayable = b.OriginalTotal.Sub(b.ReturnedValue)

	for _, inst := range installments {
		if inst.Deleted {
			continue
		}
		b.TotalScheduled = b.TotalScheduled.Add(inst.Amount)
		b.TotalPaid = b.TotalPaid.Add(inst.PaidAmount)
	}
	b.OutstandingBalance = decimal.Max(decimal.Zero, b.CurrentPayable.Sub(b.TotalPaid))
	return b
}
