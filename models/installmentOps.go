package models

import (
	"strings"
	"time"

	"github.com/maluks/consignment_backend/utils"
	"github.com/shopspring/decimal"
)

type InstallmentOpType string

const (
	InstallmentOpAdd           InstallmentOpType = "add"
	InstallmentOpGenerate      InstallmentOpType = "generate"
	InstallmentOpMarkPaid      InstallmentOpType = "mark_paid"
	InstallmentOpTogglePaid    InstallmentOpType = "toggle_paid"
	InstallmentOpReverse       InstallmentOpType = "reverse"
	InstallmentOpSetPaidAmount InstallmentOpType = "set_paid_amount"
	InstallmentOpSetAmount     InstallmentOpType = "set_amount"
	InstallmentOpSetSequence   InstallmentOpType = "set_sequence"
	InstallmentOpSetDueDate    InstallmentOpType = "set_due_date"
	InstallmentOpSetNote       InstallmentOpType = "set_note"
	InstallmentOpDelete        InstallmentOpType = "delete"
)

// InstallmentOp is one edit sent by a client planning installments over HTTP.
type InstallmentOp struct {
	Op       InstallmentOpType `json:"op"`
	Key      string            `json:"key"`
	Count    int               `json:"count"`
	FirstDue *time.Time        `json:"first_due"`
	// Value is the amount typed by the user; "12,50" and "12.50" are both accepted.
	Value    string            `json:"value"`
	Sequence int               `json:"sequence"`
	DueDate  *time.Time        `json:"due_date"`
	Note     string            `json:"note"`
	Paid     bool              `json:"paid"`
}

// Apply runs a single op against the session.
func (s *InstallmentSession) Apply(op InstallmentOp) error {
	switch op.Op {
	case InstallmentOpAdd:
		s.AddManual()
		return nil
	case InstallmentOpGenerate:
		_, err := s.GenerateEqual(op.Count, op.FirstDue)
		return err
	case InstallmentOpMarkPaid:
		return s.MarkPaid(op.Key)
	case InstallmentOpTogglePaid:
		return s.TogglePaid(op.Key, op.Paid)
	case InstallmentOpReverse:
		return s.ReversePayment(op.Key)
	case InstallmentOpSetPaidAmount:
		value, err := op.amount()
		if err != nil {
			return err
		}
		return s.SetPaidAmount(op.Key, value)
	case InstallmentOpSetAmount:
		value, err := op.amount()
		if err != nil {
			return err
		}
		return s.SetAmount(op.Key, value)
	case InstallmentOpSetSequence:
		return s.SetSequence(op.Key, op.Sequence)
	case InstallmentOpSetDueDate:
		return s.SetDueDate(op.Key, op.DueDate)
	case InstallmentOpSetNote:
		return s.SetNote(op.Key, op.Note)
	case InstallmentOpDelete:
		return s.Delete(op.Key)
	}
	return NewValidationError("unknown installment operation %q", op.Op)
}

// ApplyAll stops at the first failing op.
func (s *InstallmentSession) ApplyAll(ops []InstallmentOp) error {
	for _, op := range ops {
		if err := s.Apply(op); err != nil {
			return err
		}
	}
	return nil
}

// an empty value clears the amount
func (op InstallmentOp) amount() (decimal.Decimal, error) {
	if strings.TrimSpace(op.Value) == "" {
		return decimal.Zero, nil
	}
	value, err := utils.ParseDecimal(op.Value)
	if err != nil {
		return decimal.Zero, NewValidationError("invalid amount %q", op.Value)
	}
	return value, nil
}
