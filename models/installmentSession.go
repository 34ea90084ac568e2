package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/utils"
	"github.com/shopspring/decimal"
)

// InstallmentEntry is one row of an edit session. Key stays stable for the life of the session;
// ID is zero until the row is persisted.
type InstallmentEntry struct {
	Key string `json:"key"`
	ConsignmentInstallment
}

func (e *InstallmentEntry) IsNew() bool {
	return e.ID == 0
}

type InstallmentChanges struct {
	Inserted   []*InstallmentEntry `json:"inserted"`
	Updated    []*InstallmentEntry `json:"updated"`
	DeletedIds []int               `json:"deleted_ids"`
}

func (c InstallmentChanges) IsEmpty() bool {
	return len(c.Inserted) == 0 && len(c.Updated) == 0 && len(c.DeletedIds) == 0
}

// InstallmentSession holds the working installment list of one note until it is committed.
type InstallmentSession struct {
	NoteId  int                   `json:"note_id"`
	Items   []ConsignmentItem     `json:"-"`
	Entries []*InstallmentEntry   `json:"entries"`
	Policy  config.PaidSyncPolicy `json:"policy"`

	now func() time.Time
}

func NewInstallmentSession(noteId int, items []ConsignmentItem, persisted []ConsignmentInstallment, policy config.PaidSyncPolicy) *InstallmentSession {
	s := &InstallmentSession{
		NoteId: noteId,
		Items:  items,
		Policy: policy,
		now:    time.Now,
	}
	sorted := append([]ConsignmentInstallment(nil), persisted...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SequenceNo < sorted[j].SequenceNo })
	for _, row := range sorted {
		row.Deleted = false
		s.Entries = append(s.Entries, &InstallmentEntry{
			Key:                    persistedKey(row.ID),
			ConsignmentInstallment: row,
		})
	}
	return s
}

// ResumeInstallmentSession rebuilds a session from entries sent back by a client.
// Entries without a key get a fresh one.
func ResumeInstallmentSession(noteId int, items []ConsignmentItem, entries []*InstallmentEntry, policy config.PaidSyncPolicy) *InstallmentSession {
	s := &InstallmentSession{
		NoteId: noteId,
		Items:  items,
		Policy: policy,
		now:    time.Now,
	}
	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.Key == "" {
			if e.ID > 0 {
				e.Key = persistedKey(e.ID)
			} else {
				e.Key = uuid.NewString()
			}
		}
		e.NoteId = noteId
		s.Entries = append(s.Entries, e)
	}
	return s
}

func persistedKey(id int) string {
	return fmt.Sprintf("installment-%d", id)
}

// SetClock replaces time.Now; used by tests.
func (s *InstallmentSession) SetClock(now func() time.Time) {
	s.now = now
}

func (s *InstallmentSession) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// Active returns the entries not marked for deletion, in list order.
func (s *InstallmentSession) Active() []*InstallmentEntry {
	active := make([]*InstallmentEntry, 0, len(s.Entries))
	for _, e := range s.Entries {
		if !e.Deleted {
			active = append(active, e)
		}
	}
	return active
}

func (s *InstallmentSession) Find(key string) (*InstallmentEntry, error) {
	for _, e := range s.Entries {
		if e.Key == key && !e.Deleted {
			return e, nil
		}
	}
	return nil, NewValidationError("installment %s not found", key)
}

func (s *InstallmentSession) nextSequence() int {
	maxSeq := 0
	for _, e := range s.Active() {
		maxSeq = max(maxSeq, e.SequenceNo)
	}
	return maxSeq + 1
}

func (s *InstallmentSession) Balance() NoteBalance {
	rows := make([]ConsignmentInstallment, 0, len(s.Entries))
	for _, e := range s.Entries {
		rows = append(rows, e.ConsignmentInstallment)
	}
	return CalculateBalance(s.Items, rows)
}

// AddManual appends an unpaid, zero-amount installment after the highest sequence.
func (s *InstallmentSession) AddManual() *InstallmentEntry {
	e := &InstallmentEntry{
		Key: uuid.NewString(),
		ConsignmentInstallment: ConsignmentInstallment{
			NoteId:     s.NoteId,
			SequenceNo: s.nextSequence(),
			Amount:     decimal.Zero,
			PaidAmount: decimal.Zero,
		},
	}
	s.Entries = append(s.Entries, e)
	return e
}

// GenerateEqual splits the outstanding balance into count installments rounded down to cents.
// The first installment absorbs the remainder, so the amounts add up to the balance.
// Due dates are firstDue plus i months; firstDue defaults to today.
func (s *InstallmentSession) GenerateEqual(count int, firstDue *time.Time) ([]*InstallmentEntry, error) {
	if count < 1 {
		return nil, NewValidationError("installment count must be at least 1")
	}
	outstanding := s.Balance().OutstandingBalance
	if !outstanding.IsPositive() {
		return nil, NewValidationError("nothing to split")
	}

	n := decimal.NewFromInt(int64(count))
	base := outstanding.Div(n).Truncate(2)
	remainder := outstanding.Sub(base.Mul(n)).Round(2)

	start := utils.TruncateToDay(s.clock())
	if firstDue != nil {
		start = *firstDue
	}
	seq := s.nextSequence()

	generated := make([]*InstallmentEntry, 0, count)
	for i := 0; i < count; i++ {
		amount := base
		if i == 0 {
			amount = base.Add(remainder)
		}
		due := start.AddDate(0, i, 0)
		e := &InstallmentEntry{
			Key: uuid.NewString(),
			ConsignmentInstallment: ConsignmentInstallment{
				NoteId:     s.NoteId,
				SequenceNo: seq + i,
				DueDate:    &due,
				Amount:     amount,
				PaidAmount: decimal.Zero,
			},
		}
		generated = append(generated, e)
	}
	s.Entries = append(s.Entries, generated...)
	return generated, nil
}

func (s *InstallmentSession) stampPaid(e *InstallmentEntry) {
	e.IsPaid = true
	if e.PaidAt == nil {
		now := s.clock()
		e.PaidAt = &now
	}
}

func clearPaid(e *InstallmentEntry) {
	e.IsPaid = false
	e.PaidAt = nil
}

// MarkPaid settles an installment. A paid amount already entered is kept, otherwise it becomes the full amount.
func (s *InstallmentSession) MarkPaid(key string) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	if !e.PaidAmount.IsPositive() {
		e.PaidAmount = e.Amount
	}
	s.stampPaid(e)
	return nil
}

// TogglePaid is the checkbox: checking behaves like MarkPaid, unchecking zeroes the payment.
func (s *InstallmentSession) TogglePaid(key string, paid bool) error {
	if paid {
		return s.MarkPaid(key)
	}
	return s.ReversePayment(key)
}

func (s *InstallmentSession) ReversePayment(key string) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.PaidAmount = decimal.Zero
	clearPaid(e)
	return nil
}

func (s *InstallmentSession) SetPaidAmount(key string, value decimal.Decimal) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.PaidAmount = decimal.Max(decimal.Zero, value)
	s.syncPaid(e)
	return nil
}

func (s *InstallmentSession) SetAmount(key string, value decimal.Decimal) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.Amount = decimal.Max(decimal.Zero, value)
	if s.Policy == config.PaidSyncSymmetric {
		s.syncPaid(e)
	}
	return nil
}

func (s *InstallmentSession) syncPaid(e *InstallmentEntry) {
	settled := e.PaidAmount.IsPositive() && e.PaidAmount.GreaterThanOrEqual(e.Amount)
	switch s.Policy {
	case config.PaidSyncSymmetric:
		if settled {
			s.stampPaid(e)
		} else {
			clearPaid(e)
		}
	default:
		if !e.PaidAmount.IsPositive() {
			clearPaid(e)
		} else if settled {
			s.stampPaid(e)
		}
	}
}

// SetSequence edits the sequence number; values below 1 become 1.
func (s *InstallmentSession) SetSequence(key string, seq int) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.SequenceNo = max(1, seq)
	return nil
}

func (s *InstallmentSession) SetDueDate(key string, due *time.Time) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.DueDate = due
	return nil
}

func (s *InstallmentSession) SetNote(key string, note string) error {
	e, err := s.Find(key)
	if err != nil {
		return err
	}
	e.Note = note
	return nil
}

// Delete drops an unsaved entry at once and marks a persisted one for removal on commit.
func (s *InstallmentSession) Delete(key string) error {
	for i, e := range s.Entries {
		if e.Key != key || e.Deleted {
			continue
		}
		if e.IsNew() {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
		} else {
			e.Deleted = true
		}
		return nil
	}
	return NewValidationError("installment %s not found", key)
}

// Validate is run before commit: sequences positive and unique, amounts non-negative.
func (s *InstallmentSession) Validate() error {
	seen := make(map[int]bool)
	for _, e := range s.Active() {
		if e.SequenceNo < 1 {
			return NewValidationError("installment sequence must be at least 1")
		}
		if seen[e.SequenceNo] {
			return NewValidationError("installment sequence %d is used twice", e.SequenceNo)
		}
		seen[e.SequenceNo] = true
		if e.Amount.IsNegative() || e.PaidAmount.IsNegative() {
			return NewValidationError("installment %d: amounts cannot be negative", e.SequenceNo)
		}
	}
	return nil
}

// Changes partitions the session into rows to insert, rows to update in place and ids to delete.
func (s *InstallmentSession) Changes() InstallmentChanges {
	changes := InstallmentChanges{
		Inserted:   []*InstallmentEntry{},
		Updated:    []*InstallmentEntry{},
		DeletedIds: []int{},
	}
	for _, e := range s.Entries {
		switch {
		case e.Deleted && !e.IsNew():
			changes.DeletedIds = append(changes.DeletedIds, e.ID)
		case e.Deleted:
		case e.IsNew():
			changes.Inserted = append(changes.Inserted, e)
		default:
			changes.Updated = append(changes.Updated, e)
		}
	}
	return changes
}

// PrepareCommit fixes paid-at before rows are written: stamped when paid, cleared when not.
func (s *InstallmentSession) PrepareCommit() {
	for _, e := range s.Active() {
		e.NoteId = s.NoteId
		if e.IsPaid {
			s.stampPaid(e)
		} else {
			e.PaidAt = nil
		}
	}
}

// Committed drops entries whose deletion has been written.
func (s *InstallmentSession) Committed() {
	kept := s.Entries[:0]
	for _, e := range s.Entries {
		if !e.Deleted {
			kept = append(kept, e)
		}
	}
	s.Entries = kept
}
