package workflow

import (
	"context"
	"errors"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// LoadInstallmentSession opens an edit session over the note's stored installments.
func LoadInstallmentSession(ctx context.Context, db *gorm.DB, noteId int, policy config.PaidSyncPolicy) (*models.InstallmentSession, error) {
	tx := db.WithContext(ctx)
	if _, err := getConsignmentNote(tx, noteId); err != nil {
		return nil, storageErr("load installments", err)
	}
	items, err := getConsignmentItems(tx, noteId)
	if err != nil {
		return nil, storageErr("load installments", err)
	}
	installments, err := getConsignmentInstallments(tx, noteId)
	if err != nil {
		return nil, storageErr("load installments", err)
	}
	return models.NewInstallmentSession(noteId, items, installments, policy), nil
}

// ResumeInstallmentSession rebuilds a session from client entries. Persisted ids must belong to the note.
func ResumeInstallmentSession(ctx context.Context, db *gorm.DB, noteId int, entries []*models.InstallmentEntry, policy config.PaidSyncPolicy) (*models.InstallmentSession, error) {
	tx := db.WithContext(ctx)
	if _, err := getConsignmentNote(tx, noteId); err != nil {
		return nil, storageErr("resume installments", err)
	}
	items, err := getConsignmentItems(tx, noteId)
	if err != nil {
		return nil, storageErr("resume installments", err)
	}
	if err := checkInstallmentOwnership(tx, noteId, entries); err != nil {
		return nil, storageErr("resume installments", err)
	}
	return models.ResumeInstallmentSession(noteId, items, entries, policy), nil
}

func checkInstallmentOwnership(tx *gorm.DB, noteId int, entries []*models.InstallmentEntry) error {
	var ids []int
	for _, e := range entries {
		if e != nil && e.ID > 0 {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	ids = utils.UniqueSlice(ids)
	var count int64
	err := tx.Model(&models.ConsignmentInstallment{}).
		Where("note_id = ? AND id IN ?", noteId, ids).
		Count(&count).Error
	if err != nil {
		return err
	}
	if int(count) != len(ids) {
		return models.NewValidationError("installments do not belong to this note")
	}
	return nil
}

// CommitInstallments writes the session's inserts, updates and deletes in one transaction.
// Inserted entries get their ids afterwards, so committing again inserts nothing.
func CommitInstallments(ctx context.Context, db *gorm.DB, logger *logrus.Logger, noteId int, session *models.InstallmentSession) (balance models.NoteBalance, err error) {
	ctx, span := startSpan(ctx, "CommitInstallments", attribute.Int("note_id", noteId))
	defer func() { endSpan(span, err) }()

	if session == nil || session.NoteId != noteId {
		return balance, models.NewValidationError("installment session does not belong to this note")
	}
	if err = session.Validate(); err != nil {
		return balance, err
	}
	session.PrepareCommit()
	changes := session.Changes()

	inserted := make(map[*models.InstallmentEntry]models.ConsignmentInstallment, len(changes.Inserted))
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := getConsignmentNote(tx, noteId)
		if err != nil {
			return err
		}
		if note.IsArchived {
			return models.NewValidationError("archived notes cannot be edited")
		}
		persisted := append(append([]*models.InstallmentEntry{}, changes.Updated...), deletedEntries(session)...)
		if err := checkInstallmentOwnership(tx, noteId, persisted); err != nil {
			return err
		}

		if len(changes.DeletedIds) > 0 {
			err := tx.Where("note_id = ? AND id IN ?", noteId, changes.DeletedIds).
				Delete(&models.ConsignmentInstallment{}).Error
			if err != nil {
				return err
			}
		}
		for _, e := range changes.Updated {
			err := tx.Model(&models.ConsignmentInstallment{}).
				Where("id = ? AND note_id = ?", e.ID, noteId).
				Updates(map[string]interface{}{
					"sequence_no": e.SequenceNo,
					"due_date":    e.DueDate,
					"amount":      e.Amount,
					"paid_amount": e.PaidAmount,
					"is_paid":     e.IsPaid,
					"paid_at":     e.PaidAt,
					"note":        e.Note,
				}).Error
			if err != nil {
				return err
			}
		}
		for _, e := range changes.Inserted {
			row := e.ConsignmentInstallment
			row.ID = 0
			row.NoteId = noteId
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			inserted[e] = row
		}

		balance, err = RefreshNoteTotals(tx, noteId)
		return err
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentInstallmentWorkflow.go", "CommitInstallments", "Transaction", changes, err)
		}
		return models.NoteBalance{}, storageErr("commit installments", err)
	}

	for e, row := range inserted {
		e.ConsignmentInstallment = row
	}
	session.Committed()
	InvalidateConsignmentCache(logger)
	return balance, nil
}

func deletedEntries(session *models.InstallmentSession) []*models.InstallmentEntry {
	var deleted []*models.InstallmentEntry
	for _, e := range session.Entries {
		if e.Deleted && !e.IsNew() {
			deleted = append(deleted, e)
		}
	}
	return deleted
}
