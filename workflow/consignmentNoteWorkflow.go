package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const maxNumberAttempts = 5

// CreateConsignmentNote numbers a new open note, writes its lines and takes them out of stock in one transaction.
func CreateConsignmentNote(ctx context.Context, db *gorm.DB, logger *logrus.Logger, input models.NewConsignmentNote) (note *models.ConsignmentNote, err error) {
	ctx, span := startSpan(ctx, "CreateConsignmentNote", attribute.Int("seller_id", input.SellerId))
	defer func() { endSpan(span, err) }()

	if err = input.Validate(); err != nil {
		return nil, err
	}
	if _, err = models.GetSeller(ctx, db, input.SellerId); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			err = models.NewValidationError("seller %d does not exist", input.SellerId)
		}
		return nil, err
	}

	release, err := utils.ObtainLock(ctx, "ConsignmentNumber", models.ConsignmentNumberPrefix, "consignmentNoteWorkflow.go", "CreateConsignmentNote")
	if err != nil {
		return nil, err
	}
	defer release()

	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		note, err = createConsignmentNote(ctx, db, logger, input)
		if err == nil || !isDuplicateKeyErr(err) {
			break
		}
		logger.WithFields(logrus.Fields{
			"field":   "CreateConsignmentNote",
			"attempt": attempt,
		}).Warn("consignment number already taken, retrying")
	}
	if err != nil {
		config.LogError(logger, "consignmentNoteWorkflow.go", "CreateConsignmentNote", "createConsignmentNote", input, err)
		return nil, storageErr("create consignment note", err)
	}

	InvalidateConsignmentCache(logger)
	return note, nil
}

func createConsignmentNote(ctx context.Context, db *gorm.DB, logger *logrus.Logger, input models.NewConsignmentNote) (*models.ConsignmentNote, error) {
	var note models.ConsignmentNote
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextConsignmentNumber(tx)
		if err != nil {
			return err
		}
		issueDate := time.Now()
		if input.IssueDate != nil {
			issueDate = *input.IssueDate
		}
		note = models.ConsignmentNote{
			Number:    number,
			SellerId:  input.SellerId,
			IssueDate: issueDate,
			DueDate:   input.DueDate,
			Origin:    input.Origin,
			Notes:     input.Notes,
			Status:    models.ConsignmentStatusOpen,
		}
		if err := tx.Create(&note).Error; err != nil {
			return err
		}

		items, err := insertConsignmentItems(tx, note.ID, input.Items, false)
		if err != nil {
			return err
		}
		if err := withdrawItems(tx, logger, note.Origin, items); err != nil {
			return err
		}
		note.Items = items

		balance, err := RefreshNoteTotals(tx, note.ID)
		if err != nil {
			return err
		}
		note.ApplyBalance(balance)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// nextConsignmentNumber reads the most recently created note and increments its number.
func nextConsignmentNumber(tx *gorm.DB) (string, error) {
	var last models.ConsignmentNote
	err := tx.Select("id", "number").
		Order("created_at DESC").Order("id DESC").
		Limit(1).Find(&last).Error
	if err != nil {
		return "", err
	}
	return models.NextConsignmentNumber(last.Number), nil
}

func insertConsignmentItems(tx *gorm.DB, noteId int, lines []models.NewConsignmentItem, keepReturned bool) ([]models.ConsignmentItem, error) {
	items := make([]models.ConsignmentItem, 0, len(lines))
	for _, line := range lines {
		item := line.ToItem(noteId)
		if !keepReturned {
			item.ReturnedQuantity = 0
		}
		productId, err := resolveLineProduct(tx, item)
		if err != nil {
			return nil, err
		}
		item.ProductId = productId
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetConsignmentNote loads a note with its seller, lines, installments and computed balance.
func GetConsignmentNote(ctx context.Context, db *gorm.DB, id int) (*models.ConsignmentNoteDetail, error) {
	var note models.ConsignmentNote
	err := db.WithContext(ctx).
		Preload("Seller").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		Preload("Installments", func(tx *gorm.DB) *gorm.DB { return tx.Order("sequence_no").Order("id") }).
		First(&note, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, storageErr("get consignment note", err)
	}
	return &models.ConsignmentNoteDetail{
		ConsignmentNote: &note,
		Balance:         note.Balance(),
	}, nil
}

// UpdateConsignmentHeader replaces due date, notes and status. Status changes follow the allowed transitions
// and never archive the note.
func UpdateConsignmentHeader(ctx context.Context, db *gorm.DB, logger *logrus.Logger, id int, input models.UpdateConsignmentHeader) (note *models.ConsignmentNote, err error) {
	ctx, span := startSpan(ctx, "UpdateConsignmentHeader", attribute.Int("note_id", id))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getConsignmentNote(tx, id)
		if err != nil {
			return err
		}
		if err := input.Validate(current); err != nil {
			return err
		}
		err = tx.Model(current).Updates(map[string]interface{}{
			"due_date": input.DueDate,
			"notes":    input.Notes,
			"status":   input.Status,
		}).Error
		if err != nil {
			return err
		}
		note, err = getConsignmentNote(tx, id)
		return err
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentNoteWorkflow.go", "UpdateConsignmentHeader", "Transaction", input, err)
		}
		return nil, storageErr("update consignment note", err)
	}
	InvalidateConsignmentCache(logger)
	return note, nil
}

// ToggleArchiveConsignmentNote archives a closed note, or unarchives any archived one.
func ToggleArchiveConsignmentNote(ctx context.Context, db *gorm.DB, logger *logrus.Logger, id int) (note *models.ConsignmentNote, err error) {
	ctx, span := startSpan(ctx, "ToggleArchiveConsignmentNote", attribute.Int("note_id", id))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getConsignmentNote(tx, id)
		if err != nil {
			return err
		}
		if !current.IsArchived && current.Status != models.ConsignmentStatusClosed {
			return models.NewValidationError("only closed notes may be archived")
		}
		archived := !current.IsArchived
		if err := tx.Model(current).Update("is_archived", archived).Error; err != nil {
			return err
		}
		note = current
		note.IsArchived = archived
		return nil
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentNoteWorkflow.go", "ToggleArchiveConsignmentNote", "Transaction", id, err)
		}
		return nil, storageErr("toggle archive", err)
	}
	InvalidateConsignmentCache(logger)
	return note, nil
}

// DeleteConsignmentNote removes an archived note: installments, then lines, then the header.
func DeleteConsignmentNote(ctx context.Context, db *gorm.DB, logger *logrus.Logger, id int) (note *models.ConsignmentNote, err error) {
	ctx, span := startSpan(ctx, "DeleteConsignmentNote", attribute.Int("note_id", id))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := getConsignmentNote(tx, id)
		if err != nil {
			return err
		}
		if !current.IsArchived {
			return models.NewValidationError("only archived notes may be deleted")
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.ConsignmentInstallment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.ConsignmentItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(current).Error; err != nil {
			return err
		}
		note = current
		return nil
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentNoteWorkflow.go", "DeleteConsignmentNote", "Transaction", id, err)
		}
		return nil, storageErr("delete consignment note", err)
	}
	InvalidateConsignmentCache(logger)
	return note, nil
}

// ReplaceConsignmentItems swaps all lines of an open note. Stock taken by the old lines is
// restored before the new lines are withdrawn.
func ReplaceConsignmentItems(ctx context.Context, db *gorm.DB, logger *logrus.Logger, id int, lines []models.NewConsignmentItem) (items []models.ConsignmentItem, err error) {
	ctx, span := startSpan(ctx, "ReplaceConsignmentItems", attribute.Int("note_id", id), attribute.Int("lines", len(lines)))
	defer func() { endSpan(span, err) }()

	if err = models.ValidateConsignmentItems(lines); err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := getConsignmentNote(tx, id)
		if err != nil {
			return err
		}
		if note.IsArchived || note.Status != models.ConsignmentStatusOpen {
			return models.NewValidationError("only open notes may have their items edited")
		}
		old, err := getConsignmentItems(tx, id)
		if err != nil {
			return err
		}
		if err := restoreItems(tx, logger, note.Origin, old); err != nil {
			return err
		}
		if err := tx.Where("note_id = ?", id).Delete(&models.ConsignmentItem{}).Error; err != nil {
			return err
		}
		items, err = insertConsignmentItems(tx, id, lines, true)
		if err != nil {
			return err
		}
		if err := withdrawItems(tx, logger, note.Origin, items); err != nil {
			return err
		}
		_, err = RefreshNoteTotals(tx, id)
		return err
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentNoteWorkflow.go", "ReplaceConsignmentItems", "Transaction", lines, err)
		}
		return nil, storageErr("replace consignment items", err)
	}
	InvalidateConsignmentCache(logger)
	return items, nil
}
