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

// applyReturn stores the clamped returned quantity and moves the difference back into stock.
func applyReturn(tx *gorm.DB, logger *logrus.Logger, origin models.StockOrigin, item *models.ConsignmentItem, requested int) error {
	returned := item.ClampReturned(requested)
	delta := returned - item.ReturnedQuantity
	if delta == 0 {
		return nil
	}
	if err := tx.Model(item).Update("returned_quantity", returned).Error; err != nil {
		return err
	}
	item.ReturnedQuantity = returned
	return adjustStock(tx, logger, origin, *item, delta)
}

func getReturnTarget(tx *gorm.DB, itemId int) (*models.ConsignmentItem, *models.ConsignmentNote, error) {
	var item models.ConsignmentItem
	if err := tx.First(&item, itemId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.ErrorRecordNotFound
		}
		return nil, nil, err
	}
	note, err := getConsignmentNote(tx, item.NoteId)
	if err != nil {
		return nil, nil, err
	}
	if note.IsArchived {
		return nil, nil, models.NewValidationError("archived notes cannot be edited")
	}
	return &item, note, nil
}

// RecordReturn sets a line's returned quantity, clamped to [0, quantity].
func RecordReturn(ctx context.Context, db *gorm.DB, logger *logrus.Logger, itemId int, newReturned int) (item *models.ConsignmentItem, err error) {
	return recordReturn(ctx, db, logger, itemId, false, func(current models.ConsignmentItem) int {
		return newReturned
	})
}

// AddReturn is the quick return: adds a non-negative delta, never past the shipped quantity.
// Only open notes take quick returns; closed notes are corrected through the editor.
func AddReturn(ctx context.Context, db *gorm.DB, logger *logrus.Logger, itemId int, delta int) (item *models.ConsignmentItem, err error) {
	return recordReturn(ctx, db, logger, itemId, true, func(current models.ConsignmentItem) int {
		return min(current.Quantity, current.ReturnedQuantity+max(0, delta))
	})
}

func recordReturn(ctx context.Context, db *gorm.DB, logger *logrus.Logger, itemId int, openOnly bool, target func(models.ConsignmentItem) int) (item *models.ConsignmentItem, err error) {
	ctx, span := startSpan(ctx, "RecordReturn", attribute.Int("item_id", itemId))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, note, err := getReturnTarget(tx, itemId)
		if err != nil {
			return err
		}
		if openOnly && note.Status != models.ConsignmentStatusOpen {
			return models.NewValidationError("note %s is %s and takes no quick returns", note.Number, note.Status)
		}
		if err := applyReturn(tx, logger, note.Origin, current, target(*current)); err != nil {
			return err
		}
		if _, err := RefreshNoteTotals(tx, note.ID); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentReturnWorkflow.go", "RecordReturn", "Transaction", itemId, err)
		}
		return nil, storageErr("record return", err)
	}
	InvalidateConsignmentCache(logger)
	return item, nil
}

// BulkSetReturns applies the note editor's returned quantities in order. Every change moves stock,
// the same as a quick return.
func BulkSetReturns(ctx context.Context, db *gorm.DB, logger *logrus.Logger, noteId int, updates []models.ReturnUpdate) (items []models.ConsignmentItem, err error) {
	ctx, span := startSpan(ctx, "BulkSetReturns", attribute.Int("note_id", noteId), attribute.Int("updates", len(updates)))
	defer func() { endSpan(span, err) }()

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		note, err := getConsignmentNote(tx, noteId)
		if err != nil {
			return err
		}
		if note.IsArchived {
			return models.NewValidationError("archived notes cannot be edited")
		}
		items, err = getConsignmentItems(tx, noteId)
		if err != nil {
			return err
		}
		byId := make(map[int]*models.ConsignmentItem, len(items))
		for i := range items {
			byId[items[i].ID] = &items[i]
		}
		for _, u := range updates {
			item, ok := byId[u.ItemId]
			if !ok {
				return models.NewValidationError("item %d does not belong to note %s", u.ItemId, note.Number)
			}
			if err := applyReturn(tx, logger, note.Origin, item, u.ReturnedQuantity); err != nil {
				return err
			}
		}
		_, err = RefreshNoteTotals(tx, noteId)
		return err
	})
	if err != nil {
		if !models.IsValidationError(err) && !errors.Is(err, utils.ErrorRecordNotFound) {
			config.LogError(logger, "consignmentReturnWorkflow.go", "BulkSetReturns", "Transaction", updates, err)
		}
		return nil, storageErr("bulk set returns", err)
	}
	InvalidateConsignmentCache(logger)
	return items, nil
}

// ListReturnableItems lists the lines still out with a seller on open, unarchived notes.
func ListReturnableItems(ctx context.Context, db *gorm.DB, sellerId int) ([]models.ReturnableItem, error) {
	var rows []models.ReturnableItem
	err := db.WithContext(ctx).
		Table("consignment_items").
		Select("consignment_items.*, consignment_notes.number AS note_number, consignment_notes.origin AS note_origin").
		Joins("JOIN consignment_notes ON consignment_notes.id = consignment_items.note_id").
		Where("consignment_notes.seller_id = ?", sellerId).
		Where("consignment_notes.status = ? AND consignment_notes.is_archived = ?", models.ConsignmentStatusOpen, false).
		Where("consignment_items.quantity > consignment_items.returned_quantity").
		Order("consignment_notes.number").Order("consignment_items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, storageErr("list returnable items", err)
	}
	for i := range rows {
		rows[i].Remaining = rows[i].RemainingQuantity()
	}
	return rows, nil
}
