package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

const reconcileBatchSize = 100

type ReconcileResult struct {
	CorrelationId string `json:"correlation_id"`
	Checked       int    `json:"checked"`
	Mismatched    int    `json:"mismatched"`
	Repaired      int    `json:"repaired"`
}

// ReconcileNoteTotals compares each note's cached totals with CalculateBalance over its raw rows.
// Every mismatch is written to reconciliation_reports; with repair the header is rewritten too.
func ReconcileNoteTotals(ctx context.Context, db *gorm.DB, logger *logrus.Logger, repair bool) (result *ReconcileResult, err error) {
	ctx, span := startSpan(ctx, "ReconcileNoteTotals", attribute.Bool("repair", repair))
	defer func() { endSpan(span, err) }()

	correlationId, ok := utils.GetCorrelationIdFromContext(ctx)
	if !ok || correlationId == "" {
		correlationId = uuid.NewString()
	}
	result = &ReconcileResult{CorrelationId: correlationId}

	var notes []models.ConsignmentNote
	findErr := db.WithContext(ctx).
		Preload("Items").
		Preload("Installments").
		FindInBatches(&notes, reconcileBatchSize, func(_ *gorm.DB, _ int) error {
			for i := range notes {
				if err := reconcileNote(ctx, db, &notes[i], repair, correlationId, result); err != nil {
					return err
				}
			}
			return nil
		}).Error
	if findErr != nil {
		config.LogError(logger, "consignmentReconcileWorkflow.go", "ReconcileNoteTotals", "FindInBatches", result, findErr)
		return result, storageErr("reconcile note totals", findErr)
	}

	if logger != nil {
		userId, _ := utils.GetUserIdFromContext(ctx)
		userName, _ := utils.GetUserNameFromContext(ctx)
		logger.WithFields(logrus.Fields{
			"field":          "ReconcileNoteTotals",
			"correlation_id": correlationId,
			"user_id":        userId,
			"user_name":      userName,
			"checked":        result.Checked,
			"mismatched":     result.Mismatched,
			"repaired":       result.Repaired,
		}).Info("note totals reconciliation completed")
	}
	if result.Repaired > 0 {
		InvalidateConsignmentCache(logger)
	}
	return result, nil
}

func reconcileNote(ctx context.Context, db *gorm.DB, note *models.ConsignmentNote, repair bool, correlationId string, result *ReconcileResult) error {
	result.Checked++
	balance := note.Balance()
	if note.CachedTotalsMatch(balance) {
		return nil
	}
	result.Mismatched++

	report := models.ReconciliationReport{
		CheckType:     models.CheckTypeNoteTotals,
		EntityType:    "ConsignmentNote",
		EntityId:      note.ID,
		Details:       describeTotalsDrift(note, balance),
		Repaired:      repair,
		CorrelationId: correlationId,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if repair {
			if err := writeNoteTotals(tx, note.ID, balance); err != nil {
				return err
			}
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return err
	}
	if repair {
		result.Repaired++
	}
	return nil
}

func describeTotalsDrift(note *models.ConsignmentNote, b models.NoteBalance) string {
	return fmt.Sprintf("note %s: cached original=%s returned=%s payable=%s paid=%s outstanding=%s; computed original=%s returned=%s payable=%s paid=%s outstanding=%s",
		note.Number,
		note.OriginalTotal, note.ReturnedValue, note.CurrentPayable, note.TotalPaid, note.OutstandingBalance,
		b.OriginalTotal, b.ReturnedValue, b.CurrentPayable, b.TotalPaid, b.OutstandingBalance,
	)
}
