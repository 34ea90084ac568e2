package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/maluks/consignment_backend/models"
	"gorm.io/gorm"
)

type noteItemReader struct {
	db *gorm.DB
}

func (r *noteItemReader) getNoteItems(ctx context.Context, noteIds []int) []*dataloader.Result[[]*models.ConsignmentItem] {
	var results []models.ConsignmentItem
	err := r.db.WithContext(ctx).Where("note_id IN ?", noteIds).Order("id").Find(&results).Error
	if err != nil {
		return handleError[[]*models.ConsignmentItem](len(noteIds), err)
	}
	return generateLoaderArrayResults(results, noteIds)
}

func GetNotesItems(ctx context.Context, noteIds []int) ([][]*models.ConsignmentItem, []error) {
	loaders := For(ctx)
	return loaders.noteItemLoader.LoadMany(ctx, noteIds)()
}

type noteInstallmentReader struct {
	db *gorm.DB
}

func (r *noteInstallmentReader) getNoteInstallments(ctx context.Context, noteIds []int) []*dataloader.Result[[]*models.ConsignmentInstallment] {
	var results []models.ConsignmentInstallment
	err := r.db.WithContext(ctx).Where("note_id IN ?", noteIds).Order("sequence_no").Order("id").Find(&results).Error
	if err != nil {
		return handleError[[]*models.ConsignmentInstallment](len(noteIds), err)
	}
	return generateLoaderArrayResults(results, noteIds)
}

func GetNotesInstallments(ctx context.Context, noteIds []int) ([][]*models.ConsignmentInstallment, []error) {
	loaders := For(ctx)
	return loaders.noteInstallmentLoader.LoadMany(ctx, noteIds)()
}
