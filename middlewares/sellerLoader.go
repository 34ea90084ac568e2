package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/maluks/consignment_backend/models"
	"gorm.io/gorm"
)

type sellerReader struct {
	db *gorm.DB
}

func (r *sellerReader) getSellers(ctx context.Context, ids []int) []*dataloader.Result[*models.Seller] {
	var results []models.Seller
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Seller](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetSeller(ctx context.Context, id int) (*models.Seller, error) {
	loaders := For(ctx)
	return loaders.sellerLoader.Load(ctx, id)()
}

func GetSellers(ctx context.Context, ids []int) ([]*models.Seller, []error) {
	loaders := For(ctx)
	return loaders.sellerLoader.LoadMany(ctx, ids)()
}
