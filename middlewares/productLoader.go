package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/maluks/consignment_backend/models"
	"gorm.io/gorm"
)

type productReader struct {
	db *gorm.DB
}

// products are keyed by reference; a reference missing from the catalog loads as nil
func (r *productReader) getProducts(ctx context.Context, references []string) []*dataloader.Result[*models.Product] {
	var results []models.Product
	err := r.db.WithContext(ctx).Where("reference IN ?", references).Find(&results).Error
	if err != nil {
		return handleError[*models.Product](len(references), err)
	}

	resultMap := make(map[string]*models.Product, len(results))
	for i := range results {
		resultMap[results[i].Reference] = &results[i]
	}
	loaderResults := make([]*dataloader.Result[*models.Product], 0, len(references))
	for _, ref := range references {
		loaderResults = append(loaderResults, &dataloader.Result[*models.Product]{Data: resultMap[ref]})
	}
	return loaderResults
}

func GetProductsByReference(ctx context.Context, references []string) ([]*models.Product, []error) {
	loaders := For(ctx)
	return loaders.productLoader.LoadMany(ctx, references)()
}
