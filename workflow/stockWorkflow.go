package workflow

import (
	"fmt"

	"github.com/maluks/consignment_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// resolveLineProduct finds the catalog product holding a stock level for the line's variant;
// nil when the reference is unknown or the size/color combination has no stock row.
func resolveLineProduct(tx *gorm.DB, item models.ConsignmentItem) (*int, error) {
	var level models.StockLevel
	err := tx.Model(&models.StockLevel{}).
		Joins("JOIN products ON products.id = stock_levels.product_id").
		Where("products.reference = ? AND stock_levels.size = ? AND stock_levels.color = ?", item.Reference, item.Size, item.Color).
		Order("stock_levels.id").
		Limit(1).
		Find(&level).Error
	if err != nil {
		return nil, err
	}
	if level.ID == 0 {
		return nil, nil
	}
	return &level.ProductId, nil
}

// adjustStock moves the origin counter of a line's variant by delta, never below zero.
// Lines without a product, and variants without a stock row, leave inventory untouched.
func adjustStock(tx *gorm.DB, logger *logrus.Logger, origin models.StockOrigin, item models.ConsignmentItem, delta int) error {
	if delta == 0 || item.ProductId == nil {
		return nil
	}
	column := models.StockLevel{}.Column(origin)
	result := tx.Model(&models.StockLevel{}).
		Where("product_id = ? AND size = ? AND color = ?", *item.ProductId, item.Size, item.Color).
		Update(column, gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 && logger != nil {
		logger.WithFields(logrus.Fields{
			"field":      "AdjustStock",
			"product_id": *item.ProductId,
			"size":       item.Size,
			"color":      item.Color,
			"delta":      delta,
		}).Debug("no stock level for variant")
	}
	return nil
}

// withdrawItems takes the remaining quantity of each line out of stock.
func withdrawItems(tx *gorm.DB, logger *logrus.Logger, origin models.StockOrigin, items []models.ConsignmentItem) error {
	for _, item := range items {
		if err := adjustStock(tx, logger, origin, item, -item.RemainingQuantity()); err != nil {
			return err
		}
	}
	return nil
}

// restoreItems puts the remaining quantity of each line back in stock.
func restoreItems(tx *gorm.DB, logger *logrus.Logger, origin models.StockOrigin, items []models.ConsignmentItem) error {
	for _, item := range items {
		if err := adjustStock(tx, logger, origin, item, item.RemainingQuantity()); err != nil {
			return err
		}
	}
	return nil
}
