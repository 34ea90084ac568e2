package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the catalog entry a consignment line may point at.
type Product struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Reference string          `gorm:"size:50;uniqueIndex;not null" json:"reference"`
	Name      string          `gorm:"size:150;not null" json:"name"`
	SalePrice decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sale_price"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// StockLevel holds two independent on-hand counters per product/size/color.
type StockLevel struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ProductId  int       `gorm:"uniqueIndex:idx_stock_variant;not null" json:"product_id"`
	Size       string    `gorm:"size:20;uniqueIndex:idx_stock_variant;not null" json:"size"`
	Color      string    `gorm:"size:50;uniqueIndex:idx_stock_variant;not null" json:"color"`
	StoreQty   int       `gorm:"not null;default:0" json:"store_qty"`
	FactoryQty int       `gorm:"not null;default:0" json:"factory_qty"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Column returns the counter column for the given origin.
func (StockLevel) Column(origin StockOrigin) string {
	if origin == StockOriginFactory {
		return "factory_qty"
	}
	return "store_qty"
}

func (s StockLevel) Quantity(origin StockOrigin) int {
	if origin == StockOriginFactory {
		return s.FactoryQty
	}
	return s.StoreQty
}

// AdjustedQuantity applies delta without going below zero.
func AdjustedQuantity(current int, delta int) int {
	return max(0, current+delta)
}
