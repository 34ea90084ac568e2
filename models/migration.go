package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&Seller{},
		&Product{}, &StockLevel{},
		&ConsignmentNote{}, &ConsignmentItem{}, &ConsignmentInstallment{},
		&ReconciliationReport{},
	)
}
