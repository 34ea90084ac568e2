package middlewares

import (
	"context"
	"testing"

	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLoaderDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.MigrateTable(db))
	return db
}

func TestLoaders(t *testing.T) {
	db := setupLoaderDB(t)
	ana := models.Seller{Name: "Ana", Status: models.SellerStatusActive}
	require.NoError(t, db.Create(&ana).Error)
	require.NoError(t, db.Create(&models.Product{Reference: "R1", Name: "Vestido"}).Error)

	notes := []models.ConsignmentNote{
		{Number: "C001", SellerId: ana.ID, Origin: models.StockOriginStore, Status: models.ConsignmentStatusOpen},
		{Number: "C002", SellerId: ana.ID, Origin: models.StockOriginStore, Status: models.ConsignmentStatusOpen},
	}
	require.NoError(t, db.Create(&notes).Error)
	items := []models.ConsignmentItem{
		{NoteId: notes[0].ID, Reference: "R1", Size: "M", Color: "Azul", Quantity: 2, UnitPrice: decimal.NewFromInt(10)},
		{NoteId: notes[0].ID, Reference: "R2", Size: "P", Color: "Rosa", Quantity: 1, UnitPrice: decimal.NewFromInt(15)},
	}
	require.NoError(t, db.Create(&items).Error)

	ctx := context.WithValue(context.Background(), loadersKey, NewLoaders(db))

	sellers, errs := GetSellers(ctx, []int{ana.ID, 999})
	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, "Ana", sellers[0].Name)
	// unknown ids load a placeholder instead of failing the batch
	assert.Equal(t, 999, sellers[1].ID)
	assert.Equal(t, models.SellerStatusInactive, sellers[1].Status)

	products, _ := GetProductsByReference(ctx, []string{"R1", "R2"})
	require.Len(t, products, 2)
	assert.Equal(t, "Vestido", products[0].Name)
	assert.Nil(t, products[1])

	lists, _ := GetNotesItems(ctx, []int{notes[0].ID, notes[1].ID})
	require.Len(t, lists, 2)
	assert.Len(t, lists[0], 2)
	assert.Empty(t, lists[1])

	require.NoError(t, db.Create(&models.ConsignmentInstallment{NoteId: notes[1].ID, SequenceNo: 1, Amount: decimal.NewFromInt(30)}).Error)
	schedules, errs := GetNotesInstallments(ctx, []int{notes[0].ID, notes[1].ID})
	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Len(t, schedules, 2)
	assert.Empty(t, schedules[0])
	require.Len(t, schedules[1], 1)
	assert.True(t, schedules[1][0].Amount.Equal(decimal.NewFromInt(30)))
}
