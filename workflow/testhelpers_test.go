package workflow

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.MigrateTable(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedSeller(t *testing.T, db *gorm.DB, name string) *models.Seller {
	t.Helper()
	seller := models.Seller{Name: name, Phone: "11987654321", Status: models.SellerStatusActive}
	if err := db.Create(&seller).Error; err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return &seller
}

func seedStock(t *testing.T, db *gorm.DB, reference, name, size, color string, store, factory int) *models.StockLevel {
	t.Helper()
	var product models.Product
	if err := db.Where("reference = ?", reference).Limit(1).Find(&product).Error; err != nil {
		t.Fatalf("find product: %v", err)
	}
	if product.ID == 0 {
		product = models.Product{Reference: reference, Name: name, SalePrice: dec("0")}
		if err := db.Create(&product).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	level := models.StockLevel{ProductId: product.ID, Size: size, Color: color, StoreQty: store, FactoryQty: factory}
	if err := db.Create(&level).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	return &level
}

func stockOf(t *testing.T, db *gorm.DB, id int) models.StockLevel {
	t.Helper()
	var level models.StockLevel
	if err := db.First(&level, id).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return level
}

func line(reference, size, color string, qty int, price string) models.NewConsignmentItem {
	return models.NewConsignmentItem{Reference: reference, Size: size, Color: color, Quantity: qty, UnitPrice: dec(price)}
}

func count(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
