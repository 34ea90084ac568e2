package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

type devProduct struct {
	reference string
	name      string
	price     string
}

var devProducts = []devProduct{
	{"VL-001", "Vestido Longo", "189.90"},
	{"BL-002", "Blusa Seda", "99.90"},
	{"CL-003", "Calca Alfaiataria", "149.90"},
	{"SA-004", "Saia Midi", "119.90"},
}

var devSizes = []string{"P", "M", "G"}

func main() {
	// Env-first, flags override env for convenience.
	sellerCount := flag.Int("sellers", getenvInt("SEED_SELLER_COUNT", 3), "How many demo sellers to create/reuse")
	storeQty := flag.Int("store-qty", getenvInt("SEED_STORE_QTY", 20), "Store quantity set on every seeded variant")
	factoryQty := flag.Int("factory-qty", getenvInt("SEED_FACTORY_QTY", 50), "Factory quantity set on every seeded variant")
	color := flag.String("color", getenv("SEED_COLOR", "Preto"), "Color of the seeded variants")
	flag.Parse()

	if config.IsProduction() {
		fmt.Fprintln(os.Stderr, "refusing to seed demo data in production")
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	if err := models.MigrateTable(db); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}

	sellers := 0
	for i := 1; i <= max(*sellerCount, 0); i++ {
		name := fmt.Sprintf("Vendedora Demo %02d", i)
		_, err := models.CreateSeller(ctx, db, &models.NewSeller{
			Name:  name,
			Phone: fmt.Sprintf("+55119876543%02d", i),
		})
		if models.IsValidationError(err) {
			// already seeded
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "create seller %s: %v\n", name, err)
			os.Exit(1)
		}
		sellers++
	}

	variants := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range devProducts {
			product, err := upsertProduct(tx, p)
			if err != nil {
				return err
			}
			for _, size := range devSizes {
				level := models.StockLevel{
					ProductId:  product.ID,
					Size:       size,
					Color:      *color,
					StoreQty:   *storeQty,
					FactoryQty: *factoryQty,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "product_id"}, {Name: "size"}, {Name: "color"}},
					DoUpdates: clause.AssignmentColumns([]string{"store_qty", "factory_qty", "updated_at"}),
				}).Create(&level).Error
				if err != nil {
					return fmt.Errorf("stock %s/%s: %w", p.reference, size, err)
				}
				variants++
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed catalog: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("seeded sellers=%d products=%d variants=%d\n", sellers, len(devProducts), variants)
}

func upsertProduct(tx *gorm.DB, p devProduct) (*models.Product, error) {
	var product models.Product
	err := tx.Where("reference = ?", p.reference).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("product %s: %w", p.reference, err)
	}
	product = models.Product{
		Reference: p.reference,
		Name:      p.name,
		SalePrice: decimal.RequireFromString(p.price),
	}
	if err := tx.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("product %s: %w", p.reference, err)
	}
	return &product, nil
}
