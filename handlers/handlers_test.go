package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/middlewares"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
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

func setupRouter(db *gorm.DB) *gin.Engine {
	return setupRouterWithLog(db, io.Discard)
}

func setupRouterWithLog(db *gorm.DB, out io.Writer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(out)

	h := NewConsignmentHandler(db, log, config.PaidSyncAsymmetric)
	router := gin.New()
	api := router.Group("/api/v1", middlewares.LoaderMiddleware(db))
	h.RegisterRoutes(api)
	h.RegisterInternalRoutes(router.Group("/internal/ops"))
	return router
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func seedProduct(t *testing.T, db *gorm.DB, reference, name, size, color string, store int) models.StockLevel {
	t.Helper()
	product := models.Product{Reference: reference, Name: name}
	require.NoError(t, db.Create(&product).Error)
	level := models.StockLevel{ProductId: product.ID, Size: size, Color: color, StoreQty: store}
	require.NoError(t, db.Create(&level).Error)
	return level
}

func createSeller(t *testing.T, router *gin.Engine, name, phone string) models.Seller {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/api/v1/sellers", gin.H{"name": name, "phone": phone})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Seller](t, w)
}

func TestSellerRoutes(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	t.Run("Create", func(t *testing.T) {
		seller := createSeller(t, router, "Ana", "11987654321")
		assert.Equal(t, models.SellerStatusActive, seller.Status)
	})

	t.Run("Missing Name", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/sellers", gin.H{"phone": "11987654321"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, "validation", body["kind"])
		assert.Equal(t, map[string]any{"Name": "required"}, body["details"])
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/sellers", gin.H{"name": "Ana"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "already exists")
	})

	t.Run("Toggle And Filter", func(t *testing.T) {
		bia := createSeller(t, router, "Bia", "")
		w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/sellers/%d/toggle-active", bia.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.SellerStatusInactive, decode[models.Seller](t, w).Status)

		w = doJSON(router, http.MethodGet, "/api/v1/sellers?status=active", nil)
		require.Equal(t, http.StatusOK, w.Code)
		sellers := decode[[]models.Seller](t, w)
		require.Len(t, sellers, 1)
		assert.Equal(t, "Ana", sellers[0].Name)

		w = doJSON(router, http.MethodGet, "/api/v1/sellers?status=sleeping", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Update Unknown", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/v1/sellers/999", gin.H{"name": "Cris"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Cards", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/sellers/cards", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.SellerCard](t, w), 2)
	})
}

func TestConsignmentRoutes(t *testing.T) {
	t.Setenv("CHAT_DEFAULT_REGION", "BR")
	db := setupTestDB(t)
	router := setupRouter(db)

	level := seedProduct(t, db, "R1", "Vestido Longo", "M", "Azul", 20)
	seller := createSeller(t, router, "Ana", "11987654321")

	w := doJSON(router, http.MethodPost, "/api/v1/consignments", gin.H{
		"seller_id":  seller.ID,
		"issue_date": "2024-07-01",
		"due_date":   "2024-08-01",
		"items": []gin.H{
			{"reference": "R1", "size": "M", "color": "Azul", "quantity": 10, "unit_price": "20"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	note := decode[models.ConsignmentNote](t, w)
	assert.Equal(t, "C001", note.Number)
	assert.True(t, note.OriginalTotal.Equal(decimal.NewFromInt(200)))
	require.Len(t, note.Items, 1)
	itemId := note.Items[0].ID

	var stock models.StockLevel
	require.NoError(t, db.First(&stock, level.ID).Error)
	assert.Equal(t, 10, stock.StoreQty)

	base := fmt.Sprintf("/api/v1/consignments/%d", note.ID)

	t.Run("Create Rejects Bad Input", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/v1/consignments", gin.H{"seller_id": seller.ID, "due_date": "01/08/2024"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(router, http.MethodPost, "/api/v1/consignments", gin.H{
			"seller_id": seller.ID,
			"items":     []gin.H{{"reference": "R1", "size": "M", "color": "Azul", "quantity": 0, "unit_price": "20"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "quantity must be at least 1")

		w = doJSON(router, http.MethodPost, "/api/v1/consignments", gin.H{"seller_id": 999})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, base, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"balance"`)

		w = doJSON(router, http.MethodGet, "/api/v1/consignments/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		w = doJSON(router, http.MethodGet, "/api/v1/consignments/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Quick Return", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/consignment-items/%d/return", itemId), gin.H{"quantity": 3})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 3, decode[models.ConsignmentItem](t, w).ReturnedQuantity)

		require.NoError(t, db.First(&stock, level.ID).Error)
		assert.Equal(t, 13, stock.StoreQty)
	})

	t.Run("Bulk Returns", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, base+"/returns", gin.H{
			"returns": []gin.H{{"item_id": itemId, "returned_quantity": 4}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		items := decode[[]models.ConsignmentItem](t, w)
		require.Len(t, items, 1)
		assert.Equal(t, 4, items[0].ReturnedQuantity)
	})

	t.Run("Returnable Items", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/sellers/%d/returnable-items", seller.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		items := decode[[]map[string]any](t, w)
		require.Len(t, items, 1)
		assert.Equal(t, "Vestido Longo", items[0]["product_name"])
		assert.Equal(t, "C001", items[0]["note_number"])
	})

	var planned installmentSessionResponse
	t.Run("Plan Installments", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, base+"/installments/plan", gin.H{
			"ops": []gin.H{{"op": "generate", "count": 2}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		planned = decode[installmentSessionResponse](t, w)
		require.Len(t, planned.Entries, 2)
		assert.True(t, planned.Entries[0].Amount.Equal(decimal.NewFromInt(60)))

		w = doJSON(router, http.MethodPost, base+"/installments/plan", gin.H{
			"entries": planned.Entries,
			"ops":     []gin.H{{"op": "mark_paid", "key": planned.Entries[0].Key}},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		planned = decode[installmentSessionResponse](t, w)
		assert.True(t, planned.Balance.OutstandingBalance.Equal(decimal.NewFromInt(60)))

		w = doJSON(router, http.MethodPost, base+"/installments/plan", gin.H{
			"ops": []gin.H{{"op": "mark_paid", "key": "missing"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var stored int64
		db.Model(&models.ConsignmentInstallment{}).Count(&stored)
		assert.Zero(t, stored)
	})

	t.Run("Commit Installments", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, base+"/installments", gin.H{"entries": planned.Entries})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		committed := decode[installmentSessionResponse](t, w)
		require.Len(t, committed.Entries, 2)
		assert.NotZero(t, committed.Entries[0].ID)
		assert.True(t, committed.Balance.TotalPaid.Equal(decimal.NewFromInt(60)))

		var stored models.ConsignmentNote
		require.NoError(t, db.First(&stored, note.ID).Error)
		assert.True(t, stored.OutstandingBalance.Equal(decimal.NewFromInt(60)))
	})

	t.Run("Print", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, base+"/print", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "C001")
		assert.Contains(t, w.Body.String(), "Vestido Longo")
	})

	t.Run("Chat Link", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, base+"/chat-link", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		url := decode[map[string]string](t, w)["url"]
		assert.True(t, strings.HasPrefix(url, "https://wa.me/5511987654321?text="), url)
	})

	t.Run("List And Export", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/v1/consignments?search=c00", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.ConsignmentNoteSummary](t, w), 1)

		w = doJSON(router, http.MethodGet, "/api/v1/consignments?seller_id=x", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(router, http.MethodGet, "/api/v1/consignments/export.xlsx", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), "consignacoes.xlsx")
		assert.NotZero(t, w.Body.Len())

		w = doJSON(router, http.MethodGet, "/api/v1/consignments/kpis", nil)
		require.Equal(t, http.StatusOK, w.Code)
		kpis := decode[models.ConsignmentKPIs](t, w)
		assert.Equal(t, 6, kpis.ItemsOut)
	})

	t.Run("Close Archive Delete", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, base+"/archive", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(router, http.MethodPut, base, gin.H{"status": "closed", "notes": "acerto feito", "due_date": "2024-09-01"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, models.ConsignmentStatusClosed, decode[models.ConsignmentNote](t, w).Status)

		w = doJSON(router, http.MethodPost, base+"/archive", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.True(t, decode[models.ConsignmentNote](t, w).IsArchived)

		w = doJSON(router, http.MethodPost, fmt.Sprintf("/api/v1/consignment-items/%d/return", itemId), gin.H{"quantity": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(router, http.MethodDelete, base, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doJSON(router, http.MethodDelete, base+"?confirm=true", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = doJSON(router, http.MethodGet, base, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// deleting does not give stock back
		require.NoError(t, db.First(&stock, level.ID).Error)
		assert.Equal(t, 14, stock.StoreQty)
	})
}

func TestReplaceItemsRoute(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	level := seedProduct(t, db, "R1", "Vestido", "M", "Azul", 10)
	seller := createSeller(t, router, "Ana", "")
	note, err := workflow.CreateConsignmentNote(context.Background(), db, logrus.New(), models.NewConsignmentNote{
		SellerId: seller.ID,
		Items:    []models.NewConsignmentItem{{Reference: "R1", Size: "M", Color: "Azul", Quantity: 4, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	w := doJSON(router, http.MethodPut, fmt.Sprintf("/api/v1/consignments/%d/items", note.ID), gin.H{
		"items": []gin.H{{"reference": "R1", "size": "M", "color": "Azul", "quantity": 7, "unit_price": "10"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode[[]models.ConsignmentItem](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)

	var stock models.StockLevel
	require.NoError(t, db.First(&stock, level.ID).Error)
	assert.Equal(t, 3, stock.StoreQty)

	w = doJSON(router, http.MethodPut, fmt.Sprintf("/api/v1/consignments/%d/items", note.ID), "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileRoute(t *testing.T) {
	db := setupTestDB(t)
	router := setupRouter(db)

	seller := createSeller(t, router, "Ana", "")
	note, err := workflow.CreateConsignmentNote(context.Background(), db, logrus.New(), models.NewConsignmentNote{
		SellerId: seller.ID,
		Items:    []models.NewConsignmentItem{{Reference: "R9", Size: "P", Color: "Preto", Quantity: 3, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ConsignmentNote{}).Where("id = ?", note.ID).Update("outstanding_balance", 999).Error)

	w := doJSON(router, http.MethodPost, "/internal/ops/consignments/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[workflow.ReconcileResult](t, w)
	assert.Equal(t, 1, result.Mismatched)
	assert.Zero(t, result.Repaired)

	w = doJSON(router, http.MethodPost, "/internal/ops/consignments/reconcile?repair=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[workflow.ReconcileResult](t, w).Repaired)

	var stored models.ConsignmentNote
	require.NoError(t, db.First(&stored, note.ID).Error)
	assert.True(t, stored.OutstandingBalance.Equal(decimal.NewFromInt(30)))
}

func TestReturnableItemsWithoutCatalog(t *testing.T) {
	db := setupTestDB(t)
	var logs bytes.Buffer
	router := setupRouterWithLog(db, &logs)

	seedProduct(t, db, "R1", "Vestido Longo", "M", "Azul", 5)
	seller := createSeller(t, router, "Bia", "")
	w := doJSON(router, http.MethodPost, "/api/v1/consignments", gin.H{
		"seller_id": seller.ID,
		"items":     []gin.H{{"reference": "R1", "size": "M", "color": "Azul", "quantity": 2, "unit_price": "30"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// the catalog lookup fails, the listing still answers with blank names
	require.NoError(t, db.Migrator().DropTable(&models.Product{}))

	w = doJSON(router, http.MethodGet, fmt.Sprintf("/api/v1/sellers/%d/returnable-items", seller.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode[[]map[string]any](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0]["product_name"])
	assert.Contains(t, logs.String(), "GetProductsByReference")
}
