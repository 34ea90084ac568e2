package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/middlewares"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	kindValidation   = "validation"
	kindStorage      = "storage"
	kindPresentation = "presentation"
)

type ConsignmentHandler struct {
	db     *gorm.DB
	logger *logrus.Logger
	policy config.PaidSyncPolicy
}

func NewConsignmentHandler(db *gorm.DB, logger *logrus.Logger, policy config.PaidSyncPolicy) *ConsignmentHandler {
	if logger == nil {
		logger = config.GetLogger()
	}
	return &ConsignmentHandler{
		db:     db,
		logger: logger,
		policy: policy,
	}
}

// conn falls back to the process-wide connection when none was injected.
func (h *ConsignmentHandler) conn() *gorm.DB {
	if h.db != nil {
		return h.db
	}
	return config.GetDB()
}

// RegisterRoutes mounts the ledger API. The group is expected to carry auth and loader middlewares.
func (h *ConsignmentHandler) RegisterRoutes(api *gin.RouterGroup) {
	sellers := api.Group("/sellers")
	sellers.GET("", h.ListSellers)
	sellers.POST("", h.CreateSeller)
	sellers.GET("/cards", h.SellerCards)
	sellers.PUT("/:id", h.UpdateSeller)
	sellers.POST("/:id/toggle-active", h.ToggleSellerActive)
	sellers.GET("/:id/returnable-items", h.ReturnableItems)

	notes := api.Group("/consignments")
	notes.GET("", h.ListConsignments)
	notes.GET("/export.xlsx", h.ExportConsignments)
	notes.GET("/kpis", h.ConsignmentKPIs)
	notes.POST("", h.CreateConsignment)
	notes.GET("/:id", h.GetConsignment)
	notes.PUT("/:id", h.UpdateConsignment)
	notes.PUT("/:id/items", h.ReplaceItems)
	notes.POST("/:id/archive", h.ToggleArchive)
	notes.DELETE("/:id", h.DeleteConsignment)
	notes.PUT("/:id/returns", h.BulkSetReturns)
	notes.POST("/:id/installments/plan", h.PlanInstallments)
	notes.PUT("/:id/installments", h.CommitInstallments)
	notes.GET("/:id/print", h.PrintConsignment)
	notes.GET("/:id/chat-link", h.ChatLink)

	api.POST("/consignment-items/:id/return", h.QuickReturn)
}

// RegisterInternalRoutes mounts operator endpoints; the group must be admin only.
func (h *ConsignmentHandler) RegisterInternalRoutes(ops *gin.RouterGroup) {
	ops.POST("/consignments/reconcile", h.ReconcileTotals)
}

func (h *ConsignmentHandler) respondError(c *gin.Context, funcName string, data any, err error) {
	config.LogError(h.logger, "handlers", funcName, c.Request.Method+" "+c.FullPath(), data, err)

	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "kind": kindValidation})
	case errors.As(err, &validationErrors):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"kind":    kindValidation,
			"details": utils.ProcessValidationErrors(err),
		})
	case models.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": kindValidation})
	case errors.Is(err, utils.ErrorLockNotObtained):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "kind": kindStorage})
	case models.IsPresentationError(err):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": kindPresentation})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": kindStorage})
	}
}

// bindJSON turns malformed bodies into validation errors.
func (h *ConsignmentHandler) bindJSON(c *gin.Context, funcName string, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			err = models.NewValidationError("invalid request body: %s", err.Error())
		}
		h.respondError(c, funcName, nil, err)
		return false
	}
	return true
}

func (h *ConsignmentHandler) pathId(c *gin.Context, funcName string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.respondError(c, funcName, c.Param("id"), models.NewValidationError("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}

func queryBool(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// productNames maps references to catalog names. Lookup failures are logged and leave the names blank.
func (h *ConsignmentHandler) productNames(c *gin.Context, funcName string, references []string) map[string]string {
	names := make(map[string]string, len(references))
	if len(references) == 0 {
		return names
	}
	products, errs := middlewares.GetProductsByReference(c.Request.Context(), references)
	for i, err := range errs {
		if err != nil {
			config.LogError(h.logger, "handlers", funcName, "GetProductsByReference", references[i], err)
		}
	}
	for _, p := range products {
		if p != nil {
			names[p.Reference] = p.Name
		}
	}
	return names
}
