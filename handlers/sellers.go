package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/workflow"
)

func (h *ConsignmentHandler) ListSellers(c *gin.Context) {
	var status *models.SellerStatus
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		s := models.SellerStatus(v)
		if !s.IsValid() {
			h.respondError(c, "ListSellers", v, models.NewValidationError("invalid seller status"))
			return
		}
		status = &s
	}
	name := c.Query("name")

	sellers, err := models.GetSellers(c.Request.Context(), h.conn(), &name, status)
	if err != nil {
		h.respondError(c, "ListSellers", name, err)
		return
	}
	c.JSON(http.StatusOK, sellers)
}

func (h *ConsignmentHandler) CreateSeller(c *gin.Context) {
	var req models.NewSeller
	if !h.bindJSON(c, "CreateSeller", &req) {
		return
	}
	seller, err := models.CreateSeller(c.Request.Context(), h.conn(), &req)
	if err != nil {
		h.respondError(c, "CreateSeller", req, err)
		return
	}
	workflow.InvalidateConsignmentCache(h.logger)
	c.JSON(http.StatusCreated, seller)
}

func (h *ConsignmentHandler) UpdateSeller(c *gin.Context) {
	id, ok := h.pathId(c, "UpdateSeller")
	if !ok {
		return
	}
	var req models.NewSeller
	if !h.bindJSON(c, "UpdateSeller", &req) {
		return
	}
	seller, err := models.UpdateSeller(c.Request.Context(), h.conn(), id, &req)
	if err != nil {
		h.respondError(c, "UpdateSeller", req, err)
		return
	}
	workflow.InvalidateConsignmentCache(h.logger)
	c.JSON(http.StatusOK, seller)
}

func (h *ConsignmentHandler) ToggleSellerActive(c *gin.Context) {
	id, ok := h.pathId(c, "ToggleSellerActive")
	if !ok {
		return
	}
	seller, err := models.ToggleSellerActive(c.Request.Context(), h.conn(), id)
	if err != nil {
		h.respondError(c, "ToggleSellerActive", id, err)
		return
	}
	workflow.InvalidateConsignmentCache(h.logger)
	c.JSON(http.StatusOK, seller)
}

func (h *ConsignmentHandler) SellerCards(c *gin.Context) {
	cards, err := workflow.GetSellerCards(c.Request.Context(), h.conn(), h.logger)
	if err != nil {
		h.respondError(c, "SellerCards", nil, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

type returnableItemResponse struct {
	models.ReturnableItem
	ProductName string `json:"product_name"`
}

// ReturnableItems lists the open lines of a seller across notes for the return screen.
func (h *ConsignmentHandler) ReturnableItems(c *gin.Context) {
	id, ok := h.pathId(c, "ReturnableItems")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := models.GetSeller(ctx, h.conn(), id); err != nil {
		h.respondError(c, "ReturnableItems", id, err)
		return
	}
	items, err := workflow.ListReturnableItems(ctx, h.conn(), id)
	if err != nil {
		h.respondError(c, "ReturnableItems", id, err)
		return
	}

	references := make([]string, len(items))
	for i, item := range items {
		references[i] = item.Reference
	}
	names := h.productNames(c, "ReturnableItems", references)

	results := make([]returnableItemResponse, len(items))
	for i, item := range items {
		results[i] = returnableItemResponse{ReturnableItem: item, ProductName: names[item.Reference]}
	}
	c.JSON(http.StatusOK, results)
}
