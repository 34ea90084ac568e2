package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/workflow"
)

type QuickReturnRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type BulkReturnsRequest struct {
	Returns []models.ReturnUpdate `json:"returns" binding:"required"`
}

// QuickReturn adds quantity to a line's returned count, stopping at the shipped quantity.
func (h *ConsignmentHandler) QuickReturn(c *gin.Context) {
	id, ok := h.pathId(c, "QuickReturn")
	if !ok {
		return
	}
	var req QuickReturnRequest
	if !h.bindJSON(c, "QuickReturn", &req) {
		return
	}
	item, err := workflow.AddReturn(c.Request.Context(), h.conn(), h.logger, id, req.Quantity)
	if err != nil {
		h.respondError(c, "QuickReturn", req, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ConsignmentHandler) BulkSetReturns(c *gin.Context) {
	id, ok := h.pathId(c, "BulkSetReturns")
	if !ok {
		return
	}
	var req BulkReturnsRequest
	if !h.bindJSON(c, "BulkSetReturns", &req) {
		return
	}
	items, err := workflow.BulkSetReturns(c.Request.Context(), h.conn(), h.logger, id, req.Returns)
	if err != nil {
		h.respondError(c, "BulkSetReturns", req, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
