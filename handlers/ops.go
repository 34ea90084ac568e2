package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/workflow"
)

// ReconcileTotals checks cached note totals; ?repair=true rewrites the drifted ones.
func (h *ConsignmentHandler) ReconcileTotals(c *gin.Context) {
	repair := queryBool(c, "repair")
	result, err := workflow.ReconcileNoteTotals(c.Request.Context(), h.conn(), h.logger, repair)
	if err != nil {
		h.respondError(c, "ReconcileTotals", repair, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
