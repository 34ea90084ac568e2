package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/middlewares"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/reports"
	"github.com/maluks/consignment_backend/utils"
	"github.com/maluks/consignment_backend/workflow"
)

type CreateConsignmentRequest struct {
	SellerId  int                         `json:"seller_id" binding:"required,gt=0"`
	Origin    models.StockOrigin          `json:"origin"`
	IssueDate string                      `json:"issue_date"`
	DueDate   string                      `json:"due_date"`
	Notes     string                      `json:"notes"`
	Items     []models.NewConsignmentItem `json:"items"`
}

type UpdateConsignmentRequest struct {
	DueDate string                   `json:"due_date"`
	Notes   string                   `json:"notes"`
	Status  models.ConsignmentStatus `json:"status"`
}

type ReplaceItemsRequest struct {
	Items []models.NewConsignmentItem `json:"items"`
}

func parseDates(values ...string) ([]*time.Time, error) {
	dates := make([]*time.Time, len(values))
	for i, v := range values {
		d, err := utils.ParseDate(v)
		if err != nil {
			return nil, models.NewValidationError("%s", err.Error())
		}
		dates[i] = d
	}
	return dates, nil
}

func (h *ConsignmentHandler) summaryFilter(c *gin.Context) (models.NoteSummaryFilter, error) {
	filter := models.NoteSummaryFilter{
		Archived: queryBool(c, "archived"),
		Search:   c.Query("search"),
	}
	if v := c.Query("seller_id"); v != "" {
		sellerId, err := strconv.Atoi(v)
		if err != nil {
			return filter, models.NewValidationError("invalid seller_id %q", v)
		}
		filter.SellerId = &sellerId
	}
	return filter, nil
}

func (h *ConsignmentHandler) ListConsignments(c *gin.Context) {
	filter, err := h.summaryFilter(c)
	if err != nil {
		h.respondError(c, "ListConsignments", c.Request.URL.RawQuery, err)
		return
	}
	rows, err := workflow.ListNoteSummaries(c.Request.Context(), h.conn(), filter)
	if err != nil {
		h.respondError(c, "ListConsignments", filter, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *ConsignmentHandler) ConsignmentKPIs(c *gin.Context) {
	kpis, err := workflow.GetConsignmentKPIs(c.Request.Context(), h.conn(), h.logger)
	if err != nil {
		h.respondError(c, "ConsignmentKPIs", nil, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (h *ConsignmentHandler) CreateConsignment(c *gin.Context) {
	var req CreateConsignmentRequest
	if !h.bindJSON(c, "CreateConsignment", &req) {
		return
	}
	dates, err := parseDates(req.IssueDate, req.DueDate)
	if err != nil {
		h.respondError(c, "CreateConsignment", req, err)
		return
	}

	note, err := workflow.CreateConsignmentNote(c.Request.Context(), h.conn(), h.logger, models.NewConsignmentNote{
		SellerId:  req.SellerId,
		Origin:    req.Origin,
		IssueDate: dates[0],
		DueDate:   dates[1],
		Notes:     req.Notes,
		Items:     req.Items,
	})
	if err != nil {
		h.respondError(c, "CreateConsignment", req, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *ConsignmentHandler) GetConsignment(c *gin.Context) {
	id, ok := h.pathId(c, "GetConsignment")
	if !ok {
		return
	}
	note, err := workflow.GetConsignmentNote(c.Request.Context(), h.conn(), id)
	if err != nil {
		h.respondError(c, "GetConsignment", id, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *ConsignmentHandler) UpdateConsignment(c *gin.Context) {
	id, ok := h.pathId(c, "UpdateConsignment")
	if !ok {
		return
	}
	var req UpdateConsignmentRequest
	if !h.bindJSON(c, "UpdateConsignment", &req) {
		return
	}
	dates, err := parseDates(req.DueDate)
	if err != nil {
		h.respondError(c, "UpdateConsignment", req, err)
		return
	}

	note, err := workflow.UpdateConsignmentHeader(c.Request.Context(), h.conn(), h.logger, id, models.UpdateConsignmentHeader{
		DueDate: dates[0],
		Notes:   req.Notes,
		Status:  req.Status,
	})
	if err != nil {
		h.respondError(c, "UpdateConsignment", req, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *ConsignmentHandler) ReplaceItems(c *gin.Context) {
	id, ok := h.pathId(c, "ReplaceItems")
	if !ok {
		return
	}
	var req ReplaceItemsRequest
	if !h.bindJSON(c, "ReplaceItems", &req) {
		return
	}
	items, err := workflow.ReplaceConsignmentItems(c.Request.Context(), h.conn(), h.logger, id, req.Items)
	if err != nil {
		h.respondError(c, "ReplaceItems", req, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *ConsignmentHandler) ToggleArchive(c *gin.Context) {
	id, ok := h.pathId(c, "ToggleArchive")
	if !ok {
		return
	}
	note, err := workflow.ToggleArchiveConsignmentNote(c.Request.Context(), h.conn(), h.logger, id)
	if err != nil {
		h.respondError(c, "ToggleArchive", id, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

// DeleteConsignment needs ?confirm=true; stock that went out with the note is not restored.
func (h *ConsignmentHandler) DeleteConsignment(c *gin.Context) {
	id, ok := h.pathId(c, "DeleteConsignment")
	if !ok {
		return
	}
	if !queryBool(c, "confirm") {
		h.respondError(c, "DeleteConsignment", id, models.NewValidationError("deleting a note must be confirmed"))
		return
	}
	note, err := workflow.DeleteConsignmentNote(c.Request.Context(), h.conn(), h.logger, id)
	if err != nil {
		h.respondError(c, "DeleteConsignment", id, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *ConsignmentHandler) ExportConsignments(c *gin.Context) {
	filter, err := h.summaryFilter(c)
	if err != nil {
		h.respondError(c, "ExportConsignments", c.Request.URL.RawQuery, err)
		return
	}
	ctx := c.Request.Context()
	rows, err := workflow.ListNoteSummaries(ctx, h.conn(), filter)
	if err != nil {
		h.respondError(c, "ExportConsignments", filter, err)
		return
	}

	noteIds := make([]int, len(rows))
	for i, r := range rows {
		noteIds[i] = r.ID
	}
	items := make(map[int][]*models.ConsignmentItem, len(rows))
	installments := make(map[int][]*models.ConsignmentInstallment, len(rows))
	if len(noteIds) > 0 {
		itemLists, errs := middlewares.GetNotesItems(ctx, noteIds)
		if err := firstError(errs); err != nil {
			h.respondError(c, "ExportConsignments", noteIds, models.NewStorageError("load note items", err))
			return
		}
		schedules, errs := middlewares.GetNotesInstallments(ctx, noteIds)
		if err := firstError(errs); err != nil {
			h.respondError(c, "ExportConsignments", noteIds, models.NewStorageError("load note installments", err))
			return
		}
		for i, id := range noteIds {
			items[id] = itemLists[i]
			installments[id] = schedules[i]
		}
	}

	f, err := reports.ExportNoteSummaries(rows, items, installments)
	if err != nil {
		h.respondError(c, "ExportConsignments", filter, err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.respondError(c, "ExportConsignments", filter, &models.PresentationError{Message: "could not write spreadsheet", Err: err})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="consignacoes.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
