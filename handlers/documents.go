package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/middlewares"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/reports"
	"github.com/maluks/consignment_backend/workflow"
)

func (h *ConsignmentHandler) loadPrintable(c *gin.Context, funcName string) (reports.PrintableNote, *models.Seller, bool) {
	id, ok := h.pathId(c, funcName)
	if !ok {
		return reports.PrintableNote{}, nil, false
	}
	ctx := c.Request.Context()
	note, err := workflow.GetConsignmentNote(ctx, h.conn(), id)
	if err != nil {
		h.respondError(c, funcName, id, err)
		return reports.PrintableNote{}, nil, false
	}
	seller, err := middlewares.GetSeller(ctx, note.SellerId)
	if err != nil {
		h.respondError(c, funcName, note.SellerId, models.NewStorageError("load seller", err))
		return reports.PrintableNote{}, nil, false
	}

	references := make([]string, len(note.Items))
	for i, item := range note.Items {
		references[i] = item.Reference
	}
	names := h.productNames(c, funcName, references)

	return reports.PrintableNote{
		Store:        config.GetStoreInfo(),
		Note:         note,
		SellerName:   seller.Name,
		ProductNames: names,
	}, seller, true
}

// PrintConsignment serves the note as a page that opens the print dialog.
func (h *ConsignmentHandler) PrintConsignment(c *gin.Context) {
	printable, _, ok := h.loadPrintable(c, "PrintConsignment")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := reports.RenderConsignmentNote(&buf, printable); err != nil {
		h.respondError(c, "PrintConsignment", printable.Note.ID, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ChatLink returns a deep link that opens a chat with the seller, pre-filled with the note summary.
func (h *ConsignmentHandler) ChatLink(c *gin.Context) {
	printable, seller, ok := h.loadPrintable(c, "ChatLink")
	if !ok {
		return
	}
	link, err := reports.BuildChatLink(seller.Phone, reports.NoteChatSummary(seller.Name, printable.Note))
	if err != nil {
		h.respondError(c, "ChatLink", seller.Phone, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
