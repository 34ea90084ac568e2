package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/workflow"
)

// PlanInstallmentsRequest carries the client's working list (absent on the first call) and the edits to apply.
type PlanInstallmentsRequest struct {
	Entries []*models.InstallmentEntry `json:"entries"`
	Ops     []models.InstallmentOp     `json:"ops"`
}

type CommitInstallmentsRequest struct {
	Entries []*models.InstallmentEntry `json:"entries"`
}

type installmentSessionResponse struct {
	NoteId  int                        `json:"note_id"`
	Entries []*models.InstallmentEntry `json:"entries"`
	Balance models.NoteBalance         `json:"balance"`
}

func sessionResponse(session *models.InstallmentSession, balance models.NoteBalance) installmentSessionResponse {
	entries := session.Entries
	if entries == nil {
		entries = []*models.InstallmentEntry{}
	}
	return installmentSessionResponse{
		NoteId:  session.NoteId,
		Entries: entries,
		Balance: balance,
	}
}

// PlanInstallments applies edit ops to a session without writing anything.
func (h *ConsignmentHandler) PlanInstallments(c *gin.Context) {
	id, ok := h.pathId(c, "PlanInstallments")
	if !ok {
		return
	}
	var req PlanInstallmentsRequest
	if !h.bindJSON(c, "PlanInstallments", &req) {
		return
	}

	ctx := c.Request.Context()
	var session *models.InstallmentSession
	var err error
	if req.Entries == nil {
		session, err = workflow.LoadInstallmentSession(ctx, h.conn(), id, h.policy)
	} else {
		session, err = workflow.ResumeInstallmentSession(ctx, h.conn(), id, req.Entries, h.policy)
	}
	if err != nil {
		h.respondError(c, "PlanInstallments", id, err)
		return
	}
	if err := session.ApplyAll(req.Ops); err != nil {
		h.respondError(c, "PlanInstallments", req.Ops, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session, session.Balance()))
}

// CommitInstallments persists a planned list: new rows inserted, changed rows updated, deleted rows removed.
func (h *ConsignmentHandler) CommitInstallments(c *gin.Context) {
	id, ok := h.pathId(c, "CommitInstallments")
	if !ok {
		return
	}
	var req CommitInstallmentsRequest
	if !h.bindJSON(c, "CommitInstallments", &req) {
		return
	}

	ctx := c.Request.Context()
	session, err := workflow.ResumeInstallmentSession(ctx, h.conn(), id, req.Entries, h.policy)
	if err != nil {
		h.respondError(c, "CommitInstallments", id, err)
		return
	}
	balance, err := workflow.CommitInstallments(ctx, h.conn(), h.logger, id, session)
	if err != nil {
		h.respondError(c, "CommitInstallments", id, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(session, balance))
}
