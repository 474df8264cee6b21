package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/middleware"
	"github.com/kbdesk/kb-approval-backend/internal/service"
)

// ApprovalHandler handles the review workflow actions on a revision
type ApprovalHandler struct {
	approvalSvc *service.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalSvc *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalSvc: approvalSvc}
}

type approvalRequest struct {
	Comment *string `json:"comment"`
}

type rejectionRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// Approve handles POST /api/v1/revisions/:id/approve
func (h *ApprovalHandler) Approve(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	var req approvalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	revision, err := h.approvalSvc.ApproveRevision(id, principal, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// Reject handles POST /api/v1/revisions/:id/reject
func (h *ApprovalHandler) Reject(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	var req rejectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "rejection comment is required", err)
		return
	}

	revision, err := h.approvalSvc.RejectRevision(id, principal, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// Withdraw handles POST /api/v1/revisions/:id/withdraw
func (h *ApprovalHandler) Withdraw(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	var req approvalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	revision, err := h.approvalSvc.WithdrawRevision(id, principal, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// RequestModification handles POST /api/v1/revisions/:id/request-modification
func (h *ApprovalHandler) RequestModification(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	var req domain.InstructionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "instruction text is required", err)
		return
	}

	revision, err := h.approvalSvc.RequestModification(id, principal, req)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// GetHistory handles GET /api/v1/revisions/:id/approval-history
func (h *ApprovalHandler) GetHistory(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	items, err := h.approvalSvc.GetApprovalHistory(id, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// GetStatusCounts handles GET /api/v1/revisions/status-counts
func (h *ApprovalHandler) GetStatusCounts(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	counts, err := h.approvalSvc.GetRevisionStatusCounts(c.Request.Context(), principal.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, counts, nil)
}
