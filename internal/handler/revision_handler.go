package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/internal/middleware"
	"github.com/kbdesk/kb-approval-backend/internal/service"
)

// RevisionHandler handles revision requests
type RevisionHandler struct {
	revisionSvc    *service.RevisionService
	editHistorySvc *service.EditHistoryService
}

// NewRevisionHandler creates a new RevisionHandler
func NewRevisionHandler(revisionSvc *service.RevisionService, editHistorySvc *service.EditHistoryService) *RevisionHandler {
	return &RevisionHandler{
		revisionSvc:    revisionSvc,
		editHistorySvc: editHistorySvc,
	}
}

func revisionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid revision id", err)
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/revisions
func (h *RevisionHandler) Create(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req domain.RevisionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	revision, err := h.revisionSvc.Create(c.Request.Context(), req, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.CreatedResponse(c, revision)
}

// List handles GET /api/v1/revisions
func (h *RevisionHandler) List(c *gin.Context) {
	var filter domain.RevisionFilter

	if v := c.Query("status"); v != "" {
		status := domain.RevisionStatus(v)
		if !status.Valid() {
			common.ErrorResponse(c, http.StatusBadRequest, "unknown status filter", nil)
			return
		}
		filter.Status = &status
	}
	if v := c.Query("proposer_id"); v != "" {
		proposerID, err := uuid.Parse(v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid proposer_id filter", err)
			return
		}
		filter.ProposerID = &proposerID
	}
	if v := c.Query("target_article_id"); v != "" {
		filter.TargetArticleID = &v
	}
	if v := c.Query("created_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid created_after filter", err)
			return
		}
		filter.CreatedAfter = &t
	}
	if v := c.Query("created_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid created_before filter", err)
			return
		}
		filter.CreatedBefore = &t
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	revisions, total, err := h.revisionSvc.List(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revisions, &common.Meta{Page: page, Limit: limit, Total: total})
}

// Get handles GET /api/v1/revisions/:id
func (h *RevisionHandler) Get(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	revision, err := h.revisionSvc.Get(id, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// Update handles PUT /api/v1/revisions/:id
func (h *RevisionHandler) Update(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	var req domain.RevisionUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	revision, err := h.revisionSvc.Update(id, req, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// Delete handles DELETE /api/v1/revisions/:id
func (h *RevisionHandler) Delete(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	if err := h.revisionSvc.Delete(id, principal); err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// Submit handles POST /api/v1/revisions/:id/submit
func (h *RevisionHandler) Submit(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	revision, err := h.revisionSvc.Submit(id, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, revision, nil)
}

// GetDiff handles GET /api/v1/revisions/:id/diff
func (h *RevisionHandler) GetDiff(c *gin.Context) {
	id, ok := revisionID(c)
	if !ok {
		return
	}

	diff, err := h.revisionSvc.CalculateDiff(id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, diff, nil)
}

// GetActions handles GET /api/v1/revisions/:id/actions
func (h *RevisionHandler) GetActions(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)
	id, ok := revisionID(c)
	if !ok {
		return
	}

	actions, err := h.revisionSvc.AvailableActions(id, principal)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"actions": actions}, nil)
}

// GetEditHistory handles GET /api/v1/revisions/:id/edit-history
func (h *RevisionHandler) GetEditHistory(c *gin.Context) {
	id, ok := revisionID(c)
	if !ok {
		return
	}

	items, err := h.editHistorySvc.GetEditHistory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// GetVersionDiff handles GET /api/v1/revisions/:id/version-diff?from=&to=
func (h *RevisionHandler) GetVersionDiff(c *gin.Context) {
	id, ok := revisionID(c)
	if !ok {
		return
	}

	from, err := strconv.Atoi(c.DefaultQuery("from", "1"))
	if err != nil || from < 1 {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid from version", err)
		return
	}
	to, err := strconv.Atoi(c.Query("to"))
	if err != nil || to < from {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid to version", err)
		return
	}

	diff, err := h.editHistorySvc.GetVersionDiff(id, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, diff, nil)
}
