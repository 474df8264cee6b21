package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/service"
)

// InstructionHandler handles modification instruction requests
type InstructionHandler struct {
	instructionSvc *service.InstructionService
}

// NewInstructionHandler creates a new InstructionHandler
func NewInstructionHandler(instructionSvc *service.InstructionService) *InstructionHandler {
	return &InstructionHandler{instructionSvc: instructionSvc}
}

// ListForRevision handles GET /api/v1/revisions/:id/instructions
func (h *InstructionHandler) ListForRevision(c *gin.Context) {
	id, ok := revisionID(c)
	if !ok {
		return
	}

	unresolvedOnly, _ := strconv.ParseBool(c.DefaultQuery("unresolved", "false"))

	var err error
	var items interface{}
	if unresolvedOnly {
		items, err = h.instructionSvc.GetUnresolved(id)
	} else {
		items, err = h.instructionSvc.GetForRevision(id)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

type resolveRequest struct {
	ResolutionComment *string `json:"resolution_comment"`
}

// Resolve handles POST /api/v1/instructions/:id/resolve
func (h *InstructionHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid instruction id", err)
		return
	}

	var req resolveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	instruction, err := h.instructionSvc.Resolve(id, req.ResolutionComment)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, instruction, nil)
}
