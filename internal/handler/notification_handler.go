package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/middleware"
	"github.com/kbdesk/kb-approval-backend/internal/service"
)

// NotificationHandler handles notification inbox requests
type NotificationHandler struct {
	notificationSvc *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationSvc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationSvc: notificationSvc}
}

// GetUnreadCount handles GET /api/v1/notifications/unread-count
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	summary, err := h.notificationSvc.GetUnreadCount(principal.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, summary, nil)
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	list, err := h.notificationSvc.GetList(principal.ID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, list, nil)
}

// MarkAsRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	if err := h.notificationSvc.MarkAsRead(principal.ID, id); err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"read": true}, nil)
}

// MarkAllAsRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	principal, _ := middleware.GetPrincipal(c)

	if err := h.notificationSvc.MarkAllAsRead(principal.ID); err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"read": true}, nil)
}
