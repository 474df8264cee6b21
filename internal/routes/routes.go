package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbdesk/kb-approval-backend/internal/handler"
	"github.com/kbdesk/kb-approval-backend/internal/middleware"
	"github.com/kbdesk/kb-approval-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	revisionHandler *handler.RevisionHandler,
	approvalHandler *handler.ApprovalHandler,
	instructionHandler *handler.InstructionHandler,
	notificationHandler *handler.NotificationHandler,
	articleHandler *handler.ArticleHandler,
	jwtManager *jwt.Manager,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1", middleware.JWTAuth(jwtManager))

	// Articles (read-only snapshots)
	api.GET("/articles/:id", articleHandler.Get)

	// Revisions
	revisions := api.Group("/revisions")
	{
		revisions.POST("", revisionHandler.Create)
		revisions.GET("", revisionHandler.List)
		revisions.GET("/status-counts", approvalHandler.GetStatusCounts)

		revisions.GET("/:id", revisionHandler.Get)
		revisions.PUT("/:id", revisionHandler.Update)
		revisions.DELETE("/:id", revisionHandler.Delete)

		revisions.GET("/:id/diff", revisionHandler.GetDiff)
		revisions.GET("/:id/actions", revisionHandler.GetActions)
		revisions.GET("/:id/edit-history", revisionHandler.GetEditHistory)
		revisions.GET("/:id/version-diff", revisionHandler.GetVersionDiff)

		// Workflow actions
		revisions.POST("/:id/submit", revisionHandler.Submit)
		revisions.POST("/:id/withdraw", approvalHandler.Withdraw)
		revisions.POST("/:id/approve", middleware.RequireReviewer(), approvalHandler.Approve)
		revisions.POST("/:id/reject", middleware.RequireReviewer(), approvalHandler.Reject)
		revisions.POST("/:id/request-modification", middleware.RequireReviewer(), approvalHandler.RequestModification)

		revisions.GET("/:id/approval-history", approvalHandler.GetHistory)
		revisions.GET("/:id/instructions", instructionHandler.ListForRevision)
	}

	// Modification instructions
	api.POST("/instructions/:id/resolve", instructionHandler.Resolve)

	// Notification inbox
	notifications := api.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkAsRead)
		notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
	}
}
