package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/service"
)

// ArticleHandler serves read-only article snapshots
type ArticleHandler struct {
	articleSvc *service.ArticleService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articleSvc *service.ArticleService) *ArticleHandler {
	return &ArticleHandler{articleSvc: articleSvc}
}

// Get handles GET /api/v1/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	article, err := h.articleSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	common.SuccessResponse(c, article, nil)
}
