package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbdesk/kb-approval-backend/internal/common"
)

// respondError maps a service error to its HTTP status through the sentinel
// error taxonomy.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrRevisionNotFound),
		errors.Is(err, common.ErrArticleNotFound),
		errors.Is(err, common.ErrInstructionNotFound),
		errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrNotFound):
		common.ErrorResponse(c, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, err.Error(), nil)

	case errors.Is(err, common.ErrUnauthorized):
		common.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)

	case errors.Is(err, common.ErrActiveRevisionExists),
		errors.Is(err, common.ErrVersionConflict):
		common.ErrorResponse(c, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, common.ErrInvalidState):
		common.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error(), nil)

	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error(), nil)

	default:
		common.ErrorResponse(c, http.StatusInternalServerError, "internal server error", err)
	}
}
