package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbdesk/kb-approval-backend/internal/common"
	"github.com/kbdesk/kb-approval-backend/internal/domain"
	"github.com/kbdesk/kb-approval-backend/pkg/jwt"
)

const principalKey = "principal"

// JWTAuth JWT authentication middleware. Resolves the token into a
// domain.Principal and stores it in the request context.
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, 401, "Missing authorization header", nil)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, 401, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, 401, "Token expired", err)
			} else {
				common.ErrorResponse(c, 401, "Invalid token", err)
			}
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			common.ErrorResponse(c, 401, "Invalid token subject", err)
			c.Abort()
			return
		}

		c.Set(principalKey, domain.Principal{
			ID:   userID,
			Role: domain.Role(claims.Role),
			IsSV: claims.IsSV,
		})

		c.Next()
	}
}

// GetPrincipal extracts the authenticated actor from context.
func GetPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, exists := c.Get(principalKey)
	if !exists {
		return domain.Principal{}, false
	}
	principal, ok := v.(domain.Principal)
	return principal, ok
}

// RequireReviewer aborts with 403 unless the actor carries approver-level
// privileges.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			common.ErrorResponse(c, 401, "Authentication required", nil)
			c.Abort()
			return
		}
		if !principal.IsAdmin() && !principal.IsReviewer() {
			common.ErrorResponse(c, 403, "Approver privileges required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the actor is an admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			common.ErrorResponse(c, 401, "Authentication required", nil)
			c.Abort()
			return
		}
		if !principal.IsAdmin() {
			common.ErrorResponse(c, 403, "Admin privileges required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
