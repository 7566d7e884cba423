package middleware

import (
	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/shared/apperr"
)

// RequireAdmin must run after RequireAgent.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentAgent(c)
		if !ok {
			Fail(c, apperr.UnauthorizedErr("Authentication required."))
			return
		}
		if claims.Role != "admin" {
			Fail(c, apperr.ForbiddenErr("Admin access required."))
			return
		}
		c.Next()
	}
}
