package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/auth"
	"paylink.dev/app/internal/shared/apperr"
)

const CtxKeyClaims = "auth_claims"

// RequireAgent accepts "Authorization: Bearer <token>" and stores the
// verified claims on the context.
func RequireAgent(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			Fail(c, apperr.UnauthorizedErr("Authentication required."))
			return
		}

		claims, err := tokens.Verify(raw)
		if err != nil {
			Fail(c, &apperr.AppError{Kind: apperr.Unauthorized, PublicMsg: "Invalid or expired token.", Err: err})
			return
		}

		c.Set(CtxKeyClaims, claims)
		c.Next()
	}
}

func CurrentAgent(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearerToken(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
