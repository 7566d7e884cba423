package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/http/validation"
	"paylink.dev/app/internal/shared/apperr"
)

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// pageParams reads ?page and ?limit, applying the default limit and a cap of 100.
func pageParams(c *gin.Context, defLimit int) (int, int) {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), defLimit)
	if limit > 100 {
		limit = defLimit
	}
	return page, limit
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Fail(c, apperr.InvalidErr("Invalid request.", validation.FromBindError(err, dst)))
		return false
	}
	return true
}

func agentID(c *gin.Context) string {
	if claims, ok := middleware.CurrentAgent(c); ok {
		return claims.AgentID
	}
	return ""
}
