package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// PayPal appends token and PayerID to return URLs; they stay out of the access log.
var redactedParams = []string{"token", "PayerID"}

// Logger writes one access-log line per request. Paths in skip are not logged
// unless they fail.
func Logger(l *slog.Logger, skip ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(skip))
	for _, p := range skip {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if quiet[c.Request.URL.Path] && status < 400 {
			return
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		attrs := []slog.Attr{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", requestPath(c)),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if claims, ok := CurrentAgent(c); ok {
			attrs = append(attrs, slog.String("agent_id", claims.AgentID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		l.LogAttrs(c.Request.Context(), level, "http_request", attrs...)
	}
}

func requestPath(c *gin.Context) string {
	u := *c.Request.URL
	if u.RawQuery == "" {
		return u.Path
	}
	q := u.Query()
	for _, k := range redactedParams {
		if q.Has(k) {
			q.Set(k, "redacted")
		}
	}
	return u.Path + "?" + q.Encode()
}
