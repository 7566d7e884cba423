package render

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/pkg/view"
)

func ErrorPage(c *gin.Context, status int, msg string, requestID string) {
	Page(c, status, "error.html", view.Page{
		Title:      http.StatusText(status),
		Notice:     view.Notice{Kind: view.NoticeError, Message: msg},
		RequestID:  requestID,
		Status:     status,
		StatusText: http.StatusText(status),
	})
}
