package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/http/render"
	"paylink.dev/app/internal/modules/payments"
	"paylink.dev/app/pkg/view"
)

// OutcomeHandler serves the pages the processor redirects the customer to.
type OutcomeHandler struct {
	Payments *payments.Service
}

func NewOutcomeHandler(svc *payments.Service) *OutcomeHandler {
	return &OutcomeHandler{Payments: svc}
}

// GET /payment/success/:referenceId
func (h *OutcomeHandler) Success(c *gin.Context) {
	p, err := h.Payments.FinalizeReturn(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	pub := view.NewPublicPayment(p)
	notice := view.Notice{Kind: view.NoticeSuccess, Message: "Thank you! Your payment has been completed."}
	if p.Status != payments.StatusCompleted {
		notice = view.Notice{Kind: view.NoticeInfo, Message: "Thank you! Your payment is being processed and will be confirmed shortly."}
	}
	render.Page(c, http.StatusOK, "success.html", view.Page{
		Title:     "Payment received",
		Notice:    notice,
		Payment:   &pub,
		RequestID: middleware.GetRequestID(c),
	})
}

// GET /payment/cancel/:referenceId
func (h *OutcomeHandler) Cancel(c *gin.Context) {
	p, err := h.Payments.Cancel(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}

	pub := view.NewPublicPayment(p)
	title := "Payment cancelled"
	var notice view.Notice
	switch p.Status {
	case payments.StatusCancelled:
		notice = view.Notice{Kind: view.NoticeWarning, Message: "Your payment was cancelled. No money has been taken."}
	case payments.StatusCompleted, payments.StatusRefunded:
		title = "Payment"
		notice = view.Notice{Kind: view.NoticeSuccess, Message: "This payment has already been completed."}
	default:
		title = "Payment"
		notice = view.Notice{Kind: view.NoticeInfo, Message: "This payment can no longer be cancelled."}
	}
	render.Page(c, http.StatusOK, "cancel.html", view.Page{
		Title:     title,
		Notice:    notice,
		Payment:   &pub,
		RequestID: middleware.GetRequestID(c),
	})
}
