package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/modules/payments"
	"paylink.dev/app/pkg/view"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PaymentsHandler struct {
	Payments *payments.Service
}

func NewPaymentsHandler(svc *payments.Service) *PaymentsHandler {
	return &PaymentsHandler{Payments: svc}
}

type createLinkRequest struct {
	BrandID            string          `json:"brandId" binding:"required"`
	CustomerName       string          `json:"customerName" binding:"required,max=191"`
	CustomerEmail      string          `json:"customerEmail" binding:"required,email,max=191"`
	CustomerPhone      string          `json:"customerPhone" binding:"max=64"`
	ServiceName        string          `json:"serviceName" binding:"required,max=191"`
	ServiceDescription string          `json:"serviceDescription"`
	Amount             decimal.Decimal `json:"amount" binding:"money"`
	Currency           string          `json:"currency" binding:"omitempty,len=3,alpha"`
}

// POST /api/payments/links
func (h *PaymentsHandler) CreateLink(c *gin.Context) {
	var in createLinkRequest
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.Payments.CreateLink(c.Request.Context(), payments.CreateLinkInput{
		BrandID:            in.BrandID,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		ServiceName:        in.ServiceName,
		ServiceDescription: in.ServiceDescription,
		Amount:             in.Amount,
		Currency:           in.Currency,
		CreatedByID:        agentID(c),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view.NewCreatedLink(res))
}

func listFilter(c *gin.Context) payments.ListFilter {
	page, limit := pageParams(c, 20)
	return payments.ListFilter{
		BrandID: strings.TrimSpace(c.Query("brandId")),
		Status:  payments.Status(strings.TrimSpace(c.Query("status"))),
		Page:    page,
		Limit:   limit,
	}
}

// GET /api/payments
func (h *PaymentsHandler) List(c *gin.Context) {
	f := listFilter(c)
	items, total, err := h.Payments.List(c.Request.Context(), f)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payments":   view.NewAgentPayments(items),
		"pagination": view.NewPagination(f.Page, f.Limit, total),
	})
}

// GET /api/payments/export
func (h *PaymentsHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	sum, err := h.Payments.Export(c.Request.Context(), listFilter(c), &buf)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="payments.xlsx"`)
	c.Header("X-Total-Count", strconv.FormatInt(sum.Total, 10))
	if sum.Truncated() {
		c.Header("X-Export-Truncated", "true")
	}
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// GET /api/payments/:referenceId
func (h *PaymentsHandler) Lookup(c *gin.Context) {
	p, err := h.Payments.Lookup(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewPublicPayment(p))
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/payments/:referenceId/status
func (h *PaymentsHandler) UpdateStatus(c *gin.Context) {
	var in updateStatusRequest
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Payments.UpdateStatus(c.Request.Context(), c.Param("referenceId"), payments.Status(in.Status), agentID(c))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewAgentPayment(p))
}

// GET /api/payments/:referenceId/events
func (h *PaymentsHandler) Events(c *gin.Context) {
	events, err := h.Payments.Events(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// POST /api/payments/:referenceId/paypal
func (h *PaymentsHandler) Initialize(c *gin.Context) {
	res, err := h.Payments.InitializeProcessor(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"referenceId": res.ReferenceID,
		"orderId":     res.OrderID,
		"approvalUrl": res.ApprovalURL,
		"status":      res.Status,
	})
}

// GET /api/payments/:referenceId/invoice
func (h *PaymentsHandler) Invoice(c *gin.Context) {
	pdf, p, err := h.Payments.Invoice(c.Request.Context(), c.Param("referenceId"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, p.ReferenceID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
