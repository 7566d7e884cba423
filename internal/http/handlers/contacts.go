package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/modules/contacts"
	"paylink.dev/app/pkg/view"
)

type ContactsHandler struct {
	Contacts *contacts.Service
}

func NewContactsHandler(svc *contacts.Service) *ContactsHandler {
	return &ContactsHandler{Contacts: svc}
}

type contactRequest struct {
	Name     string `json:"name" binding:"required,max=191"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Phone    string `json:"phone" binding:"required,max=64"`
	Message  string `json:"message" binding:"required"`
	BrandID  string `json:"brandId" binding:"required"`
	Country  string `json:"country" binding:"max=64"`
	Budget   string `json:"budget" binding:"max=64"`
	Services string `json:"services" binding:"max=255"`
	Timeline string `json:"timeline" binding:"max=64"`
}

// POST /api/contact-requests
func (h *ContactsHandler) Create(c *gin.Context) {
	var in contactRequest
	if !bindJSON(c, &in) {
		return
	}
	cr, err := h.Contacts.Create(c.Request.Context(), contacts.CreateInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Message:  in.Message,
		BrandID:  in.BrandID,
		Country:  in.Country,
		Budget:   in.Budget,
		Services: in.Services,
		Timeline: in.Timeline,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Contact request submitted successfully",
		"contactRequest": view.NewContactRequest(cr),
	})
}

// GET /api/contact-requests
func (h *ContactsHandler) List(c *gin.Context) {
	page, limit := pageParams(c, 10)
	res, err := h.Contacts.List(c.Request.Context(), contacts.ListFilter{
		BrandID: strings.TrimSpace(c.Query("brandId")),
		Status:  strings.TrimSpace(c.Query("status")),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contactRequests": view.NewContactRequests(res.Items),
		"pagination": view.Pagination{
			Page: res.Page, Limit: res.Limit, Total: res.Total, TotalPages: res.TotalPages,
		},
	})
}

// GET /api/contact-requests/:id
func (h *ContactsHandler) Get(c *gin.Context) {
	cr, err := h.Contacts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewContactRequest(cr))
}

type contactStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/contact-requests/:id/status
func (h *ContactsHandler) UpdateStatus(c *gin.Context) {
	var in contactStatusRequest
	if !bindJSON(c, &in) {
		return
	}
	cr, err := h.Contacts.UpdateStatus(c.Request.Context(), c.Param("id"), in.Status)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view.NewContactRequest(cr))
}
