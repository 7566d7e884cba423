package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/auth"
	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/shared/apperr"
)

type AuthHandler struct {
	Agents *agents.Service
	Tokens *auth.Tokens
}

func NewAuthHandler(svc *agents.Service, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{Agents: svc, Tokens: tokens}
}

func agentErr(err error) error {
	switch {
	case errors.Is(err, agents.ErrInvalidCredentials):
		return apperr.UnauthorizedErr("Invalid email or password.")
	case errors.Is(err, agents.ErrAgentNotFound):
		return apperr.NotFoundErr("Agent not found.")
	case errors.Is(err, agents.ErrEmailTaken):
		return apperr.ConflictErr("Email is already registered.")
	case errors.Is(err, agents.ErrWeakPassword):
		return apperr.InvalidErr("Password is too weak.", map[string]string{"password": "Must be at least 8 characters."})
	case errors.Is(err, agents.ErrInvalidRole):
		return apperr.InvalidErr("Invalid role.", map[string]string{"role": "Must be agent or admin."})
	default:
		return apperr.Wrap(err)
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in loginRequest
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.Agents.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		middleware.Fail(c, agentErr(err))
		return
	}
	token, exp, err := h.Tokens.Issue(a.ID, a.Email, a.Role)
	if err != nil {
		middleware.Fail(c, apperr.Wrap(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "expiresAt": exp, "agent": a})
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=191"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"omitempty,oneof=agent admin"`
}

// POST /api/auth/register (admin only)
func (h *AuthHandler) Register(c *gin.Context) {
	var in registerRequest
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.Agents.Register(c.Request.Context(), agents.RegisterInput{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: in.Role,
	})
	if err != nil {
		middleware.Fail(c, agentErr(err))
		return
	}
	c.JSON(http.StatusCreated, a)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	a, err := h.Agents.Get(c.Request.Context(), agentID(c))
	if err != nil {
		middleware.Fail(c, agentErr(err))
		return
	}
	c.JSON(http.StatusOK, a)
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// PUT /api/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var in passwordRequest
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Agents.ChangePassword(c.Request.Context(), agentID(c), in.CurrentPassword, in.NewPassword); err != nil {
		middleware.Fail(c, agentErr(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated."})
}
