package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"paylink.dev/app/internal/auth"
	"paylink.dev/app/internal/http/handlers"
	"paylink.dev/app/internal/http/middleware"
	"paylink.dev/app/internal/http/render"
	"paylink.dev/app/internal/http/validation"
	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/contacts"
	"paylink.dev/app/internal/modules/payments"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Logger      *slog.Logger
	DB          *gorm.DB
	Tokens      *auth.Tokens
	Payments    *payments.Service
	Webhooks    *payments.WebhookService
	Brands      *brands.Service
	Agents      *agents.Service
	Contacts    *contacts.Service
	CORSOrigins []string

	PayPalClientID  string
	PayPalMode      string
	DefaultCurrency string
}

func NewRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()
	validation.Setup()
	if err := render.Load(r); err != nil {
		return nil, err
	}

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger, "/healthz"))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.Recovery(d.Logger))
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.CORSOrigins)))
	}

	health := &handlers.HealthHandler{DB: d.DB}
	r.GET("/healthz", health.Get)

	requireAgent := middleware.RequireAgent(d.Tokens)
	api := r.Group("/api")

	authH := handlers.NewAuthHandler(d.Agents, d.Tokens)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/register", requireAgent, middleware.RequireAdmin(), authH.Register)
	api.GET("/auth/me", requireAgent, authH.Me)
	api.PUT("/auth/password", requireAgent, authH.ChangePassword)

	payH := handlers.NewPaymentsHandler(d.Payments)
	api.POST("/payments/links", requireAgent, payH.CreateLink)
	api.GET("/payments", requireAgent, payH.List)
	api.GET("/payments/export", requireAgent, payH.Export)
	api.GET("/payments/:referenceId", payH.Lookup)
	api.PATCH("/payments/:referenceId/status", requireAgent, payH.UpdateStatus)
	api.GET("/payments/:referenceId/events", requireAgent, payH.Events)
	api.POST("/payments/:referenceId/paypal", payH.Initialize)
	api.GET("/payments/:referenceId/invoice", payH.Invoice)

	ppCfg := &handlers.PayPalConfigHandler{ClientID: d.PayPalClientID, Mode: d.PayPalMode, Currency: d.DefaultCurrency}
	api.GET("/paypal-config", ppCfg.Get)

	webhookH := handlers.NewWebhookHandler(d.Logger, d.Webhooks)
	api.POST("/webhooks/paypal", webhookH.Handle)

	brandH := handlers.NewBrandsHandler(d.Brands)
	api.GET("/brands", brandH.List)
	api.GET("/brands/:id", brandH.Get)
	api.POST("/brands", requireAgent, brandH.Create)
	api.PUT("/brands/:id", requireAgent, brandH.Update)
	api.POST("/brands/upload-logo", requireAgent, brandH.UploadLogo)

	contactH := handlers.NewContactsHandler(d.Contacts)
	api.POST("/contact-requests", contactH.Create)
	api.GET("/contact-requests", requireAgent, contactH.List)
	api.GET("/contact-requests/:id", requireAgent, contactH.Get)
	api.PATCH("/contact-requests/:id/status", requireAgent, contactH.UpdateStatus)

	outcome := handlers.NewOutcomeHandler(d.Payments)
	r.GET("/payment/success/:referenceId", outcome.Success)
	r.GET("/payment/cancel/:referenceId", outcome.Cancel)

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{middleware.HeaderRequestID, "Content-Disposition", "X-Total-Count", "X-Export-Truncated"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
