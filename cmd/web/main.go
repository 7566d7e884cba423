package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"paylink.dev/app/internal/auth"
	"paylink.dev/app/internal/config"
	"paylink.dev/app/internal/database"
	apphttp "paylink.dev/app/internal/http"
	"paylink.dev/app/internal/mailer"
	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/contacts"
	"paylink.dev/app/internal/modules/email"
	"paylink.dev/app/internal/modules/payments"
	"paylink.dev/app/internal/processor/mock"
	"paylink.dev/app/internal/processor/paypal"
	"paylink.dev/app/internal/schema"
	"paylink.dev/app/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, logger)
	if err != nil {
		return err
	}
	if err := schema.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("storage ready", "driver", store.Driver)

	brandSvc := brands.NewService(db, store.Storage)
	brandSvc.SetLogger(logger)

	agentSvc := agents.NewService(db)
	agentSvc.SetLogger(logger)

	gateway, verifier, err := processor(cfg, logger)
	if err != nil {
		return err
	}

	paySvc := payments.NewService(payments.NewStore(db), gateway, brandSvc, payments.Options{
		BaseURL:         cfg.BaseURL,
		FrontendURL:     cfg.FrontendURL,
		Expiry:          cfg.PaymentExpiry,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	paySvc.SetLogger(logger)

	webhooks := payments.NewWebhookService(db, gateway.Name(), verifier)
	webhooks.SetLogger(logger)

	mail := newMailer(cfg, logger)
	contactSvc := contacts.NewService(db, brandSvc, mail, cfg.MailFrom)
	contactSvc.SetLogger(logger)

	receipts := email.NewReceipts(mail, brandSvc, cfg.MailFrom)
	receipts.SetLogger(logger)
	paySvc.SetNotifier(receipts)
	webhooks.SetNotifier(receipts)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := apphttp.NewRouter(apphttp.Deps{
		Logger:          logger,
		DB:              db,
		Tokens:          auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Payments:        paySvc,
		Webhooks:        webhooks,
		Brands:          brandSvc,
		Agents:          agentSvc,
		Contacts:        contactSvc,
		CORSOrigins:     cfg.CORSOrigins,
		PayPalClientID:  cfg.PayPalClientID,
		PayPalMode:      cfg.PayPalMode,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		return err
	}
	if cfg.StorageDriver == "local" {
		r.Static(cfg.LocalPublicURL, cfg.LocalUploadDir)
	}

	logger.Info("server listening", "addr", cfg.HTTPAddr, "processor", gateway.Name(), "base_url", cfg.BaseURL)
	return r.Run(cfg.HTTPAddr)
}

func processor(cfg *config.Config, logger *slog.Logger) (payments.Gateway, payments.Verifier, error) {
	if cfg.ProcessorDriver == "mock" {
		logger.Warn("using in-memory mock processor")
		return mock.NewGateway(), payments.PermissiveVerifier{}, nil
	}

	gw, err := paypal.New(cfg.PayPalClientID, cfg.PayPalClientSecret, paypal.APIBase(cfg.PayPalMode))
	if err != nil {
		return nil, nil, fmt.Errorf("paypal: %w", err)
	}
	if cfg.PayPalWebhookID == "" {
		logger.Warn("PAYPAL_WEBHOOK_ID not set, webhook signatures are not verified")
		return gw, payments.PermissiveVerifier{}, nil
	}
	return gw, paypal.NewWebhookVerifier(gw.Client(), cfg.PayPalWebhookID), nil
}

func newMailer(cfg *config.Config, logger *slog.Logger) mailer.Service {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set, emails are logged and dropped")
		return mailer.NewLog(logger.With("component", "mailer"))
	}
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
	})
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
