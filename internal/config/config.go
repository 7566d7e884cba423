package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server and the operator CLI need.
type Config struct {
	HTTPAddr    string   `mapstructure:"HTTP_ADDR"`
	BaseURL     string   `mapstructure:"BASE_URL"`
	FrontendURL string   `mapstructure:"FRONTEND_URL"`
	CORSOrigins []string `mapstructure:"CORS_ORIGINS"`
	LogLevel    string   `mapstructure:"LOG_LEVEL"`

	DBDriver string `mapstructure:"DB_DRIVER"`
	DBDSN    string `mapstructure:"DB_DSN"`

	ProcessorDriver    string        `mapstructure:"PROCESSOR_DRIVER"`
	PayPalClientID     string        `mapstructure:"PAYPAL_CLIENT_ID"`
	PayPalClientSecret string        `mapstructure:"PAYPAL_CLIENT_SECRET"`
	PayPalMode         string        `mapstructure:"PAYPAL_MODE"`
	PayPalWebhookID    string        `mapstructure:"PAYPAL_WEBHOOK_ID"`
	PaymentExpiry      time.Duration `mapstructure:"PAYMENT_EXPIRY"`
	DefaultCurrency    string        `mapstructure:"DEFAULT_CURRENCY"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	MailFrom string `mapstructure:"MAIL_FROM"`

	StorageDriver  string `mapstructure:"STORAGE_DRIVER"`
	LocalUploadDir string `mapstructure:"LOCAL_UPLOAD_DIR"`
	LocalPublicURL string `mapstructure:"LOCAL_PUBLIC_URL"`
	S3Bucket       string `mapstructure:"S3_BUCKET"`
	S3Region       string `mapstructure:"S3_REGION"`
	S3PublicURL    string `mapstructure:"S3_PUBLIC_URL"`
}

var defaults = map[string]any{
	"HTTP_ADDR":            ":8080",
	"BASE_URL":             "http://localhost:8080",
	"FRONTEND_URL":         "",
	"CORS_ORIGINS":         "http://localhost:3000",
	"LOG_LEVEL":            "info",
	"DB_DRIVER":            "mysql",
	"DB_DSN":               "",
	"PROCESSOR_DRIVER":     "paypal",
	"PAYPAL_MODE":          "sandbox",
	"PAYPAL_CLIENT_ID":     "",
	"PAYPAL_CLIENT_SECRET": "",
	"PAYPAL_WEBHOOK_ID":    "",
	"PAYMENT_EXPIRY":       "24h",
	"DEFAULT_CURRENCY":     "USD",
	"JWT_SECRET":           "",
	"JWT_TTL":              "336h",
	"SMTP_HOST":            "",
	"SMTP_PORT":            587,
	"SMTP_USER":            "",
	"SMTP_PASS":            "",
	"MAIL_FROM":            "no-reply@paylink.local",
	"STORAGE_DRIVER":       "local",
	"LOCAL_UPLOAD_DIR":     "./uploads/brand-logos",
	"LOCAL_PUBLIC_URL":     "/brand-logos",
	"S3_BUCKET":            "",
	"S3_REGION":            "",
	"S3_PUBLIC_URL":        "",
}

// Load reads an optional .env file and resolves settings from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper resolves a Config from v, applying defaults and environment overrides.
func FromViper(v *viper.Viper) (*Config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	cfg := &Config{
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		BaseURL:            strings.TrimRight(v.GetString("BASE_URL"), "/"),
		FrontendURL:        strings.TrimRight(v.GetString("FRONTEND_URL"), "/"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		LogLevel:           strings.ToLower(v.GetString("LOG_LEVEL")),
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:              v.GetString("DB_DSN"),
		ProcessorDriver:    strings.ToLower(v.GetString("PROCESSOR_DRIVER")),
		PayPalClientID:     v.GetString("PAYPAL_CLIENT_ID"),
		PayPalClientSecret: v.GetString("PAYPAL_CLIENT_SECRET"),
		PayPalMode:         strings.ToLower(v.GetString("PAYPAL_MODE")),
		PayPalWebhookID:    v.GetString("PAYPAL_WEBHOOK_ID"),
		PaymentExpiry:      v.GetDuration("PAYMENT_EXPIRY"),
		DefaultCurrency:    strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTTTL:             v.GetDuration("JWT_TTL"),
		SMTPHost:           v.GetString("SMTP_HOST"),
		SMTPPort:           v.GetInt("SMTP_PORT"),
		SMTPUser:           v.GetString("SMTP_USER"),
		SMTPPass:           v.GetString("SMTP_PASS"),
		MailFrom:           v.GetString("MAIL_FROM"),
		StorageDriver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalUploadDir:     v.GetString("LOCAL_UPLOAD_DIR"),
		LocalPublicURL:     v.GetString("LOCAL_PUBLIC_URL"),
		S3Bucket:           v.GetString("S3_BUCKET"),
		S3Region:           v.GetString("S3_REGION"),
		S3PublicURL:        v.GetString("S3_PUBLIC_URL"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("config: DB_DSN is required")
	}
	switch c.ProcessorDriver {
	case "mock":
	case "paypal":
		if c.PayPalClientID == "" || c.PayPalClientSecret == "" {
			return fmt.Errorf("config: PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required")
		}
		if c.PayPalMode != "sandbox" && c.PayPalMode != "live" {
			return fmt.Errorf("config: PAYPAL_MODE must be sandbox or live")
		}
	default:
		return fmt.Errorf("config: unsupported PROCESSOR_DRIVER %q", c.ProcessorDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.PaymentExpiry <= 0 {
		return fmt.Errorf("config: PAYMENT_EXPIRY must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
