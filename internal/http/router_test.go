package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"paylink.dev/app/internal/auth"
	"paylink.dev/app/internal/database"
	"paylink.dev/app/internal/mailer"
	"paylink.dev/app/internal/modules/agents"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/contacts"
	"paylink.dev/app/internal/modules/payments"
	"paylink.dev/app/internal/processor/mock"
	"paylink.dev/app/internal/storage"
)

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	gw     *mock.Gateway
	mail   *mailer.Mock
	brand  *brands.Brand
	admin  string
	agent  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	db, err := database.Open("sqlite", "file::memory:", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models := []any{&brands.Brand{}, &agents.Agent{}, &contacts.ContactRequest{}}
	require.NoError(t, db.AutoMigrate(append(models, payments.Models()...)...))

	brandSvc := brands.NewService(db, storage.NewLocal(t.TempDir(), "/brand-logos"))
	brandSvc.SetLogger(log)
	brand, err := brandSvc.Create(ctx, brands.Input{Name: "Brand X", Email: "sales@brandx.test"})
	require.NoError(t, err)

	agentSvc := agents.NewService(db)
	agentSvc.SetLogger(log)
	tokens := auth.NewTokens("test-secret", time.Hour)

	issue := func(email, role string) string {
		a, err := agentSvc.Register(ctx, agents.RegisterInput{Name: role, Email: email, Password: "password123", Role: role})
		require.NoError(t, err)
		tok, _, err := tokens.Issue(a.ID, a.Email, a.Role)
		require.NoError(t, err)
		return tok
	}

	gw := mock.NewGateway()
	paySvc := payments.NewService(payments.NewStore(db), gw, brandSvc, payments.Options{
		BaseURL: "http://api.paylink.test",
		Expiry:  24 * time.Hour,
	})
	paySvc.SetLogger(log)
	webhooks := payments.NewWebhookService(db, "paypal", nil)
	webhooks.SetLogger(log)

	mail := &mailer.Mock{}
	contactSvc := contacts.NewService(db, brandSvc, mail, "no-reply@paylink.test")
	contactSvc.SetLogger(log)

	r, err := NewRouter(Deps{
		Logger:          log,
		DB:              db,
		Tokens:          tokens,
		Payments:        paySvc,
		Webhooks:        webhooks,
		Brands:          brandSvc,
		Agents:          agentSvc,
		Contacts:        contactSvc,
		PayPalClientID:  "client-123",
		PayPalMode:      "sandbox",
		DefaultCurrency: "USD",
	})
	require.NoError(t, err)

	return &server{
		t:      t,
		db:     db,
		router: r,
		gw:     gw,
		mail:   mail,
		brand:  brand,
		admin:  issue("admin@paylink.test", agents.RoleAdmin),
		agent:  issue("agent@paylink.test", agents.RoleAgent),
	}
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) createLink() string {
	s.t.Helper()
	w := s.do(nethttp.MethodPost, "/api/payments/links", s.agent, map[string]any{
		"brandId":       s.brand.ID,
		"customerName":  "Jane Doe",
		"customerEmail": "jane@example.com",
		"serviceName":   "Logo design",
		"amount":        "50.00",
		"currency":      "USD",
	})
	require.Equal(s.t, nethttp.StatusCreated, w.Code, w.Body.String())
	return decode(s.t, w)["referenceId"].(string)
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	w := s.do(nethttp.MethodGet, "/healthz", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthRequired(t *testing.T) {
	s := newServer(t)

	w := s.do(nethttp.MethodGet, "/api/payments", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Authentication required.", body["error"])
	assert.NotEmpty(t, body["request_id"])

	w = s.do(nethttp.MethodGet, "/api/payments", "not-a-token", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = s.do(nethttp.MethodPost, "/api/auth/register", s.agent, map[string]any{
		"name": "X", "email": "x@paylink.test", "password": "password123",
	})
	assert.Equal(t, nethttp.StatusForbidden, w.Code)

	w = s.do(nethttp.MethodPost, "/api/auth/register", s.admin, map[string]any{
		"name": "X", "email": "x@paylink.test", "password": "password123",
	})
	assert.Equal(t, nethttp.StatusCreated, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginAndMe(t *testing.T) {
	s := newServer(t)

	w := s.do(nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": "agent@paylink.test", "password": "wrong-password"})
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = s.do(nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": "bad"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "email")

	w = s.do(nethttp.MethodPost, "/api/auth/login", "", map[string]any{"email": "Agent@paylink.test", "password": "password123"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	w = s.do(nethttp.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "agent@paylink.test", decode(t, w)["email"])
}

func TestCreateLinkValidation(t *testing.T) {
	s := newServer(t)

	w := s.do(nethttp.MethodPost, "/api/payments/links", s.agent, map[string]any{
		"brandId": s.brand.ID,
		"amount":  "-5",
	})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "customerName")
	assert.Contains(t, fields, "customerEmail")
	assert.Equal(t, "Must be greater than zero with at most two decimals.", fields["amount"])

	w = s.do(nethttp.MethodPost, "/api/payments/links", s.agent, map[string]any{
		"brandId":       "missing",
		"customerName":  "Jane",
		"customerEmail": "jane@example.com",
		"serviceName":   "Logo",
		"amount":        "10",
	})
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestPaymentReturnFlow(t *testing.T) {
	s := newServer(t)
	ref := s.createLink()

	w := s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	pub := decode(t, w)
	assert.Equal(t, "pending", pub["status"])
	assert.Equal(t, "Brand X", pub["brand"].(map[string]any)["name"])
	assert.NotContains(t, w.Body.String(), "jane@example.com")

	w = s.do(nethttp.MethodPost, "/api/payments/"+ref+"/paypal", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	started := decode(t, w)
	assert.Equal(t, "processing", started["status"])
	assert.Contains(t, started["approvalUrl"], "/payment/success/"+ref)

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref+"/invoice", "", nil)
	assert.Equal(t, nethttp.StatusConflict, w.Code)

	w = s.do(nethttp.MethodGet, "/payment/success/"+ref, "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Your payment has been completed")
	assert.Contains(t, w.Body.String(), "$50.00")

	// the return callback is idempotent
	w = s.do(nethttp.MethodGet, "/payment/success/"+ref, "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref+"/invoice", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref+"/events", s.agent, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["events"], 4)

	w = s.do(nethttp.MethodPost, "/api/payments/"+ref+"/paypal", "", nil)
	assert.Equal(t, nethttp.StatusConflict, w.Code)
}

func TestCancelPage(t *testing.T) {
	s := newServer(t)
	ref := s.createLink()

	w := s.do(nethttp.MethodGet, "/payment/cancel/"+ref, "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Your payment was cancelled")

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
	assert.Equal(t, "cancelled", decode(t, w)["status"])
}

func TestCancelPageAfterTerminalStatus(t *testing.T) {
	s := newServer(t)

	for status, notice := range map[payments.Status]string{
		payments.StatusFailed:    "This payment can no longer be cancelled.",
		payments.StatusCompleted: "This payment has already been completed.",
	} {
		ref := s.createLink()
		require.NoError(t, s.db.Model(&payments.Payment{}).Where("reference_id = ?", ref).
			Update("status", status).Error)

		w := s.do(nethttp.MethodGet, "/payment/cancel/"+ref, "", nil)
		require.Equal(t, nethttp.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), notice)
		assert.NotContains(t, w.Body.String(), "Your payment was cancelled")

		w = s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
		assert.Equal(t, string(status), decode(t, w)["status"])
	}
}

func TestOutcomePageNotFoundRendersHTML(t *testing.T) {
	s := newServer(t)
	w := s.do(nethttp.MethodGet, "/payment/success/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Payment not found.")
}

func TestLookupExpired(t *testing.T) {
	s := newServer(t)
	ref := s.createLink()
	require.NoError(t, s.db.Model(&payments.Payment{}).Where("reference_id = ?", ref).
		Update("created_at", time.Now().UTC().Add(-25*time.Hour)).Error)

	for i := 0; i < 2; i++ {
		w := s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
		require.Equal(t, nethttp.StatusBadRequest, w.Code)
		body := decode(t, w)
		assert.Equal(t, "expired", body["status"])
		assert.Equal(t, ref, body["referenceId"])
	}

	w := s.do(nethttp.MethodGet, "/api/payments/missing", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestListExportAndAdminStatus(t *testing.T) {
	s := newServer(t)
	ref := s.createLink()
	s.createLink()

	w := s.do(nethttp.MethodGet, "/api/payments?limit=1", s.agent, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["payments"], 1)
	pg := body["pagination"].(map[string]any)
	assert.EqualValues(t, 2, pg["total"])
	assert.EqualValues(t, 2, pg["totalPages"])

	w = s.do(nethttp.MethodGet, "/api/payments?status=bogus", s.agent, nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = s.do(nethttp.MethodPatch, "/api/payments/"+ref+"/status", s.agent, map[string]any{"status": "refunded"})
	assert.Equal(t, nethttp.StatusConflict, w.Code)

	w = s.do(nethttp.MethodPatch, "/api/payments/"+ref+"/status", s.agent, map[string]any{"status": "completed"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "completed", decode(t, w)["status"])

	w = s.do(nethttp.MethodGet, "/api/payments/export", s.agent, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))
	assert.Empty(t, w.Header().Get("X-Export-Truncated"))
	assert.NotZero(t, w.Body.Len())
}

func TestWebhookAcknowledges(t *testing.T) {
	s := newServer(t)
	ref := s.createLink()

	w := s.do(nethttp.MethodPost, "/api/payments/"+ref+"/paypal", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	orderID := decode(t, w)["orderId"].(string)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/webhooks/paypal", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusOK, rec.Code)

	event := map[string]any{
		"id":            "WH-1",
		"event_type":    payments.EventCaptureCompleted,
		"resource_type": "capture",
		"resource": map[string]any{
			"id": "CAP-1",
			"supplementary_data": map[string]any{
				"related_ids": map[string]any{"order_id": orderID},
			},
		},
	}
	w = s.do(nethttp.MethodPost, "/api/webhooks/paypal", "", event)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["received"])

	w = s.do(nethttp.MethodGet, "/api/payments/"+ref, "", nil)
	assert.Equal(t, "completed", decode(t, w)["status"])
}

func TestBrandsAndLogoUpload(t *testing.T) {
	s := newServer(t)

	w := s.do(nethttp.MethodPost, "/api/brands", s.agent, map[string]any{"description": "no name"})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = s.do(nethttp.MethodPost, "/api/brands", s.agent, map[string]any{"name": "Acme Studio"})
	require.Equal(t, nethttp.StatusCreated, w.Code)
	id := decode(t, w)["id"].(string)

	w = s.do(nethttp.MethodGet, "/api/brands/"+id, "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w = s.do(nethttp.MethodGet, "/api/brands", "", nil)
	assert.Len(t, decode(t, w)["brands"], 2)

	upload := func(filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("brandName", "Acme Studio"))
		fw, err := mw.CreateFormFile("logo", filename)
		require.NoError(t, err)
		_, _ = fw.Write([]byte("\x89PNG fake"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(nethttp.MethodPost, "/api/brands/upload-logo", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.agent)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("logo.png")
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(decode(t, rec)["logoUrl"].(string), "/brand-logos/acme-studio-"))

	rec = upload("logo.exe")
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestContactRequests(t *testing.T) {
	s := newServer(t)

	w := s.do(nethttp.MethodPost, "/api/contact-requests", "", map[string]any{
		"name":    "Lead",
		"email":   "not-an-email",
		"phone":   "+1 555 0100",
		"message": "Need a website",
		"brandId": s.brand.ID,
	})
	require.Equal(t, nethttp.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["fields"], "email")
	assert.Empty(t, s.mail.Messages())

	w = s.do(nethttp.MethodPost, "/api/contact-requests", "", map[string]any{
		"name":    "Lead",
		"email":   "lead@example.com",
		"phone":   "+1 555 0100",
		"message": "Need a website",
		"brandId": s.brand.ID,
	})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["contactRequest"].(map[string]any)["id"].(string)
	assert.Len(t, s.mail.Messages(), 1)

	w = s.do(nethttp.MethodGet, "/api/contact-requests", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = s.do(nethttp.MethodGet, "/api/contact-requests?status=new", s.agent, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["contactRequests"], 1)

	w = s.do(nethttp.MethodPatch, "/api/contact-requests/"+id+"/status", s.agent, map[string]any{"status": "contacted"})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "contacted", decode(t, w)["status"])

	w = s.do(nethttp.MethodGet, "/api/contact-requests/"+id, s.agent, nil)
	assert.Equal(t, "Brand X", decode(t, w)["brand"].(map[string]any)["name"])
}

func TestPayPalConfig(t *testing.T) {
	s := newServer(t)
	w := s.do(nethttp.MethodGet, "/api/paypal-config", "", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "client-123", body["clientId"])
	assert.Equal(t, "paylater", body["disableFunding"])
}
