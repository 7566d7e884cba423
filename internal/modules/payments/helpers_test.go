package payments

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"paylink.dev/app/internal/database"
	"paylink.dev/app/internal/modules/brands"
)

// fakeGateway is an in-memory processor with injectable failures.
type fakeGateway struct {
	mu         sync.Mutex
	orders     map[string]*Order
	requests   []OrderRequest
	creates    int
	captures   int
	fetches    int
	createErr  error
	captureErr error
	fetchErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]*Order{}}
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateOrder(_ context.Context, req OrderRequest) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.creates++
	g.requests = append(g.requests, req)
	if g.createErr != nil {
		return Order{}, &ProcessorError{Op: "create order", Err: g.createErr}
	}
	id := fmt.Sprintf("ORDER-%d", g.creates)
	o := &Order{ID: id, Status: OrderCreated, ApprovalURL: "https://processor.test/approve?token=" + id}
	g.orders[id] = o
	return *o, nil
}

func (g *fakeGateway) CaptureOrder(_ context.Context, orderID string) (Capture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.captures++
	if g.captureErr != nil {
		return Capture{}, &ProcessorError{Op: "capture order", Err: g.captureErr}
	}
	o, ok := g.orders[orderID]
	if !ok || o.Status == OrderCompleted || o.Status == OrderVoided {
		return Capture{}, &ProcessorError{Op: "capture order", Err: ErrOrderNotCapturable}
	}
	o.Status = OrderCompleted
	return Capture{ID: "CAP-" + orderID, Status: OrderCompleted}, nil
}

func (g *fakeGateway) FetchOrder(_ context.Context, orderID string) (Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetches++
	if g.fetchErr != nil {
		return Order{}, &ProcessorError{Op: "fetch order", Err: g.fetchErr}
	}
	o, ok := g.orders[orderID]
	if !ok {
		return Order{}, &ProcessorError{Op: "fetch order", Err: fmt.Errorf("order %s not found", orderID)}
	}
	return *o, nil
}

func (g *fakeGateway) setStatus(orderID, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[orderID].Status = status
}

func (g *fakeGateway) counts() (creates, captures int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.creates, g.captures
}

type testEnv struct {
	db      *gorm.DB
	gw      *fakeGateway
	store   *Store
	svc     *Service
	webhook *WebhookService
	brand   *brands.Brand
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:", nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return envFromDB(t, db)
}

func envFromDB(t *testing.T, db *gorm.DB) *testEnv {
	t.Helper()
	require.NoError(t, db.AutoMigrate(append([]any{&brands.Brand{}}, Models()...)...))

	brandSvc := brands.NewService(db, nil)
	brandSvc.SetLogger(discardLogger())
	brand, err := brandSvc.Create(context.Background(), brands.Input{Name: "Brand X", Description: "Consulting"})
	require.NoError(t, err)

	gw := newFakeGateway()
	store := NewStore(db)
	svc := NewService(store, gw, brandSvc, Options{
		BaseURL:     "https://api.paylink.test",
		FrontendURL: "https://pay.paylink.test/",
		Expiry:      24 * time.Hour,
	})
	svc.SetLogger(discardLogger())

	wh := NewWebhookService(db, "paypal", nil)
	wh.SetLogger(discardLogger())

	return &testEnv{db: db, gw: gw, store: store, svc: svc, webhook: wh, brand: brand}
}

func (e *testEnv) linkInput() CreateLinkInput {
	return CreateLinkInput{
		BrandID:       e.brand.ID,
		CustomerName:  "Jane Doe",
		CustomerEmail: "jane@example.com",
		ServiceName:   "Logo design",
		Amount:        decimal.RequireFromString("50.00"),
	}
}

func (e *testEnv) createLink(t *testing.T) CreateLinkResult {
	t.Helper()
	res, err := e.svc.CreateLink(context.Background(), e.linkInput())
	require.NoError(t, err)
	return res
}

func (e *testEnv) status(t *testing.T, ref string) Status {
	t.Helper()
	p, err := e.store.GetByReference(context.Background(), ref)
	require.NoError(t, err)
	return p.Status
}

func (e *testEnv) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}

func captureEvent(eventID, eventType, orderID string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"event_type":%q,"resource_type":"capture",`+
		`"resource":{"id":"CAP-1","status":"COMPLETED","supplementary_data":{"related_ids":{"order_id":%q}}}}`,
		eventID, eventType, orderID))
}

func approvalEvent(eventID, orderID string) []byte {
	return []byte(fmt.Sprintf(`{"id":%q,"event_type":"CHECKOUT.ORDER.APPROVED","resource_type":"checkout-order",`+
		`"resource":{"id":%q,"status":"APPROVED"}}`, eventID, orderID))
}
