// Package mock is an in-memory payment processor for local development and
// tests. Approval links point straight at the return URL, so following one
// behaves like a customer who approved the order.
package mock

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"paylink.dev/app/internal/modules/payments"
)

type order struct {
	payments.Order
	req       payments.OrderRequest
	captureID string
}

type Gateway struct {
	mu     sync.RWMutex
	orders map[string]*order
}

func NewGateway() *Gateway {
	return &Gateway{orders: make(map[string]*order)}
}

func (g *Gateway) Name() string { return "mock" }

func (g *Gateway) CreateOrder(ctx context.Context, req payments.OrderRequest) (payments.Order, error) {
	if err := ctx.Err(); err != nil {
		return payments.Order{}, &payments.ProcessorError{Op: "create order", Err: err}
	}
	if !req.Amount.IsPositive() {
		return payments.Order{}, &payments.ProcessorError{Op: "create order", Err: fmt.Errorf("invalid amount %s", payments.FormatAmount(req.Amount))}
	}

	id := "MOCK-" + uuid.NewString()[:13]
	approval := req.ReturnURL
	if approval != "" {
		approval += "?" + url.Values{"token": {id}}.Encode()
	}
	o := &order{Order: payments.Order{ID: id, Status: payments.OrderCreated, ApprovalURL: approval}, req: req}

	g.mu.Lock()
	g.orders[id] = o
	g.mu.Unlock()
	return o.Order, nil
}

func (g *Gateway) CaptureOrder(ctx context.Context, orderID string) (payments.Capture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o, ok := g.orders[orderID]
	if !ok {
		return payments.Capture{}, &payments.ProcessorError{Op: "capture order", Err: fmt.Errorf("order %s not found", orderID)}
	}
	switch o.Status {
	case payments.OrderCompleted, payments.OrderVoided:
		return payments.Capture{}, &payments.ProcessorError{Op: "capture order", Err: payments.ErrOrderNotCapturable}
	}
	o.Status = payments.OrderCompleted
	o.ApprovalURL = ""
	o.captureID = "CAP-" + uuid.NewString()[:13]
	return payments.Capture{ID: o.captureID, Status: payments.OrderCompleted}, nil
}

func (g *Gateway) FetchOrder(ctx context.Context, orderID string) (payments.Order, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	o, ok := g.orders[orderID]
	if !ok {
		return payments.Order{}, &payments.ProcessorError{Op: "fetch order", Err: fmt.Errorf("order %s not found", orderID)}
	}
	return o.Order, nil
}

// Void marks an order as no longer approvable.
func (g *Gateway) Void(orderID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[orderID]
	if ok {
		o.Status = payments.OrderVoided
		o.ApprovalURL = ""
	}
	return ok
}

// Request returns the request an order was created from.
func (g *Gateway) Request(orderID string) (payments.OrderRequest, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	o, ok := g.orders[orderID]
	if !ok {
		return payments.OrderRequest{}, false
	}
	return o.req, true
}
