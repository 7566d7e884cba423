// Package paypal adapts the PayPal Orders v2 API to payments.Gateway.
package paypal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/plutov/paypal/v4"

	"paylink.dev/app/internal/modules/payments"
)

// APIBase returns the REST endpoint for mode ("sandbox" or "live").
func APIBase(mode string) string {
	if mode == "live" {
		return paypal.APIBaseLive
	}
	return paypal.APIBaseSandBox
}

type Gateway struct {
	client *paypal.Client
}

func New(clientID, secret, apiBase string) (*Gateway, error) {
	c, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("paypal client: %w", err)
	}
	return &Gateway{client: c}, nil
}

func (g *Gateway) Name() string { return "paypal" }

// Client exposes the underlying SDK client, e.g. for webhook verification.
func (g *Gateway) Client() *paypal.Client { return g.client }

func (g *Gateway) CreateOrder(ctx context.Context, req payments.OrderRequest) (payments.Order, error) {
	units := []paypal.PurchaseUnitRequest{{
		ReferenceID: req.ReferenceID,
		CustomID:    req.ReferenceID,
		Description: req.Description,
		Amount: &paypal.PurchaseUnitAmount{
			Currency: payments.NormalizeCurrency(req.Currency),
			Value:    payments.FormatAmount(req.Amount),
		},
	}}
	appCtx := &paypal.ApplicationContext{
		BrandName:          req.BrandName,
		ShippingPreference: paypal.ShippingPreferenceNoShipping,
		UserAction:         paypal.UserActionPayNow,
		ReturnURL:          req.ReturnURL,
		CancelURL:          req.CancelURL,
	}

	o, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		return payments.Order{}, wrap("create order", err)
	}
	return toOrder(o), nil
}

func (g *Gateway) FetchOrder(ctx context.Context, orderID string) (payments.Order, error) {
	o, err := g.client.GetOrder(ctx, orderID)
	if err != nil {
		return payments.Order{}, wrap("fetch order", err)
	}
	return toOrder(o), nil
}

func (g *Gateway) CaptureOrder(ctx context.Context, orderID string) (payments.Capture, error) {
	resp, err := g.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return payments.Capture{}, wrap("capture order", err)
	}

	c := payments.Capture{ID: resp.ID, Status: resp.Status}
	if len(resp.PurchaseUnits) > 0 && resp.PurchaseUnits[0].Payments != nil {
		if caps := resp.PurchaseUnits[0].Payments.Captures; len(caps) > 0 {
			c.ID = caps[0].ID
		}
	}
	return c, nil
}

func toOrder(o *paypal.Order) payments.Order {
	out := payments.Order{ID: o.ID, Status: o.Status}
	for _, l := range o.Links {
		if l.Rel == "approve" || l.Rel == "payer-action" {
			out.ApprovalURL = l.Href
			break
		}
	}
	return out
}

// wrap maps SDK failures to payments.ProcessorError. A 422 means the order is
// in a state that forbids the operation (already captured, voided, declined).
func wrap(op string, err error) error {
	var er *paypal.ErrorResponse
	if errors.As(err, &er) {
		if er.Response != nil && er.Response.StatusCode == http.StatusUnprocessableEntity {
			return &payments.ProcessorError{Op: op, Err: fmt.Errorf("%w: %s", payments.ErrOrderNotCapturable, er.Message)}
		}
		return &payments.ProcessorError{Op: op, Err: fmt.Errorf("%s (debug_id %s)", er.Message, er.DebugID)}
	}
	return &payments.ProcessorError{Op: op, Err: err}
}

// WebhookVerifier checks notifications against PayPal's
// verify-webhook-signature endpoint.
type WebhookVerifier struct {
	client    *paypal.Client
	webhookID string
}

func NewWebhookVerifier(client *paypal.Client, webhookID string) *WebhookVerifier {
	return &WebhookVerifier{client: client, webhookID: webhookID}
}

func (v *WebhookVerifier) Verify(ctx context.Context, headers http.Header, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/api/webhooks/paypal", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header = headers.Clone()

	resp, err := v.client.VerifyWebhookSignature(ctx, req, v.webhookID)
	if err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}
	if resp.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("verification status %q", resp.VerificationStatus)
	}
	return nil
}
