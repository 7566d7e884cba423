package main

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"paylink.dev/app/internal/modules/payments"
)

type webhookOptions struct {
	URL         string
	EventID     string
	Type        string
	OrderID     string
	ReferenceID string
	Amount      string
	Currency    string
	DryRun      bool
}

func webhookCmd() *cobra.Command {
	opts := webhookOptions{}
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Send a PayPal-shaped webhook event to a running server",
		Long: `Send a PayPal-shaped webhook event.

Examples:
  paylinkctl webhook --type PAYMENT.CAPTURE.COMPLETED --order-id 5O190127TN364715T
  paylinkctl webhook --type CHECKOUT.ORDER.APPROVED --order-id 5O190127TN364715T --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.OrderID == "" {
				return fmt.Errorf("--order-id is required")
			}
			if opts.EventID == "" {
				opts.EventID = "WH-" + randomHex(8)
			}
			body, err := buildEvent(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Body: %s\n", body)
			if opts.DryRun {
				fmt.Fprintln(out, "[DRY RUN] Not sending request")
				return nil
			}

			status, resp, err := send(opts.URL, body)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Status: %d\nResponse: %s\n", status, resp)
			if status != http.StatusOK {
				return fmt.Errorf("server answered %d", status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://localhost:8080/api/webhooks/paypal", "webhook endpoint")
	cmd.Flags().StringVar(&opts.EventID, "event-id", "", "event id (random when empty)")
	cmd.Flags().StringVar(&opts.Type, "type", payments.EventCaptureCompleted, "event type")
	cmd.Flags().StringVar(&opts.OrderID, "order-id", "", "processor order id")
	cmd.Flags().StringVar(&opts.ReferenceID, "reference-id", "", "payment reference id (custom_id)")
	cmd.Flags().StringVar(&opts.Amount, "amount", "50.00", "amount")
	cmd.Flags().StringVar(&opts.Currency, "currency", "USD", "currency")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the body without sending it")
	return cmd
}

// buildEvent renders the event the way PayPal delivers it: approval events
// carry the order as the resource, capture events reference it through
// supplementary_data.
func buildEvent(opts webhookOptions) ([]byte, error) {
	amount := map[string]string{"currency_code": opts.Currency, "value": opts.Amount}

	var resourceType string
	var resource map[string]any
	switch opts.Type {
	case payments.EventOrderApproved:
		resourceType = "checkout-order"
		unit := map[string]any{"reference_id": opts.ReferenceID, "amount": amount}
		if opts.ReferenceID != "" {
			unit["custom_id"] = opts.ReferenceID
		}
		resource = map[string]any{
			"id":             opts.OrderID,
			"status":         "APPROVED",
			"intent":         "CAPTURE",
			"purchase_units": []any{unit},
		}
	case payments.EventCaptureCompleted, payments.EventCaptureDenied:
		resourceType = "capture"
		status := "COMPLETED"
		if opts.Type == payments.EventCaptureDenied {
			status = "DECLINED"
		}
		resource = map[string]any{
			"id":        "CAP-" + randomHex(6),
			"status":    status,
			"amount":    amount,
			"custom_id": opts.ReferenceID,
			"supplementary_data": map[string]any{
				"related_ids": map[string]string{"order_id": opts.OrderID},
			},
		}
	default:
		return nil, fmt.Errorf("unsupported event type %q", opts.Type)
	}

	return json.Marshal(map[string]any{
		"id":            opts.EventID,
		"event_version": "1.0",
		"create_time":   time.Now().UTC().Format(time.RFC3339),
		"resource_type": resourceType,
		"event_type":    opts.Type,
		"summary":       "Mock event sent by paylinkctl",
		"resource":      resource,
	})
}

func send(url string, body []byte) (int, string, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode, string(b), nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
