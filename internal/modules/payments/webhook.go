package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	EventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
)

// WebhookEvent is the part of a processor notification the reconciler uses.
type WebhookEvent struct {
	ID           string
	Type         string
	ResourceType string
	// OrderID is the processor order the event belongs to.
	OrderID string
	// ReferenceID is the correlation id carried in custom_id, when present.
	ReferenceID string
}

type rawEvent struct {
	ID           string `json:"id"`
	EventType    string `json:"event_type"`
	ResourceType string `json:"resource_type"`
	Resource     struct {
		ID                string `json:"id"`
		CustomID          string `json:"custom_id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
		PurchaseUnits []struct {
			ReferenceID string `json:"reference_id"`
			CustomID    string `json:"custom_id"`
		} `json:"purchase_units"`
	} `json:"resource"`
}

// ParseWebhookEvent decodes a notification body. Approval events carry the
// order id as the resource id; capture events carry it under
// supplementary_data.related_ids.
func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var raw rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if raw.ID == "" || raw.EventType == "" {
		return WebhookEvent{}, fmt.Errorf("%w: missing id or event_type", ErrMalformedEvent)
	}

	ev := WebhookEvent{
		ID:           raw.ID,
		Type:         raw.EventType,
		ResourceType: raw.ResourceType,
		ReferenceID:  raw.Resource.CustomID,
	}
	switch raw.EventType {
	case EventOrderApproved:
		ev.OrderID = raw.Resource.ID
		if ev.ReferenceID == "" && len(raw.Resource.PurchaseUnits) > 0 {
			pu := raw.Resource.PurchaseUnits[0]
			ev.ReferenceID = pu.CustomID
			if ev.ReferenceID == "" {
				ev.ReferenceID = pu.ReferenceID
			}
		}
	default:
		ev.OrderID = raw.Resource.SupplementaryData.RelatedIDs.OrderID
	}
	return ev, nil
}

// Verifier authenticates an inbound notification before it is parsed.
type Verifier interface {
	Verify(ctx context.Context, headers http.Header, body []byte) error
}

// PermissiveVerifier accepts every notification. It exists for local
// development and for processors without a configured webhook id.
type PermissiveVerifier struct{}

func (PermissiveVerifier) Verify(context.Context, http.Header, []byte) error { return nil }
