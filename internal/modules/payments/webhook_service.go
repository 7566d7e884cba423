package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"paylink.dev/app/internal/database"
)

var errUnknownEvent = errors.New("unknown webhook event type")

// WebhookService reconciles processor notifications into payment transitions.
// Handle only fails for a rejected signature; every other outcome is logged
// and acknowledged so the processor does not redeliver.
type WebhookService struct {
	db       *gorm.DB
	store    *Store
	verifier Verifier
	notifier Notifier
	provider string
	logger   *slog.Logger
}

func NewWebhookService(db *gorm.DB, provider string, verifier Verifier) *WebhookService {
	if verifier == nil {
		verifier = PermissiveVerifier{}
	}
	return &WebhookService{
		db:       db,
		store:    NewStore(db),
		verifier: verifier,
		provider: provider,
		logger:   slog.Default(),
	}
}

func (s *WebhookService) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

func (s *WebhookService) SetNotifier(n Notifier) { s.notifier = n }

func (s *WebhookService) Handle(ctx context.Context, headers http.Header, body []byte) error {
	if err := s.verifier.Verify(ctx, headers, body); err != nil {
		s.logger.WarnContext(ctx, "webhook signature rejected", "provider", s.provider, "err", err)
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	ev, err := ParseWebhookEvent(body)
	if err != nil {
		s.logger.WarnContext(ctx, "malformed webhook ignored", "provider", s.provider, "err", err)
		return nil
	}
	log := s.logger.With("provider", s.provider, "event_id", ev.ID, "type", ev.Type, "order_id", ev.OrderID)

	completed, err := s.process(ctx, ev, body, log)
	if err != nil {
		log.ErrorContext(ctx, "webhook processing failed", "err", err)
		return nil
	}
	if completed != nil && s.notifier != nil {
		s.notifier.PaymentCompleted(ctx, completed)
	}
	return nil
}

// process dedupes and applies one event inside a single transaction. A failed
// transaction leaves no provider_events row, so a redelivery is applied again.
// The payment is returned when the event moved it to completed.
func (s *WebhookService) process(ctx context.Context, ev WebhookEvent, body []byte, log *slog.Logger) (*Payment, error) {
	payload := datatypes.JSON(body)
	if !json.Valid(body) {
		payload = datatypes.JSON(`{}`)
	}

	var completed *Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		completed = nil
		now := time.Now().UTC()
		pe := ProviderEvent{
			ID:          uuid.NewString(),
			Provider:    s.provider,
			EventID:     ev.ID,
			EventType:   ev.Type,
			OrderID:     ev.OrderID,
			PayloadJSON: payload,
			ReceivedAt:  now,
		}

		// dedupe: unique(provider, event_id)
		if err := tx.SavePoint("provider_event").Create(&pe).Error; err != nil {
			if database.IsDuplicate(err) {
				log.InfoContext(ctx, "webhook event deduplicated")
				return tx.RollbackTo("provider_event").Error
			}
			return err
		}

		p, applyErr := s.apply(ctx, s.store.WithTx(tx), ev, log)
		if applyErr == nil && p != nil && p.Status == StatusCompleted {
			completed = p
		}

		updates := map[string]any{"processed_at": &now, "process_error": nil}
		if applyErr != nil {
			var te *TransitionError
			switch {
			case errors.Is(applyErr, ErrPaymentNotFound):
				log.WarnContext(ctx, "webhook for unknown payment skipped")
			case errors.Is(applyErr, errUnknownEvent):
				log.InfoContext(ctx, "unhandled webhook event type ignored")
			case errors.As(applyErr, &te):
				log.InfoContext(ctx, "webhook transition ignored", "from", te.From, "to", te.To)
			default:
				return applyErr
			}
			msg := truncate(applyErr.Error(), 250)
			updates = map[string]any{"process_error": msg}
		}

		return tx.Model(&ProviderEvent{}).Where("id = ?", pe.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// apply returns the payment only when the event changed it.
func (s *WebhookService) apply(ctx context.Context, st *Store, ev WebhookEvent, log *slog.Logger) (*Payment, error) {
	var fn MutateFunc
	switch ev.Type {
	case EventOrderApproved:
		fn = advance(StatusApproved, "order approved "+ev.ID)
	case EventCaptureCompleted:
		fn = advance(StatusCompleted, "capture completed "+ev.ID)
	case EventCaptureDenied:
		fn = advance(StatusFailed, "capture denied "+ev.ID)
	default:
		return nil, errUnknownEvent
	}

	p, changed, err := s.resolveAndUpdate(ctx, st, ev, fn)
	if err != nil {
		return nil, err
	}
	if !changed {
		log.InfoContext(ctx, "webhook already applied", "reference_id", p.ReferenceID, "status", p.Status)
		return nil, nil
	}
	log.InfoContext(ctx, "webhook applied", "reference_id", p.ReferenceID, "status", p.Status)
	return p, nil
}

// resolveAndUpdate finds the payment by order id, falling back to the
// reference id carried in the event.
func (s *WebhookService) resolveAndUpdate(ctx context.Context, st *Store, ev WebhookEvent, fn MutateFunc) (*Payment, bool, error) {
	if ev.OrderID != "" {
		p, changed, err := st.UpdateByOrderID(ctx, ev.OrderID, SourceWebhook, fn)
		if !errors.Is(err, ErrPaymentNotFound) || ev.ReferenceID == "" {
			return p, changed, err
		}
	}
	if ev.ReferenceID == "" {
		return nil, false, ErrPaymentNotFound
	}
	return st.UpdateByReference(ctx, ev.ReferenceID, SourceWebhook, func(p *Payment) (Mutation, error) {
		// the reference must belong to the same order when both are known
		if ev.OrderID != "" && p.OrderID() != "" && p.OrderID() != ev.OrderID {
			return Mutation{}, ErrPaymentNotFound
		}
		return fn(p)
	})
}
