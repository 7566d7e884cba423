package payments

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/shared/apperr"
	"paylink.dev/app/internal/shared/validate"
)

// BrandLookup resolves the brand a payment is issued for.
type BrandLookup interface {
	Get(ctx context.Context, id string) (*brands.Brand, error)
}

type Options struct {
	// BaseURL is where the processor sends the customer back (return/cancel pages).
	BaseURL string
	// FrontendURL prefixes the shareable /pay/<reference> link.
	FrontendURL     string
	Expiry          time.Duration
	DefaultCurrency string
	// MaxExportRows caps a spreadsheet export. Defaults to 5000.
	MaxExportRows int
}

// Notifier is told about payments that just reached completed.
type Notifier interface {
	PaymentCompleted(ctx context.Context, p *Payment)
}

type Service struct {
	store    *Store
	gateway  Gateway
	brands   BrandLookup
	notifier Notifier
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
	newRef   func() string
}

func NewService(store *Store, gateway Gateway, brands BrandLookup, opts Options) *Service {
	if opts.Expiry <= 0 {
		opts.Expiry = 24 * time.Hour
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = "USD"
	}
	if opts.MaxExportRows <= 0 {
		opts.MaxExportRows = 5000
	}
	if opts.FrontendURL == "" {
		opts.FrontendURL = opts.BaseURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	opts.FrontendURL = strings.TrimRight(opts.FrontendURL, "/")
	return &Service{
		store:   store,
		gateway: gateway,
		brands:  brands,
		opts:    opts,
		logger:  slog.Default(),
		now:     time.Now,
		newRef:  uuid.NewString,
	}
}

func (s *Service) SetLogger(logger *slog.Logger) { s.logger = logger }

func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

func (s *Service) completed(ctx context.Context, p *Payment) {
	if s.notifier != nil {
		s.notifier.PaymentCompleted(ctx, p)
	}
}

func (s *Service) GatewayName() string { return s.gateway.Name() }

type CreateLinkInput struct {
	BrandID            string          `json:"brandId" validate:"required"`
	CustomerName       string          `json:"customerName" validate:"required,max=191"`
	CustomerEmail      string          `json:"customerEmail" validate:"required,email,max=191"`
	CustomerPhone      string          `json:"customerPhone" validate:"max=64"`
	ServiceName        string          `json:"serviceName" validate:"required,max=191"`
	ServiceDescription string          `json:"serviceDescription"`
	Amount             decimal.Decimal `json:"amount" validate:"money"`
	Currency           string          `json:"currency" validate:"omitempty,len=3,alpha"`
	CreatedByID        string          `json:"-"`
}

type CreateLinkResult struct {
	Payment     *Payment
	PaymentURL  string
	OrderID     string
	ApprovalURL string
	BrandName   string
}

func (in CreateLinkInput) normalized() CreateLinkInput {
	in.BrandID = strings.TrimSpace(in.BrandID)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.ServiceName = strings.TrimSpace(in.ServiceName)
	in.Currency = NormalizeCurrency(in.Currency)
	return in
}

// CreateLink persists a pending payment and opens a processor order for it.
// If the order cannot be opened or attached the record is deleted again.
func (s *Service) CreateLink(ctx context.Context, in CreateLinkInput) (CreateLinkResult, error) {
	in = in.normalized()
	if fields := validate.Struct(in); len(fields) > 0 {
		return CreateLinkResult{}, apperr.InvalidErr("Missing or invalid payment fields.", fields)
	}

	brand, err := s.brands.Get(ctx, in.BrandID)
	if errors.Is(err, brands.ErrBrandNotFound) {
		return CreateLinkResult{}, apperr.NotFoundErr("Brand not found.")
	}
	if err != nil {
		return CreateLinkResult{}, apperr.Wrap(err)
	}

	currency := in.Currency
	if currency == "" {
		currency = s.opts.DefaultCurrency
	}

	// Phase 1: durable anchor
	p := &Payment{
		ID:                 uuid.NewString(),
		ReferenceID:        s.newRef(),
		BrandID:            brand.ID,
		CustomerName:       in.CustomerName,
		CustomerEmail:      in.CustomerEmail,
		CustomerPhone:      in.CustomerPhone,
		ServiceName:        in.ServiceName,
		ServiceDescription: in.ServiceDescription,
		Amount:             in.Amount,
		Currency:           currency,
		Status:             StatusPending,
	}
	if in.CreatedByID != "" {
		id := in.CreatedByID
		p.CreatedByID = &id
	}
	if err := s.store.Create(ctx, p); err != nil {
		return CreateLinkResult{}, apperr.Wrap(err)
	}
	log := s.logger.With("reference_id", p.ReferenceID, "brand_id", brand.ID)

	// Phase 2: processor call, no lock held
	order, err := s.gateway.CreateOrder(ctx, s.orderRequest(p, brand))
	if err != nil {
		s.rollback(ctx, p, log)
		log.ErrorContext(ctx, "processor order creation failed", "err", err)
		return CreateLinkResult{}, apperr.ProcessorErr("Failed to create payment order.", err)
	}

	// Phase 3: attach order id
	updated, _, err := s.store.UpdateByReference(ctx, p.ReferenceID, SourceCreate, func(cur *Payment) (Mutation, error) {
		return Mutation{OrderID: order.ID, Note: "order created"}, nil
	})
	if err != nil {
		s.rollback(ctx, p, log)
		log.ErrorContext(ctx, "attach processor order failed", "order_id", order.ID, "err", err)
		return CreateLinkResult{}, apperr.Wrap(err)
	}

	log.InfoContext(ctx, "payment link created", "order_id", order.ID, "amount", FormatAmount(p.Amount), "currency", p.Currency)
	updated.Brand = brand
	return CreateLinkResult{
		Payment:     updated,
		PaymentURL:  s.PaymentURL(p.ReferenceID),
		OrderID:     order.ID,
		ApprovalURL: order.ApprovalURL,
		BrandName:   brand.Name,
	}, nil
}

func (s *Service) rollback(ctx context.Context, p *Payment, log *slog.Logger) {
	// detach from the request context so a cancelled client cannot skip compensation
	if err := s.store.Delete(context.WithoutCancel(ctx), p.ID); err != nil {
		log.ErrorContext(ctx, "payment rollback failed", "payment_id", p.ID, "err", err)
		return
	}
	log.WarnContext(ctx, "payment rolled back", "payment_id", p.ID)
}

func (s *Service) PaymentURL(ref string) string {
	return s.opts.FrontendURL + "/pay/" + ref
}

func (s *Service) orderRequest(p *Payment, brand *brands.Brand) OrderRequest {
	return OrderRequest{
		ReferenceID: p.ReferenceID,
		Description: "Payment for " + p.ServiceName,
		BrandName:   brand.Name,
		Amount:      p.Amount,
		Currency:    p.Currency,
		ReturnURL:   s.opts.BaseURL + "/payment/success/" + p.ReferenceID,
		CancelURL:   s.opts.BaseURL + "/payment/cancel/" + p.ReferenceID,
	}
}

type ResumeResult struct {
	ReferenceID string
	OrderID     string
	ApprovalURL string
	Status      Status
}

// InitializeProcessor returns an approval link for the payment, reusing its
// existing order when the processor still accepts it and creating a fresh
// one otherwise. Safe to call repeatedly.
func (s *Service) InitializeProcessor(ctx context.Context, ref string) (ResumeResult, error) {
	p, err := s.readFresh(ctx, ref)
	if err != nil {
		return ResumeResult{}, err
	}
	log := s.logger.With("reference_id", ref)

	switch p.Status {
	case StatusPending, StatusProcessing:
	case StatusCompleted:
		return ResumeResult{}, apperr.ConflictErr("Payment has already been completed.")
	case StatusApproved:
		return ResumeResult{}, apperr.ConflictErr("Payment is already approved and awaiting capture.")
	default:
		return ResumeResult{}, apperr.ConflictErr("Payment is no longer payable.")
	}

	if orderID := p.OrderID(); orderID != "" {
		order, err := s.gateway.FetchOrder(ctx, orderID)
		switch {
		case err != nil:
			log.WarnContext(ctx, "existing order lookup failed, creating new order", "order_id", orderID, "err", err)
		case order.Status == OrderCompleted:
			s.converge(ctx, p, SourceResume, "order already completed at processor", log)
			return ResumeResult{}, apperr.ConflictErr("Payment has already been completed.")
		case order.Approvable():
			return s.markProcessing(ctx, ref, order, log)
		default:
			log.InfoContext(ctx, "existing order not approvable, creating new order", "order_id", orderID, "order_status", order.Status)
		}
	}

	brand := p.Brand
	if brand == nil {
		if brand, err = s.brands.Get(ctx, p.BrandID); err != nil {
			return ResumeResult{}, apperr.Wrap(err)
		}
	}
	order, err := s.gateway.CreateOrder(ctx, s.orderRequest(p, brand))
	if err != nil {
		log.ErrorContext(ctx, "processor order creation failed", "err", err)
		return ResumeResult{}, apperr.ProcessorErr("Failed to initialize payment.", err)
	}
	return s.markProcessing(ctx, ref, order, log)
}

func (s *Service) markProcessing(ctx context.Context, ref string, order Order, log *slog.Logger) (ResumeResult, error) {
	p, _, err := s.store.UpdateByReference(ctx, ref, SourceResume, func(cur *Payment) (Mutation, error) {
		if cur.Status != StatusPending && cur.Status != StatusProcessing {
			return Mutation{}, &TransitionError{From: cur.Status, To: StatusProcessing}
		}
		note := ""
		if cur.OrderID() != order.ID {
			note = "order replaced"
		}
		return Mutation{Status: StatusProcessing, OrderID: order.ID, Note: note}, nil
	})
	var te *TransitionError
	if errors.As(err, &te) {
		return ResumeResult{}, apperr.ConflictErr("Payment is no longer payable.")
	}
	if err != nil {
		return ResumeResult{}, apperr.Wrap(err)
	}
	log.InfoContext(ctx, "payment processing", "order_id", order.ID)
	return ResumeResult{ReferenceID: ref, OrderID: order.ID, ApprovalURL: order.ApprovalURL, Status: p.Status}, nil
}

// FinalizeReturn captures the order after the customer comes back from the
// processor. Capture failures are logged and swallowed; the webhook stream
// may still complete the payment.
func (s *Service) FinalizeReturn(ctx context.Context, ref string) (*Payment, error) {
	p, err := s.store.GetByReference(ctx, ref)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, apperr.NotFoundErr("Payment not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	orderID := p.OrderID()
	if orderID == "" {
		return nil, apperr.NotFoundErr("Payment has no processor order.")
	}
	log := s.logger.With("reference_id", ref, "order_id", orderID)

	switch p.Status {
	case StatusCompleted:
		return p, nil
	case StatusPending, StatusProcessing, StatusApproved:
	default:
		log.InfoContext(ctx, "return ignored for payment in final state", "status", p.Status)
		return p, nil
	}

	capture, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotCapturable) {
			if order, ferr := s.gateway.FetchOrder(ctx, orderID); ferr == nil && order.Status == OrderCompleted {
				return s.converge(ctx, p, SourceReturn, "order already captured", log), nil
			}
		}
		log.ErrorContext(ctx, "capture on return failed", "err", err)
		return p, nil
	}
	if capture.Status != OrderCompleted {
		log.InfoContext(ctx, "capture not yet completed", "capture_id", capture.ID, "capture_status", capture.Status)
		return p, nil
	}

	updated, changed, err := s.store.UpdateByReference(ctx, ref, SourceReturn, advance(StatusCompleted, "captured "+capture.ID))
	if err != nil {
		log.ErrorContext(ctx, "record capture failed", "capture_id", capture.ID, "err", err)
		return p, nil
	}
	log.InfoContext(ctx, "payment captured", "capture_id", capture.ID, "status", updated.Status)
	if changed {
		updated.Brand = p.Brand
		s.completed(ctx, updated)
	}
	return updated, nil
}

// converge marks the payment completed after the processor reported so; errors are logged.
func (s *Service) converge(ctx context.Context, p *Payment, src Source, note string, log *slog.Logger) *Payment {
	updated, changed, err := s.store.UpdateByReference(ctx, p.ReferenceID, src, advance(StatusCompleted, note))
	if err != nil {
		log.WarnContext(ctx, "converge to completed skipped", "err", err)
		return p
	}
	if changed {
		log.InfoContext(ctx, "payment converged to completed", "source", src)
		updated.Brand = p.Brand
		s.completed(ctx, updated)
	}
	return updated
}

// Cancel records that the customer abandoned approval.
func (s *Service) Cancel(ctx context.Context, ref string) (*Payment, error) {
	p, _, err := s.store.UpdateByReference(ctx, ref, SourceCancel, advance(StatusCancelled, "customer cancelled"))
	var te *TransitionError
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		return nil, apperr.NotFoundErr("Payment not found.")
	case errors.As(err, &te):
		s.logger.InfoContext(ctx, "cancel ignored", "reference_id", ref, "status", te.From)
		p, err = s.store.GetByReference(ctx, ref)
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		return p, nil
	case err != nil:
		return nil, apperr.Wrap(err)
	}
	return p, nil
}

// Lookup returns the payment for public display. A pending payment older than
// the expiry window is expired first and reported as an Expired error.
func (s *Service) Lookup(ctx context.Context, ref string) (*Payment, error) {
	p, err := s.readFresh(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p.Brand == nil {
		if p.Brand, err = s.brands.Get(ctx, p.BrandID); err != nil && !errors.Is(err, brands.ErrBrandNotFound) {
			return nil, apperr.Wrap(err)
		}
	}
	return p, nil
}

// readFresh loads a payment and applies lazy expiry.
func (s *Service) readFresh(ctx context.Context, ref string) (*Payment, error) {
	p, err := s.store.GetByReference(ctx, ref)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, apperr.NotFoundErr("Payment not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}

	if p.Status == StatusPending && s.now().Sub(p.CreatedAt) > s.opts.Expiry {
		updated, changed, err := s.store.UpdateByReference(ctx, ref, SourceExpiry, func(cur *Payment) (Mutation, error) {
			if cur.Status != StatusPending {
				return Mutation{}, ErrNoChange
			}
			return Mutation{Status: StatusExpired, Note: "expiry window elapsed"}, nil
		})
		if err != nil {
			return nil, apperr.Wrap(err)
		}
		if changed {
			s.logger.InfoContext(ctx, "payment expired", "reference_id", ref, "created_at", p.CreatedAt)
		}
		updated.Brand = p.Brand
		p = updated
	}

	if p.Status == StatusExpired {
		return nil, apperr.ExpiredErr("Payment link has expired.", map[string]any{
			"status":      StatusExpired,
			"referenceId": ref,
		})
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Payment, int64, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, apperr.InvalidErr("Invalid status filter.", map[string]string{"status": "invalid"})
	}
	items, total, err := s.store.List(ctx, f)
	if err != nil {
		return nil, 0, apperr.Wrap(err)
	}
	return items, total, nil
}

// UpdateStatus is the administrative override. Any status may be set except
// that refunded requires the payment to be completed.
func (s *Service) UpdateStatus(ctx context.Context, ref string, to Status, actorID string) (*Payment, error) {
	if !to.Valid() {
		return nil, apperr.InvalidErr("Invalid status.", map[string]string{"status": "must be one of the payment statuses"})
	}

	p, _, err := s.store.UpdateByReference(ctx, ref, SourceAdmin, func(cur *Payment) (Mutation, error) {
		if cur.Status == to {
			return Mutation{}, ErrNoChange
		}
		if to == StatusRefunded && cur.Status != StatusCompleted {
			return Mutation{}, &TransitionError{From: cur.Status, To: to}
		}
		return Mutation{Status: to, Note: "updated by " + actorID}, nil
	})
	var te *TransitionError
	switch {
	case errors.Is(err, ErrPaymentNotFound):
		return nil, apperr.NotFoundErr("Payment not found.")
	case errors.As(err, &te):
		return nil, apperr.ConflictErr("Only completed payments can be refunded.")
	case err != nil:
		return nil, apperr.Wrap(err)
	}
	s.logger.InfoContext(ctx, "payment status updated by agent", "reference_id", ref, "status", p.Status, "actor_id", actorID)
	return p, nil
}

func (s *Service) Events(ctx context.Context, ref string) ([]PaymentEvent, error) {
	p, err := s.store.GetByReference(ctx, ref)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, apperr.NotFoundErr("Payment not found.")
	}
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	events, err := s.store.Events(ctx, p.ID)
	if err != nil {
		return nil, apperr.Wrap(err)
	}
	return events, nil
}
