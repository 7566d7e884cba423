// Package email sends the transactional messages customers receive.
package email

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"paylink.dev/app/internal/mailer"
	"paylink.dev/app/internal/modules/brands"
	"paylink.dev/app/internal/modules/payments"
	"paylink.dev/app/templates/shared"
)

type BrandLookup interface {
	Get(ctx context.Context, id string) (*brands.Brand, error)
}

// Receipts emails the customer once a payment is completed. Send failures are
// logged; they never affect the payment.
type Receipts struct {
	mail   mailer.Service
	brands BrandLookup
	from   string
	logger *slog.Logger
}

func NewReceipts(mail mailer.Service, brands BrandLookup, from string) *Receipts {
	return &Receipts{mail: mail, brands: brands, from: from, logger: slog.Default()}
}

func (r *Receipts) SetLogger(logger *slog.Logger) { r.logger = logger }

// PaymentCompleted implements payments.Notifier.
func (r *Receipts) PaymentCompleted(ctx context.Context, p *payments.Payment) {
	log := r.logger.With("reference_id", p.ReferenceID)

	brand := p.Brand
	if brand == nil && r.brands != nil {
		b, err := r.brands.Get(ctx, p.BrandID)
		if err != nil {
			log.WarnContext(ctx, "receipt brand lookup failed", "err", err)
		}
		brand = b
	}
	brandName := "Payment"
	replyTo := ""
	if brand != nil {
		brandName = brand.Name
		replyTo = brand.Email
	}

	msg, err := receiptMessage(brandName, p)
	if err != nil {
		log.ErrorContext(ctx, "render receipt failed", "err", err)
		return
	}
	msg.From = r.from
	msg.FromName = brandName
	msg.ReplyTo = replyTo

	if err := r.mail.Send(ctx, msg); err != nil {
		log.ErrorContext(ctx, "receipt email failed", "recipient", p.CustomerEmail, "err", err)
		return
	}
	log.InfoContext(ctx, "receipt email sent", "recipient", p.CustomerEmail)
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(shared.FuncMap()).Parse(`<html>
  <body style="font-family: sans-serif;">
    <h2>Payment received</h2>
    <p>Hello {{.P.CustomerName}},</p>
    <p>Thank you for your payment to {{.Brand}}.</p>
    <p><strong>Reference:</strong> {{.P.ReferenceID}}</p>
    <p><strong>Service:</strong> {{.P.ServiceName}}</p>
    <p><strong>Amount:</strong> {{money .P.Currency .P.Amount}}</p>
    <p>{{.Brand}}</p>
  </body>
</html>
`))

func receiptMessage(brandName string, p *payments.Payment) (mailer.Email, error) {
	var html strings.Builder
	if err := receiptTmpl.Execute(&html, struct {
		Brand string
		P     *payments.Payment
	}{brandName, p}); err != nil {
		return mailer.Email{}, err
	}

	text := fmt.Sprintf("Hello %s,\n\nThank you for your payment to %s.\nReference: %s\nService: %s\nAmount: %s\n",
		p.CustomerName, brandName, p.ReferenceID, p.ServiceName, shared.FormatMoney(p.Currency, p.Amount))

	return mailer.Email{
		To:       []string{p.CustomerEmail},
		Subject:  fmt.Sprintf("Payment receipt - %s", brandName),
		TextBody: text,
		HTMLBody: html.String(),
	}, nil
}
