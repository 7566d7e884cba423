package payments

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"paylink.dev/app/internal/shared/apperr"
)

// Invoice renders a PDF receipt for a completed payment.
func (s *Service) Invoice(ctx context.Context, ref string) ([]byte, *Payment, error) {
	p, err := s.store.GetByReference(ctx, ref)
	if errors.Is(err, ErrPaymentNotFound) {
		return nil, nil, apperr.NotFoundErr("Payment not found.")
	}
	if err != nil {
		return nil, nil, apperr.Wrap(err)
	}
	if p.Status != StatusCompleted {
		return nil, nil, apperr.ConflictErr("Invoices are only available for completed payments.")
	}

	b, err := renderInvoice(p)
	if err != nil {
		return nil, nil, apperr.Wrap(err)
	}
	return b, p, nil
}

func renderInvoice(p *Payment) ([]byte, error) {
	pdf := invoiceDoc(p)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

// invoiceDoc lays out the invoice. Core fonts are cp1252, so every
// caller-supplied string goes through the unicode translator.
func invoiceDoc(p *Payment) *gofpdf.Fpdf {
	brandName := "PayLink"
	if p.Brand != nil {
		brandName = p.Brand.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 12, tr(brandName))
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Invoice "+p.ReferenceID)
	pdf.Ln(6)
	pdf.Cell(0, 8, "Date: "+p.UpdatedAt.Format("2006-01-02"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Billed to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, tr(p.CustomerName))
	pdf.Ln(6)
	pdf.Cell(0, 7, tr(p.CustomerEmail))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(220, 230, 250)
	pdf.CellFormat(130, 9, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(50, 9, "Amount", "1", 0, "R", true, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(130, 9, tr(p.ServiceName), "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, fmt.Sprintf("%s %s", FormatAmount(p.Amount), p.Currency), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	if p.ServiceDescription != "" {
		pdf.Ln(4)
		pdf.MultiCell(180, 6, tr(p.ServiceDescription), "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Status: PAID")
	return pdf
}
