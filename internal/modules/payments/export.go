package payments

import (
	"context"
	"io"

	"github.com/tealeg/xlsx"

	"paylink.dev/app/internal/shared/apperr"
)

var exportHeaders = []string{
	"Reference", "Brand", "Customer", "Email", "Service", "Amount", "Currency", "Status", "Processor Order", "Created",
}

// ExportSummary reports how many of the matching payments were written.
type ExportSummary struct {
	Rows  int
	Total int64
}

func (e ExportSummary) Truncated() bool { return int64(e.Rows) < e.Total }

// Export writes the filtered listing (ignoring paging) as an xlsx workbook,
// capped at Options.MaxExportRows rows.
func (s *Service) Export(ctx context.Context, f ListFilter, w io.Writer) (ExportSummary, error) {
	var sum ExportSummary
	if f.Status != "" && !f.Status.Valid() {
		return sum, apperr.InvalidErr("Invalid status filter.", map[string]string{"status": "invalid"})
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payments")
	if err != nil {
		return sum, apperr.Wrap(err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		cell := header.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	limit := s.opts.MaxExportRows
	f.Limit = 100
	for f.Page = 1; sum.Rows < limit; f.Page++ {
		items, total, err := s.store.List(ctx, f)
		if err != nil {
			return sum, apperr.Wrap(err)
		}
		sum.Total = total
		for _, p := range items {
			if sum.Rows == limit {
				break
			}
			row := sheet.AddRow()
			brandName := ""
			if p.Brand != nil {
				brandName = p.Brand.Name
			}
			amount, _ := p.Amount.Float64()
			row.AddCell().SetString(p.ReferenceID)
			row.AddCell().SetString(brandName)
			row.AddCell().SetString(p.CustomerName)
			row.AddCell().SetString(p.CustomerEmail)
			row.AddCell().SetString(p.ServiceName)
			row.AddCell().SetFloat(amount)
			row.AddCell().SetString(p.Currency)
			row.AddCell().SetString(string(p.Status))
			row.AddCell().SetString(p.OrderID())
			row.AddCell().SetString(p.CreatedAt.UTC().Format("2006-01-02 15:04"))
			sum.Rows++
		}
		if len(items) < f.Limit {
			break
		}
	}
	if sum.Truncated() {
		s.logger.WarnContext(ctx, "payment export truncated", "rows", sum.Rows, "total", sum.Total)
	}

	if err := file.Write(w); err != nil {
		return sum, apperr.Wrap(err)
	}
	return sum, nil
}
