package invoicing

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

const salesReportTemplate = `SALES REPORT
============

Period: {{ date .Summary.From }} to {{ date .Summary.To }}

SUMMARY
-------
Invoices: {{ .Summary.InvoiceCount }}
Voided invoices: {{ .Summary.VoidedCount }}
Total sales: {{ money .Summary.TotalSales }}
Total tax: {{ money .Summary.TotalTax }}
Total discounts: {{ money .Summary.TotalDiscount }}

INVOICE DETAIL
--------------
{{ range .Invoices -}}
Invoice #{{ .Number }} - {{ date .IssuedAt }} - {{ .Customer.Name }} - {{ .Status }} - {{ money .Total }}
{{ else -}}
No invoices in this period.
{{ end -}}
`

const receiptTemplate = `========================================
INVOICE #{{ printf "%06d" .Number }}
Date: {{ datetime .IssuedAt }}
Customer: {{ .Customer.Name }} ({{ .Customer.Type }})
----------------------------------------
{{ printf "%-3s %-18s %4s %12s" "#" "Product" "Qty" "Amount" }}
{{ range .Lines -}}
{{ printf "%-3d %-18s %4d %12s" .LineNumber (truncate .ProductName 18) .Quantity (money .Subtotal) }}
{{ end -}}
----------------------------------------
{{ row "SUBTOTAL" (money .Subtotal) }}
{{ row "TAX" (money .Tax) }}
{{ if .Discount.IsPositive }}{{ row "SENIOR DISCOUNT" (printf "-%s" (money .Discount)) }}
{{ end -}}
----------------------------------------
{{ row "TOTAL" (money .Total) }}
----------------------------------------
{{ if .IsVoided -}}
STATUS: VOIDED
Reason: {{ .VoidReason }}
{{ else if .IsClosed -}}
STATUS: PAID
METHOD: {{ .Payment.Method }}{{ with .Payment.Card }} {{ .Brand }} {{ .Masked }}{{ end }}
{{ row (printf "TENDERED (%s)" .Payment.Currency) (money .Payment.Amount.Amount) }}
{{ if .Payment.IsForeign }}{{ row "RATE" .Payment.ExchangeRate.String }}
{{ end -}}
{{ if .Payment.IsCash }}{{ row "CHANGE" (money .Change) }}
{{ end -}}
{{ else -}}
STATUS: OPEN
{{ end -}}
{{ if .PointsAwarded }}Loyalty points earned: {{ .PointsAwarded }}
{{ end -}}
========================================
`

var (
	moneyPrinter = message.NewPrinter(language.English)

	reportFuncs = template.FuncMap{
		"money":    formatMoney,
		"date":     func(t time.Time) string { return t.Format(dateLayout) },
		"datetime": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
		"truncate": truncate,
		"row":      func(label, value string) string { return fmt.Sprintf("%-24s %15s", label+":", value) },
	}

	salesReport = template.Must(template.New("sales_report").Funcs(reportFuncs).Parse(salesReportTemplate))
	receipt     = template.Must(template.New("receipt").Funcs(reportFuncs).Parse(receiptTemplate))
)

// formatMoney renders an amount rounded to the reporting precision with
// thousands separators, e.g. 4017 -> "4,017.00".
func formatMoney(d decimal.Decimal) string {
	rounded := round(d)
	return moneyPrinter.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(int(valueobject.ReportingPlaces))))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}

// GenerateSalesReport renders the plain-text sales report of a date range:
// a summary that excludes voided invoices, then one line per invoice.
func (s *InvoiceService) GenerateSalesReport(ctx context.Context, from, to time.Time) (string, error) {
	invoices, r, err := s.invoicesInRange(ctx, from, to)
	if err != nil {
		return "", err
	}
	data := struct {
		Summary  SalesSummary
		Invoices []*invoicing.Invoice
	}{Summary: summarize(invoices, r)}
	for i := range invoices {
		data.Invoices = append(data.Invoices, &invoices[i])
	}

	var buf bytes.Buffer
	if err := salesReport.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render sales report: %w", err)
	}
	return buf.String(), nil
}

// RenderReceipt renders the printable receipt of an invoice
func (s *InvoiceService) RenderReceipt(ctx context.Context, invoiceNumber int64) (string, error) {
	var inv *invoicing.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		inv, err = findInvoice(ctx, repos.Invoices(), invoiceNumber)
		return err
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := receipt.Execute(&buf, inv); err != nil {
		return "", fmt.Errorf("render receipt %d: %w", invoiceNumber, err)
	}
	return buf.String(), nil
}

// ArchiveSalesReport renders the sales report of a range and stores it in
// the report archive under reports/sales/<from>_<to>.txt.
func (s *InvoiceService) ArchiveSalesReport(ctx context.Context, from, to time.Time) (*ArchivedReport, error) {
	if s.archive == nil {
		return nil, shared.NewStateError("ARCHIVE_DISABLED", "No report archive is configured")
	}
	report, err := s.GenerateSalesReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	key := strings.Join([]string{"reports", "sales", from.Format(dateLayout) + "_" + to.Format(dateLayout) + ".txt"}, "/")
	location, err := s.archive.Put(ctx, key, []byte(report), "text/plain; charset=utf-8")
	if err != nil {
		return nil, fmt.Errorf("archive sales report %s: %w", key, err)
	}
	s.logger.Info("sales report archived", zap.String("key", key), zap.String("location", location))
	return &ArchivedReport{Key: key, Location: location, Size: len(report)}, nil
}
