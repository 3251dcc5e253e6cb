package invoicing

import (
	"context"

	"github.com/shopspring/decimal"
)

// BusinessMetrics records invoice activity. Implemented by the telemetry
// package; a nil recorder disables metrics.
type BusinessMetrics interface {
	RecordInvoiceCreated(ctx context.Context, total decimal.Decimal, lines int)
	RecordInvoicePaid(ctx context.Context, method string, amount decimal.Decimal)
	RecordPaymentRejected(ctx context.Context, method, reason string)
	RecordInvoiceVoided(ctx context.Context)
	RecordStockConflict(ctx context.Context, operation string)
}

// ReportArchive stores rendered reports and returns where they landed
type ReportArchive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
