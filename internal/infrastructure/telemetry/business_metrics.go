package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of invoicing metrics
const MeterName = "pos-invoicing"

// BusinessMetrics records invoice and payment activity. It satisfies the
// invoicing application's BusinessMetrics port.
type BusinessMetrics struct {
	invoicesCreated  *Counter
	invoicesPaid     *Counter
	invoicesVoided   *Counter
	paymentsRejected *Counter
	stockConflicts   *Counter
	invoiceTotal     *Histogram
	invoiceLines     *Histogram
	paymentAmount    *Histogram
}

// NewBusinessMetrics creates the invoicing instruments on meter.
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.invoicesCreated, "pos_invoice_created_total", "Invoices created", "{invoices}"},
		{&bm.invoicesPaid, "pos_invoice_paid_total", "Invoices closed by a payment", "{invoices}"},
		{&bm.invoicesVoided, "pos_invoice_voided_total", "Invoices voided", "{invoices}"},
		{&bm.paymentsRejected, "pos_payment_rejected_total", "Payments rejected before closing an invoice", "{payments}"},
		{&bm.stockConflicts, "pos_stock_conflict_total", "Optimistic lock conflicts on product stock", "{conflicts}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	if bm.invoiceTotal, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_invoice_total_amount",
		Description: "Invoice total at creation in base currency",
		Unit:        "{currency}",
		Boundaries:  InvoiceAmountBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.invoiceLines, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_invoice_lines",
		Description: "Lines per invoice at creation",
		Unit:        "{lines}",
		Boundaries:  InvoiceLineBuckets,
	}); err != nil {
		return nil, err
	}
	if bm.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_payment_amount",
		Description: "Accepted payment amount in base currency",
		Unit:        "{currency}",
		Boundaries:  InvoiceAmountBuckets,
	}); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordInvoiceCreated counts a new invoice and its size.
func (bm *BusinessMetrics) RecordInvoiceCreated(ctx context.Context, total decimal.Decimal, lines int) {
	bm.invoicesCreated.Inc(ctx)
	bm.invoiceTotal.Record(ctx, total.InexactFloat64())
	bm.invoiceLines.Record(ctx, float64(lines))
}

// RecordInvoicePaid counts an accepted payment.
func (bm *BusinessMetrics) RecordInvoicePaid(ctx context.Context, method string, amount decimal.Decimal) {
	bm.invoicesPaid.Inc(ctx, AttrPaymentMethod.String(method))
	bm.paymentAmount.Record(ctx, amount.InexactFloat64(), AttrPaymentMethod.String(method))
}

// RecordPaymentRejected counts a payment refused for reason.
func (bm *BusinessMetrics) RecordPaymentRejected(ctx context.Context, method, reason string) {
	bm.paymentsRejected.Inc(ctx, AttrPaymentMethod.String(method), AttrRejectReason.String(reason))
}

// RecordInvoiceVoided counts a voided invoice.
func (bm *BusinessMetrics) RecordInvoiceVoided(ctx context.Context) {
	bm.invoicesVoided.Inc(ctx)
}

// RecordStockConflict counts a version conflict hit while adjusting stock.
func (bm *BusinessMetrics) RecordStockConflict(ctx context.Context, operation string) {
	bm.stockConflicts.Inc(ctx, AttrOperation.String(operation))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
