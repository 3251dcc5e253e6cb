package invoicing

import (
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypeInvoicePaid    = "InvoicePaid"
	EventTypeInvoiceVoided  = "InvoiceVoided"
)

// InvoiceCreatedEvent is published when an invoice is issued with its lines
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	Number        int64           `json:"number"`
	CustomerID    int64           `json:"customer_id"`
	LineCount     int             `json:"line_count"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PointsAwarded int             `json:"points_awarded"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		Number:          inv.ID,
		CustomerID:      inv.Customer.ID,
		LineCount:       len(inv.lines),
		Subtotal:        inv.subtotal,
		Tax:             inv.tax,
		Discount:        inv.discount,
		Total:           inv.total,
		PointsAwarded:   inv.pointsAwarded,
	}
}

// InvoicePaidEvent is published when a payment settles an invoice
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	Number     int64           `json:"number"`
	CustomerID int64           `json:"customer_id"`
	PaymentID  int64           `json:"payment_id"`
	Method     payment.Method  `json:"method"`
	Total      decimal.Decimal `json:"total"`
	BaseAmount decimal.Decimal `json:"base_amount"`
	Change     decimal.Decimal `json:"change"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, inv.ID),
		Number:          inv.ID,
		CustomerID:      inv.Customer.ID,
		PaymentID:       inv.payment.ID,
		Method:          inv.payment.Method,
		Total:           inv.total,
		BaseAmount:      inv.payment.BaseAmount,
		Change:          inv.Change(),
	}
}

// InvoiceVoidedEvent is published when an open invoice is voided
type InvoiceVoidedEvent struct {
	shared.BaseDomainEvent
	Number     int64  `json:"number"`
	CustomerID int64  `json:"customer_id"`
	Reason     string `json:"reason"`
}

// NewInvoiceVoidedEvent creates a new InvoiceVoidedEvent
func NewInvoiceVoidedEvent(inv *Invoice) *InvoiceVoidedEvent {
	return &InvoiceVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceVoided, AggregateTypeInvoice, inv.ID),
		Number:          inv.ID,
		CustomerID:      inv.Customer.ID,
		Reason:          inv.voidReason,
	}
}
