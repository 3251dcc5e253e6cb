package invoicing

import (
	"time"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	CustomerID int64              `json:"customer_id" binding:"required,gt=0"`
	Lines      []InvoiceLineInput `json:"lines" binding:"required,min=1,dive"`
	CreatedBy  string             `json:"-"`
}

// InvoiceLineInput is one requested product/quantity pair
type InvoiceLineInput struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// AddInvoiceLineRequest adds units of a product to an open invoice
type AddInvoiceLineRequest struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// ProcessPaymentRequest represents a payment tendered for an invoice
type ProcessPaymentRequest struct {
	Method       string           `json:"method" binding:"required,oneof=CASH CARD cash card"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     string           `json:"currency" binding:"omitempty,currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate"`
	Card         *CardInput       `json:"card"`

	// IdempotencyKey makes a replayed request return the stored outcome
	IdempotencyKey string `json:"-"`
}

// CardInput carries raw card data. It is validated and discarded.
type CardInput struct {
	Number string `json:"number" binding:"required"`
	Holder string `json:"holder" binding:"required"`
	Expiry string `json:"expiry" binding:"required"`
	CVV    string `json:"cvv" binding:"required"`
}

// VoidInvoiceRequest represents a request to void an open invoice
type VoidInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// InvoiceLineResponse represents a line item in API responses
type InvoiceLineResponse struct {
	LineNumber  int             `json:"line_number"`
	ProductID   int64           `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxCategory string          `json:"tax_category"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
}

// PaymentResponse represents a registered payment in API responses
type PaymentResponse struct {
	ID           int64                `json:"id"`
	Method       string               `json:"method"`
	Amount       decimal.Decimal      `json:"amount"`
	Currency     string               `json:"currency"`
	ExchangeRate decimal.Decimal      `json:"exchange_rate"`
	BaseAmount   decimal.Decimal      `json:"base_amount"`
	ReceivedAt   time.Time            `json:"received_at"`
	Card         *payment.CardDetails `json:"card,omitempty"`
}

// InvoiceResponse represents an invoice in API responses.
// Amounts are rounded to the reporting precision.
type InvoiceResponse struct {
	Number        int64                 `json:"number"`
	IssuedAt      time.Time             `json:"issued_at"`
	CustomerID    int64                 `json:"customer_id"`
	CustomerName  string                `json:"customer_name"`
	CustomerType  string                `json:"customer_type"`
	Status        string                `json:"status"`
	Lines         []InvoiceLineResponse `json:"lines"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Tax           decimal.Decimal       `json:"tax"`
	Discount      decimal.Decimal       `json:"discount"`
	Total         decimal.Decimal       `json:"total"`
	Payment       *PaymentResponse      `json:"payment,omitempty"`
	Change        decimal.Decimal       `json:"change"`
	PaidAt        *time.Time            `json:"paid_at,omitempty"`
	VoidReason    string                `json:"void_reason,omitempty"`
	VoidedAt      *time.Time            `json:"voided_at,omitempty"`
	PointsAwarded int                   `json:"points_awarded"`
	CreatedBy     string                `json:"created_by,omitempty"`
	Version       int                   `json:"version"`
}

// PaymentResult is the outcome of a payment
type PaymentResult struct {
	Invoice  *InvoiceResponse `json:"invoice"`
	Change   decimal.Decimal  `json:"change"`
	Replayed bool             `json:"replayed"`
}

// VoidResult is the outcome of a void request
type VoidResult struct {
	Invoice *InvoiceResponse `json:"invoice"`
	Voided  bool             `json:"voided"`
}

// SalesSummary aggregates non-voided invoices in a date range
type SalesSummary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	InvoiceCount  int             `json:"invoice_count"`
	VoidedCount   int             `json:"voided_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
}

// ArchivedReport describes a stored sales report
type ArchivedReport struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Size     int    `json:"size"`
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(valueobject.ReportingPlaces)
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines()))
	for _, l := range inv.Lines() {
		lines = append(lines, InvoiceLineResponse{
			LineNumber:  l.LineNumber,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			TaxCategory: string(l.TaxCategory),
			Quantity:    l.Quantity,
			Subtotal:    round(l.Subtotal()),
			Tax:         round(l.Tax()),
		})
	}

	resp := InvoiceResponse{
		Number:        inv.Number(),
		IssuedAt:      inv.IssuedAt,
		CustomerID:    inv.Customer.ID,
		CustomerName:  inv.Customer.Name,
		CustomerType:  string(inv.Customer.Type),
		Status:        string(inv.Status()),
		Lines:         lines,
		Subtotal:      round(inv.Subtotal()),
		Tax:           round(inv.Tax()),
		Discount:      round(inv.Discount()),
		Total:         round(inv.Total()),
		Change:        round(inv.Change()),
		PaidAt:        inv.PaidAt(),
		VoidReason:    inv.VoidReason(),
		VoidedAt:      inv.VoidedAt(),
		PointsAwarded: inv.PointsAwarded(),
		CreatedBy:     inv.CreatedBy,
		Version:       inv.GetVersion(),
	}
	if p := inv.Payment(); p != nil {
		resp.Payment = &PaymentResponse{
			ID:           p.ID,
			Method:       string(p.Method),
			Amount:       p.Amount.Amount(),
			Currency:     string(p.Currency()),
			ExchangeRate: p.ExchangeRate,
			BaseAmount:   round(p.BaseAmount),
			ReceivedAt:   p.ReceivedAt,
			Card:         p.Card,
		}
	}
	return resp
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}
