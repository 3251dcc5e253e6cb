package invoicing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusPaid   Status = "PAID"
	StatusVoided Status = "VOIDED"
)

var (
	// SeniorDiscountRate is the share of the subtotal discounted for senior customers
	SeniorDiscountRate = decimal.RequireFromString("0.10")
	// PointsPerAmount is the base-currency amount that earns one loyalty point
	PointsPerAmount = decimal.NewFromInt(1000)
)

// CustomerRef is the invoice's copy of the customer attributes it depends on
type CustomerRef struct {
	ID                     int64                `json:"id"`
	Name                   string               `json:"name"`
	Type                   partner.CustomerType `json:"type"`
	SeniorDiscountEligible bool                 `json:"senior_discount_eligible"`
}

// CustomerRefOf captures the current state of a customer
func CustomerRefOf(c *partner.Customer) CustomerRef {
	return CustomerRef{
		ID:                     c.ID,
		Name:                   c.Name,
		Type:                   c.Type(),
		SeniorDiscountEligible: c.SeniorDiscountEligible(),
	}
}

// QualifiesForSeniorDiscount reports whether the discount applies
func (r CustomerRef) QualifiesForSeniorDiscount() bool {
	return r.Type == partner.CustomerTypeOccasional && r.SeniorDiscountEligible
}

// Invoice is the aggregate root of a sale. Its ID is the invoice number.
// Totals are derived from the lines and recomputed after every line change.
type Invoice struct {
	shared.BaseAggregateRoot
	IssuedAt  time.Time
	Customer  CustomerRef
	CreatedBy string

	lines         []LineItem
	nextLine      int
	payment       *payment.Payment
	status        Status
	paidAt        *time.Time
	voidReason    string
	voidedAt      *time.Time
	pointsAwarded int

	subtotal decimal.Decimal
	tax      decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

// NewInvoice opens an empty invoice for the customer
func NewInvoice(number int64, customer CustomerRef, createdBy string) (*Invoice, error) {
	if number <= 0 {
		return nil, shared.NewValidationError("INVALID_NUMBER", "Invoice number must be positive")
	}
	if customer.ID <= 0 {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Invoice requires a customer")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(number),
		Customer:          customer,
		CreatedBy:         createdBy,
		nextLine:          1,
		status:            StatusOpen,
	}
	inv.IssuedAt = inv.CreatedAt
	inv.RecomputeTotals()
	return inv, nil
}

// Number returns the invoice number
func (i *Invoice) Number() int64 { return i.ID }

// Status returns the lifecycle state
func (i *Invoice) Status() Status { return i.status }

// IsOpen reports whether the invoice still accepts changes
func (i *Invoice) IsOpen() bool { return i.status == StatusOpen }

// IsClosed reports whether the invoice has been paid
func (i *Invoice) IsClosed() bool { return i.status == StatusPaid }

// IsVoided reports whether the invoice was voided
func (i *Invoice) IsVoided() bool { return i.status == StatusVoided }

// Lines returns a copy of the line items in order
func (i *Invoice) Lines() []LineItem { return slices.Clone(i.lines) }

// Line returns the line with the given number
func (i *Invoice) Line(lineNumber int) (LineItem, bool) {
	idx := i.lineIndex(lineNumber)
	if idx < 0 {
		return LineItem{}, false
	}
	return i.lines[idx], true
}

// LineForProduct returns the line that holds the product
func (i *Invoice) LineForProduct(productID int64) (LineItem, bool) {
	for _, l := range i.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return LineItem{}, false
}

// Payment returns the registered payment, if any
func (i *Invoice) Payment() *payment.Payment { return i.payment }

// PaidAt returns when the invoice was paid
func (i *Invoice) PaidAt() *time.Time { return i.paidAt }

// VoidReason returns the reason given when voiding
func (i *Invoice) VoidReason() string { return i.voidReason }

// VoidedAt returns when the invoice was voided
func (i *Invoice) VoidedAt() *time.Time { return i.voidedAt }

// PointsAwarded returns the loyalty points granted for this invoice
func (i *Invoice) PointsAwarded() int { return i.pointsAwarded }

// Subtotal returns the sum of line subtotals
func (i *Invoice) Subtotal() decimal.Decimal { return i.subtotal }

// Tax returns the sum of line taxes
func (i *Invoice) Tax() decimal.Decimal { return i.tax }

// Discount returns the senior discount
func (i *Invoice) Discount() decimal.Decimal { return i.discount }

// Total returns subtotal + tax - discount
func (i *Invoice) Total() decimal.Decimal { return i.total }

// AddLine appends a line for a product not yet on the invoice
func (i *Invoice) AddLine(product *catalog.Product, quantity int) (LineItem, error) {
	if err := i.ensureOpen("add lines to"); err != nil {
		return LineItem{}, err
	}
	if product == nil {
		return LineItem{}, shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if quantity <= 0 {
		return LineItem{}, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if _, exists := i.LineForProduct(product.ID); exists {
		return LineItem{}, shared.NewValidationError("DUPLICATE_PRODUCT",
			fmt.Sprintf("Product %d is already on invoice %d", product.ID, i.ID))
	}

	line, err := NewLineItem(i.nextLine, product, quantity)
	if err != nil {
		return LineItem{}, err
	}
	i.lines = append(i.lines, line)
	i.nextLine++
	i.RecomputeTotals()
	i.Touch()
	return line, nil
}

// IncreaseLine adds extra units to the line that already holds the product
func (i *Invoice) IncreaseLine(product *catalog.Product, extra int) (LineItem, error) {
	if err := i.ensureOpen("change lines of"); err != nil {
		return LineItem{}, err
	}
	if product == nil {
		return LineItem{}, shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if extra <= 0 {
		return LineItem{}, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	idx := -1
	for n, l := range i.lines {
		if l.ProductID == product.ID {
			idx = n
			break
		}
	}
	if idx < 0 {
		return LineItem{}, shared.NewNotFoundError("LINE_NOT_FOUND",
			fmt.Sprintf("Product %d is not on invoice %d", product.ID, i.ID))
	}

	line := i.lines[idx]
	if err := line.ChangeQuantity(product, line.Quantity+extra); err != nil {
		return LineItem{}, err
	}
	i.lines[idx] = line
	i.RecomputeTotals()
	i.Touch()
	return line, nil
}

// RemoveLine drops a line. Stock is not touched here.
func (i *Invoice) RemoveLine(lineNumber int) (LineItem, error) {
	if err := i.ensureOpen("remove lines from"); err != nil {
		return LineItem{}, err
	}
	idx := i.lineIndex(lineNumber)
	if idx < 0 {
		return LineItem{}, shared.NewNotFoundError("LINE_NOT_FOUND",
			fmt.Sprintf("Line %d does not exist on invoice %d", lineNumber, i.ID))
	}

	removed := i.lines[idx]
	i.lines = slices.Delete(i.lines, idx, idx+1)
	i.RecomputeTotals()
	i.Touch()
	return removed, nil
}

// RecomputeTotals derives subtotal, tax, discount and total from the lines
// and the customer reference. It has no other inputs.
func (i *Invoice) RecomputeTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, l := range i.lines {
		subtotal = subtotal.Add(l.Subtotal())
		tax = tax.Add(l.Tax())
	}

	discount := decimal.Zero
	if i.Customer.QualifiesForSeniorDiscount() {
		discount = subtotal.Mul(SeniorDiscountRate)
	}

	i.subtotal = subtotal
	i.tax = tax
	i.discount = discount
	i.total = subtotal.Add(tax).Sub(discount)
}

// LoyaltyPointsEarned returns one point per full PointsPerAmount of the total
func (i *Invoice) LoyaltyPointsEarned() int {
	if !i.total.IsPositive() {
		return 0
	}
	return int(i.total.Div(PointsPerAmount).Floor().IntPart())
}

// PointsDue returns what the customer should hold for this invoice: the
// earned points for a qualifying customer, zero for anyone else.
func (i *Invoice) PointsDue() int {
	if !i.Customer.QualifiesForSeniorDiscount() {
		return 0
	}
	return i.LoyaltyPointsEarned()
}

// RefreshCustomer replaces the customer copy with the customer's current
// state and recomputes the totals. Only open invoices follow their customer.
func (i *Invoice) RefreshCustomer(ref CustomerRef) error {
	if err := i.ensureOpen("update the customer of"); err != nil {
		return err
	}
	if ref.ID != i.Customer.ID {
		return shared.NewValidationError("CUSTOMER_MISMATCH",
			fmt.Sprintf("Invoice %d belongs to customer %d, not %d", i.ID, i.Customer.ID, ref.ID))
	}
	if ref == i.Customer {
		return nil
	}
	i.Customer = ref
	i.RecomputeTotals()
	i.Touch()
	return nil
}

// RecordPointsAwarded stores how many points the customer received
func (i *Invoice) RecordPointsAwarded(points int) {
	i.pointsAwarded = points
}

// RecordCreation raises the creation event once the initial lines are in
func (i *Invoice) RecordCreation() {
	i.AddDomainEvent(NewInvoiceCreatedEvent(i))
}

// RegisterPayment settles the invoice. The payment's base amount must cover
// the total.
func (i *Invoice) RegisterPayment(p *payment.Payment) error {
	if err := i.ensureOpen("pay"); err != nil {
		return err
	}
	if p == nil {
		return shared.NewValidationError("INVALID_PAYMENT", "Payment is required")
	}
	if p.BaseAmount.LessThan(i.total) {
		return shared.NewInsufficientError("INSUFFICIENT_PAYMENT",
			fmt.Sprintf("Payment of %s does not cover the invoice total of %s",
				p.BaseAmount.StringFixed(2), i.total.StringFixed(2)))
	}

	now := time.Now()
	i.payment = p
	i.status = StatusPaid
	i.paidAt = &now
	i.Touch()

	i.AddDomainEvent(NewInvoicePaidEvent(i))
	return nil
}

// Change returns the cash to hand back. Card payments and unpaid invoices
// have no change.
func (i *Invoice) Change() decimal.Decimal {
	if i.payment == nil || !i.payment.IsCash() {
		return decimal.Zero
	}
	return i.payment.BaseAmount.Sub(i.total)
}

// Void cancels an open invoice. It returns false without error when the
// invoice was already voided; paid invoices cannot be voided.
func (i *Invoice) Void(reason string) (bool, error) {
	if i.status == StatusVoided {
		return false, nil
	}
	if i.status == StatusPaid {
		return false, shared.NewStateError("INVALID_STATE",
			fmt.Sprintf("Invoice %d is paid and cannot be voided", i.ID))
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return false, shared.NewValidationError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	i.status = StatusVoided
	i.voidReason = reason
	i.voidedAt = &now
	i.Touch()

	i.AddDomainEvent(NewInvoiceVoidedEvent(i))
	return true, nil
}

func (i *Invoice) ensureOpen(action string) error {
	switch i.status {
	case StatusPaid:
		return shared.NewStateError("INVALID_STATE", fmt.Sprintf("Cannot %s invoice %d: it is already paid", action, i.ID))
	case StatusVoided:
		return shared.NewStateError("INVALID_STATE", fmt.Sprintf("Cannot %s invoice %d: it was voided", action, i.ID))
	}
	return nil
}

func (i *Invoice) lineIndex(lineNumber int) int {
	return slices.IndexFunc(i.lines, func(l LineItem) bool { return l.LineNumber == lineNumber })
}

// InvoiceSnapshot is the stored state of an invoice
type InvoiceSnapshot struct {
	Number         int64
	IssuedAt       time.Time
	Customer       CustomerRef
	CreatedBy      string
	Lines          []LineItem
	NextLineNumber int
	Payment        *payment.Payment
	Status         Status
	PaidAt         *time.Time
	VoidReason     string
	VoidedAt       *time.Time
	PointsAwarded  int
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RestoreInvoice rebuilds an invoice from storage and recomputes its totals
func RestoreInvoice(s InvoiceSnapshot) *Invoice {
	inv := &Invoice{
		IssuedAt:      s.IssuedAt,
		Customer:      s.Customer,
		CreatedBy:     s.CreatedBy,
		lines:         slices.Clone(s.Lines),
		nextLine:      s.NextLineNumber,
		payment:       s.Payment,
		status:        s.Status,
		paidAt:        s.PaidAt,
		voidReason:    s.VoidReason,
		voidedAt:      s.VoidedAt,
		pointsAwarded: s.PointsAwarded,
	}
	inv.ID = s.Number
	inv.Version = s.Version
	inv.CreatedAt = s.CreatedAt
	inv.UpdatedAt = s.UpdatedAt

	slices.SortFunc(inv.lines, func(a, b LineItem) int { return a.LineNumber - b.LineNumber })
	for _, l := range inv.lines {
		if l.LineNumber >= inv.nextLine {
			inv.nextLine = l.LineNumber + 1
		}
	}
	if inv.nextLine < 1 {
		inv.nextLine = 1
	}
	inv.RecomputeTotals()
	return inv
}

// Snapshot returns the storable state of the invoice
func (i *Invoice) Snapshot() InvoiceSnapshot {
	return InvoiceSnapshot{
		Number:         i.ID,
		IssuedAt:       i.IssuedAt,
		Customer:       i.Customer,
		CreatedBy:      i.CreatedBy,
		Lines:          slices.Clone(i.lines),
		NextLineNumber: i.nextLine,
		Payment:        i.payment,
		Status:         i.status,
		PaidAt:         i.paidAt,
		VoidReason:     i.voidReason,
		VoidedAt:       i.voidedAt,
		PointsAwarded:  i.pointsAwarded,
		Version:        i.Version,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
