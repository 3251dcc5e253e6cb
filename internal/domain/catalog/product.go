package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductKind tags the product variant
type ProductKind string

const (
	ProductKindPerishable    ProductKind = "PERISHABLE"
	ProductKindNonPerishable ProductKind = "NON_PERISHABLE"
)

// IsValid reports whether k is a known variant
func (k ProductKind) IsValid() bool {
	return k == ProductKindPerishable || k == ProductKindNonPerishable
}

// Product represents a sellable item in the catalog.
// It is the aggregate root for product-related operations. The on-hand
// quantity is only reachable through AdjustInventory.
type Product struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	TaxCategory valueobject.TaxCategory
	Kind        ProductKind

	onHand    int
	expiresOn *time.Time
}

// ProductDetails carries the editable attributes shared by both variants
type ProductDetails struct {
	Code        string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	TaxCategory valueobject.TaxCategory
}

// NewNonPerishableProduct creates a product without an expiration date
func NewNonPerishableProduct(id int64, details ProductDetails, initialQuantity int) (*Product, error) {
	return newProduct(id, details, initialQuantity, ProductKindNonPerishable, nil)
}

// NewPerishableProduct creates a product that expires on the given date.
// An expiration date before today is rejected.
func NewPerishableProduct(id int64, details ProductDetails, initialQuantity int, expiresOn time.Time) (*Product, error) {
	if err := validateExpiration(expiresOn); err != nil {
		return nil, err
	}
	d := dateOnly(expiresOn)
	return newProduct(id, details, initialQuantity, ProductKindPerishable, &d)
}

func newProduct(id int64, details ProductDetails, qty int, kind ProductKind, expiresOn *time.Time) (*Product, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("INVALID_ID", "Product id must be positive")
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}
	if qty < 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}

	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(id),
		Code:              strings.ToUpper(strings.TrimSpace(details.Code)),
		Name:              strings.TrimSpace(details.Name),
		Description:       details.Description,
		UnitPrice:         details.UnitPrice,
		TaxCategory:       details.TaxCategory,
		Kind:              kind,
		onHand:            qty,
		expiresOn:         expiresOn,
	}
	p.AddDomainEvent(NewProductCreatedEvent(p))
	return p, nil
}

// ProductSnapshot is the stored state of a product, used to rehydrate it
type ProductSnapshot struct {
	ID          int64
	Code        string
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	TaxCategory valueobject.TaxCategory
	Kind        ProductKind
	OnHand      int
	ExpiresOn   *time.Time
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RestoreProduct rebuilds a product from storage without validation or events
func RestoreProduct(s ProductSnapshot) *Product {
	p := &Product{
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		UnitPrice:   s.UnitPrice,
		TaxCategory: s.TaxCategory,
		Kind:        s.Kind,
		onHand:      s.OnHand,
	}
	p.ID = s.ID
	p.Version = s.Version
	p.CreatedAt = s.CreatedAt
	p.UpdatedAt = s.UpdatedAt
	if s.ExpiresOn != nil {
		d := dateOnly(*s.ExpiresOn)
		p.expiresOn = &d
	}
	return p
}

// Snapshot returns the storable state of the product
func (p *Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		TaxCategory: p.TaxCategory,
		Kind:        p.Kind,
		OnHand:      p.onHand,
		ExpiresOn:   p.expiresOn,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// OnHand returns the current inventory count
func (p *Product) OnHand() int {
	return p.onHand
}

// ExpiresOn returns the expiration date of a perishable product
func (p *Product) ExpiresOn() (time.Time, bool) {
	if p.expiresOn == nil {
		return time.Time{}, false
	}
	return *p.expiresOn, true
}

// IsPerishable reports whether the product carries an expiration date
func (p *Product) IsPerishable() bool {
	return p.Kind == ProductKindPerishable
}

// IsExpired reports whether today is past the expiration date.
// Non-perishable products never expire.
func (p *Product) IsExpired() bool {
	if !p.IsPerishable() || p.expiresOn == nil {
		return false
	}
	return dateOnly(time.Now()).After(*p.expiresOn)
}

// Update replaces the editable attributes of the product
func (p *Product) Update(details ProductDetails) error {
	if err := validateDetails(details); err != nil {
		return err
	}

	p.Code = strings.ToUpper(strings.TrimSpace(details.Code))
	p.Name = strings.TrimSpace(details.Name)
	p.Description = details.Description
	p.UnitPrice = details.UnitPrice
	p.TaxCategory = details.TaxCategory
	p.Touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// SetExpiration changes the expiration date of a perishable product
func (p *Product) SetExpiration(expiresOn time.Time) error {
	if !p.IsPerishable() {
		return shared.NewStateError("NOT_PERISHABLE", "Only perishable products have an expiration date")
	}
	if err := validateExpiration(expiresOn); err != nil {
		return err
	}
	d := dateOnly(expiresOn)
	p.expiresOn = &d
	p.Touch()

	p.AddDomainEvent(NewProductUpdatedEvent(p))
	return nil
}

// AdjustInventory applies delta to the on-hand quantity. A delta that would
// leave the quantity negative fails and leaves the product untouched.
func (p *Product) AdjustInventory(delta int) error {
	if delta == 0 {
		return nil
	}
	if p.onHand+delta < 0 {
		return shared.NewInsufficientError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s (%d): requested %d, on hand %d", p.Name, p.ID, -delta, p.onHand))
	}

	p.onHand += delta
	p.Touch()

	p.AddDomainEvent(NewInventoryAdjustedEvent(p, delta))
	return nil
}

// HasStock reports whether qty units could be taken right now
func (p *Product) HasStock(qty int) bool {
	return qty > 0 && qty <= p.onHand
}

// Subtotal returns price×quantity without tax
func (p *Product) Subtotal(qty int) decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// PriceIncludingTax returns price×quantity plus its tax. The quantity must be
// positive and available.
func (p *Product) PriceIncludingTax(qty int) (decimal.Decimal, error) {
	if !p.HasStock(qty) {
		return decimal.Zero, shared.NewValidationError("INVALID_QUANTITY",
			fmt.Sprintf("Quantity %d is invalid or exceeds the %d units on hand", qty, p.onHand))
	}
	subtotal := p.Subtotal(qty)
	return subtotal.Add(p.TaxCategory.TaxAmount(subtotal)), nil
}

func validateDetails(d ProductDetails) error {
	code := strings.TrimSpace(d.Code)
	if code == "" {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewValidationError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if d.UnitPrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !d.TaxCategory.IsValid() {
		return shared.NewValidationError("INVALID_TAX_CATEGORY", "Tax category is required")
	}
	return nil
}

func validateExpiration(expiresOn time.Time) error {
	if expiresOn.IsZero() {
		return shared.NewValidationError("INVALID_EXPIRATION", "Expiration date is required for perishable products")
	}
	if dateOnly(expiresOn).Before(dateOnly(time.Now())) {
		return shared.NewValidationError("EXPIRATION_IN_PAST", "Expiration date cannot be before today")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
