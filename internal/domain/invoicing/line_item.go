package invoicing

import (
	"fmt"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LineItem is one product/quantity pairing within an invoice.
// Product attributes are captured when the line is built.
type LineItem struct {
	LineNumber  int                     `json:"line_number"`
	ProductID   int64                   `json:"product_id"`
	ProductCode string                  `json:"product_code"`
	ProductName string                  `json:"product_name"`
	UnitPrice   decimal.Decimal         `json:"unit_price"`
	TaxCategory valueobject.TaxCategory `json:"tax_category"`
	Quantity    int                     `json:"quantity"`
}

// NewLineItem builds a line against the product's current on-hand quantity
func NewLineItem(lineNumber int, product *catalog.Product, quantity int) (LineItem, error) {
	if product == nil {
		return LineItem{}, shared.NewValidationError("INVALID_PRODUCT", "Product is required")
	}
	if lineNumber <= 0 {
		return LineItem{}, shared.NewValidationError("INVALID_LINE_NUMBER", "Line number must be positive")
	}
	if quantity <= 0 {
		return LineItem{}, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if quantity > product.OnHand() {
		return LineItem{}, insufficientStock(product, quantity)
	}

	return LineItem{
		LineNumber:  lineNumber,
		ProductID:   product.ID,
		ProductCode: product.Code,
		ProductName: product.Name,
		UnitPrice:   product.UnitPrice,
		TaxCategory: product.TaxCategory,
		Quantity:    quantity,
	}, nil
}

// Subtotal returns unit price × quantity
func (l LineItem) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Tax returns the tax owed on the subtotal, unrounded
func (l LineItem) Tax() decimal.Decimal {
	return l.TaxCategory.TaxAmount(l.Subtotal())
}

// Total returns subtotal plus tax
func (l LineItem) Total() decimal.Decimal {
	return l.Subtotal().Add(l.Tax())
}

// ChangeQuantity sets a new quantity. Only the increase over the current
// quantity is checked against the product's on-hand stock.
func (l *LineItem) ChangeQuantity(product *catalog.Product, newQuantity int) error {
	if product == nil || product.ID != l.ProductID {
		return shared.NewValidationError("INVALID_PRODUCT", "Product does not match the line")
	}
	if newQuantity <= 0 {
		return shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	if delta := newQuantity - l.Quantity; delta > product.OnHand() {
		return insufficientStock(product, delta)
	}
	l.Quantity = newQuantity
	return nil
}

func insufficientStock(product *catalog.Product, requested int) error {
	return shared.NewInsufficientError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for product %s (%d): requested %d, on hand %d",
			product.Name, product.ID, requested, product.OnHand()))
}
