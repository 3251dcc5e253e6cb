package catalog

import (
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of expiration dates
const DateLayout = "2006-01-02"

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Code            string          `json:"code" binding:"required,min=1,max=50"`
	Name            string          `json:"name" binding:"required,min=1,max=200"`
	Description     string          `json:"description" binding:"max=2000"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TaxCategory     string          `json:"tax_category" binding:"required,taxcategory"`
	Kind            string          `json:"kind" binding:"required,oneof=PERISHABLE NON_PERISHABLE"`
	InitialQuantity int             `json:"initial_quantity" binding:"min=0"`
	ExpiresOn       string          `json:"expires_on" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateProductRequest represents a request to update a product.
// Nil fields keep their current value.
type UpdateProductRequest struct {
	Code        *string          `json:"code" binding:"omitempty,min=1,max=50"`
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=2000"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	TaxCategory *string          `json:"tax_category" binding:"omitempty,taxcategory"`
}

// SetExpirationRequest changes the expiration date of a perishable product
type SetExpirationRequest struct {
	ExpiresOn string `json:"expires_on" binding:"required,datetime=2006-01-02"`
}

// AdjustInventoryRequest is a manual stock correction. Positive deltas add
// stock; negative deltas remove it.
type AdjustInventoryRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// ProductListFilter narrows a product listing
type ProductListFilter struct {
	Search  string `form:"search"`
	Kind    string `form:"kind" binding:"omitempty,oneof=PERISHABLE NON_PERISHABLE"`
	InStock *bool  `form:"in_stock"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          int64           `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxCategory string          `json:"tax_category"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Kind        string          `json:"kind"`
	OnHand      int             `json:"on_hand"`
	ExpiresOn   *string         `json:"expires_on,omitempty"`
	Expired     bool            `json:"expired"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// PriceQuote is the price of a quantity of a product
type PriceQuote struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		UnitPrice:   p.UnitPrice,
		TaxCategory: string(p.TaxCategory),
		TaxRate:     p.TaxCategory.Rate(),
		Kind:        string(p.Kind),
		OnHand:      p.OnHand(),
		Expired:     p.IsExpired(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Version:     p.GetVersion(),
	}
	if d, ok := p.ExpiresOn(); ok {
		s := d.Format(DateLayout)
		resp.ExpiresOn = &s
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}
