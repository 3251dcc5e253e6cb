package catalog

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated    = "ProductCreated"
	EventTypeProductUpdated    = "ProductUpdated"
	EventTypeInventoryAdjusted = "InventoryAdjusted"
)

// ProductCreatedEvent is published when a new product is registered
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Kind      ProductKind     `json:"kind"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	OnHand    int             `json:"on_hand"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Code:            product.Code,
		Name:            product.Name,
		Kind:            product.Kind,
		UnitPrice:       product.UnitPrice,
		OnHand:          product.onHand,
	}
}

// ProductUpdatedEvent is published when a product's attributes change
type ProductUpdatedEvent struct {
	shared.BaseDomainEvent
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewProductUpdatedEvent creates a new ProductUpdatedEvent
func NewProductUpdatedEvent(product *Product) *ProductUpdatedEvent {
	return &ProductUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductUpdated, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Code:            product.Code,
		Name:            product.Name,
		UnitPrice:       product.UnitPrice,
	}
}

// InventoryAdjustedEvent is published whenever the on-hand quantity changes
type InventoryAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
	OnHand    int   `json:"on_hand"`
}

// NewInventoryAdjustedEvent creates a new InventoryAdjustedEvent
func NewInventoryAdjustedEvent(product *Product, delta int) *InventoryAdjustedEvent {
	return &InventoryAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInventoryAdjusted, AggregateTypeProduct, product.ID),
		ProductID:       product.ID,
		Delta:           delta,
		OnHand:          product.onHand,
	}
}
