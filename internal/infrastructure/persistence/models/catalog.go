package models

import (
	"time"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Code        string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_products_code"`
	Name        string                  `gorm:"type:varchar(200);not null"`
	Description string                  `gorm:"type:text"`
	UnitPrice   decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	TaxCategory valueobject.TaxCategory `gorm:"type:varchar(20);not null"`
	Kind        catalog.ProductKind     `gorm:"type:varchar(20);not null"`
	OnHand      int                     `gorm:"column:on_hand;not null;default:0"`
	ExpiresOn   *time.Time              `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain rebuilds the Product aggregate
func (m *ProductModel) ToDomain() *catalog.Product {
	return catalog.RestoreProduct(catalog.ProductSnapshot{
		ID:          m.ID,
		Code:        m.Code,
		Name:        m.Name,
		Description: m.Description,
		UnitPrice:   m.UnitPrice,
		TaxCategory: m.TaxCategory,
		Kind:        m.Kind,
		OnHand:      m.OnHand,
		ExpiresOn:   m.ExpiresOn,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	})
}

// ProductModelFromDomain creates a persistence model from a Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	s := p.Snapshot()
	return &ProductModel{
		AggregateModel: AggregateModel{ID: s.ID, Version: s.Version, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		Code:           s.Code,
		Name:           s.Name,
		Description:    s.Description,
		UnitPrice:      s.UnitPrice,
		TaxCategory:    s.TaxCategory,
		Kind:           s.Kind,
		OnHand:         s.OnHand,
		ExpiresOn:      s.ExpiresOn,
	}
}
