package models

import (
	"github.com/erp/pos/internal/domain/partner"
)

// CustomerModel is the persistence model for the Customer aggregate
type CustomerModel struct {
	AggregateModel
	Name                   string               `gorm:"type:varchar(200);not null"`
	Type                   partner.CustomerType `gorm:"type:varchar(20);not null;index"`
	SeniorDiscountEligible bool                 `gorm:"not null;default:false"`
	LoyaltyPoints          int                  `gorm:"not null;default:0"`
	Contact                string               `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain rebuilds the Customer aggregate
func (m *CustomerModel) ToDomain() *partner.Customer {
	return partner.RestoreCustomer(partner.CustomerSnapshot{
		ID:                     m.ID,
		Name:                   m.Name,
		Type:                   m.Type,
		SeniorDiscountEligible: m.SeniorDiscountEligible,
		LoyaltyPoints:          m.LoyaltyPoints,
		Contact:                m.Contact,
		Version:                m.Version,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	})
}

// CustomerModelFromDomain creates a persistence model from a Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	s := c.Snapshot()
	return &CustomerModel{
		AggregateModel:         AggregateModel{ID: s.ID, Version: s.Version, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt},
		Name:                   s.Name,
		Type:                   s.Type,
		SeniorDiscountEligible: s.SeniorDiscountEligible,
		LoyaltyPoints:          s.LoyaltyPoints,
		Contact:                s.Contact,
	}
}
