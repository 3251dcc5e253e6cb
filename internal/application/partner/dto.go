package partner

import (
	"time"

	"github.com/erp/pos/internal/domain/partner"
)

// RegisterCustomerRequest represents a request to register a customer.
// ID may be left zero to draw one from the customer sequence.
type RegisterCustomerRequest struct {
	ID                     int64  `json:"id" binding:"omitempty,gt=0"`
	Name                   string `json:"name" binding:"required,min=1,max=200"`
	Type                   string `json:"type" binding:"required,oneof=OCCASIONAL CORPORATE occasional corporate"`
	SeniorDiscountEligible bool   `json:"senior_discount_eligible"`
	Contact                string `json:"contact" binding:"max=200"`
}

// RenameCustomerRequest changes a customer's name
type RenameCustomerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// ChangeTypeRequest switches a customer between occasional and corporate
type ChangeTypeRequest struct {
	Type    string `json:"type" binding:"required,oneof=OCCASIONAL CORPORATE occasional corporate"`
	Contact string `json:"contact" binding:"max=200"`
}

// SetSeniorDiscountRequest toggles the senior discount flag
type SetSeniorDiscountRequest struct {
	Eligible bool `json:"eligible"`
}

// SetContactRequest changes the contact of a corporate customer
type SetContactRequest struct {
	Contact string `json:"contact" binding:"required,min=1,max=200"`
}

// PointsRequest redeems or accrues loyalty points
type PointsRequest struct {
	Points int    `json:"points" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"max=200"`
}

// CustomerListFilter narrows a customer listing
type CustomerListFilter struct {
	Search string `form:"search"`
	Type   string `form:"type" binding:"omitempty,oneof=OCCASIONAL CORPORATE"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                     int64     `json:"id"`
	Name                   string    `json:"name"`
	Type                   string    `json:"type"`
	SeniorDiscountEligible bool      `json:"senior_discount_eligible"`
	LoyaltyPoints          int       `json:"loyalty_points"`
	Contact                string    `json:"contact,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
	Version                int       `json:"version"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                     c.ID,
		Name:                   c.Name,
		Type:                   string(c.Type()),
		SeniorDiscountEligible: c.SeniorDiscountEligible(),
		LoyaltyPoints:          c.LoyaltyPoints(),
		Contact:                c.Contact(),
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
		Version:                c.GetVersion(),
	}
}

// ToCustomerResponses converts a slice of customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}
