package partner

import (
	"github.com/erp/pos/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerRegistered   = "CustomerRegistered"
	EventTypeCustomerUpdated      = "CustomerUpdated"
	EventTypeLoyaltyPointsChanged = "LoyaltyPointsChanged"
)

// CustomerRegisteredEvent is published when a new customer is registered
type CustomerRegisteredEvent struct {
	shared.BaseDomainEvent
	CustomerID int64        `json:"customer_id"`
	Name       string       `json:"name"`
	Type       CustomerType `json:"type"`
}

// NewCustomerRegisteredEvent creates a new CustomerRegisteredEvent
func NewCustomerRegisteredEvent(customer *Customer) *CustomerRegisteredEvent {
	return &CustomerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerRegistered, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		Name:            customer.Name,
		Type:            customer.customerType,
	}
}

// CustomerUpdatedEvent is published when a customer's profile changes
type CustomerUpdatedEvent struct {
	shared.BaseDomainEvent
	CustomerID             int64        `json:"customer_id"`
	Name                   string       `json:"name"`
	Type                   CustomerType `json:"type"`
	SeniorDiscountEligible bool         `json:"senior_discount_eligible"`
	Contact                string       `json:"contact,omitempty"`
}

// NewCustomerUpdatedEvent creates a new CustomerUpdatedEvent
func NewCustomerUpdatedEvent(customer *Customer) *CustomerUpdatedEvent {
	return &CustomerUpdatedEvent{
		BaseDomainEvent:        shared.NewBaseDomainEvent(EventTypeCustomerUpdated, AggregateTypeCustomer, customer.ID),
		CustomerID:             customer.ID,
		Name:                   customer.Name,
		Type:                   customer.customerType,
		SeniorDiscountEligible: customer.senior,
		Contact:                customer.contact,
	}
}

// LoyaltyPointsChangedEvent is published when the point balance moves
type LoyaltyPointsChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID int64  `json:"customer_id"`
	OldBalance int    `json:"old_balance"`
	NewBalance int    `json:"new_balance"`
	Reason     string `json:"reason,omitempty"`
}

// NewLoyaltyPointsChangedEvent creates a new LoyaltyPointsChangedEvent
func NewLoyaltyPointsChangedEvent(customer *Customer, oldBalance, newBalance int, reason string) *LoyaltyPointsChangedEvent {
	return &LoyaltyPointsChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoyaltyPointsChanged, AggregateTypeCustomer, customer.ID),
		CustomerID:      customer.ID,
		OldBalance:      oldBalance,
		NewBalance:      newBalance,
		Reason:          reason,
	}
}
