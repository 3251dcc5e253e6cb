package partner

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
)

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeOccasional CustomerType = "OCCASIONAL" // walk-in buyer, may hold points and the senior discount
	CustomerTypeCorporate  CustomerType = "CORPORATE"  // business account with a contact person
)

// IsValid reports whether t is a known customer type
func (t CustomerType) IsValid() bool {
	return t == CustomerTypeOccasional || t == CustomerTypeCorporate
}

// ParseCustomerType parses a customer type, case-insensitively
func ParseCustomerType(s string) (CustomerType, error) {
	t := CustomerType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("INVALID_CUSTOMER_TYPE", fmt.Sprintf("Unknown customer type %q", s))
	}
	return t, nil
}

// Customer represents a buyer known to the point of sale.
// The identifier is the customer's national id and never changes.
type Customer struct {
	shared.BaseAggregateRoot
	Name string

	customerType CustomerType
	senior       bool
	points       int
	contact      string
}

// NewOccasionalCustomer registers a walk-in customer
func NewOccasionalCustomer(id int64, name string, seniorDiscountEligible bool) (*Customer, error) {
	c, err := newCustomer(id, name, CustomerTypeOccasional)
	if err != nil {
		return nil, err
	}
	c.senior = seniorDiscountEligible
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

// NewCorporateCustomer registers a business customer; contact is required
func NewCorporateCustomer(id int64, name, contact string) (*Customer, error) {
	c, err := newCustomer(id, name, CustomerTypeCorporate)
	if err != nil {
		return nil, err
	}
	if err := validateContact(contact); err != nil {
		return nil, err
	}
	c.contact = strings.TrimSpace(contact)
	c.AddDomainEvent(NewCustomerRegisteredEvent(c))
	return c, nil
}

func newCustomer(id int64, name string, t CustomerType) (*Customer, error) {
	if id <= 0 {
		return nil, shared.NewValidationError("INVALID_ID", "Customer id must be positive")
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(id),
		Name:              strings.TrimSpace(name),
		customerType:      t,
	}, nil
}

// CustomerSnapshot is the stored state of a customer
type CustomerSnapshot struct {
	ID                     int64
	Name                   string
	Type                   CustomerType
	SeniorDiscountEligible bool
	LoyaltyPoints          int
	Contact                string
	Version                int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// RestoreCustomer rebuilds a customer from storage without validation or events
func RestoreCustomer(s CustomerSnapshot) *Customer {
	c := &Customer{
		Name:         s.Name,
		customerType: s.Type,
		senior:       s.SeniorDiscountEligible,
		points:       s.LoyaltyPoints,
		contact:      s.Contact,
	}
	c.ID = s.ID
	c.Version = s.Version
	c.CreatedAt = s.CreatedAt
	c.UpdatedAt = s.UpdatedAt
	return c
}

// Snapshot returns the storable state of the customer
func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:                     c.ID,
		Name:                   c.Name,
		Type:                   c.customerType,
		SeniorDiscountEligible: c.senior,
		LoyaltyPoints:          c.points,
		Contact:                c.contact,
		Version:                c.Version,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

// Type returns the customer type
func (c *Customer) Type() CustomerType { return c.customerType }

// IsOccasional returns true for walk-in customers
func (c *Customer) IsOccasional() bool { return c.customerType == CustomerTypeOccasional }

// IsCorporate returns true for business customers
func (c *Customer) IsCorporate() bool { return c.customerType == CustomerTypeCorporate }

// SeniorDiscountEligible returns the raw eligibility flag
func (c *Customer) SeniorDiscountEligible() bool { return c.senior }

// QualifiesForSeniorDiscount reports whether invoices for this customer get
// the senior discount. Only occasional customers qualify.
func (c *Customer) QualifiesForSeniorDiscount() bool {
	return c.IsOccasional() && c.senior
}

// LoyaltyPoints returns the current point balance
func (c *Customer) LoyaltyPoints() int { return c.points }

// Contact returns the contact person; empty for occasional customers
func (c *Customer) Contact() string { return c.contact }

// Rename changes the display name
func (c *Customer) Rename(name string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetSeniorDiscountEligible toggles the senior flag. Enabling it on a
// corporate customer is a state error.
func (c *Customer) SetSeniorDiscountEligible(eligible bool) error {
	if eligible && c.IsCorporate() {
		return shared.NewStateError("INVALID_STATE", "Corporate customers cannot receive the senior discount")
	}
	if c.senior == eligible {
		return nil
	}
	c.senior = eligible
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetContact changes the contact person of a corporate customer
func (c *Customer) SetContact(contact string) error {
	if c.IsOccasional() {
		return shared.NewStateError("INVALID_STATE", "Occasional customers have no contact person")
	}
	if err := validateContact(contact); err != nil {
		return err
	}
	c.contact = strings.TrimSpace(contact)
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// ChangeType switches the customer type. Becoming occasional drops the
// contact; becoming corporate requires a contact and drops the senior flag.
func (c *Customer) ChangeType(t CustomerType, contact string) error {
	if !t.IsValid() {
		return shared.NewValidationError("INVALID_CUSTOMER_TYPE", fmt.Sprintf("Unknown customer type %q", t))
	}

	switch t {
	case CustomerTypeOccasional:
		c.contact = ""
	case CustomerTypeCorporate:
		if err := validateContact(contact); err != nil {
			return err
		}
		c.contact = strings.TrimSpace(contact)
		c.senior = false
	}
	c.customerType = t
	c.Touch()

	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// AccruePoints adds n points and returns the new balance
func (c *Customer) AccruePoints(n int, reason string) (int, error) {
	if n < 0 {
		return c.points, shared.NewValidationError("INVALID_POINTS", "Points to accrue cannot be negative")
	}
	if n == 0 {
		return c.points, nil
	}
	c.changePoints(n, reason)
	return c.points, nil
}

// RedeemPoints spends n points. A balance below n is an insufficient-resource
// error and leaves the balance untouched.
func (c *Customer) RedeemPoints(n int, reason string) error {
	if n < 0 {
		return shared.NewValidationError("INVALID_POINTS", "Points to redeem cannot be negative")
	}
	if c.points < n {
		return shared.NewInsufficientError("INSUFFICIENT_POINTS",
			fmt.Sprintf("Customer %d has %d points, %d requested", c.ID, c.points, n))
	}
	if n == 0 {
		return nil
	}
	c.changePoints(-n, reason)
	return nil
}

// ReversePoints takes back up to n previously awarded points and returns how
// many were actually reversed. It never drives the balance negative.
func (c *Customer) ReversePoints(n int, reason string) (int, error) {
	if n < 0 {
		return 0, shared.NewValidationError("INVALID_POINTS", "Points to reverse cannot be negative")
	}
	reversed := min(n, c.points)
	if reversed == 0 {
		return 0, nil
	}
	c.changePoints(-reversed, reason)
	return reversed, nil
}

func (c *Customer) changePoints(delta int, reason string) {
	old := c.points
	c.points += delta
	c.Touch()

	c.AddDomainEvent(NewLoyaltyPointsChangedEvent(c, old, c.points, reason))
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validateContact(contact string) error {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return shared.NewValidationError("INVALID_CONTACT", "Corporate customers require a contact person")
	}
	if len(contact) > 200 {
		return shared.NewValidationError("INVALID_CONTACT", "Contact cannot exceed 200 characters")
	}
	return nil
}
