package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo   partner.CustomerRepository
	invoiceRepo    invoicing.InvoiceRepository
	ids            shared.IDGenerator
	policy         concurrency.Policy
	logger         *zap.Logger
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo partner.CustomerRepository,
	invoiceRepo invoicing.InvoiceRepository,
	ids shared.IDGenerator,
	policy concurrency.Policy,
	logger *zap.Logger,
) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		ids:          ids,
		policy:       policy,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Register creates a new customer
func (s *CustomerService) Register(ctx context.Context, req RegisterCustomerRequest) (*CustomerResponse, error) {
	customerType, err := partner.ParseCustomerType(req.Type)
	if err != nil {
		return nil, err
	}
	if customerType == partner.CustomerTypeCorporate && req.SeniorDiscountEligible {
		return nil, shared.NewValidationError("INVALID_SENIOR_DISCOUNT", "Corporate customers cannot receive the senior discount")
	}

	id := req.ID
	if id > 0 {
		exists, err := s.customerRepo.ExistsByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewValidationError("ALREADY_EXISTS", fmt.Sprintf("Customer %d already exists", id))
		}
	} else {
		id, err = s.nextFreeID(ctx)
		if err != nil {
			return nil, err
		}
	}

	var customer *partner.Customer
	if customerType == partner.CustomerTypeCorporate {
		customer, err = partner.NewCorporateCustomer(id, req.Name, req.Contact)
	} else {
		customer, err = partner.NewOccasionalCustomer(id, req.Name, req.SeniorDiscountEligible)
	}
	if err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID int64) (*CustomerResponse, error) {
	customer, err := s.find(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves the customers matching the filter, ordered by id
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, error) {
	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	kept := customers[:0]
	for _, c := range customers {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) {
			continue
		}
		if filter.Type != "" && string(c.Type()) != filter.Type {
			continue
		}
		kept = append(kept, c)
	}
	return ToCustomerResponses(kept), nil
}

// Rename changes a customer's name
func (s *CustomerService) Rename(ctx context.Context, customerID int64, req RenameCustomerRequest) (*CustomerResponse, error) {
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		return c.Rename(req.Name)
	})
}

// ChangeType switches a customer between occasional and corporate
func (s *CustomerService) ChangeType(ctx context.Context, customerID int64, req ChangeTypeRequest) (*CustomerResponse, error) {
	customerType, err := partner.ParseCustomerType(req.Type)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		return c.ChangeType(customerType, req.Contact)
	})
}

// SetSeniorDiscount toggles the senior discount of an occasional customer
func (s *CustomerService) SetSeniorDiscount(ctx context.Context, customerID int64, req SetSeniorDiscountRequest) (*CustomerResponse, error) {
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		return c.SetSeniorDiscountEligible(req.Eligible)
	})
}

// SetContact changes the contact of a corporate customer
func (s *CustomerService) SetContact(ctx context.Context, customerID int64, req SetContactRequest) (*CustomerResponse, error) {
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		return c.SetContact(req.Contact)
	})
}

// RedeemPoints spends loyalty points
func (s *CustomerService) RedeemPoints(ctx context.Context, customerID int64, req PointsRequest) (*CustomerResponse, error) {
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		return c.RedeemPoints(req.Points, reasonOr(req.Reason, "redeemed"))
	})
}

// AccruePoints adds loyalty points outside of an invoice
func (s *CustomerService) AccruePoints(ctx context.Context, customerID int64, req PointsRequest) (*CustomerResponse, error) {
	return s.update(ctx, customerID, func(c *partner.Customer) error {
		_, err := c.AccruePoints(req.Points, reasonOr(req.Reason, "manual accrual"))
		return err
	})
}

// Delete deletes a customer that no invoice references
func (s *CustomerService) Delete(ctx context.Context, customerID int64) error {
	if _, err := s.find(ctx, customerID); err != nil {
		return err
	}

	inUse, err := s.invoiceRepo.ExistsByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if inUse {
		return shared.NewStateError("CUSTOMER_IN_USE", fmt.Sprintf("Customer %d has invoices and cannot be deleted", customerID))
	}

	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return s.mapNotFound(err, customerID)
	}
	return nil
}

func (s *CustomerService) update(ctx context.Context, customerID int64, apply func(*partner.Customer) error) (*CustomerResponse, error) {
	customer, err := concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("update customer %d", customerID),
		func(ctx context.Context) (*partner.Customer, error) {
			c, err := s.find(ctx, customerID)
			if err != nil {
				return nil, err
			}
			if err := apply(c); err != nil {
				return nil, err
			}
			if err := s.customerRepo.SaveWithLock(ctx, c); err != nil {
				return nil, err
			}
			return c, nil
		})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// nextFreeID draws from the customer sequence, skipping ids that were
// registered explicitly.
func (s *CustomerService) nextFreeID(ctx context.Context) (int64, error) {
	const maxSkips = 16
	for range maxSkips {
		id, err := s.ids.NextID(ctx, shared.SequenceCustomer)
		if err != nil {
			return 0, fmt.Errorf("allocate customer id: %w", err)
		}
		exists, err := s.customerRepo.ExistsByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if !exists {
			return id, nil
		}
	}
	return 0, shared.NewConflictError("ID_EXHAUSTED", "Could not allocate a free customer id")
}

func (s *CustomerService) find(ctx context.Context, customerID int64) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, s.mapNotFound(err, customerID)
	}
	return customer, nil
}

func (s *CustomerService) mapNotFound(err error, customerID int64) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("CUSTOMER_NOT_FOUND", fmt.Sprintf("Customer %d not found", customerID))
	}
	return err
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	events := customer.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish customer events", zap.Int64("customer_id", customer.ID), zap.Error(err))
	}
}

func reasonOr(reason, fallback string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return fallback
}
