package invoicing

import (
	"context"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
)

// TransactionScope provides transactional access to the repositories an
// invoice operation touches. When the function returns an error every write
// made through repos is rolled back; when it succeeds they are committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to the repositories within a transaction.
// All repositories returned share the same underlying transaction.
type Repositories interface {
	Products() catalog.ProductRepository
	Customers() partner.CustomerRepository
	Invoices() invoicing.InvoiceRepository
}

// NoOpTransactionScope runs the function against plain repositories.
// Used with stores that have no transactions; the service compensates
// failed steps itself.
type NoOpTransactionScope struct {
	products  catalog.ProductRepository
	customers partner.CustomerRepository
	invoices  invoicing.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	products catalog.ProductRepository,
	customers partner.CustomerRepository,
	invoices invoicing.InvoiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		products:  products,
		customers: customers,
		invoices:  invoices,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Products returns the product repository.
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.products }

// Customers returns the customer repository.
func (s *NoOpTransactionScope) Customers() partner.CustomerRepository { return s.customers }

// Invoices returns the invoice repository.
func (s *NoOpTransactionScope) Invoices() invoicing.InvoiceRepository { return s.invoices }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
