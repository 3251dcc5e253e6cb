package invoicing

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByNumber finds an invoice by its number
	FindByNumber(ctx context.Context, number int64) (*Invoice, error)

	// FindAll returns every invoice ordered by number
	FindAll(ctx context.Context) ([]Invoice, error)

	// FindByCustomer finds the invoices issued to a customer
	FindByCustomer(ctx context.Context, customerID int64) ([]Invoice, error)

	// FindByDateRange finds invoices issued within the range, inclusive
	FindByDateRange(ctx context.Context, r shared.DateRange) ([]Invoice, error)

	// Save creates or updates an invoice together with its lines and payment
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock updates an invoice only if its stored version still equals
	// invoice.Version, then bumps the version. A mismatch returns
	// shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// ExistsByNumber checks if an invoice exists
	ExistsByNumber(ctx context.Context, number int64) (bool, error)

	// ExistsByCustomer checks if any invoice references the customer
	ExistsByCustomer(ctx context.Context, customerID int64) (bool, error)

	// Delete deletes an invoice
	Delete(ctx context.Context, number int64) error
}
