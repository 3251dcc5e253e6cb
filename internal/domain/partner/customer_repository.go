package partner

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence.
// FindAll returns customers ordered by ID.
type CustomerRepository interface {
	shared.Repository[Customer]

	// SaveWithLock saves a customer with optimistic locking (version check)
	// Returns shared.ErrConcurrencyConflict if the version has changed
	SaveWithLock(ctx context.Context, customer *Customer) error
}
