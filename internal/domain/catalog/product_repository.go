package catalog

import (
	"context"

	"github.com/erp/pos/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// FindAll returns products ordered by ID.
type ProductRepository interface {
	shared.Repository[Product]

	// FindByCode finds a product by its external code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// SaveWithLock updates a product only if its stored version still equals
	// product.Version, then bumps the version. A mismatch returns
	// shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, product *Product) error

	// ExistsByCode checks if a product code is taken
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
