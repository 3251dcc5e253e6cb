package inventory

import (
	"context"
	"fmt"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"go.uber.org/zap"
)

// Reservation is a quantity taken from one product's on-hand stock
type Reservation struct {
	ProductID int64
	Quantity  int
}

// StockReserver moves on-hand stock with a compare-and-set write. Every
// adjustment reads the product, applies the delta through the aggregate and
// saves it with a version check, retrying conflicts within the policy.
type StockReserver struct {
	policy concurrency.Policy
	logger *zap.Logger
}

// NewStockReserver creates a new StockReserver
func NewStockReserver(policy concurrency.Policy, logger *zap.Logger) *StockReserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockReserver{policy: policy, logger: logger}
}

// Adjust applies delta to a product's stock and returns the saved product
func (r *StockReserver) Adjust(ctx context.Context, products catalog.ProductRepository, productID int64, delta int) (*catalog.Product, error) {
	op := fmt.Sprintf("adjust stock of product %d", productID)
	return concurrency.Retry(ctx, r.policy, r.logger, op, func(ctx context.Context) (*catalog.Product, error) {
		product, err := products.FindByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		if err := product.AdjustInventory(delta); err != nil {
			return nil, err
		}
		if err := products.SaveWithLock(ctx, product); err != nil {
			return nil, err
		}
		return product, nil
	})
}

// Reserve takes qty units of a product
func (r *StockReserver) Reserve(ctx context.Context, products catalog.ProductRepository, productID int64, qty int) (*catalog.Product, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Reserved quantity must be greater than zero")
	}
	return r.Adjust(ctx, products, productID, -qty)
}

// Release gives qty units back to a product
func (r *StockReserver) Release(ctx context.Context, products catalog.ProductRepository, productID int64, qty int) (*catalog.Product, error) {
	if qty <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Released quantity must be greater than zero")
	}
	return r.Adjust(ctx, products, productID, qty)
}

// ReserveAll reserves every line or none. When one reservation fails, the
// ones already taken are released before the failure is returned.
func (r *StockReserver) ReserveAll(ctx context.Context, products catalog.ProductRepository, lines []Reservation) ([]*catalog.Product, error) {
	reserved := make([]*catalog.Product, 0, len(lines))
	for i, line := range lines {
		p, err := r.Reserve(ctx, products, line.ProductID, line.Quantity)
		if err != nil {
			r.ReleaseAll(ctx, products, lines[:i])
			return nil, err
		}
		reserved = append(reserved, p)
	}
	return reserved, nil
}

// ReleaseAll returns every reservation and yields the restored products.
// Failures are logged and do not stop the remaining releases.
func (r *StockReserver) ReleaseAll(ctx context.Context, products catalog.ProductRepository, lines []Reservation) []*catalog.Product {
	released := make([]*catalog.Product, 0, len(lines))
	for _, line := range lines {
		p, err := r.Release(ctx, products, line.ProductID, line.Quantity)
		if err != nil {
			r.logger.Error("failed to release reserved stock",
				zap.Int64("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
			continue
		}
		released = append(released, p)
	}
	return released
}
