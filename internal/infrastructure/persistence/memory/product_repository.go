package memory

import (
	"context"
	"strings"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
)

// ProductRepository is an in-memory catalog.ProductRepository
type ProductRepository struct {
	rows *table[catalog.ProductSnapshot]
}

// NewProductRepository creates an empty product repository
func NewProductRepository() *ProductRepository {
	return &ProductRepository{rows: newTable(
		func(s catalog.ProductSnapshot) int { return s.Version },
		func(s *catalog.ProductSnapshot, v int) { s.Version = v },
	)}
}

// FindByID finds a product by id
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	s, ok := r.rows.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return catalog.RestoreProduct(s), nil
}

// FindByCode finds a product by its code, case-insensitively
func (r *ProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rows := r.rows.list(func(s catalog.ProductSnapshot) bool { return s.Code == code })
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}
	return catalog.RestoreProduct(rows[0]), nil
}

// FindAll returns every product ordered by id
func (r *ProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	rows := r.rows.list(nil)
	out := make([]catalog.Product, len(rows))
	for i, s := range rows {
		out[i] = *catalog.RestoreProduct(s)
	}
	return out, nil
}

// Save inserts or overwrites a product without a version check
func (r *ProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	r.rows.put(product.ID, product.Snapshot())
	return nil
}

// SaveWithLock overwrites a product only if nobody saved it since it was read
func (r *ProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	v, err := r.rows.putIfVersion(product.ID, product.Snapshot())
	if err != nil {
		return err
	}
	product.Version = v
	return nil
}

// ExistsByID checks if a product exists
func (r *ProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.rows.exists(id), nil
}

// ExistsByCode checks if a product code is taken
func (r *ProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return r.rows.some(func(s catalog.ProductSnapshot) bool { return s.Code == code }), nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	if !r.rows.delete(id) {
		return shared.ErrNotFound
	}
	return nil
}

var _ catalog.ProductRepository = (*ProductRepository)(nil)
