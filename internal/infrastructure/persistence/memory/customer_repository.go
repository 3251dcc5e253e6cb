package memory

import (
	"context"

	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
)

// CustomerRepository is an in-memory partner.CustomerRepository
type CustomerRepository struct {
	rows *table[partner.CustomerSnapshot]
}

// NewCustomerRepository creates an empty customer repository
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{rows: newTable(
		func(s partner.CustomerSnapshot) int { return s.Version },
		func(s *partner.CustomerSnapshot, v int) { s.Version = v },
	)}
}

// FindByID finds a customer by id
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	s, ok := r.rows.get(id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return partner.RestoreCustomer(s), nil
}

// FindAll returns every customer ordered by id
func (r *CustomerRepository) FindAll(ctx context.Context) ([]partner.Customer, error) {
	rows := r.rows.list(nil)
	out := make([]partner.Customer, len(rows))
	for i, s := range rows {
		out[i] = *partner.RestoreCustomer(s)
	}
	return out, nil
}

// Save inserts or overwrites a customer without a version check
func (r *CustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	r.rows.put(customer.ID, customer.Snapshot())
	return nil
}

// SaveWithLock overwrites a customer only if nobody saved it since it was read
func (r *CustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	v, err := r.rows.putIfVersion(customer.ID, customer.Snapshot())
	if err != nil {
		return err
	}
	customer.Version = v
	return nil
}

// ExistsByID checks if a customer exists
func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return r.rows.exists(id), nil
}

// Delete removes a customer
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	if !r.rows.delete(id) {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.CustomerRepository = (*CustomerRepository)(nil)
