package memory

import (
	"context"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/shared"
)

// InvoiceRepository is an in-memory invoicing.InvoiceRepository
type InvoiceRepository struct {
	rows *table[invoicing.InvoiceSnapshot]
}

// NewInvoiceRepository creates an empty invoice repository
func NewInvoiceRepository() *InvoiceRepository {
	return &InvoiceRepository{rows: newTable(
		func(s invoicing.InvoiceSnapshot) int { return s.Version },
		func(s *invoicing.InvoiceSnapshot, v int) { s.Version = v },
	)}
}

// FindByNumber finds an invoice by number
func (r *InvoiceRepository) FindByNumber(ctx context.Context, number int64) (*invoicing.Invoice, error) {
	s, ok := r.rows.get(number)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return invoicing.RestoreInvoice(s), nil
}

// FindAll returns every invoice ordered by number
func (r *InvoiceRepository) FindAll(ctx context.Context) ([]invoicing.Invoice, error) {
	return restoreInvoices(r.rows.list(nil)), nil
}

// FindByCustomer returns a customer's invoices ordered by number
func (r *InvoiceRepository) FindByCustomer(ctx context.Context, customerID int64) ([]invoicing.Invoice, error) {
	return restoreInvoices(r.rows.list(func(s invoicing.InvoiceSnapshot) bool {
		return s.Customer.ID == customerID
	})), nil
}

// FindByDateRange returns the invoices issued inside the range
func (r *InvoiceRepository) FindByDateRange(ctx context.Context, dr shared.DateRange) ([]invoicing.Invoice, error) {
	return restoreInvoices(r.rows.list(func(s invoicing.InvoiceSnapshot) bool {
		return dr.Contains(s.IssuedAt)
	})), nil
}

// Save inserts or overwrites an invoice without a version check
func (r *InvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	r.rows.put(invoice.Number(), invoice.Snapshot())
	return nil
}

// SaveWithLock overwrites an invoice only if nobody saved it since it was read
func (r *InvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	v, err := r.rows.putIfVersion(invoice.Number(), invoice.Snapshot())
	if err != nil {
		return err
	}
	invoice.Version = v
	return nil
}

// ExistsByNumber checks if an invoice exists
func (r *InvoiceRepository) ExistsByNumber(ctx context.Context, number int64) (bool, error) {
	return r.rows.exists(number), nil
}

// ExistsByCustomer checks if any invoice references the customer
func (r *InvoiceRepository) ExistsByCustomer(ctx context.Context, customerID int64) (bool, error) {
	return r.rows.some(func(s invoicing.InvoiceSnapshot) bool { return s.Customer.ID == customerID }), nil
}

// Delete removes an invoice
func (r *InvoiceRepository) Delete(ctx context.Context, number int64) error {
	if !r.rows.delete(number) {
		return shared.ErrNotFound
	}
	return nil
}

func restoreInvoices(rows []invoicing.InvoiceSnapshot) []invoicing.Invoice {
	out := make([]invoicing.Invoice, len(rows))
	for i, s := range rows {
		out[i] = *invoicing.RestoreInvoice(s)
	}
	return out
}

var _ invoicing.InvoiceRepository = (*InvoiceRepository)(nil)
