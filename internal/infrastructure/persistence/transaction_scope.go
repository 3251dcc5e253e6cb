package persistence

import (
	"context"

	appinvoicing "github.com/erp/pos/internal/application/invoicing"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"gorm.io/gorm"
)

// GormTransactionScope implements the invoicing TransactionScope using GORM
// transactions. Every repository handed to fn shares the transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, rolling back when fn fails
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinvoicing.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

type gormRepositories struct {
	tx *gorm.DB
}

// Products returns the product repository scoped to the transaction
func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

// Customers returns the customer repository scoped to the transaction
func (r *gormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the transaction
func (r *gormRepositories) Invoices() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

var _ appinvoicing.TransactionScope = (*GormTransactionScope)(nil)
var _ appinvoicing.Repositories = (*gormRepositories)(nil)
