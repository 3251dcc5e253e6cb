package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM.
// An invoice is stored as one invoices row, its invoice_lines rows and at
// most one payments row.
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number") }).
		Preload("Payment")
}

// FindByNumber finds an invoice by its number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number int64) (*invoicing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.withChildren(ctx).First(&m, "number = ?", number).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain()
}

// FindAll returns every invoice ordered by number
func (r *GormInvoiceRepository) FindAll(ctx context.Context) ([]invoicing.Invoice, error) {
	return r.find(r.withChildren(ctx))
}

// FindByCustomer returns a customer's invoices ordered by number
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, customerID int64) ([]invoicing.Invoice, error) {
	return r.find(r.withChildren(ctx).Where("customer_id = ?", customerID))
}

// FindByDateRange returns the invoices issued inside the range
func (r *GormInvoiceRepository) FindByDateRange(ctx context.Context, dr shared.DateRange) ([]invoicing.Invoice, error) {
	return r.find(r.withChildren(ctx).Where("issued_at BETWEEN ? AND ?", dr.From, dr.To))
}

func (r *GormInvoiceRepository) find(query *gorm.DB) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := query.Order("number").Find(&rows).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, nil
}

// Save inserts an invoice or overwrites it, lines and payment included,
// without a version check
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	m := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "number"}}, UpdateAll: true}).
			Create(m).Error; err != nil {
			return err
		}
		return writeChildren(tx, m)
	})
}

// SaveWithLock updates the invoice only if the stored version still equals
// invoice.Version; lines and payment are rewritten in the same transaction.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *invoicing.Invoice) error {
	m := models.InvoiceModelFromDomain(invoice)
	next := invoice.Version + 1
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("number = ? AND version = ?", m.Number, invoice.Version).
			Updates(map[string]any{
				"customer_name":            m.CustomerName,
				"customer_type":            m.CustomerType,
				"senior_discount_eligible": m.SeniorDiscountEligible,
				"next_line_number":         m.NextLineNumber,
				"status":                   m.Status,
				"paid_at":                  m.PaidAt,
				"void_reason":              m.VoidReason,
				"voided_at":                m.VoidedAt,
				"points_awarded":           m.PointsAwarded,
				"version":                  next,
			})
		if err := lockResult(ctx, tx, result, &models.InvoiceModel{}, "number = ?", m.Number); err != nil {
			return err
		}
		return writeChildren(tx, m)
	})
	if err != nil {
		return err
	}
	invoice.Version = next
	return nil
}

// writeChildren replaces the stored lines with m's and upserts the payment
func writeChildren(tx *gorm.DB, m *models.InvoiceModel) error {
	if err := tx.Where("invoice_number = ?", m.Number).Delete(&models.InvoiceLineModel{}).Error; err != nil {
		return err
	}
	if len(m.Lines) > 0 {
		if err := tx.Create(&m.Lines).Error; err != nil {
			return err
		}
	}
	if m.Payment != nil {
		if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
			Create(m.Payment).Error; err != nil {
			return err
		}
	}
	return nil
}

// ExistsByNumber checks if an invoice exists
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, number int64) (bool, error) {
	return exists(ctx, r.db, &models.InvoiceModel{}, "number = ?", number)
}

// ExistsByCustomer checks if any invoice references the customer
func (r *GormInvoiceRepository) ExistsByCustomer(ctx context.Context, customerID int64) (bool, error) {
	return exists(ctx, r.db, &models.InvoiceModel{}, "customer_id = ?", customerID)
}

// Delete removes an invoice with its lines and payment
func (r *GormInvoiceRepository) Delete(ctx context.Context, number int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_number = ?", number).Delete(&models.InvoiceLineModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_number = ?", number).Delete(&models.PaymentModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.InvoiceModel{}, "number = ?", number)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
