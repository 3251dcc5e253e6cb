package persistence

import (
	"context"

	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id int64) (*partner.Customer, error) {
	var m models.CustomerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every customer ordered by ID
func (r *GormCustomerRepository) FindAll(ctx context.Context) ([]partner.Customer, error) {
	var rows []models.CustomerModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	customers := make([]partner.Customer, len(rows))
	for i := range rows {
		customers[i] = *rows[i].ToDomain()
	}
	return customers, nil
}

// Save inserts a customer or overwrites every column without a version check
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(models.CustomerModelFromDomain(customer)).Error
}

// SaveWithLock updates the customer only if nobody saved it since it was read
func (r *GormCustomerRepository) SaveWithLock(ctx context.Context, customer *partner.Customer) error {
	m := models.CustomerModelFromDomain(customer)
	next := customer.Version + 1
	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ? AND version = ?", customer.ID, customer.Version).
		Updates(map[string]any{
			"name":                     m.Name,
			"type":                     m.Type,
			"senior_discount_eligible": m.SeniorDiscountEligible,
			"loyalty_points":           m.LoyaltyPoints,
			"contact":                  m.Contact,
			"version":                  next,
		})
	if err := lockResult(ctx, r.db, result, &models.CustomerModel{}, "id = ?", customer.ID); err != nil {
		return err
	}
	customer.Version = next
	return nil
}

// ExistsByID checks if a customer exists
func (r *GormCustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &models.CustomerModel{}, "id = ?", id)
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.CustomerModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
