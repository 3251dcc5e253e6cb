package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindByCode finds a product by its code, case-insensitively
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var m models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&m).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return m.ToDomain(), nil
}

// FindAll returns every product ordered by ID
func (r *GormProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

// Save inserts a product or overwrites every column without a version check
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	m := models.ProductModelFromDomain(product)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(m).Error
}

// SaveWithLock updates the product only if the stored version still equals
// product.Version. The check and the write are a single UPDATE statement.
func (r *GormProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	m := models.ProductModelFromDomain(product)
	next := product.Version + 1
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, product.Version).
		Updates(map[string]any{
			"code":         m.Code,
			"name":         m.Name,
			"description":  m.Description,
			"unit_price":   m.UnitPrice,
			"tax_category": m.TaxCategory,
			"kind":         m.Kind,
			"on_hand":      m.OnHand,
			"expires_on":   m.ExpiresOn,
			"version":      next,
		})
	if err := lockResult(ctx, r.db, result, &models.ProductModel{}, "id = ?", product.ID); err != nil {
		return err
	}
	product.Version = next
	return nil
}

// ExistsByID checks if a product exists
func (r *GormProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.db, &models.ProductModel{}, "id = ?", id)
}

// ExistsByCode checks if a product code is taken
func (r *GormProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return exists(ctx, r.db, &models.ProductModel{}, "code = ?", strings.ToUpper(strings.TrimSpace(code)))
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func exists(ctx context.Context, db *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// lockResult interprets the outcome of a versioned UPDATE: no affected rows
// means either the row is gone or somebody else saved it first.
func lockResult(ctx context.Context, db *gorm.DB, result *gorm.DB, model any, query string, args ...any) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	found, err := exists(ctx, db, model, query, args...)
	if err != nil {
		return err
	}
	if !found {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
