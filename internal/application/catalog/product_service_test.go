package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) SaveWithLock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockIDGenerator is a mock implementation of shared.IDGenerator
type MockIDGenerator struct {
	mock.Mock
}

func (m *MockIDGenerator) NextID(ctx context.Context, sequence string) (int64, error) {
	args := m.Called(ctx, sequence)
	return args.Get(0).(int64), args.Error(1)
}

var testPolicy = concurrency.Policy{MaxAttempts: 3, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond}

func newTestProductService() (*ProductService, *MockProductRepository, *MockIDGenerator) {
	repo := new(MockProductRepository)
	ids := new(MockIDGenerator)
	return NewProductService(repo, ids, testPolicy, nil), repo, ids
}

func createTestProduct(id int64, onHand int) *catalog.Product {
	p, _ := catalog.NewNonPerishableProduct(id, catalog.ProductDetails{
		Code:        "SHIRT-01",
		Name:        "Shirt",
		UnitPrice:   decimal.NewFromInt(1200),
		TaxCategory: valueobject.TaxVAT,
	}, onHand)
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("non perishable", func(t *testing.T) {
		svc, repo, ids := newTestProductService()
		repo.On("ExistsByCode", ctx, "shirt-01").Return(false, nil)
		ids.On("NextID", ctx, shared.SequenceProduct).Return(int64(7), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Code:            "shirt-01",
			Name:            "Shirt",
			UnitPrice:       decimal.NewFromInt(1200),
			TaxCategory:     "vat",
			Kind:            "NON_PERISHABLE",
			InitialQuantity: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7), resp.ID)
		assert.Equal(t, "SHIRT-01", resp.Code)
		assert.Equal(t, 4, resp.OnHand)
		assert.Nil(t, resp.ExpiresOn)
		assert.True(t, resp.TaxRate.Equal(decimal.NewFromInt(13)))
		repo.AssertExpectations(t)
	})

	t.Run("perishable", func(t *testing.T) {
		svc, repo, ids := newTestProductService()
		expires := time.Now().AddDate(0, 1, 0).Format(DateLayout)
		repo.On("ExistsByCode", ctx, "MILK").Return(false, nil)
		ids.On("NextID", ctx, shared.SequenceProduct).Return(int64(8), nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			Code: "MILK", Name: "Milk", UnitPrice: decimal.NewFromInt(900),
			TaxCategory: "EXEMPT", Kind: "PERISHABLE", InitialQuantity: 10, ExpiresOn: expires,
		})
		require.NoError(t, err)
		require.NotNil(t, resp.ExpiresOn)
		assert.Equal(t, expires, *resp.ExpiresOn)
		assert.False(t, resp.Expired)
	})

	t.Run("rejections", func(t *testing.T) {
		svc, repo, _ := newTestProductService()
		repo.On("ExistsByCode", ctx, "TAKEN").Return(true, nil)
		repo.On("ExistsByCode", ctx, "MILK").Return(false, nil)

		_, err := svc.Create(ctx, CreateProductRequest{Code: "TAKEN", Name: "x", TaxCategory: "VAT", Kind: "NON_PERISHABLE"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		_, err = svc.Create(ctx, CreateProductRequest{Code: "X", Name: "x", TaxCategory: "LUXURY", Kind: "NON_PERISHABLE"})
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))

		_, err = svc.Create(ctx, CreateProductRequest{Code: "MILK", Name: "Milk", TaxCategory: "VAT", Kind: "PERISHABLE"})
		assert.ErrorIs(t, err, shared.NewValidationError("INVALID_EXPIRATION", ""))

		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProductService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("FindByID", ctx, int64(3)).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(ctx, 3)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	assert.Contains(t, err.Error(), "Product 3")
}

func TestProductService_Update_RetriesConflicts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("FindByID", ctx, int64(1)).Return(createTestProduct(1, 5), nil).Once()
	repo.On("FindByID", ctx, int64(1)).Return(createTestProduct(1, 3), nil).Once()
	repo.On("SaveWithLock", ctx, mock.Anything).Return(shared.ErrConcurrencyConflict).Once()
	repo.On("SaveWithLock", ctx, mock.Anything).Return(nil).Once()

	price := decimal.NewFromInt(1500)
	resp, err := svc.Update(ctx, 1, UpdateProductRequest{UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, resp.UnitPrice.Equal(price))
	assert.Equal(t, 3, resp.OnHand, "stock comes from the latest read")
	repo.AssertExpectations(t)
}

func TestProductService_SetExpiration(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("FindByID", ctx, int64(1)).Return(createTestProduct(1, 5), nil)

	_, err := svc.SetExpiration(ctx, 1, SetExpirationRequest{ExpiresOn: "2099-01-01"})
	assert.Equal(t, shared.KindState, shared.KindOf(err))

	_, err = svc.SetExpiration(ctx, 1, SetExpirationRequest{ExpiresOn: "01/01/2099"})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestProductService_AdjustInventory(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("FindByID", ctx, int64(1)).Return(createTestProduct(1, 2), nil)
	repo.On("SaveWithLock", ctx, mock.Anything).Return(nil)

	resp, err := svc.AdjustInventory(ctx, 1, AdjustInventoryRequest{Delta: 3, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.OnHand)

	_, err = svc.AdjustInventory(ctx, 1, AdjustInventoryRequest{Delta: -6})
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)

	_, err = svc.AdjustInventory(ctx, 1, AdjustInventoryRequest{})
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestProductService_PriceIncludingTax(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("FindByID", ctx, int64(1)).Return(createTestProduct(1, 5), nil)

	quote, err := svc.PriceIncludingTax(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, quote.Subtotal.Equal(decimal.NewFromInt(2400)))
	assert.True(t, quote.Tax.Equal(decimal.NewFromInt(312)))
	assert.True(t, quote.Total.Equal(decimal.NewFromInt(2712)))

	_, err = svc.PriceIncludingTax(ctx, 1, 6)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	empty := createTestProduct(2, 0)
	empty.Name = "Socks"
	repo.On("FindAll", ctx).Return([]catalog.Product{*createTestProduct(1, 5), *empty}, nil)

	all, err := svc.List(ctx, ProductListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inStock := true
	filtered, err := svc.List(ctx, ProductListFilter{InStock: &inStock})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, int64(1), filtered[0].ID)

	searched, err := svc.List(ctx, ProductListFilter{Search: "sock"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Socks", searched[0].Name)
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestProductService()
	repo.On("Delete", ctx, int64(1)).Return(nil)
	repo.On("Delete", ctx, int64(2)).Return(shared.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, 1))
	assert.Equal(t, shared.KindNotFound, shared.KindOf(svc.Delete(ctx, 2)))
}
