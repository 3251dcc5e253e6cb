package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	appinvoicing "github.com/erp/pos/internal/application/invoicing"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, id int64, code string, qty int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewNonPerishableProduct(id, catalog.ProductDetails{
		Code:        code,
		Name:        "Product " + code,
		UnitPrice:   decimal.NewFromInt(1000),
		TaxCategory: valueobject.TaxVAT,
	}, qty)
	require.NoError(t, err)
	return p
}

func TestGormProductRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	require.NoError(t, repo.Save(ctx, newProduct(t, 1, "a-1", 10)))

	first, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, first.AdjustInventory(-10))
	require.NoError(t, repo.SaveWithLock(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.AdjustInventory(-1))
	assert.ErrorIs(t, repo.SaveWithLock(ctx, second), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByCode(ctx, " A-1 ")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.OnHand())
	assert.Equal(t, 2, stored.Version)
	assert.True(t, decimal.NewFromInt(1000).Equal(stored.UnitPrice))

	assert.ErrorIs(t, repo.SaveWithLock(ctx, newProduct(t, 9, "zz", 1)), shared.ErrNotFound)
}

func TestGormProductRepository_LookupsAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newTestDatabase(t).DB)
	require.NoError(t, repo.Save(ctx, newProduct(t, 2, "b-2", 1)))
	require.NoError(t, repo.Save(ctx, newProduct(t, 1, "a-1", 1)))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].ID)

	exists, err := repo.ExistsByCode(ctx, "b-2")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, 1))
	assert.ErrorIs(t, repo.Delete(ctx, 1), shared.ErrNotFound)
	_, err = repo.FindByID(ctx, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_SaveWithLockSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(gormDB)

	mock.ExpectExec(`UPDATE "products" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	p := newProduct(t, 1, "a-1", 3)
	err := repo.SaveWithLock(context.Background(), p)

	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.Equal(t, 1, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormCustomerRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()
	repo := NewGormCustomerRepository(newTestDatabase(t).DB)
	c, err := partner.NewCorporateCustomer(1, "Acme", "ops@acme.test")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	_, err = loaded.AccruePoints(5, "test")
	require.NoError(t, err)
	require.NoError(t, repo.SaveWithLock(ctx, loaded))

	_, err = c.AccruePoints(1, "stale")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.SaveWithLock(ctx, c), shared.ErrConcurrencyConflict)

	stored, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.LoyaltyPoints())
	assert.Equal(t, partner.CustomerTypeCorporate, stored.Type())
	assert.Equal(t, "ops@acme.test", stored.Contact())
}

func TestGormInvoiceRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t).DB
	repo := NewGormInvoiceRepository(db)

	customer, err := partner.NewOccasionalCustomer(1, "Ana", true)
	require.NoError(t, err)
	inv, err := invoicing.NewInvoice(1, invoicing.CustomerRefOf(customer), "cashier-1")
	require.NoError(t, err)
	_, err = inv.AddLine(newProduct(t, 1, "a-1", 10), 2)
	require.NoError(t, err)
	_, err = inv.AddLine(newProduct(t, 2, "b-2", 10), 1)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	loaded, err := repo.FindByNumber(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loaded.Lines(), 2)
	assert.Equal(t, 1, loaded.Lines()[0].LineNumber)
	assert.True(t, inv.Total().Equal(loaded.Total()))
	assert.True(t, loaded.IsOpen())

	_, err = loaded.RemoveLine(1)
	require.NoError(t, err)
	credential, err := payment.NewCardCredential("4111 1111 1111 1111", "Ana Mora",
		payment.YearMonthOf(time.Now().AddDate(2, 0, 0)), "123")
	require.NoError(t, err)
	p, err := payment.NewCardPayment(7, loaded.Total(), credential)
	require.NoError(t, err)
	require.NoError(t, loaded.RegisterPayment(p))
	require.NoError(t, repo.SaveWithLock(ctx, loaded))
	assert.Equal(t, 2, loaded.Version)

	paid, err := repo.FindByNumber(ctx, 1)
	require.NoError(t, err)
	assert.True(t, paid.IsClosed())
	require.Len(t, paid.Lines(), 1)
	assert.Equal(t, 2, paid.Lines()[0].LineNumber)
	require.NotNil(t, paid.Payment())
	assert.Equal(t, payment.MethodCard, paid.Payment().Method)
	require.NotNil(t, paid.Payment().Card)
	assert.Equal(t, "1111", paid.Payment().Card.LastFour)
	assert.Equal(t, payment.BrandVisa, paid.Payment().Card.Brand)

	assert.ErrorIs(t, repo.SaveWithLock(ctx, inv), shared.ErrConcurrencyConflict)

	inUse, err := repo.ExistsByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.True(t, inUse)

	require.NoError(t, repo.Delete(ctx, 1))
	assert.ErrorIs(t, repo.Delete(ctx, 1), shared.ErrNotFound)
	var orphans int64
	require.NoError(t, db.Table("invoice_lines").Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestGormInvoiceRepository_FindByDateRangeSQL(t *testing.T) {
	gormDB, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(gormDB)

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE issued_at BETWEEN \$1 AND \$2 ORDER BY number`).
		WillReturnRows(sqlmock.NewRows([]string{"number"}))

	today := time.Now()
	dr, err := shared.NewDateRange(today, today)
	require.NoError(t, err)
	invoices, err := repo.FindByDateRange(context.Background(), dr)

	require.NoError(t, err)
	assert.Empty(t, invoices)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSequence_NextID(t *testing.T) {
	ctx := context.Background()
	seq := NewGormSequence(newTestDatabase(t).DB)

	for want := int64(1); want <= 3; want++ {
		id, err := seq.NextID(ctx, shared.SequenceInvoice)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	id, err := seq.NextID(ctx, shared.SequencePayment)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()
	db := newTestDatabase(t).DB
	scope := NewGormTransactionScope(db)
	products := NewGormProductRepository(db)
	require.NoError(t, products.Save(ctx, newProduct(t, 1, "a-1", 10)))

	t.Run("rolls back every write when fn fails", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appinvoicing.Repositories) error {
			p, err := repos.Products().FindByID(ctx, 1)
			require.NoError(t, err)
			require.NoError(t, p.AdjustInventory(-4))
			require.NoError(t, repos.Products().SaveWithLock(ctx, p))
			return shared.NewStateError("BOOM", "boom")
		})
		require.Error(t, err)

		p, err := products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, p.OnHand())
		assert.Equal(t, 1, p.Version)
	})

	t.Run("commits when fn succeeds", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appinvoicing.Repositories) error {
			p, err := repos.Products().FindByID(ctx, 1)
			if err != nil {
				return err
			}
			if err := p.AdjustInventory(-4); err != nil {
				return err
			}
			return repos.Products().SaveWithLock(ctx, p)
		})
		require.NoError(t, err)

		p, err := products.FindByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 6, p.OnHand())
	})
}
