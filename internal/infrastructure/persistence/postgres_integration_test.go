//go:build integration

package persistence

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/pos/internal/application/concurrency"
	appinvoicing "github.com/erp/pos/internal/application/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

// newPostgresDatabase starts a throwaway postgres and opens it through the
// same code path as production
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: "postgres"},
		Database: config.DatabaseConfig{
			Host:         host,
			Port:         port.Int(),
			User:         "postgres",
			Password:     "postgres",
			DBName:       "pos_test",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			MaxIdleConns: 2,
		},
		Log: config.LogConfig{Level: "error"},
	}
	db, err := NewDatabase(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate(ctx))
	return db
}

func TestPostgres_ConcurrentInvoicesNeverOversell(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDatabase(t)

	products := NewGormProductRepository(db.DB)
	customers := NewGormCustomerRepository(db.DB)
	require.NoError(t, products.Save(ctx, newProduct(t, 1, "bread", 5)))
	customer, err := partner.NewOccasionalCustomer(1, "Ana Mora", false)
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	rates, err := appinvoicing.NewCurrencyTable(map[string]decimal.Decimal{"USD": decimal.NewFromInt(510)})
	require.NoError(t, err)
	svc := appinvoicing.NewInvoiceService(
		NewGormTransactionScope(db.DB),
		NewGormSequence(db.DB),
		rates,
		concurrency.Policy{MaxAttempts: 20, BaseDelay: time.Millisecond, MaxDelay: 20 * time.Millisecond},
		zaptest.NewLogger(t),
	)

	var created atomic.Int32
	var g errgroup.Group
	for i := 0; i < 12; i++ {
		g.Go(func() error {
			_, err := svc.CreateInvoice(ctx, appinvoicing.CreateInvoiceRequest{
				CustomerID: 1,
				Lines:      []appinvoicing.InvoiceLineInput{{ProductID: 1, Quantity: 1}},
				CreatedBy:  "cashier-1",
			})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, shared.ErrInsufficientStock), shared.IsRetryable(err):
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.LessOrEqual(t, int(created.Load()), 5)
	stored, err := products.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5-int(created.Load()), stored.OnHand())

	invoices, err := NewGormInvoiceRepository(db.DB).FindByCustomer(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, invoices, int(created.Load()))
}

func TestPostgres_SequencesAreGapFreeUnderContention(t *testing.T) {
	ctx := context.Background()
	seq := NewGormSequence(newPostgresDatabase(t).DB)

	ids := make(chan int64, 40)
	var g errgroup.Group
	for i := 0; i < 40; i++ {
		g.Go(func() error {
			id, err := seq.NextID(ctx, shared.SequenceInvoice)
			if err != nil {
				return err
			}
			ids <- id
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	for want := int64(1); want <= 40; want++ {
		assert.True(t, seen[want], "missing id %d", want)
	}
}
