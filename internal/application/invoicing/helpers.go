package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

func findCustomer(ctx context.Context, repo partner.CustomerRepository, id int64) (*partner.Customer, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("CUSTOMER_NOT_FOUND", fmt.Sprintf("Customer %d not found", id))
		}
		return nil, err
	}
	return c, nil
}

func findProduct(ctx context.Context, repo catalog.ProductRepository, id int64) (*catalog.Product, error) {
	p, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", fmt.Sprintf("Product %d not found", id))
		}
		return nil, err
	}
	return p, nil
}

func findInvoice(ctx context.Context, repo invoicing.InvoiceRepository, number int64) (*invoicing.Invoice, error) {
	inv, err := repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("INVOICE_NOT_FOUND", fmt.Sprintf("Invoice %d not found", number))
		}
		return nil, err
	}
	return inv, nil
}

// compensation collects undo steps of a multi-aggregate operation and runs
// them newest first.
type compensation struct {
	steps []compensationStep
}

type compensationStep struct {
	name string
	fn   func(ctx context.Context) error
}

func (c *compensation) push(name string, fn func(ctx context.Context) error) {
	c.steps = append(c.steps, compensationStep{name: name, fn: fn})
}

func (c *compensation) run(ctx context.Context, logger *zap.Logger) {
	// Undo must still run when the request context was cancelled.
	ctx = context.WithoutCancel(ctx)
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		if err := step.fn(ctx); err != nil {
			logger.Error("compensation step failed", zap.String("step", step.name), zap.Error(err))
		}
	}
	c.steps = nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		telemetry.SetOK(span)
	}
	span.End()
}
