package invoicing

import (
	"context"
	"time"

	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GetInvoice returns an invoice by number
func (s *InvoiceService) GetInvoice(ctx context.Context, number int64) (*InvoiceResponse, error) {
	var inv *invoicing.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		inv, err = findInvoice(ctx, repos.Invoices(), number)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := ToInvoiceResponse(inv)
	return &out, nil
}

// ListInvoices returns every invoice ordered by number
func (s *InvoiceService) ListInvoices(ctx context.Context) ([]InvoiceResponse, error) {
	invoices, err := s.loadInvoices(ctx, func(ctx context.Context, repo invoicing.InvoiceRepository) ([]invoicing.Invoice, error) {
		return repo.FindAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// FindByCustomer returns the invoices issued to a customer
func (s *InvoiceService) FindByCustomer(ctx context.Context, customerID int64) ([]InvoiceResponse, error) {
	invoices, err := s.loadInvoices(ctx, func(ctx context.Context, repo invoicing.InvoiceRepository) ([]invoicing.Invoice, error) {
		return repo.FindByCustomer(ctx, customerID)
	})
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// FindByDateRange returns the invoices issued between from and to, both days included
func (s *InvoiceService) FindByDateRange(ctx context.Context, from, to time.Time) ([]InvoiceResponse, error) {
	invoices, _, err := s.invoicesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// TotalSales sums the totals of non-voided invoices in the range
func (s *InvoiceService) TotalSales(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	summary, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalSales, nil
}

// TotalTax sums the tax of non-voided invoices in the range
func (s *InvoiceService) TotalTax(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	summary, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalTax, nil
}

// TotalDiscount sums the discounts of non-voided invoices in the range
func (s *InvoiceService) TotalDiscount(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	summary, err := s.SalesSummary(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.TotalDiscount, nil
}

// SalesSummary aggregates the invoices of a date range. Voided invoices are
// counted apart and contribute nothing to the sums.
func (s *InvoiceService) SalesSummary(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	invoices, r, err := s.invoicesInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary := summarize(invoices, r)
	return &summary, nil
}

func summarize(invoices []invoicing.Invoice, r shared.DateRange) SalesSummary {
	sales, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	summary := SalesSummary{From: r.From, To: r.To}
	for i := range invoices {
		inv := &invoices[i]
		if inv.IsVoided() {
			summary.VoidedCount++
			continue
		}
		summary.InvoiceCount++
		sales = sales.Add(inv.Total())
		tax = tax.Add(inv.Tax())
		discount = discount.Add(inv.Discount())
	}
	summary.TotalSales = round(sales)
	summary.TotalTax = round(tax)
	summary.TotalDiscount = round(discount)
	return summary
}

func (s *InvoiceService) invoicesInRange(ctx context.Context, from, to time.Time) ([]invoicing.Invoice, shared.DateRange, error) {
	r, err := shared.NewDateRange(from, to)
	if err != nil {
		return nil, shared.DateRange{}, err
	}
	invoices, err := s.loadInvoices(ctx, func(ctx context.Context, repo invoicing.InvoiceRepository) ([]invoicing.Invoice, error) {
		return repo.FindByDateRange(ctx, r)
	})
	return invoices, r, err
}

func (s *InvoiceService) loadInvoices(ctx context.Context, load func(context.Context, invoicing.InvoiceRepository) ([]invoicing.Invoice, error)) ([]invoicing.Invoice, error) {
	var invoices []invoicing.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		invoices, err = load(ctx, repos.Invoices())
		return err
	})
	return invoices, err
}
