package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/pos/internal/application/concurrency"
	"github.com/erp/pos/internal/application/inventory"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/erp/pos/internal/domain/invoicing"
	"github.com/erp/pos/internal/domain/partner"
	"github.com/erp/pos/internal/domain/payment"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/erp/pos/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService is the only place where products, customers and invoices
// change together. Stock is reserved when an invoice is created or a line is
// added, and released when a line is removed or the invoice is voided. While
// an invoice is open the customer holds exactly the points it is due.
type InvoiceService struct {
	scope    TransactionScope
	ids      shared.IDGenerator
	reserver *inventory.StockReserver
	rates    *CurrencyTable
	policy   concurrency.Policy
	logger   *zap.Logger

	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        BusinessMetrics
	archive        ReportArchive
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope TransactionScope,
	ids shared.IDGenerator,
	rates *CurrencyTable,
	policy concurrency.Policy,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rates == nil {
		rates, _ = NewCurrencyTable(nil)
	}
	return &InvoiceService{
		scope:          scope,
		ids:            ids,
		reserver:       inventory.NewStockReserver(policy, logger),
		rates:          rates,
		policy:         policy,
		logger:         logger,
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
	}
}

// SetEventPublisher sets the publisher that receives committed domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables idempotency keys on payments
func (s *InvoiceService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	s.idempotency = store
	if ttl > 0 {
		s.idempotencyTTL = ttl
	}
}

// SetBusinessMetrics sets the business metrics recorder
func (s *InvoiceService) SetBusinessMetrics(m BusinessMetrics) {
	s.metrics = m
}

// SetReportArchive sets where archived sales reports are stored
func (s *InvoiceService) SetReportArchive(archive ReportArchive) {
	s.archive = archive
}

// CreateInvoice issues an invoice from live catalog and customer state.
// Either every line's stock is reserved and the invoice is stored, or
// nothing changes.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "CreateInvoice")
	defer func() { endSpan(span, err) }()

	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	number, err := s.ids.NextID(ctx, shared.SequenceInvoice)
	if err != nil {
		return nil, fmt.Errorf("allocate invoice number: %w", err)
	}
	telemetry.SetAttributes(span, "invoice.number", number, "invoice.lines", len(req.Lines))

	var (
		inv    *invoicing.Invoice
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		events = nil
		customer, err := findCustomer(ctx, repos.Customers(), req.CustomerID)
		if err != nil {
			return err
		}

		inv, err = invoicing.NewInvoice(number, invoicing.CustomerRefOf(customer), req.CreatedBy)
		if err != nil {
			return err
		}
		for _, l := range req.Lines {
			product, err := findProduct(ctx, repos.Products(), l.ProductID)
			if err != nil {
				return err
			}
			if _, err := inv.AddLine(product, l.Quantity); err != nil {
				return err
			}
		}

		var undo compensation
		reservations := reservationsOf(inv.Lines())
		reserved, err := s.reserver.ReserveAll(ctx, repos.Products(), reservations)
		if err != nil {
			s.recordConflict(ctx, "create_invoice", err)
			return err
		}
		undo.push("release reserved stock", func(ctx context.Context) error {
			s.reserver.ReleaseAll(ctx, repos.Products(), reservations)
			return nil
		})
		events = append(events, productEvents(reserved)...)

		inv.RecordPointsAwarded(inv.PointsDue())
		pointEvents, err := s.adjustPoints(ctx, repos.Customers(), inv, 0, &undo)
		if err != nil {
			undo.run(ctx, s.logger)
			return err
		}
		events = append(events, pointEvents...)

		inv.RecordCreation()
		if err := repos.Invoices().Save(ctx, inv); err != nil {
			undo.run(ctx, s.logger)
			return fmt.Errorf("save invoice %d: %w", number, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, append(events, inv.GetDomainEvents()...))
	inv.ClearDomainEvents()
	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated(ctx, inv.Total(), len(inv.Lines()))
	}
	s.logger.Info("invoice created",
		zap.Int64("invoice_number", number),
		zap.Int64("customer_id", inv.Customer.ID),
		zap.String("total", inv.Total().StringFixed(2)),
		zap.Int("points_awarded", inv.PointsAwarded()),
	)

	out := ToInvoiceResponse(inv)
	return &out, nil
}

// AddInvoiceLine adds units of a product to an open invoice. A product that
// is already on the invoice has its line increased; otherwise a new line is
// appended. Only the added quantity is reserved.
func (s *InvoiceService) AddInvoiceLine(ctx context.Context, number int64, req AddInvoiceLineRequest) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "AddInvoiceLine")
	defer func() { endSpan(span, err) }()

	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}

	var (
		inv    *invoicing.Invoice
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		events = nil
		var undo compensation
		product, err := findProduct(ctx, repos.Products(), req.ProductID)
		if err != nil {
			return err
		}

		var awardedBefore int
		inv, awardedBefore, err = s.changeLines(ctx, repos, number, &undo, func(current *invoicing.Invoice) error {
			if _, exists := current.LineForProduct(product.ID); exists {
				_, err := current.IncreaseLine(product, req.Quantity)
				return err
			}
			_, err := current.AddLine(product, req.Quantity)
			return err
		})
		if err != nil {
			return err
		}

		reserved, err := s.reserver.Reserve(ctx, repos.Products(), product.ID, req.Quantity)
		if err != nil {
			s.recordConflict(ctx, "add_invoice_line", err)
			undo.run(ctx, s.logger)
			return err
		}
		undo.push("release reserved stock", func(ctx context.Context) error {
			_, err := s.reserver.Release(ctx, repos.Products(), product.ID, req.Quantity)
			return err
		})
		events = append(events, reserved.GetDomainEvents()...)

		pointEvents, err := s.adjustPoints(ctx, repos.Customers(), inv, awardedBefore, &undo)
		if err != nil {
			undo.run(ctx, s.logger)
			return err
		}
		events = append(events, pointEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	out := ToInvoiceResponse(inv)
	return &out, nil
}

// RemoveInvoiceLine drops a line from an open invoice and returns its
// reserved stock.
func (s *InvoiceService) RemoveInvoiceLine(ctx context.Context, number int64, lineNumber int) (resp *InvoiceResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "RemoveInvoiceLine")
	defer func() { endSpan(span, err) }()

	var (
		inv    *invoicing.Invoice
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		events = nil
		var (
			undo          compensation
			removed       invoicing.LineItem
			awardedBefore int
		)
		inv, awardedBefore, err = s.changeLines(ctx, repos, number, &undo, func(current *invoicing.Invoice) error {
			var err error
			removed, err = current.RemoveLine(lineNumber)
			return err
		})
		if err != nil {
			return err
		}

		released, err := s.reserver.Release(ctx, repos.Products(), removed.ProductID, removed.Quantity)
		if err != nil {
			undo.run(ctx, s.logger)
			return fmt.Errorf("release stock of product %d: %w", removed.ProductID, err)
		}
		undo.push("re-reserve released stock", func(ctx context.Context) error {
			_, err := s.reserver.Reserve(ctx, repos.Products(), removed.ProductID, removed.Quantity)
			return err
		})
		events = append(events, released.GetDomainEvents()...)

		pointEvents, err := s.adjustPoints(ctx, repos.Customers(), inv, awardedBefore, &undo)
		if err != nil {
			undo.run(ctx, s.logger)
			return err
		}
		events = append(events, pointEvents...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	out := ToInvoiceResponse(inv)
	return &out, nil
}

// changeLines applies a line change to an open invoice under optimistic
// locking. The customer copy is refreshed first so the discount and the
// points due follow the customer's current state. It returns the saved
// invoice and the points it had awarded before the change.
func (s *InvoiceService) changeLines(
	ctx context.Context,
	repos Repositories,
	number int64,
	undo *compensation,
	mutate func(*invoicing.Invoice) error,
) (*invoicing.Invoice, int, error) {
	var awardedBefore int
	inv, err := concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("change lines of invoice %d", number),
		func(ctx context.Context) (*invoicing.Invoice, error) {
			current, err := findInvoice(ctx, repos.Invoices(), number)
			if err != nil {
				return nil, err
			}
			customer, err := findCustomer(ctx, repos.Customers(), current.Customer.ID)
			if err != nil {
				return nil, err
			}
			before := current.Snapshot()
			if err := current.RefreshCustomer(invoicing.CustomerRefOf(customer)); err != nil {
				return nil, err
			}
			if err := mutate(current); err != nil {
				return nil, err
			}
			awardedBefore = current.PointsAwarded()
			current.RecordPointsAwarded(current.PointsDue())
			if err := repos.Invoices().SaveWithLock(ctx, current); err != nil {
				return nil, err
			}
			undo.push("restore invoice lines", func(ctx context.Context) error {
				restored := invoicing.RestoreInvoice(before)
				restored.Version = current.Version
				return repos.Invoices().SaveWithLock(ctx, restored)
			})
			return current, nil
		})
	if err != nil {
		return nil, 0, err
	}
	return inv, awardedBefore, nil
}

// adjustPoints moves the customer's balance by the change in the invoice's
// awarded points since awardedBefore and pushes the matching undo step.
func (s *InvoiceService) adjustPoints(
	ctx context.Context,
	customers partner.CustomerRepository,
	inv *invoicing.Invoice,
	awardedBefore int,
	undo *compensation,
) ([]shared.DomainEvent, error) {
	delta := inv.PointsAwarded() - awardedBefore
	if delta == 0 {
		return nil, nil
	}

	reason := fmt.Sprintf("invoice %d", inv.Number())
	var moved int
	c, err := s.updateCustomer(ctx, customers, inv.Customer.ID, func(c *partner.Customer) error {
		if delta > 0 {
			moved = delta
			_, err := c.AccruePoints(delta, reason)
			return err
		}
		reversed, err := c.ReversePoints(-delta, reason)
		moved = -reversed
		return err
	})
	if err != nil {
		return nil, err
	}
	if moved != delta {
		s.logger.Warn("customer had spent part of the invoice's points",
			zap.Int64("invoice_number", inv.Number()),
			zap.Int64("customer_id", inv.Customer.ID),
			zap.Int("to_reverse", -delta),
			zap.Int("reversed", -moved),
		)
	}

	undo.push("restore loyalty points", func(ctx context.Context) error {
		_, err := s.updateCustomer(ctx, customers, inv.Customer.ID, func(c *partner.Customer) error {
			if moved > 0 {
				_, err := c.ReversePoints(moved, reason+" rollback")
				return err
			}
			_, err := c.AccruePoints(-moved, reason+" rollback")
			return err
		})
		return err
	})
	return c.GetDomainEvents(), nil
}

// ProcessPayment settles an open invoice. With an idempotency key, a request
// that was already handled returns the stored invoice instead of paying again.
func (s *InvoiceService) ProcessPayment(ctx context.Context, number int64, req ProcessPaymentRequest) (result *PaymentResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "ProcessPayment")
	defer func() { endSpan(span, err) }()
	telemetry.SetAttributes(span, "invoice.number", number, "payment.method", req.Method)

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" && s.idempotency != nil {
		storeKey := fmt.Sprintf("payment:%d:%s", number, key)
		fresh, markErr := s.idempotency.MarkProcessed(ctx, storeKey, s.idempotencyTTL)
		if markErr != nil {
			return nil, fmt.Errorf("check idempotency key: %w", markErr)
		}
		if !fresh {
			return s.replayPayment(ctx, number)
		}
		defer func() {
			if err != nil {
				if rerr := s.idempotency.Release(ctx, storeKey); rerr != nil {
					s.logger.Warn("failed to release idempotency key", zap.String("key", storeKey), zap.Error(rerr))
				}
			}
		}()
	}

	method := payment.Method(strings.ToUpper(strings.TrimSpace(req.Method)))
	// The payment id is drawn before the transaction opens; the sequence
	// commits on its own connection.
	p, err := s.buildPayment(ctx, method, req)
	if err != nil {
		s.recordRejection(ctx, method, err)
		return nil, err
	}

	var inv *invoicing.Invoice
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		inv, err = findInvoice(ctx, repos.Invoices(), number)
		if err != nil {
			return err
		}
		if err := ensurePayable(inv); err != nil {
			return err
		}

		inv, err = concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("pay invoice %d", number),
			func(ctx context.Context) (*invoicing.Invoice, error) {
				current, err := findInvoice(ctx, repos.Invoices(), number)
				if err != nil {
					return nil, err
				}
				if err := current.RegisterPayment(p); err != nil {
					return nil, err
				}
				if err := repos.Invoices().SaveWithLock(ctx, current); err != nil {
					return nil, err
				}
				return current, nil
			})
		return err
	})
	if err != nil {
		s.recordRejection(ctx, method, err)
		return nil, err
	}

	s.publish(ctx, inv.GetDomainEvents())
	inv.ClearDomainEvents()
	if s.metrics != nil {
		s.metrics.RecordInvoicePaid(ctx, string(method), inv.Payment().BaseAmount)
	}
	s.logger.Info("invoice paid",
		zap.Int64("invoice_number", number),
		zap.String("method", string(method)),
		zap.String("currency", string(inv.Payment().Currency())),
		zap.String("change", inv.Change().StringFixed(2)),
	)

	out := ToInvoiceResponse(inv)
	return &PaymentResult{Invoice: &out, Change: out.Change}, nil
}

func (s *InvoiceService) replayPayment(ctx context.Context, number int64) (*PaymentResult, error) {
	var inv *invoicing.Invoice
	err := s.scope.Execute(ctx, func(repos Repositories) error {
		var err error
		inv, err = findInvoice(ctx, repos.Invoices(), number)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !inv.IsClosed() {
		return nil, shared.NewConflictError("REQUEST_IN_PROGRESS",
			fmt.Sprintf("A payment for invoice %d with this key is still being processed", number))
	}
	out := ToInvoiceResponse(inv)
	return &PaymentResult{Invoice: &out, Change: out.Change, Replayed: true}, nil
}

func (s *InvoiceService) buildPayment(ctx context.Context, method payment.Method, req ProcessPaymentRequest) (*payment.Payment, error) {
	if !method.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %q", req.Method))
	}
	currency, err := valueobject.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}

	id, err := s.ids.NextID(ctx, shared.SequencePayment)
	if err != nil {
		return nil, fmt.Errorf("allocate payment id: %w", err)
	}

	switch method {
	case payment.MethodCard:
		if !currency.IsBase() {
			return nil, shared.NewValidationError("UNSUPPORTED_CURRENCY",
				fmt.Sprintf("Card payments are charged in %s", valueobject.BaseCurrency))
		}
		if req.Card == nil {
			return nil, shared.NewValidationError("INVALID_CARD", "Card data is required for card payments")
		}
		expiry, err := payment.ParseExpiry(req.Card.Expiry)
		if err != nil {
			return nil, err
		}
		cred, err := payment.NewCardCredential(req.Card.Number, req.Card.Holder, expiry, req.Card.CVV)
		if err != nil {
			return nil, err
		}
		return payment.NewCardPayment(id, req.Amount, cred)
	default:
		rate, err := s.rateFor(currency, req)
		if err != nil {
			return nil, err
		}
		return payment.NewCashPayment(id, req.Amount, currency, rate)
	}
}

func (s *InvoiceService) rateFor(currency valueobject.Currency, req ProcessPaymentRequest) (decimal.Decimal, error) {
	if req.ExchangeRate != nil && !currency.IsBase() {
		return *req.ExchangeRate, nil
	}
	return s.rates.RateFor(currency)
}

// VoidInvoice cancels an open invoice, returns its stock and takes back the
// points it awarded. Voiding twice is a no-op reported as false.
func (s *InvoiceService) VoidInvoice(ctx context.Context, number int64, reason string) (result *VoidResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InvoiceService", "VoidInvoice")
	defer func() { endSpan(span, err) }()

	var (
		inv    *invoicing.Invoice
		voided bool
		events []shared.DomainEvent
	)
	err = s.scope.Execute(ctx, func(repos Repositories) error {
		events = nil
		var undo compensation

		inv, err = concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("void invoice %d", number),
			func(ctx context.Context) (*invoicing.Invoice, error) {
				current, err := findInvoice(ctx, repos.Invoices(), number)
				if err != nil {
					return nil, err
				}
				before := current.Snapshot()
				voided, err = current.Void(reason)
				if err != nil || !voided {
					return current, err
				}
				if err := repos.Invoices().SaveWithLock(ctx, current); err != nil {
					return nil, err
				}
				undo.push("restore invoice state", func(ctx context.Context) error {
					restored := invoicing.RestoreInvoice(before)
					restored.Version = current.Version
					return repos.Invoices().SaveWithLock(ctx, restored)
				})
				return current, nil
			})
		if err != nil || !voided {
			return err
		}

		for _, line := range inv.Lines() {
			released, err := s.reserver.Release(ctx, repos.Products(), line.ProductID, line.Quantity)
			if err != nil {
				undo.run(ctx, s.logger)
				return fmt.Errorf("release stock of product %d: %w", line.ProductID, err)
			}
			undo.push("re-reserve released stock", func(ctx context.Context) error {
				_, err := s.reserver.Reserve(ctx, repos.Products(), line.ProductID, line.Quantity)
				return err
			})
			events = append(events, released.GetDomainEvents()...)
		}

		if points := inv.PointsAwarded(); points > 0 {
			var reversed int
			c, err := s.updateCustomer(ctx, repos.Customers(), inv.Customer.ID, func(c *partner.Customer) error {
				var err error
				reversed, err = c.ReversePoints(points, fmt.Sprintf("void invoice %d", number))
				return err
			})
			if err != nil {
				undo.run(ctx, s.logger)
				return err
			}
			if reversed < points {
				s.logger.Warn("customer had spent part of the voided invoice's points",
					zap.Int64("invoice_number", number),
					zap.Int64("customer_id", inv.Customer.ID),
					zap.Int("awarded", points),
					zap.Int("reversed", reversed),
				)
			}
			events = append(events, c.GetDomainEvents()...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if voided {
		s.publish(ctx, append(events, inv.GetDomainEvents()...))
		inv.ClearDomainEvents()
		if s.metrics != nil {
			s.metrics.RecordInvoiceVoided(ctx)
		}
		s.logger.Info("invoice voided", zap.Int64("invoice_number", number), zap.String("reason", inv.VoidReason()))
	}

	out := ToInvoiceResponse(inv)
	return &VoidResult{Invoice: &out, Voided: voided}, nil
}

func (s *InvoiceService) updateCustomer(ctx context.Context, customers partner.CustomerRepository, id int64, mutate func(*partner.Customer) error) (*partner.Customer, error) {
	return concurrency.Retry(ctx, s.policy, s.logger, fmt.Sprintf("update customer %d", id),
		func(ctx context.Context) (*partner.Customer, error) {
			c, err := findCustomer(ctx, customers, id)
			if err != nil {
				return nil, err
			}
			if err := mutate(c); err != nil {
				return nil, err
			}
			if err := customers.SaveWithLock(ctx, c); err != nil {
				return nil, err
			}
			return c, nil
		})
}

func (s *InvoiceService) recordRejection(ctx context.Context, method payment.Method, err error) {
	if s.metrics != nil {
		s.metrics.RecordPaymentRejected(ctx, string(method), string(shared.KindOf(err)))
	}
}

func (s *InvoiceService) recordConflict(ctx context.Context, op string, err error) {
	if s.metrics != nil && errors.Is(err, shared.ErrTransientConflict) {
		s.metrics.RecordStockConflict(ctx, op)
	}
}

func (s *InvoiceService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Int("count", len(events)), zap.Error(err))
	}
}

func validateCreateRequest(req CreateInvoiceRequest) error {
	if req.CustomerID <= 0 {
		return shared.NewValidationError("INVALID_CUSTOMER", "Customer id must be positive")
	}
	if len(req.Lines) == 0 {
		return shared.NewValidationError("EMPTY_INVOICE", "An invoice needs at least one line")
	}
	seen := make(map[int64]struct{}, len(req.Lines))
	for _, l := range req.Lines {
		if l.ProductID <= 0 {
			return shared.NewValidationError("INVALID_PRODUCT", "Product id must be positive")
		}
		if l.Quantity <= 0 {
			return shared.NewValidationError("INVALID_QUANTITY",
				fmt.Sprintf("Quantity for product %d must be greater than zero", l.ProductID))
		}
		if _, dup := seen[l.ProductID]; dup {
			return shared.NewValidationError("DUPLICATE_PRODUCT",
				fmt.Sprintf("Product %d appears on more than one line", l.ProductID))
		}
		seen[l.ProductID] = struct{}{}
	}
	return nil
}

func ensurePayable(inv *invoicing.Invoice) error {
	switch {
	case inv.IsVoided():
		return shared.NewStateError("INVALID_STATE", fmt.Sprintf("Invoice %d was voided and cannot be paid", inv.Number()))
	case inv.IsClosed():
		return shared.NewStateError("INVALID_STATE", fmt.Sprintf("Invoice %d is already paid", inv.Number()))
	}
	return nil
}

func reservationsOf(lines []invoicing.LineItem) []inventory.Reservation {
	out := make([]inventory.Reservation, len(lines))
	for i, l := range lines {
		out[i] = inventory.Reservation{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return out
}

func productEvents(products []*catalog.Product) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, p := range products {
		events = append(events, p.GetDomainEvents()...)
	}
	return events
}
