package payment

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Method is the payment instrument
type Method string

const (
	MethodCash Method = "CASH"
	MethodCard Method = "CARD"
)

// IsValid reports whether m is a known method
func (m Method) IsValid() bool {
	return m == MethodCash || m == MethodCard
}

// Payment records money received against an invoice.
// BaseAmount is the tendered amount expressed in the base currency and is
// what gets reconciled against invoice totals.
type Payment struct {
	ID           int64             `json:"id"`
	ReceivedAt   time.Time         `json:"received_at"`
	Method       Method            `json:"method"`
	Amount       valueobject.Money `json:"amount"`
	ExchangeRate decimal.Decimal   `json:"exchange_rate"`
	BaseAmount   decimal.Decimal   `json:"base_amount"`
	Card         *CardDetails      `json:"card,omitempty"`
}

// NewCashPayment creates a cash payment. Base currency payments always use a
// rate of 1; foreign payments need a positive rate.
func NewCashPayment(id int64, amount decimal.Decimal, currency valueobject.Currency, rate decimal.Decimal) (*Payment, error) {
	if err := validateCommon(id, amount); err != nil {
		return nil, err
	}
	money, err := valueobject.NewMoney(amount, currency)
	if err != nil {
		return nil, err
	}

	if currency.IsBase() {
		rate = decimal.NewFromInt(1)
	}
	base, err := valueobject.ToBaseCurrency(amount, rate)
	if err != nil {
		return nil, err
	}

	return &Payment{
		ID:           id,
		ReceivedAt:   time.Now(),
		Method:       MethodCash,
		Amount:       money,
		ExchangeRate: rate,
		BaseAmount:   base,
	}, nil
}

// NewCardPayment creates a card payment in the base currency
func NewCardPayment(id int64, amount decimal.Decimal, credential *CardCredential) (*Payment, error) {
	if err := validateCommon(id, amount); err != nil {
		return nil, err
	}
	if credential == nil {
		return nil, shared.NewValidationError("INVALID_CARD", "Card data is required for card payments")
	}
	details := credential.Details()

	return &Payment{
		ID:           id,
		ReceivedAt:   time.Now(),
		Method:       MethodCard,
		Amount:       valueobject.NewBaseMoney(amount),
		ExchangeRate: decimal.NewFromInt(1),
		BaseAmount:   amount,
		Card:         &details,
	}, nil
}

func validateCommon(id int64, amount decimal.Decimal) error {
	if id <= 0 {
		return shared.NewValidationError("INVALID_ID", "Payment id must be positive")
	}
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be greater than zero")
	}
	return nil
}

// Currency returns the tendered currency
func (p *Payment) Currency() valueobject.Currency {
	return p.Amount.Currency()
}

// IsCash reports whether the payment was made in cash
func (p *Payment) IsCash() bool { return p.Method == MethodCash }

// IsCard reports whether the payment was made by card
func (p *Payment) IsCard() bool { return p.Method == MethodCard }

// IsForeign reports whether the tendered currency is not the base currency
func (p *Payment) IsForeign() bool { return !p.Currency().IsBase() }

// AmountIn expresses the payment in target. Only the tendered currency and
// the base currency are known to the payment; anything else fails.
func (p *Payment) AmountIn(target valueobject.Currency) (decimal.Decimal, error) {
	switch {
	case target == p.Currency():
		return p.Amount.Amount(), nil
	case target.IsBase():
		return p.BaseAmount, nil
	default:
		return decimal.Zero, shared.NewValidationError("EXCHANGE_RATE_UNKNOWN",
			"Payment carries no exchange rate for "+string(target))
	}
}

// Equals compares payments by identifier
func (p *Payment) Equals(other *Payment) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.ID == other.ID
}
