package valueobject

import (
	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrInvalidExchangeRate is returned when a conversion needs a rate that is zero,
// negative or was never configured.
var ErrInvalidExchangeRate = shared.NewValidationError("INVALID_EXCHANGE_RATE", "Exchange rate must be greater than zero")

// ToBaseCurrency converts a foreign amount into the base currency: amount×rate.
func ToBaseCurrency(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	return amount.Mul(rate), nil
}

// FromBaseCurrency converts a base-currency amount into a foreign one: amount÷rate.
func FromBaseCurrency(amount, rate decimal.Decimal) (decimal.Decimal, error) {
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidExchangeRate
	}
	return amount.Div(rate), nil
}
