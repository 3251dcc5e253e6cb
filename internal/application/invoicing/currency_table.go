package invoicing

import (
	"fmt"
	"sync"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CurrencyTable holds the configured exchange rates into the base currency
type CurrencyTable struct {
	mu    sync.RWMutex
	rates map[valueobject.Currency]decimal.Decimal
}

// NewCurrencyTable creates a table from currency code to base-currency rate
func NewCurrencyTable(rates map[string]decimal.Decimal) (*CurrencyTable, error) {
	t := &CurrencyTable{rates: make(map[valueobject.Currency]decimal.Decimal, len(rates))}
	for code, rate := range rates {
		c, err := valueobject.ParseCurrency(code)
		if err != nil {
			return nil, err
		}
		if err := t.Set(c, rate); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Set replaces the rate of a foreign currency
func (t *CurrencyTable) Set(c valueobject.Currency, rate decimal.Decimal) error {
	if c.IsBase() {
		return nil
	}
	if !rate.IsPositive() {
		return fmt.Errorf("rate for %s: %w", c, valueobject.ErrInvalidExchangeRate)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rates[c] = rate
	return nil
}

// RateFor returns how many base-currency units one unit of c is worth.
// The base currency is always 1; an unset foreign rate fails.
func (t *CurrencyTable) RateFor(c valueobject.Currency) (decimal.Decimal, error) {
	if c.IsBase() {
		return decimal.NewFromInt(1), nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rate, ok := t.rates[c]
	if !ok {
		return decimal.Zero, shared.NewValidationError("INVALID_EXCHANGE_RATE",
			fmt.Sprintf("No exchange rate configured for %s", c))
	}
	return rate, nil
}

// FromBase converts a base-currency amount into c
func (t *CurrencyTable) FromBase(amount decimal.Decimal, c valueobject.Currency) (decimal.Decimal, error) {
	rate, err := t.RateFor(c)
	if err != nil {
		return decimal.Zero, err
	}
	return valueobject.FromBaseCurrency(amount, rate)
}
