package payment

import (
	"testing"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCashPayment(t *testing.T) {
	t.Run("base currency forces rate one", func(t *testing.T) {
		p, err := NewCashPayment(1, decimal.NewFromInt(5000), valueobject.CRC, decimal.NewFromInt(999))
		require.NoError(t, err)

		assert.True(t, p.IsCash())
		assert.False(t, p.IsCard())
		assert.False(t, p.IsForeign())
		assert.True(t, p.ExchangeRate.Equal(decimal.NewFromInt(1)))
		assert.True(t, p.BaseAmount.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("foreign currency converts with rate", func(t *testing.T) {
		p, err := NewCashPayment(2, decimal.NewFromInt(10), valueobject.USD, decimal.RequireFromString("510.25"))
		require.NoError(t, err)

		assert.True(t, p.IsForeign())
		assert.True(t, p.BaseAmount.Equal(decimal.RequireFromString("5102.5")))

		usd, err := p.AmountIn(valueobject.USD)
		require.NoError(t, err)
		assert.True(t, usd.Equal(decimal.NewFromInt(10)))

		crc, err := p.AmountIn(valueobject.CRC)
		require.NoError(t, err)
		assert.True(t, crc.Equal(p.BaseAmount))
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewCashPayment(1, decimal.Zero, valueobject.CRC, decimal.Zero)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))

		_, err = NewCashPayment(1, decimal.NewFromInt(10), "", decimal.Zero)
		assert.ErrorIs(t, err, shared.NewValidationError("CURRENCY_REQUIRED", ""))

		_, err = NewCashPayment(1, decimal.NewFromInt(10), valueobject.USD, decimal.Zero)
		assert.ErrorIs(t, err, valueobject.ErrInvalidExchangeRate)

		_, err = NewCashPayment(0, decimal.NewFromInt(10), valueobject.CRC, decimal.Zero)
		require.Error(t, err)
	})

	t.Run("base payment cannot be expressed in a foreign currency", func(t *testing.T) {
		p, err := NewCashPayment(3, decimal.NewFromInt(100), valueobject.CRC, decimal.Zero)
		require.NoError(t, err)

		_, err = p.AmountIn(valueobject.USD)
		require.Error(t, err)
	})
}

func TestNewCardPayment(t *testing.T) {
	cred, err := NewCardCredential("4111111111111111", "Ana Mora", YearMonthOf(time.Now().AddDate(1, 0, 0)), "123")
	require.NoError(t, err)

	p, err := NewCardPayment(4, decimal.NewFromInt(4017), cred)
	require.NoError(t, err)

	assert.True(t, p.IsCard())
	assert.Equal(t, valueobject.BaseCurrency, p.Currency())
	assert.True(t, p.BaseAmount.Equal(decimal.NewFromInt(4017)))
	require.NotNil(t, p.Card)
	assert.Equal(t, "**** **** **** 1111", p.Card.Masked)

	_, err = NewCardPayment(5, decimal.NewFromInt(10), nil)
	require.Error(t, err)

	_, err = NewCardPayment(5, decimal.NewFromInt(-10), cred)
	require.Error(t, err)
}

func TestPayment_Equals(t *testing.T) {
	a, err := NewCashPayment(7, decimal.NewFromInt(1), valueobject.CRC, decimal.Zero)
	require.NoError(t, err)
	b, err := NewCashPayment(7, decimal.NewFromInt(2), valueobject.CRC, decimal.Zero)
	require.NoError(t, err)
	c, err := NewCashPayment(8, decimal.NewFromInt(1), valueobject.CRC, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}
