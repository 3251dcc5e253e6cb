package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, USD, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		require.Error(t, err)
		assert.Equal(t, shared.KindValidation, shared.KindOf(err))
	})
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, USD, c)
	assert.False(t, c.IsBase())
	assert.True(t, CRC.IsBase())

	_, err = ParseCurrency("")
	require.Error(t, err)
	assert.Contains(t, err.(*shared.DomainError).Code, "CURRENCY_REQUIRED")

	_, err = ParseCurrency("EUR")
	require.Error(t, err)
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewBaseMoney(decimal.NewFromInt(1000))
	b := NewBaseMoney(decimal.NewFromInt(250))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(1250)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(750)))

	assert.True(t, a.MultiplyByInt(3).Amount().Equal(decimal.NewFromInt(3000)))
	assert.True(t, a.Percentage(decimal.NewFromInt(10)).Amount().Equal(decimal.NewFromInt(100)))

	t.Run("currency mismatch", func(t *testing.T) {
		usd, _ := NewMoney(decimal.NewFromInt(5), USD)
		_, err := a.Add(usd)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")

		_, err = a.GreaterThanOrEqual(usd)
		require.Error(t, err)
	})
}

func TestMoney_String(t *testing.T) {
	m := NewBaseMoney(decimal.RequireFromString("4017.005"))
	assert.Equal(t, "4017.01 CRC", m.String())
	// full precision kept internally
	assert.Equal(t, "4017.005", m.Amount().String())
}

func TestMoney_JSON(t *testing.T) {
	m, _ := NewMoney(decimal.RequireFromString("12.5"), USD)
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"12.5","currency":"USD"}`, string(data))

	var out Money
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Equals(m))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc","currency":"USD"}`), &out))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("99.95"))
	assert.Equal(t, BaseCurrency, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("99.95")))

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	assert.Error(t, m.Scan(struct{}{}))
}
