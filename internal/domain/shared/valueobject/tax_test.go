package valueobject

import (
	"testing"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxCategory_Rates(t *testing.T) {
	tests := []struct {
		category TaxCategory
		rate     int64
	}{
		{TaxExempt, 0},
		{TaxOtherGoods, 1},
		{TaxMedicine, 2},
		{TaxVAT, 13},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.True(t, tt.category.Rate().Equal(decimal.NewFromInt(tt.rate)))
			assert.NotEmpty(t, tt.category.Description())
		})
	}
}

func TestTaxCategory_TaxAmount(t *testing.T) {
	assert.True(t, TaxVAT.TaxAmount(decimal.NewFromInt(2400)).Equal(decimal.NewFromInt(312)))
	assert.True(t, TaxVAT.TaxAmount(decimal.NewFromInt(1500)).Equal(decimal.NewFromInt(195)))
	assert.True(t, TaxExempt.TaxAmount(decimal.NewFromInt(1500)).IsZero())

	// no intermediate rounding
	amount := TaxOtherGoods.TaxAmount(decimal.RequireFromString("0.55"))
	assert.Equal(t, "0.0055", amount.String())
}

func TestParseTaxCategory(t *testing.T) {
	c, err := ParseTaxCategory("vat")
	require.NoError(t, err)
	assert.Equal(t, TaxVAT, c)

	_, err = ParseTaxCategory("LUXURY")
	require.Error(t, err)
	assert.Equal(t, shared.KindValidation, shared.KindOf(err))
}

func TestCurrencyConversion(t *testing.T) {
	rate := decimal.RequireFromString("520.50")

	base, err := ToBaseCurrency(decimal.NewFromInt(10), rate)
	require.NoError(t, err)
	assert.True(t, base.Equal(decimal.NewFromInt(5205)))

	foreign, err := FromBaseCurrency(decimal.NewFromInt(5205), rate)
	require.NoError(t, err)
	assert.True(t, foreign.Equal(decimal.NewFromInt(10)))

	t.Run("zero rate fails", func(t *testing.T) {
		_, err := FromBaseCurrency(decimal.NewFromInt(100), decimal.Zero)
		assert.ErrorIs(t, err, ErrInvalidExchangeRate)

		_, err = ToBaseCurrency(decimal.NewFromInt(100), decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, ErrInvalidExchangeRate)
	})
}
