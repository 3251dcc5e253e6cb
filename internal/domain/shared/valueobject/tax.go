package valueobject

import (
	"fmt"
	"strings"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxCategory is one of the four fixed tax brackets applied per product line
type TaxCategory string

const (
	TaxExempt     TaxCategory = "EXEMPT"
	TaxOtherGoods TaxCategory = "OTHER_GOODS"
	TaxMedicine   TaxCategory = "MEDICINE"
	TaxVAT        TaxCategory = "VAT"
)

var hundred = decimal.NewFromInt(100)

var taxRates = map[TaxCategory]decimal.Decimal{
	TaxExempt:     decimal.Zero,
	TaxOtherGoods: decimal.NewFromInt(1),
	TaxMedicine:   decimal.NewFromInt(2),
	TaxVAT:        decimal.NewFromInt(13),
}

var taxDescriptions = map[TaxCategory]string{
	TaxExempt:     "Exempt",
	TaxOtherGoods: "Other goods and services (1%)",
	TaxMedicine:   "Medicine (2%)",
	TaxVAT:        "Value added tax (13%)",
}

// AllTaxCategories lists the categories in ascending rate order
func AllTaxCategories() []TaxCategory {
	return []TaxCategory{TaxExempt, TaxOtherGoods, TaxMedicine, TaxVAT}
}

// ParseTaxCategory parses a category name, case-insensitively
func ParseTaxCategory(s string) (TaxCategory, error) {
	c := TaxCategory(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewValidationError("INVALID_TAX_CATEGORY", fmt.Sprintf("Unknown tax category %q", s))
	}
	return c, nil
}

// IsValid reports whether c is one of the known categories
func (c TaxCategory) IsValid() bool {
	_, ok := taxRates[c]
	return ok
}

// Rate returns the percentage of the category, e.g. 13 for VAT
func (c TaxCategory) Rate() decimal.Decimal {
	return taxRates[c]
}

// Description returns a human readable label
func (c TaxCategory) Description() string {
	return taxDescriptions[c]
}

// TaxAmount computes base×rate/100 without rounding
func (c TaxCategory) TaxAmount(base decimal.Decimal) decimal.Decimal {
	return base.Mul(c.Rate()).Div(hundred)
}

// String implements fmt.Stringer
func (c TaxCategory) String() string {
	return string(c)
}
