package payment

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"golang.org/x/crypto/blake2b"
)

// Brand identifies a card network
type Brand string

const (
	BrandVisa            Brand = "VISA"
	BrandMastercard      Brand = "MASTERCARD"
	BrandAmericanExpress Brand = "AMERICAN_EXPRESS"
)

type brandRule struct {
	brand     Brand
	pattern   *regexp.Regexp
	cvvLength int
}

var brandRules = []brandRule{
	{BrandVisa, regexp.MustCompile(`^4[0-9]{12}(?:[0-9]{3})?$`), 3},
	{BrandMastercard, regexp.MustCompile(`^5[1-5][0-9]{14}$`), 3},
	{BrandAmericanExpress, regexp.MustCompile(`^3[47][0-9]{13}$`), 4},
}

var (
	separators = regexp.MustCompile(`[\s-]`)
	digitsOnly = regexp.MustCompile(`^[0-9]+$`)
)

// CVVLength returns the security code length expected by the brand
func (b Brand) CVVLength() int {
	for _, r := range brandRules {
		if r.brand == b {
			return r.cvvLength
		}
	}
	return 0
}

// DetectBrand returns the brand whose number pattern matches the digits
func DetectBrand(number string) (Brand, error) {
	for _, r := range brandRules {
		if r.pattern.MatchString(number) {
			return r.brand, nil
		}
	}
	return "", shared.NewValidationError("UNSUPPORTED_CARD", "Card number does not match a supported brand")
}

// NormalizeCardNumber strips spaces and dashes from a card number
func NormalizeCardNumber(number string) string {
	return separators.ReplaceAllString(number, "")
}

// LuhnValid runs the Luhn checksum over a digits-only string
func LuhnValid(number string) bool {
	if number == "" || !digitsOnly.MatchString(number) {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// YearMonth is a card expiry
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// YearMonthOf returns the year and month of t
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseExpiry parses "MM/YY" or "MM/YYYY"
func ParseExpiry(s string) (YearMonth, error) {
	invalid := shared.NewValidationError("INVALID_EXPIRY", fmt.Sprintf("Expiry %q must be MM/YY or MM/YYYY", s))

	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || len(parts[0]) != 2 {
		return YearMonth{}, invalid
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return YearMonth{}, invalid
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return YearMonth{}, invalid
	}
	switch len(parts[1]) {
	case 2:
		year += 2000
	case 4:
	default:
		return YearMonth{}, invalid
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

// Before reports whether ym is strictly earlier than other
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

// IsZero reports whether the expiry is unset
func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// String formats the expiry as MM/YYYY
func (ym YearMonth) String() string {
	return fmt.Sprintf("%02d/%04d", int(ym.Month), ym.Year)
}

// CardCredential is the raw card data presented at the till. It only lives
// for the duration of a payment request and is never stored.
type CardCredential struct {
	number string
	holder string
	expiry YearMonth
	cvv    string
	brand  Brand
}

// NewCardCredential validates raw card data against the current month
func NewCardCredential(number, holder string, expiry YearMonth, cvv string) (*CardCredential, error) {
	return newCardCredentialAt(number, holder, expiry, cvv, time.Now())
}

func newCardCredentialAt(number, holder string, expiry YearMonth, cvv string, now time.Time) (*CardCredential, error) {
	number = NormalizeCardNumber(number)
	if number == "" || !digitsOnly.MatchString(number) {
		return nil, shared.NewValidationError("INVALID_CARD_NUMBER", "Card number must contain only digits")
	}
	brand, err := DetectBrand(number)
	if err != nil {
		return nil, err
	}
	if !LuhnValid(number) {
		return nil, shared.NewValidationError("INVALID_CARD_NUMBER", "Card number failed the checksum")
	}

	holder = strings.TrimSpace(holder)
	if holder == "" {
		return nil, shared.NewValidationError("INVALID_HOLDER", "Card holder name is required")
	}

	if expiry.IsZero() || expiry.Month < time.January || expiry.Month > time.December {
		return nil, shared.NewValidationError("INVALID_EXPIRY", "Card expiry is required")
	}
	if expiry.Before(YearMonthOf(now)) {
		return nil, shared.NewValidationError("CARD_EXPIRED", fmt.Sprintf("Card expired on %s", expiry))
	}

	cvv = strings.TrimSpace(cvv)
	if len(cvv) != brand.CVVLength() || !digitsOnly.MatchString(cvv) {
		return nil, shared.NewValidationError("INVALID_CVV",
			fmt.Sprintf("%s cards require a %d digit security code", brand, brand.CVVLength()))
	}

	return &CardCredential{
		number: number,
		holder: holder,
		expiry: expiry,
		cvv:    cvv,
		brand:  brand,
	}, nil
}

// Brand returns the detected brand
func (c *CardCredential) Brand() Brand { return c.brand }

// Holder returns the card holder name
func (c *CardCredential) Holder() string { return c.holder }

// Expiry returns the card expiry
func (c *CardCredential) Expiry() YearMonth { return c.expiry }

// LastFour returns the last four digits of the number
func (c *CardCredential) LastFour() string {
	return c.number[len(c.number)-4:]
}

// Details returns the storable projection of the card, without the number or CVV
func (c *CardCredential) Details() CardDetails {
	sum := blake2b.Sum256([]byte(c.number))
	return CardDetails{
		Brand:       c.brand,
		Holder:      c.holder,
		LastFour:    c.LastFour(),
		Masked:      "**** **** **** " + c.LastFour(),
		Expiry:      c.expiry,
		Fingerprint: hex.EncodeToString(sum[:]),
	}
}

// CardDetails is what gets recorded about a card payment
type CardDetails struct {
	Brand       Brand     `json:"brand"`
	Holder      string    `json:"holder"`
	LastFour    string    `json:"last_four"`
	Masked      string    `json:"masked"`
	Expiry      YearMonth `json:"expiry"`
	Fingerprint string    `json:"fingerprint"`
}
