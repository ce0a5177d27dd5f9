// Package money implements exact two-decimal currency amounts.
//
// All arithmetic goes through shopspring/decimal; amounts are quantized to cents
// with round-half-up on construction, so equality checks are exact to the cent.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// places is the number of fractional digits every amount carries.
const places = 2

var (
	// ErrParse is the sentinel wrapped by every ParseError.
	ErrParse = errors.New("unparseable amount")

	// Zero is the zero amount. The zero value of Money is also zero.
	Zero = Money{}

	// Cent is the smallest representable amount.
	Cent = FromCents(1)

	numberRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)
)

// ParseError reports a string that could not be read as an amount.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", ErrParse, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Money is an exact amount with two fractional digits.
type Money struct {
	d decimal.Decimal
}

func quantize(d decimal.Decimal) Money {
	// decimal.Round rounds half away from zero, which is half-up for the
	// positive amounts found on receipts.
	return Money{d: d.Round(places)}
}

// FromCents builds an amount from a whole number of cents.
func FromCents(cents int64) Money {
	return Money{d: decimal.New(cents, -places)}
}

// Parse reads a price as printed on a receipt. A comma is accepted as the
// decimal separator, and when no separator is present at all the last two
// digits are taken as cents, since OCR regularly drops the separator glyph.
func Parse(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Zero, &ParseError{Input: s}
	}
	if !strings.Contains(s, ".") {
		if len(s) < 2 {
			s = "." + s
		} else {
			s = s[:len(s)-2] + "." + s[len(s)-2:]
		}
	}
	return parseNumber(s)
}

// ParseAmount reads an amount typed by a person, e.g. a corrected form value.
// Unlike Parse it never infers a missing separator: "12" is twelve.
func ParseAmount(s string) (Money, error) {
	return parseNumber(strings.TrimSpace(strings.ReplaceAll(s, ",", ".")))
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func parseNumber(s string) (Money, error) {
	if !numberRe.MatchString(s) {
		return Zero, &ParseError{Input: s}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, &ParseError{Input: s}
	}
	return quantize(d), nil
}

// Sum adds up all amounts.
func Sum(amounts ...Money) Money {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }
func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }
func (m Money) Neg() Money        { return Money{d: m.d.Neg()} }
func (m Money) Abs() Money        { return Money{d: m.d.Abs()} }

// MulInt multiplies the amount by a whole number.
func (m Money) MulInt(n int64) Money {
	return Money{d: m.d.Mul(decimal.NewFromInt(n))}
}

// Mod returns the remainder of m divided by o.
func (m Money) Mod(o Money) Money {
	return Money{d: m.d.Mod(o.d)}
}

// DivInt divides the amount by n, rounding half-up to cents. Callers that need
// an exact result must make sure m is a multiple of n cents first.
func (m Money) DivInt(n int64) Money {
	return quantize(m.d.Div(decimal.NewFromInt(n)))
}

func (m Money) Cmp(o Money) int    { return m.d.Cmp(o.d) }
func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }
func (m Money) IsZero() bool       { return m.d.IsZero() }
func (m Money) IsNegative() bool   { return m.d.IsNegative() }
func (m Money) Sign() int          { return m.d.Sign() }

// Decimal exposes the underlying value.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Cents returns the amount as a whole number of cents.
func (m Money) Cents() int64 {
	return m.d.Shift(places).IntPart()
}

// String formats the amount with a point separator, e.g. "12.34".
func (m Money) String() string {
	return m.d.StringFixed(places)
}

// Comma formats the amount the way Dutch receipts print it, e.g. "12,34".
func (m Money) Comma() string {
	return strings.Replace(m.String(), ".", ",", 1)
}

// Digits formats the amount without a separator, e.g. "1234".
func (m Money) Digits() string {
	return strings.Replace(m.String(), ".", "", 1)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		*m = Zero
		return nil
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Value stores the amount as TEXT.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return m.scanString(v)
	case []byte:
		return m.scanString(string(v))
	case int64:
		*m = Money{d: decimal.NewFromInt(v)}
		return nil
	case nil:
		*m = Zero
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
}

func (m *Money) scanString(s string) error {
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
