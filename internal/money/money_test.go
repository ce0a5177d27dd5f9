package money

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "point separator", input: "12.34", want: "12.34"},
		{name: "missing separator", input: "1234", want: "12.34"},
		{name: "missing separator, cents only", input: "99", want: "0.99"},
		{name: "single digit becomes tenths", input: "5", want: "0.50"},
		{name: "one fractional digit", input: "3,5", want: "3.50"},
		{name: "rounds half up", input: "1.005", want: "1.01"},
		{name: "rounds down", input: "1.004", want: "1.00"},
		{name: "surrounding whitespace", input: " 2,10 ", want: "2.10"},
		{name: "leading zero", input: "0,05", want: "0.05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "abc", "1,2,3", "12a4", "-", "€1,00", "1e5"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "error should wrap ErrParse")

			var perr *ParseError
			assert.True(t, errors.As(err, &perr))
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	for cents := int64(0); cents <= 25000; cents += 7 {
		amount := FromCents(cents)
		for _, encoded := range []string{amount.String(), amount.Comma(), amount.Digits()} {
			got, err := Parse(encoded)
			require.NoError(t, err, "encoded %q", encoded)
			require.True(t, got.Equal(amount), "Parse(%q) = %s, want %s", encoded, got, amount)
		}
	}
}

func TestParseAmountKeepsWholeNumbers(t *testing.T) {
	got, err := ParseAmount("12")
	require.NoError(t, err)
	assert.Equal(t, "12.00", got.String())

	got, err = ParseAmount("7,5")
	require.NoError(t, err)
	assert.Equal(t, "7.50", got.String())
}

func TestArithmetic(t *testing.T) {
	price := MustParse("10,00")
	shares := int64(3)

	leftover := price.Mod(Cent.MulInt(shares))
	assert.Equal(t, "0.01", leftover.String())

	sharePrice := price.Sub(leftover).DivInt(shares)
	assert.Equal(t, "3.33", sharePrice.String())
	assert.True(t, sharePrice.MulInt(shares).Add(leftover).Equal(price))

	assert.Equal(t, int64(1000), price.Cents())
	assert.Equal(t, "-10.00", price.Neg().String())
	assert.Equal(t, "10.00", price.Neg().Abs().String())
	assert.Equal(t, "6.00", Sum(MustParse("1,50"), MustParse("2,25"), MustParse("2,25")).String())
	assert.True(t, Zero.IsZero())
	assert.True(t, Money{}.Equal(Zero))
}

func TestJSON(t *testing.T) {
	type payload struct {
		Amount Money `json:"amount"`
	}

	data, err := json.Marshal(payload{Amount: MustParse("3,40")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"3.40"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12"}`), &p))
	assert.Equal(t, "12.00", p.Amount.String())

	require.NoError(t, json.Unmarshal([]byte(`{"amount":4.5}`), &p))
	assert.Equal(t, "4.50", p.Amount.String())
}

func TestScan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("1.99"))
	assert.Equal(t, "1.99", m.String())

	require.NoError(t, m.Scan([]byte("0.10")))
	assert.Equal(t, "0.10", m.String())

	require.NoError(t, m.Scan(int64(3)))
	assert.Equal(t, "3.00", m.String())

	assert.Error(t, m.Scan(1.5))
}
