// Package conversion converts amounts between currencies of one rate table.
package conversion

import (
	"errors"
	"fmt"
	"strings"

	"ratesvc/internal/model"

	"github.com/shopspring/decimal"
)

// divisionPrecision is the number of fractional digits kept when dividing by a rate.
const divisionPrecision = 16

// ErrUnknownCurrency is returned by ConvertStrict when a code is missing from the table.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrInvalidAmount is returned by ParseAmount for input that is not a decimal number.
var ErrInvalidAmount = errors.New("invalid amount")

// Convert returns amount / rate[from] * rate[to]. It returns zero when either code is
// missing from table.
func Convert(amount decimal.Decimal, from, to string, table *model.RateTable) decimal.Decimal {
	out, err := ConvertStrict(amount, from, to, table)
	if err != nil {
		return decimal.Zero
	}
	return out
}

// ConvertStrict is Convert that reports a missing code instead of returning zero.
func ConvertStrict(amount decimal.Decimal, from, to string, table *model.RateTable) (decimal.Decimal, error) {
	fromRate, ok := table.Rate(from)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, model.NormalizeCode(from))
	}
	toRate, ok := table.Rate(to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownCurrency, model.NormalizeCode(to))
	}
	return amount.DivRound(fromRate, divisionPrecision).Mul(toRate), nil
}

// Format renders v with exactly two fractional digits and comma thousands grouping,
// for example 1,234.50.
func Format(v decimal.Decimal) string {
	s := v.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// ParseAmount parses user input that may carry comma grouping, such as "1,234.5".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}
