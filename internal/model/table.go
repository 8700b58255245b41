package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrDuplicateCode is returned when a table would hold two rates for one code.
var ErrDuplicateCode = errors.New("duplicate currency code")

// ErrNonPositiveRate is returned when a rate is zero or negative.
var ErrNonPositiveRate = errors.New("rate must be positive")

// CurrencyRate is the value of one unit of the pivot currency expressed in Code.
type CurrencyRate struct {
	Code      string
	Name      string
	Flag      string
	Rate      decimal.Decimal
	FetchedAt time.Time
}

// NewCurrencyRate builds a CurrencyRate with catalog display metadata.
func NewCurrencyRate(code string, rate decimal.Decimal, fetchedAt time.Time) CurrencyRate {
	code = NormalizeCode(code)
	info := LookupCurrency(code)
	return CurrencyRate{
		Code:      code,
		Name:      info.Name,
		Flag:      info.Flag,
		Rate:      rate,
		FetchedAt: fetchedAt,
	}
}

// FormattedRate renders the rate for display: 2 decimals at or above 1, 4 below.
func (r CurrencyRate) FormattedRate() string {
	if r.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return r.Rate.StringFixed(2)
	}
	return r.Rate.StringFixed(4)
}

// RateTable is an immutable snapshot of rates relative to one pivot currency.
// Tables are replaced as a whole, never updated in place.
type RateTable struct {
	pivot     string
	fetchedAt time.Time
	rates     []CurrencyRate
	index     map[string]int
}

// NewRateTable validates rates and builds a table. Every rate's FetchedAt is set to
// the table's fetchedAt.
func NewRateTable(pivot string, fetchedAt time.Time, rates []CurrencyRate) (*RateTable, error) {
	t := &RateTable{
		pivot:     NormalizeCode(pivot),
		fetchedAt: fetchedAt,
		rates:     make([]CurrencyRate, 0, len(rates)),
		index:     make(map[string]int, len(rates)),
	}
	for _, r := range rates {
		r.Code = NormalizeCode(r.Code)
		if _, dup := t.index[r.Code]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, r.Code)
		}
		if !r.Rate.IsPositive() {
			return nil, fmt.Errorf("%w: %s=%s", ErrNonPositiveRate, r.Code, r.Rate)
		}
		r.FetchedAt = fetchedAt
		t.index[r.Code] = len(t.rates)
		t.rates = append(t.rates, r)
	}
	return t, nil
}

// Pivot returns the currency all rates are expressed relative to.
func (t *RateTable) Pivot() string { return t.pivot }

// FetchedAt returns the time the whole table was fetched.
func (t *RateTable) FetchedAt() time.Time { return t.fetchedAt }

// Len returns the number of rates.
func (t *RateTable) Len() int { return len(t.rates) }

// Rates returns a copy of the rates in table order.
func (t *RateTable) Rates() []CurrencyRate {
	out := make([]CurrencyRate, len(t.rates))
	copy(out, t.rates)
	return out
}

// Lookup returns the entry for code.
func (t *RateTable) Lookup(code string) (CurrencyRate, bool) {
	if t == nil {
		return CurrencyRate{}, false
	}
	i, ok := t.index[NormalizeCode(code)]
	if !ok {
		return CurrencyRate{}, false
	}
	return t.rates[i], true
}

// Rate returns the rate for code.
func (t *RateTable) Rate(code string) (decimal.Decimal, bool) {
	r, ok := t.Lookup(code)
	return r.Rate, ok
}

// Age returns how old the table is at now.
func (t *RateTable) Age(now time.Time) time.Duration {
	return now.Sub(t.fetchedAt)
}

// FreshAt reports whether the table is younger than maxAge at now.
func (t *RateTable) FreshAt(now time.Time, maxAge time.Duration) bool {
	return t.Age(now) < maxAge
}
