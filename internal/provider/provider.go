// Package provider implements external rate providers and classifies their failures.
package provider

import (
	"context"
	"time"

	"ratesvc/internal/model"
)

// RatesProvider fetches the full rate table for a pivot currency with one network request.
// Failures are returned as *Error.
type RatesProvider interface {
	Fetch(ctx context.Context, pivot string) (*model.RateTable, error)
}

// allowList keeps the configured codes in order and answers membership.
type allowList struct {
	codes []string
	set   map[string]struct{}
}

func newAllowList(codes []string) allowList {
	if len(codes) == 0 {
		codes = model.DefaultCurrencies
	}
	a := allowList{set: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		c = model.NormalizeCode(c)
		if _, dup := a.set[c]; dup {
			continue
		}
		a.set[c] = struct{}{}
		a.codes = append(a.codes, c)
	}
	return a
}

func (a allowList) contains(code string) bool {
	_, ok := a.set[code]
	return ok
}

func defaultNow() time.Time { return time.Now().UTC() }
