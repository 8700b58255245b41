package service

import (
	"errors"

	"ratesvc/internal/coordinator"
	"ratesvc/internal/provider"
)

// ErrInvalidCurrency indicates a currency code that is not three letters.
var ErrInvalidCurrency = errors.New("invalid currency code format")

// ErrNoData indicates no rate table has been fetched yet.
var ErrNoData = errors.New("no exchange rates available yet")

// Presentation titles.
const (
	TitleRateError       = "Exchange Rate Error"
	TitleRateLimited     = "Refresh Limit Reached"
	TitleUnavailable     = "Service Unavailable"
	TitleUnexpectedError = "Unexpected Error"
)

// Presented kinds outside the provider taxonomy.
const (
	KindRateLimited = "rate_limited"
	KindClosed      = "closed"
)

// PresentedError is an error shaped for display.
type PresentedError struct {
	Title   string
	Message string
	Kind    string
}

// Present shapes err for display. Classified provider failures keep their message
// under TitleRateError; a refused fetch and a stopped service get their own titles;
// anything else is TitleUnexpectedError.
func Present(err error) PresentedError {
	var pe *provider.Error
	switch {
	case errors.As(err, &pe):
		return PresentedError{Title: TitleRateError, Message: pe.Error(), Kind: provider.KindOf(pe)}
	case errors.Is(err, coordinator.ErrRateLimited):
		return PresentedError{
			Title:   TitleRateLimited,
			Message: "Rates were refreshed recently and none are cached yet. Try again later.",
			Kind:    KindRateLimited,
		}
	case errors.Is(err, coordinator.ErrClosed):
		return PresentedError{Title: TitleUnavailable, Message: "The service is shutting down.", Kind: KindClosed}
	}
	return PresentedError{Title: TitleUnexpectedError, Message: err.Error()}
}
