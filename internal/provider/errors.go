package provider

import (
	"errors"
	"fmt"
)

// Error kinds. A *Error unwraps to exactly one of these, so callers classify with errors.Is.
var (
	ErrNetwork       = errors.New("network error")
	ErrHTTP          = errors.New("http error")
	ErrAPI           = errors.New("api error")
	ErrDecoding      = errors.New("decoding error")
	ErrConfiguration = errors.New("configuration error")
)

// Error is a classified provider failure.
type Error struct {
	Kind       error
	StatusCode int    // set for ErrHTTP
	Detail     string // transport detail or provider message
	cause      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrHTTP:
		return fmt.Sprintf("HTTP Error: %d", e.StatusCode)
	case ErrAPI:
		return "API Error: " + e.Detail
	case ErrNetwork:
		return "Network Error: " + e.Detail
	case ErrDecoding:
		return "Failed to decode response"
	case ErrConfiguration:
		return "Configuration Error: " + e.Detail
	default:
		return e.Detail
	}
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.cause}
}

func networkError(err error) *Error {
	return &Error{Kind: ErrNetwork, Detail: err.Error(), cause: err}
}

func httpError(status int) *Error {
	return &Error{Kind: ErrHTTP, StatusCode: status}
}

func apiError(msg string) *Error {
	return &Error{Kind: ErrAPI, Detail: msg}
}

func decodingError(err error) *Error {
	return &Error{Kind: ErrDecoding, Detail: "invalid response body", cause: err}
}

func configurationError(msg string) *Error {
	return &Error{Kind: ErrConfiguration, Detail: msg}
}

// KindOf names the classification of err, or "" when err is not a provider error.
func KindOf(err error) string {
	var pe *Error
	if !errors.As(err, &pe) {
		return ""
	}
	switch pe.Kind {
	case ErrNetwork:
		return "network"
	case ErrHTTP:
		return "http"
	case ErrAPI:
		return "api"
	case ErrDecoding:
		return "decoding"
	case ErrConfiguration:
		return "configuration"
	}
	return ""
}
