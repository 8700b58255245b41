package service

import (
	"errors"

	"ratesvc/internal/model"
)

// ErrUnsupportedCurrency is returned when a currency is not in the configured list.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Validator defines the interface for currency validation.
type Validator interface {
	Validate(code string) error
	IsSupported(code string) bool
}

type validator struct {
	supported map[string]struct{}
}

// NewValidator creates a validator accepting codes; an empty list means model.DefaultCurrencies.
func NewValidator(codes []string) Validator {
	if len(codes) == 0 {
		codes = model.DefaultCurrencies
	}
	v := &validator{supported: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		v.supported[model.NormalizeCode(c)] = struct{}{}
	}
	return v
}

// Validate checks the code format and that the code is supported (case-insensitive).
func (v *validator) Validate(code string) error {
	if !model.IsValidCode(code) {
		return ErrInvalidCurrency
	}
	if !v.IsSupported(code) {
		return ErrUnsupportedCurrency
	}
	return nil
}

// IsSupported returns true if the currency code is supported (case-insensitive).
func (v *validator) IsSupported(code string) bool {
	_, ok := v.supported[model.NormalizeCode(code)]
	return ok
}
