// Package model defines the currency and rate table types shared by the rate core.
package model

import "strings"

// CurrencyInfo holds display metadata for a currency code.
type CurrencyInfo struct {
	Name string
	Flag string
}

const genericFlag = "💱"

// DefaultCurrencies is the allow-list of codes mapped from provider responses, in display order.
var DefaultCurrencies = []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY"}

var knownCurrencies = map[string]CurrencyInfo{
	"USD": {Name: "US Dollar", Flag: "🇺🇸"},
	"EUR": {Name: "Euro", Flag: "🇪🇺"},
	"GBP": {Name: "British Pound", Flag: "🇬🇧"},
	"JPY": {Name: "Japanese Yen", Flag: "🇯🇵"},
	"CAD": {Name: "Canadian Dollar", Flag: "🇨🇦"},
	"AUD": {Name: "Australian Dollar", Flag: "🇦🇺"},
	"CHF": {Name: "Swiss Franc", Flag: "🇨🇭"},
	"CNY": {Name: "Chinese Yuan", Flag: "🇨🇳"},
	"NZD": {Name: "New Zealand Dollar", Flag: "🇳🇿"},
	"HKD": {Name: "Hong Kong Dollar", Flag: "🇭🇰"},
	"SGD": {Name: "Singapore Dollar", Flag: "🇸🇬"},
	"SEK": {Name: "Swedish Krona", Flag: "🇸🇪"},
	"NOK": {Name: "Norwegian Krone", Flag: "🇳🇴"},
	"INR": {Name: "Indian Rupee", Flag: "🇮🇳"},
	"MXN": {Name: "Mexican Peso", Flag: "🇲🇽"},
}

// LookupCurrency returns display metadata for code. Unknown codes use the code as
// their name and a generic flag.
func LookupCurrency(code string) CurrencyInfo {
	code = NormalizeCode(code)
	if info, ok := knownCurrencies[code]; ok {
		return info
	}
	return CurrencyInfo{Name: code, Flag: genericFlag}
}

// NormalizeCode trims and upper-cases a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidCode checks whether a string is a 3-letter currency code (case-insensitive).
func IsValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range strings.ToUpper(code) {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
