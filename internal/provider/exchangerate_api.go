package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"ratesvc/internal/model"
)

var _ RatesProvider = (*ExchangeRateAPIProvider)(nil)

// AuthScheme selects how the credential is attached to the request.
type AuthScheme string

const (
	// AuthBearer sends "Authorization: Bearer <key>" and the pivot as ?base= (rate proxy).
	AuthBearer AuthScheme = "bearer"
	// AuthPath embeds the key in the path: {base}/{key}/latest/{pivot} (exchangerate-api v6).
	AuthPath AuthScheme = "path"
)

const maxBodyBytes = 256 << 10

// ExchangeRateAPIProvider fetches rates in the exchangerate-api v6 response format,
// either directly or through an authenticating proxy.
type ExchangeRateAPIProvider struct {
	baseURL string
	apiKey  string
	scheme  AuthScheme
	allow   allowList
	client  *http.Client
	now     func() time.Time
}

// ExchangeRateAPIConfig configures an ExchangeRateAPIProvider.
type ExchangeRateAPIConfig struct {
	BaseURL    string
	APIKey     string
	Scheme     AuthScheme
	Currencies []string
	Timeout    time.Duration
}

// NewExchangeRateAPIProvider creates a new ExchangeRateAPIProvider.
func NewExchangeRateAPIProvider(cfg ExchangeRateAPIConfig) *ExchangeRateAPIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://v6.exchangerate-api.com/v6"
	}
	if cfg.Scheme == "" {
		cfg.Scheme = AuthPath
	}
	return &ExchangeRateAPIProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		scheme:  cfg.Scheme,
		allow:   newAllowList(cfg.Currencies),
		client:  &http.Client{Timeout: cfg.Timeout},
		now:     defaultNow,
	}
}

func (p *ExchangeRateAPIProvider) newRequest(ctx context.Context, pivot string) (*http.Request, error) {
	if p.apiKey == "" {
		return nil, configurationError("API key is missing")
	}

	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, configurationError("invalid API URL: " + err.Error())
	}
	switch p.scheme {
	case AuthBearer:
		q := u.Query()
		q.Set("base", pivot)
		u.RawQuery = q.Encode()
	case AuthPath:
		u = u.JoinPath(p.apiKey, "latest", pivot)
	default:
		return nil, configurationError(fmt.Sprintf("unknown auth scheme %q", p.scheme))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, configurationError("invalid API URL: " + err.Error())
	}
	if p.scheme == AuthBearer {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// Fetch issues one request for the latest rates relative to pivot.
func (p *ExchangeRateAPIProvider) Fetch(ctx context.Context, pivot string) (*model.RateTable, error) {
	pivot = model.NormalizeCode(pivot)
	req, err := p.newRequest(ctx, pivot)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, networkError(err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, decodingError(errors.New("response is not valid JSON"))
	}

	doc := gjson.ParseBytes(body)
	result := doc.Get("result")
	if !result.Exists() {
		return nil, apiError("response schema: missing result")
	}
	if result.String() != "success" {
		if errType := doc.Get("error-type"); errType.Exists() && errType.String() != "" {
			return nil, apiError(errType.String())
		}
		return nil, apiError("Unknown API error")
	}

	rates := doc.Get("conversion_rates")
	if !rates.IsObject() {
		return nil, apiError("response schema: missing conversion_rates")
	}

	return p.allow.table(pivot, p.allow.collect(rates), p.now())
}

// collect reads the allow-listed entries of a JSON object of code -> number.
// Unknown, non-numeric and non-positive entries are skipped.
func (a allowList) collect(rates gjson.Result) map[string]decimal.Decimal {
	found := make(map[string]decimal.Decimal, len(a.codes))
	rates.ForEach(func(key, value gjson.Result) bool {
		code := model.NormalizeCode(key.String())
		if !a.contains(code) || value.Type != gjson.Number {
			return true
		}
		rate, err := decimal.NewFromString(value.Raw)
		if err != nil || !rate.IsPositive() {
			return true
		}
		found[code] = rate
		return true
	})
	return found
}

// table orders found by the allow-list. Configured codes absent from found are omitted.
func (a allowList) table(pivot string, found map[string]decimal.Decimal, fetchedAt time.Time) (*model.RateTable, error) {
	out := make([]model.CurrencyRate, 0, len(found))
	for _, code := range a.codes {
		if rate, ok := found[code]; ok {
			out = append(out, model.NewCurrencyRate(code, rate, fetchedAt))
		}
	}

	table, err := model.NewRateTable(pivot, fetchedAt, out)
	if err != nil {
		return nil, apiError(err.Error())
	}
	return table, nil
}
