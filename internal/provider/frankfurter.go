package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"ratesvc/internal/model"
)

var _ RatesProvider = (*FrankfurterProvider)(nil)

// FrankfurterProvider fetches rates from the Frankfurter API. It needs no credential.
type FrankfurterProvider struct {
	baseURL string
	allow   allowList
	client  *http.Client
	now     func() time.Time
}

// NewFrankfurterProvider creates a new FrankfurterProvider.
func NewFrankfurterProvider(baseURL string, currencies []string, timeout time.Duration) *FrankfurterProvider {
	if baseURL == "" {
		baseURL = "https://api.frankfurter.dev/v1"
	}
	return &FrankfurterProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		allow:   newAllowList(currencies),
		client:  &http.Client{Timeout: timeout},
		now:     defaultNow,
	}
}

// Fetch retrieves all allow-listed rates relative to pivot.
func (p *FrankfurterProvider) Fetch(ctx context.Context, pivot string) (*model.RateTable, error) {
	pivot = model.NormalizeCode(pivot)
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, configurationError("invalid frankfurter URL: " + err.Error())
	}
	u = u.JoinPath("latest")
	q := u.Query()
	q.Set("base", pivot)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, configurationError("invalid frankfurter URL: " + err.Error())
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
		return nil, decodingError(errors.New("frankfurter response is not valid JSON"))
	}

	doc := gjson.ParseBytes(body)
	if msg := doc.Get("message"); msg.Exists() && !doc.Get("rates").Exists() {
		return nil, apiError(msg.String())
	}
	rates := doc.Get("rates")
	if !rates.IsObject() {
		return nil, apiError("response schema: missing rates")
	}

	// Frankfurter omits the base currency from its own rate map.
	found := p.allow.collect(rates)
	if _, ok := found[pivot]; !ok && p.allow.contains(pivot) {
		found[pivot] = decimal.NewFromInt(1)
	}
	return p.allow.table(pivot, found, p.now())
}
