package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ratesvc/internal/model"

	"github.com/shopspring/decimal"
)

// CacheKey names the single persisted rate record.
const CacheKey = "cached_exchange_rates"

// FavoritesKey names the persisted favorites set.
const FavoritesKey = "favorite_currencies"

// ErrFavoritesFull is returned when adding a code to a favorites set already at capacity.
var ErrFavoritesFull = errors.New("favorites limit reached")

// RateStore persists the most recently fetched rate table.
// Load returns (nil, nil) when nothing usable is stored; an unreadable record counts as absent.
type RateStore interface {
	Load(ctx context.Context) (*model.RateTable, error)
	Save(ctx context.Context, table *model.RateTable) error
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// FavoritesStore persists the set of favorite currency codes.
type FavoritesStore interface {
	List(ctx context.Context) ([]string, error)
	// Add inserts code unless the set already holds limit entries. Adding a present code is a no-op.
	Add(ctx context.Context, code string, limit int) error
	Remove(ctx context.Context, code string) error
}

type ratePayload struct {
	Pivot string       `json:"pivot"`
	Rates []rateRecord `json:"rates"`
}

type rateRecord struct {
	Code string          `json:"code"`
	Name string          `json:"name"`
	Flag string          `json:"flag"`
	Rate decimal.Decimal `json:"rate"`
}

func encodePayload(table *model.RateTable) ([]byte, error) {
	p := ratePayload{Pivot: table.Pivot()}
	for _, r := range table.Rates() {
		p.Rates = append(p.Rates, rateRecord{Code: r.Code, Name: r.Name, Flag: r.Flag, Rate: r.Rate})
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode rate table: %w", err)
	}
	return b, nil
}

func decodePayload(data []byte, fetchedAt time.Time) (*model.RateTable, error) {
	var p ratePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode rate table: %w", err)
	}
	rates := make([]model.CurrencyRate, 0, len(p.Rates))
	for _, r := range p.Rates {
		rates = append(rates, model.CurrencyRate{Code: r.Code, Name: r.Name, Flag: r.Flag, Rate: r.Rate})
	}
	return model.NewRateTable(p.Pivot, fetchedAt, rates)
}
