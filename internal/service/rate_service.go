// Package service implements the rate operations exposed over HTTP.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"ratesvc/internal/conversion"
	"ratesvc/internal/coordinator"
	"ratesvc/internal/favorites"
	"ratesvc/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateServiceInterface defines the operations available to the HTTP layer.
type RateServiceInterface interface {
	Rates(ctx context.Context, force bool) (*RatesResult, error)
	CurrentTable(ctx context.Context) (*RatesResult, error)
	State(ctx context.Context) StateView
	DismissError(ctx context.Context) StateView
	Currencies(ctx context.Context, query string) ([]CurrencyView, error)
	Convert(ctx context.Context, amount, from, to string) (*ConversionResult, error)
	Favorites(ctx context.Context) (*FavoritesResult, error)
	AddFavorite(ctx context.Context, code string) (*FavoritesResult, error)
	RemoveFavorite(ctx context.Context, code string) (*FavoritesResult, error)
	ToggleFavorite(ctx context.Context, code string) (*FavoritesResult, error)
	Activate()
	Ping(ctx context.Context) error
}

// Coordinator is the fetch coordination the service relies on.
type Coordinator interface {
	EnsureFresh(ctx context.Context, pivot string, maxAge time.Duration, force bool) (coordinator.Result, error)
	Fetching(pivot string) bool
	NextFetchAt() time.Time
}

// TableSource reads the last known table without fetching.
type TableSource interface {
	Latest(ctx context.Context, pivot string) *model.RateTable
	Ping(ctx context.Context) error
}

// Activator receives foreground transitions.
type Activator interface {
	Activate()
}

// Config holds the service policy.
type Config struct {
	Pivot string
	TTL   time.Duration
}

// RatesResult is a rate table shaped for the HTTP layer.
type RatesResult struct {
	Pivot       string
	Rates       []model.CurrencyRate
	FetchedAt   time.Time
	Source      coordinator.Source
	LastUpdated string
}

// CurrencyView is one row of the currency list.
type CurrencyView struct {
	model.CurrencyRate
	Display  string
	Favorite bool
}

// ConversionResult is the outcome of a conversion.
type ConversionResult struct {
	Amount    decimal.Decimal
	From      string
	To        string
	Result    decimal.Decimal
	Formatted string
	FetchedAt time.Time
}

// FavoritesResult is the favorites set with its capacity.
type FavoritesResult struct {
	Codes     []string
	Max       int
	Remaining int
}

// RateService composes the coordinator, the cache and favorites.
type RateService struct {
	coord     Coordinator
	tables    TableSource
	favorites *favorites.Manager
	activator Activator
	validator Validator
	log       *zap.SugaredLogger
	cfg       Config
	state     *stateTracker
	now       func() time.Time
}

// NewRateService creates a new RateService. activator may be nil.
func NewRateService(coord Coordinator, tables TableSource, favs *favorites.Manager, activator Activator, validator Validator, logger *zap.SugaredLogger, cfg Config) *RateService {
	cfg.Pivot = model.NormalizeCode(cfg.Pivot)
	return &RateService{
		coord:     coord,
		tables:    tables,
		favorites: favs,
		activator: activator,
		validator: validator,
		log:       logger,
		cfg:       cfg,
		state:     newStateTracker(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Rates returns a table no older than the configured TTL, fetching when needed.
// On a fetch error the last known table, if any, is returned together with the error.
func (s *RateService) Rates(ctx context.Context, force bool) (*RatesResult, error) {
	res, err := s.coord.EnsureFresh(ctx, s.cfg.Pivot, s.cfg.TTL, force)
	if err != nil {
		s.state.fail(err)
		s.log.Warnw("Rates request failed", "pivot", s.cfg.Pivot, "force", force, "error", err)
		if stale := s.tables.Latest(ctx, s.cfg.Pivot); stale != nil {
			return s.result(stale, coordinator.SourceFallback), err
		}
		return nil, err
	}
	if !res.HasData() {
		return &RatesResult{Pivot: s.cfg.Pivot, Source: res.Source, LastUpdated: Humanize(s.now(), time.Time{})}, nil
	}
	s.state.succeed()
	return s.result(res.Table, res.Source), nil
}

// CurrentTable returns the last known table without fetching.
func (s *RateService) CurrentTable(ctx context.Context) (*RatesResult, error) {
	table := s.tables.Latest(ctx, s.cfg.Pivot)
	if table == nil {
		return nil, ErrNoData
	}
	return s.result(table, coordinator.SourceCache), nil
}

// State reports the loading state. A running fetch always reads as loading.
func (s *RateService) State(ctx context.Context) StateView {
	state, lastErr := s.state.snapshot()
	table := s.tables.Latest(ctx, s.cfg.Pivot)

	v := StateView{State: state}
	if table != nil {
		v.LastUpdated = table.FetchedAt()
		if state == StateIdle {
			v.State = StateLoaded
		}
	}
	v.Humanized = Humanize(s.now(), v.LastUpdated)
	if lastErr != nil {
		p := Present(lastErr)
		v.Error = &p
	}
	if s.coord.Fetching(s.cfg.Pivot) {
		v.State = StateLoading
	}
	v.NextFetch = s.coord.NextFetchAt()
	v.NextFetchHuman = HumanizeNext(s.now(), v.NextFetch)
	return v
}

// DismissError clears a reported failure.
func (s *RateService) DismissError(ctx context.Context) StateView {
	s.state.dismiss(s.tables.Latest(ctx, s.cfg.Pivot) != nil)
	return s.State(ctx)
}

// Currencies lists the current table favorites-first, filtered by a case-insensitive
// match on code or name.
func (s *RateService) Currencies(ctx context.Context, query string) ([]CurrencyView, error) {
	table := s.tables.Latest(ctx, s.cfg.Pivot)
	if table == nil {
		return nil, ErrNoData
	}
	favs, err := s.favorites.Snapshot(ctx)
	if err != nil {
		s.log.Errorw("Failed to load favorites", "error", err)
		return nil, err
	}

	rates := favs.Sort(Filter(table.Rates(), query))
	out := make([]CurrencyView, 0, len(rates))
	for _, r := range rates {
		out = append(out, CurrencyView{CurrencyRate: r, Display: r.FormattedRate(), Favorite: favs.Contains(r.Code)})
	}
	return out, nil
}

// Filter keeps rates whose code or name contains query, ignoring case. An empty query keeps all.
func Filter(rates []model.CurrencyRate, query string) []model.CurrencyRate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rates
	}
	var out []model.CurrencyRate
	for _, r := range rates {
		if strings.Contains(strings.ToLower(r.Code), q) || strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}

// Convert converts amount between two codes of the current table.
func (s *RateService) Convert(ctx context.Context, amount, from, to string) (*ConversionResult, error) {
	if !model.IsValidCode(from) || !model.IsValidCode(to) {
		return nil, ErrInvalidCurrency
	}
	value, err := conversion.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	table := s.tables.Latest(ctx, s.cfg.Pivot)
	if table == nil {
		return nil, ErrNoData
	}

	out, err := conversion.ConvertStrict(value, from, to, table)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		Amount:    value,
		From:      model.NormalizeCode(from),
		To:        model.NormalizeCode(to),
		Result:    out,
		Formatted: conversion.Format(out),
		FetchedAt: table.FetchedAt(),
	}, nil
}

// Favorites returns the favorites set.
func (s *RateService) Favorites(ctx context.Context) (*FavoritesResult, error) {
	set, err := s.favorites.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	limit := s.favorites.Max()
	return &FavoritesResult{Codes: set.Codes(), Max: limit, Remaining: max(0, limit-set.Len())}, nil
}

// AddFavorite adds a supported code.
func (s *RateService) AddFavorite(ctx context.Context, code string) (*FavoritesResult, error) {
	if err := s.validator.Validate(code); err != nil {
		return nil, err
	}
	if err := s.favorites.Add(ctx, code); err != nil {
		return nil, s.favoritesError("add", code, err)
	}
	return s.Favorites(ctx)
}

// RemoveFavorite removes a code.
func (s *RateService) RemoveFavorite(ctx context.Context, code string) (*FavoritesResult, error) {
	if !model.IsValidCode(code) {
		return nil, ErrInvalidCurrency
	}
	if err := s.favorites.Remove(ctx, code); err != nil {
		return nil, s.favoritesError("remove", code, err)
	}
	return s.Favorites(ctx)
}

// ToggleFavorite flips a supported code.
func (s *RateService) ToggleFavorite(ctx context.Context, code string) (*FavoritesResult, error) {
	if err := s.validator.Validate(code); err != nil {
		return nil, err
	}
	if _, err := s.favorites.Toggle(ctx, code); err != nil {
		return nil, s.favoritesError("toggle", code, err)
	}
	return s.Favorites(ctx)
}

func (s *RateService) favoritesError(op, code string, err error) error {
	if !errors.Is(err, favorites.ErrFull) && !errors.Is(err, favorites.ErrInvalidCode) {
		s.log.Errorw("Favorites store error", "op", op, "code", code, "error", err)
	}
	return err
}

// Activate asks the scheduler for an immediate staleness check.
func (s *RateService) Activate() {
	if s.activator != nil {
		s.activator.Activate()
	}
}

// Ping checks the backing store.
func (s *RateService) Ping(ctx context.Context) error {
	return s.tables.Ping(ctx)
}

func (s *RateService) result(table *model.RateTable, source coordinator.Source) *RatesResult {
	return &RatesResult{
		Pivot:       table.Pivot(),
		Rates:       table.Rates(),
		FetchedAt:   table.FetchedAt(),
		Source:      source,
		LastUpdated: Humanize(s.now(), table.FetchedAt()),
	}
}
