package api

import (
	"context"

	"ratesvc/internal/service"
)

// mockRateService implements service.RateServiceInterface for testing.
type mockRateService struct {
	ratesFunc      func(ctx context.Context, force bool) (*service.RatesResult, error)
	currentFunc    func(ctx context.Context) (*service.RatesResult, error)
	state          service.StateView
	dismissed      bool
	currenciesFunc func(ctx context.Context, query string) ([]service.CurrencyView, error)
	convertFunc    func(ctx context.Context, amount, from, to string) (*service.ConversionResult, error)
	favoritesFunc  func(ctx context.Context, op, code string) (*service.FavoritesResult, error)
	activated      int
	pingErr        error
}

func (m *mockRateService) Rates(ctx context.Context, force bool) (*service.RatesResult, error) {
	return m.ratesFunc(ctx, force)
}

func (m *mockRateService) CurrentTable(ctx context.Context) (*service.RatesResult, error) {
	return m.currentFunc(ctx)
}

func (m *mockRateService) State(context.Context) service.StateView { return m.state }

func (m *mockRateService) DismissError(context.Context) service.StateView {
	m.dismissed = true
	m.state.Error = nil
	return m.state
}

func (m *mockRateService) Currencies(ctx context.Context, query string) ([]service.CurrencyView, error) {
	return m.currenciesFunc(ctx, query)
}

func (m *mockRateService) Convert(ctx context.Context, amount, from, to string) (*service.ConversionResult, error) {
	return m.convertFunc(ctx, amount, from, to)
}

func (m *mockRateService) Favorites(ctx context.Context) (*service.FavoritesResult, error) {
	return m.favoritesFunc(ctx, "list", "")
}

func (m *mockRateService) AddFavorite(ctx context.Context, code string) (*service.FavoritesResult, error) {
	return m.favoritesFunc(ctx, "add", code)
}

func (m *mockRateService) RemoveFavorite(ctx context.Context, code string) (*service.FavoritesResult, error) {
	return m.favoritesFunc(ctx, "remove", code)
}

func (m *mockRateService) ToggleFavorite(ctx context.Context, code string) (*service.FavoritesResult, error) {
	return m.favoritesFunc(ctx, "toggle", code)
}

func (m *mockRateService) Activate() { m.activated++ }

func (m *mockRateService) Ping(context.Context) error { return m.pingErr }
