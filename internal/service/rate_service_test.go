package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ratesvc/internal/conversion"
	"ratesvc/internal/coordinator"
	"ratesvc/internal/favorites"
	"ratesvc/internal/model"
	"ratesvc/internal/provider"
	"ratesvc/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock coordinator
type mockCoordinator struct {
	ensureFreshFunc func(ctx context.Context, pivot string, maxAge time.Duration, force bool) (coordinator.Result, error)
	fetching        bool
	nextFetch       time.Time
}

func (m *mockCoordinator) EnsureFresh(ctx context.Context, pivot string, maxAge time.Duration, force bool) (coordinator.Result, error) {
	return m.ensureFreshFunc(ctx, pivot, maxAge, force)
}

func (m *mockCoordinator) Fetching(string) bool { return m.fetching }

func (m *mockCoordinator) NextFetchAt() time.Time { return m.nextFetch }

// Mock table source
type mockTables struct {
	table   *model.RateTable
	pingErr error
}

func (m *mockTables) Latest(context.Context, string) *model.RateTable { return m.table }
func (m *mockTables) Ping(context.Context) error                      { return m.pingErr }

type mockActivator struct{ calls int }

func (m *mockActivator) Activate() { m.calls++ }

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testTable(t *testing.T, fetchedAt time.Time) *model.RateTable {
	t.Helper()
	table, err := model.NewRateTable("USD", fetchedAt, []model.CurrencyRate{
		model.NewCurrencyRate("USD", decimal.RequireFromString("1"), fetchedAt),
		model.NewCurrencyRate("EUR", decimal.RequireFromString("0.9"), fetchedAt),
		model.NewCurrencyRate("GBP", decimal.RequireFromString("0.79"), fetchedAt),
		model.NewCurrencyRate("JPY", decimal.RequireFromString("150"), fetchedAt),
	})
	require.NoError(t, err)
	return table
}

func newTestService(t *testing.T, coord Coordinator, tables TableSource, act Activator) *RateService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := zap.NewNop().Sugar()
	favs := favorites.NewManager(repository.NewRedisFavoritesStore(rdb), 2, logger, nil)
	s := NewRateService(coord, tables, favs, act, NewValidator(nil), logger, Config{Pivot: "usd", TTL: time.Hour})
	s.now = func() time.Time { return testNow }
	return s
}

func TestRates_Success(t *testing.T) {
	table := testTable(t, testNow.Add(-5*time.Minute))
	coord := &mockCoordinator{ensureFreshFunc: func(_ context.Context, pivot string, maxAge time.Duration, force bool) (coordinator.Result, error) {
		assert.Equal(t, "USD", pivot)
		assert.Equal(t, time.Hour, maxAge)
		assert.True(t, force)
		return coordinator.Result{Table: table, Source: coordinator.SourceNetwork}, nil
	}}
	s := newTestService(t, coord, &mockTables{table: table}, nil)

	res, err := s.Rates(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, coordinator.SourceNetwork, res.Source)
	assert.Len(t, res.Rates, 4)
	assert.Equal(t, "5 minutes ago", res.LastUpdated)

	v := s.State(context.Background())
	assert.Equal(t, StateLoaded, v.State)
	assert.Nil(t, v.Error)
}

func TestRates_NoDataYet(t *testing.T) {
	coord := &mockCoordinator{ensureFreshFunc: func(context.Context, string, time.Duration, bool) (coordinator.Result, error) {
		return coordinator.Result{Source: coordinator.SourceNone}, nil
	}}
	s := newTestService(t, coord, &mockTables{}, nil)

	res, err := s.Rates(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, coordinator.SourceNone, res.Source)
	assert.Empty(t, res.Rates)
	assert.Equal(t, "Never", res.LastUpdated)
	assert.Equal(t, StateIdle, s.State(context.Background()).State)
}

func TestRates_FailureKeepsStaleData(t *testing.T) {
	stale := testTable(t, testNow.Add(-3*time.Hour))
	fetchErr := &provider.Error{Kind: provider.ErrHTTP, StatusCode: 503}
	coord := &mockCoordinator{ensureFreshFunc: func(context.Context, string, time.Duration, bool) (coordinator.Result, error) {
		return coordinator.Result{Source: coordinator.SourceNone}, fetchErr
	}}
	tables := &mockTables{table: stale}
	s := newTestService(t, coord, tables, nil)

	res, err := s.Rates(context.Background(), false)
	require.ErrorIs(t, err, provider.ErrHTTP)
	require.NotNil(t, res)
	assert.Equal(t, coordinator.SourceFallback, res.Source)
	assert.Equal(t, "3 hours ago", res.LastUpdated)

	v := s.State(context.Background())
	assert.Equal(t, StateFailed, v.State)
	require.NotNil(t, v.Error)
	assert.Equal(t, TitleRateError, v.Error.Title)
	assert.Equal(t, "HTTP Error: 503", v.Error.Message)

	v = s.DismissError(context.Background())
	assert.Equal(t, StateLoaded, v.State)
	assert.Nil(t, v.Error)
}

func TestRates_FailureWithoutData(t *testing.T) {
	coord := &mockCoordinator{ensureFreshFunc: func(context.Context, string, time.Duration, bool) (coordinator.Result, error) {
		return coordinator.Result{}, errors.New("boom")
	}}
	s := newTestService(t, coord, &mockTables{}, nil)

	res, err := s.Rates(context.Background(), false)
	require.Error(t, err)
	assert.Nil(t, res)

	v := s.State(context.Background())
	require.NotNil(t, v.Error)
	assert.Equal(t, TitleUnexpectedError, v.Error.Title)

	assert.Equal(t, StateIdle, s.DismissError(context.Background()).State)
}

func TestState_LoadingWhileFetching(t *testing.T) {
	s := newTestService(t, &mockCoordinator{fetching: true}, &mockTables{}, nil)
	assert.Equal(t, StateLoading, s.State(context.Background()).State)
}

func TestState_NextFetch(t *testing.T) {
	coord := &mockCoordinator{}
	s := newTestService(t, coord, &mockTables{table: testTable(t, testNow)}, nil)

	v := s.State(context.Background())
	assert.True(t, v.NextFetch.IsZero())
	assert.Equal(t, "Now", v.NextFetchHuman)

	coord.nextFetch = testNow.Add(90 * time.Minute)
	v = s.State(context.Background())
	assert.Equal(t, coord.nextFetch, v.NextFetch)
	assert.Equal(t, "in 1 hour", v.NextFetchHuman)
}

func TestCurrentTable(t *testing.T) {
	tables := &mockTables{}
	s := newTestService(t, &mockCoordinator{}, tables, nil)

	_, err := s.CurrentTable(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	tables.table = testTable(t, testNow.Add(-30*time.Second))
	res, err := s.CurrentTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Just now", res.LastUpdated)
	assert.Equal(t, coordinator.SourceCache, res.Source)
}

func TestCurrencies_FavoritesFirstAndFilter(t *testing.T) {
	s := newTestService(t, &mockCoordinator{}, &mockTables{table: testTable(t, testNow)}, nil)
	ctx := context.Background()

	_, err := s.AddFavorite(ctx, "jpy")
	require.NoError(t, err)

	list, err := s.Currencies(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "JPY", list[0].Code)
	assert.True(t, list[0].Favorite)
	assert.Equal(t, "150.00", list[0].Display)
	assert.Equal(t, "EUR", list[1].Code)
	assert.Equal(t, "0.9000", list[1].Display)

	list, err = s.Currencies(ctx, "pound")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "GBP", list[0].Code)

	list, err = s.Currencies(ctx, "Eu")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EUR", list[0].Code)
}

func TestCurrencies_NoData(t *testing.T) {
	s := newTestService(t, &mockCoordinator{}, &mockTables{}, nil)
	_, err := s.Currencies(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestConvert(t *testing.T) {
	s := newTestService(t, &mockCoordinator{}, &mockTables{table: testTable(t, testNow)}, nil)
	ctx := context.Background()

	res, err := s.Convert(ctx, "1,000", "usd", "JPY")
	require.NoError(t, err)
	assert.Equal(t, "USD", res.From)
	assert.Equal(t, "150,000.00", res.Formatted)

	_, err = s.Convert(ctx, "10", "US", "EUR")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
	_, err = s.Convert(ctx, "ten", "USD", "EUR")
	assert.ErrorIs(t, err, conversion.ErrInvalidAmount)
	_, err = s.Convert(ctx, "10", "USD", "CHF")
	assert.ErrorIs(t, err, conversion.ErrUnknownCurrency)
}

func TestFavorites(t *testing.T) {
	s := newTestService(t, &mockCoordinator{}, &mockTables{}, nil)
	ctx := context.Background()

	res, err := s.ToggleFavorite(ctx, "EUR")
	require.NoError(t, err)
	assert.Equal(t, []string{"EUR"}, res.Codes)
	assert.Equal(t, 1, res.Remaining)

	_, err = s.AddFavorite(ctx, "GBP")
	require.NoError(t, err)
	_, err = s.AddFavorite(ctx, "JPY")
	assert.ErrorIs(t, err, favorites.ErrFull)

	_, err = s.AddFavorite(ctx, "XXX")
	assert.ErrorIs(t, err, ErrUnsupportedCurrency)

	res, err = s.RemoveFavorite(ctx, "eur")
	require.NoError(t, err)
	assert.Equal(t, []string{"GBP"}, res.Codes)
	assert.Equal(t, 2, res.Max)
}

func TestActivateAndPing(t *testing.T) {
	act := &mockActivator{}
	tables := &mockTables{pingErr: errors.New("down")}
	s := newTestService(t, &mockCoordinator{}, tables, act)

	s.Activate()
	assert.Equal(t, 1, act.calls)
	assert.Error(t, s.Ping(context.Background()))
}
