package ratecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"ratesvc/internal/model"
	"ratesvc/internal/provider"
	"ratesvc/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Fetch(ctx context.Context, pivot string) (*model.RateTable, error) {
	args := m.Called(ctx, pivot)
	table, _ := args.Get(0).(*model.RateTable)
	return table, args.Error(1)
}

type failingStore struct {
	repository.RateStore
	saveErr error
}

func (s *failingStore) Save(context.Context, *model.RateTable) error { return s.saveErr }

func newTable(t *testing.T, pivot string, fetchedAt time.Time) *model.RateTable {
	t.Helper()
	table, err := model.NewRateTable(pivot, fetchedAt, []model.CurrencyRate{
		model.NewCurrencyRate("USD", decimal.NewFromInt(1), fetchedAt),
		model.NewCurrencyRate("EUR", decimal.RequireFromString("0.9"), fetchedAt),
	})
	require.NoError(t, err)
	return table
}

func newCache(t *testing.T, p provider.RatesProvider) (*Cache, *repository.RedisRateStore, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := repository.NewRedisRateStore(rdb, zap.NewNop().Sugar())
	c := New(p, store, zap.NewNop().Sugar(), nil)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, store, &now
}

func TestCache_GetIsPureFreshnessCheck(t *testing.T) {
	p := new(mockProvider)
	c, store, now := newCache(t, p)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTable(t, "USD", now.Add(-10*time.Minute))))

	got, ok := c.Get(ctx, "USD", time.Hour)
	require.True(t, ok)
	assert.Equal(t, 2, got.Len())

	_, ok = c.Get(ctx, "USD", 10*time.Minute)
	assert.False(t, ok, "age equal to maxAge is stale")

	_, ok = c.Get(ctx, "EUR", time.Hour)
	assert.False(t, ok, "other pivot is a miss")

	p.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestCache_GetEmpty(t *testing.T) {
	c, _, _ := newCache(t, new(mockProvider))

	_, ok := c.Get(context.Background(), "USD", time.Hour)
	assert.False(t, ok)
	assert.Nil(t, c.Latest(context.Background(), "USD"))
}

func TestCache_RefreshPersists(t *testing.T) {
	p := new(mockProvider)
	c, store, now := newCache(t, p)
	ctx := context.Background()

	fresh := newTable(t, "USD", *now)
	p.On("Fetch", mock.Anything, "USD").Return(fresh, nil).Once()

	got, err := c.Refresh(ctx, "USD")
	require.NoError(t, err)
	assert.Same(t, fresh, got)

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.FetchedAt().Equal(*now))

	hit, ok := c.Get(ctx, "USD", time.Minute)
	require.True(t, ok)
	assert.Same(t, fresh, hit)
	p.AssertExpectations(t)
}

func TestCache_FailedRefreshPreservesRecord(t *testing.T) {
	p := new(mockProvider)
	c, store, now := newCache(t, p)
	ctx := context.Background()

	old := newTable(t, "USD", now.Add(-2*time.Hour))
	require.NoError(t, store.Save(ctx, old))

	p.On("Fetch", mock.Anything, "USD").Return(nil, &provider.Error{Kind: provider.ErrHTTP, StatusCode: 503}).Once()

	_, err := c.Refresh(ctx, "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrHTTP)
	assert.Equal(t, "HTTP Error: 503", err.Error())

	stored, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.FetchedAt().Equal(old.FetchedAt()), "stale record must survive a failed refresh")

	latest := c.Latest(ctx, "USD")
	require.NotNil(t, latest)
	assert.True(t, latest.FetchedAt().Equal(old.FetchedAt()))
}

func TestCache_SaveFailureKeepsSnapshot(t *testing.T) {
	p := new(mockProvider)
	c, store, now := newCache(t, p)
	c.store = &failingStore{RateStore: store, saveErr: errors.New("disk full")}

	fresh := newTable(t, "USD", *now)
	p.On("Fetch", mock.Anything, "USD").Return(fresh, nil).Once()

	got, err := c.Refresh(context.Background(), "USD")
	require.NoError(t, err)
	assert.Same(t, fresh, got)

	hit, ok := c.Get(context.Background(), "USD", time.Minute)
	require.True(t, ok)
	assert.Same(t, fresh, hit)
}

func TestCache_Invalidate(t *testing.T) {
	p := new(mockProvider)
	c, store, now := newCache(t, p)
	ctx := context.Background()

	p.On("Fetch", mock.Anything, "USD").Return(newTable(t, "USD", *now), nil).Once()
	_, err := c.Refresh(ctx, "USD")
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx))

	_, ok := c.Get(ctx, "USD", time.Hour)
	assert.False(t, ok)
	stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
