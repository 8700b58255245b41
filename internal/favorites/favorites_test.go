package favorites

import (
	"context"
	"testing"
	"time"

	"ratesvc/internal/model"
	"ratesvc/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(t *testing.T, limit int) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewManager(repository.NewRedisFavoritesStore(rdb), limit, zap.NewNop().Sugar(), nil)
}

func TestManager_CapacityAndRemaining(t *testing.T) {
	m := newManager(t, 0)
	ctx := context.Background()
	assert.Equal(t, DefaultMax, m.Max())

	for _, c := range []string{"usd", "EUR", "GBP", "JPY", "CAD"} {
		require.NoError(t, m.Add(ctx, c))
	}
	remaining, err := m.Remaining(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	err = m.Add(ctx, "AUD")
	require.ErrorIs(t, err, ErrFull)
	assert.ErrorIs(t, err, repository.ErrFavoritesFull)

	codes, err := m.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAD", "EUR", "GBP", "JPY", "USD"}, codes)

	require.NoError(t, m.Remove(ctx, "usd"))
	remaining, err = m.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestManager_Toggle(t *testing.T) {
	m := newManager(t, 2)
	ctx := context.Background()

	on, err := m.Toggle(ctx, "eur")
	require.NoError(t, err)
	assert.True(t, on)

	fav, err := m.IsFavorite(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, fav)

	on, err = m.Toggle(ctx, "EUR")
	require.NoError(t, err)
	assert.False(t, on)

	fav, err = m.IsFavorite(ctx, "EUR")
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestManager_ToggleOnFullSet(t *testing.T) {
	m := newManager(t, 1)
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, "EUR"))
	_, err := m.Toggle(ctx, "JPY")
	assert.ErrorIs(t, err, ErrFull)
}

func TestManager_InvalidCode(t *testing.T) {
	m := newManager(t, 5)
	ctx := context.Background()

	assert.ErrorIs(t, m.Add(ctx, "EURO"), ErrInvalidCode)
	assert.ErrorIs(t, m.Remove(ctx, "E1"), ErrInvalidCode)
	_, err := m.Toggle(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func rates(codes ...string) []model.CurrencyRate {
	now := time.Now()
	out := make([]model.CurrencyRate, 0, len(codes))
	for _, c := range codes {
		out = append(out, model.NewCurrencyRate(c, decimal.NewFromInt(1), now))
	}
	return out
}

func codesOf(rs []model.CurrencyRate) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Code)
	}
	return out
}

func TestSet_SortAndSplit(t *testing.T) {
	s := NewSet("JPY", "eur")
	in := rates("USD", "JPY", "CAD", "EUR", "AUD")

	assert.Equal(t, []string{"EUR", "JPY", "AUD", "CAD", "USD"}, codesOf(s.Sort(in)))
	assert.Equal(t, []string{"USD", "JPY", "CAD", "EUR", "AUD"}, codesOf(in), "input untouched")

	favs, rest := s.Split(in)
	assert.Equal(t, []string{"JPY", "EUR"}, codesOf(favs))
	assert.Equal(t, []string{"USD", "CAD", "AUD"}, codesOf(rest))
}
