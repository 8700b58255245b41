//go:build integration

// Package integration exercises the storage backends and the rate core against real
// Postgres and Redis instances.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ratesvc/internal/model"
	"ratesvc/internal/repository"
	"ratesvc/internal/testkit"
)

// backend is one storage implementation under test.
type backend struct {
	name      string
	rates     repository.RateStore
	favorites repository.FavoritesStore
}

// backends returns both storage implementations over freshly reset data.
func backends(t *testing.T) []backend {
	t.Helper()
	suite := testkit.Global()
	require.NoError(t, suite.Reset(testContext(t)))

	logger := zap.NewNop().Sugar()
	return []backend{
		{
			name:      "redis",
			rates:     repository.NewRedisRateStore(suite.Redis(), logger),
			favorites: repository.NewRedisFavoritesStore(suite.Redis()),
		},
		{
			name:      "postgres",
			rates:     repository.NewPostgresRateStore(suite.DB(), logger),
			favorites: repository.NewPostgresFavoritesStore(suite.DB()),
		},
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func usdTable(t *testing.T, fetchedAt time.Time, eur string) *model.RateTable {
	t.Helper()
	table, err := model.NewRateTable("USD", fetchedAt, []model.CurrencyRate{
		model.NewCurrencyRate("USD", decimal.NewFromInt(1), fetchedAt),
		model.NewCurrencyRate("EUR", decimal.RequireFromString(eur), fetchedAt),
		model.NewCurrencyRate("JPY", decimal.RequireFromString("149.5"), fetchedAt),
	})
	require.NoError(t, err)
	return table
}
