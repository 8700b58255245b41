package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, "USD", cfg.Rates.Pivot)
	assert.Equal(t, 30*time.Second, cfg.Rates.RefreshInterval())
	assert.Equal(t, time.Hour, cfg.Rates.TTL())
	assert.Zero(t, cfg.Rates.MinFetchInterval())
	assert.Equal(t, 5, cfg.Favorites.Max)
	assert.Equal(t, []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY"}, cfg.Provider.Currencies)
	assert.Equal(t, "postgres://postgres:postgres@db:5432/ratesdb?sslmode=disable", cfg.Database.DSN)
}

func TestFromViper_EnvStyleCurrencies(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("provider.currencies", "usd, eur,jpy")
	v.Set("rates.pivot", " eur ")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"USD", "EUR", "JPY"}, cfg.Provider.Currencies)
	assert.Equal(t, "EUR", cfg.Rates.Pivot)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("storage.backend", "sqlite")
	v.Set("provider.kind", "yahoo")
	v.Set("rates.ttl_sec", 0)
	v.Set("favorites.max", -1)

	_, err := fromViper(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
	assert.Contains(t, err.Error(), "provider.kind")
	assert.Contains(t, err.Error(), "rates.ttl_sec")
	assert.Contains(t, err.Error(), "favorites.max")
}
