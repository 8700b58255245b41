// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Provider kinds.
const (
	ProviderExchangeRateAPI = "exchangerate_api"
	ProviderFrankfurter     = "frankfurter"
)

// Config holds the complete application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Provider  ProviderConfig
	Rates     RatesConfig
	Favorites FavoritesConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int  `mapstructure:"port"`
	ServeSwagger bool `mapstructure:"serve_swagger"`
	ServeMetrics bool `mapstructure:"serve_metrics"`
}

// StorageConfig selects where the rate cache and favorites are persisted.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Name               string `mapstructure:"name"`
	SSLMode            string `mapstructure:"sslmode"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSec int    `mapstructure:"conn_max_lifetime_sec"`
	DSN                string
}

// RedisConfig holds the Redis connection used for the rate cache and favorites.
type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

// ProviderConfig holds settings for the upstream exchange rate provider.
type ProviderConfig struct {
	Kind       string   `mapstructure:"kind"`
	BaseURL    string   `mapstructure:"base_url"`
	AuthScheme string   `mapstructure:"auth_scheme"`
	APIKey     string   `mapstructure:"api_key"`
	TimeoutSec int      `mapstructure:"timeout_sec"`
	Currencies []string `mapstructure:"currencies"`
}

// RatesConfig holds the freshness and refresh policy.
type RatesConfig struct {
	Pivot               string `mapstructure:"pivot"`
	TTLSec              int    `mapstructure:"ttl_sec"`
	RefreshIntervalSec  int    `mapstructure:"refresh_interval_sec"`
	MinFetchIntervalSec int    `mapstructure:"min_fetch_interval_sec"`
	FetchTimeoutSec     int    `mapstructure:"fetch_timeout_sec"`
}

// TTL is the maximum age of a cached table served to explicit requests.
func (c RatesConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// RefreshInterval is the scheduler period and the staleness threshold it checks.
func (c RatesConfig) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSec) * time.Second
}

// MinFetchInterval is the minimum spacing of network fetches; zero disables throttling.
func (c RatesConfig) MinFetchInterval() time.Duration {
	return time.Duration(c.MinFetchIntervalSec) * time.Second
}

// FetchTimeout bounds a single shared network fetch.
func (c RatesConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// FavoritesConfig holds favorites settings.
type FavoritesConfig struct {
	Max int `mapstructure:"max"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./internal/config")

	v.SetEnvPrefix("RATESVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.serve_swagger", true)
	v.SetDefault("server.serve_metrics", true)
	v.SetDefault("storage.backend", BackendRedis)
	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "ratesdb")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_sec", 300)
	v.SetDefault("redis.addr", "redis:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("provider.kind", ProviderExchangeRateAPI)
	v.SetDefault("provider.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("provider.auth_scheme", "path")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout_sec", 10)
	v.SetDefault("provider.currencies", []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY"})
	v.SetDefault("rates.pivot", "USD")
	v.SetDefault("rates.ttl_sec", 3600)
	v.SetDefault("rates.refresh_interval_sec", 30)
	v.SetDefault("rates.min_fetch_interval_sec", 0)
	v.SetDefault("rates.fetch_timeout_sec", 15)
	v.SetDefault("favorites.max", 5)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Env values for list keys arrive as a single comma- or space-separated string.
	if len(cfg.Provider.Currencies) == 1 {
		cfg.Provider.Currencies = strings.FieldsFunc(cfg.Provider.Currencies[0], func(r rune) bool {
			return r == ',' || r == ' '
		})
	}
	for i, c := range cfg.Provider.Currencies {
		cfg.Provider.Currencies[i] = strings.ToUpper(strings.TrimSpace(c))
	}
	cfg.Rates.Pivot = strings.ToUpper(strings.TrimSpace(cfg.Rates.Pivot))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeSec <= 0 {
		cfg.Database.ConnMaxLifetimeSec = 300
	}

	cfg.Database.DSN = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.Name, cfg.Database.SSLMode)

	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, fmt.Errorf("redis.addr is required (set RATESVC_REDIS_ADDR)"))
		}
	case BackendPostgres:
		if c.Database.Host == "" {
			errs = append(errs, fmt.Errorf("database.host is required"))
		}
		if c.Database.Port <= 0 {
			errs = append(errs, fmt.Errorf("database.port must be positive, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, fmt.Errorf("database.user is required"))
		}
		if c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.name is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendRedis, BackendPostgres, c.Storage.Backend))
	}

	switch c.Provider.Kind {
	case ProviderExchangeRateAPI:
		if c.Provider.AuthScheme != "bearer" && c.Provider.AuthScheme != "path" {
			errs = append(errs, fmt.Errorf("provider.auth_scheme must be bearer or path, got %q", c.Provider.AuthScheme))
		}
	case ProviderFrankfurter:
	default:
		errs = append(errs, fmt.Errorf("provider.kind must be %q or %q, got %q", ProviderExchangeRateAPI, ProviderFrankfurter, c.Provider.Kind))
	}
	if c.Provider.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("provider.timeout_sec must be positive, got %d", c.Provider.TimeoutSec))
	}
	if len(c.Provider.Currencies) == 0 {
		errs = append(errs, fmt.Errorf("provider.currencies must not be empty"))
	}

	if len(c.Rates.Pivot) != 3 {
		errs = append(errs, fmt.Errorf("rates.pivot must be a 3-letter code, got %q", c.Rates.Pivot))
	}
	if c.Rates.TTLSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.ttl_sec must be positive, got %d", c.Rates.TTLSec))
	}
	if c.Rates.RefreshIntervalSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.refresh_interval_sec must be positive, got %d", c.Rates.RefreshIntervalSec))
	}
	if c.Rates.MinFetchIntervalSec < 0 {
		errs = append(errs, fmt.Errorf("rates.min_fetch_interval_sec must be non-negative, got %d", c.Rates.MinFetchIntervalSec))
	}
	if c.Rates.FetchTimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("rates.fetch_timeout_sec must be positive, got %d", c.Rates.FetchTimeoutSec))
	}

	if c.Favorites.Max <= 0 {
		errs = append(errs, fmt.Errorf("favorites.max must be positive, got %d", c.Favorites.Max))
	}

	return errors.Join(errs...)
}
