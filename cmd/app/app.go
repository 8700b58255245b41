// Package main is the entry point for the exchange rate service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ratesvc/internal/config"
	"ratesvc/internal/coordinator"
	"ratesvc/internal/favorites"
	"ratesvc/internal/metrics"
	"ratesvc/internal/provider"
	"ratesvc/internal/ratecache"
	"ratesvc/internal/repository"
	"ratesvc/internal/scheduler"
	"ratesvc/internal/service"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg        *config.Config
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
	db         *sql.DB
	rdb        *redis.Client
	rateStore  repository.RateStore
	favStore   repository.FavoritesStore
	coord      *coordinator.Coordinator
	scheduler  *scheduler.Scheduler
	httpServer *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch app.cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := repository.NewPostgresDB(ctx, &app.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to Postgres: %w", err)
		}
		app.db = db

		if err := repository.RunMigrations(ctx, app.db, app.logger); err != nil {
			return fmt.Errorf("run DB migrations: %w", err)
		}
		app.rateStore = repository.NewPostgresRateStore(app.db, app.logger)
		app.favStore = repository.NewPostgresFavoritesStore(app.db)
		app.logger.Infow("Connected to Postgres", "host", app.cfg.Database.Host, "db", app.cfg.Database.Name)

	default:
		app.rdb = redis.NewClient(&redis.Options{
			Addr: app.cfg.Redis.Addr,
			DB:   app.cfg.Redis.DB,
		})
		if err := app.rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to Redis (%s): %w", app.cfg.Redis.Addr, err)
		}
		app.rateStore = repository.NewRedisRateStore(app.rdb, app.logger)
		app.favStore = repository.NewRedisFavoritesStore(app.rdb)
		app.logger.Infow("Connected to Redis", "addr", app.cfg.Redis.Addr)
	}

	return nil
}

func (app *App) initServices() error {
	rateProvider, err := newRateProvider(&app.cfg.Provider)
	if err != nil {
		return err
	}

	rates := app.cfg.Rates
	cache := ratecache.New(rateProvider, app.rateStore, app.logger, app.metrics)
	app.coord = coordinator.New(cache, app.logger, app.metrics, coordinator.Options{
		FetchTimeout:     rates.FetchTimeout(),
		MinFetchInterval: rates.MinFetchInterval(),
	})
	app.scheduler = scheduler.New(app.coord, rates.Pivot, rates.RefreshInterval(), app.logger)

	favs := favorites.NewManager(app.favStore, app.cfg.Favorites.Max, app.logger, app.metrics)
	rateService := service.NewRateService(
		app.coord,
		cache,
		favs,
		app.scheduler,
		service.NewValidator(app.cfg.Provider.Currencies),
		app.logger,
		service.Config{Pivot: rates.Pivot, TTL: rates.TTL()},
	)

	app.logger.Infow("Rate core configured",
		"provider", app.cfg.Provider.Kind,
		"pivot", rates.Pivot,
		"ttl", rates.TTL(),
		"refresh_interval", rates.RefreshInterval(),
		"min_fetch_interval", rates.MinFetchInterval(),
	)

	app.initHTTP(rateService)
	return nil
}

func newRateProvider(cfg *config.ProviderConfig) (provider.RatesProvider, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	switch cfg.Kind {
	case config.ProviderExchangeRateAPI:
		return provider.NewExchangeRateAPIProvider(provider.ExchangeRateAPIConfig{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey,
			Scheme:     provider.AuthScheme(cfg.AuthScheme),
			Currencies: cfg.Currencies,
			Timeout:    timeout,
		}), nil
	case config.ProviderFrankfurter:
		return provider.NewFrankfurterProvider(cfg.BaseURL, cfg.Currencies, timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

// Run starts the HTTP server and the staleness scheduler, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// The scheduler outlives the HTTP server so in-flight requests can still join a fetch.
	schedCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()

	g.Go(func() error {
		app.logger.Infow("Starting staleness scheduler", "interval", app.cfg.Rates.RefreshInterval())
		return app.scheduler.Run(schedCtx)
	})
	app.scheduler.Activate()

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-gctx.Done()
		return app.shutdown(stopScheduler)
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> coordinator -> connections.
func (app *App) shutdown(stopScheduler context.CancelFunc) error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Stop the timer and wait for a running check; Activate becomes a no-op
	stopScheduler()
	select {
	case <-app.scheduler.Done():
	case <-shutdownCtx.Done():
		app.logger.Warnw("Scheduler did not stop before the shutdown deadline")
		errs = append(errs, fmt.Errorf("scheduler stop: %w", shutdownCtx.Err()))
	}

	// 3. Late fetch results are discarded
	app.coord.Close()

	// 4. Close connections (Redis, database)
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
