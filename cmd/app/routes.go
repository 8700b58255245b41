package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ratesvc/internal/api"
	"ratesvc/internal/api/middleware"
	"ratesvc/internal/service"
)

func (app *App) initHTTP(rateService service.RateServiceInterface) {
	r := chi.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLoggingMiddleware(app.logger, app.metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/rates", api.HandleGetRates(rateService))
	r.Get("/rates/current", api.HandleGetCurrentRates(rateService))
	r.Get("/rates/state", api.HandleGetState(rateService))
	r.Post("/rates/state/dismiss", api.HandleDismissError(rateService))
	r.Get("/currencies", api.HandleListCurrencies(rateService))
	r.Get("/convert", api.HandleConvert(rateService))

	r.Route("/favorites", func(r chi.Router) {
		r.Get("/", api.HandleListFavorites(rateService))
		r.Put("/{code}", api.HandleAddFavorite(rateService))
		r.Delete("/{code}", api.HandleRemoveFavorite(rateService))
		r.Post("/{code}/toggle", api.HandleToggleFavorite(rateService))
	})

	r.Post("/session/activate", api.HandleActivate(rateService))
	r.Get("/healthz", api.HandleHealthz())
	r.Get("/readyz", api.HandleReadyz(rateService))

	if app.cfg.Server.ServeMetrics {
		r.Handle("/metrics", app.metrics.Handler())
	}

	if app.cfg.Server.ServeSwagger {
		r.Get("/swagger/*", api.SwaggerUIHandler())
		r.Get("/openapi.json", api.OpenAPISpecHandler())
	}

	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
