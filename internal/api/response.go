// Package api implements HTTP handlers for the exchange rate service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ratesvc/internal/conversion"
	"ratesvc/internal/coordinator"
	"ratesvc/internal/favorites"
	"ratesvc/internal/model"
	"ratesvc/internal/provider"
	"ratesvc/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"HTTP Error: 503"`
	Title string `json:"title,omitempty" example:"Exchange Rate Error"`
	Kind  string `json:"kind,omitempty" example:"http"`
}

// RateResponse is one currency rate relative to the pivot
type RateResponse struct {
	Code    string `json:"code" example:"EUR"`
	Name    string `json:"name" example:"Euro"`
	Flag    string `json:"flag" example:"🇪🇺"`
	Rate    string `json:"rate" example:"0.9123"`
	Display string `json:"display" example:"0.9123"`
}

// RatesResponse is a full rate table
type RatesResponse struct {
	Pivot       string         `json:"pivot" example:"USD"`
	FetchedAt   string         `json:"fetched_at,omitempty" example:"2025-12-01T10:15:30Z"`
	LastUpdated string         `json:"last_updated" example:"5 minutes ago"`
	Source      string         `json:"source" example:"network"`
	Rates       []RateResponse `json:"rates"`
}

// RatesErrorResponse is a failed refresh, carrying the last known table when one exists
type RatesErrorResponse struct {
	ErrorResponse
	Stale *RatesResponse `json:"stale,omitempty"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorStatus maps service errors to HTTP status codes.
func errorStatus(err error) int {
	var pe *provider.Error
	switch {
	case errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrUnsupportedCurrency),
		errors.Is(err, favorites.ErrInvalidCode),
		errors.Is(err, conversion.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, favorites.ErrFull):
		return http.StatusConflict
	case errors.Is(err, conversion.ErrUnknownCurrency):
		return http.StatusUnprocessableEntity
	case errors.Is(err, coordinator.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, coordinator.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &pe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its mapped status. Unclassified failures are not echoed.
func writeError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	writeJSON(w, status, errorResponse(status, err))
}

func errorResponse(status int, err error) ErrorResponse {
	if status == http.StatusInternalServerError {
		return ErrorResponse{Error: "Internal error", Title: service.TitleUnexpectedError}
	}
	p := service.Present(err)
	resp := ErrorResponse{Error: p.Message, Kind: p.Kind}
	if p.Kind != "" {
		resp.Title = p.Title
	}
	return resp
}

func toRatesResponse(res *service.RatesResult) RatesResponse {
	out := RatesResponse{
		Pivot:       res.Pivot,
		LastUpdated: res.LastUpdated,
		Source:      string(res.Source),
		Rates:       make([]RateResponse, 0, len(res.Rates)),
	}
	if !res.FetchedAt.IsZero() {
		out.FetchedAt = res.FetchedAt.Format(time.RFC3339)
	}
	for _, r := range res.Rates {
		out.Rates = append(out.Rates, toRateResponse(r))
	}
	return out
}

func toRateResponse(r model.CurrencyRate) RateResponse {
	return RateResponse{
		Code:    r.Code,
		Name:    r.Name,
		Flag:    r.Flag,
		Rate:    r.Rate.String(),
		Display: r.FormattedRate(),
	}
}
