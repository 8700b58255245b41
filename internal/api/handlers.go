package api

import (
	"net/http"
	"strconv"
	"time"

	"ratesvc/internal/service"
)

// StateResponse represents the observable loading state
type StateResponse struct {
	State            string         `json:"state" example:"loaded"`
	LastUpdated      string         `json:"last_updated,omitempty" example:"2025-12-01T10:15:30Z"`
	LastUpdatedHuman string         `json:"last_updated_human" example:"5 minutes ago"`
	NextFetch        string         `json:"next_fetch,omitempty" example:"2025-12-01T11:15:30Z"`
	NextFetchHuman   string         `json:"next_fetch_human" example:"in 45 minutes"`
	Error            *ErrorResponse `json:"error,omitempty"`
}

// CurrencyResponse is a currency list row
type CurrencyResponse struct {
	RateResponse
	Favorite bool `json:"favorite" example:"true"`
}

// ConvertResponse is the result of a conversion
type ConvertResponse struct {
	Amount    string `json:"amount" example:"100"`
	From      string `json:"from" example:"USD"`
	To        string `json:"to" example:"EUR"`
	Result    string `json:"result" example:"91.23"`
	Formatted string `json:"formatted" example:"91.23"`
	FetchedAt string `json:"fetched_at" example:"2025-12-01T10:15:30Z"`
}

// HandleGetRates godoc
// @Summary Get exchange rates
// @Description Returns a rate table no older than the configured TTL. Concurrent requests share one upstream fetch. With force=true the cache is invalidated and a new fetch runs.
// @Tags rates
// @Produce json
// @Param force query bool false "Force a refresh"
// @Success 200 {object} RatesResponse "Rate table"
// @Failure 400 {object} ErrorResponse "Invalid force flag"
// @Failure 429 {object} ErrorResponse "Fetch throttled and no data available"
// @Failure 502 {object} RatesErrorResponse "Upstream failure, with the last known table when available"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates [get]
func HandleGetRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force := false
		if v := r.URL.Query().Get("force"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "force must be a boolean"})
				return
			}
			force = b
		}

		res, err := svc.Rates(r.Context(), force)
		if err != nil {
			status := errorStatus(err)
			resp := RatesErrorResponse{ErrorResponse: errorResponse(status, err)}
			if res != nil {
				stale := toRatesResponse(res)
				resp.Stale = &stale
			}
			writeJSON(w, status, resp)
			return
		}
		writeJSON(w, http.StatusOK, toRatesResponse(res))
	}
}

// HandleGetCurrentRates godoc
// @Summary Get the last known rate table
// @Description Returns the last fetched table regardless of age. Never triggers a fetch.
// @Tags rates
// @Produce json
// @Success 200 {object} RatesResponse "Rate table"
// @Failure 404 {object} ErrorResponse "No data yet"
// @Router /rates/current [get]
func HandleGetCurrentRates(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.CurrentTable(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toRatesResponse(res))
	}
}

// HandleGetState godoc
// @Summary Get loading state
// @Description Returns idle, loading, loaded or failed, the last error, when rates were last updated and when the fetch throttle next admits a fetch.
// @Tags rates
// @Produce json
// @Success 200 {object} StateResponse "Loading state"
// @Router /rates/state [get]
func HandleGetState(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toStateResponse(svc.State(r.Context())))
	}
}

// HandleDismissError godoc
// @Summary Dismiss the last error
// @Description Clears a failed state: loaded when data exists, idle otherwise.
// @Tags rates
// @Produce json
// @Success 200 {object} StateResponse "Loading state"
// @Router /rates/state/dismiss [post]
func HandleDismissError(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toStateResponse(svc.DismissError(r.Context())))
	}
}

// HandleListCurrencies godoc
// @Summary List currencies
// @Description Lists the current table with favorites first, optionally filtered by code or name.
// @Tags currencies
// @Produce json
// @Param q query string false "Search by code or name"
// @Success 200 {array} CurrencyResponse "Currencies"
// @Failure 404 {object} ErrorResponse "No data yet"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /currencies [get]
func HandleListCurrencies(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Currencies(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]CurrencyResponse, 0, len(list))
		for _, c := range list {
			rr := toRateResponse(c.CurrencyRate)
			rr.Display = c.Display
			out = append(out, CurrencyResponse{RateResponse: rr, Favorite: c.Favorite})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleConvert godoc
// @Summary Convert an amount
// @Description Converts between two currencies of the current table. Does not trigger a fetch.
// @Tags conversion
// @Produce json
// @Param amount query string true "Amount, comma grouping allowed" example(1,234.50)
// @Param from query string true "Source currency code" minlength(3) maxlength(3)
// @Param to query string true "Target currency code" minlength(3) maxlength(3)
// @Success 200 {object} ConvertResponse "Conversion result"
// @Failure 400 {object} ErrorResponse "Invalid amount or currency code"
// @Failure 404 {object} ErrorResponse "No data yet"
// @Failure 422 {object} ErrorResponse "Currency missing from the rate table"
// @Router /convert [get]
func HandleConvert(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		amount, from, to := q.Get("amount"), q.Get("from"), q.Get("to")
		if amount == "" || from == "" || to == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "amount, from and to query params are required"})
			return
		}
		res, err := svc.Convert(r.Context(), amount, from, to)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ConvertResponse{
			Amount:    res.Amount.String(),
			From:      res.From,
			To:        res.To,
			Result:    res.Result.String(),
			Formatted: res.Formatted,
			FetchedAt: res.FetchedAt.Format(time.RFC3339),
		})
	}
}

// HandleActivate godoc
// @Summary Signal a foreground transition
// @Description Requests an immediate staleness check. Returns without waiting for it.
// @Tags session
// @Success 202 "Accepted"
// @Router /session/activate [post]
func HandleActivate(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svc.Activate()
		w.WriteHeader(http.StatusAccepted)
	}
}

func toStateResponse(v service.StateView) StateResponse {
	out := StateResponse{State: string(v.State), LastUpdatedHuman: v.Humanized, NextFetchHuman: v.NextFetchHuman}
	if !v.LastUpdated.IsZero() {
		out.LastUpdated = v.LastUpdated.Format(time.RFC3339)
	}
	if !v.NextFetch.IsZero() {
		out.NextFetch = v.NextFetch.Format(time.RFC3339)
	}
	if v.Error != nil {
		out.Error = &ErrorResponse{Error: v.Error.Message, Title: v.Error.Title, Kind: v.Error.Kind}
	}
	return out
}
