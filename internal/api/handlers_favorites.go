package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ratesvc/internal/service"
)

// FavoritesResponse is the favorites set
type FavoritesResponse struct {
	Codes     []string `json:"codes" example:"EUR,JPY"`
	Max       int      `json:"max" example:"5"`
	Remaining int      `json:"remaining" example:"3"`
}

// HandleListFavorites godoc
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Success 200 {object} FavoritesResponse "Favorites"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /favorites [get]
func HandleListFavorites(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Favorites(r.Context())
		writeFavorites(w, res, err)
	}
}

// HandleAddFavorite godoc
// @Summary Add a favorite
// @Tags favorites
// @Produce json
// @Param code path string true "Currency code" minlength(3) maxlength(3)
// @Success 200 {object} FavoritesResponse "Favorites"
// @Failure 400 {object} ErrorResponse "Invalid or unsupported code"
// @Failure 409 {object} ErrorResponse "Favorites limit reached"
// @Router /favorites/{code} [put]
func HandleAddFavorite(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.AddFavorite(r.Context(), chi.URLParam(r, "code"))
		writeFavorites(w, res, err)
	}
}

// HandleRemoveFavorite godoc
// @Summary Remove a favorite
// @Tags favorites
// @Produce json
// @Param code path string true "Currency code" minlength(3) maxlength(3)
// @Success 200 {object} FavoritesResponse "Favorites"
// @Failure 400 {object} ErrorResponse "Invalid code"
// @Router /favorites/{code} [delete]
func HandleRemoveFavorite(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.RemoveFavorite(r.Context(), chi.URLParam(r, "code"))
		writeFavorites(w, res, err)
	}
}

// HandleToggleFavorite godoc
// @Summary Toggle a favorite
// @Tags favorites
// @Produce json
// @Param code path string true "Currency code" minlength(3) maxlength(3)
// @Success 200 {object} FavoritesResponse "Favorites"
// @Failure 400 {object} ErrorResponse "Invalid or unsupported code"
// @Failure 409 {object} ErrorResponse "Favorites limit reached"
// @Router /favorites/{code}/toggle [post]
func HandleToggleFavorite(svc service.RateServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.ToggleFavorite(r.Context(), chi.URLParam(r, "code"))
		writeFavorites(w, res, err)
	}
}

func writeFavorites(w http.ResponseWriter, res *service.FavoritesResult, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	codes := res.Codes
	if codes == nil {
		codes = []string{}
	}
	writeJSON(w, http.StatusOK, FavoritesResponse{Codes: codes, Max: res.Max, Remaining: res.Remaining})
}
