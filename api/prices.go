package api

import (
	"net/http"
	"strings"

	"github.com/sweater-ventures/hodlboard/app"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /prices", routeHandler(board, getPricesHandler))
	})
}

type PricesResponse struct {
	Prices map[string]app.PriceQuote `json:"prices"`
}

func getPricesHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ids")
	if raw == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "ids query parameter is required"})
		return
	}

	quotes := board.Prices.Prices(r.Context(), strings.Split(raw, ","))
	writeJsonResponse(w, http.StatusOK, PricesResponse{Prices: quotes})
}
