package api

import (
	"net/http"

	"github.com/sweater-ventures/hodlboard/app"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /healthz", routeHandler(board, healthzHandler))
	})
}

type HealthResponse struct {
	Status          string  `json:"status"`
	LimiterTokens   float64 `json:"limiter_tokens"`
	NewsUsers       int     `json:"news_users"`
	PriceSets       int     `json:"price_sets"`
	InsightUsers    int     `json:"insight_users"`
	MemeWindowUsers int     `json:"meme_window_users"`
}

func healthzHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, HealthResponse{
		Status:          "ok",
		LimiterTokens:   board.Limiter.Tokens(),
		NewsUsers:       board.News.Users(),
		PriceSets:       board.Prices.CachedSets(),
		InsightUsers:    board.Insights.Users(),
		MemeWindowUsers: board.Memes.TrackedUsers(),
	})
}
