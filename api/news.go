package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sweater-ventures/hodlboard/app"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /news/{userID}", routeHandler(board, getNewsHandler))
		router.Handle("POST /news/{userID}/refresh", routeHandler(board, refreshNewsHandler))
	})
}

type NewsResponse struct {
	Items     []app.NewsItem `json:"items"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Set only on a throttled refresh.
	TooSoon      bool  `json:"too_soon,omitempty"`
	RetryAfterMs int64 `json:"retry_after_ms,omitempty"`
}

func getNewsHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "userID is required"})
		return
	}

	record := board.News.Cached(r.Context(), userID)
	writeJsonResponse(w, http.StatusOK, NewsResponse{Items: record.Items, UpdatedAt: record.UpdatedAt})
}

func refreshNewsHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "userID is required"})
		return
	}

	prefs, err := board.Preferences(r.Context(), userID)
	if err != nil {
		log(r.Context()).Error("Preference lookup failed", "user_id", userID, "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	record, err := board.News.Refresh(r.Context(), userID, prefs)
	var tooSoon *app.TooSoonError
	if errors.As(err, &tooSoon) {
		writeJsonResponse(w, http.StatusOK, NewsResponse{
			Items:        record.Items,
			UpdatedAt:    record.UpdatedAt,
			TooSoon:      true,
			RetryAfterMs: tooSoon.RetryAfter.Milliseconds(),
		})
		return
	}
	if err != nil {
		log(r.Context()).Error("News refresh failed", "user_id", userID, "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJsonResponse(w, http.StatusOK, NewsResponse{Items: record.Items, UpdatedAt: record.UpdatedAt})
}
