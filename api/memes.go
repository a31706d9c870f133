package api

import (
	"net/http"

	"github.com/sweater-ventures/hodlboard/app"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /meme/{userID}", routeHandler(board, getMemeHandler))
	})
}

func getMemeHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
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

	meme := board.Memes.MemeForUser(r.Context(), userID, prefs)
	writeJsonResponse(w, http.StatusOK, meme)
}
