package api

import (
	"net/http"

	"github.com/sweater-ventures/hodlboard/app"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /dashboard/{userID}", routeHandler(board, getDashboardHandler))
	})
}

func getDashboardHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "userID is required"})
		return
	}

	dashboard, err := board.GetDashboard(r.Context(), userID)
	if err != nil {
		log(r.Context()).Error("Dashboard assembly failed", "user_id", userID, "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJsonResponse(w, http.StatusOK, dashboard)
}
