package api

import (
	"encoding/json"
	"net/http"

	"github.com/sweater-ventures/hodlboard/app"
	"github.com/sweater-ventures/hodlboard/db"
)

func init() {
	registerRoute(func(board *app.Application, router *http.ServeMux) {
		router.Handle("GET /preferences/{userID}", routeHandler(board, getPreferencesHandler))
		router.Handle("PUT /preferences/{userID}", routeHandler(board, putPreferencesHandler))
		router.Handle("DELETE /preferences/{userID}", routeHandler(board, deletePreferencesHandler))
	})
}

type PreferencesRequest struct {
	Assets       []string `json:"assets"`
	InvestorType string   `json:"investor_type"`
	ContentTypes []string `json:"content_types"`
}

func getPreferencesHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
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

	writeJsonResponse(w, http.StatusOK, prefs)
}

func putPreferencesHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "userID is required"})
		return
	}

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	if !app.ValidInvestorType(req.InvestorType) {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "Unknown investor_type"})
		return
	}

	saved, err := board.DB.UpsertUserPreference(r.Context(), db.UpsertUserPreferenceParams{
		UserID:       userID,
		Assets:       req.Assets,
		InvestorType: req.InvestorType,
		ContentTypes: req.ContentTypes,
	})
	if err != nil {
		log(r.Context()).Error("Preference upsert failed", "user_id", userID, "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	log(r.Context()).Info("Preferences updated", "user_id", userID,
		"assets", len(saved.Assets), "investor_type", saved.InvestorType)
	writeJsonResponse(w, http.StatusOK, saved)
}

func deletePreferencesHandler(board *app.Application, w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		writeJsonResponse(w, http.StatusBadRequest, map[string]string{"error": "userID is required"})
		return
	}

	if err := board.DB.DeleteUserPreference(r.Context(), userID); err != nil {
		log(r.Context()).Error("Preference delete failed", "user_id", userID, "error", err)
		writeJsonResponse(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		return
	}

	writeJsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
