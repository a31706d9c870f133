package api

import (
	"net/http"

	"github.com/sweater-ventures/hodlboard/app"
	"github.com/sweater-ventures/hodlboard/config"
)

func init() {
	registerRoute(func(app *app.Application, router *http.ServeMux) {
		router.Handle("/version", routeHandler(app, versionApiHandler))
	})
}

type VersionResponse struct {
	App     string `json:"app"`
	Version string `json:"version"`
}

func versionApiHandler(app *app.Application, w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, VersionResponse{
		App:     "hodlboard",
		Version: config.Version,
	})
}
