package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/sweater-ventures/hodlboard/app"
	"github.com/sweater-ventures/hodlboard/db"
	"github.com/sweater-ventures/hodlboard/testutil"
)

func newAPIRouter(board *app.Application) http.Handler {
	router := http.NewServeMux()
	AddApis(board, router)
	return router
}

func TestGetDashboardHandler(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	mockDB.On("GetUserPreference", mock.Anything, "u1").Return(testutil.NewPreference(), nil)

	board := testutil.NewTestApp(mockDB, app.Providers{})
	router := newAPIRouter(board)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/dashboard/u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var dashboard app.Dashboard
	testutil.AssertJSONResponse(t, rec, http.StatusOK, &dashboard)

	assert.Equal(t, "u1", dashboard.Preferences.UserID)
	assert.NotEmpty(t, dashboard.Sections.News.Items)
	assert.NotEmpty(t, dashboard.Sections.AIInsight.Text)
	mockDB.AssertExpectations(t)
}

func TestGetDashboardHandlerUnknownUserGetsDefaults(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	mockDB.On("GetUserPreference", mock.Anything, "nobody").Return(db.UserPreference{}, pgx.ErrNoRows)

	board := testutil.NewTestApp(mockDB, app.Providers{})
	router := newAPIRouter(board)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/dashboard/nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var dashboard app.Dashboard
	testutil.AssertJSONResponse(t, rec, http.StatusOK, &dashboard)
	assert.Equal(t, []string{"bitcoin", "ethereum"}, dashboard.Preferences.Assets)
}

func TestGetDashboardHandlerDatabaseError(t *testing.T) {
	mockDB := new(testutil.MockQuerier)
	mockDB.On("GetUserPreference", mock.Anything, "u1").Return(db.UserPreference{}, errors.New("connection refused"))

	board := testutil.NewTestApp(mockDB, app.Providers{})
	router := newAPIRouter(board)

	req := testutil.NewJSONRequest(t, http.MethodGet, "/api/dashboard/u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	testutil.AssertJSONError(t, rec, http.StatusInternalServerError, "Internal server error")
}
