package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/sweater-ventures/hodlboard/db"
)

// DashboardSections holds the four content sections.
type DashboardSections struct {
	News      NewsRecord            `json:"news"`
	Prices    map[string]PriceQuote `json:"prices"`
	AIInsight Insight               `json:"ai_insight"`
	Meme      MemeItem              `json:"meme"`
}

// Dashboard is the combined payload for one user.
type Dashboard struct {
	Preferences db.UserPreference `json:"preferences"`
	Sections    DashboardSections `json:"sections"`
}

// Preferences loads the user's profile, mapping a missing row to the static
// default profile. Any other lookup failure is the one error that
// propagates to the caller.
func (a *Application) Preferences(ctx context.Context, userID string) (db.UserPreference, error) {
	prefs, err := a.DB.GetUserPreference(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return db.UserPreference{}, fmt.Errorf("loading preferences for user %s: %w", userID, err)
	}
	if len(prefs.Assets) == 0 {
		prefs.Assets = DefaultPreferences(userID).Assets
	}
	return prefs, nil
}

// GetDashboard assembles all four sections concurrently. The section fetches
// are independent and each degrades to its own fallback, so a sub-fetch can
// never fail the whole response.
func (a *Application) GetDashboard(ctx context.Context, userID string) (Dashboard, error) {
	prefs, err := a.Preferences(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	dashboard := Dashboard{Preferences: prefs}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		dashboard.Sections.News = a.News.Cached(ctx, userID)
	}()
	go func() {
		defer wg.Done()
		dashboard.Sections.Prices = a.Prices.Prices(ctx, prefs.Assets)
	}()
	go func() {
		defer wg.Done()
		dashboard.Sections.AIInsight = a.Insights.InsightFor(ctx, userID, prefs)
	}()
	go func() {
		defer wg.Done()
		dashboard.Sections.Meme = a.Memes.MemeForUser(ctx, userID, prefs)
	}()
	wg.Wait()

	return dashboard, nil
}
