package testutil

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sweater-ventures/hodlboard/app"
	"github.com/sweater-ventures/hodlboard/config"
	"github.com/sweater-ventures/hodlboard/db"
)

// NewTimestamp returns a pgtype.Timestamptz set to now.
func NewTimestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
}

// PreferenceOpt is a functional option for building test UserPreferences.
type PreferenceOpt func(*db.UserPreference)

// NewPreference creates a db.UserPreference with sensible defaults. Use
// options to override.
func NewPreference(opts ...PreferenceOpt) db.UserPreference {
	p := db.UserPreference{
		UserID:       "user-1",
		Assets:       []string{"bitcoin", "ethereum"},
		InvestorType: app.InvestorLongTerm,
		ContentTypes: []string{"news", "memes"},
		UpdatedAt:    NewTimestamp(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewNewsItem creates an app.NewsItem published at the given time.
func NewNewsItem(id, title string, publishedAt time.Time) app.NewsItem {
	return app.NewsItem{
		ID:          id,
		Title:       title,
		URL:         "https://example.com/news/" + id,
		Source:      "example.com",
		PublishedAt: publishedAt,
	}
}

// NewMemeItems creates n distinct meme items from the given community.
func NewMemeItems(n int, source string) []app.MemeItem {
	items := make([]app.MemeItem, n)
	for i := range items {
		items[i] = app.MemeItem{
			ID:     fmt.Sprintf("%s-%d", source, i),
			Title:  fmt.Sprintf("meme %d from %s", i, source),
			Img:    fmt.Sprintf("https://i.example.com/%s-%d.png", source, i),
			Source: source,
		}
	}
	return items
}

// AppOpt is a functional option for building test Applications.
type AppOpt func(*app.Application)

// NewTestApp creates an app.Application suitable for testing. It uses the
// provided mock Querier and providers, a generous rate limit, and small
// retention windows.
func NewTestApp(mockDB *MockQuerier, providers app.Providers, opts ...AppOpt) *app.Application {
	limiter := app.NewTokenBucket(100, 6000)
	insights := app.NewInsightCache(time.UTC, 6, 100, app.FallbackInsight)
	a := &app.Application{
		Config: config.AppConfig{
			Port: 8010,
		},
		DB:       mockDB,
		Limiter:  limiter,
		News:     app.NewNewsService(providers.News, 100, time.Minute),
		Prices:   app.NewPriceService(providers.Prices, limiter, time.Minute),
		Insights: app.NewInsightService(insights, providers.AI),
		Memes: app.NewMemeService(providers.Memes, limiter, app.MemeServiceConfig{
			FeedTTL:       time.Minute,
			BaseSubs:      []string{"cryptocurrencymemes"},
			PerUserWindow: 5,
			GlobalWindow:  20,
			MaxUsers:      100,
		}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
