package app

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sweater-ventures/hodlboard/config"
	"github.com/sweater-ventures/hodlboard/db"
)

// Application wires the shared caches, the rate limiter, and the upstream
// providers together. All mutable state lives in the injected services so
// tests can construct an Application around doubles with controlled clocks.
type Application struct {
	Config   config.AppConfig
	DB       db.Querier
	Limiter  *TokenBucket
	News     *NewsService
	Prices   *PriceService
	Insights *InsightService
	Memes    *MemeService
	dbconn   *pgxpool.Pool
}

// Providers carries the upstream clients constructed by main. AI may be nil
// when unconfigured.
type Providers struct {
	News   NewsProvider
	Prices PriceProvider
	Memes  MemeProvider
	AI     TextProvider
}

func NewApp(cfg *config.AppConfig, providers Providers) (*Application, error) {
	conn, err := connectToDB(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.InsightTimezone)
	if err != nil {
		slog.Warn("Unknown insight timezone, falling back to UTC",
			"timezone", cfg.InsightTimezone, "error", err)
		loc = time.UTC
	}

	limiter := NewTokenBucket(cfg.PriceRateCapacity, cfg.PriceRatePerMinute)

	insightCache := NewInsightCache(loc, cfg.InsightCutoverHour, cfg.InsightMaxUsers, FallbackInsight)

	return &Application{
		Config:  *cfg,
		DB:      db.New(conn),
		Limiter: limiter,
		News: NewNewsService(providers.News, cfg.NewsMaxUsers,
			time.Duration(cfg.NewsRefreshMinSeconds)*time.Second),
		Prices: NewPriceService(providers.Prices, limiter,
			time.Duration(cfg.PriceTTLSeconds)*time.Second),
		Insights: NewInsightService(insightCache, providers.AI),
		Memes: NewMemeService(providers.Memes, limiter, MemeServiceConfig{
			FeedTTL:       time.Duration(cfg.MemeTTLSeconds) * time.Second,
			BaseSubs:      config.SplitCSV(cfg.MemeSubreddits),
			PerUserWindow: cfg.RecentMemesPerUser,
			GlobalWindow:  cfg.RecentMemesGlobal,
			MaxUsers:      cfg.RecentMemeUserWindows,
		}),
		dbconn: conn,
	}, nil
}
