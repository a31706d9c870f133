package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweater-ventures/hodlboard/api"
	"github.com/sweater-ventures/hodlboard/app"
	"github.com/sweater-ventures/hodlboard/config"
	"github.com/sweater-ventures/hodlboard/middleware"
	"github.com/sweater-ventures/hodlboard/upstream"
)

func main() {
	config.InitLogging()
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Unable to load configuration!!!", err)
	}

	if appConfig == nil {
		log.Fatal("Nil AppConfig, WTF")
	}

	providers, err := buildProviders(appConfig)
	if err != nil {
		log.Fatal("Unable to initialize upstream providers", err)
	}

	application, err := app.NewApp(appConfig, providers)
	if err != nil {
		log.Fatal("Unable to initialize application", err)
	}
	defer application.Close()

	slog.Debug("Configuration",
		"DevMode", appConfig.DevMode,
		"LogLevel", appConfig.LogLevel,
	)

	router := http.NewServeMux()
	api.AddApis(application, router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", appConfig.Port),
		Handler: middleware.AllStandardMiddleware(router),
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Starting Hodlboard", "port", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-sigChan
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}

// buildProviders wires the upstream clients from configuration. Optional
// providers (reddit, AI) are left nil when unconfigured; the services fall
// back to local content.
func buildProviders(cfg *config.AppConfig) (app.Providers, error) {
	fetcher := app.NewFetcher(
		time.Duration(cfg.FetchTimeoutSeconds)*time.Second,
		cfg.FetchMaxAttempts,
		time.Duration(cfg.FetchBackoffBaseMs)*time.Millisecond,
		time.Duration(cfg.FetchBackoffMaxMs)*time.Millisecond,
	)

	providers := app.Providers{
		Prices: upstream.NewPriceClient(cfg.PriceAPIBaseURL, fetcher),
		News:   upstream.NewNewsClient(cfg.NewsAPIBaseURL, cfg.NewsAPIToken, config.SplitCSV(cfg.NewsFeeds), fetcher),
	}

	if cfg.RedditClientID != "" && cfg.RedditClientSecret != "" {
		providers.Memes = upstream.NewMemeClient(cfg.RedditClientID, cfg.RedditClientSecret, cfg.RedditUserAgent, fetcher)
	} else {
		slog.Warn("Reddit credentials not configured, meme section will serve the local fallback")
	}

	ai, err := upstream.NewTextProvider(cfg.AIProvider, cfg.AIModel, cfg.AIAPIKey,
		time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
	if err != nil {
		return app.Providers{}, err
	}
	if ai == nil {
		slog.Info("AI provider not configured, insights will come from the local pool")
	}
	providers.AI = ai

	return providers, nil
}
