package config

import (
	"log/slog"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	DevMode  bool   `arg:"--dev,env:DEV_MODE" default:"false"`
	Port     int    `arg:"-p,--port,env:LISTEN_PORT" default:"8010"`
	LogLevel string `arg:"--log-level,env:LOG_LEVEL" default:"default" help:"Log level to use.  Valid values are: debug, info, and warn/warning.  If default the level will be info or debug in dev mode."`

	DBHost     string `arg:"--db-host,env:DB_HOST" default:"localhost"`
	DBName     string `arg:"--db-name,env:DB_NAME" default:"hodlboard"`
	DBPort     int    `arg:"--db-port,env:DB_PORT" default:"5432"`
	DBMaxConns int    `arg:"--db-max-conns,env:DB_MAX_CONNS" default:"10"`
	DBMinConns int    `arg:"--db-min-conns,env:DB_MIN_CONNS" default:"1"`
	DBSSLMode  string `arg:"--db-ssl-mode,env:DB_SSL_MODE" default:"disable"`
	DBUsername string `arg:"--db-username,env:DB_USERNAME" default:"hodlboard"`
	DBPassword string `arg:"--db-password,env:DB_PASSWORD" default:"badpassword"`

	// Price upstream rate limiting. The bucket is global for the process;
	// refill is expressed in tokens per minute.
	PriceRateCapacity  float64 `arg:"--price-rate-capacity,env:PRICE_RATE_CAPACITY" default:"8"`
	PriceRatePerMinute float64 `arg:"--price-rate-per-minute,env:PRICE_RATE_PER_MINUTE" default:"8"`
	PriceTTLSeconds    int     `arg:"--price-ttl-seconds,env:PRICE_TTL_SECONDS" default:"90"`
	PriceAPIBaseURL    string  `arg:"--price-api-base-url,env:PRICE_API_BASE_URL" default:"https://api.coingecko.com/api/v3"`

	NewsAPIBaseURL        string `arg:"--news-api-base-url,env:NEWS_API_BASE_URL" default:"https://cryptopanic.com/api/v1"`
	NewsAPIToken          string `arg:"--news-api-token,env:NEWS_API_TOKEN" default:""`
	NewsFeeds             string `arg:"--news-feeds,env:NEWS_FEEDS" default:"https://cointelegraph.com/rss,https://decrypt.co/feed" help:"Comma-separated RSS feeds used when no news API token is configured."`
	NewsRefreshMinSeconds int    `arg:"--news-refresh-min-seconds,env:NEWS_REFRESH_MIN_SECONDS" default:"120" help:"Minimum interval between manual news refreshes per user."`
	NewsMaxUsers          int    `arg:"--news-max-users,env:NEWS_MAX_USERS" default:"5000" help:"Upper bound on per-user sticky news records kept in memory."`

	InsightTimezone    string `arg:"--insight-timezone,env:INSIGHT_TIMEZONE" default:"America/New_York"`
	InsightCutoverHour int    `arg:"--insight-cutover-hour,env:INSIGHT_CUTOVER_HOUR" default:"6" help:"Local hour at which a new insight day begins."`
	InsightMaxUsers    int    `arg:"--insight-max-users,env:INSIGHT_MAX_USERS" default:"5000"`
	AIProvider         string `arg:"--ai-provider,env:AI_PROVIDER" default:"openai" help:"AI text provider: openai or claude."`
	AIModel            string `arg:"--ai-model,env:AI_MODEL" default:""`
	AIAPIKey           string `arg:"--ai-api-key,env:AI_API_KEY" default:"" help:"If empty, insights come from the local canned pool."`

	MemeTTLSeconds     int    `arg:"--meme-ttl-seconds,env:MEME_TTL_SECONDS" default:"600"`
	MemeSubreddits     string `arg:"--meme-subreddits,env:MEME_SUBREDDITS" default:"cryptocurrencymemes,bitcoinmemes" help:"Comma-separated base subreddits always included in the meme feed."`
	RedditClientID     string `arg:"--reddit-client-id,env:REDDIT_CLIENT_ID" default:""`
	RedditClientSecret string `arg:"--reddit-client-secret,env:REDDIT_CLIENT_SECRET" default:""`
	RedditUserAgent    string `arg:"--reddit-user-agent,env:REDDIT_USER_AGENT" default:"hodlboard/1.0"`

	FetchMaxAttempts    int `arg:"--fetch-max-attempts,env:FETCH_MAX_ATTEMPTS" default:"3"`
	FetchBackoffBaseMs  int `arg:"--fetch-backoff-base-ms,env:FETCH_BACKOFF_BASE_MS" default:"500"`
	FetchBackoffMaxMs   int `arg:"--fetch-backoff-max-ms,env:FETCH_BACKOFF_MAX_MS" default:"8000"`
	FetchTimeoutSeconds int `arg:"--fetch-timeout-seconds,env:FETCH_TIMEOUT_SECONDS" default:"15"`

	RecentMemesPerUser    int `arg:"--recent-memes-per-user,env:RECENT_MEMES_PER_USER" default:"12"`
	RecentMemesGlobal     int `arg:"--recent-memes-global,env:RECENT_MEMES_GLOBAL" default:"50"`
	RecentMemeUserWindows int `arg:"--recent-meme-user-windows,env:RECENT_MEME_USER_WINDOWS" default:"5000" help:"Upper bound on per-user anti-repeat windows kept in memory."`
}

func LoadConfig() (*AppConfig, error) {
	var appConfig AppConfig
	arg.MustParse(&appConfig)

	if appConfig.DevMode {
		err := godotenv.Load(".env")
		if err == nil {
			// re-parse to get env vars from .env
			slog.Info("Loaded .env")
			arg.MustParse(&appConfig)
		}
	}

	if appConfig.LogLevel == "default" {
		if appConfig.DevMode {
			logLevel.Set(slog.LevelDebug)
		} else {
			logLevel.Set(slog.LevelInfo)
		}
	} else {
		intendedLevel := strings.ToLower(appConfig.LogLevel)
		switch intendedLevel {
		case "debug":
			logLevel.Set(slog.LevelDebug)
		case "info":
			logLevel.Set(slog.LevelInfo)
		case "warn", "warning":
			logLevel.Set(slog.LevelWarn)
		default:
			slog.Error("Unable to configure log level", "level", appConfig.LogLevel)
		}
	}

	return &appConfig, nil
}

// SplitCSV splits a comma-separated config value, trimming whitespace and
// dropping empty parts.
func SplitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
