package app

import (
	"context"
	"time"

	"github.com/sweater-ventures/hodlboard/db"
)

// NewsItem is one headline, normalized at the provider boundary.
type NewsItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}

// NewsRecord is the sticky per-user view served to clients.
type NewsRecord struct {
	Items     []NewsItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewsProvider fetches raw headlines filtered to the given assets.
type NewsProvider interface {
	FetchNews(ctx context.Context, assets []string) ([]NewsItem, error)
}

// NewsService serves per-user sticky headlines: reads are pure lookups, and
// the only way content changes is an explicit, per-user-throttled refresh.
type NewsService struct {
	store    *StickyStore[[]NewsItem]
	provider NewsProvider
}

func NewNewsService(provider NewsProvider, maxUsers int, minRefresh time.Duration) *NewsService {
	return &NewsService{
		store:    NewStickyStore[[]NewsItem](maxUsers, minRefresh),
		provider: provider,
	}
}

// Cached returns the user's sticky headlines without touching the network,
// seeding first-time users with the static starter set.
func (s *NewsService) Cached(ctx context.Context, userID string) NewsRecord {
	if e, ok := s.store.Read(userID); ok {
		return NewsRecord{Items: e.Value, UpdatedAt: e.UpdatedAt}
	}
	e := s.store.Seed(userID, FallbackNews())
	return NewsRecord{Items: e.Value, UpdatedAt: e.UpdatedAt}
}

// Refresh fetches fresh headlines for the user, ranked against their
// profile. When throttled it returns the current record alongside a
// TooSoonError; on upstream failure or an empty result it keeps the sticky
// items and reports success, so fresh-but-empty data never clobbers content.
func (s *NewsService) Refresh(ctx context.Context, userID string, prefs db.UserPreference) (NewsRecord, error) {
	if wait, ok := s.store.TryRefresh(userID); !ok {
		log(ctx).Debug("News refresh throttled", "user_id", userID, "retry_after", wait)
		return s.Cached(ctx, userID), &TooSoonError{RetryAfter: wait}
	}

	if s.provider == nil {
		return s.Cached(ctx, userID), nil
	}

	items, err := s.provider.FetchNews(ctx, prefs.Assets)
	if err != nil {
		log(ctx).Warn("News refresh failed, keeping sticky items", "user_id", userID, "error", err)
		return s.Cached(ctx, userID), nil
	}

	ranked := RankNews(items, prefs, time.Now())
	if len(ranked) == 0 {
		log(ctx).Warn("News refresh returned nothing, keeping sticky items", "user_id", userID)
		return s.Cached(ctx, userID), nil
	}

	e := s.store.Write(userID, ranked)
	log(ctx).Info("News refreshed", "user_id", userID, "items", len(ranked))
	return NewsRecord{Items: e.Value, UpdatedAt: e.UpdatedAt}, nil
}

// Users reports how many sticky records are held.
func (s *NewsService) Users() int {
	return s.store.Len()
}
