package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sweater-ventures/hodlboard/db"
)

// MemeItem is one candidate from the shared feed.
type MemeItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Img       string `json:"img"`
	Source    string `json:"source"`
	Permalink string `json:"permalink,omitempty"`
}

// MemeProvider fetches image posts from the listed communities.
type MemeProvider interface {
	FetchMemes(ctx context.Context, subreddits []string) ([]MemeItem, error)
}

// MemeService keeps one shared, deduplicated feed cache plus global and
// per-user anti-repeat windows, and picks a personalized meme per request.
type MemeService struct {
	feed       *KeyedCache[string, []MemeItem]
	provider   MemeProvider
	subreddits []string

	mu         sync.Mutex
	userSeen   map[string]*RecentSet
	userTouch  map[string]time.Time
	lastShown  map[string]string
	globalSeen *RecentSet

	perUserWindow int
	maxUsers      int
}

// MemeServiceConfig bounds the anti-repeat bookkeeping.
type MemeServiceConfig struct {
	FeedTTL       time.Duration
	BaseSubs      []string
	PerUserWindow int
	GlobalWindow  int
	MaxUsers      int
}

func NewMemeService(provider MemeProvider, limiter *TokenBucket, cfg MemeServiceConfig) *MemeService {
	subs := append([]string{}, cfg.BaseSubs...)
	subs = append(subs, KnownMemeSubreddits()...)

	fallback := func(string) []MemeItem { return nil }
	return &MemeService{
		feed:          NewKeyedCache[string, []MemeItem]("memes", cfg.FeedTTL, limiter, fallback),
		provider:      provider,
		subreddits:    dedupeStrings(subs),
		userSeen:      make(map[string]*RecentSet),
		userTouch:     make(map[string]time.Time),
		lastShown:     make(map[string]string),
		globalSeen:    NewRecentSet(cfg.GlobalWindow),
		perUserWindow: cfg.PerUserWindow,
		maxUsers:      cfg.MaxUsers,
	}
}

// MemeForUser returns one personalized meme, never repeating the user's
// immediately preceding pick while an alternative exists. Picks prefer items
// recently unseen by this user and by anyone; when everything is recent the
// full pool is used.
func (s *MemeService) MemeForUser(ctx context.Context, userID string, prefs db.UserPreference) MemeItem {
	feed := s.feed.Get(ctx, "feed", s.loadFeed)
	if len(feed) == 0 {
		return FallbackMeme()
	}

	s.mu.Lock()
	window := s.windowLocked(userID)
	last := s.lastShown[userID]
	s.mu.Unlock()

	candidates := feed
	if last != "" && len(feed) >= 2 {
		candidates = make([]MemeItem, 0, len(feed))
		for _, item := range feed {
			if item.ID != last {
				candidates = append(candidates, item)
			}
		}
	}

	recentlySeen := func(id string) bool {
		return window.Contains(id) || s.globalSeen.Contains(id)
	}
	pick, ok := PickMeme(candidates, prefs, recentlySeen)
	if !ok {
		return FallbackMeme()
	}

	s.mu.Lock()
	s.lastShown[userID] = pick.ID
	s.mu.Unlock()
	window.Add(pick.ID)
	s.globalSeen.Add(pick.ID)
	return pick
}

// loadFeed fetches all configured communities and deduplicates by item id,
// preserving first-seen order.
func (s *MemeService) loadFeed(ctx context.Context) ([]MemeItem, error) {
	if s.provider == nil {
		return nil, errors.New("no meme provider configured")
	}
	items, err := s.provider.FetchMemes(ctx, s.subreddits)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(items))
	deduped := make([]MemeItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || item.Img == "" {
			continue
		}
		if _, dup := seen[item.ID]; dup {
			continue
		}
		seen[item.ID] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped, nil
}

// windowLocked returns the user's anti-repeat window, creating it on first
// use and evicting the longest-untouched user once over the bound. Callers
// must hold s.mu.
func (s *MemeService) windowLocked(userID string) *RecentSet {
	if w, ok := s.userSeen[userID]; ok {
		s.userTouch[userID] = time.Now()
		return w
	}
	if len(s.userSeen) >= s.maxUsers {
		var victim string
		var oldest time.Time
		first := true
		for id, touched := range s.userTouch {
			if first || touched.Before(oldest) {
				victim = id
				oldest = touched
				first = false
			}
		}
		if !first {
			delete(s.userSeen, victim)
			delete(s.userTouch, victim)
			delete(s.lastShown, victim)
		}
	}
	w := NewRecentSet(s.perUserWindow)
	s.userSeen[userID] = w
	s.userTouch[userID] = time.Now()
	return w
}

// TrackedUsers reports how many per-user anti-repeat windows are held.
func (s *MemeService) TrackedUsers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.userSeen)
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
