package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sweater-ventures/hodlboard/db"
)

// TextProvider performs one prompt-based completion request.
type TextProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var errNoTextProvider = errors.New("no AI text provider configured")

const insightPrompt = `You are a measured crypto market analyst. Write today's one-paragraph insight (max 280 characters) for a reader with this profile:

Assets followed: %s
Investor style: %s

Be specific and calm. No hype, no exclamation marks, no financial advice disclaimers.

Respond with ONLY the insight text.`

// InsightService produces one insight per user per period, coalescing
// concurrent computations and degrading to the local canned pool when the
// provider is missing or failing.
type InsightService struct {
	cache    *InsightCache
	provider TextProvider
}

// NewInsightService accepts a nil provider; the cache then serves the canned
// pool for every period.
func NewInsightService(cache *InsightCache, provider TextProvider) *InsightService {
	return &InsightService{cache: cache, provider: provider}
}

// InsightFor returns the user's insight for the current period.
func (s *InsightService) InsightFor(ctx context.Context, userID string, prefs db.UserPreference) Insight {
	return s.cache.GetOrCompute(ctx, userID, func(ctx context.Context) (Insight, error) {
		if s.provider == nil {
			return Insight{}, errNoTextProvider
		}
		prompt := fmt.Sprintf(insightPrompt,
			strings.Join(prefs.Assets, ", "),
			prefs.InvestorType,
		)
		text, err := s.provider.Complete(ctx, prompt)
		if err != nil {
			return Insight{}, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return Insight{}, errors.New("empty completion")
		}
		return Insight{ID: uuid.NewString(), Text: text}, nil
	})
}

// Users reports how many insight records are cached.
func (s *InsightService) Users() int {
	return s.cache.Len()
}
