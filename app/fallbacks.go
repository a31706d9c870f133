package app

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"github.com/sweater-ventures/hodlboard/db"
)

// Static fallback content. Every dashboard section has one of these so a
// total upstream outage still renders a complete page.

// DefaultPreferences is the last-resort profile for users without a stored
// row.
func DefaultPreferences(userID string) db.UserPreference {
	return db.UserPreference{
		UserID:       userID,
		Assets:       []string{"bitcoin", "ethereum"},
		InvestorType: InvestorLongTerm,
		ContentTypes: []string{"news", "prices", "ai_insight", "meme"},
	}
}

// FallbackNews returns the evergreen starter headlines served before a
// user's first successful refresh or when every news upstream is down.
func FallbackNews() []NewsItem {
	return []NewsItem{
		{
			ID:     "fallback-news-1",
			Title:  "Welcome to your dashboard: hit refresh to pull the latest headlines",
			URL:    "https://hodlboard.example/getting-started",
			Source: "hodlboard",
		},
		{
			ID:     "fallback-news-2",
			Title:  "Markets never sleep, but upstream APIs sometimes do",
			URL:    "https://hodlboard.example/status",
			Source: "hodlboard",
		},
		{
			ID:     "fallback-news-3",
			Title:  "Tip: your news stays put until you ask for fresh items",
			URL:    "https://hodlboard.example/faq",
			Source: "hodlboard",
		},
	}
}

// FallbackPrices returns a non-empty placeholder quote map for the requested
// assets. Zeroed quotes signal "no data" to the client without breaking the
// response shape.
func FallbackPrices(assetIDs []string) map[string]PriceQuote {
	quotes := make(map[string]PriceQuote, len(assetIDs))
	for _, id := range assetIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		quotes[id] = PriceQuote{}
	}
	if len(quotes) == 0 {
		quotes["bitcoin"] = PriceQuote{}
	}
	return quotes
}

// FallbackMeme is served when the shared feed is empty and nothing stale is
// cached.
func FallbackMeme() MemeItem {
	return MemeItem{
		ID:     "fallback-meme-1",
		Title:  "When the meme API is down but you still believe",
		Img:    "https://hodlboard.example/static/fallback-meme.png",
		Source: "hodlboard",
	}
}

// fallbackInsightPool is the canned text used when no AI provider is
// configured or the provider is unavailable.
var fallbackInsightPool = []string{
	"Volatility is the price of admission. Position sizes you can sleep on outlast any single candle.",
	"Zoom out: daily noise rarely changes a thesis. Re-read yours before reacting to today's move.",
	"Liquidity begets liquidity. Watch where volume concentrates, not where headlines point.",
	"The best risk management is boring: fixed allocations, scheduled rebalances, no heroics.",
	"Narratives rotate faster than fundamentals. If today's story feels urgent, that is usually the signal to slow down.",
}

// FallbackInsight deterministically picks from the canned pool so the same
// user sees the same text for the whole period even across restarts.
func FallbackInsight(userID, periodKey string) Insight {
	h := fnv.New32a()
	h.Write([]byte(userID))
	h.Write([]byte(periodKey))
	idx := int(h.Sum32()) % len(fallbackInsightPool)
	if idx < 0 {
		idx += len(fallbackInsightPool)
	}
	return Insight{
		ID:   fmt.Sprintf("local-%s-%d", periodKey, idx),
		Text: fallbackInsightPool[idx],
	}
}

// canonicalAssetIDs lowercases, deduplicates, and sorts asset ids so
// permutations of the same set share one cache entry.
func canonicalAssetIDs(assetIDs []string) []string {
	seen := make(map[string]struct{}, len(assetIDs))
	out := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
