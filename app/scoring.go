package app

import (
	"math"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/sweater-ventures/hodlboard/db"
)

// Investor type categories. Unknown types receive no affinity adjustment.
const (
	InvestorShortTerm  = "short_term"
	InvestorLongTerm   = "long_term"
	InvestorDeFi       = "defi"
	InvestorRiskAverse = "risk_averse"
)

// ValidInvestorType reports whether t is one of the known categories.
func ValidInvestorType(t string) bool {
	switch t {
	case InvestorShortTerm, InvestorLongTerm, InvestorDeFi, InvestorRiskAverse:
		return true
	}
	return false
}

// Tunable scoring weights. The absolute numbers are heuristics; only the
// relative ordering they induce is relied upon.
var (
	assetMatchBonus     = 120.0
	typeAffinityBonus   = 80.0
	typeAffinityPenalty = -40.0

	maxNewsResults = 60

	memeTickerBonus    = 50.0
	memeSubredditBonus = 30.0
	memeToneBonus      = 20.0
	memeJitterMax      = 3.0
	memeTopN           = 40
	memeTopK           = 8
)

// Keyword classes used for investor-type affinity, compiled once.
var (
	shortTermWords = regexp.MustCompile(`(?i)\b(pump|dump|squeeze|liquidat\w*|scalp\w*|leverag\w*|margin|futures|breakout|rally|moon\w*|intraday|day[ -]?trad\w*)`)
	longTermWords  = regexp.MustCompile(`(?i)\b(etf|institution\w*|adoption|roadmap|treasur\w*|regulat\w*|custody|halving|long[ -]?term|accumulat\w*|reserve|pension|allocation)`)
	defiWords      = regexp.MustCompile(`(?i)\b(defi|staking|yield|liquidity|amm|dex|protocol|tvl|lending|vault|airdrop|governance)`)
	riskWords      = regexp.MustCompile(`(?i)\b(hack\w*|exploit\w*|scam|rug[ -]?pull|crash|collaps\w*|bankrupt\w*|lawsuit|fraud|breach|vulnerab\w*)`)
)

// coinTickers maps asset ids to the aliases looked for in titles. A fixed
// enumeration, not computed.
var coinTickers = map[string][]string{
	"bitcoin":     {"bitcoin", "btc"},
	"ethereum":    {"ethereum", "eth"},
	"solana":      {"solana", "sol"},
	"dogecoin":    {"dogecoin", "doge"},
	"cardano":     {"cardano", "ada"},
	"ripple":      {"ripple", "xrp"},
	"polkadot":    {"polkadot", "dot"},
	"avalanche-2": {"avalanche", "avax"},
	"chainlink":   {"chainlink", "link"},
	"litecoin":    {"litecoin", "ltc"},
}

// coinSubreddits maps asset ids to topical meme communities.
var coinSubreddits = map[string][]string{
	"bitcoin":     {"bitcoin", "bitcoinmemes"},
	"ethereum":    {"ethereum", "ethtrader"},
	"solana":      {"solana"},
	"dogecoin":    {"dogecoin"},
	"cardano":     {"cardano"},
	"ripple":      {"xrp"},
	"polkadot":    {"polkadot"},
	"avalanche-2": {"avax"},
	"chainlink":   {"chainlink"},
	"litecoin":    {"litecoin"},
}

// TickerFor returns the primary ticker alias for an asset id, or the id
// itself for assets outside the table.
func TickerFor(assetID string) string {
	if aliases, ok := coinTickers[assetID]; ok && len(aliases) > 1 {
		return aliases[1]
	}
	return assetID
}

// KnownMemeSubreddits returns the deduplicated union of all topical
// communities, used to build the shared meme feed.
func KnownMemeSubreddits() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, subs := range coinSubreddits {
		for _, sub := range subs {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			out = append(out, sub)
		}
	}
	slices.Sort(out)
	return out
}

// ScoreNewsItem is deterministic: recency + asset match + investor-type
// affinity.
func ScoreNewsItem(item NewsItem, prefs db.UserPreference, now time.Time) float64 {
	return recencyScore(item.PublishedAt, now) +
		assetMatchScore(item.Title, prefs.Assets) +
		typeAffinityScore(item.Title, prefs.InvestorType)
}

func recencyScore(publishedAt time.Time, now time.Time) float64 {
	if publishedAt.IsZero() {
		return 0
	}
	ageMinutes := now.Sub(publishedAt).Minutes()
	if ageMinutes < 0 {
		ageMinutes = 0
	}
	return math.Max(0, 200-ageMinutes)
}

func assetMatchScore(title string, assets []string) float64 {
	lower := strings.ToLower(title)
	for _, asset := range assets {
		aliases, ok := coinTickers[asset]
		if !ok {
			aliases = []string{strings.ToLower(asset)}
		}
		for _, alias := range aliases {
			if strings.Contains(lower, alias) {
				return assetMatchBonus
			}
		}
	}
	return 0
}

func typeAffinityScore(title, investorType string) float64 {
	switch investorType {
	case InvestorShortTerm:
		return signedAffinity(title, shortTermWords, longTermWords)
	case InvestorLongTerm:
		return signedAffinity(title, longTermWords, shortTermWords)
	case InvestorDeFi:
		return signedAffinity(title, defiWords, nil)
	case InvestorRiskAverse:
		// Risk-averse readers get risk coverage surfaced and hype buried.
		score := 0.0
		if riskWords.MatchString(title) {
			score += typeAffinityBonus
		}
		if shortTermWords.MatchString(title) {
			score += typeAffinityPenalty
		}
		return score
	default:
		return 0
	}
}

func signedAffinity(title string, bonus, penalty *regexp.Regexp) float64 {
	score := 0.0
	if bonus != nil && bonus.MatchString(title) {
		score += typeAffinityBonus
	}
	if penalty != nil && penalty.MatchString(title) {
		score += typeAffinityPenalty
	}
	return score
}

// RankNews scores items against the user's profile, sorts by descending
// score, and truncates to the result bound.
func RankNews(items []NewsItem, prefs db.UserPreference, now time.Time) []NewsItem {
	type scoredItem struct {
		item  NewsItem
		score float64
	}
	scored := make([]scoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, scoredItem{item: item, score: ScoreNewsItem(item, prefs, now)})
	}
	slices.SortStableFunc(scored, func(a, b scoredItem) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	if len(scored) > maxNewsResults {
		scored = scored[:maxNewsResults]
	}
	out := make([]NewsItem, len(scored))
	for i, s := range scored {
		out[i] = s.item
	}
	return out
}

// ScoreMeme is deterministic apart from a small jitter term used purely as a
// tie-breaker so rankings do not freeze.
func ScoreMeme(item MemeItem, prefs db.UserPreference, jitter float64) float64 {
	score := jitter
	title := strings.ToLower(item.Title)
	source := strings.ToLower(item.Source)
	for _, asset := range prefs.Assets {
		for _, alias := range coinTickers[asset] {
			if strings.Contains(title, alias) {
				score += memeTickerBonus
				break
			}
		}
		for _, sub := range coinSubreddits[asset] {
			if source == sub {
				score += memeSubredditBonus
				break
			}
		}
	}
	switch prefs.InvestorType {
	case InvestorShortTerm:
		if shortTermWords.MatchString(item.Title) {
			score += memeToneBonus
		}
	case InvestorLongTerm:
		if longTermWords.MatchString(item.Title) {
			score += memeToneBonus
		}
	case InvestorDeFi:
		if defiWords.MatchString(item.Title) {
			score += memeToneBonus
		}
	}
	return score
}

// PickMeme ranks candidates for the user and selects uniformly at random
// from the best few previously-unseen ones. If every candidate has been seen
// recently, the full candidate pool is used instead.
func PickMeme(candidates []MemeItem, prefs db.UserPreference, seen func(id string) bool) (MemeItem, bool) {
	if len(candidates) == 0 {
		return MemeItem{}, false
	}

	pool := make([]MemeItem, 0, len(candidates))
	for _, item := range candidates {
		if !seen(item.ID) {
			pool = append(pool, item)
		}
	}
	if len(pool) == 0 {
		pool = candidates
	}

	type scoredItem struct {
		item  MemeItem
		score float64
	}
	scored := make([]scoredItem, 0, len(pool))
	for _, item := range pool {
		scored = append(scored, scoredItem{item: item, score: ScoreMeme(item, prefs, rand.Float64()*memeJitterMax)})
	}
	slices.SortStableFunc(scored, func(a, b scoredItem) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	if len(scored) > memeTopN {
		scored = scored[:memeTopN]
	}
	k := memeTopK
	if len(scored) < k {
		k = len(scored)
	}
	return scored[rand.IntN(k)].item, true
}
