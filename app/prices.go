package app

import (
	"context"
	"errors"
	"strings"
	"time"
)

// PriceQuote is the per-asset quote served to clients.
type PriceQuote struct {
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
}

// PriceProvider performs one batched quote lookup against the metered
// upstream.
type PriceProvider interface {
	FetchPrices(ctx context.Context, assetIDs []string) (map[string]PriceQuote, error)
}

// PriceService answers quote reads through a token-gated, coalescing cache.
// The cache key canonicalizes the asset set so permutations of the same
// assets share one entry and one upstream call.
type PriceService struct {
	cache    *KeyedCache[string, map[string]PriceQuote]
	provider PriceProvider
}

func NewPriceService(provider PriceProvider, limiter *TokenBucket, ttl time.Duration) *PriceService {
	fallback := func(key string) map[string]PriceQuote {
		return FallbackPrices(strings.Split(key, ","))
	}
	return &PriceService{
		cache:    NewKeyedCache[string, map[string]PriceQuote]("prices", ttl, limiter, fallback),
		provider: provider,
	}
}

// Prices returns quotes for the given assets, never blocking on the rate
// limiter: with no token and no cache it returns placeholder quotes
// immediately while a background refresh is queued.
func (s *PriceService) Prices(ctx context.Context, assetIDs []string) map[string]PriceQuote {
	ids := canonicalAssetIDs(assetIDs)
	if len(ids) == 0 {
		return map[string]PriceQuote{}
	}
	key := strings.Join(ids, ",")
	return s.cache.Get(ctx, key, func(ctx context.Context) (map[string]PriceQuote, error) {
		if s.provider == nil {
			return nil, errors.New("no price provider configured")
		}
		return s.provider.FetchPrices(ctx, ids)
	})
}

// CachedSets reports how many distinct asset sets are cached.
func (s *PriceService) CachedSets() int {
	return s.cache.Len()
}
