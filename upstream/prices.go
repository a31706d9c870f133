// Package upstream contains the thin clients for the third-party APIs the
// dashboard aggregates. Every client parses responses into strict
// intermediate types at the boundary and treats all fields as optional.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sweater-ventures/hodlboard/app"
)

// PriceClient queries a CoinGecko-style simple-price endpoint. The caller is
// responsible for rate limiting; this client only handles transport retries.
type PriceClient struct {
	baseURL string
	fetcher *app.Fetcher
}

func NewPriceClient(baseURL string, fetcher *app.Fetcher) *PriceClient {
	return &PriceClient{baseURL: strings.TrimRight(baseURL, "/"), fetcher: fetcher}
}

// rawQuote mirrors the upstream JSON; pointers distinguish absent fields
// from zero values.
type rawQuote struct {
	USD          *float64 `json:"usd"`
	USD24hChange *float64 `json:"usd_24h_change"`
}

func (c *PriceClient) FetchPrices(ctx context.Context, assetIDs []string) (map[string]app.PriceQuote, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd&include_24hr_change=true",
		c.baseURL, url.QueryEscape(strings.Join(assetIDs, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var raw map[string]rawQuote
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	quotes := make(map[string]app.PriceQuote, len(raw))
	for id, q := range raw {
		if q.USD == nil {
			continue
		}
		quote := app.PriceQuote{Price: *q.USD}
		if q.USD24hChange != nil {
			quote.Change24h = *q.USD24hChange
		}
		quotes[id] = quote
	}
	return quotes, nil
}
