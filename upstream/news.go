package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/sweater-ventures/hodlboard/app"
)

// NewsClient fetches headlines from a CryptoPanic-style JSON API when a
// token is configured, and from public RSS feeds otherwise.
type NewsClient struct {
	baseURL string
	token   string
	feeds   []string
	fetcher *app.Fetcher
}

func NewNewsClient(baseURL, token string, feeds []string, fetcher *app.Fetcher) *NewsClient {
	return &NewsClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		feeds:   feeds,
		fetcher: fetcher,
	}
}

func (c *NewsClient) FetchNews(ctx context.Context, assets []string) ([]app.NewsItem, error) {
	if c.token != "" {
		return c.fetchFromAPI(ctx, assets)
	}
	return c.fetchFromFeeds(ctx)
}

// rawPost mirrors the JSON API's post shape; every field is optional.
type rawPost struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	PublishedAt string      `json:"published_at"`
	Source      struct {
		Title  string `json:"title"`
		Domain string `json:"domain"`
	} `json:"source"`
}

func (c *NewsClient) fetchFromAPI(ctx context.Context, assets []string) ([]app.NewsItem, error) {
	params := url.Values{}
	params.Set("auth_token", c.token)
	params.Set("public", "true")
	if len(assets) > 0 {
		tickers := make([]string, 0, len(assets))
		for _, asset := range assets {
			tickers = append(tickers, strings.ToUpper(app.TickerFor(asset)))
		}
		params.Set("currencies", strings.Join(tickers, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/posts/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building news request: %w", err)
	}

	resp, err := c.fetcher.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []rawPost `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	items := make([]app.NewsItem, 0, len(payload.Results))
	for _, post := range payload.Results {
		if post.Title == "" || post.URL == "" {
			continue
		}
		source := post.Source.Title
		if source == "" {
			source = post.Source.Domain
		}
		items = append(items, app.NewsItem{
			ID:          newsID(post.ID.String(), post.URL),
			Title:       post.Title,
			URL:         post.URL,
			Source:      source,
			PublishedAt: parseNewsTime(post.PublishedAt),
		})
	}
	return items, nil
}

func (c *NewsClient) fetchFromFeeds(ctx context.Context) ([]app.NewsItem, error) {
	var items []app.NewsItem
	var lastErr error
	for _, feedURL := range c.feeds {
		parser := gofeed.NewParser()
		feed, err := parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			lastErr = fmt.Errorf("parsing feed %s: %w", feedURL, err)
			continue
		}
		source := feed.Title
		if source == "" {
			source = feedHost(feedURL)
		}
		for _, entry := range feed.Items {
			if entry == nil || entry.Title == "" || entry.Link == "" {
				continue
			}
			var published time.Time
			if entry.PublishedParsed != nil {
				published = *entry.PublishedParsed
			}
			items = append(items, app.NewsItem{
				ID:          newsID(entry.GUID, entry.Link),
				Title:       entry.Title,
				URL:         entry.Link,
				Source:      source,
				PublishedAt: published,
			})
		}
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

// newsID derives a stable item id from the source id when present, else
// from a hash of the URL.
func newsID(sourceID, link string) string {
	if sourceID != "" && sourceID != "0" {
		return sourceID
	}
	h := fnv.New64a()
	h.Write([]byte(link))
	return fmt.Sprintf("url-%x", h.Sum64())
}

func parseNewsTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func feedHost(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	return u.Host
}
