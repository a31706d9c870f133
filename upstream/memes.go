package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/sweater-ventures/hodlboard/app"
)

const (
	redditTokenURL = "https://www.reddit.com/api/v1/access_token"
	redditAPIBase  = "https://oauth.reddit.com"
	memePageLimit  = 40
	memeMaxPages   = 2
)

// MemeClient pulls image posts from Reddit communities using app-only OAuth.
// The clientcredentials TokenSource caches the bearer token and re-exchanges
// it only when it nears expiry.
type MemeClient struct {
	fetcher   *app.Fetcher
	userAgent string
	apiBase   string
}

// NewMemeClient builds the OAuth-wrapped client. The passed Fetcher's retry
// settings are kept; its transport is replaced by the token-injecting one.
func NewMemeClient(clientID, clientSecret, userAgent string, fetcher *app.Fetcher) *MemeClient {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     redditTokenURL,
	}

	// Token exchange goes through a plain client with the fetcher's timeout.
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient,
		&http.Client{Timeout: fetcher.Client.Timeout})

	oauthClient := conf.Client(ctx)
	oauthClient.Timeout = fetcher.Client.Timeout

	return &MemeClient{
		fetcher: &app.Fetcher{
			Client:      oauthClient,
			MaxAttempts: fetcher.MaxAttempts,
			BackoffBase: fetcher.BackoffBase,
			BackoffMax:  fetcher.BackoffMax,
		},
		userAgent: userAgent,
		apiBase:   redditAPIBase,
	}
}

// redditListing mirrors the listing JSON; only the fields we read.
type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Permalink string `json:"permalink"`
	Subreddit string `json:"subreddit"`
	PostHint  string `json:"post_hint"`
	Over18    bool   `json:"over_18"`
	Stickied  bool   `json:"stickied"`
}

func (c *MemeClient) FetchMemes(ctx context.Context, subreddits []string) ([]app.MemeItem, error) {
	var items []app.MemeItem
	var lastErr error
	for _, subreddit := range subreddits {
		subItems, err := c.fetchSubreddit(ctx, subreddit)
		if err != nil {
			lastErr = err
			continue
		}
		items = append(items, subItems...)
	}
	if len(items) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return items, nil
}

func (c *MemeClient) fetchSubreddit(ctx context.Context, subreddit string) ([]app.MemeItem, error) {
	var items []app.MemeItem
	after := ""
	for page := 0; page < memeMaxPages; page++ {
		endpoint := fmt.Sprintf("%s/r/%s/hot?limit=%d&raw_json=1", c.apiBase, subreddit, memePageLimit)
		if after != "" {
			endpoint += "&after=" + after
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building meme request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.fetcher.Do(req)
		if err != nil {
			return nil, err
		}

		var listing redditListing
		err = json.NewDecoder(resp.Body).Decode(&listing)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("meme API returned status %d for r/%s", resp.StatusCode, subreddit)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding meme listing for r/%s: %w", subreddit, err)
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			if !isImagePost(post) {
				continue
			}
			permalink := post.Permalink
			if permalink != "" && !strings.HasPrefix(permalink, "http") {
				permalink = "https://www.reddit.com" + permalink
			}
			items = append(items, app.MemeItem{
				ID:        post.ID,
				Title:     post.Title,
				Img:       post.URL,
				Source:    strings.ToLower(post.Subreddit),
				Permalink: permalink,
			})
		}

		after = listing.Data.After
		if after == "" {
			break
		}
	}
	return items, nil
}

func isImagePost(post redditPost) bool {
	if post.ID == "" || post.Title == "" || post.URL == "" {
		return false
	}
	if post.Over18 || post.Stickied {
		return false
	}
	if post.PostHint == "image" {
		return true
	}
	lower := strings.ToLower(post.URL)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
