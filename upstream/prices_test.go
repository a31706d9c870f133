package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sweater-ventures/hodlboard/app"
)

func testFetcher() *app.Fetcher {
	return app.NewFetcher(5*time.Second, 2, time.Millisecond, 5*time.Millisecond)
}

func TestPriceClientParsesQuotes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bitcoin": {"usd": 102345.5, "usd_24h_change": -1.25},
			"ethereum": {"usd": 5421.0}
		}`))
	}))
	defer srv.Close()

	client := NewPriceClient(srv.URL, testFetcher())
	quotes, err := client.FetchPrices(context.Background(), []string{"bitcoin", "ethereum"})
	require.NoError(t, err)

	require.Len(t, quotes, 2)
	assert.Equal(t, 102345.5, quotes["bitcoin"].Price)
	assert.Equal(t, -1.25, quotes["bitcoin"].Change24h)
	assert.Equal(t, 5421.0, quotes["ethereum"].Price)
	assert.Equal(t, 0.0, quotes["ethereum"].Change24h, "missing change parses as zero")
}

func TestPriceClientSkipsQuotesWithoutPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin": {"usd": 102345.5}, "unknowncoin": {}}`))
	}))
	defer srv.Close()

	client := NewPriceClient(srv.URL, testFetcher())
	quotes, err := client.FetchPrices(context.Background(), []string{"bitcoin", "unknowncoin"})
	require.NoError(t, err)

	assert.Len(t, quotes, 1)
	assert.Contains(t, quotes, "bitcoin")
}

func TestPriceClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewPriceClient(srv.URL, testFetcher())
	_, err := client.FetchPrices(context.Background(), []string{"bitcoin"})
	assert.Error(t, err)
}

func TestPriceClientMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewPriceClient(srv.URL, testFetcher())
	_, err := client.FetchPrices(context.Background(), []string{"bitcoin"})
	assert.Error(t, err)
}
