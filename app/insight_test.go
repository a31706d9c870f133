package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sweater-ventures/hodlboard/db"
)

type stubTextProvider struct {
	text    string
	err     error
	prompts []string
}

func (p *stubTextProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.text, p.err
}

func insightPrefs() db.UserPreference {
	return db.UserPreference{UserID: "u1", Assets: []string{"bitcoin", "solana"}, InvestorType: InvestorDeFi}
}

func TestInsightForUsesProfileInPrompt(t *testing.T) {
	provider := &stubTextProvider{text: "Stay patient."}
	svc := NewInsightService(NewInsightCache(time.UTC, 6, 10, FallbackInsight), provider)

	insight := svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.Equal(t, "Stay patient.", insight.Text)
	assert.NotEmpty(t, insight.ID)

	assert.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "bitcoin, solana")
	assert.Contains(t, provider.prompts[0], InvestorDeFi)
}

func TestInsightForNilProviderServesCannedPool(t *testing.T) {
	svc := NewInsightService(NewInsightCache(time.UTC, 6, 10, FallbackInsight), nil)

	insight := svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.NotEmpty(t, insight.Text)

	again := svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.Equal(t, insight, again)
	assert.Equal(t, 1, svc.Users())
}

func TestInsightForProviderFailureFallsBack(t *testing.T) {
	provider := &stubTextProvider{err: errors.New("rate limited")}
	svc := NewInsightService(NewInsightCache(time.UTC, 6, 10, FallbackInsight), provider)

	insight := svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.NotEmpty(t, insight.Text)

	// The fallback is cached for the period; the provider is not retried.
	svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.Len(t, provider.prompts, 1)
}

func TestInsightForEmptyCompletionFallsBack(t *testing.T) {
	provider := &stubTextProvider{text: "   "}
	svc := NewInsightService(NewInsightCache(time.UTC, 6, 10, FallbackInsight), provider)

	insight := svc.InsightFor(context.Background(), "u1", insightPrefs())
	assert.NotEmpty(t, insight.Text, "whitespace completions degrade to the canned pool")
}
