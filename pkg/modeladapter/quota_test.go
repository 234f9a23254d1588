package modeladapter_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/germanamz/promptcall/pkg/modeladapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnthropicQuota_AllHeaders(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	reset := now.Add(30 * time.Second)

	h := http.Header{}
	h.Set("anthropic-ratelimit-requests-remaining", "5")
	h.Set("anthropic-ratelimit-tokens-remaining", "1000")
	h.Set("anthropic-ratelimit-requests-reset", reset.Format(time.RFC3339))
	h.Set("anthropic-ratelimit-tokens-reset", "45s")

	q := modeladapter.ParseAnthropicQuota(h, now)
	require.NotNil(t, q)
	assert.Equal(t, 5, q.RemainingRequests)
	assert.Equal(t, 1000, q.RemainingTokens)
	assert.Equal(t, reset, q.RequestsReset)
	assert.Equal(t, now.Add(45*time.Second), q.TokensReset)
}

func TestParseAnthropicQuota_NoHeaders(t *testing.T) {
	assert.Nil(t, modeladapter.ParseAnthropicQuota(http.Header{}, time.Now()))
}

func TestParseAnthropicQuota_BadValues(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-tokens-remaining", "lots")
	h.Set("anthropic-ratelimit-tokens-reset", "soon")

	q := modeladapter.ParseAnthropicQuota(h, time.Now())
	require.NotNil(t, q)
	assert.Equal(t, 0, q.RemainingTokens)
	assert.True(t, q.TokensReset.IsZero())
}
