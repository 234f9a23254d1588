package modeladapter

import (
	"net/http"
	"strconv"
	"time"
)

// Quota is the remaining request and token budget a provider reported.
type Quota struct {
	RemainingRequests int
	RemainingTokens   int
	RequestsReset     time.Time
	TokensReset       time.Time
}

// QuotaParser extracts a Quota from response headers. It receives the
// current time so tests can pin the clock. It returns nil when the headers
// carry no quota information.
type QuotaParser func(h http.Header, now time.Time) *Quota

// ParseAnthropicQuota reads the anthropic-ratelimit-{requests,tokens}-{remaining,reset}
// headers.
func ParseAnthropicQuota(h http.Header, now time.Time) *Quota {
	reqRemaining := h.Get("anthropic-ratelimit-requests-remaining")
	tokRemaining := h.Get("anthropic-ratelimit-tokens-remaining")

	if reqRemaining == "" && tokRemaining == "" {
		return nil
	}

	q := &Quota{
		RequestsReset: parseReset(h.Get("anthropic-ratelimit-requests-reset"), now),
		TokensReset:   parseReset(h.Get("anthropic-ratelimit-tokens-reset"), now),
	}
	if v, err := strconv.Atoi(reqRemaining); err == nil {
		q.RemainingRequests = v
	}
	if v, err := strconv.Atoi(tokRemaining); err == nil {
		q.RemainingTokens = v
	}

	return q
}

// parseReset accepts RFC3339 or a Go duration relative to now.
func parseReset(val string, now time.Time) time.Time {
	if val == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t
	}
	if d, err := time.ParseDuration(val); err == nil {
		return now.Add(d)
	}
	return time.Time{}
}
