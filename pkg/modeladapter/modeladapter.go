package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/germanamz/promptcall/pkg/modeladapter/usage"
)

// defaultTimeout bounds a single HTTP exchange when no client is supplied.
const defaultTimeout = 10 * time.Minute

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// RateLimitError is a StatusError for HTTP 429. It carries the Retry-After
// hint so callers can report it; nothing in this package retries.
type RateLimitError struct {
	StatusError
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter, e.Body)
	}
	return fmt.Sprintf("rate limited: %s", e.Body)
}

// Unwrap exposes the embedded StatusError to errors.As.
func (e *RateLimitError) Unwrap() error { return &e.StatusError }

// ParseRetryAfter parses the Retry-After header value as either seconds (integer)
// or an HTTP-date (RFC 7231). Returns zero if unparseable or if the date is in the past.
func ParseRetryAfter(val string) time.Duration {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(val); err == nil {
		return max(time.Until(t), 0)
	}
	return 0
}

// Auth holds the static credential attached to every request.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
}

// apply sets the credential header on h. An empty key leaves h untouched.
func (a Auth) apply(h http.Header) {
	if a.Key == "" {
		return
	}

	header := a.Header
	if header == "" {
		header = "Authorization"
	}

	scheme := a.Scheme
	if header == "Authorization" && scheme == "" {
		scheme = "Bearer"
	}

	value := a.Key
	if scheme != "" {
		value = scheme + " " + value
	}

	h.Set(header, value)
}

// ModelAdapter holds shared state for HTTP invokers. Embed it in a provider
// struct to get request building, auth, custom headers and usage tracking.
type ModelAdapter struct {
	BaseURL     string            // API base URL (no trailing slash).
	Auth        Auth              // Credential header.
	Client      *http.Client      // HTTP client; a default with a 10 minute timeout is used when nil.
	Headers     map[string]string // Extra headers applied to every request.
	Usage       usage.Tracker     // Token usage tracker.
	QuotaParser QuotaParser       // Optional parser for rate limit response headers.

	quota         atomic.Pointer[Quota]
	clientOnce    sync.Once
	defaultClient *http.Client
}

// New creates a ModelAdapter with the given settings.
func New(baseURL string, auth Auth, client *http.Client) *ModelAdapter {
	return &ModelAdapter{
		BaseURL: baseURL,
		Auth:    auth,
		Client:  client,
	}
}

// LastQuota returns the most recently observed quota, or nil.
func (a *ModelAdapter) LastQuota() *Quota { return a.quota.Load() }

func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		a.defaultClient = &http.Client{Timeout: defaultTimeout}
	})

	return a.defaultClient
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	a.Auth.apply(req.Header)

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, sends a POST to the given path,
// checks for a 2xx status, and unmarshals the response body into dest.
// Non-2xx replies come back as *StatusError or *RateLimitError.
// If dest is nil the response body is discarded after the status check.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		statusErr := StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}

		if resp.StatusCode == http.StatusTooManyRequests {
			return &RateLimitError{
				StatusError: statusErr,
				RetryAfter:  ParseRetryAfter(resp.Header.Get("Retry-After")),
			}
		}

		return &statusErr
	}

	if a.QuotaParser != nil {
		if q := a.QuotaParser(resp.Header, time.Now()); q != nil {
			a.quota.Store(q)
		}
	}

	if dest == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
