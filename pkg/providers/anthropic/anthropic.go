// Package anthropic provides an Invoker for the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/modeladapter"
	"github.com/germanamz/promptcall/pkg/modeladapter/usage"
)

// Kind is the provider kind used in configuration and metrics.
const Kind = "anthropic"

const (
	// DefaultBaseURL is the public API endpoint (no trailing slash).
	DefaultBaseURL = "https://api.anthropic.com"
	// DefaultModel is used when neither the invoker nor the call sets one.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultMaxTokens is the default output token limit.
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
)

var _ invoker.Invoker = (*Adapter)(nil)

// Adapter invokes the Messages API with a single user message.
type Adapter struct {
	modeladapter.ModelAdapter
	Defaults invoker.Params

	log invoker.Log
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.BaseURL = u }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.Client = c }
}

// WithDefaults overrides the default generation parameters. Unset fields keep
// the package defaults.
func WithDefaults(p invoker.Params) Option {
	return func(a *Adapter) { a.Defaults = p.Merge(a.Defaults) }
}

// WithLogger sets the logger and the logging switches.
func WithLogger(l *slog.Logger, switches invoker.Logging) Option {
	return func(a *Adapter) { a.log = invoker.NewLog(l, switches, Kind) }
}

// New creates an Adapter authenticated with apiKey.
func New(apiKey string, opts ...Option) *Adapter {
	a := &Adapter{
		Defaults: invoker.Params{
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: invoker.Temperature(DefaultTemperature),
		},
		log: invoker.NewLog(nil, invoker.DefaultLogging, Kind),
	}
	a.BaseURL = DefaultBaseURL
	a.Auth = modeladapter.Auth{
		Key:    apiKey,
		Header: "x-api-key",
	}
	a.Headers = map[string]string{
		"anthropic-version": apiVersion,
	}
	a.QuotaParser = modeladapter.ParseAnthropicQuota

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the provider kind.
func (a *Adapter) Name() string { return Kind }

// Invoke sends prompt as a single user message and returns the text of the
// first content block. Every failure is logged and returned as
// invoker.ErrNoResult; nothing is retried.
func (a *Adapter) Invoke(ctx context.Context, prompt string, p invoker.Params) (string, error) {
	p = p.Merge(a.Defaults)
	log := a.log.ForRequest().With("model", p.Model)

	log.Info(ctx, "sending request", "prompt", invoker.Preview(prompt), "max_tokens", p.MaxTokens)

	text, err := a.complete(ctx, prompt, p)
	if err != nil {
		a.logFailure(ctx, log, err)
		return "", invoker.ErrNoResult
	}

	if q := a.LastQuota(); q != nil {
		log.Info(ctx, "quota", "remaining_requests", q.RemainingRequests, "remaining_tokens", q.RemainingTokens)
	}
	if last, ok := a.Usage.Last(); ok {
		log.Info(ctx, "usage", "input_tokens", last.InputTokens, "output_tokens", last.OutputTokens)
	}
	log.Info(ctx, "received response", "output", invoker.Preview(text))

	return text, nil
}

func (a *Adapter) complete(ctx context.Context, prompt string, p invoker.Params) (string, error) {
	req := apiRequest{
		Model:       p.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.TemperatureOr(DefaultTemperature),
		Messages:    []apiMessage{{Role: "user", Content: prompt}},
	}

	var resp apiResponse
	if err := a.PostJSON(ctx, messagesPath, req, &resp); err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}

	a.Usage.Add(usage.TokenCount{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	})

	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return "", errors.New("anthropic: response has no content[0].text")
	}

	return *resp.Content[0].Text, nil
}

func (a *Adapter) logFailure(ctx context.Context, log invoker.Log, err error) {
	var rle *modeladapter.RateLimitError
	if errors.As(err, &rle) {
		log.Warn(ctx, "rate limited", "retry_after", rle.RetryAfter, "body", rle.Body)
		return
	}

	var se *modeladapter.StatusError
	if errors.As(err, &se) {
		log.Error(ctx, "request failed", "status", se.StatusCode, "body", se.Body)
		return
	}

	log.Error(ctx, "request failed", "error", err)
}

// --- wire types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	Messages    []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []apiContent `json:"content"`
	Usage   apiUsage     `json:"usage"`
}

type apiContent struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
