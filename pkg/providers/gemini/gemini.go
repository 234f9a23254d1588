// Package gemini provides an Invoker for the Google Gemini API, backed by the
// google.golang.org/genai client.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/samber/lo"
	"google.golang.org/genai"
)

// Kind is the provider kind used in configuration and metrics.
const Kind = "gemini"

const (
	// PlaceholderKey is the sample credential shipped in example configs.
	// An invoker built with it stays disabled.
	PlaceholderKey = "YOUR_GEMINI_API_KEY"

	// DefaultModel is used when neither the invoker nor the call sets one.
	DefaultModel = "gemini-2.0-flash"
	// DefaultMaxTokens is the default output token limit.
	DefaultMaxTokens = 8192
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 0.7

	topP = 0.95
	topK = 40
)

// quotaIndicators mark an API error as a quota or rate limit problem.
var quotaIndicators = []string{"429", "RESOURCE_EXHAUSTED", "quota"}

// State is the invoker's initialisation state.
type State int

const (
	// StateDisabled means no usable credential was supplied. Calls return
	// invoker.ErrNoResult without touching the network.
	StateDisabled State = iota
	// StateUninitialized means the client handle is built on first use.
	StateUninitialized
	// StateReady means the client handle exists.
	StateReady
	// StateFailed means building the client handle failed.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Generator is the slice of the genai client the invoker uses.
// *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

var _ Generator = (*genai.Models)(nil)

var _ invoker.Invoker = (*Adapter)(nil)

// Adapter invokes Gemini's generateContent.
type Adapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	defaults   invoker.Params
	log        invoker.Log

	once  sync.Once
	mu    sync.RWMutex
	state State
	gen   Generator
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithBaseURL points the client at a different endpoint.
func WithBaseURL(u string) Option {
	return func(a *Adapter) { a.baseURL = u }
}

// WithHTTPClient sets the HTTP client used by the genai client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.httpClient = c }
}

// WithDefaults overrides the default generation parameters.
func WithDefaults(p invoker.Params) Option {
	return func(a *Adapter) { a.defaults = p.Merge(a.defaults) }
}

// WithLogger sets the logger and the logging switches.
func WithLogger(l *slog.Logger, switches invoker.Logging) Option {
	return func(a *Adapter) { a.log = invoker.NewLog(l, switches, Kind) }
}

// WithGenerator installs a ready-made generator. It does not override a
// disabled state.
func WithGenerator(g Generator) Option {
	return func(a *Adapter) {
		a.gen = g
		if a.state != StateDisabled {
			a.state = StateReady
			a.once.Do(func() {})
		}
	}
}

// New creates an Adapter. The state is decided here: an empty key or
// PlaceholderKey disables the adapter for its whole lifetime.
func New(apiKey string, opts ...Option) *Adapter {
	a := &Adapter{
		apiKey: apiKey,
		defaults: invoker.Params{
			Model:       DefaultModel,
			MaxTokens:   DefaultMaxTokens,
			Temperature: invoker.Temperature(DefaultTemperature),
		},
		log:   invoker.NewLog(nil, invoker.DefaultLogging, Kind),
		state: StateUninitialized,
	}
	if apiKey == "" || apiKey == PlaceholderKey {
		a.state = StateDisabled
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Name returns the provider kind.
func (a *Adapter) Name() string { return Kind }

// State returns the current initialisation state.
func (a *Adapter) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.state
}

// Invoke sends prompt to generateContent and returns the trimmed text of the
// response. Errors are logged and returned as invoker.ErrNoResult; nothing is
// retried.
func (a *Adapter) Invoke(ctx context.Context, prompt string, p invoker.Params) (string, error) {
	p = p.Merge(a.defaults)
	log := a.log.ForRequest().With("model", p.Model)

	gen, err := a.generator(ctx)
	if err != nil {
		log.Warn(ctx, "client unavailable", "state", a.State().String(), "error", err)
		return "", invoker.ErrNoResult
	}

	log.Info(ctx, "sending request", "prompt", invoker.Preview(prompt), "max_tokens", p.MaxTokens)

	resp, err := gen.GenerateContent(ctx, p.Model, genai.Text(prompt), generationConfig(p))
	if err != nil {
		log.Error(ctx, "generate content failed", "error", err)
		if isQuotaError(err) {
			log.Warn(ctx, "quota or rate limit exceeded; not retrying")
		}
		return "", invoker.ErrNoResult
	}

	text := extractText(resp)
	if text == "" {
		log.Warn(ctx, "response has no text")
		return "", invoker.ErrNoResult
	}

	log.Info(ctx, "received response", "output", invoker.Preview(text))

	return text, nil
}

var errDisabled = errors.New("gemini: no API key configured")

// generator returns the client handle, building it on first use.
func (a *Adapter) generator(ctx context.Context) (Generator, error) {
	if a.State() == StateDisabled {
		return nil, errDisabled
	}

	a.once.Do(func() {
		gen, err := a.newClient(ctx)

		a.mu.Lock()
		defer a.mu.Unlock()

		if err != nil {
			a.state = StateFailed
			a.log.Error(ctx, "client construction failed", "error", err)
			return
		}
		a.gen = gen
		a.state = StateReady
	})

	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.state != StateReady {
		return nil, fmt.Errorf("gemini: client %s", a.state)
	}

	return a.gen, nil
}

func (a *Adapter) newClient(ctx context.Context) (Generator, error) {
	cfg := &genai.ClientConfig{
		APIKey:     a.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: a.httpClient,
	}
	if a.baseURL != "" {
		cfg.HTTPOptions.BaseURL = a.baseURL
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}

	return client.Models, nil
}

func generationConfig(p invoker.Params) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(p.TemperatureOr(DefaultTemperature))),
		MaxOutputTokens: int32(p.MaxTokens), //nolint:gosec // token limits are far below MaxInt32
		TopP:            genai.Ptr(float32(topP)),
		TopK:            genai.Ptr(float32(topK)),
	}
}

// extractText prefers the response's own text accessor and falls back to the
// first part of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	if text := strings.TrimSpace(resp.Text()); text != "" {
		return text
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return ""
	}

	return strings.TrimSpace(content.Parts[0].Text)
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return lo.SomeBy(quotaIndicators, func(s string) bool {
		return strings.Contains(msg, s)
	})
}
