package invoker

import (
	"context"
	"errors"

	"github.com/samber/lo"
)

var (
	// ErrNoResult is the absence-of-result signal. Invokers return it for any
	// recoverable failure after logging the cause.
	ErrNoResult = errors.New("invoker: no result")

	// ErrRetriesExhausted is returned when an invoker gave up after its retry
	// ceiling. Callers owning the process are expected to treat it as fatal.
	ErrRetriesExhausted = errors.New("invoker: rate limit retries exhausted")
)

// Invoker sends a single prompt to a model surface and returns its text output.
type Invoker interface {
	// Name returns the provider kind, e.g. "anthropic".
	Name() string
	// Invoke issues one logical call. The returned error is nil,
	// ErrNoResult or ErrRetriesExhausted.
	Invoke(ctx context.Context, prompt string, p Params) (string, error)
}

// Params holds per-call generation overrides. Zero values mean "use the
// invoker default".
type Params struct {
	Model       string
	MaxTokens   int
	Temperature *float64
}

// Merge returns p with every unset field taken from defaults.
func (p Params) Merge(defaults Params) Params {
	return Params{
		Model:       lo.CoalesceOrEmpty(p.Model, defaults.Model),
		MaxTokens:   lo.CoalesceOrEmpty(p.MaxTokens, defaults.MaxTokens),
		Temperature: lo.CoalesceOrEmpty(p.Temperature, defaults.Temperature),
	}
}

// TemperatureOr returns the temperature, or def when unset.
func (p Params) TemperatureOr(def float64) float64 {
	if p.Temperature == nil {
		return def
	}
	return *p.Temperature
}

// Temperature is a helper for building Params literals.
func Temperature(v float64) *float64 { return lo.ToPtr(v) }
