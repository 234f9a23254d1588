package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/metrics"
	"github.com/germanamz/promptcall/pkg/providers/claudecli"
	"github.com/germanamz/promptcall/pkg/providers/gemini"
)

// ErrUnknownProvider is returned when a provider name is not configured.
var ErrUnknownProvider = errors.New("engine: unknown provider")

// ProviderInfo describes a configured provider for listings.
type ProviderInfo struct {
	Name    string
	Kind    string
	Model   string
	State   string
	Default bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to every invoker.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.deps.Logger = l }
}

// WithMetrics records every invocation on c.
func WithMetrics(c metrics.Collector) Option {
	return func(e *Engine) { e.deps.Metrics = c }
}

// WithProgress installs the rate limit countdown callback on CLI invokers.
func WithProgress(fn claudecli.ProgressFunc) Option {
	return func(e *Engine) { e.deps.Progress = fn }
}

// WithVerbose forces info-level invoker logging regardless of the config.
func WithVerbose(v bool) Option {
	return func(e *Engine) {
		if v {
			e.deps.Logging.Verbose = true
		}
	}
}

// Engine holds one instrumented invoker per configured provider.
type Engine struct {
	cfg      Config
	deps     Deps
	invokers map[string]invoker.Invoker
	order    []string
}

// New validates cfg and builds every configured provider.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		deps:     Deps{Logger: slog.Default(), Logging: cfg.Logging, Metrics: metrics.Noop{}},
		invokers: make(map[string]invoker.Invoker, len(cfg.Providers)),
	}

	for _, opt := range opts {
		opt(e)
	}

	for _, pc := range cfg.Providers {
		factory, _ := getFactory(pc.Kind)

		inv, err := factory(pc, e.deps)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}

		e.invokers[pc.Name] = metrics.Instrument(inv, e.deps.Metrics)
		e.order = append(e.order, pc.Name)
	}

	return e, nil
}

// DefaultProvider returns the configured default provider name, falling back
// to the first provider.
func (e *Engine) DefaultProvider() string {
	if e.cfg.DefaultProvider != "" {
		return e.cfg.DefaultProvider
	}

	return e.order[0]
}

// Invoker returns the invoker registered under name. An empty name selects
// the default provider.
func (e *Engine) Invoker(name string) (invoker.Invoker, error) {
	if name == "" {
		name = e.DefaultProvider()
	}

	inv, ok := e.invokers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}

	return inv, nil
}

// Invoke runs prompt on the named provider.
func (e *Engine) Invoke(ctx context.Context, name, prompt string, p invoker.Params) (string, error) {
	inv, err := e.Invoker(name)
	if err != nil {
		return "", err
	}

	return inv.Invoke(ctx, prompt, p)
}

// Names returns the provider names in configuration order.
func (e *Engine) Names() []string {
	return append([]string(nil), e.order...)
}

// Providers describes every configured provider in configuration order.
func (e *Engine) Providers() []ProviderInfo {
	def := e.DefaultProvider()
	infos := make([]ProviderInfo, 0, len(e.order))

	for _, pc := range e.cfg.Providers {
		infos = append(infos, ProviderInfo{
			Name:    pc.Name,
			Kind:    pc.Kind,
			Model:   pc.Model,
			State:   stateOf(e.invokers[pc.Name]),
			Default: pc.Name == def,
		})
	}

	return infos
}

type unwrapper interface {
	Unwrap() invoker.Invoker
}

// stateOf reports the initialisation state of providers that track one.
func stateOf(inv invoker.Invoker) string {
	for {
		if g, ok := inv.(*gemini.Adapter); ok {
			return g.State().String()
		}

		u, ok := inv.(unwrapper)
		if !ok {
			return "ready"
		}
		inv = u.Unwrap()
	}
}
