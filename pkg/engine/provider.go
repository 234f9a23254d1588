package engine

import (
	"log/slog"
	"sync"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/metrics"
	"github.com/germanamz/promptcall/pkg/providers/anthropic"
	"github.com/germanamz/promptcall/pkg/providers/claudecli"
	"github.com/germanamz/promptcall/pkg/providers/gemini"
)

// Deps carries the process-wide collaborators handed to every factory.
type Deps struct {
	Logger   *slog.Logger
	Logging  invoker.Logging
	Metrics  metrics.Collector
	Progress claudecli.ProgressFunc
}

// ProviderFactory creates an Invoker from a ProviderConfig.
type ProviderFactory func(cfg ProviderConfig, deps Deps) (invoker.Invoker, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories[anthropic.Kind] = newAnthropic
		factories[claudecli.Kind] = newClaudeCLI
		factories[gemini.Kind] = newGemini
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before New to extend the engine with additional providers.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newAnthropic(cfg ProviderConfig, deps Deps) (invoker.Invoker, error) {
	opts := []anthropic.Option{
		anthropic.WithDefaults(cfg.Params()),
		anthropic.WithLogger(deps.Logger, deps.Logging),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return anthropic.New(cfg.APIKey, opts...), nil
}

func newClaudeCLI(cfg ProviderConfig, deps Deps) (invoker.Invoker, error) {
	wait, err := cfg.RetryWaitDuration()
	if err != nil {
		return nil, err
	}

	opts := []claudecli.Option{
		claudecli.WithCommand(cfg.Command),
		claudecli.WithModel(cfg.Model),
		claudecli.WithRetryWait(wait),
		claudecli.WithProgress(deps.Progress),
		claudecli.WithLogger(deps.Logger, deps.Logging),
	}
	if cfg.MaxRetries != nil {
		opts = append(opts, claudecli.WithMaxRetries(*cfg.MaxRetries))
	}
	if deps.Metrics != nil {
		opts = append(opts, claudecli.WithMetrics(deps.Metrics))
	}

	return claudecli.New(opts...), nil
}

func newGemini(cfg ProviderConfig, deps Deps) (invoker.Invoker, error) {
	opts := []gemini.Option{
		gemini.WithDefaults(cfg.Params()),
		gemini.WithLogger(deps.Logger, deps.Logging),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}

	return gemini.New(cfg.APIKey, opts...), nil
}
