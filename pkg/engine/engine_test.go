package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoInvoker returns the prompt prefixed with its name.
type echoInvoker struct {
	name string
}

func (e *echoInvoker) Name() string { return "echo" }

func (e *echoInvoker) Invoke(_ context.Context, prompt string, _ invoker.Params) (string, error) {
	if prompt == "" {
		return "", invoker.ErrNoResult
	}
	return e.name + ": " + prompt, nil
}

type recordingCollector struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingCollector) RecordInvocation(_ context.Context, provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, provider+"/"+outcome)
}

func (r *recordingCollector) RecordRetry(context.Context, string) {}

func init() {
	RegisterProvider("echo", func(cfg ProviderConfig, _ Deps) (invoker.Invoker, error) {
		return &echoInvoker{name: cfg.Name}, nil
	})
	RegisterProvider("broken", func(ProviderConfig, Deps) (invoker.Invoker, error) {
		return nil, errors.New("boom")
	})
}

func TestEngine_InvokeDefaultProvider(t *testing.T) {
	eng, err := New(Config{Providers: []ProviderConfig{
		{Name: "first", Kind: "echo"},
		{Name: "second", Kind: "echo"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "first", eng.DefaultProvider())

	out, err := eng.Invoke(context.Background(), "", "hi", invoker.Params{})
	require.NoError(t, err)
	assert.Equal(t, "first: hi", out)

	out, err = eng.Invoke(context.Background(), "second", "hi", invoker.Params{})
	require.NoError(t, err)
	assert.Equal(t, "second: hi", out)
}

func TestEngine_ConfiguredDefaultProvider(t *testing.T) {
	eng, err := New(Config{
		DefaultProvider: "second",
		Providers: []ProviderConfig{
			{Name: "first", Kind: "echo"},
			{Name: "second", Kind: "echo"},
		},
	})
	require.NoError(t, err)

	out, err := eng.Invoke(context.Background(), "", "hi", invoker.Params{})
	require.NoError(t, err)
	assert.Equal(t, "second: hi", out)
}

func TestEngine_UnknownProvider(t *testing.T) {
	eng, err := New(Config{Providers: []ProviderConfig{{Name: "p1", Kind: "echo"}}})
	require.NoError(t, err)

	_, err = eng.Invoke(context.Background(), "nope", "hi", invoker.Params{})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestEngine_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestEngine_FactoryError(t *testing.T) {
	_, err := New(Config{Providers: []ProviderConfig{{Name: "p1", Kind: "broken"}}})
	assert.ErrorContains(t, err, `engine: provider "p1": boom`)
}

func TestEngine_RecordsMetrics(t *testing.T) {
	rec := &recordingCollector{}
	eng, err := New(Config{Providers: []ProviderConfig{{Name: "p1", Kind: "echo"}}}, WithMetrics(rec))
	require.NoError(t, err)

	_, err = eng.Invoke(context.Background(), "p1", "hi", invoker.Params{})
	require.NoError(t, err)
	_, err = eng.Invoke(context.Background(), "p1", "", invoker.Params{})
	require.ErrorIs(t, err, invoker.ErrNoResult)

	assert.Equal(t, []string{"echo/ok", "echo/no_result"}, rec.outcomes)
}

func TestEngine_Providers(t *testing.T) {
	eng, err := New(Config{
		DefaultProvider: "gem",
		Providers: []ProviderConfig{
			{Name: "api", Kind: "anthropic", APIKey: "sk-test", Model: "claude-x"},
			{Name: "cli", Kind: "claudecli"},
			{Name: "gem", Kind: "gemini", APIKey: "YOUR_GEMINI_API_KEY"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "cli", "gem"}, eng.Names())
	assert.Equal(t, []ProviderInfo{
		{Name: "api", Kind: "anthropic", Model: "claude-x", State: "ready"},
		{Name: "cli", Kind: "claudecli", State: "ready"},
		{Name: "gem", Kind: "gemini", State: "disabled", Default: true},
	}, eng.Providers())
}

func TestEngine_DisabledGeminiReturnsNoResult(t *testing.T) {
	eng, err := New(Config{Providers: []ProviderConfig{{Name: "gem", Kind: "gemini"}}})
	require.NoError(t, err)

	_, err = eng.Invoke(context.Background(), "gem", "hello", invoker.Params{})
	assert.ErrorIs(t, err, invoker.ErrNoResult)
}

func TestEngine_WithVerbose(t *testing.T) {
	eng, err := New(Config{Providers: []ProviderConfig{{Name: "p1", Kind: "echo"}}}, WithVerbose(true))
	require.NoError(t, err)

	assert.True(t, eng.deps.Logging.Verbose)
}
