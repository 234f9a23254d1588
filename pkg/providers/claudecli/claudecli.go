// Package claudecli provides an Invoker that runs the claude command line
// tool as a one-shot subprocess.
//
// The prompt goes in on stdin and the answer comes back on stdout. When the
// tool exits non-zero with a rate limit message on stderr, the invoker waits
// a fixed interval and tries again, up to a retry ceiling. Once the ceiling
// is reached it returns invoker.ErrRetriesExhausted, which process owners
// are expected to treat as fatal.
package claudecli

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/metrics"
	"github.com/samber/lo"
)

// Kind is the provider kind used in configuration and metrics.
const Kind = "claudecli"

const (
	// DefaultCommand is the executable looked up on PATH.
	DefaultCommand = "claude"
	// DefaultModel is passed to --model when the call sets none.
	DefaultModel = "sonnet"
	// DefaultMaxRetries is the rate limit retry ceiling.
	DefaultMaxRetries = 3
	// DefaultRetryWait is how long to wait after a rate limited run.
	DefaultRetryWait = 65 * time.Second

	tick = time.Second
)

// RateLimitIndicators are matched case-sensitively against stderr of a
// failed run. Any match marks the run as rate limited.
var RateLimitIndicators = []string{
	"rate_limit_error",
	"Rate limit reached",
	"429",
}

// ProgressFunc receives the remaining wait before retry number attempt.
// It is called once per second and a final time with zero.
type ProgressFunc func(attempt int, remaining time.Duration)

var _ invoker.Invoker = (*Invoker)(nil)

// Invoker runs the claude CLI.
type Invoker struct {
	command    string
	model      string
	maxRetries int
	retryWait  time.Duration
	progress   ProgressFunc
	runner     Runner
	metrics    metrics.Collector
	sleep      func(ctx context.Context, d time.Duration) error
	log        invoker.Log
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithCommand sets the executable name or path.
func WithCommand(cmd string) Option {
	return func(i *Invoker) { i.command = lo.CoalesceOrEmpty(cmd, i.command) }
}

// WithModel sets the default model alias.
func WithModel(model string) Option {
	return func(i *Invoker) { i.model = lo.CoalesceOrEmpty(model, i.model) }
}

// WithMaxRetries sets the retry ceiling. Values below zero are ignored.
func WithMaxRetries(n int) Option {
	return func(i *Invoker) {
		if n >= 0 {
			i.maxRetries = n
		}
	}
}

// WithRetryWait sets the wait between a rate limited run and its retry.
func WithRetryWait(d time.Duration) Option {
	return func(i *Invoker) {
		if d > 0 {
			i.retryWait = d
		}
	}
}

// WithProgress installs a countdown callback for rate limit waits.
func WithProgress(fn ProgressFunc) Option {
	return func(i *Invoker) { i.progress = fn }
}

// WithRunner replaces the subprocess runner.
func WithRunner(r Runner) Option {
	return func(i *Invoker) { i.runner = r }
}

// WithMetrics records retries on c.
func WithMetrics(c metrics.Collector) Option {
	return func(i *Invoker) { i.metrics = c }
}

// WithLogger sets the logger and the logging switches.
func WithLogger(l *slog.Logger, switches invoker.Logging) Option {
	return func(i *Invoker) { i.log = invoker.NewLog(l, switches, Kind) }
}

// New creates an Invoker with the given options.
func New(opts ...Option) *Invoker {
	i := &Invoker{
		command:    DefaultCommand,
		model:      DefaultModel,
		maxRetries: DefaultMaxRetries,
		retryWait:  DefaultRetryWait,
		runner:     ExecRunner{},
		metrics:    metrics.Noop{},
		sleep:      contextSleep,
		log:        invoker.NewLog(nil, invoker.DefaultLogging, Kind),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// SetSleepFunc overrides the sleep function (for testing).
func (i *Invoker) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) { i.sleep = fn }

// Name returns the provider kind.
func (i *Invoker) Name() string { return Kind }

// Args returns the command line flags for a run with the given model.
func Args(model string) []string {
	return []string{
		"-p",
		"--dangerously-skip-permissions",
		"--model", model,
		"--output-format", "text",
	}
}

// IsRateLimited reports whether stderr carries one of the RateLimitIndicators.
func IsRateLimited(stderr string) bool {
	return lo.SomeBy(RateLimitIndicators, func(s string) bool {
		return strings.Contains(stderr, s)
	})
}

// Invoke runs the CLI with prompt on stdin and returns stdout unmodified.
//
// A zero exit with empty stdout, a non-zero exit without a rate limit
// indicator, and any process management failure all yield
// invoker.ErrNoResult without retrying. A rate limited run is retried after
// the retry wait while fewer than the maximum retries have been spent;
// afterwards invoker.ErrRetriesExhausted is returned.
//
// MaxTokens and Temperature have no CLI equivalent and are ignored.
func (i *Invoker) Invoke(ctx context.Context, prompt string, p invoker.Params) (string, error) {
	model := lo.CoalesceOrEmpty(p.Model, i.model)
	log := i.log.ForRequest().With("model", model)

	if p.MaxTokens != 0 || p.Temperature != nil {
		log.Info(ctx, "max_tokens and temperature are not supported by the CLI; ignoring")
	}

	for attempt := 0; ; attempt++ {
		log.Info(ctx, "running", "command", i.command, "attempt", attempt, "prompt", invoker.Preview(prompt))

		res, err := i.runner.Run(ctx, i.command, Args(model), prompt)
		if err != nil {
			log.Error(ctx, "process failed", "error", err)
			return "", invoker.ErrNoResult
		}
		if ctx.Err() != nil {
			log.Warn(ctx, "cancelled", "error", ctx.Err())
			return "", invoker.ErrNoResult
		}

		if res.ExitCode == 0 {
			if res.Stdout == "" {
				log.Warn(ctx, "empty output", "stderr", invoker.Preview(res.Stderr))
				return "", invoker.ErrNoResult
			}
			log.Info(ctx, "completed", "output", invoker.Preview(res.Stdout))
			return res.Stdout, nil
		}

		if !IsRateLimited(res.Stderr) {
			log.Error(ctx, "command failed", "exit_code", res.ExitCode, "stderr", res.Stderr)
			return "", invoker.ErrNoResult
		}

		if attempt >= i.maxRetries {
			log.Error(ctx, "rate limit retries exhausted", "attempts", attempt+1, "stderr", res.Stderr)
			return "", invoker.ErrRetriesExhausted
		}

		log.Warn(ctx, "rate limited, waiting", "wait", i.retryWait, "retry", attempt+1, "max_retries", i.maxRetries)
		i.metrics.RecordRetry(ctx, Kind)

		if err := i.wait(ctx, attempt+1); err != nil {
			log.Warn(ctx, "wait cancelled", "error", err)
			return "", invoker.ErrNoResult
		}
	}
}

// wait blocks for the retry wait. With a progress callback installed it
// counts down in one-second steps; otherwise it sleeps once.
func (i *Invoker) wait(ctx context.Context, attempt int) error {
	if i.progress == nil {
		return i.sleep(ctx, i.retryWait)
	}

	for remaining := i.retryWait; remaining > 0; {
		i.progress(attempt, remaining)

		step := min(tick, remaining)
		if err := i.sleep(ctx, step); err != nil {
			return err
		}
		remaining -= step
	}
	i.progress(attempt, 0)

	return nil
}

// contextSleep sleeps for d or until ctx is cancelled.
func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
