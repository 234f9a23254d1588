// Package metrics records invocation outcomes. The Prometheus collector keeps
// its own registry so embedding applications can expose it wherever they like.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeNoResult  = "no_result"
	OutcomeExhausted = "retries_exhausted"
)

// Collector is the sink for invocation metrics. Implementations must be safe
// for concurrent use.
type Collector interface {
	RecordInvocation(ctx context.Context, provider, outcome string, d time.Duration)
	RecordRetry(ctx context.Context, provider string)
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordInvocation(context.Context, string, string, time.Duration) {}
func (Noop) RecordRetry(context.Context, string)                             {}

// Prometheus is a Collector backed by a private Prometheus registry.
type Prometheus struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	retries     *prometheus.CounterVec
	registry    *prometheus.Registry
}

// NewPrometheus creates a collector and registers its metrics.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptcall_invocations_total",
				Help: "Invocations by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "promptcall_invocation_duration_seconds",
				Help:    "Wall-clock duration of invocations, retries included",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"provider"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "promptcall_rate_limit_retries_total",
				Help: "Rate limit retries by provider",
			},
			[]string{"provider"},
		),
		registry: prometheus.NewRegistry(),
	}

	p.registry.MustRegister(p.invocations, p.duration, p.retries)

	return p
}

// RecordInvocation counts one finished invocation.
func (p *Prometheus) RecordInvocation(_ context.Context, provider, outcome string, d time.Duration) {
	p.invocations.WithLabelValues(provider, outcome).Inc()
	p.duration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordRetry counts one rate limit retry.
func (p *Prometheus) RecordRetry(_ context.Context, provider string) {
	p.retries.WithLabelValues(provider).Inc()
}

// Registry returns the registry for HTTP exposure.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// OutcomeOf maps an Invoke error to an outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, invoker.ErrRetriesExhausted):
		return OutcomeExhausted
	default:
		return OutcomeNoResult
	}
}

// Instrumented wraps an Invoker and records every call.
type Instrumented struct {
	inner     invoker.Invoker
	collector Collector
	now       func() time.Time
}

var _ invoker.Invoker = (*Instrumented)(nil)

// Instrument wraps inv. A nil collector yields Noop.
func Instrument(inv invoker.Invoker, c Collector) *Instrumented {
	if c == nil {
		c = Noop{}
	}
	return &Instrumented{inner: inv, collector: c, now: time.Now}
}

// Name returns the wrapped invoker's name.
func (i *Instrumented) Name() string { return i.inner.Name() }

// Unwrap returns the wrapped invoker.
func (i *Instrumented) Unwrap() invoker.Invoker { return i.inner }

// Invoke forwards to the wrapped invoker and records the outcome.
func (i *Instrumented) Invoke(ctx context.Context, prompt string, p invoker.Params) (string, error) {
	start := i.now()
	out, err := i.inner.Invoke(ctx, prompt, p)
	i.collector.RecordInvocation(ctx, i.inner.Name(), OutcomeOf(err), i.now().Sub(start))

	return out, err
}
