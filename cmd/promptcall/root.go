package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/germanamz/promptcall/pkg/engine"
	"github.com/germanamz/promptcall/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// app holds state shared by all commands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	envFile     string
	verbose     bool
	metricsAddr string

	logger    *slog.Logger
	collector metrics.Collector
	server    *http.Server
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, collector: metrics.Noop{}}

	root := &cobra.Command{
		Use:           "promptcall",
		Version:       version,
		Short:         "Send one prompt to an LLM and print the reply",
		Long:          "promptcall sends a single prompt to the Anthropic API, the claude CLI or the Gemini API and prints the model's text reply.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd.Context())
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "promptcall.yaml", "path to configuration file (defaults are used if it does not exist)")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "path to .env file (ignored if missing)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests and responses")
	root.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while the command runs (e.g. :9090)")

	root.AddCommand(
		newAskCmd(a),
		newProvidersCmd(a),
		newMCPCmd(a),
		newConfigCmd(a),
	)

	return root
}

func (a *app) setup(ctx context.Context) error {
	if err := loadDotEnv(a.envFile); err != nil {
		return err
	}

	a.logger = newLogger(a.stderr, a.verbose)

	if a.metricsAddr == "" {
		return nil
	}

	prom := metrics.NewPrometheus()
	a.collector = prom

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", a.metricsAddr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prom.Registry(), promhttp.HandlerOpts{}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())

	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	return a.server.Shutdown(ctx)
}

// loadConfig reads the config file, falling back to defaults when it is
// missing, and validates it.
func (a *app) loadConfig() (engine.Config, error) {
	cfg, err := engine.LoadConfigOrDefault(a.configPath)
	if err != nil {
		return engine.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}

	return cfg, nil
}

// newEngine builds the engine with the shared logger and metrics collector.
func (a *app) newEngine(opts ...engine.Option) (*engine.Engine, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	opts = append([]engine.Option{
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.collector),
		engine.WithVerbose(a.verbose),
	}, opts...)

	return engine.New(cfg, opts...)
}
