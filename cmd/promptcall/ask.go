package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/germanamz/promptcall/pkg/engine"
	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/spf13/cobra"
)

type askOptions struct {
	provider    string
	model       string
	maxTokens   int
	temperature float64
	render      bool
	spinner     bool
}

func newAskCmd(a *app) *cobra.Command {
	var o askOptions

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a prompt and print the reply",
		Long: `Send a prompt to one provider and print the reply.

The prompt is taken from the arguments, from stdin when it is piped, or from
an interactive text area. Exit status is 1 when the claude CLI stays rate
limited after every retry and 2 when the provider produced no result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.provider, "provider", "p", "", "provider name (defaults to default_provider)")
	f.StringVarP(&o.model, "model", "m", "", "model override")
	f.IntVar(&o.maxTokens, "max-tokens", 0, "output token limit override")
	f.Float64VarP(&o.temperature, "temperature", "t", 0, "sampling temperature override")
	f.BoolVarP(&o.render, "render", "r", false, "render the reply as markdown")
	f.BoolVar(&o.spinner, "spinner", false, "show a spinner and the rate limit countdown while waiting")

	return cmd
}

func (a *app) runAsk(cmd *cobra.Command, args []string, o askOptions) error {
	prompt, err := readPrompt(args, a.stdin, len(args) == 0 && isTerminal(a.stdin))
	if err != nil {
		return err
	}

	params := invoker.Params{Model: o.model, MaxTokens: o.maxTokens}
	if cmd.Flags().Changed("temperature") {
		params.Temperature = invoker.Temperature(o.temperature)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	relay := &progressRelay{w: a.stderr}
	eng, err := a.newEngine(engine.WithProgress(relay.report))
	if err != nil {
		return err
	}

	var out string
	if o.spinner && isTerminal(a.stderr) {
		out, err = a.askWithSpinner(ctx, cancel, eng, relay, o.provider, prompt, params)
	} else {
		out, err = eng.Invoke(ctx, o.provider, prompt, params)
	}
	if err != nil {
		return exitErrorFor(err)
	}

	if o.render {
		out = renderMarkdown(out, terminalWidth(a.stdout, 100))
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	_, err = io.WriteString(a.stdout, out)
	return err
}

func (a *app) askWithSpinner(
	ctx context.Context,
	cancel context.CancelFunc,
	eng *engine.Engine,
	relay *progressRelay,
	provider, prompt string,
	params invoker.Params,
) (string, error) {
	if provider == "" {
		provider = eng.DefaultProvider()
	}

	p := tea.NewProgram(newWaitModel("asking "+provider, cancel), tea.WithOutput(a.stderr))
	relay.attach(p)
	defer relay.attach(nil)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)

	go func() {
		out, err := eng.Invoke(ctx, provider, prompt, params)
		done <- result{out, err}
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		a.logger.Warn("wait view failed", "error", err)
	}

	r := <-done
	return r.out, r.err
}

// progressRelay forwards rate limit countdowns to the wait view when one is
// running, otherwise it prints one line per wait.
type progressRelay struct {
	mu          sync.Mutex
	program     *tea.Program
	w           io.Writer
	lastAttempt int
}

func (r *progressRelay) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.program = p
}

func (r *progressRelay) report(attempt int, remaining time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.program != nil {
		r.program.Send(progressMsg{attempt: attempt, remaining: remaining})
		return
	}

	if r.w == nil || remaining <= 0 || attempt == r.lastAttempt {
		return
	}
	r.lastAttempt = attempt
	fmt.Fprintln(r.w, countdownStyle.Render(
		fmt.Sprintf("rate limited, waiting %s before retry %d", fmtDuration(remaining), attempt)))
}
