package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Exit codes for ask.
const (
	exitRetriesExhausted = 1
	exitNoResult         = 2
)

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// exitErrorFor maps an Invoke error to an exitError. Unknown errors pass
// through unchanged.
func exitErrorFor(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, invoker.ErrRetriesExhausted):
		return &exitError{code: exitRetriesExhausted, err: err}
	case errors.Is(err, invoker.ErrNoResult):
		return &exitError{code: exitNoResult, err: err}
	default:
		return err
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// newLogger returns a redacting text logger on w. Verbose lowers the level
// to Info.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}

	return slog.New(invoker.NewRedactingHandler(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	))
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f any) bool {
	fd, ok := f.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(fd.Fd()))
}

// terminalWidth returns the width of f, or def when it is not a terminal.
func terminalWidth(f any, def int) int {
	fd, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return def
	}
	w, _, err := term.GetSize(int(fd.Fd()))
	if err != nil || w <= 0 {
		return def
	}
	return w
}

// interactivePrompt asks for a prompt with a text area. Replaced in tests.
var interactivePrompt = func() (string, error) {
	var prompt string
	err := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Prompt").
			Description("Alt+Enter for a new line, Enter to send").
			Value(&prompt),
	)).Run()

	return prompt, err
}

// readPrompt resolves the prompt from args, then a piped stdin, then an
// interactive text area.
func readPrompt(args []string, stdin io.Reader, interactive bool) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if interactive {
		return interactivePrompt()
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read prompt: %w", err)
	}

	prompt := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("empty prompt")
	}

	return prompt, nil
}

// renderMarkdown converts markdown text to terminal-formatted output. It
// falls back to the raw text when rendering fails.
func renderMarkdown(text string, width int) string {
	if width <= 0 {
		width = 100
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.TrimRight(out, "\n")
}

// fmtDuration formats a countdown for display.
func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
