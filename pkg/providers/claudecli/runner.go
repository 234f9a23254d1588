package claudecli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"
)

// Result is the captured outcome of one subprocess run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner runs a program, feeds it stdin and captures its output. An error
// means the process could not be managed at all; a non-zero exit is reported
// through Result.ExitCode with a nil error.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin string) (Result, error)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

var _ Runner = ExecRunner{}

// Run starts name with args, writes stdin and closes it, drains stdout and
// stderr until the process exits, and waits for it.
func (r ExecRunner) Run(ctx context.Context, name string, args []string, stdin string) (Result, error) {
	cmd := osexec.CommandContext(ctx, name, args...) //nolint:gosec // command comes from trusted configuration
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}

	// os/exec copies each non-file stream on its own goroutine and closes
	// stdin once the reader is exhausted.
	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("claudecli: run %s: %w", name, err)
	}

	return res, nil
}
