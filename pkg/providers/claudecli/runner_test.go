//go:build unix

package claudecli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/germanamz/promptcall/pkg/providers/claudecli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFakeCLI writes an executable script standing in for the claude binary.
func writeFakeCLI(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700)) //nolint:gosec // test fixture must be executable

	return path
}

func TestExecRunner_PipesStdinAndCapturesOutput(t *testing.T) {
	res, err := claudecli.ExecRunner{}.Run(context.Background(), "sh", []string{"-c", "cat; echo oops >&2"}, "hello from stdin")
	require.NoError(t, err)

	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello from stdin", res.Stdout)
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	res, err := claudecli.ExecRunner{}.Run(context.Background(), "sh", []string{"-c", "echo 'Rate limit reached' >&2; exit 3"}, "")
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.True(t, claudecli.IsRateLimited(res.Stderr))
}

func TestExecRunner_Env(t *testing.T) {
	r := claudecli.ExecRunner{Env: []string{"PROMPTCALL_TEST=42"}}

	res, err := r.Run(context.Background(), "sh", []string{"-c", "printf %s \"$PROMPTCALL_TEST\""}, "")
	require.NoError(t, err)
	assert.Equal(t, "42", res.Stdout)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, err := claudecli.ExecRunner{}.Run(context.Background(), "promptcall-no-such-binary", nil, "")
	assert.ErrorContains(t, err, "claudecli: run promptcall-no-such-binary")
}

func TestExecRunner_EndToEndWithInvoker(t *testing.T) {
	inv := claudecli.New(claudecli.WithCommand(writeFakeCLI(t, "#!/bin/sh\ncat\n")))

	out, err := inv.Invoke(context.Background(), "echo me", invoker.Params{})
	require.NoError(t, err)
	assert.Equal(t, "echo me", out)
}

func TestExecRunner_EndToEndRateLimitExhausted(t *testing.T) {
	inv := claudecli.New(
		claudecli.WithCommand(writeFakeCLI(t, "#!/bin/sh\necho 'rate_limit_error' >&2\nexit 1\n")),
		claudecli.WithMaxRetries(1),
	)
	inv.SetSleepFunc(func(context.Context, time.Duration) error { return nil })

	_, err := inv.Invoke(context.Background(), "p", invoker.Params{})
	require.ErrorIs(t, err, invoker.ErrRetriesExhausted)
}
