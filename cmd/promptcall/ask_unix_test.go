//go:build unix

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCLI(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o700)) //nolint:gosec // test fixture must be executable

	return path
}

func cliConfig(command string) string {
	return `
providers:
  - name: cli
    kind: claudecli
    command: ` + command + `
    max_retries: 1
    retry_wait: 10ms
`
}

func TestAsk_CLIReply(t *testing.T) {
	cli := fakeCLI(t, "#!/bin/sh\ncat\n")

	res := runCmd(t, "", "--config", writeConfig(t, cliConfig(cli)), "ask", "echo me")
	require.NoError(t, res.err)

	assert.Equal(t, "echo me\n", res.stdout)
}

func TestAsk_CLIRetriesExhaustedExitCode(t *testing.T) {
	cli := fakeCLI(t, "#!/bin/sh\ncat >/dev/null\necho 'rate_limit_error' >&2\nexit 1\n")

	res := runCmd(t, "", "--config", writeConfig(t, cliConfig(cli)), "ask", "hello")

	var ee *exitError
	require.ErrorAs(t, res.err, &ee)
	assert.Equal(t, exitRetriesExhausted, ee.code)
	assert.Contains(t, res.stderr, "before retry 1")
	assert.Contains(t, res.stderr, "rate limit retries exhausted")
}
