package invoker_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	assert.Equal(t, "key is [REDACTED]", invoker.Redact("key is sk-ant-REDACTED"))
	assert.Equal(t, "[REDACTED]", invoker.Redact("AIzaSyA1234567890abcdefghijklmnopqrstu"))
	assert.Equal(t, "plain text", invoker.Redact("plain text"))
}

func TestRedactingHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(invoker.NewRedactingHandler(slog.NewTextHandler(&buf, nil)))

	logger.With("api_key", "whatever").Info("calling with sk-ant-REDACTED",
		"body", "Bearer abcdefghijklmnopqrstuvwxyz0123",
		"status", 401,
	)

	out := buf.String()
	assert.NotContains(t, out, "sk-ant-REDACTED")
	assert.NotContains(t, out, "whatever")
	assert.NotContains(t, out, "abcdefghijklmnopqrstuvwxyz0123")
	assert.Contains(t, out, "status=401")
}
