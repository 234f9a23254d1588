package toolbox

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/germanamz/promptcall/pkg/invoker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubInvoker records the last call and returns canned values.
type stubInvoker struct {
	out    string
	err    error
	prompt string
	params invoker.Params
}

func (s *stubInvoker) Name() string { return "stub" }

func (s *stubInvoker) Invoke(_ context.Context, prompt string, p invoker.Params) (string, error) {
	s.prompt = prompt
	s.params = p
	return s.out, s.err
}

func TestAskTool_Schema(t *testing.T) {
	tool := AskTool("claude-api", &stubInvoker{})

	assert.Equal(t, "ask_claude-api", tool.Name)
	assert.Contains(t, tool.Description, `"claude-api"`)

	var schema struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	require.NoError(t, json.Unmarshal(tool.InputSchema, &schema))
	assert.Equal(t, "object", schema.Type)
	assert.Equal(t, []string{"prompt"}, schema.Required)
	assert.Len(t, schema.Properties, 4)
}

func TestAskTool_ForwardsParams(t *testing.T) {
	stub := &stubInvoker{out: "reply"}
	tool := AskTool("p", stub)

	out, err := tool.Handler(context.Background(),
		json.RawMessage(`{"prompt":"hi","model":"m1","max_tokens":99,"temperature":0.1}`))
	require.NoError(t, err)

	assert.Equal(t, "reply", out)
	assert.Equal(t, "hi", stub.prompt)
	assert.Equal(t, "m1", stub.params.Model)
	assert.Equal(t, 99, stub.params.MaxTokens)
	require.NotNil(t, stub.params.Temperature)
	assert.InDelta(t, 0.1, *stub.params.Temperature, 1e-9)
}

func TestAskTool_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stub  *stubInvoker
		input string
		want  string
	}{
		{name: "bad json", stub: &stubInvoker{}, input: `not json`, want: "invalid input"},
		{name: "missing prompt", stub: &stubInvoker{}, input: `{}`, want: "prompt is required"},
		{name: "no result", stub: &stubInvoker{err: invoker.ErrNoResult}, input: `{"prompt":"x"}`, want: "p: no result"},
		{name: "exhausted", stub: &stubInvoker{err: invoker.ErrRetriesExhausted}, input: `{"prompt":"x"}`, want: "p: rate limit retries exhausted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AskTool("p", tt.stub).Handler(context.Background(), json.RawMessage(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
