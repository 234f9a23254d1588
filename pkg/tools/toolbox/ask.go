package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/germanamz/promptcall/pkg/invoker"
)

// AskPrefix prefixes the tool name generated for each provider.
const AskPrefix = "ask_"

var askSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "prompt": {"type": "string", "description": "Prompt text sent to the model"},
    "model": {"type": "string", "description": "Model override"},
    "max_tokens": {"type": "integer", "description": "Output token limit"},
    "temperature": {"type": "number", "description": "Sampling temperature"}
  },
  "required": ["prompt"]
}`)

type askInput struct {
	Prompt      string   `json:"prompt"`
	Model       string   `json:"model"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature *float64 `json:"temperature"`
}

// AskTool exposes inv as a tool named ask_<name>. Absence of a result and
// exhausted retries both surface as handler errors.
func AskTool(name string, inv invoker.Invoker) Tool {
	return Tool{
		Name:        AskPrefix + name,
		Description: fmt.Sprintf("Send a single prompt to the %q provider (%s) and return the model's text reply.", name, inv.Name()),
		InputSchema: askSchema,
		Handler: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in askInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("invalid input: %w", err)
			}
			if in.Prompt == "" {
				return "", errors.New("prompt is required")
			}

			out, err := inv.Invoke(ctx, in.Prompt, invoker.Params{
				Model:       in.Model,
				MaxTokens:   in.MaxTokens,
				Temperature: in.Temperature,
			})
			switch {
			case errors.Is(err, invoker.ErrRetriesExhausted):
				return "", fmt.Errorf("%s: rate limit retries exhausted", name)
			case err != nil:
				return "", fmt.Errorf("%s: no result", name)
			}

			return out, nil
		},
	}
}
