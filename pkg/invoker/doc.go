// Package invoker defines the contract shared by every prompt invoker.
//
// An [Invoker] takes a prompt plus optional generation [Params], issues one
// outbound call and returns the extracted text. Recoverable failures collapse
// to [ErrNoResult]; the detail is only visible in logs. [ErrRetriesExhausted]
// is the single distinguished failure and is only produced by invokers that
// retry on their own.
//
// Concrete invokers live in the provider packages:
//   - [github.com/germanamz/promptcall/pkg/providers/anthropic]: Messages API over HTTP
//   - [github.com/germanamz/promptcall/pkg/providers/claudecli]: the claude CLI as a subprocess
//   - [github.com/germanamz/promptcall/pkg/providers/gemini]: Gemini through the genai client
package invoker
