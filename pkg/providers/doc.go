// Package providers groups the concrete invokers.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/promptcall/pkg/providers/anthropic]: the Messages HTTP API
//   - [github.com/germanamz/promptcall/pkg/providers/claudecli]: the claude command line tool, with the rate limit retry loop
//   - [github.com/germanamz/promptcall/pkg/providers/gemini]: the Gemini API through the genai client
//
// Each invoker implements [github.com/germanamz/promptcall/pkg/invoker.Invoker].
package providers
