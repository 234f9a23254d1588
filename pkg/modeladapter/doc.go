// Package modeladapter provides the HTTP plumbing shared by the API-backed
// invokers.
//
// It contains:
//   - [ModelAdapter], an embeddable base struct with base URL, auth header,
//     static headers, a lazily created HTTP client and a JSON POST helper
//   - [StatusError] and [RateLimitError] for non-2xx replies
//   - [Quota] parsing from provider rate limit response headers
//   - [github.com/germanamz/promptcall/pkg/modeladapter/usage]: thread-safe token usage tracker
//
// This package contains no provider-specific request shapes; those live in
// the provider packages that embed ModelAdapter.
package modeladapter
