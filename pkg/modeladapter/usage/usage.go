// Package usage accumulates token counts reported by API responses.
package usage

import "sync"

// TokenCount holds input and output token counts for a single call.
type TokenCount struct {
	InputTokens  int
	OutputTokens int
}

// Total returns the sum of input and output tokens.
func (tc TokenCount) Total() int {
	return tc.InputTokens + tc.OutputTokens
}

// Tracker keeps a running total of token usage plus the most recent entry.
// It does not retain individual entries, so a long-lived invoker uses
// constant memory. It is safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	total TokenCount
	last  TokenCount
	count int
}

// Add records a token count entry.
func (t *Tracker) Add(tc TokenCount) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total.InputTokens += tc.InputTokens
	t.total.OutputTokens += tc.OutputTokens
	t.last = tc
	t.count++
}

// Last returns the most recent entry. The bool is false when nothing has
// been recorded yet.
func (t *Tracker) Last() (TokenCount, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.last, t.count > 0
}

// Total returns the aggregate token count across all entries.
func (t *Tracker) Total() TokenCount {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}

// Count returns the number of recorded entries.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Reset clears the tracker.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total, t.last, t.count = TokenCount{}, TokenCount{}, 0
}
