package testutil

import "sync"

// FixedTokenGenerator returns predetermined session tokens for testing.
//
// This enables deterministic test execution: the same scenario with the
// same FixedTokenGenerator produces byte-identical session records.
//
// Thread-safety: FixedTokenGenerator is safe for concurrent use via
// internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator that returns tokens in order.
//
// Example:
//
//	gen := NewFixedTokenGenerator("sess-1", "sess-2")
//	gen.Generate() // "sess-1"
//	gen.Generate() // "sess-2"
//	gen.Generate() // panic: all tokens exhausted
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
//
// Panics if all tokens have been consumed. This is a fail-fast approach
// to catch test misconfiguration (test created more sessions than
// expected).
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.tokens) {
		panic("FixedTokenGenerator: all tokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
