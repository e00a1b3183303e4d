package trace

import "github.com/google/uuid"

// TokenGenerator produces run tokens correlating all trace events of one
// engine run. Implemented by UUIDv7Generator (production) and FixedTokens
// (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run tokens, so stored
// traces list in creation order. Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
// Panics if UUID generation fails (practically impossible).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedTokens returns predetermined run tokens, enabling deterministic
// golden-trace comparison in tests.
type FixedTokens struct {
	tokens []string
	idx    int
}

// NewFixedTokens creates a generator that hands out tokens in order.
func NewFixedTokens(tokens ...string) *FixedTokens {
	return &FixedTokens{tokens: tokens}
}

// Generate returns the next predetermined token. Panics when exhausted:
// fail-fast for tests that create more runs than they declared.
func (g *FixedTokens) Generate() string {
	if g.idx >= len(g.tokens) {
		panic("trace: FixedTokens exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
