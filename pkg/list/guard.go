package list

import (
	errs "github.com/matzehuels/randlist/pkg/errors"
)

// MaxNodes is the hard upper bound on the length of any sequence. It bounds
// both memory and time for building, encoding and decoding.
const MaxNodes = 1_000_000

// Guard enforces a maximum node count on an input.
// Text ingestion admits entries until the limit and silently drops the rest;
// decoding rejects a declared count above the limit.
type Guard struct {
	limit    int
	admitted int
	dropped  int
}

// NewGuard creates a guard admitting at most limit nodes.
// A non-positive limit or one above [MaxNodes] is clamped to [MaxNodes].
func NewGuard(limit int) *Guard {
	if limit <= 0 || limit > MaxNodes {
		limit = MaxNodes
	}
	return &Guard{limit: limit}
}

// Limit returns the configured maximum.
func (g *Guard) Limit() int { return g.limit }

// Admit records one more candidate node and reports whether it fits.
func (g *Guard) Admit() bool {
	if g.admitted >= g.limit {
		g.dropped++
		return false
	}
	g.admitted++
	return true
}

// Full reports whether no further node would be admitted.
func (g *Guard) Full() bool { return g.admitted >= g.limit }

// Admitted returns the number of admitted nodes.
func (g *Guard) Admitted() int { return g.admitted }

// Dropped returns how many candidates were refused.
func (g *Guard) Dropped() int { return g.dropped }

// Check validates a declared node count against the limit without admitting
// anything. It returns TOO_MANY_NODES when count exceeds the limit.
func (g *Guard) Check(count uint64) error {
	if count > uint64(g.limit) {
		return errs.New(errs.ErrCodeTooManyNodes, "node count %d exceeds limit %d", count, g.limit)
	}
	return nil
}

// Truncate returns the prefix of entries the guard admits and counts the
// rest as dropped.
func (g *Guard) Truncate(entries []Entry) []Entry {
	n := min(max(g.limit-g.admitted, 0), len(entries))
	g.admitted += n
	g.dropped += len(entries) - n
	return entries[:n]
}
