package list

import (
	"fmt"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// Entry is one input pair: a payload and the 0-based position of the entry
// it cross-references, or [None].
type Entry struct {
	Data     []byte
	CrossRef int
	// Line is the 1-based source line, used in error messages. Zero means
	// the entry did not come from a text file.
	Line int
}

// Option configures [Build].
type Option func(*options)

type options struct {
	maxNodes int
	guard    *Guard
}

// WithMaxNodes lowers the node limit below [MaxNodes].
func WithMaxNodes(n int) Option {
	return func(o *options) { o.maxNodes = n }
}

// WithGuard makes Build share an existing guard, so a caller can read how
// many entries were dropped.
func WithGuard(g *Guard) Option {
	return func(o *options) { o.guard = g }
}

// Build creates a sequence from entries.
//
// The first pass appends one node per admitted entry, linking prev/next and
// recording each node's arena index by input position. The second pass
// resolves every cross-reference through that table. Entries past the guard
// limit are ignored. A cross-reference below -1 or at or beyond the number
// of admitted entries fails the whole build with INVALID_CROSS_REFERENCE.
func Build(entries []Entry, opts ...Option) (*Sequence, error) {
	o := options{maxNodes: MaxNodes}
	for _, opt := range opts {
		opt(&o)
	}
	g := o.guard
	if g == nil {
		g = NewGuard(o.maxNodes)
	}
	entries = g.Truncate(entries)

	s := New(len(entries))
	byPosition := make([]int, len(entries))
	for pos, e := range entries {
		byPosition[pos] = s.Append(e.Data)
	}

	for pos, e := range entries {
		if err := checkCrossRef(e, pos, len(entries)); err != nil {
			return nil, err
		}
		if e.CrossRef == None {
			continue
		}
		if err := s.SetCrossRef(byPosition[pos], byPosition[e.CrossRef]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func checkCrossRef(e Entry, pos, count int) error {
	where := location(e, pos)
	switch {
	case e.CrossRef < None:
		return errs.New(errs.ErrCodeInvalidCrossReference, "%s: cross-reference %d is too small (minimum -1)", where, e.CrossRef)
	case e.CrossRef >= count:
		return errs.New(errs.ErrCodeInvalidCrossReference, "%s: cross-reference %d is too large (list has %d nodes)", where, e.CrossRef, count)
	}
	return nil
}

func location(e Entry, pos int) string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d", e.Line)
	}
	return fmt.Sprintf("entry %d", pos)
}
