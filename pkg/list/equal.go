package list

import (
	"bytes"

	errs "github.com/matzehuels/randlist/pkg/errors"
)

// Compare checks that candidate b is equivalent to reference a.
//
// Two sequences are equivalent when they have the same length and, at every
// position, equal payloads and agreeing cross-references: either both absent
// or both pointing at nodes with equal payloads. Cross-references are
// compared by content, not by position.
//
// Compare walks both sequences once and returns the first disagreement as
// MISMATCH_LENGTH, MISMATCH_CONTENT or MISMATCH_CROSS_REFERENCE; nil means
// equivalent.
func Compare(a, b *Sequence) error {
	if a.Len() != b.Len() {
		return errs.New(errs.ErrCodeLengthMismatch, "length %d != %d", a.Len(), b.Len())
	}

	ai, bi := a.Head(), b.Head()
	for pos := 0; ai != None && bi != None; pos++ {
		an, bn := a.nodes[ai], b.nodes[bi]
		if !bytes.Equal(an.Data, bn.Data) {
			return errs.New(errs.ErrCodeContentMismatch, "position %d: data %q != %q", pos, an.Data, bn.Data)
		}

		ad, aok := a.CrossRefData(ai)
		bd, bok := b.CrossRefData(bi)
		if aok != bok {
			return errs.New(errs.ErrCodeCrossReferenceMismatch, "position %d: cross-reference present=%t != present=%t", pos, aok, bok)
		}
		if aok && !bytes.Equal(ad, bd) {
			return errs.New(errs.ErrCodeCrossReferenceMismatch, "position %d: cross-reference data %q != %q", pos, ad, bd)
		}

		ai, bi = an.Next, bn.Next
	}
	if ai != None || bi != None {
		return errs.New(errs.ErrCodeLengthMismatch, "traversal lengths differ from node counts")
	}
	return nil
}

// Equal reports whether a and b are equivalent under [Compare].
func Equal(a, b *Sequence) bool { return Compare(a, b) == nil }
