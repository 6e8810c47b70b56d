// Package list provides the in-memory model of a doubly-linked list whose
// nodes carry an optional cross-reference to any node of the same list.
//
// # Overview
//
// A [Sequence] owns its nodes in an arena: one contiguous slice of [Node]
// values. The list links (Prev, Next) and the cross-reference (CrossRef) are
// arena indices, with [None] marking an absent link. Freeing a sequence is a
// single drop of the arena; no node outlives or is shared between sequences.
//
// A node's position is its 0-based index in head-to-tail order. Positions are
// not stored on nodes: they are derived by [Sequence.Positions] whenever the
// codec needs them.
//
// # Building
//
// [Build] turns (payload, cross-reference index) pairs into a sequence in two
// passes: append every node, then resolve cross-references through the
// position table. Input is bounded by a [Guard]; entries past the limit are
// ignored.
//
//	seq, err := list.Build([]list.Entry{
//	    {Data: []byte("A"), CrossRef: 1},
//	    {Data: []byte("B"), CrossRef: list.None},
//	    {Data: []byte("C"), CrossRef: 0},
//	})
//
// # Equivalence
//
// [Compare] checks two sequences for structural and content identity. Cross
// references are compared by the content of the node they point at, not by
// position or address. It returns the first disagreement as a MISMATCH_*
// error; [Equal] is the boolean form.
//
// # Concurrency
//
// Sequences are not safe for concurrent mutation. Every operation in this
// package runs to completion synchronously.
package list
