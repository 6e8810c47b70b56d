package list

import (
	errs "github.com/matzehuels/randlist/pkg/errors"
)

// None marks an absent link or cross-reference.
const None = -1

// Node is one list element. Prev, Next and CrossRef are arena indices of the
// owning [Sequence], or [None].
type Node struct {
	Data     []byte
	Prev     int
	Next     int
	CrossRef int
}

// HasCrossRef reports whether the node references another node.
func (n Node) HasCrossRef() bool { return n.CrossRef != None }

// Sequence is an arena-backed doubly-linked list with cross-references.
//
// The zero value is an empty, usable sequence.
type Sequence struct {
	nodes []Node
	head  int
	tail  int
}

// New creates an empty sequence with room for capacity nodes.
func New(capacity int) *Sequence {
	if capacity < 0 {
		capacity = 0
	}
	return &Sequence{
		nodes: make([]Node, 0, capacity),
		head:  None,
		tail:  None,
	}
}

// Len returns the number of nodes.
func (s *Sequence) Len() int { return len(s.nodes) }

// Head returns the arena index of the first node, or [None] when empty.
func (s *Sequence) Head() int {
	if len(s.nodes) == 0 {
		return None
	}
	return s.head
}

// Tail returns the arena index of the last node, or [None] when empty.
func (s *Sequence) Tail() int {
	if len(s.nodes) == 0 {
		return None
	}
	return s.tail
}

// Node returns the node at arena index i.
// It panics if i is out of range, like a slice index.
func (s *Sequence) Node(i int) Node { return s.nodes[i] }

// Append adds a node holding data at the tail and returns its arena index.
// The data slice is retained, not copied.
func (s *Sequence) Append(data []byte) int {
	i := len(s.nodes)
	n := Node{Data: data, Prev: None, Next: None, CrossRef: None}
	if i == 0 {
		s.head = i
	} else {
		n.Prev = s.tail
		s.nodes[s.tail].Next = i
	}
	s.nodes = append(s.nodes, n)
	s.tail = i
	return i
}

// SetCrossRef points node i at node target, or clears it when target is
// [None]. A target outside {None} ∪ [0, Len) is rejected with
// INVALID_CROSS_REFERENCE and leaves the node unchanged.
func (s *Sequence) SetCrossRef(i, target int) error {
	if i < 0 || i >= len(s.nodes) {
		return errs.New(errs.ErrCodeInvalidCrossReference, "node %d out of range [0, %d)", i, len(s.nodes))
	}
	if target < None || target >= len(s.nodes) {
		return errs.New(errs.ErrCodeInvalidCrossReference, "node %d: cross-reference %d out of range [-1, %d)", i, target, len(s.nodes))
	}
	s.nodes[i].CrossRef = target
	return nil
}

// CrossRefData returns the payload of the node that node i references.
func (s *Sequence) CrossRefData(i int) ([]byte, bool) {
	ref := s.nodes[i].CrossRef
	if ref == None {
		return nil, false
	}
	return s.nodes[ref].Data, true
}

// Walk calls fn for every node in head-to-tail order with its position and
// arena index. Walk stops early when fn returns false.
func (s *Sequence) Walk(fn func(pos, idx int, n Node) bool) {
	pos := 0
	for idx := s.Head(); idx != None; idx = s.nodes[idx].Next {
		if !fn(pos, idx, s.nodes[idx]) {
			return
		}
		pos++
	}
}

// Positions returns the position table: Positions()[idx] is the head-to-tail
// position of the node stored at arena index idx. Building the table costs a
// single traversal; lookups are O(1).
func (s *Sequence) Positions() []int {
	table := make([]int, len(s.nodes))
	s.Walk(func(pos, idx int, _ Node) bool {
		table[idx] = pos
		return true
	})
	return table
}

// PayloadSize returns the sum of all payload lengths.
func (s *Sequence) PayloadSize() int {
	total := 0
	for _, n := range s.nodes {
		total += len(n.Data)
	}
	return total
}

// CrossRefCount returns how many nodes carry a cross-reference.
func (s *Sequence) CrossRefCount() int {
	count := 0
	for _, n := range s.nodes {
		if n.CrossRef != None {
			count++
		}
	}
	return count
}

// Allocate creates a sequence of n empty nodes already linked in position
// order, so cross-references can be resolved before payloads are filled in.
func Allocate(n int) *Sequence {
	s := New(n)
	for i := 0; i < n; i++ {
		s.Append(nil)
	}
	return s
}

// SetData replaces the payload of node i.
func (s *Sequence) SetData(i int, data []byte) { s.nodes[i].Data = data }
