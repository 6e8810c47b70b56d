package io

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

type document struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	Data     *string `json:"data,omitempty"`
	DataB64  string  `json:"data_b64,omitempty"`
	CrossRef *int    `json:"cross_ref,omitempty"`
}

// Row is one node by position, with a printable payload.
type Row struct {
	Position int    `json:"position"`
	Data     string `json:"data"`
	CrossRef int    `json:"cross_ref"`
}

// WriteJSON encodes s as indented JSON. Cross-references are positions.
func WriteJSON(s *list.Sequence, w io.Writer) error {
	out := document{Nodes: make([]node, 0, s.Len())}
	positions := s.Positions()
	s.Walk(func(_, _ int, n list.Node) bool {
		ref := list.None
		if n.HasCrossRef() {
			ref = positions[n.CrossRef]
		}
		nd := node{CrossRef: &ref}
		if utf8.Valid(n.Data) {
			str := string(n.Data)
			nd.Data = &str
		} else {
			nd.DataB64 = base64.StdEncoding.EncodeToString(n.Data)
		}
		out.Nodes = append(out.Nodes, nd)
		return true
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "encode json")
	}
	return nil
}

// ReadJSON decodes a dump written by [WriteJSON] and rebuilds the sequence,
// with the same cross-reference validation as text input. A node without a
// cross_ref field has no cross-reference. ReadJSON does not close r.
func ReadJSON(r io.Reader, opts ...Option) (*list.Sequence, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode json")
	}

	o := newOptions(opts)
	entries := make([]list.Entry, 0, len(doc.Nodes))
	for i, n := range doc.Nodes {
		var data []byte
		switch {
		case n.Data != nil:
			data = []byte(*n.Data)
		case n.DataB64 != "":
			b, err := base64.StdEncoding.DecodeString(n.DataB64)
			if err != nil {
				return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "node %d: data_b64", i)
			}
			data = b
		}
		ref := list.None
		if n.CrossRef != nil {
			ref = *n.CrossRef
		}
		entries = append(entries, list.Entry{Data: data, CrossRef: ref})
	}
	return list.Build(entries, list.WithGuard(o.guard))
}

// ExportJSON writes the JSON dump of s to a file at path.
func ExportJSON(s *list.Sequence, path string) error {
	return exportFile(path, func(w io.Writer) error { return WriteJSON(s, w) })
}

// Rows flattens s into positional rows, the shape used by tables and the
// HTTP API.
func Rows(s *list.Sequence) []Row {
	rows := make([]Row, 0, s.Len())
	positions := s.Positions()
	s.Walk(func(pos, _ int, n list.Node) bool {
		ref := list.None
		if n.HasCrossRef() {
			ref = positions[n.CrossRef]
		}
		rows = append(rows, Row{Position: pos, Data: printable(n.Data), CrossRef: ref})
		return true
	})
	return rows
}

func printable(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	return fmt.Sprintf("%x", data)
}
