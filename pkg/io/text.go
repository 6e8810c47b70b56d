package io

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

// Separator splits a text line into payload and cross-reference index.
const Separator = ';'

// Option configures text and binary reading.
type Option func(*options)

type options struct {
	guard *list.Guard
}

// WithMaxNodes lowers the node limit below [list.MaxNodes].
func WithMaxNodes(n int) Option {
	return func(o *options) { o.guard = list.NewGuard(n) }
}

// WithGuard shares a guard with the caller, which can then report how many
// lines were dropped.
func WithGuard(g *list.Guard) Option {
	return func(o *options) { o.guard = g }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.guard == nil {
		o.guard = list.NewGuard(list.MaxNodes)
	}
	return o
}

// ParseLine splits one text line into an entry.
// Line numbers are not known here; [ReadText] sets them.
func ParseLine(line string) (list.Entry, error) {
	line = strings.TrimSuffix(line, "\r")

	sep := strings.LastIndexByte(line, Separator)
	if sep < 0 {
		return list.Entry{}, errs.New(errs.ErrCodeMissingSeparator, "no separator %q in %q", Separator, line)
	}

	suffix := strings.TrimSpace(line[sep+1:])
	ref, err := strconv.ParseInt(suffix, 10, 32)
	if err != nil {
		return list.Entry{}, errs.New(errs.ErrCodeInvalidIndexFormat, "cross-reference index %q is not a 32-bit integer", suffix)
	}

	return list.Entry{Data: []byte(line[:sep]), CrossRef: int(ref)}, nil
}

// ReadText parses r line by line.
//
// Reading stops as soon as the guard is full; lines past the limit are
// neither read nor parsed. A final line without a newline is accepted, an
// empty final line after the last newline is not a record. ReadText does not
// close r.
func ReadText(r io.Reader, opts ...Option) ([]list.Entry, error) {
	o := newOptions(opts)
	br := bufio.NewReader(r)

	var entries []list.Entry
	for lineNo := 1; ; lineNo++ {
		if o.guard.Full() {
			break
		}
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "read line %d", lineNo)
		}
		if line == "" && err != nil {
			break
		}

		e, perr := ParseLine(strings.TrimSuffix(line, "\n"))
		if perr != nil {
			return nil, atLine(perr, lineNo)
		}
		e.Line = lineNo
		o.guard.Admit()
		entries = append(entries, e)

		if err != nil {
			break
		}
	}
	return entries, nil
}

func atLine(err error, lineNo int) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return errs.New(e.Code, "line %d: %s", lineNo, e.Message)
	}
	return fmt.Errorf("line %d: %w", lineNo, err)
}

// BuildText reads r and builds a sequence from its lines.
func BuildText(r io.Reader, opts ...Option) (*list.Sequence, error) {
	o := newOptions(opts)
	entries, err := ReadText(r, WithGuard(o.guard))
	if err != nil {
		return nil, err
	}
	return list.Build(entries)
}

// ImportText reads the text file at path and builds a sequence from it.
func ImportText(path string, opts ...Option) (*list.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return BuildText(f, opts...)
}

// WriteText writes s in the text format, one node per line, so that
// [ReadText] reproduces an equivalent sequence.
//
// A payload holding a newline, or ending in a carriage return, has no text
// form; WriteText rejects it with INVALID_INPUT before writing anything.
// Such lists round-trip through the binary or JSON formats instead.
func WriteText(s *list.Sequence, w io.Writer) error {
	if err := CheckText(s); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	positions := s.Positions()

	var werr error
	s.Walk(func(pos, idx int, n list.Node) bool {
		ref := list.None
		if n.HasCrossRef() {
			ref = positions[n.CrossRef]
		}
		if _, err := fmt.Fprintf(bw, "%s%c%d\n", n.Data, Separator, ref); err != nil {
			werr = errs.Wrap(errs.ErrCodeIO, err, "write position %d", pos)
			return false
		}
		return true
	})
	if werr != nil {
		return werr
	}
	if err := bw.Flush(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "flush")
	}
	return nil
}

// ExportText writes s to a file at path in the text format. Nothing is
// created when a payload has no text form.
func ExportText(s *list.Sequence, path string) error {
	if err := CheckText(s); err != nil {
		return err
	}
	return exportFile(path, func(w io.Writer) error { return WriteText(s, w) })
}

// CheckText reports the first node whose payload cannot be written as a
// text line and read back unchanged.
func CheckText(s *list.Sequence) error {
	var err error
	s.Walk(func(pos, _ int, n list.Node) bool {
		switch {
		case bytes.IndexByte(n.Data, '\n') >= 0:
			err = errs.New(errs.ErrCodeInvalidInput, "position %d: payload contains a newline", pos)
		case bytes.HasSuffix(n.Data, []byte("\r")):
			err = errs.New(errs.ErrCodeInvalidInput, "position %d: payload ends in a carriage return", pos)
		}
		return err == nil
	})
	return err
}
