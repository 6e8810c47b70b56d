package io

import (
	"io"
	"os"

	"github.com/matzehuels/randlist/pkg/codec"
	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

// ReadBinary decodes one binary sequence from r, honouring the node limit
// of the options.
func ReadBinary(r io.Reader, opts ...Option) (*list.Sequence, error) {
	o := newOptions(opts)
	return codec.Decode(r, codec.WithMaxNodes(o.guard.Limit()))
}

// ImportBinary reads the binary file at path.
func ImportBinary(path string, opts ...Option) (*list.Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "open %s", path)
	}
	defer f.Close()
	return ReadBinary(f, opts...)
}

// ExportBinary writes the binary form of s to a file at path, replacing any
// existing file.
func ExportBinary(s *list.Sequence, path string) error {
	return exportFile(path, func(w io.Writer) error { return codec.Encode(w, s) })
}

// exportFile creates path and hands it to write. A failed close is an error
// too, since buffered data may not have reached the file.
func exportFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "close %s", path)
	}
	return nil
}
