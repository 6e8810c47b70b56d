package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

const (
	countSize  = 4
	lengthSize = 4
	refSize    = 4
)

// Size returns the exact number of bytes Encode writes for s.
func Size(s *list.Sequence) int {
	return countSize + s.Len()*(lengthSize+refSize) + s.PayloadSize()
}

// Encode writes the binary form of s to w.
// Write failures are reported as IO_ERROR.
func Encode(w io.Writer, s *list.Sequence) error {
	if s.Len() > list.MaxNodes {
		return errs.New(errs.ErrCodeTooManyNodes, "node count %d exceeds limit %d", s.Len(), list.MaxNodes)
	}

	bw := bufio.NewWriter(w)
	positions := s.Positions()

	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], uint32(s.Len()))
	if _, err := bw.Write(word[:]); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "write node count")
	}

	var werr error
	s.Walk(func(pos, idx int, n list.Node) bool {
		if uint64(len(n.Data)) > math.MaxUint32 {
			werr = errs.New(errs.ErrCodeInvalidInput, "position %d: payload of %d bytes does not fit a uint32 length", pos, len(n.Data))
			return false
		}
		binary.LittleEndian.PutUint32(word[:], uint32(len(n.Data)))
		if _, err := bw.Write(word[:]); err != nil {
			werr = errs.Wrap(errs.ErrCodeIO, err, "position %d: write payload length", pos)
			return false
		}
		if _, err := bw.Write(n.Data); err != nil {
			werr = errs.Wrap(errs.ErrCodeIO, err, "position %d: write payload", pos)
			return false
		}

		ref := int32(list.None)
		if n.CrossRef != list.None {
			ref = int32(positions[n.CrossRef])
		}
		binary.LittleEndian.PutUint32(word[:], uint32(ref))
		if _, err := bw.Write(word[:]); err != nil {
			werr = errs.Wrap(errs.ErrCodeIO, err, "position %d: write cross-reference", pos)
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

// Marshal returns the binary form of s.
func Marshal(s *list.Sequence) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, Size(s)))
	if err := Encode(buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
