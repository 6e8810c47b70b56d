package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	errs "github.com/matzehuels/randlist/pkg/errors"
	"github.com/matzehuels/randlist/pkg/list"
)

// readChunk bounds the up-front allocation for a single payload. Larger
// payloads grow as bytes actually arrive, so a forged length cannot force a
// huge allocation ahead of a truncated stream.
const readChunk = 1 << 20

// Option configures decoding.
type Option func(*decoder)

// WithMaxNodes lowers the accepted node count below [list.MaxNodes].
func WithMaxNodes(n int) Option {
	return func(d *decoder) { d.guard = list.NewGuard(n) }
}

// WithMaxPayload rejects any single payload longer than n bytes.
func WithMaxPayload(n int) Option {
	return func(d *decoder) { d.maxPayload = n }
}

// WithTrailing makes [Unmarshal] accept bytes after the last record.
func WithTrailing() Option {
	return func(d *decoder) { d.trailing = true }
}

type decoder struct {
	r          io.Reader
	guard      *list.Guard
	maxPayload int
	trailing   bool
}

func newDecoder(r io.Reader, opts []Option) *decoder {
	d := &decoder{r: r, guard: list.NewGuard(list.MaxNodes)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads one encoded sequence from r.
//
// Bytes after the last record are left unread by the sequence logic; the
// decoder buffers r, so callers that need the remainder should use
// [Unmarshal] on a byte slice instead.
func Decode(r io.Reader, opts ...Option) (*list.Sequence, error) {
	d := newDecoder(bufio.NewReader(r), opts)
	return d.decode()
}

// Unmarshal decodes data, which must hold exactly one encoded sequence
// unless [WithTrailing] is given.
func Unmarshal(data []byte, opts ...Option) (*list.Sequence, error) {
	br := bytes.NewReader(data)
	d := newDecoder(br, opts)
	s, err := d.decode()
	if err != nil {
		return nil, err
	}
	if !d.trailing && br.Len() > 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%d trailing bytes after last record", br.Len())
	}
	return s, nil
}

func (d *decoder) decode() (*list.Sequence, error) {
	count, err := d.readUint32(-1, "node count")
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return list.New(0), nil
	}
	if err := d.guard.Check(uint64(count)); err != nil {
		return nil, err
	}

	n := int(count)
	s := list.Allocate(n)
	for pos := 0; pos < n; pos++ {
		length, err := d.readUint32(pos, "payload length")
		if err != nil {
			return nil, err
		}
		if d.maxPayload > 0 && int64(length) > int64(d.maxPayload) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "position %d: payload of %d bytes exceeds limit %d", pos, length, d.maxPayload)
		}
		data, err := d.readPayload(pos, length)
		if err != nil {
			return nil, err
		}
		s.SetData(pos, data)

		raw, err := d.readUint32(pos, "cross-reference")
		if err != nil {
			return nil, err
		}
		ref := int32(raw)
		if ref < list.None || int64(ref) >= int64(n) {
			return nil, errs.New(errs.ErrCodeInvalidCrossReference, "position %d: cross-reference %d out of range [-1, %d)", pos, ref, n)
		}
		if ref != list.None {
			if err := s.SetCrossRef(pos, int(ref)); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (d *decoder) readUint32(pos int, field string) (uint32, error) {
	var word [4]byte
	if got, err := io.ReadFull(d.r, word[:]); err != nil {
		return 0, readError(err, pos, field, 4, int64(got))
	}
	return binary.LittleEndian.Uint32(word[:]), nil
}

func (d *decoder) readPayload(pos int, length uint32) ([]byte, error) {
	if length <= readChunk {
		data := make([]byte, length)
		if got, err := io.ReadFull(d.r, data); err != nil {
			return nil, readError(err, pos, "payload", int64(length), int64(got))
		}
		return data, nil
	}

	var buf bytes.Buffer
	buf.Grow(readChunk)
	got, err := io.CopyN(&buf, d.r, int64(length))
	if err != nil {
		return nil, readError(err, pos, "payload", int64(length), got)
	}
	return buf.Bytes(), nil
}

// readError classifies a failed read: running out of bytes is a truncated
// stream, anything else an I/O failure of the source.
func readError(err error, pos int, field string, want, got int64) error {
	if pos >= 0 {
		field = fmt.Sprintf("position %d: %s", pos, field)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.New(errs.ErrCodeTruncatedStream, "%s: want %d bytes, got %d", field, want, got)
	}
	return errs.Wrap(errs.ErrCodeIO, err, "read %s", field)
}
