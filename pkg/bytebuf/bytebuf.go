// Package bytebuf implements length-prefixed byte buffers.
//
// Lengths are encoded as Bitcoin CompactSize integers: values below 0xfd take
// one byte, larger values are a 0xfd/0xfe/0xff marker followed by a
// little-endian uint16/uint32/uint64.
package bytebuf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/wire"
)

// Reader errors.
var (
	ErrInsufficientBytes = errors.New("insufficient bytes")
	ErrBlockTooLarge     = errors.New("block too large")
	ErrMalformedVarInt   = errors.New("malformed compact int")
)

// varIntProtocol is passed to the btcd codec, which ignores it for varints.
const varIntProtocol = 0

// Writer accumulates bytes in memory. Writes never fail.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter creates a writer with capacity bytes preallocated.
func NewWriter(capacity int) *Writer {
	w := &Writer{}
	w.buf.Grow(capacity)
	return w
}

// PutByte appends a single byte.
func (w *Writer) PutByte(b byte) {
	w.buf.WriteByte(b)
}

// PutCompactInt appends v as a CompactSize integer.
func (w *Writer) PutCompactInt(v uint64) {
	// bytes.Buffer writes cannot fail.
	_ = wire.WriteVarInt(&w.buf, varIntProtocol, v)
}

// PutBytes appends b verbatim.
func (w *Writer) PutBytes(b []byte) {
	w.buf.Write(b)
}

// PutVarBytes appends len(b) as a CompactSize integer followed by b.
func (w *Writer) PutVarBytes(b []byte) {
	w.PutCompactInt(uint64(len(b)))
	w.PutBytes(b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns a copy of the written bytes.
func (w *Writer) Bytes() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out
}

// Reader consumes a byte slice from the front.
type Reader struct {
	r *bytes.Reader
}

// NewReader creates a reader over data. The slice is not copied.
func NewReader(data []byte) *Reader {
	return &Reader{r: bytes.NewReader(data)}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return r.r.Len()
}

// Byte reads one byte.
func (r *Reader) Byte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, ErrInsufficientBytes
	}
	return b, nil
}

// CompactInt reads a CompactSize integer.
func (r *Reader) CompactInt() (uint64, error) {
	v, err := wire.ReadVarInt(r.r, varIntProtocol)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, ErrInsufficientBytes
		}
		return 0, fmt.Errorf("%w: %v", ErrMalformedVarInt, err)
	}
	return v, nil
}

// ReadBytes reads exactly n bytes into a fresh slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.r.Len() {
		return nil, ErrInsufficientBytes
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r.r, out); err != nil {
		return nil, ErrInsufficientBytes
	}
	return out, nil
}

// VarBytes reads a CompactSize length followed by that many bytes.
// Lengths above max fail with ErrBlockTooLarge before any bytes are read.
func (r *Reader) VarBytes(max int) ([]byte, error) {
	size, err := r.CompactInt()
	if err != nil {
		return nil, err
	}
	if size > uint64(max) {
		return nil, fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, size, max)
	}
	return r.ReadBytes(int(size))
}
