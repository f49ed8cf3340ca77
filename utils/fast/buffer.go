// Package fast holds the byte buffers under the canonical codec: a Writer
// that only appends and a Reader that only moves forward.
//
// Neither type is safe for concurrent use. A Reader asked for more bytes than
// it holds panics with ErrShortBuffer; utils/cser recovers that panic and
// reports a malformed encoding.
package fast

import "errors"

// ErrShortBuffer is the panic value of a read past the end of a Reader.
var ErrShortBuffer = errors.New("fast: read past end of buffer")

// Writer accumulates bytes by appending to a slice.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer with room for sizeHint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) Write(v []byte) {
	w.buf = append(w.buf, v...)
}

// Bytes returns the written content. It aliases the Writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes a byte slice from front to back. The unread part is kept
// as the slice itself, so consuming is a reslice.
type Reader struct {
	rest []byte
}

func NewReader(b []byte) *Reader {
	return &Reader{rest: b}
}

// Next consumes and returns the next n bytes. The result is capped at n, so
// appending to it never overwrites the unread part.
func (r *Reader) Next(n int) []byte {
	if n < 0 || n > len(r.rest) {
		panic(ErrShortBuffer)
	}
	res := r.rest[:n:n]
	r.rest = r.rest[n:]
	return res
}

func (r *Reader) ReadByte() byte {
	if len(r.rest) == 0 {
		panic(ErrShortBuffer)
	}
	b := r.rest[0]
	r.rest = r.rest[1:]
	return b
}

// Remaining is the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.rest)
}

func (r *Reader) Empty() bool {
	return len(r.rest) == 0
}
