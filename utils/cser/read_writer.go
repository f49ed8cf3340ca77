/*
Primitive encoders for the canonical codec.

Every value has exactly one encoding:
  - integers are fixed-width big-endian (u8, u32, u64, i64 as two's complement)
  - strings and byte slices are a u32 length followed by the raw bytes
  - fixed-size arrays (hashes) are written as-is, no length

Readers panic on any violation; UnmarshalBinaryAdapter turns the panic into an
error so callers never see it.
*/
package cser

import (
	"errors"
	"unicode/utf8"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"

	"github.com/rony4d/go-landchain/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// MaxAlloc caps a single decoded string or byte slice.
const MaxAlloc = 100 * 1024

// Writer appends canonical primitives to a byte stream.
type Writer struct {
	BytesW *fast.Writer
}

// Reader consumes canonical primitives from a byte stream.
type Reader struct {
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BytesW: fast.NewWriter(256),
	}
}

func NewReader(raw []byte) *Reader {
	return &Reader{
		BytesR: fast.NewReader(raw),
	}
}

func (w *Writer) U8(v uint8) {
	w.BytesW.WriteByte(v)
}

func (r *Reader) U8() uint8 {
	return r.BytesR.ReadByte()
}

func (w *Writer) U32(v uint32) {
	w.BytesW.Write(bigendian.Uint32ToBytes(v))
}

func (r *Reader) U32() uint32 {
	return bigendian.BytesToUint32(r.BytesR.Next(4))
}

func (w *Writer) U64(v uint64) {
	w.BytesW.Write(bigendian.Uint64ToBytes(v))
}

func (r *Reader) U64() uint64 {
	return bigendian.BytesToUint64(r.BytesR.Next(8))
}

// I64 writes v as its two's complement bit pattern.
func (w *Writer) I64(v int64) {
	w.U64(uint64(v))
}

func (r *Reader) I64() int64 {
	return int64(r.U64())
}

// FixedBytes writes v without a length prefix. The reader must know the size.
func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

// FixedBytes fills res completely.
func (r *Reader) FixedBytes(res []byte) {
	copy(res, r.BytesR.Next(len(res)))
}

// SliceBytes writes a u32 length followed by v.
func (w *Writer) SliceBytes(v []byte) {
	w.U32(uint32(len(v)))
	w.BytesW.Write(v)
}

// SliceBytes returns a copy, so the result never aliases the input buffer.
func (r *Reader) SliceBytes() []byte {
	size := r.length()
	res := make([]byte, size)
	copy(res, r.BytesR.Next(size))
	return res
}

// String writes a u32 byte length followed by the UTF-8 bytes of v.
func (w *Writer) String(v string) {
	w.SliceBytes([]byte(v))
}

// String rejects invalid UTF-8.
func (r *Reader) String() string {
	size := r.length()
	raw := r.BytesR.Next(size)
	if !utf8.Valid(raw) {
		panic(ErrNonCanonicalEncoding)
	}
	return string(raw)
}

// length reads a u32 length prefix and checks it against the allocation cap
// and the bytes actually left in the stream.
func (r *Reader) length() int {
	size := r.U32()
	if size > MaxAlloc {
		panic(ErrTooLargeAlloc)
	}
	if int(size) > r.BytesR.Remaining() {
		panic(ErrMalformedEncoding)
	}
	return int(size)
}
