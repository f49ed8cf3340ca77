package cser

import (
	"errors"

	"github.com/rony4d/go-landchain/utils/fast"
)

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and returns the
// produced bytes. It lets types implement encoding.BinaryMarshaler in terms of
// the canonical primitives.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return w.BytesW.Bytes(), nil
}

// UnmarshalBinaryAdapter runs unmarshalCser over raw and enforces that the
// whole input was consumed.
//
// Reader primitives panic instead of returning errors. A panic carrying one of
// this package's errors is returned as that error; a short read, or any other
// panic, becomes ErrMalformedEncoding.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(reader *Reader) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredErr(r)
		}
	}()

	if len(raw) == 0 {
		return ErrMalformedEncoding
	}

	reader := NewReader(raw)
	if err := unmarshalCser(reader); err != nil {
		return err
	}

	// trailing bytes would give one value two encodings
	if !reader.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func recoveredErr(r interface{}) error {
	if e, ok := r.(error); ok {
		if errors.Is(e, fast.ErrShortBuffer) {
			return ErrMalformedEncoding
		}
		for _, known := range []error{ErrNonCanonicalEncoding, ErrMalformedEncoding, ErrTooLargeAlloc} {
			if errors.Is(e, known) {
				return known
			}
		}
	}
	return ErrMalformedEncoding
}
