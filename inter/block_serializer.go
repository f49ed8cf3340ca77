package inter

import (
	"crypto/sha256"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-landchain/utils/cser"
)

// BlockEncodingVersion is the leading byte of every encoded block.
const BlockEncodingVersion uint8 = 1

// BlockMarshalCSER writes b in canonical field order:
//
//	u8 version | u64 height | u64 time | [32] prevHash | [32] merkleRoot |
//	str validator | u32 txCount | txCount x (u32 len | tx encoding)
func BlockMarshalCSER(w *cser.Writer, b *Block) error {
	w.U8(BlockEncodingVersion)
	w.U64(uint64(b.Height))
	w.U64(uint64(b.Time))
	w.FixedBytes(b.PrevHash.Bytes())
	w.FixedBytes(b.MerkleRoot.Bytes())
	w.String(b.Validator)
	w.U32(uint32(len(b.Transactions)))
	for i := range b.Transactions {
		raw, err := b.Transactions[i].MarshalBinary()
		if err != nil {
			return err
		}
		w.SliceBytes(raw)
	}
	return nil
}

// BlockUnmarshalCSER is the inverse of BlockMarshalCSER.
func BlockUnmarshalCSER(r *cser.Reader) (*Block, error) {
	if v := r.U8(); v != BlockEncodingVersion {
		return nil, fmt.Errorf("%w: block v%d", ErrUnknownVersion, v)
	}
	b := &Block{}
	b.Height = idx.Block(r.U64())
	b.Time = Timestamp(r.U64())
	r.FixedBytes(b.PrevHash[:])
	r.FixedBytes(b.MerkleRoot[:])
	b.Validator = r.String()

	count := r.U32()
	// every tx takes at least its 4-byte length prefix
	if int(count) > r.BytesR.Remaining()/4 {
		return nil, cser.ErrMalformedEncoding
	}
	if count > 0 {
		b.Transactions = make([]Transaction, count)
	}
	for i := range b.Transactions {
		if err := b.Transactions[i].UnmarshalBinary(r.SliceBytes()); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// MarshalBinary returns the canonical encoding of b.
func (b *Block) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		return BlockMarshalCSER(w, b)
	})
}

// UnmarshalBlock decodes a canonical block encoding.
func UnmarshalBlock(raw []byte) (*Block, error) {
	var b *Block
	err := cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) (err error) {
		b, err = BlockUnmarshalCSER(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func sha256Of(raw []byte) hash.Hash {
	return hash.Hash(sha256.Sum256(raw))
}
