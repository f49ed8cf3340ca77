package inter

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/go-landchain/utils/cser"
)

// TxEncodingVersion is the leading byte of every encoded transaction.
const TxEncodingVersion uint8 = 1

var ErrUnknownVersion = errors.New("unknown encoding version")

// TransactionMarshalCSER writes tx in canonical field order:
//
//	u8 version | str id | u8 kind | u64 time |
//	str input.user | str input.land | i64 input.amount | str output.user
func TransactionMarshalCSER(w *cser.Writer, tx *Transaction) error {
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownTxKind, tx.Kind)
	}
	w.U8(TxEncodingVersion)
	w.String(tx.ID)
	w.U8(uint8(tx.Kind))
	w.U64(uint64(tx.Time))
	w.String(tx.Input.UserID)
	w.String(tx.Input.LandID)
	w.I64(tx.Input.Amount)
	w.String(tx.Output.UserID)
	return nil
}

// TransactionUnmarshalCSER is the inverse of TransactionMarshalCSER.
func TransactionUnmarshalCSER(r *cser.Reader) (Transaction, error) {
	var tx Transaction
	if v := r.U8(); v != TxEncodingVersion {
		return tx, fmt.Errorf("%w: tx v%d", ErrUnknownVersion, v)
	}
	tx.ID = r.String()
	tx.Kind = TxKind(r.U8())
	if !tx.Kind.Valid() {
		return tx, fmt.Errorf("%w: %d", ErrUnknownTxKind, tx.Kind)
	}
	tx.Time = Timestamp(r.U64())
	tx.Input.UserID = r.String()
	tx.Input.LandID = r.String()
	tx.Input.Amount = r.I64()
	tx.Output.UserID = r.String()
	return tx, nil
}

// MarshalBinary returns the canonical encoding of tx.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(func(w *cser.Writer) error {
		return TransactionMarshalCSER(w, tx)
	})
}

// UnmarshalBinary decodes a canonical encoding, rejecting trailing bytes.
func (tx *Transaction) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, func(r *cser.Reader) (err error) {
		*tx, err = TransactionUnmarshalCSER(r)
		return err
	})
}

// Hash is the SHA-256 digest of the canonical encoding. It is the Merkle leaf
// of the transaction.
func (tx *Transaction) Hash() hash.Hash {
	raw, err := tx.MarshalBinary()
	if err != nil {
		// only an invalid kind fails to encode, and such a tx never reaches a block
		panic(fmt.Sprintf("tx %s: %v", tx.ID, err))
	}
	return hash.Hash(sha256.Sum256(raw))
}
