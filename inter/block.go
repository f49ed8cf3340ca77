package inter

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/go-landchain/landchain/genesis"
)

var (
	ErrHeightMismatch = errors.New("block height is not last height + 1")
	ErrEmptyBlock     = errors.New("block has no transactions")
	ErrMerkleMismatch = errors.New("merkle root does not match transactions")
)

// Block is a batch of transactions linked to its predecessor by PrevHash.
//
// Blocks are immutable once created. Holders that need to hand a block to
// untrusted code should pass Copy().
type Block struct {
	Height       idx.Block
	Time         Timestamp
	PrevHash     hash.Hash
	MerkleRoot   hash.Hash
	Validator    string
	Transactions []Transaction
}

// Genesis returns the sentinel block every chain starts from. Every call
// returns an identical block with an identical hash.
func Genesis() *Block {
	return &Block{
		Height:     genesis.Height,
		Time:       Timestamp(genesis.Time),
		PrevHash:   genesis.PrevHash,
		MerkleRoot: genesis.MerkleRoot,
		Validator:  genesis.Validator,
	}
}

// CreateBlock builds the block following last. The transactions are copied.
func CreateBlock(height idx.Block, last *Block, validator string, txs []Transaction, time Timestamp) (*Block, error) {
	if height != last.Height+1 {
		return nil, fmt.Errorf("%w: got %d, last %d", ErrHeightMismatch, height, last.Height)
	}
	if len(txs) == 0 {
		return nil, ErrEmptyBlock
	}
	b := &Block{
		Height:       height,
		Time:         time,
		PrevHash:     last.Hash(),
		Validator:    validator,
		Transactions: append([]Transaction(nil), txs...),
	}
	b.MerkleRoot = MerkleRoot(b.Transactions)
	return b, nil
}

// Hash is the SHA-256 digest of the canonical block encoding. It links the
// next block and seeds the validator election that follows this block.
func (b *Block) Hash() hash.Hash {
	raw, err := b.MarshalBinary()
	if err != nil {
		// CONSENSUS CRITICAL: a block that cannot be encoded has no identity
		panic(fmt.Sprintf("block %d: %v", b.Height, err))
	}
	return sha256Of(raw)
}

// VerifyMerkleRoot recomputes the Merkle root of the block's transactions.
// Malformed transactions are reported before anything is hashed.
func (b *Block) VerifyMerkleRoot() error {
	if b.Height == genesis.Height {
		if b.MerkleRoot != genesis.MerkleRoot {
			return ErrMerkleMismatch
		}
		return nil
	}
	for i := range b.Transactions {
		if err := b.Transactions[i].Validate(); err != nil {
			return fmt.Errorf("block %d tx %d: %w", b.Height, i, err)
		}
	}
	if got := MerkleRoot(b.Transactions); got != b.MerkleRoot {
		return fmt.Errorf("%w: block %d has %s, computed %s", ErrMerkleMismatch, b.Height, b.MerkleRoot.Hex(), got.Hex())
	}
	return nil
}

// Copy returns a deep copy.
func (b *Block) Copy() *Block {
	cp := *b
	cp.Transactions = append([]Transaction(nil), b.Transactions...)
	return &cp
}

// IsGenesis reports whether b is the genesis sentinel.
func (b *Block) IsGenesis() bool {
	return b.Height == genesis.Height
}

type blockJSON struct {
	Height       hexutil.Uint64 `json:"height"`
	Time         Timestamp      `json:"timestamp"`
	Hash         hexutil.Bytes  `json:"hash"`
	PrevHash     hexutil.Bytes  `json:"previousHash"`
	MerkleRoot   hexutil.Bytes  `json:"merkleRoot"`
	Validator    string         `json:"validator"`
	Transactions []string       `json:"transactions"`
}

// MarshalJSON renders the block for humans and logs. It is not the
// canonical encoding.
func (b *Block) MarshalJSON() ([]byte, error) {
	txs := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = tx.String()
	}
	h := b.Hash()
	return json.Marshal(blockJSON{
		Height:       hexutil.Uint64(b.Height),
		Time:         b.Time,
		Hash:         h.Bytes(),
		PrevHash:     b.PrevHash.Bytes(),
		MerkleRoot:   b.MerkleRoot.Bytes(),
		Validator:    b.Validator,
		Transactions: txs,
	})
}

func (b *Block) String() string {
	return fmt.Sprintf("block %d by %s (%d txs, hash %s)", b.Height, b.Validator, len(b.Transactions), b.Hash().Hex())
}
