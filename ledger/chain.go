// Package ledger keeps a peer's copy of the chain.
//
// The chain is append-only and starts at the genesis sentinel. Every
// projection it serves (land owners, balances, stakes, ages) is computed by
// replaying the whole chain from genesis, so answers are always consistent
// with the blocks actually stored.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-landchain/inter"
)

var (
	ErrInvalidLinkage = errors.New("invalid linkage: previous hash does not match chain tip")
	ErrInvalidHeight  = errors.New("invalid height")
	ErrInvalidGenesis = errors.New("invalid genesis block")
	ErrOutOfRange     = errors.New("block height out of range")
	ErrTxNotFound     = errors.New("transaction not found")
	ErrUnknownLand    = errors.New("land not registered")
)

// Chain is a thread-safe append-only sequence of blocks.
type Chain struct {
	mu      sync.RWMutex
	blocks  []*inter.Block
	tipHash hash.Hash
}

// New returns a chain holding only the genesis block.
func New() *Chain {
	g := inter.Genesis()
	return &Chain{
		blocks:  []*inter.Block{g},
		tipHash: g.Hash(),
	}
}

// FromBlocks rebuilds a chain from plain blocks, checking the genesis and
// every link.
func FromBlocks(blocks []*inter.Block) (*Chain, error) {
	if len(blocks) == 0 || len(blocks[0].Transactions) != 0 || blocks[0].Hash() != inter.Genesis().Hash() {
		return nil, ErrInvalidGenesis
	}
	c := New()
	for _, b := range blocks[1:] {
		if err := c.Append(b); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Append adds b to the tip. It is rejected, leaving the chain untouched, if
// b does not link to the current tip, skips a height, holds a malformed
// transaction or carries a Merkle root that does not match its transactions.
func (c *Chain) Append(b *inter.Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	last := c.blocks[len(c.blocks)-1]
	if b.PrevHash != c.tipHash {
		return fmt.Errorf("%w: block %d expects %s, tip is %s", ErrInvalidLinkage, b.Height, b.PrevHash.Hex(), c.tipHash.Hex())
	}
	if b.Height != last.Height+1 {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidHeight, last.Height+1, b.Height)
	}
	if err := b.VerifyMerkleRoot(); err != nil {
		return err
	}

	cp := b.Copy()
	c.blocks = append(c.blocks, cp)
	c.tipHash = cp.Hash()
	return nil
}

// Len is the number of blocks, genesis included.
func (c *Chain) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// BlockAt returns a copy of the block at height h.
func (c *Chain) BlockAt(h idx.Block) (*inter.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if uint64(h) >= uint64(len(c.blocks)) {
		return nil, fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, h, len(c.blocks))
	}
	return c.blocks[h].Copy(), nil
}

// Last returns a copy of the tip.
func (c *Chain) Last() *inter.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[len(c.blocks)-1].Copy()
}

// TipHash is the digest of the last block. It seeds the next election.
func (c *Chain) TipHash() hash.Hash {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tipHash
}

// Blocks returns copies of every block in chain order.
func (c *Chain) Blocks() []*inter.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]*inter.Block, len(c.blocks))
	for i, b := range c.blocks {
		res[i] = b.Copy()
	}
	return res
}

// Verify re-checks the genesis, every link and every Merkle root.
func (c *Chain) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	prev := c.blocks[0]
	if prev.Hash() != inter.Genesis().Hash() {
		return ErrInvalidGenesis
	}
	for _, b := range c.blocks[1:] {
		if b.Height != prev.Height+1 {
			return fmt.Errorf("block %d: %w", b.Height, ErrInvalidHeight)
		}
		if b.PrevHash != prev.Hash() {
			return fmt.Errorf("block %d: %w", b.Height, ErrInvalidLinkage)
		}
		if err := b.VerifyMerkleRoot(); err != nil {
			return fmt.Errorf("block %d: %w", b.Height, err)
		}
		prev = b
	}
	return nil
}
