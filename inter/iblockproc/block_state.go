// Package iblockproc holds the state decided by a sequence of blocks: who owns
// which land, every user's balance and stake, and when each validator last
// minted.
//
// BlockState is a pure fold over the chain. Replaying every block from genesis
// through ApplyBlock yields the projections the ledger serves, and the minting
// engine works on a Copy of it while it validates a pool speculatively.
package iblockproc

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-landchain/inter"
)

// BlockState is the state after applying the blocks up to LastBlock.
type BlockState struct {
	// LastBlock is the height of the last applied block.
	LastBlock idx.Block

	LandOwners map[string]string
	Balances   map[string]int64
	Stakes     map[string]int64

	// LastValidated maps a validator to the height of the last block it
	// minted. Peers that never minted are absent.
	LastValidated map[string]idx.Block
}

// NewBlockState returns the state decided by the genesis block alone.
func NewBlockState() *BlockState {
	return &BlockState{
		LandOwners:    map[string]string{},
		Balances:      map[string]int64{},
		Stakes:        map[string]int64{},
		LastValidated: map[string]idx.Block{},
	}
}

// ApplyBlock folds a block into the state. Blocks are assumed valid: the
// ledger only applies blocks whose transactions were accepted by the minting
// engine.
func (s *BlockState) ApplyBlock(b *inter.Block) {
	if b.IsGenesis() {
		return
	}
	for i := range b.Transactions {
		s.ApplyTransaction(&b.Transactions[i])
	}
	s.LastBlock = b.Height
	s.LastValidated[b.Validator] = b.Height
}

// ApplyTransaction applies a single transaction's effect.
func (s *BlockState) ApplyTransaction(tx *inter.Transaction) {
	switch tx.Kind {
	case inter.ReceiveCoins:
		s.Balances[tx.Output.UserID] += tx.Input.Amount
	case inter.LandDeclare, inter.LandTransfer:
		s.LandOwners[tx.Input.LandID] = tx.Output.UserID
	case inter.StakeIncrease:
		s.Balances[tx.Input.UserID] -= tx.Input.Amount
		s.Stakes[tx.Input.UserID] += tx.Input.Amount
	}
}

// ChainLength is the number of blocks applied, genesis included.
func (s *BlockState) ChainLength() uint64 {
	return uint64(s.LastBlock) + 1
}

// Age is the number of blocks minted since peer last minted. A peer that never
// minted has the chain length as its age.
func (s *BlockState) Age(peer string) uint64 {
	h, ok := s.LastValidated[peer]
	if !ok {
		return s.ChainLength()
	}
	return uint64(s.LastBlock - h)
}

// Ages returns the age of every peer.
func (s *BlockState) Ages(peers []string) map[string]uint64 {
	res := make(map[string]uint64, len(peers))
	for _, p := range peers {
		res[p] = s.Age(p)
	}
	return res
}

// StakesOf returns the stake of every peer plus every user that has staked.
// Peers that never staked appear with 0.
func (s *BlockState) StakesOf(peers []string) map[string]int64 {
	res := make(map[string]int64, len(peers)+len(s.Stakes))
	for _, p := range peers {
		res[p] = 0
	}
	for u, v := range s.Stakes {
		res[u] = v
	}
	return res
}

// Copy returns a deep copy of the state.
func (s *BlockState) Copy() *BlockState {
	cp := &BlockState{
		LastBlock:     s.LastBlock,
		LandOwners:    make(map[string]string, len(s.LandOwners)),
		Balances:      make(map[string]int64, len(s.Balances)),
		Stakes:        make(map[string]int64, len(s.Stakes)),
		LastValidated: make(map[string]idx.Block, len(s.LastValidated)),
	}
	for k, v := range s.LandOwners {
		cp.LandOwners[k] = v
	}
	for k, v := range s.Balances {
		cp.Balances[k] = v
	}
	for k, v := range s.Stakes {
		cp.Stakes[k] = v
	}
	for k, v := range s.LastValidated {
		cp.LastValidated[k] = v
	}
	return cp
}
