// Package genesis holds the fixed values of the sentinel block every chain
// starts from.
//
// All peers must produce a byte-identical genesis: its digest seeds the first
// validator election, so any difference (a wall-clock timestamp, a different
// validator label) would make peers disagree about who mints block 1.
package genesis

import (
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
)

const (
	// Validator is the validator label carried by the genesis block. It is not
	// a peer and never takes part in elections.
	Validator = "genesis"

	// Height of the genesis block.
	Height idx.Block = 0

	// Time is the genesis timestamp in unix nanoseconds.
	Time uint64 = 0
)

var (
	// PrevHash is the previous-hash sentinel of the genesis block.
	PrevHash = hash.Hash{}

	// MerkleRoot is the Merkle root sentinel of the genesis block.
	MerkleRoot = hash.Hash{}
)
