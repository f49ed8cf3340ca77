package inter

import (
	"crypto/sha256"

	"github.com/Fantom-foundation/lachesis-base/hash"
)

// MerkleRoot commits to txs in the given order.
//
// Leaves are the transaction digests. A level with an odd number of nodes
// duplicates its last node; each parent is sha256(left || right) over the raw
// 32-byte child digests. A single transaction's root is its own digest. An
// empty list yields the zero hash, which no minted block carries.
func MerkleRoot(txs []Transaction) hash.Hash {
	if len(txs) == 0 {
		return hash.Hash{}
	}
	level := make([]hash.Hash, len(txs))
	for i := range txs {
		level[i] = txs[i].Hash()
	}
	return merkleFold(level)
}

func merkleFold(level []hash.Hash) hash.Hash {
	for len(level) > 1 {
		if len(level)%2 == 1 {
			level = append(level, level[len(level)-1])
		}
		next := make([]hash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, merklePair(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}

const digestSize = len(hash.Hash{})

func merklePair(a, b hash.Hash) hash.Hash {
	var buf [2 * digestSize]byte
	copy(buf[:digestSize], a.Bytes())
	copy(buf[digestSize:], b.Bytes())
	return hash.Hash(sha256.Sum256(buf[:]))
}
