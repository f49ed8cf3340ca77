package inter

import (
	"crypto/sha256"
	"fmt"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/stretchr/testify/require"
)

func pair(a, b hash.Hash) hash.Hash {
	return hash.Hash(sha256.Sum256(append(a.Bytes(), b.Bytes()...)))
}

func txs(n int) []Transaction {
	res := make([]Transaction, n)
	for i := range res {
		res[i] = fixedTx(fmt.Sprintf("tx-%d", i), ReceiveCoins, "alice", "", int64(i+1), "alice")
	}
	return res
}

func TestMerkleRoot(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		require.Equal(t, hash.Hash{}, MerkleRoot(nil))
	})

	t.Run("single leaf", func(t *testing.T) {
		list := txs(1)
		require.Equal(t, list[0].Hash(), MerkleRoot(list))
	})

	t.Run("two leaves", func(t *testing.T) {
		list := txs(2)
		require.Equal(t, pair(list[0].Hash(), list[1].Hash()), MerkleRoot(list))
	})

	t.Run("odd count duplicates last", func(t *testing.T) {
		list := txs(3)
		h0, h1, h2 := list[0].Hash(), list[1].Hash(), list[2].Hash()
		exp := pair(pair(h0, h1), pair(h2, h2))
		require.Equal(t, exp, MerkleRoot(list))
	})

	t.Run("five leaves", func(t *testing.T) {
		list := txs(5)
		h := make([]hash.Hash, 5)
		for i := range list {
			h[i] = list[i].Hash()
		}
		l1 := []hash.Hash{pair(h[0], h[1]), pair(h[2], h[3]), pair(h[4], h[4])}
		l2 := []hash.Hash{pair(l1[0], l1[1]), pair(l1[2], l1[2])}
		require.Equal(t, pair(l2[0], l2[1]), MerkleRoot(list))
	})

	t.Run("order matters", func(t *testing.T) {
		list := txs(2)
		swapped := []Transaction{list[1], list[0]}
		require.NotEqual(t, MerkleRoot(list), MerkleRoot(swapped))
	})

	t.Run("any field change alters root", func(t *testing.T) {
		list := txs(4)
		root := MerkleRoot(list)
		list[2].Input.Amount++
		require.NotEqual(t, root, MerkleRoot(list))
	})

	t.Run("input slice untouched", func(t *testing.T) {
		list := txs(3)
		cp := append([]Transaction(nil), list...)
		_ = MerkleRoot(list)
		require.Equal(t, cp, list)
	})
}
