package node

import (
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/ledger"
)

func newNode(id string) *Node {
	log, _ := logtest.NewNullLogger()
	return New(id, func() inter.Timestamp { return 1 }, log)
}

func TestSubmitTransaction(t *testing.T) {
	n := newNode("alice")
	tx := inter.NewReceiveCoins("alice", 200)

	require.True(t, n.SubmitTransaction(tx))
	require.False(t, n.SubmitTransaction(tx), "duplicate")
	require.False(t, n.SubmitTransaction(inter.Transaction{ID: "bad"}), "malformed")
	require.Equal(t, 1, n.PoolSize())
	require.Equal(t, []inter.Transaction{tx}, n.Pool())

	t.Run("committed transactions are not pooled again", func(t *testing.T) {
		res, err := n.TryMint([]string{"alice"})
		require.NoError(t, err)
		require.NotNil(t, res.Block)
		require.NoError(t, n.ApplyBlock(res.Block))

		require.Equal(t, 0, n.PoolSize())
		require.False(t, n.SubmitTransaction(tx))
	})
}

func TestTryMintSinglePeer(t *testing.T) {
	n := newNode("alice")
	n.SubmitTransaction(inter.NewReceiveCoins("alice", 200))
	n.SubmitTransaction(inter.NewLandDeclare("alice", "A"))
	n.SubmitTransaction(inter.NewStakeIncrease("alice", 20))

	res, err := n.TryMint([]string{"alice"})
	require.NoError(t, err)
	require.True(t, res.Elected("alice"))
	require.NotNil(t, res.Block)
	require.Len(t, res.Block.Transactions, 2)
	require.Len(t, res.Rejected, 1, "stake of uncommitted coins")

	// TryMint leaves the pool for ApplyBlock to clear
	require.Equal(t, 3, n.PoolSize())
	require.NoError(t, n.ApplyBlock(res.Block))
	require.Equal(t, 0, n.PoolSize())
	require.Equal(t, 2, n.ChainLength())
	require.Equal(t, map[string]string{"A": "alice"}, n.GetLandOwners())
	require.Equal(t, map[string]int64{"alice": 200}, n.GetBalances())
}

func TestTryMintNotElected(t *testing.T) {
	peers := []string{"alice", "bob"}
	alice, bob := newNode("alice"), newNode("bob")

	ra, err := alice.TryMint(peers)
	require.NoError(t, err)
	rb, err := bob.TryMint(peers)
	require.NoError(t, err)

	require.Equal(t, ra.Validator, rb.Validator, "both peers elect the same validator")
	require.Nil(t, ra.Block)
	require.Nil(t, rb.Block)
}

func TestApplyBlock(t *testing.T) {
	t.Run("nil clears pool", func(t *testing.T) {
		n := newNode("alice")
		n.SubmitTransaction(inter.NewReceiveCoins("alice", 1))
		require.NoError(t, n.ApplyBlock(nil))
		require.Equal(t, 0, n.PoolSize())
		require.Equal(t, 1, n.ChainLength())
	})

	t.Run("bad linkage clears pool and keeps chain", func(t *testing.T) {
		n := newNode("alice")
		n.SubmitTransaction(inter.NewReceiveCoins("alice", 1))
		bad, err := inter.CreateBlock(1, inter.Genesis(), "bob", []inter.Transaction{inter.NewReceiveCoins("bob", 1)}, 0)
		require.NoError(t, err)
		bad.PrevHash[0] ^= 0xff

		require.ErrorIs(t, n.ApplyBlock(bad), ledger.ErrInvalidLinkage)
		require.Equal(t, 0, n.PoolSize())
		require.Equal(t, 1, n.ChainLength())
	})
}

func TestQueries(t *testing.T) {
	n := newNode("alice")
	declare := inter.NewLandDeclare("alice", "A")
	n.SubmitTransaction(inter.NewReceiveCoins("alice", 50))
	n.SubmitTransaction(declare)
	res, err := n.TryMint([]string{"alice"})
	require.NoError(t, err)
	require.NoError(t, n.ApplyBlock(res.Block))

	got, err := n.GetTransaction(declare.ID)
	require.NoError(t, err)
	require.Equal(t, declare, got)

	b, err := n.GetBlock(1)
	require.NoError(t, err)
	require.Equal(t, n.GetLastBlock(), b)
	_, err = n.GetBlock(9)
	require.ErrorIs(t, err, ledger.ErrOutOfRange)

	require.Equal(t, []inter.Transaction{declare}, n.GetLandHistory("A"))
	owner, err := n.GetLandOwner("A")
	require.NoError(t, err)
	require.Equal(t, "alice", owner)
	require.Equal(t, map[string]int64{"alice": 0, "bob": 0}, n.GetStakes([]string{"alice", "bob"}))
	require.Equal(t, map[string]uint64{"alice": 0, "bob": 2}, n.GetAges([]string{"alice", "bob"}))
}
