package network

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-landchain/emitter"
	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/landchain"
	"github.com/rony4d/go-landchain/ledger"
)

func newNetwork(t *testing.T, rules landchain.Rules) *Network {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	nw, err := New(Config{
		Rules:      rules,
		Log:        log,
		Registerer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return nw
}

// requireConsistent checks that every peer holds the same chain and pool.
func requireConsistent(t *testing.T, nw *Network) {
	t.Helper()
	peers := nw.Peers()
	first, err := nw.Node(peers[0])
	require.NoError(t, err)
	for _, id := range peers[1:] {
		n, err := nw.Node(id)
		require.NoError(t, err)
		require.Equal(t, first.GetLastBlock().Hash(), n.GetLastBlock().Hash(), id)
		require.Equal(t, first.Pool(), n.Pool(), id)
	}
}

func TestScenario(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())

	res, err := nw.Register("alice", 200)
	require.NoError(t, err)
	require.Nil(t, res)
	res, err = nw.Register("bob", 150)
	require.NoError(t, err)
	require.Nil(t, res)

	// third transaction reaches the threshold
	res, err = nw.DeclareLand("alice", "A")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Block)
	require.Len(t, res.Block.Transactions, 3)
	require.Contains(t, []string{"alice", "bob"}, res.Validator)
	requireConsistent(t, nw)

	_, err = nw.Stake("alice", 20)
	require.NoError(t, err)
	_, err = nw.Stake("bob", 100)
	require.NoError(t, err)
	res, err = nw.Register("charlie", 0)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Block.Transactions, 3)
	requireConsistent(t, nw)

	_, err = nw.Stake("charlie", 100)
	require.NoError(t, err)
	_, err = nw.Buy("bob", "A")
	require.NoError(t, err)
	res, err = nw.DeclareLand("alice", "B")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Len(t, res.Block.Transactions, 2)
	require.Len(t, res.Rejected, 1)
	assert.ErrorIs(t, res.Rejected[0].Reason, emitter.ErrInsufficientBalance)
	requireConsistent(t, nw)

	n, err := nw.Node("charlie")
	require.NoError(t, err)
	peers := nw.Peers()
	require.Equal(t, []string{"alice", "bob", "charlie"}, peers)
	require.Equal(t, 4, n.ChainLength())
	require.Equal(t, map[string]string{"A": "bob", "B": "alice"}, n.GetLandOwners())
	require.Equal(t, map[string]int64{"alice": 180, "bob": 50, "charlie": 0}, n.GetBalances())
	require.Equal(t, map[string]int64{"alice": 20, "bob": 100, "charlie": 0}, n.GetStakes(peers))

	history := n.GetLandHistory("A")
	require.Len(t, history, 2)
	require.Equal(t, inter.LandDeclare, history[0].Kind)
	require.Equal(t, inter.LandTransfer, history[1].Kind)
	require.Equal(t, "bob", history[1].Output.UserID)

	// every peer derives the same ages and the same next validator
	alice, err := nw.Node("alice")
	require.NoError(t, err)
	require.Equal(t, alice.GetAges(peers), n.GetAges(peers))
	v1, err := alice.Elect(peers)
	require.NoError(t, err)
	v2, err := n.Elect(peers)
	require.NoError(t, err)
	require.Equal(t, v1, v2)

	require.Equal(t, float64(3), testutil.ToFloat64(nw.metrics.blocksMinted))
	require.Equal(t, float64(1), testutil.ToFloat64(nw.metrics.rejected.WithLabelValues("insufficient_balance")))
	require.Equal(t, float64(3), testutil.ToFloat64(nw.metrics.chainHeight))
}

func TestEmptyRound(t *testing.T) {
	nw := newNetwork(t, landchain.FakeNetRules())
	res, err := nw.Register("alice", 10)
	require.NoError(t, err)
	require.NotNil(t, res.Block)

	res, err = nw.Stake("alice", 50)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.Nil(t, res.Block)
	require.Len(t, res.Rejected, 1)

	n, err := nw.Node("alice")
	require.NoError(t, err)
	require.Equal(t, 0, n.PoolSize(), "pool cleared even without a block")
	require.Equal(t, 2, n.ChainLength())
	require.Equal(t, float64(1), testutil.ToFloat64(nw.metrics.emptyRounds))
}

func TestRegisterErrors(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())
	_, err := nw.Register("alice", 1)
	require.NoError(t, err)

	_, err = nw.Register("alice", 1)
	require.ErrorIs(t, err, ErrPeerExists)
	_, err = nw.Register("bob", -1)
	require.ErrorIs(t, err, ErrNegativeBalance)
	_, err = nw.Node("bob")
	require.ErrorIs(t, err, ErrUnknownPeer)
}

func TestRejectedRegistrationChangesNothing(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())
	_, err := nw.Register("alice", 10)
	require.NoError(t, err)

	_, err = nw.Register("", 10)
	require.ErrorIs(t, err, ErrEmptyPeerID)
	_, err = nw.Register("b\xffb", 10)
	require.ErrorIs(t, err, ErrInvalidTransaction)
	require.Equal(t, []string{"alice"}, nw.Peers())

	// the network still reaches a round
	_, err = nw.DeclareLand("alice", "A")
	require.NoError(t, err)
	res, err := nw.DeclareLand("alice", "B")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Block)

	alice, err := nw.Node("alice")
	require.NoError(t, err)
	require.Equal(t, 2, alice.ChainLength())
	require.Equal(t, 0, alice.PoolSize())
}

func TestDuplicateTransaction(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())
	_, err := nw.Register("alice", 10)
	require.NoError(t, err)

	tx := inter.NewLandDeclare("alice", "A")
	_, err = nw.Submit(tx)
	require.NoError(t, err)
	_, err = nw.Submit(tx)
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	res, err := nw.Stake("alice", 1)
	require.NoError(t, err)
	require.NotNil(t, res.Block)

	// committed
	_, err = nw.Submit(tx)
	require.ErrorIs(t, err, ErrDuplicateTransaction)
}

// dropTransport refuses block events for the peers in drop.
type dropTransport struct {
	*LocalTransport
	drop map[string]bool
}

var errDropped = errors.New("dropped")

func (t *dropTransport) Send(peerID string, ev Event) error {
	if ev.Kind == EventBlock && t.drop[peerID] {
		return errDropped
	}
	return t.LocalTransport.Send(peerID, ev)
}

func TestFailedRoundClearsPools(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	tr := &dropTransport{LocalTransport: NewLocalTransport(), drop: map[string]bool{}}
	nw, err := New(Config{Rules: landchain.MainNetRules(), Log: log, Transport: tr})
	require.NoError(t, err)

	_, err = nw.Register("alice", 10)
	require.NoError(t, err)
	_, err = nw.Register("bob", 10)
	require.NoError(t, err)

	tr.drop["bob"] = true
	_, err = nw.DeclareLand("alice", "A")
	require.ErrorIs(t, err, errDropped)

	for _, id := range nw.Peers() {
		n, err := nw.Node(id)
		require.NoError(t, err)
		require.Equal(t, 0, n.PoolSize(), id)
	}

	// nothing is minted again from the failed round
	tr.drop["bob"] = false
	res, err := nw.Stake("bob", 1)
	require.NoError(t, err)
	require.Nil(t, res)
}

func TestSubmitErrors(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())
	_, err := nw.Submit(inter.NewReceiveCoins("alice", 1))
	require.ErrorIs(t, err, ErrUnknownPeer)

	_, err = nw.Register("alice", 1)
	require.NoError(t, err)
	_, err = nw.Submit(inter.Transaction{ID: "x"})
	require.ErrorIs(t, err, ErrInvalidTransaction)
	_, err = nw.Buy("alice", "nowhere")
	require.ErrorIs(t, err, ledger.ErrUnknownLand)
}

func TestLateJoinerBootstraps(t *testing.T) {
	nw := newNetwork(t, landchain.FakeNetRules())
	_, err := nw.Register("alice", 100)
	require.NoError(t, err)
	_, err = nw.DeclareLand("alice", "A")
	require.NoError(t, err)

	_, err = nw.Register("bob", 5)
	require.NoError(t, err)
	requireConsistent(t, nw)

	bob, err := nw.Node("bob")
	require.NoError(t, err)
	require.Equal(t, 4, bob.ChainLength())
	require.Equal(t, map[string]string{"A": "alice"}, bob.GetLandOwners())
}

func TestConcurrentSubmit(t *testing.T) {
	nw := newNetwork(t, landchain.MainNetRules())
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := nw.Register(id, 1000)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := nw.DeclareLand("a", fmt.Sprintf("L%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	requireConsistent(t, nw)

	n, err := nw.Node("d")
	require.NoError(t, err)
	require.Len(t, n.GetLandOwners(), 30-n.PoolSize())
}

func TestConfigDefaults(t *testing.T) {
	nw, err := New(Config{})
	require.NoError(t, err)
	require.Equal(t, landchain.MainNetRules(), nw.Rules())

	bad := landchain.MainNetRules()
	bad.Blocks.TxThreshold = 0
	_, err = New(Config{Rules: bad})
	require.ErrorIs(t, err, landchain.ErrInvalidThreshold)
}
