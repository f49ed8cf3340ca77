// Package node is a single simulated peer: its copy of the chain, its pending
// pool and the mint/apply cycle that moves transactions from one to the other.
//
// A round for one node goes Idle -> Pooling -> Electing -> Minting (if it is
// elected) or Waiting -> Idle, the last step happening in ApplyBlock, which
// always clears the pool.
package node

import (
	"sync"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-landchain/emitter"
	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/ledger"
	"github.com/rony4d/go-landchain/pos"
)

// Node is safe for concurrent use.
type Node struct {
	id string

	mu      sync.RWMutex
	chain   *ledger.Chain
	pool    []inter.Transaction
	pooled  map[string]struct{}
	emitter *emitter.Emitter

	log logrus.FieldLogger
}

// MintResult is the outcome of TryMint. Block is nil when the node was not
// elected or when it was elected but nothing in the pool was valid.
type MintResult struct {
	Validator string
	Block     *inter.Block
	Rejected  []emitter.Rejection
}

// Elected reports whether the node that produced the result is the validator.
func (r MintResult) Elected(id string) bool {
	return r.Validator == id
}

// New creates a node holding the genesis chain and an empty pool. A nil clock
// means inter.Now and a nil logger means the logrus standard logger.
func New(id string, clock inter.Clock, log logrus.FieldLogger) *Node {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Node{
		id:      id,
		chain:   ledger.New(),
		pooled:  map[string]struct{}{},
		emitter: emitter.New(id, clock, log),
		log:     log.WithField("peer", id),
	}
}

func (n *Node) ID() string {
	return n.id
}

// SubmitTransaction adds tx to the pool. It returns false, leaving the pool
// unchanged, if tx is malformed, already pooled or already committed.
func (n *Node) SubmitTransaction(tx inter.Transaction) bool {
	if err := tx.Validate(); err != nil {
		n.log.WithError(err).WithField("tx", tx.ID).Debug("Dropped malformed transaction")
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.pooled[tx.ID]; ok {
		return false
	}
	if _, err := n.chain.FindTransaction(tx.ID); err == nil {
		return false
	}
	n.pool = append(n.pool, tx)
	n.pooled[tx.ID] = struct{}{}
	n.log.WithFields(logrus.Fields{"tx": tx.ID, "pool": len(n.pool)}).Debug("Pooled transaction")
	return true
}

// PoolSize is the number of pending transactions.
func (n *Node) PoolSize() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.pool)
}

// Pool returns a copy of the pending transactions in arrival order.
func (n *Node) Pool() []inter.Transaction {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]inter.Transaction(nil), n.pool...)
}

// Elect computes the validator of the next block from this node's chain.
func (n *Node) Elect(peers []string) (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.elect(peers)
}

func (n *Node) elect(peers []string) (string, error) {
	state := n.chain.State()
	return pos.Select(n.chain.TipHash(), peers, state.StakesOf(peers), state.Ages(peers))
}

// TryMint elects the next validator and, if this node is the one, mints a
// block from its pool. The pool is left untouched: it is cleared by
// ApplyBlock once the round's outcome is known.
func (n *Node) TryMint(peers []string) (MintResult, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	validator, err := n.elect(peers)
	if err != nil {
		return MintResult{}, err
	}
	res := MintResult{Validator: validator}
	if validator != n.id {
		return res, nil
	}

	res.Block, res.Rejected, err = n.emitter.Mint(n.chain, n.pool)
	if err != nil {
		return MintResult{}, err
	}
	return res, nil
}

// ApplyBlock appends b, if not nil, and clears the pool. The pool is cleared
// even when b is rejected; the chain is then left unchanged and the error is
// returned.
func (n *Node) ApplyBlock(b *inter.Block) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	defer n.clearPool()
	if b == nil {
		return nil
	}
	if err := n.chain.Append(b); err != nil {
		n.log.WithError(err).WithField("height", b.Height).Error("Rejected block")
		return err
	}
	n.log.WithFields(logrus.Fields{
		"height":    b.Height,
		"validator": b.Validator,
		"txs":       len(b.Transactions),
	}).Debug("Applied block")
	return nil
}

func (n *Node) clearPool() {
	n.pool = nil
	n.pooled = map[string]struct{}{}
}

// currentChain returns the chain under the read lock, since Import may swap it.
func (n *Node) currentChain() *ledger.Chain {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.chain
}

// GetTransaction looks a committed transaction up by id.
func (n *Node) GetTransaction(id string) (inter.Transaction, error) {
	return n.currentChain().FindTransaction(id)
}

func (n *Node) GetBlock(height idx.Block) (*inter.Block, error) {
	return n.currentChain().BlockAt(height)
}

func (n *Node) GetLastBlock() *inter.Block {
	return n.currentChain().Last()
}

func (n *Node) GetLandHistory(landID string) []inter.Transaction {
	return n.currentChain().LandHistory(landID)
}

func (n *Node) GetLandOwners() map[string]string {
	return n.currentChain().LandOwners()
}

func (n *Node) GetLandOwner(landID string) (string, error) {
	return n.currentChain().LandOwner(landID)
}

func (n *Node) GetBalances() map[string]int64 {
	return n.currentChain().Balances()
}

func (n *Node) GetStakes(peers []string) map[string]int64 {
	return n.currentChain().Stakes(peers)
}

func (n *Node) GetAges(peers []string) map[string]uint64 {
	return n.currentChain().Ages(peers)
}

// ChainLength is the number of blocks, genesis included.
func (n *Node) ChainLength() int {
	return n.currentChain().Len()
}

// Blocks returns copies of every block in chain order.
func (n *Node) Blocks() []*inter.Block {
	return n.currentChain().Blocks()
}
