// Package network runs a set of in-process peers as one simulated network.
//
// Every submitted transaction is delivered to every peer in registration
// order. Once the pools reach the rules' threshold, all peers elect the
// validator concurrently and must agree; the validator's block (or the news
// that there is none) is then delivered to every peer, which applies it and
// clears its pool. A round runs under a single lock, so no caller ever sees
// a pool that was cleared without the matching block appended.
package network

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rony4d/go-landchain/emitter"
	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/landchain"
	"github.com/rony4d/go-landchain/node"
)

var (
	ErrPeerExists           = errors.New("peer already registered")
	ErrEmptyPeerID          = errors.New("empty peer id")
	ErrDuplicateTransaction = errors.New("transaction already pooled or committed")
	ErrNegativeBalance      = errors.New("initial balance is negative")
	ErrInvalidTransaction   = errors.New("invalid transaction")
	ErrElectionDisagreement = errors.New("peers elected different validators")
	ErrPoolDivergence       = errors.New("peer pools diverged")
)

// Config assembles a Network. Zero fields get defaults: main net rules, the
// wall clock, the logrus standard logger, a LocalTransport and no metrics
// registration.
type Config struct {
	Rules      landchain.Rules
	Clock      inter.Clock
	Log        logrus.FieldLogger
	Registerer prometheus.Registerer
	Transport  Transport
}

// RoundResult describes one election round.
type RoundResult struct {
	Validator string
	Block     *inter.Block
	Rejected  []emitter.Rejection
}

// Network is a set of peers sharing one transport.
type Network struct {
	rules     landchain.Rules
	clock     inter.Clock
	log       logrus.FieldLogger
	metrics   *metrics
	transport Transport

	mu    sync.Mutex
	nodes map[string]*node.Node
	order []string
}

// New validates cfg and creates an empty network.
func New(cfg Config) (*Network, error) {
	if cfg.Rules == (landchain.Rules{}) {
		cfg.Rules = landchain.MainNetRules()
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = inter.Now
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if cfg.Transport == nil {
		cfg.Transport = NewLocalTransport()
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, err
	}
	return &Network{
		rules:     cfg.Rules.Copy(),
		clock:     cfg.Clock,
		log:       cfg.Log.WithField("network", cfg.Rules.Name),
		metrics:   m,
		transport: cfg.Transport,
		nodes:     make(map[string]*node.Node),
	}, nil
}

// Rules returns the rules the network runs under.
func (nw *Network) Rules() landchain.Rules {
	return nw.rules.Copy()
}

// Peers returns the registered peer ids, sorted.
func (nw *Network) Peers() []string {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	return nw.peers()
}

func (nw *Network) peers() []string {
	res := append([]string(nil), nw.order...)
	sort.Strings(res)
	return res
}

// Node returns the peer with the given id.
func (nw *Network) Node(id string) (*node.Node, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	n, ok := nw.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPeer, id)
	}
	return n, nil
}

// Register adds a peer. The new peer starts from a copy of an existing
// peer's chain and pool, then the network issues it balance coins with a
// ReceiveCoins transaction, which may complete a round. A rejected
// registration leaves the network unchanged.
func (nw *Network) Register(id string, balance int64) (*RoundResult, error) {
	if id == "" {
		return nil, ErrEmptyPeerID
	}
	if balance < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeBalance, balance)
	}
	tx := inter.NewReceiveCoins(id, balance)
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}

	nw.mu.Lock()
	defer nw.mu.Unlock()

	if _, ok := nw.nodes[id]; ok {
		return nil, fmt.Errorf("%w: %s", ErrPeerExists, id)
	}
	n := node.New(id, nw.clock, nw.log)
	if len(nw.order) > 0 {
		if err := n.Import(nw.nodes[nw.order[0]].Export()); err != nil {
			return nil, fmt.Errorf("bootstrap %s: %w", id, err)
		}
	}
	nw.nodes[id] = n
	nw.order = append(nw.order, id)
	nw.transport.Register(id, nw.handler(n))
	nw.log.WithFields(logrus.Fields{"peer": id, "balance": balance}).Info("Registered peer")

	return nw.submit(tx)
}

// Submit broadcasts tx to every peer and runs a round if the pools reached
// the threshold. The result is nil when no round ran. A tx that is already
// pooled or committed gives ErrDuplicateTransaction.
func (nw *Network) Submit(tx inter.Transaction) (*RoundResult, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	return nw.submit(tx)
}

// DeclareLand registers landID to peer.
func (nw *Network) DeclareLand(peer, landID string) (*RoundResult, error) {
	return nw.Submit(inter.NewLandDeclare(peer, landID))
}

// Sell transfers landID from seller to buyer.
func (nw *Network) Sell(seller, landID, buyer string) (*RoundResult, error) {
	return nw.Submit(inter.NewLandTransfer(seller, landID, buyer))
}

// Buy transfers landID from its current committed owner to buyer.
func (nw *Network) Buy(buyer, landID string) (*RoundResult, error) {
	n, err := nw.Node(buyer)
	if err != nil {
		return nil, err
	}
	seller, err := n.GetLandOwner(landID)
	if err != nil {
		return nil, fmt.Errorf("buy %s: %w", landID, err)
	}
	return nw.Sell(seller, landID, buyer)
}

// Stake stakes amount coins of peer.
func (nw *Network) Stake(peer string, amount int64) (*RoundResult, error) {
	return nw.Submit(inter.NewStakeIncrease(peer, amount))
}

func (nw *Network) submit(tx inter.Transaction) (*RoundResult, error) {
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if len(nw.order) == 0 {
		return nil, fmt.Errorf("%w: no peers", ErrUnknownPeer)
	}

	ev, err := TxEvent(&tx)
	if err != nil {
		return nil, err
	}
	for _, id := range nw.order {
		if err := nw.transport.Send(id, ev); err != nil {
			return nil, fmt.Errorf("deliver tx %s to %s: %w", tx.ID, id, err)
		}
	}

	size, err := nw.poolSize()
	if err != nil {
		return nil, err
	}
	nw.metrics.poolSize.Set(float64(size))
	if size < nw.rules.Blocks.TxThreshold {
		return nil, nil
	}
	return nw.round()
}

// poolSize checks that every peer holds the same number of pending
// transactions and returns it.
func (nw *Network) poolSize() (int, error) {
	size := nw.nodes[nw.order[0]].PoolSize()
	for _, id := range nw.order[1:] {
		if got := nw.nodes[id].PoolSize(); got != size {
			return 0, fmt.Errorf("%w: %s has %d, %s has %d", ErrPoolDivergence, nw.order[0], size, id, got)
		}
	}
	return size, nil
}

// round elects the validator and delivers its block to every peer. Once the
// election has started every peer ends the round with an empty pool, even
// when the round fails.
func (nw *Network) round() (*RoundResult, error) {
	peers := nw.peers()
	results := make([]node.MintResult, len(peers))

	var g errgroup.Group
	for i, id := range peers {
		i, n := i, nw.nodes[id]
		g.Go(func() error {
			res, err := n.TryMint(peers)
			if err != nil {
				return fmt.Errorf("%s: %w", n.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nw.abort(err)
	}

	outcome := RoundResult{Validator: results[0].Validator}
	for i, res := range results {
		if res.Validator != outcome.Validator {
			return nil, nw.abort(fmt.Errorf("%w: %s chose %s, %s chose %s", ErrElectionDisagreement, peers[0], outcome.Validator, peers[i], res.Validator))
		}
		if peers[i] == outcome.Validator {
			outcome.Block = res.Block
			outcome.Rejected = res.Rejected
		}
	}

	ev, err := BlockEvent(outcome.Block)
	if err != nil {
		return nil, nw.abort(err)
	}
	var sendErr error
	for _, id := range nw.order {
		if err := nw.transport.Send(id, ev); err != nil && sendErr == nil {
			sendErr = fmt.Errorf("deliver block to %s: %w", id, err)
		}
	}
	if sendErr != nil {
		return nil, nw.abort(sendErr)
	}

	nw.record(&outcome)
	return &outcome, nil
}

// abort ends a failed round: every peer drops its pool without a block.
func (nw *Network) abort(cause error) error {
	for _, id := range nw.order {
		// ApplyBlock(nil) only clears the pool
		_ = nw.nodes[id].ApplyBlock(nil)
	}
	nw.metrics.poolSize.Set(0)
	nw.log.WithError(cause).Warn("Round failed, pools cleared")
	return cause
}

func (nw *Network) record(outcome *RoundResult) {
	for _, r := range outcome.Rejected {
		nw.metrics.rejected.WithLabelValues(rejectionLabel(r.Reason)).Inc()
	}
	nw.metrics.poolSize.Set(0)

	fields := logrus.Fields{"validator": outcome.Validator, "rejected": len(outcome.Rejected)}
	if outcome.Block == nil {
		nw.metrics.emptyRounds.Inc()
		nw.log.WithFields(fields).Info("Round produced no block")
		return
	}
	nw.metrics.blocksMinted.Inc()
	nw.metrics.chainHeight.Set(float64(outcome.Block.Height))
	fields["height"] = outcome.Block.Height
	fields["txs"] = len(outcome.Block.Transactions)
	nw.log.WithFields(fields).Info("Round minted block")
}

// handler applies events delivered to n.
func (nw *Network) handler(n *node.Node) Handler {
	return func(ev Event) error {
		switch ev.Kind {
		case EventTransaction:
			var tx inter.Transaction
			if err := tx.UnmarshalBinary(ev.Payload); err != nil {
				return err
			}
			if !n.SubmitTransaction(tx) {
				return fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ID)
			}
			return nil
		case EventBlock:
			b, err := inter.UnmarshalBlock(ev.Payload)
			if err != nil {
				return err
			}
			return n.ApplyBlock(b)
		case EventNoBlock:
			return n.ApplyBlock(nil)
		default:
			return fmt.Errorf("%w: %d", ErrUnknownEvent, ev.Kind)
		}
	}
}
