// Package emitter mints blocks out of a peer's pending pool.
//
// Only the elected validator mints. It validates the pool in arrival order
// against a running copy of the committed state, so each accepted
// transaction is visible to the ones after it, and packs the accepted ones
// into the next block.
package emitter

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/inter/iblockproc"
)

var (
	ErrLandAlreadyDeclared = errors.New("land already declared")
	ErrLandNotRegistered   = errors.New("land not registered on chain")
	ErrNotLandOwner        = errors.New("seller does not own the land")
	ErrSelfTransfer        = errors.New("seller and buyer are the same user")
	ErrNonPositiveStake    = errors.New("stake amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownKind         = errors.New("unknown transaction kind")
)

// ChainReader is the part of the ledger the emitter reads.
type ChainReader interface {
	State() *iblockproc.BlockState
	Last() *inter.Block
	Len() int
}

// Rejection records a pooled transaction that did not make it into the block.
type Rejection struct {
	Tx     inter.Transaction
	Reason error
}

func (r Rejection) String() string {
	return fmt.Sprintf("%s: %v", r.Tx, r.Reason)
}

// Emitter mints blocks on behalf of one validator.
type Emitter struct {
	validator string
	clock     inter.Clock
	log       logrus.FieldLogger
}

// New creates an emitter minting as validator. A nil clock means inter.Now.
func New(validator string, clock inter.Clock, log logrus.FieldLogger) *Emitter {
	if clock == nil {
		clock = inter.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Emitter{
		validator: validator,
		clock:     clock,
		log:       log.WithField("validator", validator),
	}
}

// Mint validates pool and builds the next block from the accepted
// transactions. It returns a nil block, and no error, when nothing was
// accepted.
func (em *Emitter) Mint(chain ChainReader, pool []inter.Transaction) (*inter.Block, []Rejection, error) {
	canonical := chain.State()
	running := canonical.Copy()

	var (
		accepted []inter.Transaction
		rejected []Rejection
	)
	for i := range pool {
		tx := &pool[i]
		if err := CheckTransaction(canonical, running, tx); err != nil {
			em.log.WithFields(logrus.Fields{
				"tx":     tx.ID,
				"kind":   tx.Kind,
				"reason": err,
			}).Warn("Rejected transaction")
			rejected = append(rejected, Rejection{Tx: *tx, Reason: err})
			continue
		}
		applySpeculative(running, tx)
		accepted = append(accepted, *tx)
	}

	if len(accepted) == 0 {
		em.log.WithField("rejected", len(rejected)).Info("Nothing to mint")
		return nil, rejected, nil
	}

	last := chain.Last()
	height := idx.Block(chain.Len())
	block, err := inter.CreateBlock(height, last, em.validator, accepted, em.clock())
	if err != nil {
		return nil, rejected, err
	}
	em.log.WithFields(logrus.Fields{
		"height":   block.Height,
		"txs":      len(accepted),
		"rejected": len(rejected),
	}).Info("Minted block")
	return block, rejected, nil
}

// CheckTransaction validates tx against the committed state and the running
// speculative state of the pass in progress.
func CheckTransaction(canonical, running *iblockproc.BlockState, tx *inter.Transaction) error {
	switch tx.Kind {
	case inter.ReceiveCoins:
		return nil

	case inter.LandDeclare:
		if owner, ok := running.LandOwners[tx.Input.LandID]; ok {
			return fmt.Errorf("%w: %s owned by %s", ErrLandAlreadyDeclared, tx.Input.LandID, owner)
		}
		return nil

	case inter.LandTransfer:
		if _, ok := canonical.LandOwners[tx.Input.LandID]; !ok {
			return fmt.Errorf("%w: %s", ErrLandNotRegistered, tx.Input.LandID)
		}
		if owner := running.LandOwners[tx.Input.LandID]; owner != tx.Input.UserID {
			return fmt.Errorf("%w: %s owned by %s, not %s", ErrNotLandOwner, tx.Input.LandID, owner, tx.Input.UserID)
		}
		if tx.Input.UserID == tx.Output.UserID {
			return ErrSelfTransfer
		}
		return nil

	case inter.StakeIncrease:
		if tx.Input.Amount <= 0 {
			return fmt.Errorf("%w: %d", ErrNonPositiveStake, tx.Input.Amount)
		}
		if balance := running.Balances[tx.Input.UserID]; tx.Input.Amount > balance {
			return fmt.Errorf("%w: %s has %d, stakes %d", ErrInsufficientBalance, tx.Input.UserID, balance, tx.Input.Amount)
		}
		return nil

	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, tx.Kind)
	}
}

// applySpeculative updates the running state after tx was accepted. Coins
// received in the same pass are not credited: they only count once committed.
func applySpeculative(running *iblockproc.BlockState, tx *inter.Transaction) {
	switch tx.Kind {
	case inter.LandDeclare, inter.LandTransfer:
		running.LandOwners[tx.Input.LandID] = tx.Output.UserID
	case inter.StakeIncrease:
		running.Balances[tx.Input.UserID] -= tx.Input.Amount
	}
}
