// Package inter defines the records that move between peers and end up in the
// chain: transactions and blocks, together with their canonical encodings,
// digests and the Merkle commitment that binds a block to its transactions.
package inter

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TxKind enumerates the transaction kinds. The zero value is invalid.
type TxKind uint8

const (
	// ReceiveCoins credits coins issued by the network to a user.
	ReceiveCoins TxKind = iota + 1
	// LandDeclare registers a previously unknown land to its declarer.
	LandDeclare
	// LandTransfer moves an owned land from seller to buyer.
	LandTransfer
	// StakeIncrease locks part of a user's balance as stake.
	StakeIncrease
)

var (
	ErrUnknownTxKind = errors.New("unknown tx kind")
	ErrMissingID     = errors.New("tx id is empty")
	ErrMissingUser   = errors.New("tx user is empty")
	ErrMissingLand   = errors.New("tx land id is empty")
	ErrInvalidText   = errors.New("tx field is not valid UTF-8")
)

func (k TxKind) Valid() bool {
	return k >= ReceiveCoins && k <= StakeIncrease
}

func (k TxKind) String() string {
	switch k {
	case ReceiveCoins:
		return "ReceiveCoins"
	case LandDeclare:
		return "LandDeclare"
	case LandTransfer:
		return "LandTransfer"
	case StakeIncrease:
		return "StakeIncrease"
	default:
		return fmt.Sprintf("TxKind(%d)", uint8(k))
	}
}

// TxInput is the acting side of a transaction. LandID is empty and Amount is
// zero for kinds that do not use them.
type TxInput struct {
	UserID string
	LandID string
	Amount int64
}

// TxOutput names the user the transaction results in favour of.
type TxOutput struct {
	UserID string
}

// Transaction is a single ledger operation. Its identity is ID, not its
// content: two transactions with equal fields and different IDs are distinct.
//
// Transactions are values and must not be mutated after construction.
type Transaction struct {
	ID     string
	Kind   TxKind
	Time   Timestamp
	Input  TxInput
	Output TxOutput
}

func newTransaction(kind TxKind, in TxInput, out TxOutput) Transaction {
	return Transaction{
		ID:     uuid.NewString(),
		Kind:   kind,
		Time:   Now(),
		Input:  in,
		Output: out,
	}
}

// NewReceiveCoins issues amount coins to userID.
func NewReceiveCoins(userID string, amount int64) Transaction {
	return newTransaction(ReceiveCoins, TxInput{UserID: userID, Amount: amount}, TxOutput{UserID: userID})
}

// NewLandDeclare registers landID to userID.
func NewLandDeclare(userID, landID string) Transaction {
	return newTransaction(LandDeclare, TxInput{UserID: userID, LandID: landID}, TxOutput{UserID: userID})
}

// NewLandTransfer moves landID from sellerID to buyerID.
func NewLandTransfer(sellerID, landID, buyerID string) Transaction {
	return newTransaction(LandTransfer, TxInput{UserID: sellerID, LandID: landID}, TxOutput{UserID: buyerID})
}

// NewStakeIncrease stakes amount coins of userID.
func NewStakeIncrease(userID string, amount int64) Transaction {
	return newTransaction(StakeIncrease, TxInput{UserID: userID, Amount: amount}, TxOutput{UserID: userID})
}

// Validate checks that the transaction is structurally well formed. It does
// not check it against any ledger state.
func (tx *Transaction) Validate() error {
	if tx.ID == "" {
		return ErrMissingID
	}
	if !tx.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownTxKind, tx.Kind)
	}
	if tx.Input.UserID == "" || tx.Output.UserID == "" {
		return ErrMissingUser
	}
	if tx.TouchesLand() && tx.Input.LandID == "" {
		return ErrMissingLand
	}
	// the decoder rejects invalid UTF-8, so such a tx could never be delivered
	for _, field := range []string{tx.ID, tx.Input.UserID, tx.Input.LandID, tx.Output.UserID} {
		if !utf8.ValidString(field) {
			return fmt.Errorf("%w: %q", ErrInvalidText, field)
		}
	}
	return nil
}

// TouchesLand reports whether the transaction changes land ownership.
func (tx *Transaction) TouchesLand() bool {
	return tx.Kind == LandDeclare || tx.Kind == LandTransfer
}

// String renders a one-line human description.
func (tx Transaction) String() string {
	switch tx.Kind {
	case ReceiveCoins:
		return fmt.Sprintf("%s received %d coins", tx.Output.UserID, tx.Input.Amount)
	case LandDeclare:
		return fmt.Sprintf("%s declared land %s", tx.Input.UserID, tx.Input.LandID)
	case LandTransfer:
		return fmt.Sprintf("%s sold land %s to %s", tx.Input.UserID, tx.Input.LandID, tx.Output.UserID)
	case StakeIncrease:
		return fmt.Sprintf("%s staked %d coins", tx.Input.UserID, tx.Input.Amount)
	default:
		return fmt.Sprintf("%s tx %s", tx.Kind, tx.ID)
	}
}
