// Package landchain defines the network rules a simulation runs under.
//
// Rules are shared by every peer of a network. The only consensus-relevant
// knob is the pool threshold: the pool size at which peers stop collecting
// transactions and elect a validator.
package landchain

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MainNetworkID uint64 = 0x1a4d
	TestNetworkID uint64 = 0x1a4e
	FakeNetworkID uint64 = 0x1a4f

	// DefaultTxThreshold matches the reference demo, where six transactions
	// produce two blocks.
	DefaultTxThreshold = 3
)

var ErrInvalidThreshold = errors.New("tx threshold must be positive")

// Rules describes a landchain network.
type Rules struct {
	Name      string
	NetworkID uint64

	Blocks BlocksRules
}

// BlocksRules controls block production.
type BlocksRules struct {
	// TxThreshold is the pending pool size that triggers an election.
	TxThreshold int
}

func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Blocks:    BlocksRules{TxThreshold: DefaultTxThreshold},
	}
}

func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Blocks:    BlocksRules{TxThreshold: DefaultTxThreshold},
	}
}

// FakeNetRules mints a block for every transaction, which keeps unit tests
// short.
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Blocks:    BlocksRules{TxThreshold: 1},
	}
}

// RulesByName resolves a network name as accepted by --network.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "main", "":
		return MainNetRules(), nil
	case "test":
		return TestNetRules(), nil
	case "fake":
		return FakeNetRules(), nil
	default:
		return Rules{}, fmt.Errorf("unknown network: %q (valid: main, test, fake)", name)
	}
}

// Validate checks the rules are usable.
func (r Rules) Validate() error {
	if r.Blocks.TxThreshold <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, r.Blocks.TxThreshold)
	}
	return nil
}

// Copy returns a copy of the rules. Rules hold no pointers today, so this is
// a plain value copy.
func (r Rules) Copy() Rules {
	return r
}

// String returns the JSON form of the rules.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
