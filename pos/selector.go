// Package pos elects the validator of the next block.
//
// The election is a weighted draw over the peer set where a peer's weight is
// its coinage (stake x age) plus one. The draw is seeded by the digest of the
// chain tip and uses only SHA-256 and integer arithmetic, so every peer that
// holds the same chain computes the same validator without exchanging any
// message.
package pos

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/Fantom-foundation/lachesis-base/hash"
)

// SelectionDomain is the message authenticated under the seed to derive the
// draw. Changing it changes every election.
const SelectionDomain = "landchain/validator-selection/v1"

var (
	ErrNoPeers       = errors.New("no peers to elect from")
	ErrEmptyPeerID   = errors.New("empty peer id")
	ErrNegativeStake = errors.New("negative stake")
)

// Validator is a peer together with its election weight.
type Validator struct {
	ID      string
	Stake   int64
	Age     uint64
	Coinage *big.Int
	Weight  *big.Int
}

// Validators is a candidate list in draw order.
type Validators []Validator

// TotalWeight sums the weights.
func (vv Validators) TotalWeight() *big.Int {
	total := new(big.Int)
	for _, v := range vv {
		total.Add(total, v.Weight)
	}
	return total
}

// Weights computes the candidate list for peers. Peers are de-duplicated and
// sorted so the result does not depend on the order the caller lists them in.
// Missing stakes count as 0 and missing ages as 0.
//
// weight = coinage + 1, except that when every coinage is zero all weights
// are exactly 1.
func Weights(peers []string, stakes map[string]int64, ages map[string]uint64) (Validators, error) {
	ids := normalize(peers)
	if len(ids) == 0 {
		return nil, ErrNoPeers
	}

	vv := make(Validators, len(ids))
	coinageSum := new(big.Int)
	for i, id := range ids {
		if id == "" {
			return nil, ErrEmptyPeerID
		}
		stake := stakes[id]
		if stake < 0 {
			return nil, fmt.Errorf("%w: %s has %d", ErrNegativeStake, id, stake)
		}
		age := ages[id]
		coinage := new(big.Int).Mul(big.NewInt(stake), new(big.Int).SetUint64(age))
		coinageSum.Add(coinageSum, coinage)
		vv[i] = Validator{
			ID:      id,
			Stake:   stake,
			Age:     age,
			Coinage: coinage,
			Weight:  new(big.Int).Add(coinage, big.NewInt(1)),
		}
	}

	if coinageSum.Sign() == 0 {
		for i := range vv {
			vv[i].Weight = big.NewInt(1)
		}
	}
	return vv, nil
}

// Draw picks one validator from vv using seed.
//
// r = HMAC-SHA256(key=seed, SelectionDomain) read as a big-endian integer,
// target = r mod totalWeight, and the winner is the first candidate whose
// cumulative weight exceeds target.
func Draw(seed hash.Hash, vv Validators) (Validator, error) {
	if len(vv) == 0 {
		return Validator{}, ErrNoPeers
	}
	total := vv.TotalWeight()

	mac := hmac.New(sha256.New, seed.Bytes())
	mac.Write([]byte(SelectionDomain))
	r := new(big.Int).SetBytes(mac.Sum(nil))
	target := r.Mod(r, total)

	cumulative := new(big.Int)
	for _, v := range vv {
		cumulative.Add(cumulative, v.Weight)
		if target.Cmp(cumulative) < 0 {
			return v, nil
		}
	}
	// unreachable: target < total == final cumulative
	return vv[len(vv)-1], nil
}

// Select elects the validator of the block following the chain tip whose
// digest is seed. It is a pure function of its arguments.
func Select(seed hash.Hash, peers []string, stakes map[string]int64, ages map[string]uint64) (string, error) {
	vv, err := Weights(peers, stakes, ages)
	if err != nil {
		return "", err
	}
	v, err := Draw(seed, vv)
	if err != nil {
		return "", err
	}
	return v.ID, nil
}

func normalize(peers []string) []string {
	seen := make(map[string]struct{}, len(peers))
	ids := make([]string, 0, len(peers))
	for _, p := range peers {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		ids = append(ids, p)
	}
	sort.Strings(ids)
	return ids
}
