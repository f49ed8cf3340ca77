package ledger

import (
	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/inter/iblockproc"
)

// FindTransaction scans every block for the transaction with the given id.
func (c *Chain) FindTransaction(id string) (inter.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, b := range c.blocks {
		for _, tx := range b.Transactions {
			if tx.ID == id {
				return tx, nil
			}
		}
	}
	return inter.Transaction{}, ErrTxNotFound
}

// LandHistory returns the declarations and transfers of landID in chain order.
func (c *Chain) LandHistory(landID string) []inter.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var res []inter.Transaction
	for _, b := range c.blocks {
		for _, tx := range b.Transactions {
			if tx.TouchesLand() && tx.Input.LandID == landID {
				res = append(res, tx)
			}
		}
	}
	return res
}

// State replays the chain from genesis.
func (c *Chain) State() *iblockproc.BlockState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := iblockproc.NewBlockState()
	for _, b := range c.blocks {
		s.ApplyBlock(b)
	}
	return s
}

// LandOwners maps every registered land to its current owner.
func (c *Chain) LandOwners() map[string]string {
	return c.State().LandOwners
}

// LandOwner returns the current owner of landID.
func (c *Chain) LandOwner(landID string) (string, error) {
	owner, ok := c.LandOwners()[landID]
	if !ok {
		return "", ErrUnknownLand
	}
	return owner, nil
}

// Balances maps every user seen by the chain to its spendable balance.
func (c *Chain) Balances() map[string]int64 {
	return c.State().Balances
}

// Stakes returns the stake of every peer (0 if it never staked) and of every
// other user that has staked.
func (c *Chain) Stakes(peers []string) map[string]int64 {
	return c.State().StakesOf(peers)
}

// Ages returns, for each peer, the number of blocks since it last minted, or
// the chain length if it never did.
func (c *Chain) Ages(peers []string) map[string]uint64 {
	return c.State().Ages(peers)
}
