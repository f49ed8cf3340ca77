package node

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-landchain/inter"
	"github.com/rony4d/go-landchain/ledger"
)

const snapshotVersion = 1

var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the whole state of a node as plain data.
type Snapshot struct {
	Blocks []*inter.Block
	Pool   []inter.Transaction
}

// snapshotRLP stores every record in its canonical encoding, wrapped in an
// RLP list.
type snapshotRLP struct {
	Version uint
	Blocks  [][]byte
	Pool    [][]byte
}

// MarshalBinary encodes the snapshot.
func (s *Snapshot) MarshalBinary() ([]byte, error) {
	enc := snapshotRLP{
		Version: snapshotVersion,
		Blocks:  make([][]byte, len(s.Blocks)),
		Pool:    make([][]byte, len(s.Pool)),
	}
	for i, b := range s.Blocks {
		raw, err := b.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.Height, err)
		}
		enc.Blocks[i] = raw
	}
	for i := range s.Pool {
		raw, err := s.Pool[i].MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("pool tx %s: %w", s.Pool[i].ID, err)
		}
		enc.Pool[i] = raw
	}
	return rlp.EncodeToBytes(&enc)
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalBinary.
func UnmarshalSnapshot(raw []byte) (*Snapshot, error) {
	var enc snapshotRLP
	if err := rlp.DecodeBytes(raw, &enc); err != nil {
		return nil, err
	}
	if enc.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, enc.Version)
	}

	s := &Snapshot{
		Blocks: make([]*inter.Block, len(enc.Blocks)),
		Pool:   make([]inter.Transaction, len(enc.Pool)),
	}
	for i, rawBlock := range enc.Blocks {
		b, err := inter.UnmarshalBlock(rawBlock)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		s.Blocks[i] = b
	}
	for i, rawTx := range enc.Pool {
		if err := s.Pool[i].UnmarshalBinary(rawTx); err != nil {
			return nil, fmt.Errorf("pool tx %d: %w", i, err)
		}
	}
	return s, nil
}

// Export captures the node's chain and pool.
func (n *Node) Export() Snapshot {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Snapshot{
		Blocks: n.chain.Blocks(),
		Pool:   append([]inter.Transaction(nil), n.pool...),
	}
}

// Import replaces the node's chain and pool with s. The chain is fully
// verified first; on error the node is left unchanged.
func (n *Node) Import(s Snapshot) error {
	chain, err := ledger.FromBlocks(s.Blocks)
	if err != nil {
		return err
	}
	pooled := make(map[string]struct{}, len(s.Pool))
	for i := range s.Pool {
		if err := s.Pool[i].Validate(); err != nil {
			return fmt.Errorf("pool tx %d: %w", i, err)
		}
		pooled[s.Pool[i].ID] = struct{}{}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.chain = chain
	n.pool = append([]inter.Transaction(nil), s.Pool...)
	n.pooled = pooled
	n.log.WithFields(logrus.Fields{"height": chain.Last().Height, "pool": len(n.pool)}).Info("Imported snapshot")
	return nil
}
