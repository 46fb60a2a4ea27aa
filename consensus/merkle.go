package consensus

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/umbranet/umbrad/wire"
)

// hashMerkleBranches takes two leaves of a merkle tree and returns the
// double SHA-256 of their concatenation.
func hashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var buf [2 * chainhash.HashSize]byte
	copy(buf[:chainhash.HashSize], left[:])
	copy(buf[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashH(buf[:])
}

// CalcMerkleRoot computes the merkle root over the transaction ids of the
// given ordered transaction list. A level with an odd number of nodes pairs
// its last node with itself.
func CalcMerkleRoot(txns []*wire.MsgTx) chainhash.Hash {
	if len(txns) == 0 {
		return chainhash.Hash{}
	}

	level := make([]chainhash.Hash, 0, len(txns))
	for _, tx := range txns {
		level = append(level, tx.TxHash())
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}

		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashMerkleBranches(
				&level[i], &level[i+1],
			))
		}
		level = next
	}

	return level[0]
}
