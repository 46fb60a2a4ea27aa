package consensus

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
	"github.com/umbranet/umbrad/wire"
)

// TestCalcMerkleRoot asserts the tree construction for the small shapes
// that cover its edge cases: empty, single leaf, even level and odd level.
func TestCalcMerkleRoot(t *testing.T) {
	t.Parallel()

	tx1 := spendTx(1)
	tx2 := spendTx(2)
	tx3 := spendTx(3)
	h1, h2, h3 := tx1.TxHash(), tx2.TxHash(), tx3.TxHash()

	// No transactions hash to the zero root.
	require.Equal(
		t, chainhash.Hash{}, CalcMerkleRoot(nil),
	)

	// A single transaction is its own root.
	require.Equal(
		t, h1, CalcMerkleRoot([]*wire.MsgTx{tx1}),
	)

	// Two transactions hash pairwise.
	require.Equal(
		t, hashMerkleBranches(&h1, &h2),
		CalcMerkleRoot([]*wire.MsgTx{tx1, tx2}),
	)

	// An odd level pairs its last node with itself.
	left := hashMerkleBranches(&h1, &h2)
	right := hashMerkleBranches(&h3, &h3)
	require.Equal(
		t, hashMerkleBranches(&left, &right),
		CalcMerkleRoot([]*wire.MsgTx{tx1, tx2, tx3}),
	)

	// The root depends on transaction order.
	require.NotEqual(
		t, CalcMerkleRoot([]*wire.MsgTx{tx1, tx2}),
		CalcMerkleRoot([]*wire.MsgTx{tx2, tx1}),
	)
}
