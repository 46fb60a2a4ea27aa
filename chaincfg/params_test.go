package chaincfg

import (
	"testing"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/stretchr/testify/require"
	"github.com/umbranet/umbrad/consensus"
)

// TestBlockSubsidy asserts the halving schedule: full subsidy in the first
// interval, halved per interval boundary, zero once shifted out.
func TestBlockSubsidy(t *testing.T) {
	t.Parallel()

	p := &RegressionNetParams
	interval := p.SubsidyHalvingInterval

	require.Equal(t, p.BaseSubsidy, p.BlockSubsidy(0))
	require.Equal(t, p.BaseSubsidy, p.BlockSubsidy(interval-1))
	require.Equal(t, p.BaseSubsidy/2, p.BlockSubsidy(interval))
	require.Equal(t, p.BaseSubsidy/4, p.BlockSubsidy(2*interval))
	require.Zero(t, p.BlockSubsidy(64*interval))
}

// TestEquihashSolutionSize asserts the derived solution lengths for both
// deployed parameter sets.
func TestEquihashSolutionSize(t *testing.T) {
	t.Parallel()

	// N=200, K=9: 512 indices of 21 bits.
	require.Equal(t, 1344, MainNetParams.EquihashSolutionSize(1))

	// N=48, K=5: 32 indices of 9 bits.
	require.Equal(t, 36, RegressionNetParams.EquihashSolutionSize(1))
}

// TestPowLimitBitsMatchLimit asserts the compact encodings expand to
// targets at or below the stated limits.
func TestPowLimitBitsMatchLimit(t *testing.T) {
	t.Parallel()

	for _, p := range []*Params{&MainNetParams, &RegressionNetParams} {
		target := blockchain.CompactToBig(p.PowLimitBits)
		require.True(t, target.Sign() > 0)
		require.True(t, target.Cmp(p.PowLimit) <= 0)
	}
}

// TestGenesisBlock asserts the genesis block is well formed, carries a sane
// coinbase and hashes deterministically.
func TestGenesisBlock(t *testing.T) {
	t.Parallel()

	for _, p := range []*Params{&MainNetParams, &RegressionNetParams} {
		block := p.GenesisBlock()

		require.Len(t, block.Transactions, 1)
		coinbase := block.Transactions[0]
		require.True(t, consensus.IsCoinBaseTx(coinbase))
		require.NoError(t, consensus.CheckTransactionSanity(coinbase))

		require.Equal(
			t, coinbase.TxHash(), block.Header.MerkleRoot,
		)
		require.Equal(t, block.BlockHash(), p.GenesisHash())
	}

	// The difficulty floor differs per network, so the hashes must too.
	require.NotEqual(
		t, MainNetParams.GenesisHash(),
		RegressionNetParams.GenesisHash(),
	)
}
