package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func sampleHeader() *BlockHeader {
	var prev, merkle, nonce chainhash.Hash
	prev[0], merkle[0], nonce[0] = 1, 2, 3

	return &BlockHeader{
		Version:    4,
		PrevBlock:  prev,
		MerkleRoot: merkle,
		Timestamp:  time.Unix(1_700_000_123, 0),
		Bits:       0x207fffff,
		Nonce:      nonce,
		Solution:   []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

// TestBlockHeaderSerializeRoundTrip asserts the full header encoding is
// invertible.
func TestBlockHeaderSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	header := sampleHeader()

	var buf bytes.Buffer
	require.NoError(t, header.Serialize(&buf))

	var got BlockHeader
	require.NoError(t, got.Deserialize(&buf))
	require.Equal(t, header, &got)
}

// TestPoWInputExcludesNonceAndSolution asserts the proof-of-work fixed
// prefix stays byte identical while nonce and solution vary, which is what
// lets the search precompute it once per template.
func TestPoWInputExcludesNonceAndSolution(t *testing.T) {
	t.Parallel()

	header := sampleHeader()
	prefix := header.PoWInput()

	header.Nonce[0] ^= 0xff
	header.Solution = []byte{0x00}
	require.Equal(t, prefix, header.PoWInput())

	// The block hash, in contrast, must cover both.
	base := sampleHeader()
	withNonce := sampleHeader()
	withNonce.Nonce[0] ^= 0xff
	withSolution := sampleHeader()
	withSolution.Solution = []byte{0x00}

	require.NotEqual(t, base.BlockHash(), withNonce.BlockHash())
	require.NotEqual(t, base.BlockHash(), withSolution.BlockHash())
}

// TestMsgBlockSerializeRoundTrip asserts block encoding is invertible and
// that the block hash is the header hash.
func TestMsgBlockSerializeRoundTrip(t *testing.T) {
	t.Parallel()

	block := NewMsgBlock(sampleHeader())
	block.AddTransaction(sampleTx())

	var buf bytes.Buffer
	require.NoError(t, block.Serialize(&buf))

	var got MsgBlock
	require.NoError(t, got.Deserialize(&buf))
	require.Equal(t, block, &got)

	require.Equal(t, block.Header.BlockHash(), block.BlockHash())
	require.Len(t, block.TxHashes(), 1)
}
