package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/umbranet/umbrad/wire"
)

// genesisCoinbaseScript is the signature script of the genesis coinbase. It
// commits to the launch announcement headline in the usual fashion.
var genesisCoinbaseScript = []byte(
	"\x04\xff\xff\x07\x1f\x01\x04Umbra genesis: value moves between " +
		"pools under strict arithmetic",
)

// genesisTime is the timestamp shared by all network genesis blocks.
var genesisTime = time.Unix(1_700_000_000, 0)

// genesisCoinbaseTx returns the single transaction of a genesis block. The
// reward is unspendable; the output script is an empty push.
func genesisCoinbaseTx() *wire.MsgTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.Hash{},
			Index: 0xffffffff,
		},
		SignatureScript: genesisCoinbaseScript,
		Sequence:        wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(0, []byte{0x6a}))

	return tx
}

// GenesisBlock constructs the network's genesis block. The block is built
// programmatically rather than embedded as literals, so its hash follows
// from the parameters deterministically.
func (p *Params) GenesisBlock() *wire.MsgBlock {
	coinbase := genesisCoinbaseTx()

	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:    1,
		PrevBlock:  chainhash.Hash{},
		MerkleRoot: coinbase.TxHash(),
		Timestamp:  genesisTime,
		Bits:       p.PowLimitBits,
	})
	block.AddTransaction(coinbase)

	return block
}

// GenesisHash returns the hash of the network's genesis block.
func (p *Params) GenesisHash() chainhash.Hash {
	return p.GenesisBlock().BlockHash()
}
