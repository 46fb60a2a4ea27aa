package mining

import (
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/umbranet/umbrad/chaincfg"
	"github.com/umbranet/umbrad/consensus"
	"github.com/umbranet/umbrad/wire"
)

// generatedBlockVersion is the version field written into block headers
// this builder produces.
const generatedBlockVersion = 4

// BlockTemplate houses a candidate block ready for the proof-of-work
// search, along with the metadata a caller needs to reason about it.
type BlockTemplate struct {
	// Block is the candidate block. The search engine mutates its
	// header nonce and solution in place; everything else is final.
	Block *wire.MsgBlock

	// Fees is the total fee paid by the non-coinbase transactions,
	// already folded into the coinbase output.
	Fees btcutil.Amount

	// Height is the height the block will claim once accepted.
	Height int32
}

// BlkTmplGenerator generates block templates over a transaction source and
// a chain-tip snapshot provider.
type BlkTmplGenerator struct {
	chainParams *chaincfg.Params
	txSource    TxSource
	chain       ChainSnapshotter
}

// NewBlkTmplGenerator returns a new block template generator for the given
// parameters and collaborators.
func NewBlkTmplGenerator(chainParams *chaincfg.Params, txSource TxSource,
	chain ChainSnapshotter) *BlkTmplGenerator {

	return &BlkTmplGenerator{
		chainParams: chainParams,
		txSource:    txSource,
		chain:       chain,
	}
}

// standardCoinbaseScript returns a coinbase signature script committing to
// the block height, as required so that coinbase transactions at different
// heights hash differently, followed by the extra nonce.
func standardCoinbaseScript(nextHeight int32, extraNonce uint64) ([]byte,
	error) {

	return txscript.NewScriptBuilder().
		AddInt64(int64(nextHeight)).
		AddInt64(int64(extraNonce)).
		Script()
}

// createCoinbaseTx builds the reward-granting transaction for a block at
// the given height, paying the subsidy plus fees to payoutScript.
func createCoinbaseTx(coinbaseScript []byte, value int64,
	payoutScript []byte) *wire.MsgTx {

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		// Coinbase transactions have no inputs, so the previous
		// outpoint is the null reference.
		PreviousOutPoint: wire.OutPoint{
			Hash:  chainhash.Hash{},
			Index: math.MaxUint32,
		},
		SignatureScript: coinbaseScript,
		Sequence:        wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(wire.NewTxOut(value, payoutScript))

	return tx
}

// NewBlockTemplate builds a candidate block on top of the current chain
// tip, paying the reward to payoutScript. It requests the transaction set
// from the configured source, constructs the coinbase, sets the header time
// to the snapshot's median time plus one second, and computes the merkle
// root over the finalized transaction list.
//
// It does not mutate chain state and fails only if a collaborator fails;
// such failures are propagated, not masked.
func (g *BlkTmplGenerator) NewBlockTemplate(
	payoutScript []byte) (*BlockTemplate, error) {

	// The destination decoder upstream is assumed to have produced a
	// well formed script; an empty one indicates a bug there rather
	// than bad input.
	if len(payoutScript) == 0 {
		return nil, fmt.Errorf("empty payout script")
	}

	snapshot, err := g.chain.BestSnapshot()
	if err != nil {
		return nil, fmt.Errorf("chain snapshot: %w", err)
	}
	nextHeight := snapshot.Height + 1

	txDescs, totalFees, err := g.txSource.SelectTransactions(payoutScript)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	coinbaseScript, err := standardCoinbaseScript(nextHeight, 0)
	if err != nil {
		return nil, err
	}
	coinbaseValue := g.chainParams.BlockSubsidy(nextHeight) +
		int64(totalFees)
	coinbaseTx := createCoinbaseTx(
		coinbaseScript, coinbaseValue, payoutScript,
	)

	// The coinbase we just built must itself pass the context-free
	// checks; anything else is a construction bug.
	if err := consensus.CheckTransactionSanity(coinbaseTx); err != nil {
		return nil, fmt.Errorf("generated invalid coinbase: %w", err)
	}

	blockTxns := make([]*wire.MsgTx, 0, len(txDescs)+1)
	blockTxns = append(blockTxns, coinbaseTx)
	for _, desc := range txDescs {
		blockTxns = append(blockTxns, desc.Tx)
	}

	// The header time derives from the tip's median time past rather
	// than the wall clock, so repeated templates against the same tip
	// never regress below the consensus lower bound.
	blockTime := snapshot.MedianTime.Add(time.Second)

	block := wire.NewMsgBlock(&wire.BlockHeader{
		Version:    generatedBlockVersion,
		PrevBlock:  snapshot.Hash,
		MerkleRoot: consensus.CalcMerkleRoot(blockTxns),
		Timestamp:  blockTime,
		Bits:       snapshot.Bits,
	})
	for _, tx := range blockTxns {
		block.AddTransaction(tx)
	}

	log.Debugf("Created new block template (height %d, %d transactions, "+
		"%v fees)", nextHeight, len(block.Transactions), totalFees)

	return &BlockTemplate{
		Block:  block,
		Fees:   totalFees,
		Height: nextHeight,
	}, nil
}
