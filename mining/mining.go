package mining

import (
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/umbranet/umbrad/wire"
)

// TxDesc is a descriptor about a mempool transaction offered for inclusion
// in a new block, along with its metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *wire.MsgTx

	// Added is the time when the entry was added to the source pool.
	Added time.Time

	// Fee is the total fee the transaction pays.
	Fee btcutil.Amount
}

// TxSource represents a source of transactions to consider for inclusion in
// new blocks. The returned descriptors are already ordered and filtered by
// whatever policy the source applies; the template builder includes them
// as given.
//
// The interface contract requires that all of these methods are safe for
// concurrent access.
type TxSource interface {
	// SelectTransactions returns the ordered transactions to include in
	// a block paying the given reward destination script, along with
	// the total fees they pay.
	SelectTransactions(payoutScript []byte) ([]*TxDesc, btcutil.Amount,
		error)
}

// ChainSnapshot is the chain-tip state a block template is built against.
// It must be taken atomically, under the node's chain-state lock, so that a
// concurrent tip update cannot tear it mid-build. The lock does not need to
// be held beyond the snapshot: the proof-of-work search depends only on the
// captured values.
type ChainSnapshot struct {
	// Hash is the hash of the current best block header.
	Hash chainhash.Hash

	// Height is the height of the current best block.
	Height int32

	// Bits is the compact difficulty target the next block must meet.
	Bits uint32

	// MedianTime is the median time past of the current best block.
	MedianTime time.Time
}

// ChainSnapshotter provides atomic snapshots of the chain tip.
// Implementations are expected to acquire the chain-state lock for the
// duration of the snapshot.
type ChainSnapshotter interface {
	// BestSnapshot returns a snapshot of the current chain tip.
	BestSnapshot() (*ChainSnapshot, error)
}

// BlockAcceptor is the block acceptance pipeline: it fully validates a
// block and, on success, extends the best chain. It may acquire the
// chain-state lock exclusively, so callers must not invoke it while holding
// that lock themselves.
type BlockAcceptor interface {
	// ProcessBlock validates the block and extends the best chain with
	// it. It returns whether the block was accepted to the main chain,
	// and an error for anything malformed enough to fail outright.
	ProcessBlock(block *wire.MsgBlock) (bool, error)
}
