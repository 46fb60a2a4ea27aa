package wire

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// maxTxPerBlock is a sanity bound on the number of transactions a
// deserialized block may claim to carry.
const maxTxPerBlock = 100000

// MsgBlock represents a block: a header plus an ordered transaction list
// whose first element is the coinbase transaction.
type MsgBlock struct {
	Header       BlockHeader
	Transactions []*MsgTx
}

// NewMsgBlock returns a new block with the provided header and no
// transactions.
func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		Header: *header,
	}
}

// AddTransaction appends a transaction to the block.
func (b *MsgBlock) AddTransaction(tx *MsgTx) {
	b.Transactions = append(b.Transactions, tx)
}

// BlockHash computes the block's hash, which is the hash of its header.
func (b *MsgBlock) BlockHash() chainhash.Hash {
	return b.Header.BlockHash()
}

// TxHashes returns the ids of all transactions in the block, in block
// order.
func (b *MsgBlock) TxHashes() []chainhash.Hash {
	hashes := make([]chainhash.Hash, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		hashes = append(hashes, tx.TxHash())
	}
	return hashes
}

// Serialize encodes the block into w.
func (b *MsgBlock) Serialize(w io.Writer) error {
	if err := b.Header.Serialize(w); err != nil {
		return err
	}

	err := btcwire.WriteVarInt(
		w, ProtocolVersion, uint64(len(b.Transactions)),
	)
	if err != nil {
		return err
	}
	for _, tx := range b.Transactions {
		if err := tx.Serialize(w); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize decodes a block from r, replacing the receiver's fields.
func (b *MsgBlock) Deserialize(r io.Reader) error {
	if err := b.Header.Deserialize(r); err != nil {
		return err
	}

	count, err := btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return fmt.Errorf("too many transactions [%d]", count)
	}

	b.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := MsgTx{}
		if err := tx.Deserialize(r); err != nil {
			return err
		}
		b.Transactions = append(b.Transactions, &tx)
	}

	return nil
}
