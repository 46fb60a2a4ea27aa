package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// MaxSolutionSize is the largest serialized puzzle solution accepted during
// deserialization. The mainnet parameters (N=200, K=9) produce 1344 byte
// solutions; smaller parameter sets produce shorter ones.
const MaxSolutionSize = 1344

// BlockHeader defines a block header. Unlike a bitcoin header, the nonce is
// a full 256-bit value and the header carries the serialized puzzle solution
// found by the proof-of-work search.
type BlockHeader struct {
	// Version of the block.
	Version int32

	// PrevBlock is the hash of the previous block header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot is the merkle root over the block's transaction ids.
	MerkleRoot chainhash.Hash

	// Timestamp is the block time. Only second precision survives
	// serialization.
	Timestamp time.Time

	// Bits is the difficulty target in compact form.
	Bits uint32

	// Nonce is the 256-bit value incremented by the proof-of-work search.
	Nonce chainhash.Hash

	// Solution is the serialized puzzle solution proving the work.
	Solution []byte
}

// BlockHash computes the block hash, the double SHA-256 of the full header
// serialization including nonce and solution.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer

	// Serialization into a bytes.Buffer cannot fail.
	_ = h.Serialize(&buf)

	return chainhash.DoubleHashH(buf.Bytes())
}

// Serialize encodes the full header into w.
func (h *BlockHeader) Serialize(w io.Writer) error {
	if err := h.SerializePoWInput(w); err != nil {
		return err
	}
	if err := writeHash(w, &h.Nonce); err != nil {
		return err
	}
	return btcwire.WriteVarBytes(w, ProtocolVersion, h.Solution)
}

// SerializePoWInput encodes the header without the nonce and solution
// fields. These bytes are the fixed prefix of the proof-of-work hash state:
// the search engine hashes them once and then extends the state with each
// candidate nonce.
func (h *BlockHeader) SerializePoWInput(w io.Writer) error {
	if err := writeUint32(w, uint32(h.Version)); err != nil {
		return err
	}
	if err := writeHash(w, &h.PrevBlock); err != nil {
		return err
	}
	if err := writeHash(w, &h.MerkleRoot); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	return writeUint32(w, h.Bits)
}

// PoWInput returns the serialized fixed prefix of the header as a byte
// slice.
func (h *BlockHeader) PoWInput() []byte {
	var buf bytes.Buffer
	_ = h.SerializePoWInput(&buf)
	return buf.Bytes()
}

// Deserialize decodes a full header from r.
func (h *BlockHeader) Deserialize(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Version = int32(version)

	if err := readHash(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := readHash(r, &h.MerkleRoot); err != nil {
		return err
	}

	ts, err := readUint32(r)
	if err != nil {
		return err
	}
	h.Timestamp = time.Unix(int64(ts), 0)

	if h.Bits, err = readUint32(r); err != nil {
		return err
	}
	if err := readHash(r, &h.Nonce); err != nil {
		return err
	}

	h.Solution, err = btcwire.ReadVarBytes(
		r, ProtocolVersion, MaxSolutionSize, "solution",
	)
	return err
}
