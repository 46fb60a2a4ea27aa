package wire

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

const (
	// TxVersion is the current transaction version supported by this
	// codebase. Version 4 transactions carry the shielded spend/output
	// descriptions and the value balance field.
	TxVersion int32 = 4

	// MaxTxInSequenceNum is the maximum sequence number a transaction
	// input can carry.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// NumJoinSplitNullifiers is the number of nullifiers revealed by a
	// single legacy joinsplit description.
	NumJoinSplitNullifiers = 2

	// maxTxInPerMessage is a sanity bound on the number of inputs a
	// deserialized transaction may claim to carry.
	maxTxInPerMessage = 65536

	// maxTxOutPerMessage is a sanity bound on the number of outputs a
	// deserialized transaction may claim to carry.
	maxTxOutPerMessage = 65536

	// maxShieldedPerMessage is a sanity bound on the number of shielded
	// descriptions of each kind a deserialized transaction may claim to
	// carry.
	maxShieldedPerMessage = 65536

	// maxScriptSize is the maximum script size accepted during
	// deserialization.
	maxScriptSize = 10000
)

// OutPoint defines a reference to a previous transaction output as a
// (transaction id, output index) pair.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint with the provided hash and
// index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// IsNull returns whether the outpoint is the null reference used by the
// coinbase input, i.e. a zero hash with the maximum index.
func (o *OutPoint) IsNull() bool {
	return o.Index == math.MaxUint32 && o.Hash == chainhash.Hash{}
}

// String returns the outpoint in the human readable form "hash:index".
func (o OutPoint) String() string {
	return fmt.Sprintf("%v:%d", o.Hash, o.Index)
}

// TxIn defines a transparent transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// NewTxIn returns a new transparent transaction input with the provided
// previous outpoint and signature script, and the default sequence.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a transparent transaction output carrying an amount in base
// units and the script encumbering it.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// NewTxOut returns a new transparent transaction output with the provided
// amount and spending script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// JSDescription is a legacy joinsplit description. VPubOld is value leaving
// the transparent pool into the legacy shielded pool and VPubNew is value
// returning from it; consensus requires at most one of the two to be
// non-zero. The nullifiers mark the shielded notes spent by the joinsplit.
type JSDescription struct {
	VPubOld    int64
	VPubNew    int64
	Nullifiers [NumJoinSplitNullifiers]chainhash.Hash
}

// SpendDescription is a modern shielded spend. Only the nullifier is visible
// at this layer; the zero-knowledge proof material lives with the proof
// verification collaborator.
type SpendDescription struct {
	Nullifier chainhash.Hash
}

// OutputDescription is a modern shielded output. The note commitment is
// opaque at this layer.
type OutputDescription struct {
	CMU chainhash.Hash
}

// MsgTx represents a transaction. A transaction moves value between the
// transparent pool and the two shielded pools: transparent inputs/outputs,
// legacy joinsplits, and modern spend/output descriptions whose net
// transparent effect is summarized by ValueBalance (positive means value
// enters the transparent pool).
//
// A MsgTx is immutable once constructed as far as consensus checking is
// concerned; the validity of a transaction is a pure function of its fields.
type MsgTx struct {
	Version         int32
	TxIn            []*TxIn
	TxOut           []*TxOut
	LockTime        uint32
	ValueBalance    int64
	JoinSplits      []*JSDescription
	ShieldedSpends  []*SpendDescription
	ShieldedOutputs []*OutputDescription
}

// NewMsgTx returns a transaction with the provided version and no inputs or
// outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{
		Version: version,
	}
}

// AddTxIn appends a transparent input to the transaction.
func (tx *MsgTx) AddTxIn(ti *TxIn) {
	tx.TxIn = append(tx.TxIn, ti)
}

// AddTxOut appends a transparent output to the transaction.
func (tx *MsgTx) AddTxOut(to *TxOut) {
	tx.TxOut = append(tx.TxOut, to)
}

// Serialize encodes the transaction into w using the canonical little
// endian format that is also the hashing preimage.
func (tx *MsgTx) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(tx.Version)); err != nil {
		return err
	}

	err := btcwire.WriteVarInt(w, ProtocolVersion, uint64(len(tx.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range tx.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	err = btcwire.WriteVarInt(w, ProtocolVersion, uint64(len(tx.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range tx.TxOut {
		if err := writeTxOut(w, to); err != nil {
			return err
		}
	}

	if err := writeUint32(w, tx.LockTime); err != nil {
		return err
	}
	if err := writeInt64(w, tx.ValueBalance); err != nil {
		return err
	}

	err = btcwire.WriteVarInt(
		w, ProtocolVersion, uint64(len(tx.ShieldedSpends)),
	)
	if err != nil {
		return err
	}
	for _, sd := range tx.ShieldedSpends {
		if err := writeHash(w, &sd.Nullifier); err != nil {
			return err
		}
	}

	err = btcwire.WriteVarInt(
		w, ProtocolVersion, uint64(len(tx.ShieldedOutputs)),
	)
	if err != nil {
		return err
	}
	for _, od := range tx.ShieldedOutputs {
		if err := writeHash(w, &od.CMU); err != nil {
			return err
		}
	}

	err = btcwire.WriteVarInt(
		w, ProtocolVersion, uint64(len(tx.JoinSplits)),
	)
	if err != nil {
		return err
	}
	for _, js := range tx.JoinSplits {
		if err := writeJSDescription(w, js); err != nil {
			return err
		}
	}

	return nil
}

// Deserialize decodes a transaction from r, replacing the receiver's fields.
func (tx *MsgTx) Deserialize(r io.Reader) error {
	version, err := readUint32(r)
	if err != nil {
		return err
	}
	tx.Version = int32(version)

	count, err := btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxTxInPerMessage {
		return fmt.Errorf("too many inputs [%d]", count)
	}
	tx.TxIn = make([]*TxIn, 0, count)
	for i := uint64(0); i < count; i++ {
		ti := TxIn{}
		if err := readTxIn(r, &ti); err != nil {
			return err
		}
		tx.TxIn = append(tx.TxIn, &ti)
	}

	count, err = btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxTxOutPerMessage {
		return fmt.Errorf("too many outputs [%d]", count)
	}
	tx.TxOut = make([]*TxOut, 0, count)
	for i := uint64(0); i < count; i++ {
		to := TxOut{}
		if err := readTxOut(r, &to); err != nil {
			return err
		}
		tx.TxOut = append(tx.TxOut, &to)
	}

	if tx.LockTime, err = readUint32(r); err != nil {
		return err
	}
	if tx.ValueBalance, err = readInt64(r); err != nil {
		return err
	}

	count, err = btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxShieldedPerMessage {
		return fmt.Errorf("too many shielded spends [%d]", count)
	}
	tx.ShieldedSpends = make([]*SpendDescription, 0, count)
	for i := uint64(0); i < count; i++ {
		sd := SpendDescription{}
		if err := readHash(r, &sd.Nullifier); err != nil {
			return err
		}
		tx.ShieldedSpends = append(tx.ShieldedSpends, &sd)
	}

	count, err = btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxShieldedPerMessage {
		return fmt.Errorf("too many shielded outputs [%d]", count)
	}
	tx.ShieldedOutputs = make([]*OutputDescription, 0, count)
	for i := uint64(0); i < count; i++ {
		od := OutputDescription{}
		if err := readHash(r, &od.CMU); err != nil {
			return err
		}
		tx.ShieldedOutputs = append(tx.ShieldedOutputs, &od)
	}

	count, err = btcwire.ReadVarInt(r, ProtocolVersion)
	if err != nil {
		return err
	}
	if count > maxShieldedPerMessage {
		return fmt.Errorf("too many joinsplits [%d]", count)
	}
	tx.JoinSplits = make([]*JSDescription, 0, count)
	for i := uint64(0); i < count; i++ {
		js := JSDescription{}
		if err := readJSDescription(r, &js); err != nil {
			return err
		}
		tx.JoinSplits = append(tx.JoinSplits, &js)
	}

	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction.
func (tx *MsgTx) SerializeSize() int {
	// Version, lock time and value balance.
	n := 4 + 4 + 8

	n += btcwire.VarIntSerializeSize(uint64(len(tx.TxIn)))
	for _, ti := range tx.TxIn {
		n += chainhash.HashSize + 4 + 4 +
			btcwire.VarIntSerializeSize(
				uint64(len(ti.SignatureScript)),
			) +
			len(ti.SignatureScript)
	}

	n += btcwire.VarIntSerializeSize(uint64(len(tx.TxOut)))
	for _, to := range tx.TxOut {
		n += 8 +
			btcwire.VarIntSerializeSize(uint64(len(to.PkScript))) +
			len(to.PkScript)
	}

	n += btcwire.VarIntSerializeSize(uint64(len(tx.ShieldedSpends)))
	n += len(tx.ShieldedSpends) * chainhash.HashSize

	n += btcwire.VarIntSerializeSize(uint64(len(tx.ShieldedOutputs)))
	n += len(tx.ShieldedOutputs) * chainhash.HashSize

	n += btcwire.VarIntSerializeSize(uint64(len(tx.JoinSplits)))
	n += len(tx.JoinSplits) *
		(8 + 8 + NumJoinSplitNullifiers*chainhash.HashSize)

	return n
}

// TxHash computes the transaction id, the double SHA-256 of the canonical
// serialization.
func (tx *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	buf.Grow(tx.SerializeSize())

	// Serialization into a bytes.Buffer cannot fail.
	_ = tx.Serialize(&buf)

	return chainhash.DoubleHashH(buf.Bytes())
}

func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeHash(w, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}
	if err := writeUint32(w, ti.PreviousOutPoint.Index); err != nil {
		return err
	}
	err := btcwire.WriteVarBytes(
		w, ProtocolVersion, ti.SignatureScript,
	)
	if err != nil {
		return err
	}
	return writeUint32(w, ti.Sequence)
}

func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readHash(r, &ti.PreviousOutPoint.Hash); err != nil {
		return err
	}

	index, err := readUint32(r)
	if err != nil {
		return err
	}
	ti.PreviousOutPoint.Index = index

	ti.SignatureScript, err = btcwire.ReadVarBytes(
		r, ProtocolVersion, maxScriptSize, "signature script",
	)
	if err != nil {
		return err
	}

	ti.Sequence, err = readUint32(r)
	return err
}

func writeTxOut(w io.Writer, to *TxOut) error {
	if err := writeInt64(w, to.Value); err != nil {
		return err
	}
	return btcwire.WriteVarBytes(w, ProtocolVersion, to.PkScript)
}

func readTxOut(r io.Reader, to *TxOut) error {
	value, err := readInt64(r)
	if err != nil {
		return err
	}
	to.Value = value

	to.PkScript, err = btcwire.ReadVarBytes(
		r, ProtocolVersion, maxScriptSize, "pk script",
	)
	return err
}

func writeJSDescription(w io.Writer, js *JSDescription) error {
	if err := writeInt64(w, js.VPubOld); err != nil {
		return err
	}
	if err := writeInt64(w, js.VPubNew); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if err := writeHash(w, &js.Nullifiers[i]); err != nil {
			return err
		}
	}
	return nil
}

func readJSDescription(r io.Reader, js *JSDescription) error {
	var err error
	if js.VPubOld, err = readInt64(r); err != nil {
		return err
	}
	if js.VPubNew, err = readInt64(r); err != nil {
		return err
	}
	for i := range js.Nullifiers {
		if err := readHash(r, &js.Nullifiers[i]); err != nil {
			return err
		}
	}
	return nil
}
