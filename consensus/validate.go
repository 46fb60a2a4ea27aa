package consensus

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/umbranet/umbrad/wire"
)

const (
	// MaxBlockWeight is the maximum allowed weight for a block.
	MaxBlockWeight = 4_000_000

	// WitnessScaleFactor scales a transaction's witness-stripped
	// serialized size into its weight.
	WitnessScaleFactor = 4

	// MinCoinbaseScriptLen is the minimum length in bytes of a coinbase
	// signature script.
	MinCoinbaseScriptLen = 2

	// MaxCoinbaseScriptLen is the maximum length in bytes of a coinbase
	// signature script.
	MaxCoinbaseScriptLen = 100
)

// zeroHash is the all-zero hash, the null value for nullifiers.
var zeroHash chainhash.Hash

// IsCoinBaseTx determines whether a transaction is a coinbase: exactly one
// transparent input whose previous outpoint is the null reference.
func IsCoinBaseTx(tx *wire.MsgTx) bool {
	if len(tx.TxIn) != 1 {
		return false
	}
	return tx.TxIn[0].PreviousOutPoint.IsNull()
}

// CheckTransactionSanity performs the context-free consensus checks on a
// transaction: everything that can be decided from the transaction's own
// fields without any chain state. It returns nil for a structurally valid
// transaction and a RuleError carrying the first violated rule otherwise.
//
// The check order is fixed so that the reported reason is deterministic
// when several rules are violated at once. Any order would be
// consensus-safe, since every violation rejects.
//
// Two running totals are kept: the value leaving the transparent pool
// (outputs, a negative value balance, joinsplit vpub_old) and,
// independently, the value entering it (joinsplit vpub_new, a positive
// value balance). Every single addition is range checked through
// ValuePoolAdd before the next one, so no intermediate sum can wrap.
//
// The function is pure and reads only its argument; it is safe to call
// concurrently from any number of goroutines.
func CheckTransactionSanity(tx *wire.MsgTx) error {
	// A transaction must take value from somewhere and send it
	// somewhere. Transparent inputs and joinsplits can fund it;
	// transparent outputs, joinsplit commitments and shielded outputs
	// can receive.
	if len(tx.TxIn) == 0 && len(tx.JoinSplits) == 0 {
		return ruleError(ErrEmptyInputs,
			"transaction has no inputs")
	}
	if len(tx.TxOut) == 0 && len(tx.JoinSplits) == 0 &&
		len(tx.ShieldedOutputs) == 0 {

		return ruleError(ErrEmptyOutputs,
			"transaction has no outputs")
	}

	// Size limit. The serialized size here excludes separately weighted
	// witness data, so it is scaled by the witness factor before being
	// compared against the block weight ceiling.
	weight := tx.SerializeSize() * WitnessScaleFactor
	if weight > MaxBlockWeight {
		return ruleError(ErrOversize, fmt.Sprintf(
			"transaction weight of %d is higher than max %d",
			weight, MaxBlockWeight))
	}

	// Check for negative or overflowing output values. The running
	// total valueOut accumulates everything leaving the transparent
	// pool.
	var valueOut int64
	for i, txOut := range tx.TxOut {
		if txOut.Value < 0 {
			return ruleError(ErrNegativeOutput, fmt.Sprintf(
				"transaction output %d has negative value %d",
				i, txOut.Value))
		}
		if txOut.Value > MaxMoney {
			return ruleError(ErrOutputTooLarge, fmt.Sprintf(
				"transaction output %d value of %d is higher "+
					"than max %d", i, txOut.Value,
				MaxMoney))
		}

		var err error
		valueOut, err = ValuePoolAdd(valueOut, txOut.Value)
		if err != nil {
			return ruleError(ErrOutputTotalTooLarge, fmt.Sprintf(
				"total output value %d+%d outside valid "+
					"range", valueOut, txOut.Value))
		}
	}

	// A transaction without modern shielded spends or outputs has no
	// business moving value across the shielded boundary.
	if len(tx.ShieldedSpends) == 0 && len(tx.ShieldedOutputs) == 0 &&
		tx.ValueBalance != 0 {

		return ruleError(ErrUnexpectedValueBalance, fmt.Sprintf(
			"non-zero value balance %d without shielded spends "+
				"or outputs", tx.ValueBalance))
	}
	if !MoneyRange(tx.ValueBalance) {
		return ruleError(ErrValueBalanceTooLarge, fmt.Sprintf(
			"value balance %d outside valid range",
			tx.ValueBalance))
	}

	// A negative value balance takes value from the transparent pool
	// just as outputs do.
	if tx.ValueBalance <= 0 {
		var err error
		valueOut, err = ValuePoolAdd(valueOut, -tx.ValueBalance)
		if err != nil {
			return ruleError(ErrOutputTotalTooLarge, fmt.Sprintf(
				"total output value with value balance %d "+
					"outside valid range",
				tx.ValueBalance))
		}
	}

	// Joinsplit amounts must be individually well formed, and a single
	// joinsplit moves value in exactly one direction. Its vpub_old
	// leaves the transparent pool.
	for i, js := range tx.JoinSplits {
		if js.VPubOld < 0 {
			return ruleError(ErrVpubOldNegative, fmt.Sprintf(
				"joinsplit %d has negative vpub_old %d",
				i, js.VPubOld))
		}
		if js.VPubNew < 0 {
			return ruleError(ErrVpubNewNegative, fmt.Sprintf(
				"joinsplit %d has negative vpub_new %d",
				i, js.VPubNew))
		}
		if js.VPubOld > MaxMoney {
			return ruleError(ErrVpubOldTooLarge, fmt.Sprintf(
				"joinsplit %d vpub_old of %d is higher than "+
					"max %d", i, js.VPubOld, MaxMoney))
		}
		if js.VPubNew > MaxMoney {
			return ruleError(ErrVpubNewTooLarge, fmt.Sprintf(
				"joinsplit %d vpub_new of %d is higher than "+
					"max %d", i, js.VPubNew, MaxMoney))
		}
		if js.VPubNew != 0 && js.VPubOld != 0 {
			return ruleError(ErrBothVpubsNonZero, fmt.Sprintf(
				"joinsplit %d has both vpub_old and "+
					"vpub_new non-zero", i))
		}

		var err error
		valueOut, err = ValuePoolAdd(valueOut, js.VPubOld)
		if err != nil {
			return ruleError(ErrOutputTotalTooLarge, fmt.Sprintf(
				"total output value with joinsplit %d "+
					"vpub_old outside valid range", i))
		}
	}

	// Transparent input values are unknown without chain state, but the
	// joinsplits declare what they add to the transparent pool. Track
	// that in an independent running total.
	var valueIn int64
	for i, js := range tx.JoinSplits {
		var err error
		valueIn, err = ValuePoolAdd(valueIn, js.VPubNew)
		if err != nil {
			return ruleError(ErrInputTotalTooLarge, fmt.Sprintf(
				"total input value with joinsplit %d "+
					"vpub_new outside valid range", i))
		}
	}

	// A positive value balance adds value to the transparent pool just
	// as inputs do.
	if tx.ValueBalance >= 0 {
		var err error
		valueIn, err = ValuePoolAdd(valueIn, tx.ValueBalance)
		if err != nil {
			return ruleError(ErrInputTotalTooLarge, fmt.Sprintf(
				"total input value with value balance %d "+
					"outside valid range",
				tx.ValueBalance))
		}
	}

	// A transaction spending the same prevout twice would either crash
	// the coins view or mint value, depending on how the backing store
	// handles the double mark. Reject it outright.
	prevOuts := fn.NewSet[wire.OutPoint]()
	for _, txIn := range tx.TxIn {
		if prevOuts.Contains(txIn.PreviousOutPoint) {
			return ruleError(ErrDuplicateInputs, fmt.Sprintf(
				"transaction contains duplicate prevout %v",
				txIn.PreviousOutPoint))
		}
		prevOuts.Add(txIn.PreviousOutPoint)
	}

	// The legacy and modern shielded pools account nullifiers in
	// separate namespaces: a repeat within either pool is a double
	// spend, but the same value appearing once in each is not.
	jsNullifiers := fn.NewSet[chainhash.Hash]()
	for _, js := range tx.JoinSplits {
		for _, nf := range js.Nullifiers {
			if jsNullifiers.Contains(nf) {
				return ruleError(
					ErrDuplicateJoinSplitNullifiers,
					fmt.Sprintf("transaction contains "+
						"duplicate joinsplit "+
						"nullifier %v", nf))
			}
			jsNullifiers.Add(nf)
		}
	}

	spendNullifiers := fn.NewSet[chainhash.Hash]()
	for _, sd := range tx.ShieldedSpends {
		if spendNullifiers.Contains(sd.Nullifier) {
			return ruleError(ErrDuplicateSpendNullifiers,
				fmt.Sprintf("transaction contains duplicate "+
					"spend nullifier %v", sd.Nullifier))
		}
		spendNullifiers.Add(sd.Nullifier)
	}

	if IsCoinBaseTx(tx) {
		scriptLen := len(tx.TxIn[0].SignatureScript)
		if scriptLen < MinCoinbaseScriptLen ||
			scriptLen > MaxCoinbaseScriptLen {

			return ruleError(ErrBadCoinbaseScriptLen,
				fmt.Sprintf("coinbase signature script "+
					"length of %d is out of range [%d, "+
					"%d]", scriptLen,
					MinCoinbaseScriptLen,
					MaxCoinbaseScriptLen))
		}

		// A coinbase creates value; it cannot also spend shielded
		// notes.
		if len(tx.ShieldedSpends) > 0 {
			return ruleError(ErrCoinbaseHasSpendDesc,
				"coinbase transaction has shielded spend "+
					"descriptions")
		}
	} else {
		for i, txIn := range tx.TxIn {
			if txIn.PreviousOutPoint.IsNull() {
				return ruleError(ErrPrevoutNull, fmt.Sprintf(
					"transaction input %d refers to a "+
						"null previous outpoint", i))
			}
		}

		for i, sd := range tx.ShieldedSpends {
			if sd.Nullifier == zeroHash {
				return ruleError(ErrSpendNullifierNull,
					fmt.Sprintf("shielded spend %d has "+
						"a null nullifier", i))
			}
		}
	}

	return nil
}
