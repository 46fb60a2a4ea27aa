package consensus

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of consensus rule violation. The set is
// closed: every rejection a transaction sanity check can produce maps to
// exactly one code, and the reason string attached to each is machine
// stable.
type ErrorCode int

const (
	// ErrEmptyInputs indicates a transaction carries neither transparent
	// inputs nor joinsplits.
	ErrEmptyInputs ErrorCode = iota

	// ErrEmptyOutputs indicates a transaction carries neither
	// transparent outputs nor shielded outputs of either kind.
	ErrEmptyOutputs

	// ErrOversize indicates a transaction's weighted serialized size
	// exceeds the maximum block weight.
	ErrOversize

	// ErrNegativeOutput indicates a transparent output with a negative
	// amount.
	ErrNegativeOutput

	// ErrOutputTooLarge indicates a transparent output above MaxMoney.
	ErrOutputTooLarge

	// ErrOutputTotalTooLarge indicates the running total of value
	// leaving the transparent pool left the valid money range.
	ErrOutputTotalTooLarge

	// ErrUnexpectedValueBalance indicates a non-zero value balance on a
	// transaction without shielded spends or outputs.
	ErrUnexpectedValueBalance

	// ErrValueBalanceTooLarge indicates a value balance outside the
	// valid money range.
	ErrValueBalanceTooLarge

	// ErrVpubOldNegative indicates a joinsplit with negative vpub_old.
	ErrVpubOldNegative

	// ErrVpubNewNegative indicates a joinsplit with negative vpub_new.
	ErrVpubNewNegative

	// ErrVpubOldTooLarge indicates a joinsplit vpub_old above MaxMoney.
	ErrVpubOldTooLarge

	// ErrVpubNewTooLarge indicates a joinsplit vpub_new above MaxMoney.
	ErrVpubNewTooLarge

	// ErrBothVpubsNonZero indicates a joinsplit with both vpub_old and
	// vpub_new non-zero. A joinsplit moves value in exactly one
	// direction.
	ErrBothVpubsNonZero

	// ErrInputTotalTooLarge indicates the running total of value
	// entering the transparent pool left the valid money range.
	ErrInputTotalTooLarge

	// ErrDuplicateInputs indicates two transparent inputs reference the
	// same previous outpoint.
	ErrDuplicateInputs

	// ErrDuplicateJoinSplitNullifiers indicates a nullifier repeats
	// across the transaction's joinsplit descriptions.
	ErrDuplicateJoinSplitNullifiers

	// ErrDuplicateSpendNullifiers indicates a nullifier repeats across
	// the transaction's shielded spend descriptions.
	ErrDuplicateSpendNullifiers

	// ErrBadCoinbaseScriptLen indicates a coinbase signature script
	// outside the accepted [2, 100] byte range.
	ErrBadCoinbaseScriptLen

	// ErrCoinbaseHasSpendDesc indicates a coinbase transaction carrying
	// shielded spend descriptions.
	ErrCoinbaseHasSpendDesc

	// ErrPrevoutNull indicates a non-coinbase transaction with a null
	// previous outpoint.
	ErrPrevoutNull

	// ErrSpendNullifierNull indicates a non-coinbase transaction with a
	// null shielded spend nullifier.
	ErrSpendNullifierNull
)

// errorCodeStrings maps error codes back to their constant names for
// logging and diagnostics.
var errorCodeStrings = map[ErrorCode]string{
	ErrEmptyInputs:                  "ErrEmptyInputs",
	ErrEmptyOutputs:                 "ErrEmptyOutputs",
	ErrOversize:                     "ErrOversize",
	ErrNegativeOutput:               "ErrNegativeOutput",
	ErrOutputTooLarge:               "ErrOutputTooLarge",
	ErrOutputTotalTooLarge:          "ErrOutputTotalTooLarge",
	ErrUnexpectedValueBalance:       "ErrUnexpectedValueBalance",
	ErrValueBalanceTooLarge:         "ErrValueBalanceTooLarge",
	ErrVpubOldNegative:              "ErrVpubOldNegative",
	ErrVpubNewNegative:              "ErrVpubNewNegative",
	ErrVpubOldTooLarge:              "ErrVpubOldTooLarge",
	ErrVpubNewTooLarge:              "ErrVpubNewTooLarge",
	ErrBothVpubsNonZero:             "ErrBothVpubsNonZero",
	ErrInputTotalTooLarge:           "ErrInputTotalTooLarge",
	ErrDuplicateInputs:              "ErrDuplicateInputs",
	ErrDuplicateJoinSplitNullifiers: "ErrDuplicateJoinSplitNullifiers",
	ErrDuplicateSpendNullifiers:     "ErrDuplicateSpendNullifiers",
	ErrBadCoinbaseScriptLen:         "ErrBadCoinbaseScriptLen",
	ErrCoinbaseHasSpendDesc:         "ErrCoinbaseHasSpendDesc",
	ErrPrevoutNull:                  "ErrPrevoutNull",
	ErrSpendNullifierNull:           "ErrSpendNullifierNull",
}

// String returns the ErrorCode as a human readable name.
func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a consensus rule violation. Rejection is
// deterministic and permanent for a given transaction's byte content, so a
// RuleError is never retried; the caller decides any downstream
// consequences such as peer ban scoring.
type RuleError struct {
	// ErrorCode is the machine-stable rejection reason.
	ErrorCode ErrorCode

	// Description is a human readable elaboration of the reason.
	Description string
}

// Error satisfies the error interface.
func (e RuleError) Error() string {
	return e.Description
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsRuleErrorCode returns whether err is a RuleError with the given code.
func IsRuleErrorCode(err error, c ErrorCode) bool {
	var rerr RuleError
	return errors.As(err, &rerr) && rerr.ErrorCode == c
}
