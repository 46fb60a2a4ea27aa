package consensus

import "errors"

const (
	// BaseUnitsPerCoin is the number of base monetary units in one coin.
	BaseUnitsPerCoin = 100_000_000

	// MaxCoins is the total supply ceiling, in coins.
	MaxCoins = 21_000_000

	// MaxMoney is the total supply ceiling in base units. No running
	// value total inside a valid transaction may leave the interval
	// [-MaxMoney, MaxMoney].
	MaxMoney = MaxCoins * BaseUnitsPerCoin
)

var (
	// ErrAmountOutOfRange is returned by ValuePoolAdd when the amount
	// being added is itself outside [0, MaxMoney].
	ErrAmountOutOfRange = errors.New("amount outside valid money range")

	// ErrTotalOutOfRange is returned by ValuePoolAdd when the running
	// total would leave [-MaxMoney, MaxMoney]. Callers map the two
	// errors to distinct rejection reasons, so they must stay separate.
	ErrTotalOutOfRange = errors.New("value pool total outside valid " +
		"money range")
)

// MoneyRange returns whether v lies within the closed monetary interval
// [-MaxMoney, MaxMoney].
func MoneyRange(v int64) bool {
	return v >= -MaxMoney && v <= MaxMoney
}

// ValuePoolAdd adds a pool-entry amount to a running value pool total,
// rejecting the addition rather than wrapping. The amount must lie in
// [0, MaxMoney] and the resulting total in [-MaxMoney, MaxMoney]. The two
// failure modes are reported as distinct errors.
//
// The bound on |total| guarantees total+amount cannot overflow int64, so
// the range check on the sum is sufficient.
func ValuePoolAdd(total, amount int64) (int64, error) {
	if amount < 0 || amount > MaxMoney {
		return 0, ErrAmountOutOfRange
	}

	total += amount
	if !MoneyRange(total) {
		return 0, ErrTotalOutOfRange
	}

	return total, nil
}
