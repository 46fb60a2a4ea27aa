package chaincfg

import (
	"math/big"
	"time"

	btcchaincfg "github.com/btcsuite/btcd/chaincfg"
)

var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowLimit is the highest proof of work value a mainnet block
	// can have.
	mainPowLimit = new(big.Int).Sub(
		new(big.Int).Lsh(bigOne, 251), bigOne,
	)

	// regressionPowLimit is the highest proof of work value a regression
	// test block can have. It is chosen so that essentially every hash
	// satisfies the target, keeping regression mining instant.
	regressionPowLimit = new(big.Int).Sub(
		new(big.Int).Lsh(bigOne, 255), bigOne,
	)
)

// Params defines the network parameters the consensus core depends on. The
// embedded btcsuite params supply the address encoding magic used by the
// destination decoder; the rest governs proof of work and block rewards.
type Params struct {
	*btcchaincfg.Params

	// PowLimit is the highest proof of work value a block can have,
	// i.e. the lowest admissible difficulty.
	PowLimit *big.Int

	// PowLimitBits is PowLimit in compact form.
	PowLimitBits uint32

	// EquihashN and EquihashK are the puzzle parameters in force from
	// genesis.
	EquihashN uint32
	EquihashK uint32

	// TargetTimePerBlock is the desired amount of time between blocks.
	TargetTimePerBlock time.Duration

	// SubsidyHalvingInterval is the number of blocks between subsidy
	// halvings.
	SubsidyHalvingInterval int32

	// BaseSubsidy is the starting block reward in base units, before
	// any halvings.
	BaseSubsidy int64

	// CoinbaseMaturity is the number of confirmations before a coinbase
	// reward can be spent.
	CoinbaseMaturity uint16
}

// EquihashParams returns the puzzle parameters (N, K) in force for a block
// at the given height. The schedule is currently flat per network, but the
// height argument keeps parameter upgrades a local change.
func (p *Params) EquihashParams(height int32) (uint32, uint32) {
	return p.EquihashN, p.EquihashK
}

// EquihashSolutionSize returns the serialized solution length in bytes for
// the puzzle parameters at the given height: 2^K indices of N/(K+1)+1 bits
// each.
func (p *Params) EquihashSolutionSize(height int32) int {
	n, k := p.EquihashParams(height)
	indices := 1 << k
	bitsPerIndex := n/(k+1) + 1
	return indices * int(bitsPerIndex) / 8
}

// BlockSubsidy returns the block reward in base units for a block at the
// given height, following the halving schedule.
func (p *Params) BlockSubsidy(height int32) int64 {
	halvings := uint(height / p.SubsidyHalvingInterval)

	// A shift of 64 or more would be undefined; the subsidy has long
	// reached zero by then.
	if halvings >= 64 {
		return 0
	}

	return p.BaseSubsidy >> halvings
}

// MainNetParams defines the network parameters for the main network.
var MainNetParams = Params{
	Params: &btcchaincfg.MainNetParams,

	PowLimit:     mainPowLimit,
	PowLimitBits: 0x1f07ffff,

	EquihashN: 200,
	EquihashK: 9,

	TargetTimePerBlock:     150 * time.Second,
	SubsidyHalvingInterval: 840_000,
	BaseSubsidy:            1_250_000_000,
	CoinbaseMaturity:       100,
}

// RegressionNetParams defines the network parameters for the regression
// test network. Blocks can be mined near instantly and with the small
// puzzle parameter set.
var RegressionNetParams = Params{
	Params: &btcchaincfg.RegressionNetParams,

	PowLimit:     regressionPowLimit,
	PowLimitBits: 0x207fffff,

	EquihashN: 48,
	EquihashK: 5,

	TargetTimePerBlock:     150 * time.Second,
	SubsidyHalvingInterval: 150,
	BaseSubsidy:            1_250_000_000,
	CoinbaseMaturity:       100,
}
