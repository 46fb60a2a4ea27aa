// genblocks mines blocks on an in-process regression test chain and prints
// the coinbase outpoint of each accepted block. It exists to exercise the
// template build, puzzle search and submission path end to end without a
// full node.
package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"
	"github.com/umbranet/umbrad/build"
	"github.com/umbranet/umbrad/chaincfg"
	"github.com/umbranet/umbrad/consensus"
	"github.com/umbranet/umbrad/mining"
	"github.com/umbranet/umbrad/wire"
)

type config struct {
	Address string `long:"address" description:"Reward address to pay mined coinbases to." required:"true"`

	NumBlocks uint32 `long:"numblocks" description:"Number of blocks to mine."`

	MaxTries uint64 `long:"maxtries" description:"Outer iteration budget per solve attempt."`

	DebugLevel string `long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems."`
}

// memChain is a minimal in-memory chain: a tip that advances when a valid
// block connects to it. It stands in for the real acceptance pipeline and
// chain-state store, holding the single read/write lock template building
// snapshots under.
type memChain struct {
	params *chaincfg.Params

	mtx     sync.RWMutex
	tipHash chainhash.Hash
	height  int32
	tipTime time.Time
}

func newMemChain(params *chaincfg.Params) *memChain {
	genesis := params.GenesisBlock()
	return &memChain{
		params:  params,
		tipHash: genesis.BlockHash(),
		tipTime: genesis.Header.Timestamp,
	}
}

// BestSnapshot implements mining.ChainSnapshotter.
func (c *memChain) BestSnapshot() (*mining.ChainSnapshot, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	return &mining.ChainSnapshot{
		Hash:       c.tipHash,
		Height:     c.height,
		Bits:       c.params.PowLimitBits,
		MedianTime: c.tipTime,
	}, nil
}

// ProcessBlock implements mining.BlockAcceptor with the subset of the
// acceptance rules this harness can check without a UTXO set: the block
// must extend the tip, meet its claimed target, commit to its transactions
// through the merkle root, and carry only sane transactions.
func (c *memChain) ProcessBlock(block *wire.MsgBlock) (bool, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	header := &block.Header
	if header.PrevBlock != c.tipHash {
		return false, nil
	}
	if !mining.CheckProofOfWork(
		header, mining.CompactToTarget(header.Bits),
	) {
		return false, nil
	}
	if header.MerkleRoot != consensus.CalcMerkleRoot(block.Transactions) {
		return false, nil
	}
	for _, tx := range block.Transactions {
		if err := consensus.CheckTransactionSanity(tx); err != nil {
			return false, err
		}
	}

	c.tipHash = block.BlockHash()
	c.height++
	c.tipTime = header.Timestamp

	return true, nil
}

// emptyTxSource is a transaction source with nothing to offer: every block
// carries only its coinbase.
type emptyTxSource struct{}

// SelectTransactions implements mining.TxSource.
func (emptyTxSource) SelectTransactions(_ []byte) ([]*mining.TxDesc,
	btcutil.Amount, error) {

	return nil, 0, nil
}

func main() {
	cfg := config{
		NumBlocks:  1,
		DebugLevel: "info",
	}
	if _, err := flags.Parse(&cfg); err != nil {
		os.Exit(1)
	}

	logManager := build.NewSubLoggerManager(btclog.NewBackend(os.Stdout))
	mining.UseLogger(logManager.GenSubLogger(mining.Subsystem))
	err := build.ParseAndSetDebugLevels(cfg.DebugLevel, logManager)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	params := &chaincfg.RegressionNetParams

	// Decode the reward destination into its spending script. A decoder
	// failure here is caller error; an empty script out of a successful
	// decode would be a decoder bug and is rejected by the template
	// builder.
	addr, err := btcutil.DecodeAddress(cfg.Address, params.Params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid reward address: %v\n", err)
		os.Exit(1)
	}
	payoutScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to build payout script: %v\n",
			err)
		os.Exit(1)
	}

	chain := newMemChain(params)
	generator := mining.NewBlkTmplGenerator(
		params, emptyTxSource{}, chain,
	)
	miner := mining.NewCPUMiner(&mining.Config{
		ChainParams:            params,
		BlockTemplateGenerator: generator,
		Solver: mining.NewRegSolver(
			params.EquihashSolutionSize(1),
		),
		Chain:    chain,
		MaxTries: cfg.MaxTries,
	})

	rewards, err := miner.GenerateNBlocks(cfg.NumBlocks, payoutScript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mining failed: %v\n", err)
		os.Exit(1)
	}

	for i, reward := range rewards {
		fmt.Printf("block %d coinbase: %v\n", i+1, reward)
	}
}
