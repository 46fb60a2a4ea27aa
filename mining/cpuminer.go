package mining

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/umbranet/umbrad/chaincfg"
	"github.com/umbranet/umbrad/wire"
)

const (
	// innerLoopCount is the bound on the nonce's low bits per block
	// template. Once the masked nonce reaches it, the search gives the
	// caller a chance to refresh the template. This is policy, not a
	// correctness invariant.
	innerLoopCount = 0xffff

	// defaultMaxTries is the default outer iteration budget for a
	// single solve call. A production node would use a much larger or
	// unbounded budget; regression setups want a small deterministic
	// one.
	defaultMaxTries = 1_000_000
)

var (
	// ErrTriesExhausted is returned by SolveBlock when the try budget
	// runs out before a solution satisfies the target. It is an
	// expected outcome: the caller may retry with a refreshed template.
	ErrTriesExhausted = errors.New("proof of work tries exhausted")

	// ErrSolveCanceled is returned by SolveBlock when the quit channel
	// closes mid-search.
	ErrSolveCanceled = errors.New("proof of work search canceled")

	// ErrBlockRejected is returned when the acceptance pipeline rejects
	// a block the search solved. The search only produces blocks that
	// should pass acceptance, so this indicates a bug in template
	// construction or solving, not bad external input; callers must
	// treat it as fatal.
	ErrBlockRejected = errors.New("solved block rejected by acceptance " +
		"pipeline")
)

// SolveBlock searches the proof-of-work puzzle space for the candidate
// block, mutating the header's nonce and solution in place. The search
// iterates nonces, derives a puzzle seed per nonce from the header's fixed
// prefix, and runs the solver over it; each candidate solution the solver
// proposes is embedded in the header and tested against the target.
//
// The search returns nil once the header's hash meets the target,
// ErrTriesExhausted when maxTries outer iterations pass without a
// satisfying solution, and ErrSolveCanceled if quit closes. The quit
// channel is polled once per outer nonce iteration, so cancellation
// latency is bounded by a single solver run.
func SolveBlock(block *wire.MsgBlock, target *big.Int, maxTries uint64,
	n, k uint32, solver Solver, quit <-chan struct{}) error {

	header := &block.Header
	ps := newPowSeed(header)

	for maxTries > 0 && nonceLowBits(header) < innerLoopCount {
		select {
		case <-quit:
			return ErrSolveCanceled
		default:
		}

		incrementNonce(header)
		seed := ps.seed(header)

		found, err := solver.Solve(
			n, k, seed[:], func(solution []byte) bool {
				header.Solution = solution
				return CheckProofOfWork(header, target)
			},
		)
		if err != nil {
			return fmt.Errorf("puzzle solver: %w", err)
		}

		maxTries--
		if found {
			log.Debugf("Found solution for block %v (nonce low "+
				"bits %d)", block.BlockHash(),
				nonceLowBits(header))
			return nil
		}
	}

	return ErrTriesExhausted
}

// Config holds the configuration and collaborators the CPU miner needs.
type Config struct {
	// ChainParams identifies the network being mined.
	ChainParams *chaincfg.Params

	// BlockTemplateGenerator builds the candidate blocks to solve.
	BlockTemplateGenerator *BlkTmplGenerator

	// Solver is the puzzle solver to search with.
	Solver Solver

	// Chain is the acceptance pipeline solved blocks are submitted to.
	Chain BlockAcceptor

	// MaxTries is the outer iteration budget per solve attempt. Zero
	// selects the default.
	MaxTries uint64
}

// CPUMiner mines blocks on the CPU: it builds a template, runs the puzzle
// search over it single-threaded, and submits the solved block. It is a
// regression and bring-up tool, not a competitive miner.
type CPUMiner struct {
	cfg Config

	mtx     sync.Mutex
	started bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

// NewCPUMiner returns a new CPU miner for the provided configuration.
func NewCPUMiner(cfg *Config) *CPUMiner {
	m := &CPUMiner{
		cfg:  *cfg,
		quit: make(chan struct{}),
	}
	if m.cfg.MaxTries == 0 {
		m.cfg.MaxTries = defaultMaxTries
	}

	return m
}

// maxTries returns the configured per-attempt budget.
func (m *CPUMiner) maxTries() uint64 {
	return m.cfg.MaxTries
}

// quitChan returns the quit channel currently in effect. Start replaces
// the channel under the mutex, so readers must snapshot it through here
// rather than touch the field directly.
func (m *CPUMiner) quitChan() <-chan struct{} {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.quit
}

// solveTemplate runs the puzzle search over a freshly built template for
// the given payout script, observing the given quit channel.
func (m *CPUMiner) solveTemplate(payoutScript []byte,
	quit <-chan struct{}) (*BlockTemplate, error) {

	template, err := m.cfg.BlockTemplateGenerator.NewBlockTemplate(
		payoutScript,
	)
	if err != nil {
		return nil, fmt.Errorf("build block template: %w", err)
	}

	n, k := m.cfg.ChainParams.EquihashParams(template.Height)
	target := CompactToTarget(template.Block.Header.Bits)

	err = SolveBlock(
		template.Block, target, m.maxTries(), n, k, m.cfg.Solver,
		quit,
	)
	if err != nil {
		return nil, err
	}

	return template, nil
}

// submitBlock hands a solved block to the acceptance pipeline and returns
// the outpoint of the newly minted reward: the coinbase transaction id at
// output index zero.
//
// The pipeline rejecting a solved block is a programming invariant
// violation, reported as ErrBlockRejected; see that error for the
// rationale.
func (m *CPUMiner) submitBlock(block *wire.MsgBlock) (wire.OutPoint, error) {
	accepted, err := m.cfg.Chain.ProcessBlock(block)
	if err != nil {
		return wire.OutPoint{}, fmt.Errorf("process block: %w", err)
	}
	if !accepted {
		log.Criticalf("Block %v solved by the miner was rejected "+
			"by the acceptance pipeline", block.BlockHash())
		return wire.OutPoint{}, ErrBlockRejected
	}

	coinbaseHash := block.Transactions[0].TxHash()
	log.Infof("Block submitted and accepted (hash %v, coinbase %v)",
		block.BlockHash(), coinbaseHash)

	return wire.OutPoint{Hash: coinbaseHash, Index: 0}, nil
}

// GenerateNBlocks mines the requested number of blocks paying the given
// reward script and returns the coinbase outpoints of the accepted blocks,
// in order. An exhausted try budget refreshes the template and keeps
// going; Stop, a collaborator failure, or a rejected block end the run
// early.
//
// The run observes the quit channel in effect when it starts: Stop cancels
// it, and a run begun after Stop ends immediately with ErrSolveCanceled.
func (m *CPUMiner) GenerateNBlocks(numBlocks uint32,
	payoutScript []byte) ([]wire.OutPoint, error) {

	log.Infof("Generating %d blocks", numBlocks)

	quit := m.quitChan()

	rewards := make([]wire.OutPoint, 0, numBlocks)
	for uint32(len(rewards)) < numBlocks {
		select {
		case <-quit:
			return rewards, ErrSolveCanceled
		default:
		}

		template, err := m.solveTemplate(payoutScript, quit)
		switch {
		// Try budget ran out: build a fresh template (new
		// transactions, new median time) and try again.
		case errors.Is(err, ErrTriesExhausted):
			log.Debugf("Try budget exhausted, refreshing " +
				"template")
			continue

		case err != nil:
			return rewards, err
		}

		reward, err := m.submitBlock(template.Block)
		if err != nil {
			return rewards, err
		}
		rewards = append(rewards, reward)
	}

	return rewards, nil
}

// Start launches the miner's continuous mining loop paying payoutScript.
// It has no effect when the miner is already running.
func (m *CPUMiner) Start(payoutScript []byte) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.started {
		return
	}
	m.started = true
	m.quit = make(chan struct{})

	log.Info("CPU miner started")

	m.wg.Add(1)
	go m.generateBlocks(payoutScript, m.quit)
}

// Stop signals the miner to shut down and blocks until the mining loop has
// exited. A search in flight notices the signal at its next outer nonce
// iteration.
func (m *CPUMiner) Stop() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.started {
		return
	}

	close(m.quit)
	m.wg.Wait()
	m.started = false

	log.Info("CPU miner stopped")
}

// generateBlocks mines and submits blocks until the quit channel closes or
// an invariant violation aborts the run.
func (m *CPUMiner) generateBlocks(payoutScript []byte,
	quit <-chan struct{}) {

	defer m.wg.Done()

	for {
		select {
		case <-quit:
			return
		default:
		}

		template, err := m.solveTemplate(payoutScript, quit)
		switch {
		case errors.Is(err, ErrTriesExhausted):
			continue

		case errors.Is(err, ErrSolveCanceled):
			return

		case err != nil:
			log.Errorf("Unable to mine block: %v", err)
			return
		}

		if _, err := m.submitBlock(template.Block); err != nil {
			log.Errorf("Aborting mining loop: %v", err)
			return
		}
	}
}
