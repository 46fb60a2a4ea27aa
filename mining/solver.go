package mining

import (
	"golang.org/x/crypto/blake2b"
)

// RegSolver is a stand-in puzzle solver for regression networks where full
// solution verification is disabled. It deterministically expands the seed
// into a single pseudo-solution of the correct serialized length and offers
// it to the accept callback, so a regression chain still exercises the
// whole search loop: nonce iteration, solution embedding, and the target
// check on the resulting block hash.
type RegSolver struct {
	// SolutionSize is the serialized solution length to produce,
	// matching the network's puzzle parameters.
	SolutionSize int
}

// NewRegSolver returns a regression solver producing solutions of the
// given serialized length.
func NewRegSolver(solutionSize int) *RegSolver {
	return &RegSolver{SolutionSize: solutionSize}
}

// Solve implements the Solver interface.
func (s *RegSolver) Solve(n, k uint32, seed []byte,
	accept func(solution []byte) bool) (bool, error) {

	solution := make([]byte, 0, s.SolutionSize)
	block := blake2b.Sum256(seed)
	for len(solution) < s.SolutionSize {
		remaining := s.SolutionSize - len(solution)
		if remaining > len(block) {
			remaining = len(block)
		}
		solution = append(solution, block[:remaining]...)
		block = blake2b.Sum256(block[:])
	}

	return accept(solution), nil
}
