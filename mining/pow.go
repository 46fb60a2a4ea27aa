package mining

import (
	"math/big"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/umbranet/umbrad/wire"
	"golang.org/x/crypto/blake2b"
)

// Solver is the combinatorial puzzle collaborator. Given the puzzle
// parameters and the 32 byte seed derived from the block header, an
// implementation searches its solution space and hands each candidate
// solution to accept. Returning true from accept stops the search with
// success; the solver reports whether any candidate was accepted.
type Solver interface {
	Solve(n, k uint32, seed []byte,
		accept func(solution []byte) bool) (bool, error)
}

// CheckProofOfWork returns whether the header's hash satisfies the given
// difficulty target.
func CheckProofOfWork(header *wire.BlockHeader, target *big.Int) bool {
	hash := header.BlockHash()
	return blockchain.HashToBig(&hash).Cmp(target) <= 0
}

// CompactToTarget converts compact difficulty bits into the big integer
// target they represent.
func CompactToTarget(bits uint32) *big.Int {
	return blockchain.CompactToBig(bits)
}

// powSeed derives the per-nonce puzzle seed: a BLAKE2b-256 digest over the
// header's fixed prefix (everything but nonce and solution) followed by the
// nonce bytes. The prefix is serialized once per block; only the trailing
// nonce bytes change between outer iterations.
type powSeed struct {
	input     []byte
	nonceOffs int
}

func newPowSeed(header *wire.BlockHeader) *powSeed {
	prefix := header.PoWInput()
	input := make([]byte, len(prefix)+len(header.Nonce))
	copy(input, prefix)

	return &powSeed{
		input:     input,
		nonceOffs: len(prefix),
	}
}

// seed returns the puzzle seed for the header's current nonce.
func (p *powSeed) seed(header *wire.BlockHeader) [blake2b.Size256]byte {
	copy(p.input[p.nonceOffs:], header.Nonce[:])
	return blake2b.Sum256(p.input)
}

// incrementNonce adds one to the little endian 256-bit nonce, wrapping on
// overflow. Wraparound is cosmetic: the nonce space is effectively
// unbounded for the search's purposes.
func incrementNonce(header *wire.BlockHeader) {
	for i := 0; i < len(header.Nonce); i++ {
		header.Nonce[i]++
		if header.Nonce[i] != 0 {
			return
		}
	}
}

// nonceLowBits returns the low 16 bits of the nonce, used only for the
// inner-loop bookkeeping bound.
func nonceLowBits(header *wire.BlockHeader) uint32 {
	return uint32(header.Nonce[0]) | uint32(header.Nonce[1])<<8
}
