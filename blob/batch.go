package blob

import (
	"errors"
	"fmt"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"golang.org/x/crypto/sha3"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

// Blob batching folds every blob of an epoch into one opening obligation via
// a random linear combination: with challenges z and gamma bound to the
// ordered sequence of blob commitments,
//
//	C = sum_i gamma^i * C_i
//	y = sum_i gamma^i * p_i(z)
//	Q = sum_i gamma^i * Q_i
//
// is itself a valid KZG opening (C, z, y, Q), verified with one pairing
// check. The challenges depend only on commitments, never on proofs, so they
// are computable as soon as the epoch's blob contents are known, decoupling
// challenge derivation from proof generation order.

const (
	batchZDomain     = "aztec-blob-batch-z"
	batchGammaDomain = "aztec-blob-batch-gamma"
)

var (
	// ErrEmptyAccumulator is returned when finalizing before any blob was
	// folded in. The protocol publishes at least one blob per epoch.
	ErrEmptyAccumulator = errors.New("blob: no blobs accumulated")

	// ErrAccumulatorFinalized rejects folding into a finalized accumulator.
	ErrAccumulatorFinalized = errors.New("blob: accumulator already finalized")

	// ErrChallengeMismatch is returned when the accumulated blob sequence
	// does not reproduce the precomputed batching challenges.
	ErrChallengeMismatch = errors.New("blob: accumulated blobs do not match precomputed challenges")
)

// FinalBlobBatchingChallenges are the epoch-wide evaluation point and folding
// challenge, derived from the ordered blob commitments alone.
type FinalBlobBatchingChallenges struct {
	Z     fields.Field
	Gamma fields.Field
}

// commitmentsHashChain extends a running hash with one commitment:
// h' = SHA3-256(h || C).
func commitmentsHashChain(h [32]byte, c Commitment) [32]byte {
	d := sha3.New256()
	d.Write(h[:])
	d.Write(c[:])
	var out [32]byte
	copy(out[:], d.Sum(nil))
	return out
}

func challengesFromHash(h [32]byte) FinalBlobBatchingChallenges {
	return FinalBlobBatchingChallenges{
		Z:     fields.HashToField(batchZDomain, h[:]),
		Gamma: fields.HashToField(batchGammaDomain, h[:]),
	}
}

// PrecomputeBatchedBlobChallenges derives the final batching challenges for
// an epoch whose blobs are fully known, in the exact order they will be
// accumulated and referenced on-chain.
func PrecomputeBatchedBlobChallenges(blobs []*Blob) FinalBlobBatchingChallenges {
	var h [32]byte
	for _, b := range blobs {
		h = commitmentsHashChain(h, b.Commitment())
	}
	return challengesFromHash(h)
}

// BatchedBlobAccumulator folds blobs one at a time. Order matters: the
// folding weight of a blob is gamma raised to its position, and the final
// challenge cross-check binds the commitment sequence. Not safe for
// concurrent use; the accumulating component owns it exclusively.
type BatchedBlobAccumulator struct {
	challenges FinalBlobBatchingChallenges

	commitmentAcc bls12381.G1Jac
	proofAcc      bls12381.G1Jac
	yAcc          fields.Field
	gammaPow      fields.Field

	commitmentsHash [32]byte
	numBlobs        int
	finalized       bool
}

// NewBatchedBlobAccumulator starts an empty accumulator bound to the given
// precomputed challenges.
func NewBatchedBlobAccumulator(challenges FinalBlobBatchingChallenges) *BatchedBlobAccumulator {
	a := &BatchedBlobAccumulator{challenges: challenges}
	a.gammaPow.SetOne()
	return a
}

// Challenges returns the challenges the accumulator is bound to.
func (a *BatchedBlobAccumulator) Challenges() FinalBlobBatchingChallenges {
	return a.challenges
}

// NumBlobs returns how many blobs have been folded in.
func (a *BatchedBlobAccumulator) NumBlobs() int {
	return a.numBlobs
}

// Accumulate folds one blob into the running aggregate. Blobs must be fed in
// the exact order they are produced and referenced on-chain.
func (a *BatchedBlobAccumulator) Accumulate(b *Blob) error {
	if a.finalized {
		return ErrAccumulatorFinalized
	}

	y, proof, err := b.Evaluate(a.challenges.Z, false)
	if err != nil {
		return err
	}

	commitment := b.Commitment()
	var c, q bls12381.G1Affine
	if _, err := c.SetBytes(commitment[:]); err != nil {
		return fmt.Errorf("blob: bad commitment point: %w", err)
	}
	if _, err := q.SetBytes(proof[:]); err != nil {
		return fmt.Errorf("blob: bad proof point: %w", err)
	}

	weight := new(big.Int)
	a.gammaPow.BigInt(weight)

	var wc, wq bls12381.G1Affine
	wc.ScalarMultiplication(&c, weight)
	wq.ScalarMultiplication(&q, weight)
	a.commitmentAcc.AddMixed(&wc)
	a.proofAcc.AddMixed(&wq)

	var wy fields.Field
	wy.Mul(&a.gammaPow, &y)
	a.yAcc.Add(&a.yAcc, &wy)

	a.commitmentsHash = commitmentsHashChain(a.commitmentsHash, commitment)
	a.gammaPow.Mul(&a.gammaPow, &a.challenges.Gamma)
	a.numBlobs++
	return nil
}

// FinalBlobAccumulator is the publicly verifiable aggregate: one commitment,
// one evaluation point, one evaluation value, and the aggregated opening
// proof serving as the pairing helper.
type FinalBlobAccumulator struct {
	Commitment          Commitment
	Z                   fields.Field
	Y                   fields.Field
	Proof               Proof
	BlobCommitmentsHash [32]byte
	NumBlobs            int
}

// Finalize seals the accumulator and returns the aggregate. It fails when no
// blob was folded in, or when the accumulated commitment sequence does not
// reproduce the precomputed challenges the accumulator was bound to.
func (a *BatchedBlobAccumulator) Finalize() (*FinalBlobAccumulator, error) {
	if a.numBlobs == 0 {
		return nil, ErrEmptyAccumulator
	}
	if got := challengesFromHash(a.commitmentsHash); got != a.challenges {
		return nil, ErrChallengeMismatch
	}
	a.finalized = true

	var c, q bls12381.G1Affine
	c.FromJacobian(&a.commitmentAcc)
	q.FromJacobian(&a.proofAcc)

	return &FinalBlobAccumulator{
		Commitment:          Commitment(c.Bytes()),
		Z:                   a.challenges.Z,
		Y:                   a.yAcc,
		Proof:               Proof(q.Bytes()),
		BlobCommitmentsHash: a.commitmentsHash,
		NumBlobs:            a.numBlobs,
	}, nil
}

// Verify checks the aggregated opening against the trusted setup with a
// single pairing check.
func (f *FinalBlobAccumulator) Verify() error {
	ctx, err := kzgContext()
	if err != nil {
		return err
	}
	zb := f.Z.Bytes()
	yb := f.Y.Bytes()
	if err := ctx.VerifyKZGProof(f.Commitment, goKZGScalar(zb), goKZGScalar(yb), f.Proof); err != nil {
		return fmt.Errorf("blob: final accumulator rejected: %w", err)
	}
	return nil
}

// Equal compares two finalized aggregates by value.
func (f *FinalBlobAccumulator) Equal(other *FinalBlobAccumulator) bool {
	if f == nil || other == nil {
		return f == other
	}
	return f.Commitment == other.Commitment &&
		f.Z == other.Z &&
		f.Y == other.Y &&
		f.Proof == other.Proof &&
		f.BlobCommitmentsHash == other.BlobCommitmentsHash &&
		f.NumBlobs == other.NumBlobs
}
