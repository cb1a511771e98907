// Package prover defines the interface to the external proof-computation
// workers and the proof values the orchestrator assembles. The circuit
// implementations behind this interface (kernel, AVM, rollup circuits) live
// in the proving backend; this core only dispatches requests and composes
// results.
package prover

import (
	"context"
	"fmt"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// Circuit identifies which proving circuit a request or failure refers to.
type Circuit string

const (
	CircuitBaseParity     Circuit = "base-parity"
	CircuitTube           Circuit = "tube"
	CircuitAvm            Circuit = "avm"
	CircuitMerge          Circuit = "merge"
	CircuitBlockRoot      Circuit = "block-root"
	CircuitCheckpointRoot Circuit = "checkpoint-root"
	CircuitEpochRoot      Circuit = "epoch-root"
	CircuitPadding        Circuit = "padding"
)

// Proof is a proof returned by a worker together with its verification key.
type Proof struct {
	Circuit         Circuit
	Data            []byte
	VerificationKey []byte
}

// ProvingError reports a worker-side failure for one circuit. It is fatal to
// the epoch proving attempt that issued the request.
type ProvingError struct {
	Circuit Circuit
	Reason  string
}

func (e *ProvingError) Error() string {
	return fmt.Sprintf("prover: %s circuit failed: %s", e.Circuit, e.Reason)
}

// TxProvingInput is the request payload for a transaction base proof. The
// private (tube) or public (AVM) path is chosen per transaction by the
// caller.
type TxProvingInput struct {
	Effect *types.TxEffect
}

// BlockRootInput ties a block's completed transaction merge tree to its
// finalized header.
type BlockRootInput struct {
	TxTreeRoot *Proof
	Header     *types.BlockHeader
}

// CheckpointRootInput ties a checkpoint's completed block tree to its
// constants and the parity proof over its L1-to-L2 messages.
type CheckpointRootInput struct {
	BlockTreeRoot   *Proof
	ParityProof     *Proof
	Constants       types.CheckpointConstants
	CheckpointIndex int
}

// EpochRootInput finalizes the epoch: the completed checkpoint tree plus the
// epoch identity.
type EpochRootInput struct {
	CheckpointTreeRoot *Proof
	EpochNumber        uint64
	NumCheckpoints     int
}

// CircuitProver is the external proving collaborator. Every operation
// accepts a context carrying the epoch's abort signal; workers are expected
// to stop cooperatively once it is cancelled. Implementations may execute
// requests in parallel.
type CircuitProver interface {
	// GetBaseParityProof proves the conversion of a checkpoint's L1-to-L2
	// message batch into its subtree root.
	GetBaseParityProof(ctx context.Context, msgs []fields.Field) (*Proof, error)

	// GetTubeProof produces the base proof for a private-only transaction.
	GetTubeProof(ctx context.Context, in TxProvingInput) (*Proof, error)

	// GetAvmProof produces the base proof for a transaction with public
	// calls.
	GetAvmProof(ctx context.Context, in TxProvingInput) (*Proof, error)

	// GetMergeProof combines two sibling proofs of the same tree level.
	GetMergeProof(ctx context.Context, left, right *Proof) (*Proof, error)

	// GetBlockRootProof lifts a block's transaction tree root to a block
	// proof.
	GetBlockRootProof(ctx context.Context, in BlockRootInput) (*Proof, error)

	// GetCheckpointRootProof lifts a checkpoint's block tree root to a
	// checkpoint proof.
	GetCheckpointRootProof(ctx context.Context, in CheckpointRootInput) (*Proof, error)

	// GetEpochRootProof produces the final root rollup proof.
	GetEpochRootProof(ctx context.Context, in EpochRootInput) (*Proof, error)

	// GetPaddingProof returns the canonical publicly-known padding proof
	// used to complete odd levels of the proof tree.
	GetPaddingProof(ctx context.Context) (*Proof, error)
}
