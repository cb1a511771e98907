// Package orchestrator schedules the proving of one epoch: it accepts
// transactions block by block, dispatches base proofs to the external prover
// pool, merges completed proofs pairwise up the transaction, block and
// checkpoint trees, folds every published blob into the epoch's batched KZG
// accumulator, and finalizes the epoch root proof with its public inputs.
//
// Driver calls (StartNewEpoch, StartNewCheckpoint, StartNewBlock, AddTxs,
// SetBlockCompleted, FinalizeEpoch, Cancel) must not be made concurrently
// against the same instance; proof completions arrive from worker goroutines
// and are serialized behind an internal mutex. Merges are dispatched eagerly:
// a parent proof is requested the moment both children exist, so proving
// overlaps with block building.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/grease-xmr/aztec-packages-sub005/blob"
	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/log"
	"github.com/grease-xmr/aztec-packages-sub005/metrics"
	"github.com/grease-xmr/aztec-packages-sub005/prover"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// WorldState supplies the tree snapshots bracketing each block. The store is
// an external collaborator mutated by transaction execution; the orchestrator
// only reads the resulting references.
type WorldState interface {
	BlockStateReference(blockNumber uint64) (types.BlockStateReference, error)
}

// Config carries the orchestrator's behavior knobs.
type Config struct {
	// MaxParallelTxProofs bounds how many transaction base proofs may be
	// in flight at once. Zero means unbounded.
	MaxParallelTxProofs int

	// ProvingTimeout bounds each individual proof request. Zero disables
	// the per-request deadline; the epoch abort signal still applies.
	ProvingTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxParallelTxProofs: 16,
		ProvingTimeout:      10 * time.Minute,
	}
}

// EpochPublicInputs are the values the epoch root proof commits to.
type EpochPublicInputs struct {
	EpochNumber uint64

	// PreviousArchive is the header hash the epoch builds on; EndArchive
	// is the hash of the epoch's final block header.
	PreviousArchive common.Hash
	EndArchive      common.Hash

	// EndState is the tree snapshot after the epoch's final block.
	EndState types.AppendOnlyTreeSnapshot

	// FeeRecipients holds one entry per checkpoint in order, zero-padded
	// to the protocol maximum.
	FeeRecipients [types.MaxCheckpointsPerEpoch]types.FeeRecipient

	// BlobInputs is the finalized batched opening over every blob the
	// epoch published, in production order.
	BlobInputs *blob.FinalBlobAccumulator
}

// EpochProofResult is the outcome of a successful epoch proving run.
type EpochProofResult struct {
	Proof        *prover.Proof
	PublicInputs EpochPublicInputs
}

// proofScope ties one merge tree to the action taken when its root proof
// lands. onRoot runs with the orchestrator mutex held.
type proofScope struct {
	tree     *proofTree
	rootDone bool
	onRoot   func(root *prover.Proof)
}

type blockState struct {
	blockNumber  uint64
	timestamp    uint64
	numTxs       int
	indexInCheck int

	scope    *proofScope
	txs      []*types.TxEffect
	txsAdded int

	closed         bool
	header         *types.BlockHeader
	txTreeRoot     *prover.Proof
	rootDispatched bool
}

type checkpointState struct {
	index          int
	constants      types.CheckpointConstants
	numBlocks      int
	totalBlobField int
	l1ToL2Root     fields.Field

	scope         *proofScope
	blocks        []*blockState
	blocksClosed  int
	blobData      blob.CheckpointBlobData
	feeTotal      *uint256.Int
	lastHeader    *types.BlockHeader
	parityProof   *prover.Proof
	blockTreeRoot *prover.Proof
	rootDispatch  bool
}

type epochState struct {
	number         uint64
	numCheckpoints int

	ctx    context.Context
	cancel context.CancelFunc

	scope  *proofScope
	scopes []*proofScope

	accumulator *blob.BatchedBlobAccumulator
	txSem       chan struct{}

	checkpoint        *checkpointState
	checkpointsClosed int
	feeRecipients     []types.FeeRecipient

	previousArchive common.Hash
	lastHeader      *types.BlockHeader

	padding   *prover.Proof
	rootProof *prover.Proof

	err       error
	cancelled bool
	doneOnce  sync.Once
	doneCh    chan struct{}
}

func (e *epochState) closeDone() {
	e.doneOnce.Do(func() { close(e.doneCh) })
}

// Orchestrator drives one epoch proving attempt at a time.
type Orchestrator struct {
	cfg     Config
	prover  prover.CircuitProver
	world   WorldState
	logger  *log.Logger
	metrics *metrics.ProvingMetrics

	mu    sync.Mutex
	state State
	epoch *epochState
}

// New returns an idle orchestrator issuing work to p and reading block state
// from w.
func New(cfg Config, p prover.CircuitProver, w WorldState) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg,
		prover:  p,
		world:   w,
		logger:  log.Module("orchestrator"),
		metrics: metrics.NewProvingMetrics(),
	}
}

// State returns the current scheduler state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Metrics returns a snapshot of the proving counters.
func (o *Orchestrator) Metrics() metrics.Snapshot {
	return o.metrics.Snapshot()
}

// StartNewEpoch opens a fresh epoch with a fixed checkpoint count and the
// precomputed blob-batching challenges. Valid only when no epoch is in
// progress; a finished, cancelled or failed epoch frees the slot.
func (o *Orchestrator) StartNewEpoch(epochNumber uint64, numCheckpoints int, challenges blob.FinalBlobBatchingChallenges) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	inProgress := o.epoch != nil && o.epoch.err == nil &&
		o.state != StateIdle && o.state != StateEpochDone && o.state != StateCancelled
	if inProgress {
		return ErrEpochAlreadyOpen
	}
	if numCheckpoints < 1 || numCheckpoints > types.MaxCheckpointsPerEpoch {
		return fmt.Errorf("orchestrator: epoch must hold between 1 and %d checkpoints, got %d",
			types.MaxCheckpointsPerEpoch, numCheckpoints)
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &epochState{
		number:         epochNumber,
		numCheckpoints: numCheckpoints,
		ctx:            ctx,
		cancel:         cancel,
		accumulator:    blob.NewBatchedBlobAccumulator(challenges),
		doneCh:         make(chan struct{}),
	}
	if o.cfg.MaxParallelTxProofs > 0 {
		e.txSem = make(chan struct{}, o.cfg.MaxParallelTxProofs)
	}
	e.scope = &proofScope{tree: newProofTree(numCheckpoints)}
	e.scope.onRoot = func(root *prover.Proof) {
		o.dispatchEpochRoot(e, root)
	}
	o.epoch = e
	o.state = StateEpochOpen
	o.registerScope(e, e.scope)

	o.dispatch(e, prover.CircuitPadding, nil,
		func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetPaddingProof(ctx)
		},
		func(p *prover.Proof) {
			e.padding = p
			for _, s := range e.scopes {
				o.fillScopePadding(e, s)
			}
		})

	o.logger.Info("epoch started", "epoch", epochNumber, "checkpoints", numCheckpoints)
	return nil
}

// StartNewCheckpoint opens the next checkpoint. checkpointIndex must equal
// the number of checkpoints already closed; previousBlockHeader must extend
// the header chain built so far (for the first checkpoint it anchors the
// epoch and may be nil at genesis).
func (o *Orchestrator) StartNewCheckpoint(
	checkpointIndex int,
	constants types.CheckpointConstants,
	l1ToL2Messages []fields.Field,
	numBlocks int,
	totalBlobFields int,
	previousBlockHeader *types.BlockHeader,
) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.epoch
	if e == nil || o.state == StateIdle {
		return ErrNoEpoch
	}
	if e.cancelled {
		return ErrEpochCancelled
	}
	if e.err != nil {
		return e.err
	}
	if o.state != StateEpochOpen && o.state != StateCheckpointClosed {
		return ErrBadState
	}
	if e.checkpointsClosed >= e.numCheckpoints {
		return ErrTooManyCheckpoints
	}
	if checkpointIndex != e.checkpointsClosed {
		return ErrCheckpointIndex
	}
	if checkpointIndex == 0 {
		if previousBlockHeader != nil {
			e.previousArchive = previousBlockHeader.Hash()
		}
		e.lastHeader = previousBlockHeader
	} else if !sameHeader(previousBlockHeader, e.lastHeader) {
		return ErrHeaderChainMismatch
	}

	cp := &checkpointState{
		index:          checkpointIndex,
		constants:      constants,
		numBlocks:      numBlocks,
		totalBlobField: totalBlobFields,
		l1ToL2Root:     blob.ComputeL1ToL2SubtreeRoot(l1ToL2Messages),
		feeTotal:       uint256.NewInt(0),
		lastHeader:     previousBlockHeader,
	}
	cp.scope = &proofScope{tree: newProofTree(numBlocks)}
	cp.scope.onRoot = func(root *prover.Proof) {
		cp.blockTreeRoot = root
		o.maybeDispatchCheckpointRoot(e, cp)
	}
	e.checkpoint = cp
	o.state = StateCheckpointOpen
	o.registerScope(e, cp.scope)

	msgs := make([]fields.Field, len(l1ToL2Messages))
	copy(msgs, l1ToL2Messages)
	o.dispatch(e, prover.CircuitBaseParity, nil,
		func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetBaseParityProof(ctx, msgs)
		},
		func(p *prover.Proof) {
			cp.parityProof = p
			o.maybeDispatchCheckpointRoot(e, cp)
		})

	o.logger.Info("checkpoint started",
		"epoch", e.number, "checkpoint", checkpointIndex, "blocks", numBlocks)

	// An empty checkpoint has no blocks to wait for.
	if numBlocks == 0 {
		if err := o.closeCheckpoint(e, cp); err != nil {
			o.abandonEpoch(e, err)
			return err
		}
	}
	return nil
}

// StartNewBlock opens a block within the current checkpoint. numTxs fixes
// how many transactions must arrive before SetBlockCompleted.
func (o *Orchestrator) StartNewBlock(blockNumber, timestamp uint64, numTxs int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.epoch
	if e == nil || o.state == StateIdle {
		return ErrNoEpoch
	}
	if e.cancelled {
		return ErrEpochCancelled
	}
	if e.err != nil {
		return e.err
	}
	if o.state != StateCheckpointOpen && o.state != StateBlockClosed {
		return ErrBadState
	}
	cp := e.checkpoint
	if len(cp.blocks) >= cp.numBlocks {
		return ErrTooManyBlocks
	}
	if numTxs < 0 {
		return fmt.Errorf("orchestrator: negative transaction count %d", numTxs)
	}

	b := &blockState{
		blockNumber:  blockNumber,
		timestamp:    timestamp,
		numTxs:       numTxs,
		indexInCheck: len(cp.blocks),
	}
	b.scope = &proofScope{tree: newProofTree(numTxs)}
	b.scope.onRoot = func(root *prover.Proof) {
		b.txTreeRoot = root
		o.maybeDispatchBlockRoot(e, cp, b)
	}
	cp.blocks = append(cp.blocks, b)
	o.state = StateBlockOpen
	o.registerScope(e, b.scope)

	o.logger.Info("block started",
		"epoch", e.number, "checkpoint", cp.index, "block", blockNumber, "txs", numTxs)
	return nil
}

// AddTxs feeds transactions to the open block and dispatches their base
// proofs. It returns once the requests are issued, not completed, and may be
// called repeatedly until the declared transaction count is reached.
func (o *Orchestrator) AddTxs(txs []*types.TxEffect) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.epoch
	if e == nil || o.state == StateIdle {
		return ErrNoEpoch
	}
	if e.cancelled {
		return ErrEpochCancelled
	}
	if e.err != nil {
		return e.err
	}
	if o.state != StateBlockOpen {
		return ErrBadState
	}
	cp := e.checkpoint
	b := cp.blocks[len(cp.blocks)-1]
	if b.txsAdded+len(txs) > b.numTxs {
		return ErrTooManyTxs
	}

	for _, tx := range txs {
		leaf := b.txsAdded
		b.txs = append(b.txs, tx)
		b.txsAdded++
		o.dispatchTxProof(e, b, leaf, tx)
	}
	return nil
}

// SetBlockCompleted closes the open block, computes its finalized header and
// hands the transaction merge tree over to block-root proving. A caller that
// already knows the header may pass it in expected; the computed header must
// then match.
func (o *Orchestrator) SetBlockCompleted(blockNumber uint64, expected *types.BlockHeader) (*types.BlockHeader, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.epoch
	if e == nil || o.state == StateIdle {
		return nil, ErrNoEpoch
	}
	if e.cancelled {
		return nil, ErrEpochCancelled
	}
	if e.err != nil {
		return nil, e.err
	}
	if o.state != StateBlockOpen {
		return nil, ErrBadState
	}
	cp := e.checkpoint
	b := cp.blocks[len(cp.blocks)-1]
	if b.blockNumber != blockNumber {
		return nil, ErrWrongBlock
	}
	if b.txsAdded != b.numTxs {
		return nil, ErrMissingTxs
	}

	state, err := o.world.BlockStateReference(blockNumber)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: world state for block %d: %w", blockNumber, err)
	}

	data := &blob.BlockBlobData{
		BlockNumber: b.blockNumber,
		Timestamp:   b.timestamp,
		Txs:         b.txs,
		State:       state,
	}
	isFirst := b.indexInCheck == 0
	if isFirst {
		data.L1ToL2MessageSubtreeRoot = cp.l1ToL2Root
	}
	encoded, err := data.Encode(isFirst)
	if err != nil {
		return nil, err
	}

	fees := uint256.NewInt(0)
	for _, tx := range b.txs {
		fees.Add(fees, tx.Fee())
	}

	var lastArchive common.Hash
	if cp.lastHeader != nil {
		lastArchive = cp.lastHeader.Hash()
	}
	header := &types.BlockHeader{
		BlockNumber:       b.blockNumber,
		Timestamp:         b.timestamp,
		LastArchive:       lastArchive,
		ContentCommitment: contentCommitment(encoded),
		State:             state.End,
		TotalManaUsed:     state.Mana(),
		TotalFees:         fees,
	}
	if expected != nil && expected.Hash() != header.Hash() {
		return nil, ErrHeaderMismatch
	}

	b.closed = true
	b.header = header
	cp.blobData.Blocks = append(cp.blobData.Blocks, data)
	cp.feeTotal.Add(cp.feeTotal, fees)
	cp.lastHeader = header
	cp.blocksClosed++
	e.lastHeader = header
	o.state = StateBlockClosed
	o.maybeDispatchBlockRoot(e, cp, b)

	o.logger.Info("block completed",
		"epoch", e.number, "checkpoint", cp.index, "block", blockNumber, "fees", fees)

	if cp.blocksClosed == cp.numBlocks {
		if err := o.closeCheckpoint(e, cp); err != nil {
			o.abandonEpoch(e, err)
			return nil, err
		}
	}
	return header, nil
}

// abandonEpoch records a fatal error after the epoch state has already been
// irreversibly advanced, so the attempt cannot continue but the slot is
// freed for a fresh StartNewEpoch. Called with o.mu held.
func (o *Orchestrator) abandonEpoch(e *epochState, err error) {
	if e.err != nil || e.cancelled {
		return
	}
	e.err = err
	e.cancel()
	e.closeDone()
	o.logger.Error("abandoning epoch", "epoch", e.number, "err", err)
}

// closeCheckpoint encodes the checkpoint's blob fields, validates the field
// hint given at StartNewCheckpoint, and folds the resulting blobs into the
// epoch accumulator. Called with o.mu held.
func (o *Orchestrator) closeCheckpoint(e *epochState, cp *checkpointState) error {
	encoded, err := cp.blobData.Encode()
	if err != nil {
		return err
	}
	if len(encoded) != cp.totalBlobField {
		return fmt.Errorf("%w: declared %d, encoded %d",
			ErrBlobFieldsHint, cp.totalBlobField, len(encoded))
	}
	blobs, err := blob.BlobsFromFields(encoded)
	if err != nil {
		return err
	}
	for _, bl := range blobs {
		if err := e.accumulator.Accumulate(bl); err != nil {
			return err
		}
	}

	e.feeRecipients = append(e.feeRecipients, types.FeeRecipient{
		Coinbase: cp.constants.Coinbase,
		TotalFee: cp.feeTotal,
	})
	e.checkpointsClosed++
	o.state = StateCheckpointClosed
	if e.checkpointsClosed == e.numCheckpoints {
		o.state = StateEpochFinalizing
	}

	o.logger.Info("checkpoint closed",
		"epoch", e.number, "checkpoint", cp.index,
		"blobFields", len(encoded), "blobs", len(blobs))
	return nil
}

// FinalizeEpoch waits for the epoch root proof and returns it with the epoch
// public inputs. Valid only once every checkpoint has closed. The final blob
// accumulator is sealed here, cross-checking the precomputed challenges
// against the blobs actually accumulated.
func (o *Orchestrator) FinalizeEpoch(ctx context.Context) (*EpochProofResult, error) {
	o.mu.Lock()
	e := o.epoch
	if e == nil || o.state == StateIdle {
		o.mu.Unlock()
		return nil, ErrNoEpoch
	}
	if e.cancelled {
		o.mu.Unlock()
		return nil, ErrEpochCancelled
	}
	if e.err != nil {
		err := e.err
		o.mu.Unlock()
		return nil, err
	}
	if o.state != StateEpochFinalizing {
		o.mu.Unlock()
		return nil, ErrEpochIncomplete
	}
	o.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.doneCh:
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if e.cancelled {
		return nil, ErrEpochCancelled
	}
	if e.err != nil {
		o.state = StateIdle
		return nil, e.err
	}

	final, err := e.accumulator.Finalize()
	if err != nil {
		o.state = StateIdle
		return nil, err
	}

	pub := EpochPublicInputs{
		EpochNumber:     e.number,
		PreviousArchive: e.previousArchive,
		BlobInputs:      final,
	}
	if e.lastHeader != nil {
		pub.EndArchive = e.lastHeader.Hash()
		pub.EndState = e.lastHeader.State
	}
	copy(pub.FeeRecipients[:], e.feeRecipients)

	o.state = StateEpochDone
	o.logger.Info("epoch finalized", "epoch", e.number, "blobs", final.NumBlobs)
	return &EpochProofResult{Proof: e.rootProof, PublicInputs: pub}, nil
}

// Cancel aborts the epoch in progress. Every outstanding proof request
// observes the cancelled context; FinalizeEpoch is rejected afterwards.
// Idempotent, and a no-op when no epoch is running.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	e := o.epoch
	if e == nil || o.state == StateIdle || o.state == StateEpochDone || e.cancelled {
		return
	}
	e.cancelled = true
	e.cancel()
	e.closeDone()
	o.state = StateCancelled
	o.logger.Warn("epoch cancelled", "epoch", e.number)
}

// dispatch runs one proof request on its own goroutine. done runs with o.mu
// held, and only if the epoch is still live. A nil sem dispatches
// immediately; a non-nil sem bounds concurrency.
func (o *Orchestrator) dispatch(
	e *epochState,
	circuit prover.Circuit,
	sem chan struct{},
	run func(ctx context.Context) (*prover.Proof, error),
	done func(p *prover.Proof),
) {
	o.metrics.RecordDispatch(string(circuit))
	go func() {
		if sem != nil {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-e.ctx.Done():
				return
			}
		}

		ctx := e.ctx
		if o.cfg.ProvingTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.cfg.ProvingTimeout)
			defer cancel()
		}

		start := time.Now()
		p, err := run(ctx)
		if err != nil {
			o.proofFailed(e, circuit, err)
			o.metrics.RecordFailure(string(circuit))
			return
		}
		o.metrics.RecordCompletion(string(circuit), time.Since(start))

		o.mu.Lock()
		defer o.mu.Unlock()
		if o.epoch != e || e.cancelled || e.err != nil {
			return
		}
		done(p)
	}()
}

// proofFailed records the first worker failure, aborts the epoch context and
// unblocks FinalizeEpoch so the error surfaces.
func (o *Orchestrator) proofFailed(e *epochState, circuit prover.Circuit, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != e || e.cancelled || e.err != nil {
		return
	}
	e.err = err
	e.cancel()
	e.closeDone()
	o.logger.Error("proof failed, abandoning epoch",
		"epoch", e.number, "circuit", circuit, "err", err)
}

func (o *Orchestrator) registerScope(e *epochState, s *proofScope) {
	e.scopes = append(e.scopes, s)
	if e.padding != nil {
		o.fillScopePadding(e, s)
	}
}

func (o *Orchestrator) fillScopePadding(e *epochState, s *proofScope) {
	o.runJobs(e, s, s.tree.fillPadding(e.padding))
	o.maybeFinishScope(e, s)
}

// runJobs dispatches merge proofs for every newly unblocked pair in s.
func (o *Orchestrator) runJobs(e *epochState, s *proofScope, jobs []mergeJob) {
	for _, j := range jobs {
		j := j
		o.dispatch(e, prover.CircuitMerge, nil,
			func(ctx context.Context) (*prover.Proof, error) {
				return o.prover.GetMergeProof(ctx, j.left, j.right)
			},
			func(p *prover.Proof) {
				o.runJobs(e, s, s.tree.setNode(j.level, j.index, p))
				o.maybeFinishScope(e, s)
			})
	}
}

func (o *Orchestrator) maybeFinishScope(e *epochState, s *proofScope) {
	if s.rootDone || !s.tree.isComplete() {
		return
	}
	s.rootDone = true
	s.onRoot(s.tree.rootProof())
}

// dispatchTxProof issues the base proof for one transaction, selecting the
// public (AVM) or private (tube) path, bounded by the tx-proof semaphore.
func (o *Orchestrator) dispatchTxProof(e *epochState, b *blockState, leaf int, tx *types.TxEffect) {
	in := prover.TxProvingInput{Effect: tx}
	circuit := prover.CircuitTube
	run := func(ctx context.Context) (*prover.Proof, error) {
		return o.prover.GetTubeProof(ctx, in)
	}
	if tx.HasPublicCalls() {
		circuit = prover.CircuitAvm
		run = func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetAvmProof(ctx, in)
		}
	}
	o.dispatch(e, circuit, e.txSem, run, func(p *prover.Proof) {
		o.runJobs(e, b.scope, b.scope.tree.setLeaf(leaf, p))
		o.maybeFinishScope(e, b.scope)
	})
}

// maybeDispatchBlockRoot lifts a block's transaction tree root to its block
// proof once both the root and the finalized header exist.
func (o *Orchestrator) maybeDispatchBlockRoot(e *epochState, cp *checkpointState, b *blockState) {
	if b.rootDispatched || !b.closed || b.txTreeRoot == nil {
		return
	}
	b.rootDispatched = true
	in := prover.BlockRootInput{TxTreeRoot: b.txTreeRoot, Header: b.header}
	o.dispatch(e, prover.CircuitBlockRoot, nil,
		func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetBlockRootProof(ctx, in)
		},
		func(p *prover.Proof) {
			o.runJobs(e, cp.scope, cp.scope.tree.setLeaf(b.indexInCheck, p))
			o.maybeFinishScope(e, cp.scope)
		})
}

// maybeDispatchCheckpointRoot lifts a checkpoint's block tree root to its
// checkpoint proof once both the root and the parity proof exist.
func (o *Orchestrator) maybeDispatchCheckpointRoot(e *epochState, cp *checkpointState) {
	if cp.rootDispatch || cp.blockTreeRoot == nil || cp.parityProof == nil {
		return
	}
	cp.rootDispatch = true
	in := prover.CheckpointRootInput{
		BlockTreeRoot:   cp.blockTreeRoot,
		ParityProof:     cp.parityProof,
		Constants:       cp.constants,
		CheckpointIndex: cp.index,
	}
	o.dispatch(e, prover.CircuitCheckpointRoot, nil,
		func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetCheckpointRootProof(ctx, in)
		},
		func(p *prover.Proof) {
			o.runJobs(e, e.scope, e.scope.tree.setLeaf(cp.index, p))
			o.maybeFinishScope(e, e.scope)
		})
}

// dispatchEpochRoot produces the final root rollup proof and unblocks
// FinalizeEpoch.
func (o *Orchestrator) dispatchEpochRoot(e *epochState, checkpointTreeRoot *prover.Proof) {
	in := prover.EpochRootInput{
		CheckpointTreeRoot: checkpointTreeRoot,
		EpochNumber:        e.number,
		NumCheckpoints:     e.numCheckpoints,
	}
	o.dispatch(e, prover.CircuitEpochRoot, nil,
		func(ctx context.Context) (*prover.Proof, error) {
			return o.prover.GetEpochRootProof(ctx, in)
		},
		func(p *prover.Proof) {
			e.rootProof = p
			e.closeDone()
			o.logger.Info("epoch root proof complete", "epoch", e.number)
		})
}

// contentCommitment is the Keccak-256 commitment to a block's flat blob
// field encoding.
func contentCommitment(fs []fields.Field) common.Hash {
	data := make([]byte, 0, len(fs)*types.BytesPerFieldElement)
	for _, f := range fs {
		fb := f.Bytes()
		data = append(data, fb[:]...)
	}
	return crypto.Keccak256Hash(data)
}

func sameHeader(a, b *types.BlockHeader) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hash() == b.Hash()
}
