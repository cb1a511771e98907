package orchestrator

import "errors"

// State is the scheduler's position in the epoch proving lifecycle. The
// levels nest strictly: epoch, checkpoint, block, transactions. Operations
// called out of order are programming errors and fail immediately.
type State int

const (
	StateIdle State = iota
	StateEpochOpen
	StateCheckpointOpen
	StateBlockOpen
	StateBlockClosed
	StateCheckpointClosed
	StateEpochFinalizing
	StateEpochDone
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateEpochOpen:
		return "EPOCH_OPEN"
	case StateCheckpointOpen:
		return "CHECKPOINT_OPEN"
	case StateBlockOpen:
		return "BLOCK_OPEN"
	case StateBlockClosed:
		return "BLOCK_CLOSED"
	case StateCheckpointClosed:
		return "CHECKPOINT_CLOSED"
	case StateEpochFinalizing:
		return "EPOCH_FINALIZING"
	case StateEpochDone:
		return "EPOCH_DONE"
	case StateCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// State-machine misuse errors. These indicate a driver bug, not bad data;
// they never corrupt the in-progress epoch.
var (
	ErrEpochAlreadyOpen    = errors.New("orchestrator: an epoch is already open")
	ErrNoEpoch             = errors.New("orchestrator: no epoch open")
	ErrEpochCancelled      = errors.New("orchestrator: epoch was cancelled")
	ErrEpochIncomplete     = errors.New("orchestrator: not all checkpoints are closed")
	ErrBadState            = errors.New("orchestrator: operation not valid in current state")
	ErrCheckpointIndex     = errors.New("orchestrator: checkpoint index out of order")
	ErrTooManyCheckpoints  = errors.New("orchestrator: all checkpoints already started")
	ErrTooManyBlocks       = errors.New("orchestrator: all blocks of checkpoint already started")
	ErrTooManyTxs          = errors.New("orchestrator: more transactions than block declared")
	ErrMissingTxs          = errors.New("orchestrator: block completed before all declared transactions were added")
	ErrWrongBlock          = errors.New("orchestrator: block number does not match the open block")
	ErrHeaderMismatch      = errors.New("orchestrator: supplied header disagrees with computed header")
	ErrHeaderChainMismatch = errors.New("orchestrator: previous block header does not extend the chain")
	ErrBlobFieldsHint      = errors.New("orchestrator: checkpoint blob field hint does not match encoding")
)
