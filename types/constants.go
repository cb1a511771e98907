// Package types defines the protocol data model shared by the blob codec and
// the epoch proving orchestrator: transaction effects, block headers, state
// snapshots, fee accounting, and the protocol constants of the blob wire
// format.
//
// The marker tags and packed bit widths below are protocol-defined constants
// matched against the verifying circuits. Changing any of them is a breaking
// wire-format change.
package types

const (
	// FieldsPerBlob is the fixed capacity of a published blob, in field
	// elements.
	FieldsPerBlob = 4096

	// BytesPerFieldElement is the serialized size of a BLS12-381 scalar.
	BytesPerFieldElement = 32

	// MaxCheckpointsPerEpoch is the protocol's maximum epoch duration in
	// checkpoints. The epoch public inputs carry a fee-recipient array
	// zero-padded to this length.
	MaxCheckpointsPerEpoch = 48

	// TxStartTag is the two-byte ASCII tag ("TX") packed into the high
	// bytes of a transaction-start marker field. The leading byte is below
	// the top byte of the scalar modulus, so every marker is a canonical
	// field element.
	TxStartTag uint16 = 0x5458

	// BlockEndTag is the two-byte ASCII tag ("BK") packed into the high
	// bytes of a block-end marker field.
	BlockEndTag uint16 = 0x424B

	// MaxTxMarkerCount is the largest value any per-category count in a
	// transaction-start marker may take (16-bit packed sub-fields).
	MaxTxMarkerCount = 1<<16 - 1

	// MaxBlockNumber and MaxTxsPerBlock bound the 32-bit packed sub-fields
	// of a block-end marker. Timestamps occupy a full 64-bit sub-field.
	MaxBlockNumber = 1<<32 - 1
	MaxTxsPerBlock = 1<<32 - 1

	// FieldsPerBlockEnd is the number of trailing fields every block
	// contributes besides its transactions and the optional L1-to-L2 root:
	// the five-field state record plus the block-end marker.
	FieldsPerBlockEnd = 6

	// CheckpointPrefixFields is the length prefix at the start of every
	// encoded checkpoint (the total field count, including itself).
	CheckpointPrefixFields = 1
)
