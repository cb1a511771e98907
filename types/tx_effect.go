package types

import (
	"github.com/holiman/uint256"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

// PublicDataWrite is a single public storage update: the leaf slot written
// and the value stored there. It occupies two fields on the wire.
type PublicDataWrite struct {
	LeafSlot fields.Field
	Value    fields.Field
}

// TxEffect is the side-effect record of one executed transaction, in the
// exact shape the blob codec serializes. The execution engine producing these
// is an external collaborator; this core only encodes, decodes and proves
// over them.
type TxEffect struct {
	// TxHash identifies the transaction.
	TxHash fields.Field

	// TransactionFee is the fee paid, credited to the checkpoint's
	// coinbase. Nil means zero.
	TransactionFee *uint256.Int

	NoteHashes []fields.Field
	Nullifiers []fields.Field
	L2ToL1Msgs []fields.Field

	PublicDataWrites []PublicDataWrite

	// PrivateLogs are variable-length log payloads. Each log is encoded
	// with its own length field followed by its data fields.
	PrivateLogs [][]fields.Field

	// PublicLogFields is the flat run of public log data fields.
	PublicLogFields []fields.Field

	// ContractClassLogFields is the optional contract-class log payload.
	// When non-empty, ContractClassLogAddress is emitted as one extra
	// field after it; when empty, the address field is omitted entirely.
	ContractClassLogFields  []fields.Field
	ContractClassLogAddress fields.Field
}

// Fee returns the transaction fee, treating nil as zero.
func (tx *TxEffect) Fee() *uint256.Int {
	if tx.TransactionFee == nil {
		return uint256.NewInt(0)
	}
	return tx.TransactionFee
}

// PrivateLogsLength is the total number of data fields across all private
// logs, excluding the per-log length fields.
func (tx *TxEffect) PrivateLogsLength() int {
	n := 0
	for _, l := range tx.PrivateLogs {
		n += len(l)
	}
	return n
}

// HasPublicCalls reports whether the transaction touched public state and
// therefore takes the public (AVM) proving path instead of the private
// kernel path.
func (tx *TxEffect) HasPublicCalls() bool {
	return len(tx.PublicDataWrites) > 0 || len(tx.PublicLogFields) > 0
}

// Equal compares two effect records by value. A nil fee equals an explicit
// zero fee, matching the wire format, which cannot distinguish them.
func (tx *TxEffect) Equal(other *TxEffect) bool {
	if tx == nil || other == nil {
		return tx == other
	}
	if tx.TxHash != other.TxHash || !tx.Fee().Eq(other.Fee()) {
		return false
	}
	if !FieldSlicesEqual(tx.NoteHashes, other.NoteHashes) ||
		!FieldSlicesEqual(tx.Nullifiers, other.Nullifiers) ||
		!FieldSlicesEqual(tx.L2ToL1Msgs, other.L2ToL1Msgs) {
		return false
	}
	if len(tx.PublicDataWrites) != len(other.PublicDataWrites) {
		return false
	}
	for i := range tx.PublicDataWrites {
		if tx.PublicDataWrites[i] != other.PublicDataWrites[i] {
			return false
		}
	}
	if len(tx.PrivateLogs) != len(other.PrivateLogs) {
		return false
	}
	for i := range tx.PrivateLogs {
		if !FieldSlicesEqual(tx.PrivateLogs[i], other.PrivateLogs[i]) {
			return false
		}
	}
	if !FieldSlicesEqual(tx.PublicLogFields, other.PublicLogFields) ||
		!FieldSlicesEqual(tx.ContractClassLogFields, other.ContractClassLogFields) {
		return false
	}
	if len(tx.ContractClassLogFields) > 0 && tx.ContractClassLogAddress != other.ContractClassLogAddress {
		return false
	}
	return true
}

// FieldSlicesEqual compares two field slices element-wise; nil and empty are
// equal.
func FieldSlicesEqual(a, b []fields.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
