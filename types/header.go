package types

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

// AppendOnlyTreeSnapshot is the state of an append-only tree at a point in
// time: its root and the index of the next free leaf.
type AppendOnlyTreeSnapshot struct {
	Root                   fields.Field
	NextAvailableLeafIndex uint64
}

// BlockStateReference is the five-field state record encoded for every block:
// the tree snapshot before and after the block, and the total mana metered
// for its execution. The world-state store supplies these values.
type BlockStateReference struct {
	Start         AppendOnlyTreeSnapshot
	End           AppendOnlyTreeSnapshot
	TotalManaUsed *uint256.Int
}

// Mana returns the metered mana total, treating nil as zero.
func (s *BlockStateReference) Mana() *uint256.Int {
	if s.TotalManaUsed == nil {
		return uint256.NewInt(0)
	}
	return s.TotalManaUsed
}

// CheckpointConstants are the values shared by every block in a checkpoint,
// fixed when the checkpoint is started.
type CheckpointConstants struct {
	ChainID  uint64
	Version  uint64
	Coinbase common.Address
}

// FeeRecipient is one entry of the epoch's fee accounting: the coinbase of a
// checkpoint and the sum of all transaction fees paid within it.
type FeeRecipient struct {
	Coinbase common.Address
	TotalFee *uint256.Int
}

// IsZero reports whether the entry is padding (zero address, zero fee).
func (f FeeRecipient) IsZero() bool {
	return f.Coinbase == (common.Address{}) && (f.TotalFee == nil || f.TotalFee.IsZero())
}

// BlockHeader is the finalized header of a proven block. LastArchive links to
// the hash of the previous block's header, forming a hash chain across the
// whole epoch, including across checkpoint boundaries.
type BlockHeader struct {
	BlockNumber       uint64
	Timestamp         uint64
	LastArchive       common.Hash
	ContentCommitment common.Hash
	State             AppendOnlyTreeSnapshot
	TotalManaUsed     *uint256.Int
	TotalFees         *uint256.Int
}

// Hash returns the Keccak-256 commitment to the header over its fixed
// serialization. This is the value the next block's LastArchive must equal.
func (h *BlockHeader) Hash() common.Hash {
	var num [8]byte
	var ts [8]byte
	var leaf [8]byte
	binary.BigEndian.PutUint64(num[:], h.BlockNumber)
	binary.BigEndian.PutUint64(ts[:], h.Timestamp)
	binary.BigEndian.PutUint64(leaf[:], h.State.NextAvailableLeafIndex)

	root := h.State.Root.Bytes()
	mana := u256OrZero(h.TotalManaUsed).Bytes32()
	fees := u256OrZero(h.TotalFees).Bytes32()

	return crypto.Keccak256Hash(
		num[:], ts[:],
		h.LastArchive[:], h.ContentCommitment[:],
		root[:], leaf[:],
		mana[:], fees[:],
	)
}

func u256OrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v
}
