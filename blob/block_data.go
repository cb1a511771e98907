package blob

import (
	"fmt"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// BlockBlobData is one block's slice of a checkpoint's field sequence: the
// transaction slices in submission order, the optional L1-to-L2 message
// subtree root, the five-field state record, and the block-end marker.
//
// The L1-to-L2 root is encoded if and only if the block is first in its
// checkpoint. That flag cannot be inferred from the data, so both Encode and
// DecodeBlockBlobData take it explicitly.
type BlockBlobData struct {
	BlockNumber uint64
	Timestamp   uint64
	Txs         []*types.TxEffect

	// L1ToL2MessageSubtreeRoot is only present on the wire for the first
	// block of a checkpoint. For other blocks it is ignored by Encode and
	// left zero by DecodeBlockBlobData.
	L1ToL2MessageSubtreeRoot fields.Field

	State types.BlockStateReference
}

// NumFields returns the exact field count of the block's encoding.
func (b *BlockBlobData) NumFields(isFirstBlock bool) (int, error) {
	n := types.FieldsPerBlockEnd
	if isFirstBlock {
		n++
	}
	for _, tx := range b.Txs {
		m, err := TxStartMarkerFor(tx)
		if err != nil {
			return 0, err
		}
		n += m.TotalFields
	}
	return n, nil
}

// Encode serializes the block into its flat field slice.
func (b *BlockBlobData) Encode(isFirstBlock bool) ([]fields.Field, error) {
	marker, err := NewBlockEndMarker(b.BlockNumber, b.Timestamp, len(b.Txs))
	if err != nil {
		return nil, err
	}

	var out []fields.Field
	for _, tx := range b.Txs {
		txFields, err := EncodeTxEffect(tx)
		if err != nil {
			return nil, err
		}
		out = append(out, txFields...)
	}
	if isFirstBlock {
		out = append(out, b.L1ToL2MessageSubtreeRoot)
	}

	mana, err := fields.NewFromUint256(b.State.Mana())
	if err != nil {
		return nil, fmt.Errorf("blob: total mana used: %w", err)
	}
	out = append(out,
		b.State.Start.Root,
		fields.NewFromUint64(b.State.Start.NextAvailableLeafIndex),
		b.State.End.Root,
		fields.NewFromUint64(b.State.End.NextAvailableLeafIndex),
		mana,
		marker.Encode(),
	)
	return out, nil
}

// DecodeBlockBlobData reads one block from r. isFirstBlock must reflect the
// block's position within its checkpoint; passing the wrong value either
// consumes a root that is not there or misses one that is, and the block-end
// marker cross-check then rejects the input.
func DecodeBlockBlobData(r *FieldReader, isFirstBlock bool) (*BlockBlobData, error) {
	b := &BlockBlobData{}

	for {
		next, ok := r.Peek()
		if !ok {
			return nil, deserErr("block end marker", 1, 0)
		}
		if !IsTxStartMarker(next) {
			break
		}
		tx, err := DecodeTxEffect(r)
		if err != nil {
			return nil, err
		}
		b.Txs = append(b.Txs, tx)
	}

	var err error
	if isFirstBlock {
		if b.L1ToL2MessageSubtreeRoot, err = r.Next(); err != nil {
			return nil, err
		}
	}

	if b.State.Start.Root, err = r.Next(); err != nil {
		return nil, err
	}
	if b.State.Start.NextAvailableLeafIndex, err = r.NextUint64("start next leaf index"); err != nil {
		return nil, err
	}
	if b.State.End.Root, err = r.Next(); err != nil {
		return nil, err
	}
	if b.State.End.NextAvailableLeafIndex, err = r.NextUint64("end next leaf index"); err != nil {
		return nil, err
	}
	manaField, err := r.Next()
	if err != nil {
		return nil, err
	}
	b.State.TotalManaUsed = fields.ToUint256(manaField)

	markerField, err := r.Next()
	if err != nil {
		return nil, err
	}
	marker, err := DecodeBlockEndMarker(markerField)
	if err != nil {
		return nil, err
	}
	if marker.NumTxs != len(b.Txs) {
		return nil, deserErr("block tx count", marker.NumTxs, len(b.Txs))
	}
	b.BlockNumber = marker.BlockNumber
	b.Timestamp = marker.Timestamp
	return b, nil
}

// Equal compares two block records by value. The L1-to-L2 root is compared
// unconditionally; callers decoding non-first blocks hold the zero root on
// both sides.
func (b *BlockBlobData) Equal(other *BlockBlobData) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.BlockNumber != other.BlockNumber || b.Timestamp != other.Timestamp {
		return false
	}
	if b.L1ToL2MessageSubtreeRoot != other.L1ToL2MessageSubtreeRoot {
		return false
	}
	if b.State.Start != other.State.Start || b.State.End != other.State.End {
		return false
	}
	if !b.State.Mana().Eq(other.State.Mana()) {
		return false
	}
	if len(b.Txs) != len(other.Txs) {
		return false
	}
	for i := range b.Txs {
		if !b.Txs[i].Equal(other.Txs[i]) {
			return false
		}
	}
	return true
}
