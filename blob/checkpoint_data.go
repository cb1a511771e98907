package blob

import (
	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// CheckpointBlobData is a length-prefixed sequence of block records: the
// first field is the total field count for the whole checkpoint, including
// itself. An empty checkpoint encodes as that single prefix field.
type CheckpointBlobData struct {
	Blocks []*BlockBlobData
}

// NumFields returns the total field count of the checkpoint's encoding,
// including the length prefix.
func (c *CheckpointBlobData) NumFields() (int, error) {
	n := types.CheckpointPrefixFields
	for i, b := range c.Blocks {
		bn, err := b.NumFields(i == 0)
		if err != nil {
			return 0, err
		}
		n += bn
	}
	return n, nil
}

// Encode serializes the checkpoint into its flat field sequence.
func (c *CheckpointBlobData) Encode() ([]fields.Field, error) {
	total, err := c.NumFields()
	if err != nil {
		return nil, err
	}

	out := make([]fields.Field, 0, total)
	out = append(out, fields.NewFromUint64(uint64(total)))
	for i, b := range c.Blocks {
		blockFields, err := b.Encode(i == 0)
		if err != nil {
			return nil, err
		}
		out = append(out, blockFields...)
	}
	return out, nil
}

// DecodeCheckpointBlobData decodes a checkpoint from a flat field sequence.
// Trailing fields beyond the declared total (blob zero padding) are ignored;
// a declared total exceeding the supplied fields is a deserialization error.
func DecodeCheckpointBlobData(fs []fields.Field) (*CheckpointBlobData, error) {
	return DecodeCheckpointBlobDataFromReader(NewFieldReader(fs))
}

// DecodeCheckpointBlobDataFromReader decodes a checkpoint from r, consuming
// exactly the declared number of fields. The very first block decoded is
// always treated as first in the checkpoint.
func DecodeCheckpointBlobDataFromReader(r *FieldReader) (*CheckpointBlobData, error) {
	start := r.Pos()
	declared, err := r.NextUint64("checkpoint field count")
	if err != nil {
		return nil, err
	}
	total := int(declared)
	if total < types.CheckpointPrefixFields {
		return nil, deserErr("checkpoint field count", types.CheckpointPrefixFields, total)
	}
	if avail := r.Remaining() + types.CheckpointPrefixFields; total > avail {
		return nil, deserErr("checkpoint field count", total, avail)
	}

	c := &CheckpointBlobData{}
	for r.Pos()-start < total {
		b, err := DecodeBlockBlobData(r, len(c.Blocks) == 0)
		if err != nil {
			return nil, err
		}
		c.Blocks = append(c.Blocks, b)
		if consumed := r.Pos() - start; consumed > total {
			return nil, deserErr("checkpoint field count", total, consumed)
		}
	}
	return c, nil
}

// TotalNumBlobFields computes, in closed form, the field count of a
// checkpoint holding the given transactions per block: the length prefix, one
// L1-to-L2 root if any block exists, six trailing fields per block, and each
// transaction's own footprint.
func TotalNumBlobFields(txsPerBlock [][]*types.TxEffect) (int, error) {
	n := types.CheckpointPrefixFields
	if len(txsPerBlock) > 0 {
		n++
	}
	n += types.FieldsPerBlockEnd * len(txsPerBlock)
	for _, txs := range txsPerBlock {
		for _, tx := range txs {
			m, err := TxStartMarkerFor(tx)
			if err != nil {
				return 0, err
			}
			n += m.TotalFields
		}
	}
	return n, nil
}

// Equal compares two checkpoint records by value.
func (c *CheckpointBlobData) Equal(other *CheckpointBlobData) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.Blocks) != len(other.Blocks) {
		return false
	}
	for i := range c.Blocks {
		if !c.Blocks[i].Equal(other.Blocks[i]) {
			return false
		}
	}
	return true
}
