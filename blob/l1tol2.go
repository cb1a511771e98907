package blob

import (
	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

const l1ToL2Domain = "aztec-l1-to-l2-subtree"

// ComputeL1ToL2SubtreeRoot binds a checkpoint's ordered L1-to-L2 message
// batch to the single root field encoded on the first block of the
// checkpoint. An empty batch has the zero root.
func ComputeL1ToL2SubtreeRoot(msgs []fields.Field) fields.Field {
	if len(msgs) == 0 {
		var zero fields.Field
		return zero
	}
	data := make([]byte, 0, len(msgs)*types.BytesPerFieldElement)
	for _, m := range msgs {
		mb := m.Bytes()
		data = append(data, mb[:]...)
	}
	return fields.HashToField(l1ToL2Domain, data)
}
