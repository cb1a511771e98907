package blob

import (
	"errors"
	"testing"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// Batching exactly one blob must reduce to that blob's own commitment and
// evaluation.
func TestBatchSingleBlobIsNoOp(t *testing.T) {
	b, err := NewBlob(makeFields(t, 24))
	if err != nil {
		t.Fatalf("NewBlob error: %v", err)
	}

	challenges := PrecomputeBatchedBlobChallenges([]*Blob{b})
	acc := NewBatchedBlobAccumulator(challenges)
	if err := acc.Accumulate(b); err != nil {
		t.Fatalf("Accumulate error: %v", err)
	}
	final, err := acc.Finalize()
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}

	if final.Commitment != b.Commitment() {
		t.Error("single-blob aggregate commitment should equal the blob's own commitment")
	}
	y, proof, err := b.Evaluate(challenges.Z, false)
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if final.Y != y {
		t.Error("single-blob aggregate evaluation should equal the blob's own evaluation")
	}
	if final.Proof != proof {
		t.Error("single-blob aggregate proof should equal the blob's own proof")
	}
	if err := final.Verify(); err != nil {
		t.Errorf("single-blob aggregate should verify: %v", err)
	}
}

func TestBatchMultipleBlobsVerifies(t *testing.T) {
	blobs := make([]*Blob, 3)
	for i := range blobs {
		b, err := NewBlob(makeFields(t, 8*(i+1)))
		if err != nil {
			t.Fatalf("NewBlob error: %v", err)
		}
		blobs[i] = b
	}

	challenges := PrecomputeBatchedBlobChallenges(blobs)
	acc := NewBatchedBlobAccumulator(challenges)
	for _, b := range blobs {
		if err := acc.Accumulate(b); err != nil {
			t.Fatalf("Accumulate error: %v", err)
		}
	}
	final, err := acc.Finalize()
	if err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if final.NumBlobs != len(blobs) {
		t.Errorf("NumBlobs: got %d, want %d", final.NumBlobs, len(blobs))
	}
	if err := final.Verify(); err != nil {
		t.Errorf("aggregated opening should verify: %v", err)
	}
}

// Reordering blobs changes the folding weights and the transcript, so the
// precomputed challenges must reject the sequence.
func TestBatchOrderIsLoadBearing(t *testing.T) {
	a, err := NewBlob(makeFields(t, 4))
	if err != nil {
		t.Fatalf("NewBlob error: %v", err)
	}
	b, err := NewBlob(makeFields(t, 5))
	if err != nil {
		t.Fatalf("NewBlob error: %v", err)
	}

	challenges := PrecomputeBatchedBlobChallenges([]*Blob{a, b})
	acc := NewBatchedBlobAccumulator(challenges)
	if err := acc.Accumulate(b); err != nil {
		t.Fatalf("Accumulate error: %v", err)
	}
	if err := acc.Accumulate(a); err != nil {
		t.Fatalf("Accumulate error: %v", err)
	}
	if _, err := acc.Finalize(); !errors.Is(err, ErrChallengeMismatch) {
		t.Errorf("expected ErrChallengeMismatch for reordered blobs, got %v", err)
	}
}

func TestBatchFinalizeEmpty(t *testing.T) {
	acc := NewBatchedBlobAccumulator(FinalBlobBatchingChallenges{})
	if _, err := acc.Finalize(); !errors.Is(err, ErrEmptyAccumulator) {
		t.Errorf("expected ErrEmptyAccumulator, got %v", err)
	}
}

func TestBatchAccumulateAfterFinalize(t *testing.T) {
	b, err := NewBlob(makeFields(t, 2))
	if err != nil {
		t.Fatalf("NewBlob error: %v", err)
	}
	acc := NewBatchedBlobAccumulator(PrecomputeBatchedBlobChallenges([]*Blob{b}))
	if err := acc.Accumulate(b); err != nil {
		t.Fatalf("Accumulate error: %v", err)
	}
	if _, err := acc.Finalize(); err != nil {
		t.Fatalf("Finalize error: %v", err)
	}
	if err := acc.Accumulate(b); !errors.Is(err, ErrAccumulatorFinalized) {
		t.Errorf("expected ErrAccumulatorFinalized, got %v", err)
	}
}

func TestBatchRecomputeMatches(t *testing.T) {
	c := &CheckpointBlobData{
		Blocks: []*BlockBlobData{
			sampleBlock(1, []*types.TxEffect{sampleTx(2), sampleTx(44)}),
		},
	}
	encoded, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	blobs, err := BlobsFromFields(encoded)
	if err != nil {
		t.Fatalf("BlobsFromFields error: %v", err)
	}

	challenges := PrecomputeBatchedBlobChallenges(blobs)

	run := func() *FinalBlobAccumulator {
		acc := NewBatchedBlobAccumulator(challenges)
		for _, b := range blobs {
			if err := acc.Accumulate(b); err != nil {
				t.Fatalf("Accumulate error: %v", err)
			}
		}
		final, err := acc.Finalize()
		if err != nil {
			t.Fatalf("Finalize error: %v", err)
		}
		return final
	}

	if !run().Equal(run()) {
		t.Error("independent accumulation over the same blobs should agree")
	}
}

// End-to-end: encode a checkpoint, split into blobs, decode back.
func TestCheckpointThroughBlobsEndToEnd(t *testing.T) {
	c := &CheckpointBlobData{
		Blocks: []*BlockBlobData{
			sampleBlock(1, []*types.TxEffect{sampleTx(1), sampleTx(30), sampleTx(60)}),
			sampleBlock(2, []*types.TxEffect{sampleTx(90)}),
		},
	}
	c.Blocks[0].L1ToL2MessageSubtreeRoot = ComputeL1ToL2SubtreeRoot(makeFields(t, 1))

	encoded, err := c.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	blobs, err := BlobsFromFields(encoded)
	if err != nil {
		t.Fatalf("BlobsFromFields error: %v", err)
	}
	if len(blobs) != 1 {
		t.Fatalf("small checkpoint should fit one blob, got %d", len(blobs))
	}

	full := blobs[0].Fields()
	decoded, err := DecodeCheckpointBlobData(full)
	if err != nil {
		t.Fatalf("DecodeCheckpointBlobData error: %v", err)
	}
	if !decoded.Equal(c) {
		t.Error("checkpoint should round-trip through blob assembly")
	}

	// A checkpoint exceeding one blob's capacity splits across blobs.
	big := &CheckpointBlobData{}
	for i := 0; i < 40; i++ {
		blk := sampleBlock(uint64(i+1), []*types.TxEffect{
			sampleTx(uint64(i * 100)), sampleTx(uint64(i*100 + 40)),
		})
		big.Blocks = append(big.Blocks, blk)
	}
	// Pad one block with enough note hashes to push past FieldsPerBlob.
	big.Blocks[0].Txs[0].NoteHashes = makeFields(t, 4000)

	bigEncoded, err := big.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if len(bigEncoded) <= types.FieldsPerBlob {
		t.Fatalf("test input should exceed one blob, has %d fields", len(bigEncoded))
	}
	bigBlobs, err := BlobsFromFields(bigEncoded)
	if err != nil {
		t.Fatalf("BlobsFromFields error: %v", err)
	}
	if len(bigBlobs) < 2 {
		t.Fatalf("oversized checkpoint should span multiple blobs, got %d", len(bigBlobs))
	}

	var rejoined []fields.Field
	for _, b := range bigBlobs {
		rejoined = append(rejoined, b.Fields()...)
	}
	bigDecoded, err := DecodeCheckpointBlobData(rejoined)
	if err != nil {
		t.Fatalf("DecodeCheckpointBlobData error: %v", err)
	}
	if !bigDecoded.Equal(big) {
		t.Error("multi-blob checkpoint should round-trip through blob assembly")
	}
}
