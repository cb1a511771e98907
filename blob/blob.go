package blob

import (
	"fmt"
	"sync"

	goethkzg "github.com/crate-crypto/go-eth-kzg"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
	"github.com/grease-xmr/aztec-packages-sub005/types"
)

// Commitment is a 48-byte compressed BLS12-381 G1 point committing to a
// blob's polynomial.
type Commitment = goethkzg.KZGCommitment

// Proof is a 48-byte compressed G1 KZG opening proof.
type Proof = goethkzg.KZGProof

// challengeDomain separates the per-blob evaluation challenge from other
// uses of the transcript hash.
const challengeDomain = "aztec-blob-challenge-z"

// goKZGScalar adapts a serialized field element to the KZG library's scalar
// type.
func goKZGScalar(b [32]byte) goethkzg.Scalar {
	return goethkzg.Scalar(b)
}

var (
	kzgOnce sync.Once
	kzgCtx  *goethkzg.Context
	kzgErr  error
)

// kzgContext returns the process-wide KZG context, initialized once from the
// embedded Ethereum ceremony trusted setup.
func kzgContext() (*goethkzg.Context, error) {
	kzgOnce.Do(func() {
		kzgCtx, kzgErr = goethkzg.NewContext4096Secure()
		if kzgErr != nil {
			kzgErr = fmt.Errorf("blob: failed to initialize kzg context: %w", kzgErr)
		}
	})
	return kzgCtx, kzgErr
}

// Blob is a fixed-capacity container of field elements with its KZG
// commitment. Unfilled trailing slots are zero.
type Blob struct {
	fields     []fields.Field
	commitment Commitment
}

// NewBlob commits to at most types.FieldsPerBlob field elements.
func NewBlob(fs []fields.Field) (*Blob, error) {
	if len(fs) > types.FieldsPerBlob {
		return nil, fmt.Errorf("blob: %d fields exceed blob capacity %d", len(fs), types.FieldsPerBlob)
	}
	ctx, err := kzgContext()
	if err != nil {
		return nil, err
	}

	b := &Blob{fields: make([]fields.Field, len(fs))}
	copy(b.fields, fs)

	kzgBlob := b.ToKZGBlob()
	commitment, err := ctx.BlobToKZGCommitment(kzgBlob, 0)
	if err != nil {
		return nil, fmt.Errorf("blob: commitment failed: %w", err)
	}
	b.commitment = commitment
	return b, nil
}

// BlobsFromFields partitions a flat field sequence into consecutive blobs of
// at most types.FieldsPerBlob fields each. The last blob may be short. An
// empty input yields exactly one all-zero blob: the protocol always
// publishes at least one blob per slot.
func BlobsFromFields(fs []fields.Field) ([]*Blob, error) {
	if len(fs) == 0 {
		b, err := NewBlob(nil)
		if err != nil {
			return nil, err
		}
		return []*Blob{b}, nil
	}

	var blobs []*Blob
	for start := 0; start < len(fs); start += types.FieldsPerBlob {
		end := start + types.FieldsPerBlob
		if end > len(fs) {
			end = len(fs)
		}
		b, err := NewBlob(fs[start:end])
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, b)
	}
	return blobs, nil
}

// Fields returns the blob's field elements, excluding implicit trailing
// zeros.
func (b *Blob) Fields() []fields.Field {
	return b.fields
}

// Commitment returns the blob's KZG commitment.
func (b *Blob) Commitment() Commitment {
	return b.commitment
}

// ToKZGBlob serializes the blob into the 4096-scalar wire form, zero-padded.
func (b *Blob) ToKZGBlob() *goethkzg.Blob {
	var out goethkzg.Blob
	for i, f := range b.fields {
		fb := f.Bytes()
		copy(out[i*types.BytesPerFieldElement:], fb[:])
	}
	return &out
}

// ChallengeZ derives the blob's own Fiat-Shamir evaluation challenge by
// hashing its field contents under a domain separator. Batched accumulation
// uses a shared epoch-wide challenge instead; this per-blob challenge serves
// standalone blob openings.
func (b *Blob) ChallengeZ() fields.Field {
	data := make([]byte, 0, len(b.fields)*types.BytesPerFieldElement)
	for _, f := range b.fields {
		fb := f.Bytes()
		data = append(data, fb[:]...)
	}
	return fields.HashToField(challengeDomain, data)
}

// Evaluate opens the blob's polynomial at the challenge point z, returning
// the evaluation y and the KZG opening proof. With verifyProof set, the
// proof is checked against the blob's commitment before being returned.
func (b *Blob) Evaluate(z fields.Field, verifyProof bool) (fields.Field, Proof, error) {
	var y fields.Field

	ctx, err := kzgContext()
	if err != nil {
		return y, Proof{}, err
	}

	zb := z.Bytes()
	proof, yScalar, err := ctx.ComputeKZGProof(b.ToKZGBlob(), goKZGScalar(zb), 0)
	if err != nil {
		return y, Proof{}, fmt.Errorf("blob: opening proof failed: %w", err)
	}
	y, err = fields.NewFromBytes(yScalar[:])
	if err != nil {
		return y, Proof{}, fmt.Errorf("blob: evaluation is not canonical: %w", err)
	}

	if verifyProof {
		if err := ctx.VerifyKZGProof(b.commitment, goKZGScalar(zb), yScalar, proof); err != nil {
			return y, Proof{}, fmt.Errorf("blob: opening proof rejected: %w", err)
		}
	}
	return y, proof, nil
}
