// Package fields defines the base scalar type of the proving system. All
// structured blob data is encoded as an ordered sequence of BLS12-381 scalar
// field elements, matching the field the data-availability commitment scheme
// (KZG over BLS12-381) operates in.
package fields

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Field is a BLS12-381 scalar field element, the atomic unit of encoded blob
// data. The zero value is the additive identity and is a valid field element.
type Field = fr.Element

// Bytes is the canonical big-endian serialized size of a Field.
const Bytes = fr.Bytes

var (
	// ErrNonCanonical is returned when a 32-byte value is not a canonical
	// field element (it is >= the BLS12-381 scalar modulus).
	ErrNonCanonical = errors.New("fields: value is not a canonical field element")
)

// Modulus returns the BLS12-381 scalar field modulus r.
func Modulus() *big.Int {
	return fr.Modulus()
}

// NewFromBytes parses a big-endian byte slice of at most 32 bytes as a
// canonical field element. Values >= r are rejected with ErrNonCanonical;
// the wire format requires canonical scalars so that encode/decode is a
// bijection.
func NewFromBytes(b []byte) (Field, error) {
	var f Field
	if len(b) > Bytes {
		return f, ErrNonCanonical
	}
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return f, ErrNonCanonical
	}
	f.SetBigInt(v)
	return f, nil
}

// NewReduced interprets a big-endian byte slice as an integer and reduces it
// modulo r. Unlike NewFromBytes it never fails; it is meant for deriving
// field elements from hash output, not for decoding wire data.
func NewReduced(b []byte) Field {
	var f Field
	f.SetBigInt(new(big.Int).SetBytes(b))
	return f
}

// NewFromUint64 returns the field element with the given small value.
func NewFromUint64(v uint64) Field {
	var f Field
	f.SetUint64(v)
	return f
}

// NewFromUint256 converts a 256-bit unsigned integer to a canonical field
// element. Values >= r are rejected.
func NewFromUint256(v *uint256.Int) (Field, error) {
	b := v.Bytes32()
	return NewFromBytes(b[:])
}

// NewFromHash reduces a 32-byte hash modulo r. Hash output is uniform over
// 2^256, so the reduction bias is negligible.
func NewFromHash(h common.Hash) Field {
	return NewReduced(h[:])
}

// ToUint256 returns the canonical integer value of f as a uint256.
func ToUint256(f Field) *uint256.Int {
	b := f.Bytes()
	return new(uint256.Int).SetBytes(b[:])
}

// HashToField derives a field element from a domain separator and a list of
// byte strings via SHA3-256, reduced modulo r. It is the Fiat-Shamir
// primitive of the blob batching transcript.
func HashToField(domain string, data ...[]byte) Field {
	h := sha3.New256()
	h.Write([]byte(domain))
	for _, d := range data {
		h.Write(d)
	}
	return NewReduced(h.Sum(nil))
}
