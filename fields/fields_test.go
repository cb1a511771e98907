package fields

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
)

func TestNewFromBytesCanonical(t *testing.T) {
	f, err := NewFromBytes([]byte{0x01, 0x02})
	if err != nil {
		t.Fatalf("NewFromBytes error: %v", err)
	}
	if got := ToUint256(f).Uint64(); got != 0x0102 {
		t.Errorf("value: got %#x, want 0x0102", got)
	}
}

func TestNewFromBytesRejectsModulus(t *testing.T) {
	mod := Modulus().Bytes()
	if _, err := NewFromBytes(mod); err != ErrNonCanonical {
		t.Errorf("expected ErrNonCanonical for r, got %v", err)
	}

	over := new(big.Int).Add(Modulus(), big.NewInt(1)).Bytes()
	if _, err := NewFromBytes(over); err != ErrNonCanonical {
		t.Errorf("expected ErrNonCanonical for r+1, got %v", err)
	}
}

func TestNewFromBytesRejectsOversized(t *testing.T) {
	if _, err := NewFromBytes(make([]byte, 33)); err != ErrNonCanonical {
		t.Errorf("expected ErrNonCanonical for 33-byte input, got %v", err)
	}
}

func TestNewReducedWraps(t *testing.T) {
	over := new(big.Int).Add(Modulus(), big.NewInt(7))
	f := NewReduced(over.Bytes())
	if got := ToUint256(f).Uint64(); got != 7 {
		t.Errorf("reduced value: got %d, want 7", got)
	}
}

func TestUint256RoundTrip(t *testing.T) {
	v := uint256.NewInt(0).SetBytes([]byte{0x12, 0x34, 0x56, 0x78, 0x9a})
	f, err := NewFromUint256(v)
	if err != nil {
		t.Fatalf("NewFromUint256 error: %v", err)
	}
	if back := ToUint256(f); !back.Eq(v) {
		t.Errorf("round trip: got %s, want %s", back, v)
	}
}

func TestBytesRoundTrip(t *testing.T) {
	f := NewFromUint64(0xdeadbeef)
	b := f.Bytes()
	back, err := NewFromBytes(b[:])
	if err != nil {
		t.Fatalf("NewFromBytes error: %v", err)
	}
	if !back.Equal(&f) {
		t.Errorf("round trip mismatch: got %s, want %s", back.String(), f.String())
	}
}

func TestHashToFieldDeterministic(t *testing.T) {
	a := HashToField("test-domain", []byte("payload"))
	b := HashToField("test-domain", []byte("payload"))
	if !a.Equal(&b) {
		t.Error("same domain and payload should hash to the same field")
	}

	c := HashToField("other-domain", []byte("payload"))
	if a.Equal(&c) {
		t.Error("different domains should not collide")
	}
}

func TestHashToFieldCanonical(t *testing.T) {
	f := HashToField("canon", []byte{0xff})
	b := f.Bytes()
	if _, err := NewFromBytes(b[:]); err != nil {
		t.Errorf("hash output should be canonical: %v", err)
	}
	if bytes.Equal(b[:], make([]byte, 32)) {
		t.Error("hash output should not be zero")
	}
}
