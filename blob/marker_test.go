package blob

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

func TestTxStartMarkerRoundTrip(t *testing.T) {
	m, err := NewTxStartMarker(25, 3, 2, 1, 4, 2, 5, 6, 0)
	if err != nil {
		t.Fatalf("NewTxStartMarker error: %v", err)
	}

	decoded, err := DecodeTxStartMarker(m.Encode())
	if err != nil {
		t.Fatalf("DecodeTxStartMarker error: %v", err)
	}
	if decoded != m {
		t.Errorf("round trip: got %+v, want %+v", decoded, m)
	}
}

func TestTxStartMarkerRejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name string
		args [9]int
	}{
		{"total fields", [9]int{1 << 16, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"note hashes", [9]int{0, 1 << 16, 0, 0, 0, 0, 0, 0, 0}},
		{"negative count", [9]int{0, 0, -1, 0, 0, 0, 0, 0, 0}},
		{"contract class log", [9]int{0, 0, 0, 0, 0, 0, 0, 0, 1 << 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := tc.args
			_, err := NewTxStartMarker(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7], a[8])
			if err == nil {
				t.Error("expected out-of-range rejection at construction")
			}
		})
	}
}

func TestBlockEndMarkerRoundTrip(t *testing.T) {
	m, err := NewBlockEndMarker(12345, 1700000099, 7)
	if err != nil {
		t.Fatalf("NewBlockEndMarker error: %v", err)
	}

	decoded, err := DecodeBlockEndMarker(m.Encode())
	if err != nil {
		t.Fatalf("DecodeBlockEndMarker error: %v", err)
	}
	if decoded != m {
		t.Errorf("round trip: got %+v, want %+v", decoded, m)
	}
}

func TestBlockEndMarkerRejectsOutOfRange(t *testing.T) {
	if _, err := NewBlockEndMarker(1<<32, 0, 0); err == nil {
		t.Error("expected 33-bit block number rejection")
	}
	if _, err := NewBlockEndMarker(0, 0, -1); err == nil {
		t.Error("expected negative tx count rejection")
	}
}

func TestMarkersAreCanonicalFields(t *testing.T) {
	m, _ := NewTxStartMarker(0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF, 0xFFFF)
	f := m.Encode()
	b := f.Bytes()
	if _, err := fields.NewFromBytes(b[:]); err != nil {
		t.Errorf("tx start marker should encode to a canonical field: %v", err)
	}

	e, _ := NewBlockEndMarker(1<<32-1, ^uint64(0), 1<<32-1)
	f = e.Encode()
	b = f.Bytes()
	if _, err := fields.NewFromBytes(b[:]); err != nil {
		t.Errorf("block end marker should encode to a canonical field: %v", err)
	}
}

// A random field value must never be misidentified as a marker; decoders use
// this to reject wrong offsets in arbitrary data.
func TestRandomFieldIsNotAMarker(t *testing.T) {
	for i := 0; i < 1000; i++ {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			t.Fatalf("rand: %v", err)
		}
		f := fields.NewReduced(buf[:])
		if IsTxStartMarker(f) {
			t.Fatalf("random field misidentified as tx start marker: %s", f.String())
		}
		if IsBlockEndMarker(f) {
			t.Fatalf("random field misidentified as block end marker: %s", f.String())
		}
	}
}

func TestDecodeMarkerWrongKind(t *testing.T) {
	txm, _ := NewTxStartMarker(3, 0, 0, 0, 0, 0, 0, 0, 0)
	if _, err := DecodeBlockEndMarker(txm.Encode()); !errors.Is(err, ErrDeserialization) {
		t.Errorf("expected deserialization error decoding tx marker as block marker, got %v", err)
	}

	bem, _ := NewBlockEndMarker(1, 2, 3)
	if _, err := DecodeTxStartMarker(bem.Encode()); !errors.Is(err, ErrDeserialization) {
		t.Errorf("expected deserialization error decoding block marker as tx marker, got %v", err)
	}
}

func TestCorruptedMarkerZeroSpan(t *testing.T) {
	m, _ := NewTxStartMarker(3, 0, 0, 0, 0, 0, 0, 0, 0)
	f := m.Encode()
	b := f.Bytes()
	b[5] = 0x01 // inside the mandatory zero span
	corrupted, err := fields.NewFromBytes(b[:])
	if err != nil {
		t.Fatalf("corrupted value should still be canonical: %v", err)
	}
	if IsTxStartMarker(corrupted) {
		t.Error("corrupted zero span should fail marker validation")
	}
}
