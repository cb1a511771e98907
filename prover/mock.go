package prover

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"sync"
	"time"

	"github.com/grease-xmr/aztec-packages-sub005/fields"
)

// MockProver is an in-process CircuitProver for tests. Proofs are
// deterministic digests of their inputs, so merge order and tree shape are
// observable in the output. It records every context it is handed, letting
// cancellation tests assert that all in-flight requests saw the abort
// signal.
type MockProver struct {
	// Latency is applied to every request before it completes, while
	// honoring context cancellation.
	Latency time.Duration

	// FailCircuit, when non-empty, makes every request for that circuit
	// fail with FailReason.
	FailCircuit Circuit
	FailReason  string

	mu       sync.Mutex
	contexts []context.Context
	counts   map[Circuit]int
}

var _ CircuitProver = (*MockProver)(nil)

// NewMockProver returns a mock with zero latency and no injected failures.
func NewMockProver() *MockProver {
	return &MockProver{counts: make(map[Circuit]int)}
}

// Contexts returns every context handed to the prover so far.
func (m *MockProver) Contexts() []context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]context.Context, len(m.contexts))
	copy(out, m.contexts)
	return out
}

// DispatchCount returns how many requests were issued for a circuit.
func (m *MockProver) DispatchCount(c Circuit) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[c]
}

func (m *MockProver) begin(ctx context.Context, c Circuit) error {
	m.mu.Lock()
	m.contexts = append(m.contexts, ctx)
	if m.counts == nil {
		m.counts = make(map[Circuit]int)
	}
	m.counts[c]++
	fail := m.FailCircuit == c
	m.mu.Unlock()

	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Latency):
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if fail {
		reason := m.FailReason
		if reason == "" {
			reason = "injected failure"
		}
		return &ProvingError{Circuit: c, Reason: reason}
	}
	return nil
}

func mockProof(c Circuit, parts ...[]byte) *Proof {
	h := sha256.New()
	h.Write([]byte(c))
	for _, p := range parts {
		h.Write(p)
	}
	return &Proof{
		Circuit:         c,
		Data:            h.Sum(nil),
		VerificationKey: []byte("mock-vk-" + string(c)),
	}
}

func (m *MockProver) GetBaseParityProof(ctx context.Context, msgs []fields.Field) (*Proof, error) {
	if err := m.begin(ctx, CircuitBaseParity); err != nil {
		return nil, err
	}
	var data []byte
	for _, f := range msgs {
		fb := f.Bytes()
		data = append(data, fb[:]...)
	}
	return mockProof(CircuitBaseParity, data), nil
}

func (m *MockProver) GetTubeProof(ctx context.Context, in TxProvingInput) (*Proof, error) {
	if err := m.begin(ctx, CircuitTube); err != nil {
		return nil, err
	}
	hb := in.Effect.TxHash.Bytes()
	return mockProof(CircuitTube, hb[:]), nil
}

func (m *MockProver) GetAvmProof(ctx context.Context, in TxProvingInput) (*Proof, error) {
	if err := m.begin(ctx, CircuitAvm); err != nil {
		return nil, err
	}
	hb := in.Effect.TxHash.Bytes()
	return mockProof(CircuitAvm, hb[:]), nil
}

func (m *MockProver) GetMergeProof(ctx context.Context, left, right *Proof) (*Proof, error) {
	if err := m.begin(ctx, CircuitMerge); err != nil {
		return nil, err
	}
	return mockProof(CircuitMerge, left.Data, right.Data), nil
}

func (m *MockProver) GetBlockRootProof(ctx context.Context, in BlockRootInput) (*Proof, error) {
	if err := m.begin(ctx, CircuitBlockRoot); err != nil {
		return nil, err
	}
	h := in.Header.Hash()
	return mockProof(CircuitBlockRoot, in.TxTreeRoot.Data, h[:]), nil
}

func (m *MockProver) GetCheckpointRootProof(ctx context.Context, in CheckpointRootInput) (*Proof, error) {
	if err := m.begin(ctx, CircuitCheckpointRoot); err != nil {
		return nil, err
	}
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], uint64(in.CheckpointIndex))
	return mockProof(CircuitCheckpointRoot, in.BlockTreeRoot.Data, in.ParityProof.Data, idx[:]), nil
}

func (m *MockProver) GetEpochRootProof(ctx context.Context, in EpochRootInput) (*Proof, error) {
	if err := m.begin(ctx, CircuitEpochRoot); err != nil {
		return nil, err
	}
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], in.EpochNumber)
	return mockProof(CircuitEpochRoot, in.CheckpointTreeRoot.Data, num[:]), nil
}

func (m *MockProver) GetPaddingProof(ctx context.Context) (*Proof, error) {
	if err := m.begin(ctx, CircuitPadding); err != nil {
		return nil, err
	}
	return mockProof(CircuitPadding), nil
}
