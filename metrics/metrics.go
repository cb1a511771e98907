// Package metrics collects proving pipeline counters: how many proof
// requests were dispatched, completed and failed, and how much wall time
// each circuit consumed. All methods are safe for concurrent use; proof
// completions arrive from worker goroutines.
package metrics

import (
	"sync"
	"time"
)

// CircuitStats aggregates the requests observed for one circuit.
type CircuitStats struct {
	Dispatched int
	Completed  int
	Failed     int
	TotalTime  time.Duration
}

// ProvingMetrics tracks the progress of an epoch proving run.
type ProvingMetrics struct {
	mu         sync.Mutex
	dispatched int
	completed  int
	failed     int
	perCircuit map[string]*CircuitStats
}

// NewProvingMetrics returns an empty collector.
func NewProvingMetrics() *ProvingMetrics {
	return &ProvingMetrics{perCircuit: make(map[string]*CircuitStats)}
}

// RecordDispatch counts one issued proof request.
func (m *ProvingMetrics) RecordDispatch(circuit string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched++
	m.circuit(circuit).Dispatched++
}

// RecordCompletion counts one successful proof and its proving wall time.
func (m *ProvingMetrics) RecordCompletion(circuit string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed++
	s := m.circuit(circuit)
	s.Completed++
	s.TotalTime += elapsed
}

// RecordFailure counts one failed proof request.
func (m *ProvingMetrics) RecordFailure(circuit string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
	m.circuit(circuit).Failed++
}

func (m *ProvingMetrics) circuit(name string) *CircuitStats {
	s, ok := m.perCircuit[name]
	if !ok {
		s = &CircuitStats{}
		m.perCircuit[name] = s
	}
	return s
}

// Snapshot is a point-in-time copy of the collected counters.
type Snapshot struct {
	Dispatched int
	Completed  int
	Failed     int
	PerCircuit map[string]CircuitStats
}

// Snapshot returns a copy of the current counters.
func (m *ProvingMetrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := Snapshot{
		Dispatched: m.dispatched,
		Completed:  m.completed,
		Failed:     m.failed,
		PerCircuit: make(map[string]CircuitStats, len(m.perCircuit)),
	}
	for name, s := range m.perCircuit {
		out.PerCircuit[name] = *s
	}
	return out
}
