package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCountersAggregate(t *testing.T) {
	m := NewProvingMetrics()

	m.RecordDispatch("tube")
	m.RecordDispatch("tube")
	m.RecordDispatch("merge")
	m.RecordCompletion("tube", 10*time.Millisecond)
	m.RecordCompletion("tube", 30*time.Millisecond)
	m.RecordFailure("merge")

	s := m.Snapshot()
	if s.Dispatched != 3 {
		t.Errorf("dispatched: got %d, want 3", s.Dispatched)
	}
	if s.Completed != 2 {
		t.Errorf("completed: got %d, want 2", s.Completed)
	}
	if s.Failed != 1 {
		t.Errorf("failed: got %d, want 1", s.Failed)
	}
	tube := s.PerCircuit["tube"]
	if tube.Dispatched != 2 || tube.Completed != 2 || tube.TotalTime != 40*time.Millisecond {
		t.Errorf("tube stats: got %+v", tube)
	}
	merge := s.PerCircuit["merge"]
	if merge.Dispatched != 1 || merge.Failed != 1 {
		t.Errorf("merge stats: got %+v", merge)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := NewProvingMetrics()
	m.RecordCompletion("avm", time.Millisecond)

	s := m.Snapshot()
	m.RecordCompletion("avm", time.Millisecond)

	if s.PerCircuit["avm"].Completed != 1 {
		t.Errorf("snapshot mutated after the fact: got %d completions", s.PerCircuit["avm"].Completed)
	}
}

func TestConcurrentRecording(t *testing.T) {
	m := NewProvingMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordDispatch("tube")
				m.RecordCompletion("tube", time.Microsecond)
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.Dispatched != 800 || s.Completed != 800 {
		t.Errorf("got dispatched=%d completed=%d, want 800 each", s.Dispatched, s.Completed)
	}
}
