package metrics

import (
	"sync"
	"time"
)

// InMemoryMetrics implements Metrics with plain counters. It is
// safe for concurrent use so parallel runs can share one
// instance.
type InMemoryMetrics struct {
	mu            sync.Mutex
	tests         map[string]int
	durations     map[string][]time.Duration
	hookFailures  map[string]int
	probeAttempts []int
	probeFailures int
	runTotal      int
}

// NewInMemoryMetrics creates an empty InMemoryMetrics.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		tests:        make(map[string]int),
		durations:    make(map[string][]time.Duration),
		hookFailures: make(map[string]int),
	}
}

func (m *InMemoryMetrics) RecordTest(run, status string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[run+":"+status]++
	m.durations[run] = append(m.durations[run], duration)
}

func (m *InMemoryMetrics) RecordHookFailure(run, phase string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hookFailures[run+":"+phase]++
}

func (m *InMemoryMetrics) RecordProbe(attempts int, succeeded bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probeAttempts = append(m.probeAttempts, attempts)
	if !succeeded {
		m.probeFailures++
	}
}

func (m *InMemoryMetrics) IncrementRunTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runTotal++
}

// TestCount returns the count for a run+status combination.
func (m *InMemoryMetrics) TestCount(run, status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tests[run+":"+status]
}

// HookFailures returns the failure count for a run+phase
// combination.
func (m *InMemoryMetrics) HookFailures(run, phase string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hookFailures[run+":"+phase]
}

// ProbeAttempts returns the attempt count of every recorded
// WaitFor call, in recording order.
func (m *InMemoryMetrics) ProbeAttempts() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.probeAttempts))
	copy(out, m.probeAttempts)
	return out
}

// ProbeFailures returns how many WaitFor calls gave up.
func (m *InMemoryMetrics) ProbeFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeFailures
}

// RunTotal returns the total number of runs.
func (m *InMemoryMetrics) RunTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runTotal
}
