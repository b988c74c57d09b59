package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64

	cycleCount      int64
	cycleSkipped    int64
	ticketsAssessed int64
	ticketsRouted   int64
	escalations     int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordCycle accumulates the outcome of one triage cycle.
func (m *Metrics) RecordCycle(assessed, routed, escalated int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleCount++
	m.ticketsAssessed += int64(assessed)
	m.ticketsRouted += int64(routed)
	m.escalations += int64(escalated)
}

// RecordCycleSkipped counts scheduler ticks coalesced while a cycle was
// still in flight.
func (m *Metrics) RecordCycleSkipped() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleSkipped++
}

// CycleStats returns a snapshot of the triage counters.
func (m *Metrics) CycleStats() (cycles, skipped, assessed, routed, escalated int64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycleCount, m.cycleSkipped, m.ticketsAssessed, m.ticketsRouted, m.escalations
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
