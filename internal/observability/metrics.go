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
	sweepCount   map[string]int64
	pingCount    int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		sweepCount:   make(map[string]int64),
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

// RecordSweep increments per-sweep pass counters.
func (m *Metrics) RecordSweep(name string, failed bool) {
	if m == nil {
		return
	}
	key := name
	if failed {
		key += "|error"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepCount[key]++
}

// RecordPing counts priority ping deliveries.
func (m *Metrics) RecordPing() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingCount++
}

// Snapshot copies current counters for the stats endpoint.
func (m *Metrics) Snapshot() (requests, errors, sweeps map[string]int64, pings int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	requests = copyCounts(m.requestCount)
	errors = copyCounts(m.errorCount)
	sweeps = copyCounts(m.sweepCount)
	return requests, errors, sweeps, m.pingCount
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
