package infra

import "sync/atomic"

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	cyclesCompleted atomic.Uint64
	cyclesAborted   atomic.Uint64
	fetchErrors     atomic.Uint64
	fetchRetries    atomic.Uint64
	cacheHits       atomic.Uint64
	cacheMisses     atomic.Uint64
	recordsUpdated  atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCycle records a completed refresh cycle.
func (m *Metrics) RecordCycle() {
	m.cyclesCompleted.Add(1)
	m.recordsUpdated.Add(1)
}

// RecordAbortedCycle records a cycle that aborted before merging.
func (m *Metrics) RecordAbortedCycle() {
	m.cyclesAborted.Add(1)
}

// RecordFetchError records a failed remote fetch.
func (m *Metrics) RecordFetchError() {
	m.fetchErrors.Add(1)
}

// RecordFetchRetry records a retried remote fetch.
func (m *Metrics) RecordFetchRetry() {
	m.fetchRetries.Add(1)
}

// RecordCacheHit records a price-cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a price-cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	CyclesCompleted uint64 `json:"cycles_completed"`
	CyclesAborted   uint64 `json:"cycles_aborted"`
	FetchErrors     uint64 `json:"fetch_errors"`
	FetchRetries    uint64 `json:"fetch_retries"`
	CacheHits       uint64 `json:"cache_hits"`
	CacheMisses     uint64 `json:"cache_misses"`
	RecordsUpdated  uint64 `json:"records_updated"`
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CyclesCompleted: m.cyclesCompleted.Load(),
		CyclesAborted:   m.cyclesAborted.Load(),
		FetchErrors:     m.fetchErrors.Load(),
		FetchRetries:    m.fetchRetries.Load(),
		CacheHits:       m.cacheHits.Load(),
		CacheMisses:     m.cacheMisses.Load(),
		RecordsUpdated:  m.recordsUpdated.Load(),
	}
}
