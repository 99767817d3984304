// Package metrics collects in-process counters for the docqa service.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics holds counters for queries, retrieval, reader calls, and
// ingestion.
type Metrics struct {
	queriesTotal     uint64
	queriesCacheHits uint64
	queriesErrors    uint64

	retrievalTotal    uint64
	retrievalErrors   uint64
	retrievalDuration float64 // seconds

	readerCallsTotal    uint64
	readerCallsErrors   uint64
	readerCallsDuration float64 // seconds

	documentsIngested uint64
	chunksIngested    uint64
	ingestErrors      uint64

	startTime  time.Time
	durationMu sync.Mutex
}

var (
	global *Metrics
	once   sync.Once
)

// Get returns the global metrics instance.
func Get() *Metrics {
	once.Do(func() {
		global = &Metrics{startTime: time.Now()}
	})
	return global
}

// RecordQuery records a completed query.
func (m *Metrics) RecordQuery(cacheHit bool, err error) {
	atomic.AddUint64(&m.queriesTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.queriesErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.queriesCacheHits, 1)
	}
}

// RecordRetrieval records a retrieval operation.
func (m *Metrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordReaderCall records an extractive reader call.
func (m *Metrics) RecordReaderCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.readerCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.readerCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.readerCallsDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordIngest records an ingestion batch.
func (m *Metrics) RecordIngest(documents, chunks int, err error) {
	if err != nil {
		atomic.AddUint64(&m.ingestErrors, 1)
		return
	}
	atomic.AddUint64(&m.documentsIngested, uint64(documents))
	atomic.AddUint64(&m.chunksIngested, uint64(chunks))
}

// Stats returns a snapshot of all counters.
func (m *Metrics) Stats() map[string]interface{} {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	readerDuration := m.readerCallsDuration
	m.durationMu.Unlock()

	retrievalTotal := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrievalDuration := 0.0
	if retrievalTotal > 0 {
		avgRetrievalDuration = retrievalDuration / float64(retrievalTotal)
	}

	readerTotal := atomic.LoadUint64(&m.readerCallsTotal)
	avgReaderDuration := 0.0
	if readerTotal > 0 {
		avgReaderDuration = readerDuration / float64(readerTotal)
	}

	return map[string]interface{}{
		"queries": map[string]interface{}{
			"total":      atomic.LoadUint64(&m.queriesTotal),
			"cache_hits": atomic.LoadUint64(&m.queriesCacheHits),
			"errors":     atomic.LoadUint64(&m.queriesErrors),
		},
		"retrieval": map[string]interface{}{
			"total":               retrievalTotal,
			"total_duration_secs": retrievalDuration,
			"avg_duration_secs":   avgRetrievalDuration,
			"errors":              atomic.LoadUint64(&m.retrievalErrors),
		},
		"reader": map[string]interface{}{
			"calls_total":         readerTotal,
			"total_duration_secs": readerDuration,
			"avg_duration_secs":   avgReaderDuration,
			"errors":              atomic.LoadUint64(&m.readerCallsErrors),
		},
		"ingestion": map[string]interface{}{
			"documents_ingested": atomic.LoadUint64(&m.documentsIngested),
			"chunks_ingested":    atomic.LoadUint64(&m.chunksIngested),
			"errors":             atomic.LoadUint64(&m.ingestErrors),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset clears all counters. Used by tests.
func (m *Metrics) Reset() {
	atomic.StoreUint64(&m.queriesTotal, 0)
	atomic.StoreUint64(&m.queriesCacheHits, 0)
	atomic.StoreUint64(&m.queriesErrors, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.readerCallsTotal, 0)
	atomic.StoreUint64(&m.readerCallsErrors, 0)
	atomic.StoreUint64(&m.documentsIngested, 0)
	atomic.StoreUint64(&m.chunksIngested, 0)
	atomic.StoreUint64(&m.ingestErrors, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.readerCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
