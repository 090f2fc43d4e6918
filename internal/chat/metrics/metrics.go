// Package metrics collects service counters for the chat pipeline.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// ChatMetrics holds the service counters.
type ChatMetrics struct {
	conversationsStarted uint64
	answersTotal         uint64
	answersErrors        uint64
	cacheHits            uint64
	cacheMisses          uint64

	retrievalTotal  uint64
	retrievalErrors uint64
	llmCallsTotal   uint64
	llmCallsErrors  uint64

	documentsIndexed uint64
	chunksIndexed    uint64

	durationMu        sync.Mutex
	retrievalDuration float64
	llmCallsDuration  float64

	startTime time.Time
}

var (
	global *ChatMetrics
	once   sync.Once
)

// Get returns the process-wide metrics instance.
func Get() *ChatMetrics {
	once.Do(func() {
		global = &ChatMetrics{startTime: time.Now()}
	})
	return global
}

// RecordConversationStarted counts a new conversation.
func (m *ChatMetrics) RecordConversationStarted() {
	atomic.AddUint64(&m.conversationsStarted, 1)
}

// RecordAnswer counts an answered turn and its cache outcome.
func (m *ChatMetrics) RecordAnswer(cacheHit bool, err error) {
	atomic.AddUint64(&m.answersTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.answersErrors, 1)
		return
	}
	if cacheHit {
		atomic.AddUint64(&m.cacheHits, 1)
	} else {
		atomic.AddUint64(&m.cacheMisses, 1)
	}
}

// RecordRetrieval counts a vector search.
func (m *ChatMetrics) RecordRetrieval(duration time.Duration, err error) {
	atomic.AddUint64(&m.retrievalTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.retrievalErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.retrievalDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordLLMCall counts a generation call.
func (m *ChatMetrics) RecordLLMCall(duration time.Duration, err error) {
	atomic.AddUint64(&m.llmCallsTotal, 1)
	if err != nil {
		atomic.AddUint64(&m.llmCallsErrors, 1)
		return
	}

	m.durationMu.Lock()
	m.llmCallsDuration += duration.Seconds()
	m.durationMu.Unlock()
}

// RecordIndexing counts indexed documents and chunks.
func (m *ChatMetrics) RecordIndexing(documents, chunks int) {
	atomic.AddUint64(&m.documentsIndexed, uint64(documents))
	atomic.AddUint64(&m.chunksIndexed, uint64(chunks))
}

// Stats returns a snapshot for the status endpoint.
func (m *ChatMetrics) Stats() map[string]any {
	m.durationMu.Lock()
	retrievalDuration := m.retrievalDuration
	llmDuration := m.llmCallsDuration
	m.durationMu.Unlock()

	cacheHits := atomic.LoadUint64(&m.cacheHits)
	cacheMisses := atomic.LoadUint64(&m.cacheMisses)
	cacheHitRate := 0.0
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = float64(cacheHits) / float64(cacheHits+cacheMisses)
	}

	retrievalTotal := atomic.LoadUint64(&m.retrievalTotal)
	avgRetrieval := 0.0
	if retrievalTotal > 0 {
		avgRetrieval = retrievalDuration / float64(retrievalTotal)
	}

	llmTotal := atomic.LoadUint64(&m.llmCallsTotal)
	avgLLM := 0.0
	if llmTotal > 0 {
		avgLLM = llmDuration / float64(llmTotal)
	}

	return map[string]any{
		"conversations": map[string]any{
			"started": atomic.LoadUint64(&m.conversationsStarted),
		},
		"answers": map[string]any{
			"total":          atomic.LoadUint64(&m.answersTotal),
			"errors":         atomic.LoadUint64(&m.answersErrors),
			"cache_hits":     cacheHits,
			"cache_misses":   cacheMisses,
			"cache_hit_rate": cacheHitRate,
		},
		"retrieval": map[string]any{
			"total":             retrievalTotal,
			"errors":            atomic.LoadUint64(&m.retrievalErrors),
			"avg_duration_secs": avgRetrieval,
		},
		"llm": map[string]any{
			"calls_total":       llmTotal,
			"errors":            atomic.LoadUint64(&m.llmCallsErrors),
			"avg_duration_secs": avgLLM,
		},
		"indexing": map[string]any{
			"documents_indexed": atomic.LoadUint64(&m.documentsIndexed),
			"chunks_indexed":    atomic.LoadUint64(&m.chunksIndexed),
		},
		"uptime_seconds": time.Since(m.startTime).Seconds(),
	}
}

// Reset clears all counters. Test use only.
func (m *ChatMetrics) Reset() {
	atomic.StoreUint64(&m.conversationsStarted, 0)
	atomic.StoreUint64(&m.answersTotal, 0)
	atomic.StoreUint64(&m.answersErrors, 0)
	atomic.StoreUint64(&m.cacheHits, 0)
	atomic.StoreUint64(&m.cacheMisses, 0)
	atomic.StoreUint64(&m.retrievalTotal, 0)
	atomic.StoreUint64(&m.retrievalErrors, 0)
	atomic.StoreUint64(&m.llmCallsTotal, 0)
	atomic.StoreUint64(&m.llmCallsErrors, 0)
	atomic.StoreUint64(&m.documentsIndexed, 0)
	atomic.StoreUint64(&m.chunksIndexed, 0)

	m.durationMu.Lock()
	m.retrievalDuration = 0
	m.llmCallsDuration = 0
	m.startTime = time.Now()
	m.durationMu.Unlock()
}
