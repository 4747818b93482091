// Package metrics provides observability for the sorting server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Sort metrics
	SortCount      int64
	SortLatencySum int64 // nanoseconds
	SortLatencyMax int64

	// Tree metrics
	KeywordQueries int64
	ItemsLearned   int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSort records a served sort request.
func (c *Collector) RecordSort(latency time.Duration) {
	atomic.AddInt64(&c.SortCount, 1)
	atomic.AddInt64(&c.SortLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.SortLatencyMax) {
		atomic.StoreInt64(&c.SortLatencyMax, int64(latency))
	}
}

// RecordKeywordQuery records an order/depth/validity lookup.
func (c *Collector) RecordKeywordQuery() {
	atomic.AddInt64(&c.KeywordQueries, 1)
}

// RecordItemsLearned records synthetic entries registered for unknown
// identities.
func (c *Collector) RecordItemsLearned(count int64) {
	atomic.AddInt64(&c.ItemsLearned, count)
}

// RecordWSConnect records a new WebSocket connection.
func (c *Collector) RecordWSConnect() {
	atomic.AddInt64(&c.WSConnectionsActive, 1)
}

// RecordWSDisconnect records a dropped WebSocket connection.
func (c *Collector) RecordWSDisconnect() {
	atomic.AddInt64(&c.WSConnectionsActive, -1)
}

// RecordWSMessageIn records an incoming WebSocket message.
func (c *Collector) RecordWSMessageIn() {
	atomic.AddInt64(&c.WSMessagesIn, 1)
}

// RecordWSMessageOut records an outgoing WebSocket message.
func (c *Collector) RecordWSMessageOut() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sortCount := atomic.LoadInt64(&c.SortCount)

	var sortAvg float64
	if sortCount > 0 {
		sortAvg = float64(atomic.LoadInt64(&c.SortLatencySum)) / float64(sortCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sort": map[string]interface{}{
			"count":          sortCount,
			"avg_latency_ms": sortAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.SortLatencyMax)) / 1e6,
		},

		"tree": map[string]interface{}{
			"keyword_queries": atomic.LoadInt64(&c.KeywordQueries),
			"items_learned":   atomic.LoadInt64(&c.ItemsLearned),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP stacksort_sorts_total Total served sort requests\n")
		fmt.Fprintf(w, "# TYPE stacksort_sorts_total counter\n")
		fmt.Fprintf(w, "stacksort_sorts_total %d\n\n", atomic.LoadInt64(&c.SortCount))

		fmt.Fprintf(w, "# HELP stacksort_sort_latency_max_ms Maximum sort latency\n")
		fmt.Fprintf(w, "# TYPE stacksort_sort_latency_max_ms gauge\n")
		fmt.Fprintf(w, "stacksort_sort_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.SortLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP stacksort_keyword_queries_total Total keyword lookups\n")
		fmt.Fprintf(w, "# TYPE stacksort_keyword_queries_total counter\n")
		fmt.Fprintf(w, "stacksort_keyword_queries_total %d\n\n", atomic.LoadInt64(&c.KeywordQueries))

		fmt.Fprintf(w, "# HELP stacksort_items_learned_total Synthetic entries registered for unknown identities\n")
		fmt.Fprintf(w, "# TYPE stacksort_items_learned_total counter\n")
		fmt.Fprintf(w, "stacksort_items_learned_total %d\n\n", atomic.LoadInt64(&c.ItemsLearned))

		fmt.Fprintf(w, "# HELP stacksort_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE stacksort_ws_connections gauge\n")
		fmt.Fprintf(w, "stacksort_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP stacksort_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE stacksort_ws_messages_total counter\n")
		fmt.Fprintf(w, "stacksort_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "stacksort_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
