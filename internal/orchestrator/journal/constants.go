// Package journal appends completed results to a JSON-lines file in batches
package journal

import "time"

// Journal batcher defaults
const (
	DefaultBatcherMaxSize    = 20
	DefaultBatcherFlushDelay = 2 * time.Second

	// Batches waiting for the writer before Add blocks
	pendingBatches = 8
)
