package journal

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/trace"
)

// Sink stores a batch of results.
type Sink interface {
	Write(ctx context.Context, batch []result.Result) error
}

// FileSink appends one JSON object per line to Path.
type FileSink struct {
	Path string
}

func (f FileSink) Write(_ context.Context, batch []result.Result) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return apperr.Wrap(err, apperr.Internal, "create journal dir")
	}
	file, err := os.OpenFile(f.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.Wrap(err, apperr.Internal, "open journal").WithMetadata("path", f.Path)
	}
	enc := json.NewEncoder(file)
	enc.SetEscapeHTML(false)
	for _, r := range batch {
		if err := enc.Encode(r); err != nil {
			_ = file.Close()
			return apperr.Wrap(err, apperr.Internal, "write journal").WithMetadata("path", f.Path)
		}
	}
	return file.Close()
}

// Batcher accumulates results and flushes them in batches. Batches reach
// the sink in the order they were flushed.
type Batcher struct {
	sink       Sink
	maxSize    int
	flushDelay time.Duration
	mu         sync.Mutex
	items      []result.Result
	timer      *time.Timer
	stopped    bool
	batches    chan []result.Result
	wg         sync.WaitGroup
}

// NewBatcher creates a journal batcher and starts its writer.
func NewBatcher(sink Sink, maxSize int, flushDelay time.Duration) *Batcher {
	if maxSize <= 0 {
		maxSize = DefaultBatcherMaxSize
	}
	if flushDelay <= 0 {
		flushDelay = DefaultBatcherFlushDelay
	}
	b := &Batcher{
		sink:       sink,
		maxSize:    maxSize,
		flushDelay: flushDelay,
		items:      make([]result.Result, 0, maxSize),
		batches:    make(chan []result.Result, pendingBatches),
	}
	b.wg.Add(1)
	go b.writer()
	return b
}

// Add queues a result for batched storage.
func (b *Batcher) Add(r result.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}

	b.items = append(b.items, r)

	if len(b.items) >= b.maxSize {
		b.flushLocked()
		return
	}

	// Start or reset timer for delayed flush
	if b.timer == nil {
		b.timer = time.AfterFunc(b.flushDelay, b.timerFlush)
	} else {
		b.timer.Reset(b.flushDelay)
	}
}

// Follow adds every completed result from events until the subscription
// closes. Close it only after the last run has finished so nothing
// committed during shutdown is lost.
func (b *Batcher) Follow(events <-chan result.Event) {
	for evt := range events {
		if evt.Kind == result.EventResult {
			b.Add(evt.Result)
		}
	}
}

func (b *Batcher) timerFlush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

func (b *Batcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.items) == 0 || b.stopped {
		return
	}
	items := b.items
	b.items = make([]result.Result, 0, b.maxSize)
	b.batches <- items
}

func (b *Batcher) writer() {
	defer b.wg.Done()
	for items := range b.batches {
		ctx, span := trace.StartSpan(context.Background(), "journal_flush")
		span.SetAttr("count", len(items))

		log := trace.Logger(ctx)
		if err := b.sink.Write(ctx, items); err != nil {
			span.SetAttr("error", err.Error())
			log.Warn("journal write failed", "error", err, "count", len(items))
		} else {
			log.Debug("journal written", "count", len(items))
		}
		span.Finish(ctx)
	}
}

// Flush forces immediate flush of pending items.
func (b *Batcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Stop flushes remaining items and waits for the writer. Later Adds are dropped.
func (b *Batcher) Stop() {
	b.mu.Lock()
	b.flushLocked()
	if !b.stopped {
		b.stopped = true
		close(b.batches)
	}
	b.mu.Unlock()
	b.wg.Wait()
}
