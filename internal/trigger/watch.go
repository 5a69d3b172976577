package trigger

import (
	"context"
	"time"

	"github.com/light4/christina/internal/trace"
)

// SourceWatch labels runs started by the periodic watcher.
const SourceWatch = "watch"

// Watch submits a capture every Interval. Ticks that find a run already
// pending are dropped, so a slow OCR never builds a backlog. Pair it with
// similar-frame skipping to avoid re-translating a static subtitle.
type Watch struct {
	Submitter Submitter
	Interval  time.Duration
}

// Run ticks until ctx is done. A non-positive interval returns at once.
func (w Watch) Run(ctx context.Context) {
	if w.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	log := trace.Logger(ctx)
	log.Info("watching subtitle region", "interval", w.Interval)
	dropped := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.Submitter.Submit(SourceWatch) {
				if dropped > 0 {
					log.Debug("watch ticks dropped while busy", "count", dropped)
					dropped = 0
				}
				continue
			}
			dropped++
		}
	}
}
