// Package trigger turns OS signals and the global hotkey into pipeline runs.
package trigger

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/light4/christina/internal/trace"
)

// Sources reported with each submitted run.
const (
	SourceSignal = "signal"
	SourceHotkey = "hotkey"
)

// Submitter enqueues a capture run without blocking.
type Submitter interface {
	Submit(source string) bool
}

// Signals maps process signals to actions.
type Signals struct {
	Submitter Submitter
	// Shutdown is called once on SIGTERM or SIGQUIT.
	Shutdown func()
}

// Watched lists the signals Listen subscribes to.
var Watched = []os.Signal{syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT}

// Listen subscribes to Watched and dispatches until ctx is done.
func (s Signals) Listen(ctx context.Context) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, Watched...)
	defer signal.Stop(ch)
	s.Run(ctx, ch)
}

// Run dispatches signals read from ch until ctx is done or ch is closed.
func (s Signals) Run(ctx context.Context, ch <-chan os.Signal) {
	log := trace.Logger(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			switch sig {
			case syscall.SIGINT:
				if !s.Submitter.Submit(SourceSignal) {
					log.Info("capture already pending, signal coalesced")
				}
			case syscall.SIGHUP:
				log.Info("SIGHUP received, nothing to reload")
			case syscall.SIGTERM, syscall.SIGQUIT:
				log.Info("shutdown requested", "signal", sig.String())
				if s.Shutdown != nil {
					s.Shutdown()
				}
				return
			}
		}
	}
}
