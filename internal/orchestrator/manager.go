// Package orchestrator serializes pipeline runs coming from every trigger
// (startup, signals, hotkey, tray, panel, control service) and reports
// their outcome.
package orchestrator

import (
	"context"
	"errors"
	"sync"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/orchestrator/pipeline"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/trace"
)

// ErrBusy is returned when a run is already waiting in the queue.
var ErrBusy = apperr.New(apperr.Busy, "a capture is already pending")

// Runner executes pipeline passes.
type Runner interface {
	Run(ctx context.Context, in pipeline.Input) (result.Result, error)
	Translate(ctx context.Context, text, unavailable string) result.Result
}

// Notifier shows desktop notifications.
type Notifier interface {
	Notify(title, message string) error
}

// RunRecorder counts finished runs.
type RunRecorder interface {
	RunFinished(source, outcome string)
}

type request struct {
	ctx       context.Context
	input     pipeline.Input
	translate *string
	reply     chan outcome
}

type outcome struct {
	res result.Result
	err error
}

// Manager owns the single worker. At most one run executes and at most one
// more waits; further submissions are coalesced into the waiting one.
type Manager struct {
	runner      Runner
	store       *result.Store
	notifier    Notifier
	recorder    RunRecorder
	unavailable string

	queue    chan request
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  sync.Once
}

// Options configures optional collaborators of the manager.
type Options struct {
	Notifier    Notifier
	Recorder    RunRecorder
	Unavailable string // translated text shown when a manual translation fails
}

// New creates a manager; call Start to launch the worker.
func New(runner Runner, store *result.Store, opts Options) *Manager {
	return &Manager{
		runner:      runner,
		store:       store,
		notifier:    opts.Notifier,
		recorder:    opts.Recorder,
		unavailable: opts.Unavailable,
		queue:       make(chan request, QueueDepth),
		stopCh:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start launches the worker. It stops when ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) {
	m.started.Do(func() { go m.loop(ctx) })
}

// Stop stops the worker and waits for the current run to return.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	select {
	case <-m.done:
	default:
		// never started
		m.started.Do(func() { close(m.done) })
		<-m.done
	}
}

// Submit enqueues a capture run without waiting. It returns false when a run
// is already pending, in which case that run covers this request.
func (m *Manager) Submit(source string) bool {
	select {
	case m.queue <- request{ctx: context.Background(), input: pipeline.Input{Source: source}}:
		return true
	default:
		trace.Logger(context.Background()).Debug("capture already pending", "source", source)
		return false
	}
}

// Do enqueues a run and waits for its result. It fails with ErrBusy instead
// of queueing behind a pending run.
func (m *Manager) Do(ctx context.Context, in pipeline.Input) (result.Result, error) {
	req := request{ctx: ctx, input: in, reply: make(chan outcome, 1)}
	select {
	case m.queue <- req:
	default:
		return result.Result{}, ErrBusy
	}
	return m.wait(ctx, req)
}

// TranslateText translates text outside a capture and publishes the pair.
// It waits for a queue slot, so it never interleaves with a run.
func (m *Manager) TranslateText(ctx context.Context, text string) (result.Result, error) {
	req := request{ctx: ctx, translate: &text, reply: make(chan outcome, 1)}
	select {
	case m.queue <- req:
	case <-ctx.Done():
		return result.Result{}, apperr.Wrap(ctx.Err(), apperr.Cancelled, "translate cancelled")
	case <-m.stopCh:
		return result.Result{}, apperr.New(apperr.Unavailable, "shutting down")
	}
	return m.wait(ctx, req)
}

// Pending reports whether a run is waiting.
func (m *Manager) Pending() bool { return len(m.queue) > 0 }

// Current returns the published pair.
func (m *Manager) Current() result.Result { return m.store.Current() }

// History returns recent completed results.
func (m *Manager) History() []result.Result { return m.store.History() }

// Subscribe streams store events.
func (m *Manager) Subscribe() (<-chan result.Event, func()) { return m.store.Subscribe() }

func (m *Manager) wait(ctx context.Context, req request) (result.Result, error) {
	select {
	case out := <-req.reply:
		return out.res, out.err
	case <-ctx.Done():
		return result.Result{}, apperr.Wrap(ctx.Err(), apperr.Cancelled, "gave up waiting for run")
	case <-m.done:
		return result.Result{}, apperr.New(apperr.Unavailable, "shutting down")
	}
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case req := <-m.queue:
			out := m.handle(ctx, req)
			if req.reply != nil {
				req.reply <- out
			}
		}
	}
}

// handle runs under the manager's lifetime context so a caller that stops
// waiting does not abort a run half way; only the trace is carried over.
func (m *Manager) handle(ctx context.Context, req request) outcome {
	if tc, ok := trace.FromContext(req.ctx); ok {
		ctx = trace.WithContext(ctx, tc)
	}
	ctx, _ = trace.EnsureContext(ctx)
	log := trace.Logger(ctx)

	if req.translate != nil {
		return outcome{res: m.runner.Translate(ctx, *req.translate, m.unavailable)}
	}

	source := req.input.Source
	res, err := m.runner.Run(ctx, req.input)
	switch {
	case err == nil:
		m.record(source, "ok")
		log.Info("run finished", "source", source, "origin", res.Origin, "translated", res.Translated)
		m.notify(res.Origin, res.Translated)
	case errors.Is(err, pipeline.ErrUnchanged):
		m.record(source, "unchanged")
		m.store.Emit(result.Event{Kind: result.EventSkipped, Result: res})
	default:
		m.record(source, "error")
		log.Error("run failed", "source", source, "error", err, "fatal", apperr.IsFatal(err))
		m.store.Emit(result.Event{Kind: result.EventError, Result: m.store.Current(), Error: err.Error()})
		m.notify(NotifyErrorTitle, err.Error())
	}
	return outcome{res: res, err: err}
}

func (m *Manager) record(source, outcome string) {
	if m.recorder != nil {
		m.recorder.RunFinished(source, outcome)
	}
}

func (m *Manager) notify(title, msg string) {
	if m.notifier == nil {
		return
	}
	if err := m.notifier.Notify(title, msg); err != nil {
		trace.Logger(context.Background()).Debug("notification failed", "error", err)
	}
}
