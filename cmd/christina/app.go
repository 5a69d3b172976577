package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/light4/christina/internal/binarize"
	"github.com/light4/christina/internal/config"
	"github.com/light4/christina/internal/control"
	"github.com/light4/christina/internal/desktop"
	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/imageproc"
	"github.com/light4/christina/internal/metrics"
	"github.com/light4/christina/internal/ocr"
	"github.com/light4/christina/internal/orchestrator"
	"github.com/light4/christina/internal/orchestrator/journal"
	"github.com/light4/christina/internal/orchestrator/pipeline"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/resilience"
	"github.com/light4/christina/internal/screen"
	"github.com/light4/christina/internal/server"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/internal/translate"
	"github.com/light4/christina/internal/trigger"
)

const shutdownTimeout = 5 * time.Second

// deps overrides the components built from config. Zero fields use the
// real implementations.
type deps struct {
	capturer  screen.Capturer
	engine    ocr.Engine
	clipboard pipeline.Clipboard
	notifier  orchestrator.Notifier
}

// App is a fully wired instance.
type App struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	store   *result.Store
	manager *orchestrator.Manager
	engine  ocr.Engine
	web     *server.Server
	control *control.Server
	journal *journal.Batcher

	unfollow    func()
	journalDone chan struct{}

	httpServer  *http.Server
	httpAddr    string
	controlAddr string
	serveErr    chan error
	stopOnce    sync.Once
}

func newApp(cfg *config.Config, d deps) (*App, error) {
	m := metrics.New()

	if d.capturer == nil {
		display := screen.NewDisplay(cfg.DisplayIndex)
		if err := display.Check(context.Background()); err != nil {
			return nil, err
		}
		d.capturer = display
	}
	if d.engine == nil {
		typ, err := ocr.ParseEngineType(cfg.OCREngine)
		if err != nil {
			return nil, err
		}
		d.engine, err = ocr.New(ocr.Options{
			Type:          typ,
			TesseractPath: cfg.TesseractPath,
			PageSegMode:   cfg.OCRPSM,
		})
		if err != nil {
			return nil, err
		}
	}
	if d.clipboard == nil && cfg.Clipboard {
		d.clipboard = desktop.NewClipboard()
	}
	if d.notifier == nil && cfg.Notify {
		d.notifier = desktop.NewNotifier()
	}

	breaker := resilience.New(resilience.TranslateConfig()).WithHook(func(_, to resilience.State) {
		m.BreakerState(uint32(to))
	})
	translator := translate.NewGuarded(translate.NewYoudao(cfg.TranslateURL, cfg.TranslateTimeout), breaker)

	store := result.NewStore(cfg.HistorySize, orchestrator.EventBuffer)
	pipe := pipeline.New(pipeline.Options{
		Crop:            imageproc.Rect{X: cfg.CropX, Y: cfg.CropY, Width: cfg.CropWidth, Height: cfg.CropHeight},
		ColorMap:        binarize.ColorMap{Threshold: uint8(cfg.LumaThreshold), Alpha: uint8(cfg.PaletteAlpha)},
		Lang:            cfg.OCRLang,
		WorkDir:         cfg.WorkDir,
		Format:          cfg.ProcessedFormat,
		KeepFiles:       cfg.KeepFiles,
		SkipSimilar:     cfg.SkipSimilarFrames,
		MaxHashDistance: cfg.MaxHashDistance,
	}, d.capturer, d.engine, translator, d.clipboard, store, m)

	manager := orchestrator.New(pipe, store, orchestrator.Options{
		Notifier:    d.notifier,
		Recorder:    m,
		Unavailable: cfg.TranslateUnavailable,
	})

	app := &App{
		cfg:     cfg,
		metrics: m,
		store:   store,
		manager: manager,
		engine:  d.engine,
		web:     server.New(manager, m),
		control: control.New(manager),
	}
	if cfg.JournalFile != "" {
		app.journal = journal.NewBatcher(journal.FileSink{Path: cfg.JournalFile},
			journal.DefaultBatcherMaxSize, journal.DefaultBatcherFlushDelay)
	}
	return app, nil
}

// Start launches the worker, the panel and the control service. Listen
// errors are returned before anything runs in the background.
func (a *App) Start(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		return apperr.Wrapf(err, apperr.Unavailable, "listen %s", a.cfg.HTTPAddr)
	}
	controlLis, err := net.Listen("tcp", a.cfg.ControlAddr)
	if err != nil {
		_ = httpLis.Close()
		return apperr.Wrapf(err, apperr.Unavailable, "listen %s", a.cfg.ControlAddr)
	}

	if a.journal != nil {
		events, unsubscribe := a.store.Subscribe()
		a.unfollow = unsubscribe
		a.journalDone = make(chan struct{})
		go func() {
			defer close(a.journalDone)
			a.journal.Follow(events)
		}()
	}
	a.manager.Start(ctx)
	if a.cfg.WatchInterval > 0 {
		go trigger.Watch{Submitter: a.manager, Interval: a.cfg.WatchInterval}.Run(ctx)
	}

	a.httpAddr = httpLis.Addr().String()
	a.controlAddr = controlLis.Addr().String()
	a.httpServer = &http.Server{
		Handler:           a.web.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.serveErr = make(chan error, 2)

	go func() {
		trace.Logger(ctx).Info("panel listening", "url", a.PanelURL())
		if err := a.httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.serveErr <- err
		}
	}()
	go func() {
		if err := a.control.Serve(controlLis); err != nil {
			a.serveErr <- err
		}
	}()
	return nil
}

// PanelURL is the address of the web panel once Start returned.
func (a *App) PanelURL() string { return "http://" + a.httpAddr + "/" }

// Errors reports fatal server errors after Start.
func (a *App) Errors() <-chan error { return a.serveErr }

// Shutdown stops accepting work, waits for the current run, flushes the
// journal and releases the OCR engine. Later calls do nothing.
func (a *App) Shutdown() {
	a.stopOnce.Do(a.shutdown)
}

func (a *App) shutdown() {
	log := trace.Logger(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			log.Error("http shutdown error", "error", err)
		}
	}
	a.control.Stop()
	a.manager.Stop()
	if a.unfollow != nil {
		// The worker is gone, so every committed result is in the channel.
		a.unfollow()
		<-a.journalDone
	}
	if a.journal != nil {
		a.journal.Stop()
	}

	if c, ok := a.engine.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("ocr engine close error", "error", err)
		}
	}
}
