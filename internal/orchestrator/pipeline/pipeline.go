// Package pipeline runs one capture → translate pass: capture, crop,
// binarize, save, recognize, clean, publish, copy and translate.
package pipeline

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/segmentio/ksuid"

	"github.com/light4/christina/internal/binarize"
	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/imageproc"
	"github.com/light4/christina/internal/ocr"
	"github.com/light4/christina/internal/orchestrator/result"
	"github.com/light4/christina/internal/screen"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/internal/translate"
)

// ErrUnchanged ends a run whose frame matches the previous one.
var ErrUnchanged = errors.New("frame unchanged since last run")

// Clipboard receives the cleaned text.
type Clipboard interface {
	WriteText(text string) error
}

// Recorder receives stage timings and translation outcomes.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	Translation(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStage(string, time.Duration) {}
func (nopRecorder) Translation(string)                 {}

// Options are the tunables of a run.
type Options struct {
	Crop            imageproc.Rect
	ColorMap        binarize.ColorMap
	Lang            string
	WorkDir         string
	Format          string
	KeepFiles       bool
	SkipSimilar     bool
	MaxHashDistance int
}

// Input selects the frame source for one run.
type Input struct {
	Source string // what triggered the run, for logs and metrics
	Path   string // image file to read instead of capturing the screen
}

// Pipeline is not safe for concurrent Run calls; the manager serializes them.
type Pipeline struct {
	opts       Options
	capturer   screen.Capturer
	engine     ocr.Engine
	translator translate.Translator
	clipboard  Clipboard
	store      *result.Store
	rec        Recorder

	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
}

// New creates a pipeline. clipboard and rec may be nil.
func New(opts Options, capturer screen.Capturer, engine ocr.Engine, translator translate.Translator,
	clipboard Clipboard, store *result.Store, rec Recorder) *Pipeline {
	if rec == nil {
		rec = nopRecorder{}
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	return &Pipeline{
		opts:       opts,
		capturer:   capturer,
		engine:     engine,
		translator: translator,
		clipboard:  clipboard,
		store:      store,
		rec:        rec,
	}
}

// Run executes one pass. Capture, image and OCR failures abort the run and
// leave the store untouched; clipboard and translation failures do not.
func (p *Pipeline) Run(ctx context.Context, in Input) (result.Result, error) {
	runID := ksuid.New().String()
	ctx, span := trace.StartSpan(ctx, "pipeline.run")
	defer span.Finish(ctx)
	span.SetAttr("run_id", runID)
	span.SetAttr("source", in.Source)
	log := trace.Logger(ctx).With("run_id", runID)

	var frame image.Image
	err := p.stage(ctx, "capture", func(ctx context.Context) (err error) {
		frame, err = p.source(in).Capture(ctx)
		return err
	})
	if err != nil {
		return result.Result{}, err
	}

	var bin *image.NRGBA
	err = p.stage(ctx, "binarize", func(ctx context.Context) error {
		region, err := imageproc.Crop(frame, p.opts.Crop)
		if err != nil {
			return err
		}
		bin = p.opts.ColorMap.Binarize(region)
		if log.Enabled(ctx, slog.LevelDebug) {
			black, white := p.opts.ColorMap.Count(bin)
			log.Debug("region binarized", "bounds", bin.Bounds().String(), "black", black, "white", white)
		}
		return nil
	})
	if err != nil {
		return result.Result{}, err
	}

	if p.opts.SkipSimilar && p.similar(ctx, bin) {
		log.Debug("frame unchanged, skipping ocr")
		return p.store.Current(), ErrUnchanged
	}

	var path string
	err = p.stage(ctx, "save", func(ctx context.Context) (err error) {
		path, err = imageproc.Save(bin, p.opts.WorkDir, runID, p.opts.Format)
		return err
	})
	if err != nil {
		return result.Result{}, err
	}
	if !p.opts.KeepFiles {
		defer os.Remove(path)
	}

	var text string
	err = p.stage(ctx, "ocr", func(ctx context.Context) error {
		raw, err := p.engine.Recognize(ctx, path, p.opts.Lang)
		if err != nil {
			return err
		}
		text = ocr.Clean(raw)
		return nil
	})
	if err != nil {
		return result.Result{}, err
	}
	log.Info("text recognized", "chars", len([]rune(text)), "image", path)

	p.store.SetOrigin(runID, in.Source, text)

	if p.clipboard != nil && text != "" {
		if err := p.clipboard.WriteText(text); err != nil {
			log.Warn("copy to clipboard failed", "error", err)
		}
	}

	if text == "" {
		log.Info("no text recognized, translation skipped")
		p.rec.Translation("skipped")
		return p.store.Commit(), nil
	}

	_ = p.stage(ctx, "translate", func(ctx context.Context) error {
		translated, ok := p.translator.Translate(ctx, text)
		if !ok {
			p.rec.Translation("unavailable")
			log.Warn("no translation available, keeping previous")
			return nil
		}
		p.rec.Translation("ok")
		p.store.SetTranslated(translated)
		return nil
	})
	return p.store.Commit(), nil
}

// Translate translates text outside a capture run and publishes both slots.
// On failure the translated slot is set to unavailable.
func (p *Pipeline) Translate(ctx context.Context, text, unavailable string) result.Result {
	translated, ok := p.translator.Translate(ctx, text)
	if !ok {
		p.rec.Translation("unavailable")
		translated = unavailable
	} else {
		p.rec.Translation("ok")
	}
	p.store.Set(result.Result{Origin: text, Translated: translated, Source: "manual"})
	return p.store.Commit()
}

func (p *Pipeline) source(in Input) screen.Capturer {
	if in.Path != "" {
		return screen.FileSource{Path: in.Path}
	}
	return p.capturer
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := trace.StartSpan(ctx, name)
	err := fn(ctx)
	span.Finish(ctx)
	p.rec.ObserveStage(name, span.Duration())
	if err != nil && ctx.Err() != nil && !apperr.IsCode(err, apperr.Cancelled) {
		return apperr.Wrap(err, apperr.Cancelled, name+" cancelled")
	}
	return err
}

// similar reports whether img is within MaxHashDistance of the previous
// frame and remembers img's hash otherwise.
func (p *Pipeline) similar(ctx context.Context, img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		trace.Logger(ctx).Debug("perception hash failed", "error", err)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastHash != nil {
		if dist, err := p.lastHash.Distance(hash); err == nil && dist <= p.opts.MaxHashDistance {
			return true
		}
	}
	p.lastHash = hash
	return false
}
