//go:build gosseract

package ocr

import (
	"context"
	"sync"

	"github.com/otiai10/gosseract/v2"

	apperr "github.com/light4/christina/internal/errors"
)

// GosseractEngine links libtesseract through cgo. One client is reused for
// every run, so calls are serialized.
type GosseractEngine struct {
	mu     sync.Mutex
	client *gosseract.Client
	psm    int
	vars   map[string]string
}

func newGosseract(opts Options) (Engine, error) {
	return &GosseractEngine{
		client: gosseract.NewClient(),
		psm:    opts.PageSegMode,
		vars:   opts.ConfigVars,
	}, nil
}

// Recognize sets the image and language on the shared client and reads the text.
func (g *GosseractEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.Wrap(err, apperr.Cancelled, "ocr cancelled")
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.client.SetLanguage(lang); err != nil {
		return "", apperr.Wrap(err, apperr.OCRFailed, "set language").WithMetadata("lang", lang)
	}
	if g.psm > 0 {
		if err := g.client.SetPageSegMode(gosseract.PageSegMode(g.psm)); err != nil {
			return "", apperr.Wrap(err, apperr.OCRFailed, "set page segmentation mode")
		}
	}
	for k, v := range g.vars {
		if err := g.client.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", apperr.Wrap(err, apperr.OCRFailed, "set variable").WithMetadata("key", k)
		}
	}
	if err := g.client.SetImage(imagePath); err != nil {
		return "", apperr.Wrap(err, apperr.OCRFailed, "set image").WithMetadata("path", imagePath)
	}
	text, err := g.client.Text()
	if err != nil {
		return "", apperr.Wrap(err, apperr.OCRFailed, "recognize text")
	}
	return text, nil
}

// Close releases the tesseract client.
func (g *GosseractEngine) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.client.Close()
}
