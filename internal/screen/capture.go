package screen

import (
	"context"
	"image"

	"github.com/kbinani/screenshot"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/imageproc"
	"github.com/light4/christina/internal/trace"
)

// backend is the raw display access, swapped out in tests.
type backend interface {
	numDisplays() int
	bounds(i int) image.Rectangle
	capture(i int) (*image.RGBA, error)
}

type screenshotBackend struct{}

func (screenshotBackend) numDisplays() int                   { return screenshot.NumActiveDisplays() }
func (screenshotBackend) bounds(i int) image.Rectangle       { return screenshot.GetDisplayBounds(i) }
func (screenshotBackend) capture(i int) (*image.RGBA, error) { return screenshot.CaptureDisplay(i) }

// DisplayCapturer grabs a whole monitor.
type DisplayCapturer struct {
	backend
	index int
}

// NewDisplay creates a capturer for the monitor at index.
func NewDisplay(index int) *DisplayCapturer {
	return &DisplayCapturer{backend: screenshotBackend{}, index: index}
}

// Capture grabs the configured display.
func (c *DisplayCapturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.Cancelled, "capture cancelled")
	}
	n := c.numDisplays()
	if n == 0 {
		return nil, apperr.New(apperr.CaptureFailed, "no active display")
	}
	if c.index < 0 || c.index >= n {
		return nil, apperr.Newf(apperr.CaptureFailed, "display %d not found, %d active", c.index, n)
	}
	img, err := c.capture(c.index)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CaptureFailed, "capture display %d", c.index)
	}
	return img, nil
}

// Displays lists the active monitors.
func (c *DisplayCapturer) Displays() []Display {
	n := c.numDisplays()
	out := make([]Display, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Display{Index: i, Bounds: c.bounds(i)})
	}
	return out
}

// Check logs the active monitors and rejects an index none of them has.
// With no active display it only warns, since image files still work.
func (c *DisplayCapturer) Check(ctx context.Context) error {
	log := trace.Logger(ctx)
	displays := c.Displays()
	if len(displays) == 0 {
		log.Warn("no active display, captures will fail until one appears")
		return nil
	}
	for _, d := range displays {
		log.Info("display found", "index", d.Index, "bounds", d.Bounds.String(), "selected", d.Index == c.index)
	}
	if c.index < 0 || c.index >= len(displays) {
		return apperr.Newf(apperr.ConfigInvalid, "display index %d out of range, %d active", c.index, len(displays))
	}
	return nil
}

// FileSource reads a frame from an image file on every call.
type FileSource struct {
	Path string
}

// Capture decodes the file.
func (f FileSource) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperr.Wrap(err, apperr.Cancelled, "capture cancelled")
	}
	return imageproc.Load(f.Path)
}
