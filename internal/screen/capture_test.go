package screen

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/imageproc"
)

type fakeBackend struct {
	displays []image.Rectangle
	err      error
	captured []int
}

func (f *fakeBackend) numDisplays() int             { return len(f.displays) }
func (f *fakeBackend) bounds(i int) image.Rectangle { return f.displays[i] }
func (f *fakeBackend) capture(i int) (*image.RGBA, error) {
	f.captured = append(f.captured, i)
	if f.err != nil {
		return nil, f.err
	}
	return image.NewRGBA(image.Rect(0, 0, f.displays[i].Dx(), f.displays[i].Dy())), nil
}

func newFake(index int, displays ...image.Rectangle) (*DisplayCapturer, *fakeBackend) {
	fb := &fakeBackend{displays: displays}
	return &DisplayCapturer{backend: fb, index: index}, fb
}

func TestDisplayCapture(t *testing.T) {
	c, fb := newFake(1, image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3200, 1024))

	img, err := c.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if img.Bounds().Dx() != 1280 {
		t.Errorf("width = %d, want 1280", img.Bounds().Dx())
	}
	if len(fb.captured) != 1 || fb.captured[0] != 1 {
		t.Errorf("captured = %v, want [1]", fb.captured)
	}
}

func TestDisplayCaptureErrors(t *testing.T) {
	tests := []struct {
		name  string
		index int
		rects []image.Rectangle
		err   error
	}{
		{"no display", 0, nil, nil},
		{"index out of range", 2, []image.Rectangle{image.Rect(0, 0, 10, 10)}, nil},
		{"backend failure", 0, []image.Rectangle{image.Rect(0, 0, 10, 10)}, errors.New("xgb: no connection")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fb := newFake(tt.index, tt.rects...)
			fb.err = tt.err
			if _, err := c.Capture(context.Background()); !apperr.IsCode(err, apperr.CaptureFailed) {
				t.Errorf("Capture() error = %v, want CaptureFailed", err)
			}
		})
	}
}

func TestDisplayCaptureCancelled(t *testing.T) {
	c, fb := newFake(0, image.Rect(0, 0, 10, 10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Capture(ctx); !apperr.IsCode(err, apperr.Cancelled) {
		t.Errorf("Capture() error = %v, want Cancelled", err)
	}
	if len(fb.captured) != 0 {
		t.Error("cancelled capture should not touch the display")
	}
}

func TestDisplays(t *testing.T) {
	c, _ := newFake(0, image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3840, 1080))
	ds := c.Displays()
	if len(ds) != 2 || ds[1].Index != 1 || ds[1].Bounds.Min.X != 1920 {
		t.Errorf("Displays() = %+v", ds)
	}
}

func TestFileSource(t *testing.T) {
	path, err := imageproc.Save(image.NewRGBA(image.Rect(0, 0, 6, 3)), t.TempDir(), "frame", "png")
	if err != nil {
		t.Fatal(err)
	}

	img, err := FileSource{Path: path}.Capture(context.Background())
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if img.Bounds().Dx() != 6 {
		t.Errorf("width = %d, want 6", img.Bounds().Dx())
	}

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "nope.png")}.Capture(context.Background())
	if !apperr.IsCode(err, apperr.ImageInvalid) {
		t.Errorf("Capture(missing) error = %v, want ImageInvalid", err)
	}
}

func TestDisplayCheck(t *testing.T) {
	two := []image.Rectangle{image.Rect(0, 0, 1920, 1080), image.Rect(1920, 0, 3200, 1024)}
	tests := []struct {
		name  string
		index int
		rects []image.Rectangle
		ok    bool
	}{
		{"selected display exists", 1, two, true},
		{"index past last display", 2, two, false},
		{"negative index", -1, two, false},
		{"no display only warns", 3, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fb := newFake(tt.index, tt.rects...)
			err := c.Check(context.Background())
			if tt.ok && err != nil {
				t.Errorf("Check() = %v, want nil", err)
			}
			if !tt.ok && !apperr.IsCode(err, apperr.ConfigInvalid) {
				t.Errorf("Check() = %v, want ConfigInvalid", err)
			}
			if len(fb.captured) != 0 {
				t.Error("Check() must not capture")
			}
		})
	}
}
