// Package imageproc crops captured frames and moves processed images to and
// from disk for the OCR engine.
package imageproc

import (
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	apperr "github.com/light4/christina/internal/errors"
)

// Rect is the capture region in screen pixels.
type Rect struct {
	X, Y, Width, Height int
}

// Image returns r as an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Crop cuts r out of img, with r relative to the image's top-left corner.
// A region partly outside the image is clipped to it; a region with no
// overlap is an ImageInvalid error.
func Crop(img image.Image, r Rect) (*image.NRGBA, error) {
	want := r.Image().Add(img.Bounds().Min)
	got := want.Intersect(img.Bounds())
	if got.Empty() {
		return nil, apperr.Newf(apperr.ImageInvalid, "crop region %v outside image %v", want, img.Bounds())
	}
	return imaging.Crop(img, got), nil
}

// Load decodes an image file, applying EXIF orientation.
func Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperr.Wrap(err, apperr.ImageInvalid, "decode image").WithMetadata("path", path)
	}
	return img, nil
}

// Save writes img to dir/name.format, creating dir if needed, and returns
// the full path.
func Save(img image.Image, dir, name, format string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperr.Wrap(err, apperr.ImageWriteFailed, "create work dir").WithMetadata("dir", dir)
	}
	path := filepath.Join(dir, name+"."+strings.ToLower(format))
	if err := imaging.Save(img, path); err != nil {
		return "", apperr.Wrap(err, apperr.ImageWriteFailed, "save processed image").WithMetadata("path", path)
	}
	return path, nil
}
