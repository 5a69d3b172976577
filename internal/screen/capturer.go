// Package screen provides the image sources for a pipeline run: a live
// display capture or an image file given on the command line.
package screen

import (
	"context"
	"image"
)

// Capturer produces one full frame per call.
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Display describes one active monitor.
type Display struct {
	Index  int
	Bounds image.Rectangle
}
