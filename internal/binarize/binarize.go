// Package binarize turns a captured subtitle region into a strict two-color
// image so the OCR engine sees white glyphs on black.
//
// Every pixel is mapped through its luminance
//
//	L = (299*R + 587*G + 114*B) / 1000
//
// to index 1 (white) when L exceeds the threshold and index 0 (black)
// otherwise, then back to a color through the palette.
package binarize

import (
	"image"
	"image/color"
)

const (
	DefaultThreshold = 195
	DefaultAlpha     = 255
)

// ColorMap maps pixels to palette indices and back.
type ColorMap struct {
	Threshold uint8
	Alpha     uint8
}

// Default returns the map with the standard threshold and an opaque palette.
func Default() ColorMap {
	return ColorMap{Threshold: DefaultThreshold, Alpha: DefaultAlpha}
}

// Luma returns the integer luminance of an 8-bit RGB triple.
func Luma(r, g, b uint8) uint32 {
	return (299*uint32(r) + 587*uint32(g) + 114*uint32(b)) / 1000
}

// Index returns 1 for pixels brighter than the threshold and 0 otherwise.
// Alpha is ignored.
func (m ColorMap) Index(c color.NRGBA) uint8 {
	if Luma(c.R, c.G, c.B) > uint32(m.Threshold) {
		return 1
	}
	return 0
}

// Lookup returns the palette color for idx. Only 0 and 1 are defined.
func (m ColorMap) Lookup(idx uint8) (color.NRGBA, bool) {
	switch idx {
	case 0:
		return color.NRGBA{A: m.Alpha}, true
	case 1:
		return color.NRGBA{R: 255, G: 255, B: 255, A: m.Alpha}, true
	default:
		return color.NRGBA{}, false
	}
}

// Palette returns the two palette entries, black first.
func (m ColorMap) Palette() color.Palette {
	black, _ := m.Lookup(0)
	white, _ := m.Lookup(1)
	return color.Palette{black, white}
}

// Binarize returns a new image of the same size whose pixels are all
// palette colors. The result's bounds start at (0,0).
//
// It panics if the map ever produces an index without a palette entry;
// that can only happen through a bug in Index.
func (m ColorMap) Binarize(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	palette := m.Palette()

	for y := 0; y < b.Dy(); y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		for x := 0; x < b.Dx(); x++ {
			idx := m.Index(pixelAt(src, b.Min.X+x, b.Min.Y+y))
			if int(idx) >= len(palette) {
				panic("indexed color out-of-range")
			}
			c := palette[idx].(color.NRGBA)
			row[x*4+0] = c.R
			row[x*4+1] = c.G
			row[x*4+2] = c.B
			row[x*4+3] = c.A
		}
	}
	return dst
}

// Count returns the number of black and white pixels in img as judged by m.
func (m ColorMap) Count(img image.Image) (black, white int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if m.Index(pixelAt(img, x, y)) == 1 {
				white++
			} else {
				black++
			}
		}
	}
	return black, white
}

// pixelAt reads one pixel as non-premultiplied 8-bit RGBA, skipping the
// color.Model conversion for the formats capture and crop produce.
func pixelAt(img image.Image, x, y int) color.NRGBA {
	switch p := img.(type) {
	case *image.NRGBA:
		i := p.PixOffset(x, y)
		s := p.Pix[i : i+4 : i+4]
		return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
	case *image.RGBA:
		i := p.PixOffset(x, y)
		s := p.Pix[i : i+4 : i+4]
		// Screen captures are opaque, so premultiplied equals straight.
		if s[3] == 0xff {
			return color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
		}
	}
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}
