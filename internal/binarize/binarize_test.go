package binarize

import (
	"image"
	"image/color"
	"math/rand/v2"
	"testing"
)

var (
	black = color.NRGBA{A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestIndex(t *testing.T) {
	m := Default()
	tests := []struct {
		name string
		c    color.NRGBA
		want uint8
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, 1},
		{"black", color.NRGBA{0, 0, 0, 255}, 0},
		{"threshold is not above", color.NRGBA{195, 195, 195, 255}, 0},
		{"just above threshold", color.NRGBA{196, 196, 196, 255}, 1},
		{"pure red", color.NRGBA{255, 0, 0, 255}, 0},
		{"pure green", color.NRGBA{0, 255, 0, 255}, 0},
		{"yellow", color.NRGBA{255, 255, 0, 255}, 1},
		{"alpha ignored", color.NRGBA{255, 255, 255, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Index(tt.c); got != tt.want {
				t.Errorf("Index(%v) = %d, want %d", tt.c, got, tt.want)
			}
		})
	}
}

func TestLuma(t *testing.T) {
	// (299*200 + 587*200 + 114*200) / 1000 = 200
	if got := Luma(200, 200, 200); got != 200 {
		t.Errorf("Luma(200,200,200) = %d, want 200", got)
	}
	// 299*255/1000 = 76.245 truncates to 76
	if got := Luma(255, 0, 0); got != 76 {
		t.Errorf("Luma(255,0,0) = %d, want 76", got)
	}
}

func TestLookupRoundTrip(t *testing.T) {
	m := Default()
	for idx := uint8(0); idx < 2; idx++ {
		c, ok := m.Lookup(idx)
		if !ok {
			t.Fatalf("Lookup(%d) not ok", idx)
		}
		if got := m.Index(c); got != idx {
			t.Errorf("Index(Lookup(%d)) = %d", idx, got)
		}
	}
	if c, _ := m.Lookup(0); m.Index(c) != 0 {
		t.Error("black should index to 0")
	}
}

func TestLookupOutOfRange(t *testing.T) {
	m := Default()
	for _, idx := range []uint8{2, 7, 255} {
		if _, ok := m.Lookup(idx); ok {
			t.Errorf("Lookup(%d) should not be ok", idx)
		}
	}
}

func TestLookupAlpha(t *testing.T) {
	m := ColorMap{Threshold: DefaultThreshold, Alpha: 1}
	c, _ := m.Lookup(1)
	if c.A != 1 {
		t.Errorf("alpha = %d, want 1", c.A)
	}
	// Index ignores alpha, so the round trip still holds.
	if m.Index(c) != 1 {
		t.Error("round trip broken with low alpha")
	}
}

func TestBinarizeScenario(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.RGBA{255, 255, 255, 255})
	src.Set(1, 0, color.RGBA{0, 0, 0, 255})
	src.Set(0, 1, color.RGBA{200, 200, 200, 255})
	src.Set(1, 1, color.RGBA{100, 100, 100, 255})

	out := Default().Binarize(src)

	want := [2][2]color.NRGBA{{white, black}, {white, black}}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if got := out.NRGBAAt(x, y); got != want[y][x] {
				t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, want[y][x])
			}
		}
	}
}

func TestBinarizeProperties(t *testing.T) {
	m := Default()
	rng := rand.New(rand.NewPCG(1, 2))
	src := image.NewNRGBA(image.Rect(10, 20, 73, 51))
	for i := range src.Pix {
		src.Pix[i] = uint8(rng.IntN(256))
	}

	out := m.Binarize(src)

	if out.Bounds().Dx() != 63 || out.Bounds().Dy() != 31 {
		t.Fatalf("size = %v, want 63x31", out.Bounds())
	}
	if out.Bounds().Min != (image.Point{}) {
		t.Errorf("origin = %v, want (0,0)", out.Bounds().Min)
	}
	for y := 0; y < 31; y++ {
		for x := 0; x < 63; x++ {
			got := out.NRGBAAt(x, y)
			if got != black && got != white {
				t.Fatalf("pixel (%d,%d) = %v is not a palette color", x, y, got)
			}
			want, _ := m.Lookup(m.Index(src.NRGBAAt(10+x, 20+y)))
			if got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}

	// Idempotent.
	again := m.Binarize(out)
	for i := range out.Pix {
		if out.Pix[i] != again.Pix[i] {
			t.Fatalf("second pass changed byte %d", i)
		}
	}
}

func TestBinarizeSubImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x >= 2 {
				src.Set(x, y, color.White)
			} else {
				src.Set(x, y, color.Black)
			}
		}
	}
	sub := src.SubImage(image.Rect(2, 1, 4, 3))

	out := Default().Binarize(sub)
	if got := out.NRGBAAt(0, 0); got != white {
		t.Errorf("pixel (0,0) = %v, want white", got)
	}
}

func TestBinarizeGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 250})
	src.SetGray(1, 0, color.Gray{Y: 10})

	out := Default().Binarize(src)
	if out.NRGBAAt(0, 0) != white || out.NRGBAAt(1, 0) != black {
		t.Errorf("gray input not binarized: %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(1, 0))
	}
}

func TestCount(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.Set(0, 0, color.White)
	src.Set(1, 0, color.Black)
	src.Set(2, 0, color.White)

	b, w := Default().Count(src)
	if b != 1 || w != 2 {
		t.Errorf("Count() = (%d, %d), want (1, 2)", b, w)
	}
}
