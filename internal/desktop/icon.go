package desktop

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"

	"github.com/light4/christina/internal/binarize"
)

// iconPNG draws the tray icon: a white frame with a subtitle bar, in the
// binarizer's own two colors.
func iconPNG() []byte {
	cm := binarize.Default()
	img := image.NewPaletted(image.Rect(0, 0, IconSize, IconSize), cm.Palette())
	for y := 0; y < IconSize; y++ {
		for x := 0; x < IconSize; x++ {
			edge := x < 2 || y < 2 || x >= IconSize-2 || y >= IconSize-2
			bar := y >= IconSize*2/3 && y < IconSize*2/3+4 && x >= 6 && x < IconSize-6
			if edge || bar {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// icoFromPNG wraps a PNG in a single-image ICO container, which Windows
// accepts for tray icons.
func icoFromPNG(p []byte, size int) []byte {
	var buf bytes.Buffer
	// ICONDIR: reserved, type 1 (icon), one image.
	_ = binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 1})
	dim := byte(size)
	if size >= 256 {
		dim = 0
	}
	buf.Write([]byte{dim, dim, 0, 0})
	// planes, bits per pixel, data size, data offset
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&buf, binary.LittleEndian, [2]uint32{uint32(len(p)), 6 + 16})
	buf.Write(p)
	return buf.Bytes()
}

// Icon returns the tray icon in the format the platform expects.
func Icon(goos string) []byte {
	p := iconPNG()
	if goos == "windows" {
		return icoFromPNG(p, IconSize)
	}
	return p
}
