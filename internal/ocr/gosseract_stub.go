//go:build !gosseract

package ocr

import apperr "github.com/light4/christina/internal/errors"

// newGosseract reports that this binary was built without libtesseract.
// Build with -tags gosseract to link it.
func newGosseract(Options) (Engine, error) {
	return nil, apperr.New(apperr.ConfigInvalid, "gosseract engine not compiled in, rebuild with -tags gosseract")
}
