// Package ocr runs text recognition on the processed subtitle image and
// normalizes the recognized text.
package ocr

import (
	"context"
	"strings"

	apperr "github.com/light4/christina/internal/errors"
)

// Engine recognizes the text in an image file.
type Engine interface {
	Recognize(ctx context.Context, imagePath, lang string) (string, error)
}

type EngineType int

const (
	EngineTesseract = EngineType(iota)
	EngineGosseract
	EngineMock
)

func (e EngineType) String() string {
	switch e {
	case EngineTesseract:
		return "tesseract"
	case EngineGosseract:
		return "gosseract"
	case EngineMock:
		return "mock"
	}
	return ""
}

// ParseEngineType accepts the names produced by String, case-insensitively.
func ParseEngineType(s string) (EngineType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tesseract", "":
		return EngineTesseract, nil
	case "gosseract":
		return EngineGosseract, nil
	case "mock":
		return EngineMock, nil
	}
	return 0, apperr.Newf(apperr.ConfigInvalid, "unknown ocr engine %q", s)
}

// Options configures New.
type Options struct {
	Type          EngineType
	TesseractPath string
	PageSegMode   int
	ConfigVars    map[string]string
	MockText      string
}

// New builds the engine selected by opts.Type.
func New(opts Options) (Engine, error) {
	switch opts.Type {
	case EngineTesseract:
		return &TesseractEngine{
			Path: opts.TesseractPath,
			Args: TesseractArgs{ConfigVars: opts.ConfigVars, PageSegMode: opts.PageSegMode},
		}, nil
	case EngineGosseract:
		return newGosseract(opts)
	case EngineMock:
		return MockEngine{Text: opts.MockText}, nil
	}
	return nil, apperr.Newf(apperr.ConfigInvalid, "unknown ocr engine %d", int(opts.Type))
}
