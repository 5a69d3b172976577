package ocr

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	apperr "github.com/light4/christina/internal/errors"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"noise characters", "「それにも、 当然\nながら`関心があった。」", "それにも、当然ながら関心があった。"},
		{"speck after period", "関心があった。'", "関心があった。"},
		{"short text keeps tail", "あ。い", "あ。い"},
		{"four runes drops tail", "ああ。い", "ああ。"},
		{"trailing period kept", "ああ。。", "ああ。。"},
		{"empty", "", ""},
		{"only noise", " \n「」`", ""},
		{"no period", "こんにちは", "こんにちは"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"「それにも、当然ながら関心があった。」x",
		"あい。う。え",
		"ab。c。。d",
		"`x`\n y 。z",
		"。。。。。",
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("Clean not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.ContainsAny(once, " \n`「」") {
			t.Errorf("Clean(%q) = %q still contains noise", in, once)
		}
	}
}

func TestTesseractArgsExport(t *testing.T) {
	args := TesseractArgs{
		ConfigVars:  map[string]string{"tessedit_do_invert": "0", "preserve_interword_spaces": "1"},
		PageSegMode: 6,
		Lang:        "jpn",
	}
	want := []string{
		"-c", "preserve_interword_spaces=1",
		"-c", "tessedit_do_invert=0",
		"--psm", "6",
		"-l", "jpn",
	}
	if got := args.Export(); !reflect.DeepEqual(got, want) {
		t.Errorf("Export() = %v, want %v", got, want)
	}
	if got := (TesseractArgs{}).Export(); len(got) != 0 {
		t.Errorf("empty Export() = %v", got)
	}
}

// fakeTesseract writes a shell script that echoes its arguments, standing in
// for the tesseract binary.
func fakeTesseract(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in needs a unix shell")
	}
	path := filepath.Join(t.TempDir(), "tesseract")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTesseractRecognize(t *testing.T) {
	bin := fakeTesseract(t, `echo "$@"`)
	e := &TesseractEngine{Path: bin, Args: TesseractArgs{PageSegMode: 6}}

	got, err := e.Recognize(context.Background(), "/tmp/run.png", "jpn")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if want := "/tmp/run.png stdout --psm 6 -l jpn\n"; got != want {
		t.Errorf("Recognize() = %q, want %q", got, want)
	}
}

func TestTesseractFailure(t *testing.T) {
	bin := fakeTesseract(t, `echo "Error opening data file jpn.traineddata" >&2; exit 1`)
	e := &TesseractEngine{Path: bin}

	_, err := e.Recognize(context.Background(), "/tmp/run.png", "jpn")
	if !apperr.IsCode(err, apperr.OCRFailed) {
		t.Fatalf("Recognize() error = %v, want OCRFailed", err)
	}
	if !strings.Contains(err.Error(), "jpn.traineddata") {
		t.Errorf("error should carry stderr, got %v", err)
	}
}

func TestTesseractMissingBinary(t *testing.T) {
	e := &TesseractEngine{Path: filepath.Join(t.TempDir(), "no-such-tesseract")}
	if _, err := e.Recognize(context.Background(), "x.png", "jpn"); !apperr.IsCode(err, apperr.OCRFailed) {
		t.Errorf("Recognize() error = %v, want OCRFailed", err)
	}
}

func TestEngineType(t *testing.T) {
	for _, et := range []EngineType{EngineTesseract, EngineGosseract, EngineMock} {
		got, err := ParseEngineType(strings.ToUpper(et.String()))
		if err != nil || got != et {
			t.Errorf("ParseEngineType(%q) = %v, %v", et.String(), got, err)
		}
	}
	if _, err := ParseEngineType("easyocr"); !apperr.IsCode(err, apperr.ConfigInvalid) {
		t.Errorf("ParseEngineType(easyocr) error = %v", err)
	}
}

func TestNew(t *testing.T) {
	e, err := New(Options{Type: EngineMock, MockText: "テスト"})
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := e.Recognize(context.Background(), "", "jpn"); got != "テスト" {
		t.Errorf("mock Recognize() = %q", got)
	}

	e, err = New(Options{Type: EngineTesseract, TesseractPath: "/usr/bin/tesseract", PageSegMode: 7})
	if err != nil {
		t.Fatal(err)
	}
	if te, ok := e.(*TesseractEngine); !ok || te.Args.PageSegMode != 7 {
		t.Errorf("New(tesseract) = %#v", e)
	}
}

func TestMockDefault(t *testing.T) {
	got, _ := MockEngine{}.Recognize(context.Background(), "", "jpn")
	if got != MockEngineResponse {
		t.Errorf("Recognize() = %q", got)
	}
}
