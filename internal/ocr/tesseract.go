package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/trace"
)

// TesseractEngine calls the tesseract binary and reads the text from stdout.
type TesseractEngine struct {
	Path string
	Args TesseractArgs
}

// TesseractArgs are the flags passed after the input and output names.
type TesseractArgs struct {
	ConfigVars  map[string]string
	PageSegMode int
	Lang        string
}

// Export returns a slice that can be passed to the tesseract binary, eg
// ["-c", "preserve_interword_spaces=1", "--psm", "6", "-l", "jpn"].
// Config vars are sorted so the command line is stable.
func (a TesseractArgs) Export() []string {
	keys := make([]string, 0, len(a.ConfigVars))
	for k := range a.ConfigVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []string
	for _, k := range keys {
		result = append(result, "-c", fmt.Sprintf("%s=%s", k, a.ConfigVars[k]))
	}
	if a.PageSegMode > 0 {
		result = append(result, "--psm", strconv.Itoa(a.PageSegMode))
	}
	if a.Lang != "" {
		result = append(result, "-l", a.Lang)
	}
	return result
}

// Recognize runs `tesseract <image> stdout <args>`.
func (t *TesseractEngine) Recognize(ctx context.Context, imagePath, lang string) (string, error) {
	args := t.Args
	args.Lang = lang
	cmdArgs := append([]string{imagePath, "stdout"}, args.Export()...)

	bin := t.Path
	if bin == "" {
		bin = "tesseract"
	}
	trace.Logger(ctx).Debug("running tesseract", "bin", bin, "args", cmdArgs)

	cmd := exec.CommandContext(ctx, bin, cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", apperr.Wrap(ctx.Err(), apperr.Cancelled, "tesseract cancelled")
		}
		return "", apperr.Wrap(err, apperr.OCRFailed, "tesseract failed").
			WithMetadata("stderr", lastLine(stderr.String()))
	}
	return stdout.String(), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
