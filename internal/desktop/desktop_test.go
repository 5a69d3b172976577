package desktop

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/atotto/clipboard"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/orchestrator/result"
)

func TestClipboardWriteText(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard utility")
	}
	var got string
	c := &Clipboard{write: func(s string) error { got = s; return nil }}
	if err := c.WriteText("関心"); err != nil {
		t.Fatal(err)
	}
	if got != "関心" {
		t.Errorf("written = %q", got)
	}

	c = &Clipboard{write: func(string) error { return errors.New("exit status 1") }}
	if err := c.WriteText("x"); !apperr.IsCode(err, apperr.ClipboardFailed) {
		t.Errorf("WriteText() error = %v, want ClipboardFailed", err)
	}
}

func TestNotifier(t *testing.T) {
	var title, msg string
	n := &Notifier{notify: func(ti, m string) error { title, msg = ti, m; return nil }}

	long := strings.Repeat("あ", NotifyMaxRunes+10)
	if err := n.Notify("関心", long); err != nil {
		t.Fatal(err)
	}
	if title != "関心" {
		t.Errorf("title = %q", title)
	}
	if r := []rune(msg); len(r) != NotifyMaxRunes || r[len(r)-1] != '…' {
		t.Errorf("message runes = %d, want %d ending in …", len(r), NotifyMaxRunes)
	}

	n.notify = func(string, string) error { return errors.New("no dbus") }
	if err := n.Notify("a", "b"); !apperr.IsCode(err, apperr.Unavailable) {
		t.Errorf("Notify() error = %v, want Unavailable", err)
	}
}

func TestOpenCommand(t *testing.T) {
	tests := []struct {
		goos string
		name string
		last string
	}{
		{"linux", "xdg-open", "http://127.0.0.1:8723/"},
		{"darwin", "open", "http://127.0.0.1:8723/"},
		{"windows", "rundll32", "http://127.0.0.1:8723/"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := openCommand(tt.goos, "http://127.0.0.1:8723/")
			if name != tt.name || args[len(args)-1] != tt.last {
				t.Errorf("openCommand(%s) = %s %v", tt.goos, name, args)
			}
		})
	}
}

func TestOpenURL(t *testing.T) {
	orig := startCommand
	defer func() { startCommand = orig }()

	var ran []string
	startCommand = func(_ context.Context, name string, args ...string) error {
		ran = append([]string{name}, args...)
		return nil
	}
	if err := OpenURL("http://127.0.0.1:8723/"); err != nil {
		t.Fatal(err)
	}
	if len(ran) == 0 || ran[len(ran)-1] != "http://127.0.0.1:8723/" {
		t.Errorf("ran = %v", ran)
	}

	startCommand = func(context.Context, string, ...string) error { return errors.New("not found") }
	if err := OpenURL("x"); !apperr.IsCode(err, apperr.Unavailable) {
		t.Errorf("OpenURL() error = %v, want Unavailable", err)
	}
}

func TestIcon(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(Icon("linux")))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != IconSize || b.Dy() != IconSize {
		t.Errorf("icon size = %v", b)
	}

	ico := Icon("windows")
	var hdr [3]uint16
	if err := binary.Read(bytes.NewReader(ico), binary.LittleEndian, &hdr); err != nil {
		t.Fatal(err)
	}
	if hdr != [3]uint16{0, 1, 1} {
		t.Errorf("ico header = %v", hdr)
	}
	if ico[6] != IconSize {
		t.Errorf("ico width = %d", ico[6])
	}
	if _, err := png.Decode(bytes.NewReader(ico[22:])); err != nil {
		t.Errorf("embedded png: %v", err)
	}
}

func TestTooltip(t *testing.T) {
	got := Tooltip(result.Result{Origin: "関心", Translated: "兴趣"})
	if got != "christina\n関心\n兴趣" {
		t.Errorf("Tooltip() = %q", got)
	}
}
