package desktop

import (
	"github.com/atotto/clipboard"

	apperr "github.com/light4/christina/internal/errors"
)

// Clipboard writes text to the system clipboard.
type Clipboard struct {
	write func(string) error
}

func NewClipboard() *Clipboard {
	return &Clipboard{write: clipboard.WriteAll}
}

// WriteText copies text. On Linux this needs xclip, xsel or wl-clipboard.
func (c *Clipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return apperr.New(apperr.ClipboardFailed, "no clipboard utility found")
	}
	if err := c.write(text); err != nil {
		return apperr.Wrap(err, apperr.ClipboardFailed, "write clipboard")
	}
	return nil
}
