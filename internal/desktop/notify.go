package desktop

import (
	"github.com/gen2brain/beeep"

	apperr "github.com/light4/christina/internal/errors"
)

// Notifier shows desktop notifications.
type Notifier struct {
	notify func(title, message string) error
}

func NewNotifier() *Notifier {
	return &Notifier{notify: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

func (n *Notifier) Notify(title, message string) error {
	if err := n.notify(truncate(title, NotifyMaxRunes), truncate(message, NotifyMaxRunes)); err != nil {
		return apperr.Wrap(err, apperr.Unavailable, "desktop notification")
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
