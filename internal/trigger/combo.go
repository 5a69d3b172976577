package trigger

import (
	"fmt"
	"slices"
	"strings"

	apperr "github.com/light4/christina/internal/errors"
)

// Modifier is a platform-neutral hotkey modifier.
type Modifier string

const (
	ModCtrl  Modifier = "ctrl"
	ModShift Modifier = "shift"
	ModAlt   Modifier = "alt"
	ModSuper Modifier = "super"
)

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"shift":   ModShift,
	"alt":     ModAlt,
	"option":  ModAlt,
	"super":   ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
}

// Combo is a parsed hotkey such as ctrl+shift+t.
type Combo struct {
	Mods []Modifier
	Key  string
}

// ParseCombo parses "mod+mod+key". Keys are a-z, 0-9, f1-f12 and space.
// At least one modifier is required so a bare key is never grabbed globally.
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if i == len(parts)-1 {
			if !validKey(p) {
				return Combo{}, apperr.Newf(apperr.ConfigInvalid, "hotkey %q: unsupported key %q", s, p)
			}
			c.Key = p
			break
		}
		mod, ok := modifierAliases[p]
		if !ok {
			return Combo{}, apperr.Newf(apperr.ConfigInvalid, "hotkey %q: unknown modifier %q", s, p)
		}
		if slices.Contains(c.Mods, mod) {
			return Combo{}, apperr.Newf(apperr.ConfigInvalid, "hotkey %q: duplicate modifier %q", s, p)
		}
		c.Mods = append(c.Mods, mod)
	}
	if len(c.Mods) == 0 {
		return Combo{}, apperr.Newf(apperr.ConfigInvalid, "hotkey %q: needs at least one modifier", s)
	}
	return c, nil
}

func (c Combo) String() string {
	parts := make([]string, 0, len(c.Mods)+1)
	for _, m := range c.Mods {
		parts = append(parts, string(m))
	}
	return strings.Join(append(parts, c.Key), "+")
}

func validKey(k string) bool {
	switch {
	case k == "space":
		return true
	case len(k) == 1:
		return (k[0] >= 'a' && k[0] <= 'z') || (k[0] >= '0' && k[0] <= '9')
	case len(k) >= 2 && k[0] == 'f':
		var n int
		if _, err := fmt.Sscanf(k[1:], "%d", &n); err != nil || fmt.Sprint(n) != k[1:] {
			return false
		}
		return n >= 1 && n <= 12
	}
	return false
}
