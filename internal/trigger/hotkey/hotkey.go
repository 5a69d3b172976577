// Package hotkey registers the global capture hotkey.
package hotkey

import (
	"context"

	"golang.design/x/hotkey"

	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/internal/trigger"
)

var keys = map[string]hotkey.Key{
	"space": hotkey.KeySpace,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3, "4": hotkey.Key4,
	"5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7, "8": hotkey.Key8, "9": hotkey.Key9,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD, "e": hotkey.KeyE,
	"f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH, "i": hotkey.KeyI, "j": hotkey.KeyJ,
	"k": hotkey.KeyK, "l": hotkey.KeyL, "m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO,
	"p": hotkey.KeyP, "q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX, "y": hotkey.KeyY,
	"z": hotkey.KeyZ,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// Convert maps a parsed combo onto this platform's key codes.
func Convert(c trigger.Combo) ([]hotkey.Modifier, hotkey.Key, error) {
	key, ok := keys[c.Key]
	if !ok {
		return nil, 0, apperr.Newf(apperr.ConfigInvalid, "hotkey %s: unsupported key", c)
	}
	mods := make([]hotkey.Modifier, 0, len(c.Mods))
	for _, m := range c.Mods {
		mod, ok := modifiers[m]
		if !ok {
			return nil, 0, apperr.Newf(apperr.ConfigInvalid, "hotkey %s: modifier %s not available on this platform", c, m)
		}
		mods = append(mods, mod)
	}
	return mods, key, nil
}

// Listen grabs the combo and submits a run on every key press until ctx is
// done. It returns once the hotkey is released again.
func Listen(ctx context.Context, c trigger.Combo, sub trigger.Submitter) error {
	mods, key, err := Convert(c)
	if err != nil {
		return err
	}
	hk := hotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return apperr.Wrapf(err, apperr.Unavailable, "register hotkey %s", c)
	}
	defer func() { _ = hk.Unregister() }()

	log := trace.Logger(ctx)
	log.Info("hotkey registered", "combo", c.String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hk.Keydown():
			if !sub.Submit(trigger.SourceHotkey) {
				log.Debug("capture already pending, hotkey coalesced")
			}
		}
	}
}
