package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/light4/christina/internal/trigger"
)

var modifiers = map[trigger.Modifier]hotkey.Modifier{
	trigger.ModCtrl:  hotkey.ModCtrl,
	trigger.ModShift: hotkey.ModShift,
	trigger.ModAlt:   hotkey.ModAlt,
	trigger.ModSuper: hotkey.ModWin,
}
