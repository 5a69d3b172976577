package hotkey

import (
	"golang.design/x/hotkey"

	"github.com/light4/christina/internal/trigger"
)

// X11 maps Alt to Mod1 and Super to Mod4 on common keyboard layouts.
var modifiers = map[trigger.Modifier]hotkey.Modifier{
	trigger.ModCtrl:  hotkey.ModCtrl,
	trigger.ModShift: hotkey.ModShift,
	trigger.ModAlt:   hotkey.Mod1,
	trigger.ModSuper: hotkey.Mod4,
}
