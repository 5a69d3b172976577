package desktop

import (
	"fmt"
	"runtime"

	"fyne.io/systray"

	"github.com/light4/christina/internal/orchestrator/result"
)

// TrayActions are invoked from the tray menu.
type TrayActions struct {
	Capture   func()
	OpenPanel func()
	Quit      func()
}

// Tray is the system tray icon and menu. Run must be called from the main
// goroutine on macOS.
type Tray struct {
	actions TrayActions
	about   string
	ready   chan struct{}
}

// NewTray creates a tray; about is shown as a disabled menu entry.
func NewTray(actions TrayActions, about string) *Tray {
	return &Tray{actions: actions, about: about, ready: make(chan struct{})}
}

// Run shows the tray and blocks until Stop or the Quit menu item.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Stop removes the tray icon and makes Run return.
func (t *Tray) Stop() {
	systray.Quit()
}

// Show updates the tooltip with the latest pair. It is a no-op until the
// tray is ready.
func (t *Tray) Show(r result.Result) {
	select {
	case <-t.ready:
		systray.SetTooltip(Tooltip(r))
	default:
	}
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon(runtime.GOOS))
	systray.SetTitle("")
	systray.SetTooltip(AppName)

	capture := systray.AddMenuItem("Capture", "Capture the subtitle region now")
	panel := systray.AddMenuItem("Open panel", "Open the web panel")
	systray.AddSeparator()
	about := systray.AddMenuItem(t.about, "")
	about.Disable()
	quit := systray.AddMenuItem("Quit", "Quit "+AppName)
	close(t.ready)

	go func() {
		for {
			select {
			case <-capture.ClickedCh:
				call(t.actions.Capture)
			case <-panel.ClickedCh:
				call(t.actions.OpenPanel)
			case <-quit.ClickedCh:
				call(t.actions.Quit)
				systray.Quit()
				return
			}
		}
	}()
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}

// Tooltip formats the pair for the tray tooltip.
func Tooltip(r result.Result) string {
	return fmt.Sprintf("%s\n%s\n%s", AppName, truncate(r.Origin, TooltipMaxRunes), truncate(r.Translated, TooltipMaxRunes))
}
