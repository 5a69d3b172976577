// Package desktop wraps the desktop integrations: clipboard, notifications,
// the system tray and opening the panel in a browser.
package desktop

// Desktop integration constants
const (
	AppName = "christina"

	// Longest notification body, in runes
	NotifyMaxRunes = 200

	// Longest tray tooltip line, in runes
	TooltipMaxRunes = 60

	// Edge of the generated tray icon, in pixels
	IconSize = 32
)
