// Package tray implements the system tray icon and menu for the daemon.
package tray

import "github.com/barkeep-io/barkeep/internal/statusbar"

// BarState provides the tray's view of the daemon. The tray never touches
// the status bar directly; every action goes through this interface.
type BarState interface {
	Port() int
	IsSectionHidden(section statusbar.Section) bool
	ToggleSection(section statusbar.Section)
	AlwaysHiddenEnabled() bool
	SetAlwaysHiddenEnabled(enabled bool)
	RequestShutdown()
}
