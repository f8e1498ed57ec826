package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
	"github.com/google/uuid"

	"github.com/barkeep-io/barkeep/internal/icons"
	"github.com/barkeep-io/barkeep/internal/statusbar"
)

var (
	state   BarState
	onStart func()
	onExit  func()

	portItem           *systray.MenuItem
	alwaysHiddenToggle *systray.MenuItem
	quitItem           *systray.MenuItem

	// Menu entries are looked up by opaque id rather than by holding
	// section references in the items themselves.
	entryMu      sync.RWMutex
	entrySection map[string]statusbar.Section
	entryItems   map[string]*systray.MenuItem
	entryOrder   []string
)

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStartFn is called when the tray is ready (launch gRPC server here).
// onExitFn is called when the tray exits (cleanup here).
func Run(s BarState, onStartFn, onExitFn func()) {
	state = s
	onStart = onStartFn
	onExit = onExitFn
	systray.Run(onReady, onQuit)
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func onReady() {
	systray.SetIcon(icons.PNG(icons.Primary("chevron", false)))
	systray.SetTooltip("Barkeep")

	// Header
	header := systray.AddMenuItem("Barkeep Daemon", "")
	header.Disable()

	// Port
	portItem = systray.AddMenuItem("Starting...", "")
	portItem.Disable()

	systray.AddSeparator()

	// One toggle entry per hideable section. The always-visible section
	// has no entry: it cannot be hidden.
	entrySection = make(map[string]statusbar.Section)
	entryItems = make(map[string]*systray.MenuItem)
	for _, section := range []statusbar.Section{statusbar.SectionHidden, statusbar.SectionAlwaysHidden} {
		id := uuid.NewString()
		entrySection[id] = section
		entryItems[id] = systray.AddMenuItem("", "")
		entryOrder = append(entryOrder, id)
	}

	systray.AddSeparator()

	alwaysHiddenToggle = systray.AddMenuItemCheckbox("Enable always-hidden section", "", false)
	quitItem = systray.AddMenuItem("Quit", "Shut down Barkeep daemon")

	// Start the daemon services
	if onStart != nil {
		onStart()
	}

	if state != nil {
		portItem.SetTitle(fmt.Sprintf("Running on port: %d", state.Port()))
		Refresh()
	}

	// Handle click events
	go handleClicks()
}

func onQuit() {
	if onExit != nil {
		onExit()
	}
}

func handleClicks() {
	entryMu.RLock()
	hiddenEntry := entryOrder[0]
	alwaysHiddenEntry := entryOrder[1]
	entryMu.RUnlock()

	for {
		select {
		case <-entryItems[hiddenEntry].ClickedCh:
			toggleEntry(hiddenEntry)

		case <-entryItems[alwaysHiddenEntry].ClickedCh:
			toggleEntry(alwaysHiddenEntry)

		case <-alwaysHiddenToggle.ClickedCh:
			if state != nil {
				state.SetAlwaysHiddenEnabled(!state.AlwaysHiddenEnabled())
				Refresh()
			}

		case <-quitItem.ClickedCh:
			if state != nil {
				state.RequestShutdown()
			}
		}
	}
}

// toggleEntry resolves a menu entry back to its section and toggles it.
func toggleEntry(id string) {
	entryMu.RLock()
	section, ok := entrySection[id]
	entryMu.RUnlock()

	if !ok || state == nil {
		return
	}
	state.ToggleSection(section)
	Refresh()
}

// Refresh updates entry titles and visibility from the current bar state.
func Refresh() {
	if state == nil {
		return
	}

	entryMu.RLock()
	defer entryMu.RUnlock()

	for _, id := range entryOrder {
		section := entrySection[id]
		item := entryItems[id]

		if section == statusbar.SectionAlwaysHidden && !state.AlwaysHiddenEnabled() {
			item.Hide()
			continue
		}
		item.Show()
		item.SetTitle(entryTitle(section, state.IsSectionHidden(section)))
	}

	if state.AlwaysHiddenEnabled() {
		alwaysHiddenToggle.Check()
	} else {
		alwaysHiddenToggle.Uncheck()
	}
}

func entryTitle(section statusbar.Section, hidden bool) string {
	verb := "Hide"
	if hidden {
		verb = "Show"
	}
	return fmt.Sprintf("%s %s section", verb, section)
}
