// Package main is the entry point for the barkeepd daemon.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/barkeep-io/barkeep/internal/config"
	"github.com/barkeep-io/barkeep/internal/daemon/server"
	"github.com/barkeep-io/barkeep/internal/daemon/tray"
	"github.com/barkeep-io/barkeep/internal/daemon/watcher"
	"github.com/barkeep-io/barkeep/internal/host"
	"github.com/barkeep-io/barkeep/internal/models"
	"github.com/barkeep-io/barkeep/internal/statusbar"
)

func main() {
	// Parse flags
	foreground := flag.Bool("foreground", false, "Run without a system tray (for development)")
	port := flag.Int("port", 0, "Port to listen on (0 for dynamic allocation)")
	flag.Parse()

	log.SetPrefix("[barkeepd] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Ensure global directory exists
	if err := config.EnsureGlobalDir(); err != nil {
		log.Fatalf("Failed to create global directory: %v", err)
	}

	// Check if daemon is already running
	running, info, err := config.IsDaemonRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon already running on port %d (PID %d)", info.Port, info.PID)
	}

	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	bar, err := buildStatusBar(settings)
	if err != nil {
		log.Fatalf("Failed to build status bar: %v", err)
	}

	if *foreground {
		log.Println("Running in foreground mode (no system tray)")
		runForeground(*port, bar)
	} else {
		// Background daemons have no terminal; log to a file instead.
		if f, err := config.OpenDaemonLog(); err == nil {
			log.SetOutput(f)
			defer f.Close()
		} else {
			log.Printf("Failed to open log file: %v", err)
		}
		log.Println("Running in background mode (with system tray)")
		runWithTray(*port, bar)
	}
}

// buildStatusBar assembles the bar: host provider, section store, items, and
// the update pipeline.
func buildStatusBar(settings *models.Settings) (*statusbar.StatusBar, error) {
	prefs, err := host.OpenGlobalPrefs()
	if err != nil {
		return nil, fmt.Errorf("failed to open preference store: %w", err)
	}

	var provider host.Provider
	provider, err = host.NewDBusProvider(prefs)
	if err != nil {
		// No session bus or no watcher. Icons become invisible but the
		// sections, persistence, and control API all still work.
		log.Printf("Status notifier host unavailable, running headless: %v", err)
		provider = host.NewMemoryProvider(prefs)
	}

	store, err := statusbar.OpenGlobalStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open section store: %w", err)
	}

	bar := statusbar.New(provider, store, statusbar.Options{
		AlwaysHiddenEnabled: settings.Sections.AlwaysHiddenEnabled,
		Appearance:          settings.Appearance,
	})
	bar.Initialize()
	statusbar.NewUpdatePipeline(bar)
	bar.RefreshOrdering()

	return bar, nil
}

// watchSettings applies external settings edits to the running bar.
func watchSettings(bar *statusbar.StatusBar) *watcher.Watcher {
	w, err := watcher.New()
	if err != nil {
		log.Printf("Failed to create watcher: %v", err)
		return nil
	}
	if err := w.Start(); err != nil {
		log.Printf("Failed to start watcher: %v", err)
		w.Stop()
		return nil
	}

	go func() {
		for event := range w.Events() {
			if event.Type != watcher.EventSettingsChanged {
				// Sections file events are the daemon's own saves.
				continue
			}
			settings, err := config.LoadSettings()
			if err != nil {
				log.Printf("Failed to reload settings: %v", err)
				continue
			}
			bar.SetAppearance(settings.Appearance)
			bar.SetAlwaysHiddenEnabled(settings.Sections.AlwaysHiddenEnabled)
			tray.Refresh()
		}
	}()

	return w
}

// shutdown flushes and tears everything down in dependency order.
func shutdown(srv *server.Server, w *watcher.Watcher, bar *statusbar.StatusBar) {
	if srv != nil {
		srv.Stop()
	}
	if w != nil {
		w.Stop()
	}
	if err := bar.Save(); err != nil {
		log.Printf("Failed to save sections: %v", err)
	}
	bar.Close()

	if err := config.RemoveDaemonInfo(); err != nil {
		log.Printf("Failed to remove daemon info: %v", err)
	}

	fmt.Println("Daemon stopped")
}

// runForeground runs the daemon without a system tray, blocking on signals.
func runForeground(port int, bar *statusbar.StatusBar) {
	srv, err := server.New(port, bar)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	daemonInfo := models.NewDaemonInfo("localhost", srv.Port(), os.Getpid())
	if err := config.SaveDaemonInfo(daemonInfo); err != nil {
		log.Fatalf("Failed to write daemon info: %v", err)
	}

	log.Printf("Daemon started on port %d (PID %d)", srv.Port(), os.Getpid())

	w := watchSettings(bar)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-srv.ShutdownRequests():
		log.Println("Shutdown requested over control API")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	shutdown(srv, w, bar)
}

// runWithTray runs the daemon with a system tray icon on the main goroutine.
// systray.Run must occupy the main goroutine.
func runWithTray(port int, bar *statusbar.StatusBar) {
	var srv *server.Server
	var w *watcher.Watcher

	onStart := func() {
		var err error
		srv, err = server.New(port, bar)
		if err != nil {
			log.Fatalf("Failed to create server: %v", err)
		}

		daemonInfo := models.NewDaemonInfo("localhost", srv.Port(), os.Getpid())
		if err := config.SaveDaemonInfo(daemonInfo); err != nil {
			log.Fatalf("Failed to write daemon info: %v", err)
		}

		log.Printf("Daemon started on port %d (PID %d)", srv.Port(), os.Getpid())

		w = watchSettings(bar)

		// Serve gRPC in background
		go func() {
			if err := srv.Serve(); err != nil {
				log.Printf("Server error: %v", err)
				tray.Quit()
			}
		}()

		// Quit tray on OS signals or a Shutdown RPC
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-sigCh:
				log.Printf("Received signal %v, shutting down...", sig)
			case <-srv.ShutdownRequests():
				log.Println("Shutdown requested over control API")
			}
			tray.Quit()
		}()
	}

	onExit := func() {
		shutdown(srv, w, bar)
	}

	// We need a BarState before the server is created, so we use a lazy
	// wrapper that defers to the real TrayState once the server exists.
	lazyState := &lazyBarState{bar: bar, getSrv: func() *server.Server { return srv }}

	// This blocks the main goroutine until tray exits.
	tray.Run(lazyState, onStart, onExit)
}

// lazyBarState wraps server.TrayState with lazy initialization.
// The server is nil at tray startup and created inside onStart.
type lazyBarState struct {
	bar    *statusbar.StatusBar
	getSrv func() *server.Server
}

func (l *lazyBarState) Port() int {
	if srv := l.getSrv(); srv != nil {
		return server.NewTrayState(srv).Port()
	}
	return 0
}

func (l *lazyBarState) IsSectionHidden(section statusbar.Section) bool {
	return l.bar.IsSectionHidden(section)
}

func (l *lazyBarState) ToggleSection(section statusbar.Section) {
	l.bar.Toggle(section)
}

func (l *lazyBarState) AlwaysHiddenEnabled() bool {
	return l.bar.AlwaysHiddenEnabled()
}

func (l *lazyBarState) SetAlwaysHiddenEnabled(enabled bool) {
	if srv := l.getSrv(); srv != nil {
		server.NewTrayState(srv).SetAlwaysHiddenEnabled(enabled)
	}
}

func (l *lazyBarState) RequestShutdown() {
	if srv := l.getSrv(); srv != nil {
		server.NewTrayState(srv).RequestShutdown()
	}
}
