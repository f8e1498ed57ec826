package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DaemonLogFileName is the daemon's log file inside the global directory.
const DaemonLogFileName = "daemon.log"

// OpenDaemonLog opens the daemon log file for appending, creating it if
// needed. Background daemons log here instead of a terminal.
func OpenDaemonLog() (*os.File, error) {
	if err := EnsureGlobalDir(); err != nil {
		return nil, err
	}

	dir, err := GlobalDir()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, DaemonLogFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
