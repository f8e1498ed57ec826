// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
)

// GlobalDirName is the name of the global barkeep directory.
const GlobalDirName = ".barkeep"

// File names inside the global directory.
const (
	DaemonFileName    = "daemon.yaml"
	SettingsFileName  = "settings.yaml"
	SectionsFileName  = "sections.yaml"
	PositionsFileName = "positions.yaml"
)

// GlobalDir returns the path to the global barkeep directory (~/.barkeep/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml file.
func GlobalDaemonFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DaemonFileName), nil
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SettingsFileName), nil
}

// GlobalSectionsFile returns the path to the sections.yaml file, the
// persisted store for control item records.
func GlobalSectionsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, SectionsFileName), nil
}

// GlobalPositionsFile returns the path to the positions.yaml file, the
// durable per-icon preference store.
func GlobalPositionsFile() (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PositionsFileName), nil
}

// EnsureGlobalDir creates the global barkeep directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
