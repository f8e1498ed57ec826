package host

import (
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/barkeep-io/barkeep/internal/config"
)

// Key template for the durable per-icon store: "<namespace> <key> <autosaveName>".
const (
	prefsNamespace        = "StatusIcon"
	prefPreferredPosition = "Preferred Position"
	prefVisible           = "Visible"
)

func prefKey(key, autosaveName string) string {
	return fmt.Sprintf("%s %s %s", prefsNamespace, key, autosaveName)
}

// PrefsStore is the durable key/value store the host keeps per autosave name:
// an icon's preferred position and whether it was last visible. Values
// survive icon removal and process restarts; the statusbar core relies on
// that to restore an icon's slot after re-creation.
//
// This corresponds to ~/.barkeep/positions.yaml.
type PrefsStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// OpenPrefs loads the preference store at path, starting empty if the file
// doesn't exist or can't be parsed.
func OpenPrefs(path string) *PrefsStore {
	p := &PrefsStore{path: path, values: make(map[string]string)}

	if config.FileExists(path) {
		if err := config.LoadYAML(path, &p.values); err != nil {
			log.Printf("[host] failed to load preferences from %s: %v", path, err)
			p.values = make(map[string]string)
		}
	}
	return p
}

// OpenGlobalPrefs opens the preference store at its default location.
func OpenGlobalPrefs() (*PrefsStore, error) {
	path, err := config.GlobalPositionsFile()
	if err != nil {
		return nil, err
	}
	return OpenPrefs(path), nil
}

// PreferredPosition returns the stored preferred position for an icon.
func (p *PrefsStore) PreferredPosition(autosaveName string) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, ok := p.values[prefKey(prefPreferredPosition, autosaveName)]
	if !ok {
		return 0, false
	}
	pos, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return pos, true
}

// SetPreferredPosition stores the preferred position for an icon.
func (p *PrefsStore) SetPreferredPosition(autosaveName string, position float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[prefKey(prefPreferredPosition, autosaveName)] = strconv.FormatFloat(position, 'f', -1, 64)
	p.flushLocked()
}

// RemovePreferredPosition deletes the stored preferred position for an icon.
func (p *PrefsStore) RemovePreferredPosition(autosaveName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, prefKey(prefPreferredPosition, autosaveName))
	p.flushLocked()
}

// LastVisible returns whether the icon was visible when last recorded.
// The second return is false if no value has been recorded.
func (p *PrefsStore) LastVisible(autosaveName string) (bool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, ok := p.values[prefKey(prefVisible, autosaveName)]
	if !ok {
		return false, false
	}
	visible, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return visible, true
}

// SetLastVisible records whether the icon is visible.
func (p *PrefsStore) SetLastVisible(autosaveName string, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.values[prefKey(prefVisible, autosaveName)] = strconv.FormatBool(visible)
	p.flushLocked()
}

// RemoveLastVisible deletes the recorded visibility for an icon.
func (p *PrefsStore) RemoveLastVisible(autosaveName string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.values, prefKey(prefVisible, autosaveName))
	p.flushLocked()
}

func (p *PrefsStore) flushLocked() {
	if p.path == "" {
		return
	}
	if err := config.SaveYAML(p.path, p.values); err != nil {
		log.Printf("[host] failed to save preferences to %s: %v", p.path, err)
	}
}
