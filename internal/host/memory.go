package host

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// MemoryProvider is an in-process host backend. The daemon uses it when no
// session bus is available; tests use it to observe icon side effects.
//
// It mimics the quirks of a real status-icon host that the statusbar core
// has to work around: removing an icon forgets its preferred position, and
// creating an icon that was last recorded invisible does the same.
type MemoryProvider struct {
	*PrefsStore

	mu    sync.Mutex
	icons map[string]*MemoryIcon
}

// NewMemoryProvider creates a provider backed by the given preference store.
func NewMemoryProvider(prefs *PrefsStore) *MemoryProvider {
	return &MemoryProvider{
		PrefsStore: prefs,
		icons:      make(map[string]*MemoryIcon),
	}
}

// Create creates a new in-memory icon. At most one icon may exist per
// autosave name.
func (m *MemoryProvider) Create(autosaveName string, length float64) (Icon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.icons[autosaveName]; exists {
		return nil, fmt.Errorf("icon %q already exists", autosaveName)
	}

	// A host that re-creates an icon recorded as invisible drops its
	// preferred position. Control items defend against this by clearing
	// the recorded visibility before creating and reapplying it after.
	if visible, ok := m.LastVisible(autosaveName); ok && !visible {
		m.RemovePreferredPosition(autosaveName)
	}

	icon := &MemoryIcon{
		id:       uuid.NewString(),
		name:     autosaveName,
		provider: m,
		visible:  true,
		length:   length,
		enabled:  true,
	}
	m.icons[autosaveName] = icon
	return icon, nil
}

// Icon returns the live icon for an autosave name, or nil.
func (m *MemoryProvider) Icon(autosaveName string) *MemoryIcon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.icons[autosaveName]
}

func (m *MemoryProvider) remove(icon *MemoryIcon) {
	m.mu.Lock()
	if m.icons[icon.name] == icon {
		delete(m.icons, icon.name)
	}
	m.mu.Unlock()

	// Host icon removal forgets the cached preferred position.
	m.RemovePreferredPosition(icon.name)
}

// MemoryIcon is an in-memory Icon.
type MemoryIcon struct {
	mu           sync.Mutex
	id           string
	name         string
	provider     *MemoryProvider
	visible      bool
	length       float64
	image        *Image
	enabled      bool
	removed      bool
	imageUpdates int
}

// ID returns the icon's instance id.
func (i *MemoryIcon) ID() string { return i.id }

// AutosaveName returns the icon's durable key.
func (i *MemoryIcon) AutosaveName() string { return i.name }

// IsVisible reports whether the icon is visible.
func (i *MemoryIcon) IsVisible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible
}

// SetVisible shows or hides the icon and records the value durably, the way
// a host that remembers visibility across restarts would.
func (i *MemoryIcon) SetVisible(visible bool) {
	i.mu.Lock()
	i.visible = visible
	i.mu.Unlock()
	i.provider.SetLastVisible(i.name, visible)
}

// Length returns the icon's current length.
func (i *MemoryIcon) Length() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.length
}

// SetLength sets the icon's length.
func (i *MemoryIcon) SetLength(length float64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.length = length
}

// Image returns the icon's current image, nil for an image-less icon.
func (i *MemoryIcon) Image() *Image {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.image
}

// SetImage sets the icon's image. Nil clears it.
func (i *MemoryIcon) SetImage(img *Image) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.image = img
	i.imageUpdates++
}

// ImageUpdates counts SetImage calls, letting tests assert how often an
// icon was refreshed.
func (i *MemoryIcon) ImageUpdates() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.imageUpdates
}

// Enabled reports whether the icon reacts to clicks.
func (i *MemoryIcon) Enabled() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.enabled
}

// SetEnabled toggles interactivity.
func (i *MemoryIcon) SetEnabled(enabled bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.enabled = enabled
}

// Frame derives the icon's frame from its preferred position; a never-placed
// icon has no frame.
func (i *MemoryIcon) Frame() (Rect, bool) {
	pos, ok := i.provider.PreferredPosition(i.name)
	if !ok {
		return Rect{}, false
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	return Rect{X: pos, Width: i.length, Height: standardFrameHeight}, true
}

// Removed reports whether Remove has been called.
func (i *MemoryIcon) Removed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.removed
}

// Remove destroys the icon and, like a real host, forgets its preferred
// position.
func (i *MemoryIcon) Remove() {
	i.mu.Lock()
	if i.removed {
		i.mu.Unlock()
		return
	}
	i.removed = true
	i.mu.Unlock()

	i.provider.remove(i)
}

const standardFrameHeight = 22
