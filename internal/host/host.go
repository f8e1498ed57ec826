// Package host abstracts the platform mechanism that creates, removes, and
// repositions status-area icons. The statusbar core only ever talks to the
// Provider and Icon interfaces; concrete backends live in this package too.
package host

// Image is a 32-bit ARGB pixmap, the format status notifier hosts accept.
type Image struct {
	Width  int
	Height int
	Pixels []byte // Width*Height*4 bytes, rows top to bottom
}

// Rect is an icon's on-screen frame in host coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Icon is one live status-area icon owned by a control item.
type Icon interface {
	// ID is a unique instance id, stable for the lifetime of this icon only.
	ID() string

	// AutosaveName is the durable key under which the host tracks this
	// icon's preferred position and last-visible values.
	AutosaveName() string

	IsVisible() bool
	SetVisible(visible bool)

	Length() float64
	SetLength(length float64)

	Image() *Image
	SetImage(img *Image)

	// SetEnabled toggles interactivity. A disabled icon ignores clicks,
	// which is what the expanded spacer state wants.
	SetEnabled(enabled bool)

	// Frame reports the icon's current on-screen frame. The second return
	// is false when the host has not placed the icon yet.
	Frame() (Rect, bool)

	// Remove destroys the underlying host icon. The host forgets the
	// icon's cached preferred position as a side effect; callers that
	// want the slot preserved must cache and restore it around Remove.
	Remove()
}

// Provider creates icons and exposes the host's durable per-autosave-name
// key/value store for preferred positions and visibility.
type Provider interface {
	Create(autosaveName string, length float64) (Icon, error)

	PreferredPosition(autosaveName string) (float64, bool)
	SetPreferredPosition(autosaveName string, position float64)
	RemovePreferredPosition(autosaveName string)

	LastVisible(autosaveName string) (bool, bool)
	SetLastVisible(autosaveName string, visible bool)
	RemoveLastVisible(autosaveName string)
}
