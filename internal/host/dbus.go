package host

import (
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
)

const (
	statusNotifierItemInterface    = "org.kde.StatusNotifierItem"
	statusNotifierItemPath         = "/StatusNotifierItem"
	statusNotifierWatcherInterface = "org.kde.StatusNotifierWatcher"
	statusNotifierWatcherPath      = "/StatusNotifierWatcher"
)

var dbusItemSerial atomic.Int64

// DBusProvider creates icons by publishing one StatusNotifierItem per
// autosave name on the session bus. Every icon rides its own bus connection:
// the protocol addresses items by bus name at a fixed object path, and hosts
// notice removal through the name dropping off the bus. Preferred positions
// and last-visible values live in the embedded prefs store; status notifier
// hosts treat item ordering as advisory, so the store is the source of truth
// either way.
type DBusProvider struct {
	*PrefsStore

	conn *dbus.Conn

	mu    sync.Mutex
	icons map[string]*DBusIcon
}

// NewDBusProvider connects to the session bus and verifies that a status
// notifier watcher is present. Without a watcher no host will ever pick the
// items up, so we fail early and let the caller fall back.
func NewDBusProvider(prefs *PrefsStore) (*DBusProvider, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	var owner string
	err = conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, statusNotifierWatcherInterface).Store(&owner)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("no status notifier watcher on the bus: %w", err)
	}

	return &DBusProvider{
		PrefsStore: prefs,
		conn:       conn,
		icons:      make(map[string]*DBusIcon),
	}, nil
}

func (d *DBusProvider) Create(autosaveName string, length float64) (Icon, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.icons[autosaveName]; ok {
		return nil, fmt.Errorf("icon %q already exists", autosaveName)
	}

	// Hosts quietly ignore left-over positions for icons they last saw
	// hidden, so a hidden icon comes back without a remembered slot.
	if visible, ok := d.LastVisible(autosaveName); ok && !visible {
		d.RemovePreferredPosition(autosaveName)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	busName := fmt.Sprintf("%s-%d-%d", statusNotifierItemInterface, os.Getpid(), dbusItemSerial.Add(1))

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to request bus name %s: %w", busName, err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s is already taken", busName)
	}

	icon := &DBusIcon{
		provider: d,
		conn:     conn,
		id:       busName,
		name:     autosaveName,
		visible:  true,
		enabled:  true,
		length:   length,
	}

	if err := icon.export(); err != nil {
		conn.Close()
		return nil, err
	}

	// Registration failures are survivable: the item is exported and a
	// watcher that shows up later can still find it by name.
	watcher := conn.Object(statusNotifierWatcherInterface, statusNotifierWatcherPath)
	call := watcher.Call(statusNotifierWatcherInterface+".RegisterStatusNotifierItem", 0, busName)
	if call.Err != nil {
		log.Printf("[host] failed to register %s with watcher: %v", autosaveName, call.Err)
	}

	d.icons[autosaveName] = icon
	return icon, nil
}

// Icon returns the live icon for an autosave name, or nil.
func (d *DBusProvider) Icon(autosaveName string) *DBusIcon {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.icons[autosaveName]
}

// Close removes every published item and closes the bus connection.
func (d *DBusProvider) Close() error {
	d.mu.Lock()
	icons := make([]*DBusIcon, 0, len(d.icons))
	for _, icon := range d.icons {
		icons = append(icons, icon)
	}
	d.mu.Unlock()

	for _, icon := range icons {
		icon.Remove()
	}
	return d.conn.Close()
}

func (d *DBusProvider) remove(icon *DBusIcon) {
	d.mu.Lock()
	delete(d.icons, icon.name)
	d.mu.Unlock()

	// Dropping the connection drops the bus name, which is what hosts
	// watch for.
	if err := icon.conn.Close(); err != nil {
		log.Printf("[host] failed to close connection for %s: %v", icon.id, err)
	}
	d.RemovePreferredPosition(icon.name)
}

// DBusIcon is one published StatusNotifierItem. Visibility maps to the
// Active/Passive status pair: hosts hide Passive items, which is exactly the
// semantic SetVisible(false) wants.
type DBusIcon struct {
	provider *DBusProvider
	conn     *dbus.Conn

	id   string
	name string

	mu      sync.Mutex
	visible bool
	enabled bool
	removed bool
	length  float64
	image   *Image
	props   *prop.Properties
}

func (i *DBusIcon) export() error {
	if err := i.conn.Export(i, statusNotifierItemPath, statusNotifierItemInterface); err != nil {
		return fmt.Errorf("failed to export %s: %w", i.name, err)
	}

	props, err := prop.Export(i.conn, statusNotifierItemPath, prop.Map{
		statusNotifierItemInterface: map[string]*prop.Prop{
			"Category": {
				Value:    "ApplicationStatus",
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"Id": {
				Value:    i.name,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"Title": {
				Value:    i.name,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"Status": {
				Value:    "Active",
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"IconName": {
				Value:    "",
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"IconPixmap": {
				Value:    []pixmap{},
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"ItemIsMenu": {
				Value:    false,
				Writable: false,
				Emit:     prop.EmitTrue,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to export properties for %s: %w", i.name, err)
	}

	i.props = props
	return nil
}

// pixmap is the wire shape of one StatusNotifierItem icon frame:
// width, height, and ARGB bytes in network order.
type pixmap struct {
	Width  int32
	Height int32
	Bytes  []byte
}

func (i *DBusIcon) ID() string { return i.id }

func (i *DBusIcon) AutosaveName() string { return i.name }

func (i *DBusIcon) IsVisible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.visible
}

func (i *DBusIcon) SetVisible(visible bool) {
	i.mu.Lock()
	i.visible = visible
	i.mu.Unlock()

	status := "Active"
	if !visible {
		status = "Passive"
	}
	i.props.SetMust(statusNotifierItemInterface, "Status", status)
	i.emit("NewStatus", status)

	i.provider.SetLastVisible(i.name, visible)
}

func (i *DBusIcon) Length() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.length
}

// SetLength records the requested width. Status notifier hosts size items
// themselves, so the value only feeds Frame.
func (i *DBusIcon) SetLength(length float64) {
	i.mu.Lock()
	i.length = length
	i.mu.Unlock()
}

func (i *DBusIcon) Image() *Image {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.image
}

func (i *DBusIcon) SetImage(img *Image) {
	i.mu.Lock()
	i.image = img
	i.mu.Unlock()

	pixmaps := []pixmap{}
	if img != nil {
		pixmaps = append(pixmaps, pixmap{
			Width:  int32(img.Width),
			Height: int32(img.Height),
			Bytes:  img.Pixels,
		})
	}
	i.props.SetMust(statusNotifierItemInterface, "IconPixmap", pixmaps)
	i.emit("NewIcon")
}

func (i *DBusIcon) SetEnabled(enabled bool) {
	i.mu.Lock()
	i.enabled = enabled
	i.mu.Unlock()
}

func (i *DBusIcon) Frame() (Rect, bool) {
	pos, ok := i.provider.PreferredPosition(i.name)
	if !ok {
		return Rect{}, false
	}

	i.mu.Lock()
	length := i.length
	i.mu.Unlock()

	return Rect{X: pos, Width: length, Height: standardFrameHeight}, true
}

func (i *DBusIcon) Remove() {
	i.mu.Lock()
	if i.removed {
		i.mu.Unlock()
		return
	}
	i.removed = true
	i.mu.Unlock()

	i.provider.remove(i)
}

func (i *DBusIcon) emit(member string, values ...any) {
	err := i.conn.Emit(statusNotifierItemPath, statusNotifierItemInterface+"."+member, values...)
	if err != nil {
		log.Printf("[host] failed to emit %s for %s: %v", member, i.name, err)
	}
}

// Activate, SecondaryActivate, and Scroll satisfy the StatusNotifierItem
// method surface. Clicks are handled through the tray menu, not the items
// themselves, so all three are accept-and-ignore.
func (i *DBusIcon) Activate(x, y int32) *dbus.Error {
	return nil
}

func (i *DBusIcon) SecondaryActivate(x, y int32) *dbus.Error {
	return nil
}

func (i *DBusIcon) Scroll(delta int32, orientation string) *dbus.Error {
	return nil
}
