package statusbar

import (
	"sync"

	"github.com/barkeep-io/barkeep/internal/host"
	"github.com/barkeep-io/barkeep/internal/icons"
	"github.com/barkeep-io/barkeep/internal/models"
)

// Identifier is a control item's stable tag. It persists across restarts and
// doubles as the storage key and the host icon's autosave name.
type Identifier string

// The full set of identifiers, in enumeration order.
const (
	BarkeepIcon      Identifier = "BarkeepIcon"
	HiddenItem       Identifier = "HiddenItem"
	AlwaysHiddenItem Identifier = "AlwaysHiddenItem"
)

var identifierOrder = [...]Identifier{BarkeepIcon, HiddenItem, AlwaysHiddenItem}

func (id Identifier) valid() bool {
	for _, known := range identifierOrder {
		if id == known {
			return true
		}
	}
	return false
}

// HidingState is a control item's desired hiding state: visible, or hidden
// with an expanded/collapsed visual sub-state. Expanded is meaningful only
// while Hidden; an expanded control item widens into a spacer that reserves
// room for the icons it is hiding. Expanded is transient and never persisted.
type HidingState struct {
	Hidden   bool
	Expanded bool
}

// Host icon lengths. A hidden section's control item stretches to the
// expanded length so the icons behind it move off-screen.
const (
	standardLength float64 = 25
	expandedLength float64 = 10000
)

// ControlItem represents one host status icon's desired and actual state.
// Items are owned exclusively by a StatusBar; which section an item belongs
// to is never stored here but resolved through the owning bar on demand.
type ControlItem struct {
	mu         sync.Mutex
	identifier Identifier
	position   *float64 // nil means trailing placement, resolved by the host
	state      HidingState
	isVisible  bool
	icon       host.Icon
	provider   host.Provider
	sink       chan<- Event // set while owned by a bar's pipeline
}

// newControlItem creates a control item and its backing host icon. A nil
// position adopts whatever preferred position the host has remembered for
// the identifier; absent that, the host places the icon at the trailing end.
//
// Creating a host icon that was last recorded invisible makes the host forget
// the icon's preferred position, so the recorded visibility is read and
// cleared up front, then reapplied once the icon exists.
func newControlItem(provider host.Provider, id Identifier, position *float64, state HidingState) (*ControlItem, error) {
	name := string(id)

	visible, hadVisible := provider.LastVisible(name)
	if hadVisible {
		provider.RemoveLastVisible(name)
	}
	if position != nil {
		provider.SetPreferredPosition(name, *position)
	}

	icon, err := provider.Create(name, standardLength)
	if err != nil {
		return nil, err
	}
	if hadVisible {
		icon.SetVisible(visible)
	}

	var pos *float64
	if position != nil {
		p := *position
		pos = &p
	} else if p, ok := provider.PreferredPosition(name); ok {
		pos = &p
	}

	return &ControlItem{
		identifier: id,
		position:   pos,
		state:      state,
		isVisible:  icon.IsVisible(),
		icon:       icon,
		provider:   provider,
	}, nil
}

// Identifier returns the item's stable tag.
func (c *ControlItem) Identifier() Identifier {
	return c.identifier
}

// Position returns a copy of the item's ordinal position, nil for trailing.
func (c *ControlItem) Position() *float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.position == nil {
		return nil
	}
	p := *c.position
	return &p
}

// SetPosition records a new ordinal position, persists it as the host icon's
// preferred position, and notifies the pipeline.
func (c *ControlItem) SetPosition(position float64) {
	c.mu.Lock()
	p := position
	c.position = &p
	sink := c.sink
	c.mu.Unlock()

	c.provider.SetPreferredPosition(string(c.identifier), position)

	if sink != nil {
		select {
		case sink <- Event{Kind: EventPositionChanged, Identifier: c.identifier}:
		default:
		}
	}
}

// State returns the item's current hiding state.
func (c *ControlItem) State() HidingState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsVisible reports the host icon's actual visibility, which can diverge
// from the desired state while host side effects are in flight.
func (c *ControlItem) IsVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isVisible
}

func (c *ControlItem) setSink(sink chan<- Event) {
	c.mu.Lock()
	c.sink = sink
	c.mu.Unlock()
}

// applyState pushes a hiding state down to the host icon. The rendered
// length, interactivity, and glyph depend on the section the owning bar has
// resolved for this item, not on anything stored here.
func (c *ControlItem) applyState(section Section, state HidingState, appearance models.AppearanceConfig) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	switch section {
	case SectionAlwaysVisible:
		c.icon.SetLength(standardLength)
		c.icon.SetEnabled(true)
		c.icon.SetImage(icons.Fit(icons.Primary(appearance.IconStyle, state.Hidden), icons.StandardSize))

	default:
		if state.Hidden {
			// Expanded placeholder: image-less, non-interactive, wide
			// enough to push the hidden icons out of the bar.
			c.icon.SetImage(nil)
			c.icon.SetEnabled(false)
			if state.Expanded {
				c.icon.SetLength(expandedLength)
			} else {
				c.icon.SetLength(standardLength)
			}
		} else {
			c.icon.SetLength(standardLength)
			c.icon.SetEnabled(true)
			c.icon.SetImage(icons.SectionGlyph(section == SectionAlwaysHidden, appearance.ShowDividers))
		}
	}

	c.mu.Lock()
	c.isVisible = c.icon.IsVisible()
	c.mu.Unlock()
}

// remove destroys the backing host icon. Removal makes the host delete the
// icon's cached preferred position, so the position is cached first and
// restored after, letting a later re-creation at the same identifier keep
// its slot.
func (c *ControlItem) remove() {
	name := c.icon.AutosaveName()

	position, hadPosition := c.provider.PreferredPosition(name)
	c.icon.Remove()
	if hadPosition {
		c.provider.SetPreferredPosition(name, position)
	}

	c.setSink(nil)
}
