package statusbar

import (
	"testing"

	"github.com/barkeep-io/barkeep/internal/host"
)

func TestNewControlItemRestoresRecordedVisibility(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	name := string(HiddenItem)

	// An earlier run left the icon invisible with a known position. A
	// naive re-creation would make the host drop the position because the
	// icon was recorded invisible.
	provider.SetPreferredPosition(name, 7)
	provider.SetLastVisible(name, false)

	item, err := newControlItem(provider, HiddenItem, nil, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	icon := provider.Icon(name)
	if icon.IsVisible() {
		t.Error("recorded invisibility was not reapplied after creation")
	}
	if pos, ok := provider.PreferredPosition(name); !ok || pos != 7 {
		t.Errorf("preferred position = %v, %v; want 7 preserved across creation", pos, ok)
	}
	if pos := item.Position(); pos == nil || *pos != 7 {
		t.Errorf("item adopted position %v, want 7 from host store", pos)
	}
}

func TestNewControlItemWithoutRecordedVisibility(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))

	item, err := newControlItem(provider, BarkeepIcon, nil, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	if !item.IsVisible() {
		t.Error("fresh icon not visible by default")
	}
	if pos := item.Position(); pos != nil {
		t.Errorf("fresh item has position %v, want nil (trailing)", *pos)
	}
}

func TestNewControlItemExplicitPosition(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	position := 3.0

	item, err := newControlItem(provider, BarkeepIcon, &position, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	if pos := item.Position(); pos == nil || *pos != 3 {
		t.Fatalf("item position = %v, want 3", pos)
	}
	if pos, ok := provider.PreferredPosition(string(BarkeepIcon)); !ok || pos != 3 {
		t.Errorf("host preferred position = %v, %v; want 3 recorded", pos, ok)
	}
}

func TestRemovePreservesPreferredPosition(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	position := 4.0

	item, err := newControlItem(provider, AlwaysHiddenItem, &position, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	item.remove()

	if provider.Icon(string(AlwaysHiddenItem)) != nil {
		t.Fatal("host icon still present after remove")
	}
	if pos, ok := provider.PreferredPosition(string(AlwaysHiddenItem)); !ok || pos != 4 {
		t.Errorf("preferred position = %v, %v; want 4 restored after removal", pos, ok)
	}
}

func TestSetPositionPersistsAndNotifies(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	item, err := newControlItem(provider, BarkeepIcon, nil, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	events := make(chan Event, 1)
	item.setSink(events)

	item.SetPosition(12)

	if pos := item.Position(); pos == nil || *pos != 12 {
		t.Fatalf("position = %v, want 12", pos)
	}
	if pos, ok := provider.PreferredPosition(string(BarkeepIcon)); !ok || pos != 12 {
		t.Errorf("host preferred position = %v, %v; want 12", pos, ok)
	}

	select {
	case event := <-events:
		if event.Kind != EventPositionChanged || event.Identifier != BarkeepIcon {
			t.Errorf("event = %+v, want position change for %s", event, BarkeepIcon)
		}
	default:
		t.Error("no event emitted for position change")
	}
}

func TestSetPositionWithoutSinkDoesNotBlock(t *testing.T) {
	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	item, err := newControlItem(provider, BarkeepIcon, nil, HidingState{})
	if err != nil {
		t.Fatal(err)
	}

	// No sink wired; must not panic or block.
	item.SetPosition(1)
	item.SetPosition(2)

	if pos := item.Position(); pos == nil || *pos != 2 {
		t.Fatalf("position = %v, want 2", pos)
	}
}
