package statusbar

import (
	"errors"
	"testing"

	"github.com/barkeep-io/barkeep/internal/host"
	"github.com/barkeep-io/barkeep/internal/models"
)

// memStore is an in-memory Store that counts writes and can be made to fail.
type memStore struct {
	records map[string]Record
	saves   int
	loadErr error
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]Record)}
}

func (s *memStore) Load() (map[string]Record, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Save(records map[string]Record) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.records = make(map[string]Record, len(records))
	for k, v := range records {
		s.records[k] = v
	}
	return nil
}

func newTestBar(t *testing.T, alwaysHidden bool) (*StatusBar, *host.MemoryProvider, *memStore) {
	t.Helper()

	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	store := newMemStore()
	bar := New(provider, store, Options{
		AlwaysHiddenEnabled: alwaysHidden,
		Appearance:          models.NewSettings().Appearance,
	})
	return bar, provider, store
}

func TestInitializeEmptyStore(t *testing.T) {
	tests := []struct {
		name         string
		alwaysHidden bool
		wantCount    int
	}{
		{name: "always hidden disabled", alwaysHidden: false, wantCount: 2},
		{name: "always hidden enabled", alwaysHidden: true, wantCount: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, _, _ := newTestBar(t, tt.alwaysHidden)
			bar.Initialize()

			items := bar.Items()
			if len(items) != tt.wantCount {
				t.Fatalf("got %d items, want %d", len(items), tt.wantCount)
			}

			for _, item := range items {
				if item.State().Hidden {
					t.Errorf("item %s synthesized hidden, want visible", item.Identifier())
				}
			}

			first := bar.ItemFor(SectionAlwaysVisible)
			if first == nil || first.Identifier() != BarkeepIcon {
				t.Fatalf("always-visible section is %v, want %s", first, BarkeepIcon)
			}
			if pos := first.Position(); pos == nil || *pos != 0 {
				t.Errorf("always-visible position = %v, want 0", pos)
			}

			second := bar.ItemFor(SectionHidden)
			if second == nil || second.Identifier() != HiddenItem {
				t.Fatalf("hidden section is %v, want %s", second, HiddenItem)
			}
			if pos := second.Position(); pos == nil || *pos != 1 {
				t.Errorf("hidden position = %v, want 1", pos)
			}

			if tt.alwaysHidden {
				third := bar.ItemFor(SectionAlwaysHidden)
				if third == nil || third.Identifier() != AlwaysHiddenItem {
					t.Fatalf("always-hidden section is %v, want %s", third, AlwaysHiddenItem)
				}
				if pos := third.Position(); pos != nil {
					t.Errorf("always-hidden position = %v, want nil (trailing)", *pos)
				}
			}
		})
	}
}

func TestInitializeTwiceIsNoop(t *testing.T) {
	bar, _, _ := newTestBar(t, false)
	bar.Initialize()
	items := bar.Items()

	bar.Initialize()
	again := bar.Items()

	if len(again) != len(items) {
		t.Fatalf("second Initialize changed count: %d -> %d", len(items), len(again))
	}
	for i := range items {
		if items[i] != again[i] {
			t.Errorf("second Initialize replaced item %d", i)
		}
	}
}

func TestInitializeLoadsStoredStates(t *testing.T) {
	bar, _, store := newTestBar(t, false)
	store.records = map[string]Record{
		string(BarkeepIcon): {Identifier: string(BarkeepIcon), State: StateHideItems},
		string(HiddenItem):  {Identifier: string(HiddenItem), State: StateHideItems},
	}

	bar.Initialize()

	if !bar.IsSectionHidden(SectionAlwaysVisible) {
		t.Error("always-visible section not hidden after loading hideItems record")
	}
	if !bar.IsSectionHidden(SectionHidden) {
		t.Error("hidden section not hidden after loading hideItems record")
	}
}

func TestInitializeSubstitutesMalformedRecord(t *testing.T) {
	bar, _, _ := newTestBar(t, true)
	store := newMemStore()
	store.records = map[string]Record{
		string(BarkeepIcon):      {Identifier: string(BarkeepIcon), State: StateHideItems},
		string(HiddenItem):       {Identifier: string(HiddenItem), State: "vanishItems"},
		string(AlwaysHiddenItem): {Identifier: string(AlwaysHiddenItem), State: StateShowItems},
	}
	bar.store = store

	bar.Initialize()

	items := bar.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (malformed slot substituted, not dropped)", len(items))
	}

	byID := make(map[Identifier]*ControlItem)
	for _, item := range items {
		byID[item.Identifier()] = item
	}
	// The substitute carries the slot's own identifier and a default state.
	if item := byID[HiddenItem]; item == nil || item.State().Hidden {
		t.Error("malformed HiddenItem record was not substituted with a default")
	}
	// Valid records keep their decoded states.
	if item := byID[BarkeepIcon]; item == nil || !item.State().Hidden {
		t.Error("valid BarkeepIcon record lost its decoded state")
	}
	if item := byID[AlwaysHiddenItem]; item == nil || item.State().Hidden {
		t.Error("valid AlwaysHiddenItem record lost its decoded state")
	}
}

func TestInitializeDropsUnknownRecord(t *testing.T) {
	bar, _, _ := newTestBar(t, true)
	store := newMemStore()
	store.records = map[string]Record{
		// The unknown key sorts before every valid one; it must not
		// displace a valid record from its slot.
		"AardvarkItem":      {Identifier: "AardvarkItem", State: StateShowItems},
		string(BarkeepIcon): {Identifier: string(BarkeepIcon), State: StateHideItems},
		string(HiddenItem):  {Identifier: string(HiddenItem), State: StateShowItems},
	}
	bar.store = store

	bar.Initialize()

	items := bar.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3 (unknown record dropped, gap refilled)", len(items))
	}

	byID := make(map[Identifier]*ControlItem)
	for _, item := range items {
		byID[item.Identifier()] = item
	}
	if byID["AardvarkItem"] != nil {
		t.Error("unknown record survived the load")
	}
	if item := byID[BarkeepIcon]; item == nil || !item.State().Hidden {
		t.Error("valid BarkeepIcon record lost its decoded state")
	}
	if item := byID[HiddenItem]; item == nil || item.State().Hidden {
		t.Error("valid HiddenItem record lost its decoded state")
	}
	if byID[AlwaysHiddenItem] == nil {
		t.Error("gap left by the dropped record was not refilled")
	}
}

func TestInitializeStoreLoadError(t *testing.T) {
	bar, _, store := newTestBar(t, false)
	store.loadErr = errors.New("disk gone")

	bar.Initialize()

	if got := len(bar.Items()); got != 2 {
		t.Fatalf("got %d items after load error, want 2 synthesized", got)
	}
}

func TestValidateCountRepairs(t *testing.T) {
	tests := []struct {
		name         string
		alwaysHidden bool
		stored       []Identifier
		wantIDs      []Identifier
	}{
		{
			name:         "under count fills gap",
			alwaysHidden: false,
			stored:       []Identifier{BarkeepIcon},
			wantIDs:      []Identifier{BarkeepIcon, HiddenItem},
		},
		{
			name:         "under count with always hidden",
			alwaysHidden: true,
			stored:       []Identifier{BarkeepIcon},
			wantIDs:      []Identifier{BarkeepIcon, HiddenItem, AlwaysHiddenItem},
		},
		{
			name:         "over count truncates",
			alwaysHidden: false,
			stored:       []Identifier{BarkeepIcon, HiddenItem, AlwaysHiddenItem},
			wantIDs:      []Identifier{BarkeepIcon, HiddenItem},
		},
		{
			name:         "exact count untouched",
			alwaysHidden: true,
			stored:       []Identifier{BarkeepIcon, HiddenItem, AlwaysHiddenItem},
			wantIDs:      []Identifier{BarkeepIcon, HiddenItem, AlwaysHiddenItem},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, _, store := newTestBar(t, tt.alwaysHidden)
			for _, id := range tt.stored {
				store.records[string(id)] = Record{Identifier: string(id), State: StateShowItems}
			}

			bar.Initialize()

			items := bar.Items()
			if got := len(items); got != len(tt.wantIDs) {
				t.Fatalf("got %d items, want %d", got, len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got := items[i].Identifier(); got != id {
					t.Errorf("item %d = %s, want %s", i, got, id)
				}
			}
		})
	}
}

func TestEnablingAlwaysHiddenAppendsTrailingItem(t *testing.T) {
	bar, _, _ := newTestBar(t, false)
	bar.Initialize()

	bar.SetAlwaysHiddenEnabled(true)

	items := bar.Items()
	if len(items) != 3 {
		t.Fatalf("got %d items after enabling always-hidden, want 3", len(items))
	}

	third := bar.ItemFor(SectionAlwaysHidden)
	if third == nil || third.Identifier() != AlwaysHiddenItem {
		t.Fatalf("always-hidden section not occupied by %s", AlwaysHiddenItem)
	}
	if pos := third.Position(); pos != nil {
		t.Errorf("appended item has position %v, want nil (trailing)", *pos)
	}
	if third.State().Hidden {
		t.Error("appended item is hidden, want visible by default")
	}

	bar.SetAlwaysHiddenEnabled(false)
	if got := len(bar.Items()); got != 2 {
		t.Fatalf("got %d items after disabling always-hidden, want 2", got)
	}
}

func TestSectionOrderingFollowsPositions(t *testing.T) {
	bar, _, _ := newTestBar(t, true)
	bar.Initialize()

	// Drag the primary icon past the hidden item.
	bar.ItemFor(SectionAlwaysVisible).SetPosition(5)

	first := bar.ItemFor(SectionAlwaysVisible)
	if first.Identifier() != HiddenItem {
		t.Errorf("smallest position resolves to %s, want %s", first.Identifier(), HiddenItem)
	}
	second := bar.ItemFor(SectionHidden)
	if second.Identifier() != BarkeepIcon {
		t.Errorf("second position resolves to %s, want %s", second.Identifier(), BarkeepIcon)
	}
	third := bar.ItemFor(SectionAlwaysHidden)
	if third.Identifier() != AlwaysHiddenItem {
		t.Errorf("trailing item resolves to %s, want %s", third.Identifier(), AlwaysHiddenItem)
	}
}

func TestSectionFor(t *testing.T) {
	bar, _, _ := newTestBar(t, true)
	bar.Initialize()

	for rank := SectionAlwaysVisible; rank <= SectionAlwaysHidden; rank++ {
		item := bar.ItemFor(rank)
		if item == nil {
			t.Fatalf("no item for section %s", rank)
		}
		got, ok := bar.SectionFor(item)
		if !ok || got != rank {
			t.Errorf("SectionFor(%s item) = %v, %v; want %v", rank, got, ok, rank)
		}
	}

	stray, err := newControlItem(host.NewMemoryProvider(host.OpenPrefs("")), BarkeepIcon, nil, HidingState{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bar.SectionFor(stray); ok {
		t.Error("SectionFor resolved an item the bar does not own")
	}
}

func TestMissingSectionIsNeutral(t *testing.T) {
	bar, _, _ := newTestBar(t, false)
	bar.Initialize()

	if bar.ItemFor(SectionAlwaysHidden) != nil {
		t.Fatal("two-item bar has an always-hidden item")
	}
	if bar.IsSectionHidden(SectionAlwaysHidden) {
		t.Error("absent section reads as hidden, want false")
	}

	// Toggle on an absent section must not panic or mutate anything.
	before := bar.IsSectionHidden(SectionHidden)
	bar.Toggle(SectionAlwaysHidden)
	if bar.IsSectionHidden(SectionHidden) != before {
		t.Error("toggling an absent section changed another section")
	}
}

func TestCascade(t *testing.T) {
	type state struct{ alwaysVisible, hidden, alwaysHidden bool }

	tests := []struct {
		name string
		run  func(*StatusBar)
		want state
	}{
		{
			name: "hide hidden collapses always hidden too",
			run:  func(b *StatusBar) { b.Hide(SectionHidden) },
			want: state{alwaysVisible: true, hidden: true, alwaysHidden: true},
		},
		{
			name: "hide always visible collapses everything",
			run:  func(b *StatusBar) { b.Hide(SectionAlwaysVisible) },
			want: state{alwaysVisible: true, hidden: true, alwaysHidden: true},
		},
		{
			name: "hide always hidden touches only itself",
			run:  func(b *StatusBar) { b.Hide(SectionAlwaysHidden) },
			want: state{alwaysVisible: false, hidden: false, alwaysHidden: true},
		},
		{
			name: "show always hidden reopens the chain above",
			run: func(b *StatusBar) {
				b.Hide(SectionHidden)
				b.Show(SectionAlwaysHidden)
			},
			want: state{},
		},
		{
			name: "show hidden leaves always hidden collapsed",
			run: func(b *StatusBar) {
				b.Hide(SectionHidden)
				b.Show(SectionHidden)
			},
			want: state{alwaysHidden: true},
		},
		{
			name: "show is idempotent",
			run: func(b *StatusBar) {
				b.Show(SectionHidden)
				b.Show(SectionHidden)
			},
			want: state{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar, _, _ := newTestBar(t, true)
			bar.Initialize()

			tt.run(bar)

			got := state{
				alwaysVisible: bar.IsSectionHidden(SectionAlwaysVisible),
				hidden:        bar.IsSectionHidden(SectionHidden),
				alwaysHidden:  bar.IsSectionHidden(SectionAlwaysHidden),
			}
			if got != tt.want {
				t.Errorf("section hidden states = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	sections := []Section{SectionAlwaysVisible, SectionHidden, SectionAlwaysHidden}

	for _, section := range sections {
		t.Run(section.String(), func(t *testing.T) {
			bar, _, _ := newTestBar(t, true)
			bar.Initialize()

			before := bar.ItemFor(section).State()
			bar.Toggle(section)
			bar.Toggle(section)
			after := bar.ItemFor(section).State()

			if before != after {
				t.Errorf("state after double toggle = %+v, want %+v", after, before)
			}
		})
	}
}

func TestHiddenSectionBecomesSpacer(t *testing.T) {
	bar, provider, _ := newTestBar(t, false)
	bar.Initialize()

	bar.Hide(SectionHidden)

	icon := provider.Icon(string(HiddenItem))
	if icon == nil {
		t.Fatal("hidden item has no host icon")
	}
	if got := icon.Length(); got != expandedLength {
		t.Errorf("hidden control icon length = %v, want expanded %v", got, expandedLength)
	}
	if icon.Enabled() {
		t.Error("hidden control icon still interactive, want disabled")
	}
	if icon.Image() != nil {
		t.Error("hidden control icon still has an image, want image-less spacer")
	}

	bar.Show(SectionHidden)

	if got := icon.Length(); got != standardLength {
		t.Errorf("shown control icon length = %v, want standard %v", got, standardLength)
	}
	if !icon.Enabled() {
		t.Error("shown control icon not interactive")
	}
	if icon.Image() == nil {
		t.Error("shown control icon has no glyph")
	}
}

func TestSaveDedup(t *testing.T) {
	bar, _, store := newTestBar(t, false)
	bar.Initialize()

	if err := bar.Save(); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("first save wrote %d times, want 1", store.saves)
	}

	if err := bar.Save(); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("unchanged save wrote again (%d writes), want dedup", store.saves)
	}
	if bar.NeedsSave() {
		t.Error("needsSave still set after deduped save")
	}

	bar.Hide(SectionHidden)
	if err := bar.Save(); err != nil {
		t.Fatalf("post-change save: %v", err)
	}
	if store.saves != 2 {
		t.Errorf("changed save wrote %d times total, want 2", store.saves)
	}
}

func TestCleanLoadIsNotRewritten(t *testing.T) {
	bar, _, store := newTestBar(t, false)
	store.records = map[string]Record{
		string(BarkeepIcon): {Identifier: string(BarkeepIcon), State: StateShowItems},
		string(HiddenItem):  {Identifier: string(HiddenItem), State: StateHideItems},
	}

	bar.Initialize()

	if err := bar.Save(); err != nil {
		t.Fatalf("save after clean load: %v", err)
	}
	if store.saves != 0 {
		t.Errorf("clean unmodified load was rewritten (%d writes), want 0", store.saves)
	}
	if bar.NeedsSave() {
		t.Error("needsSave still set after baseline-matching save")
	}
}

func TestSaveFailureKeepsDirtyFlag(t *testing.T) {
	bar, _, store := newTestBar(t, false)
	bar.Initialize()

	store.saveErr = errors.New("disk full")
	if err := bar.Save(); err == nil {
		t.Fatal("save succeeded against a failing store")
	}
	if !bar.NeedsSave() {
		t.Error("needsSave cleared after failed save; retry would be skipped")
	}

	store.saveErr = nil
	if err := bar.Save(); err != nil {
		t.Fatalf("retry save: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("retry wrote %d times, want 1", store.saves)
	}
}

func TestSavePersistsAllItems(t *testing.T) {
	bar, _, store := newTestBar(t, true)
	bar.Initialize()
	bar.Hide(SectionAlwaysHidden)

	if err := bar.Save(); err != nil {
		t.Fatal(err)
	}

	if len(store.records) != 3 {
		t.Fatalf("store holds %d records, want 3", len(store.records))
	}
	if got := store.records[string(AlwaysHiddenItem)].State; got != StateHideItems {
		t.Errorf("always-hidden record state = %q, want %q", got, StateHideItems)
	}
	if got := store.records[string(BarkeepIcon)].State; got != StateShowItems {
		t.Errorf("primary record state = %q, want %q", got, StateShowItems)
	}
}

func TestCloseRemovesIcons(t *testing.T) {
	bar, provider, _ := newTestBar(t, false)
	bar.Initialize()

	icon := provider.Icon(string(BarkeepIcon))
	if icon == nil {
		t.Fatal("no host icon for primary item")
	}

	bar.Close()

	if !icon.Removed() {
		t.Error("host icon not removed on Close")
	}
	if len(bar.Items()) != 0 {
		t.Error("items remain after Close")
	}
}
