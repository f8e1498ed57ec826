package statusbar

import (
	"log"
	"sort"
	"sync"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/barkeep-io/barkeep/internal/host"
	"github.com/barkeep-io/barkeep/internal/models"
)

// StatusBar owns the ordered collection of control items, maps them onto
// sections, enforces the count invariant, implements the show/hide cascade,
// and drives persistence. There is exactly one per daemon, created by the
// composition root and passed to collaborators; nothing here is global.
//
// All mutation happens under the bar's mutex. Timer callbacks from the
// pipeline re-enter through exported methods and observe the latest state at
// fire time, never an intermediate one.
type StatusBar struct {
	mu       sync.Mutex
	provider host.Provider
	store    Store
	items    []*ControlItem

	alwaysHiddenEnabled bool
	appearance          models.AppearanceConfig

	needsSave   bool
	lastSaved   [32]byte
	hasBaseline bool

	pipeline *UpdatePipeline
}

// Options configures a StatusBar.
type Options struct {
	AlwaysHiddenEnabled bool
	Appearance          models.AppearanceConfig
}

// New creates a StatusBar. Call Initialize to populate it.
func New(provider host.Provider, store Store, opts Options) *StatusBar {
	return &StatusBar{
		provider:            provider,
		store:               store,
		alwaysHiddenEnabled: opts.AlwaysHiddenEnabled,
		appearance:          opts.Appearance,
	}
}

// expectedCount is the valid collection size under the current settings.
func (b *StatusBar) expectedCount() int {
	if b.alwaysHiddenEnabled {
		return 3
	}
	return 2
}

// Initialize loads control items from the persisted store, synthesizing a
// default for any record that fails to decode. It never fails wholesale: a
// broken store yields a freshly synthesized collection. Calling Initialize
// on a non-empty bar is a no-op.
func (b *StatusBar) Initialize() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.items) > 0 {
		return
	}

	records, err := b.store.Load()
	if err != nil {
		log.Printf("[statusbar] failed to load section store: %v", err)
		records = nil
	}

	// Slots follow the identifier enumeration, not store-key order, so
	// truncation and substitution always act on the right identifier.
	clean := true
	items := make([]*ControlItem, 0, len(identifierOrder))
	for slot, id := range identifierOrder {
		record, ok := records[string(id)]
		if !ok {
			// Missing slots are left to count repair.
			continue
		}

		var item *ControlItem
		rid, state, err := decodeRecord(string(id), record)
		if err == nil {
			// A decoded item adopts the position the host remembers
			// for it; the record itself carries none.
			item, err = newControlItem(b.provider, rid, nil, state)
		} else {
			// Substitute a synthesized default with this slot's own
			// identifier and a default position equal to its index;
			// the rest of the load proceeds.
			log.Printf("[statusbar] %v; substituting default", err)
			clean = false
			position := float64(slot)
			item, err = newControlItem(b.provider, id, &position, HidingState{})
		}
		if err != nil {
			log.Printf("[statusbar] failed to create item for %s: %v", id, err)
			clean = false
			continue
		}
		items = append(items, item)
	}

	// Keys that match no known identifier cannot round-trip. They are
	// dropped here; count repair fills the gap and the next save rewrites
	// the store without them.
	for key := range records {
		if !Identifier(key).valid() {
			log.Printf("[statusbar] dropping unknown record %q", key)
			clean = false
		}
	}

	// Capture the content hash of what the store round-trips to before
	// any repair touches the collection; a later save then skips the
	// write exactly when nothing effectively changed since this load.
	// Substitutions and repairs leave the baseline unset so the healed
	// collection gets persisted.
	if clean {
		if hash, err := contentHash(sortItems(items)); err == nil {
			b.lastSaved = hash
			b.hasBaseline = true
		}
	}

	b.setItemsLocked(items)
}

// setItemsLocked replaces the collection. Outgoing items are unwired before
// the swap; the new items are wired to the pipeline only once the count
// validates. Replacement always rewires pipeline subscriptions and marks the
// collection dirty, in that fixed order.
func (b *StatusBar) setItemsLocked(items []*ControlItem) {
	for _, item := range b.items {
		item.setSink(nil)
	}
	b.items = items

	if b.validateCountLocked() {
		var sink chan<- Event
		if b.pipeline != nil {
			sink = b.pipeline.events
		}
		for _, item := range b.items {
			item.setSink(sink)
		}
	}

	if b.pipeline != nil {
		b.pipeline.rewire()
	}
	b.markDirtyLocked()
}

// validateCountLocked checks the collection against the expected count and
// repairs it if needed. It reports whether the collection was already valid;
// any repair re-enters setItemsLocked with the corrected collection.
func (b *StatusBar) validateCountLocked() bool {
	expected := b.expectedCount()

	switch {
	case len(b.items) == 0:
		items := b.synthesizeDefaultsLocked()
		if len(items) == 0 {
			return true // host refused every icon; nothing more to do
		}
		b.setItemsLocked(items)
		return false

	case len(b.items) == expected:
		return true

	case len(b.items) < expected:
		items := b.fillMissingLocked(expected)
		if len(items) == len(b.items) {
			return true
		}
		b.setItemsLocked(items)
		return false

	default:
		// Truncate by storage order, not sorted order.
		kept := b.items[:expected]
		dropped := b.items[expected:]
		for _, item := range dropped {
			item.setSink(nil)
			item.remove()
		}
		b.setItemsLocked(kept)
		return false
	}
}

// synthesizeDefaultsLocked builds the default collection: always-visible at
// position 0, hidden at position 1, and, when enabled, always-hidden with no
// explicit position so the host places it at the trailing end.
func (b *StatusBar) synthesizeDefaultsLocked() []*ControlItem {
	var items []*ControlItem

	positions := []float64{0, 1}
	for i, id := range []Identifier{BarkeepIcon, HiddenItem} {
		item, err := newControlItem(b.provider, id, &positions[i], HidingState{})
		if err != nil {
			log.Printf("[statusbar] failed to create item %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}

	if b.alwaysHiddenEnabled {
		item, err := newControlItem(b.provider, AlwaysHiddenItem, nil, HidingState{})
		if err != nil {
			log.Printf("[statusbar] failed to create item %s: %v", AlwaysHiddenItem, err)
		} else {
			items = append(items, item)
		}
	}
	return items
}

// fillMissingLocked appends synthesized items for identifiers the collection
// lacks. Gap fillers get ascending integer positions; a newly added
// always-hidden item goes last with no explicit position.
func (b *StatusBar) fillMissingLocked(expected int) []*ControlItem {
	present := make(map[Identifier]bool, len(b.items))
	for _, item := range b.items {
		present[item.identifier] = true
	}

	items := b.items
	next := float64(len(items))
	for _, id := range identifierOrder[:expected] {
		if present[id] {
			continue
		}

		var position *float64
		if id != AlwaysHiddenItem {
			p := next
			position = &p
			next++
		}

		item, err := newControlItem(b.provider, id, position, HidingState{})
		if err != nil {
			log.Printf("[statusbar] failed to create item %s: %v", id, err)
			continue
		}
		items = append(items, item)
	}
	return items
}

// sortItems returns the items ordered by position; items without a position
// sort last.
func sortItems(items []*ControlItem) []*ControlItem {
	sorted := make([]*ControlItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Position(), sorted[j].Position()
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
	return sorted
}

func (b *StatusBar) sortedLocked() []*ControlItem {
	return sortItems(b.items)
}

// Items returns a copy of the collection in storage order.
func (b *StatusBar) Items() []*ControlItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]*ControlItem, len(b.items))
	copy(items, b.items)
	return items
}

// SectionFor resolves the section a control item currently occupies.
func (b *StatusBar) SectionFor(item *ControlItem) (Section, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for rank, candidate := range b.sortedLocked() {
		if candidate == item {
			return Section(rank), true
		}
	}
	return 0, false
}

// ItemFor returns the control item occupying a section, or nil when the
// section's rank exceeds the current count.
func (b *StatusBar) ItemFor(section Section) *ControlItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.itemForLocked(section)
}

func (b *StatusBar) itemForLocked(section Section) *ControlItem {
	sorted := b.sortedLocked()
	rank := int(section)
	if rank < 0 || rank >= len(sorted) {
		return nil
	}
	return sorted[rank]
}

// IsSectionHidden reports whether a section's control item is in the hidden
// state. A section with no item reads as not hidden.
func (b *StatusBar) IsSectionHidden(section Section) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	item := b.itemForLocked(section)
	if item == nil {
		return false
	}
	return item.State().Hidden
}

// Show makes a section's icons visible. Showing any section re-opens
// everything above it in the always-visible → hidden → always-hidden chain.
func (b *StatusBar) Show(section Section) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.showLocked(section)
}

func (b *StatusBar) showLocked(section Section) {
	switch section {
	case SectionAlwaysVisible, SectionHidden:
		b.applyLocked(SectionAlwaysVisible, HidingState{})
		b.applyLocked(SectionHidden, HidingState{})
	case SectionAlwaysHidden:
		b.showLocked(SectionHidden)
		b.applyLocked(SectionAlwaysHidden, HidingState{})
	}
}

// Hide collapses a section. Hiding any section collapses everything below
// it in the chain, so the three groups stay in a total order of increasing
// hiddenness.
func (b *StatusBar) Hide(section Section) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hideLocked(section)
}

func (b *StatusBar) hideLocked(section Section) {
	switch section {
	case SectionAlwaysVisible, SectionHidden:
		b.applyLocked(SectionAlwaysVisible, HidingState{Hidden: true})
		b.applyLocked(SectionHidden, HidingState{Hidden: true, Expanded: true})
		b.hideLocked(SectionAlwaysHidden)
	case SectionAlwaysHidden:
		b.applyLocked(SectionAlwaysHidden, HidingState{Hidden: true, Expanded: true})
	}
}

// Toggle shows a hidden section or hides a visible one. A section with no
// item is a no-op.
func (b *StatusBar) Toggle(section Section) {
	b.mu.Lock()
	item := b.itemForLocked(section)
	if item == nil {
		b.mu.Unlock()
		return
	}
	hidden := item.State().Hidden
	if hidden {
		b.showLocked(section)
	} else {
		b.hideLocked(section)
	}
	b.mu.Unlock()
}

// applyLocked pushes a state onto a section's item and marks the collection
// dirty; a state change may imply a persisted-state change.
func (b *StatusBar) applyLocked(section Section, state HidingState) {
	item := b.itemForLocked(section)
	if item == nil {
		return
	}
	item.applyState(section, state, b.appearance)
	b.markDirtyLocked()
}

// RefreshOrdering re-resolves every item's section from the latest positions
// and refreshes its icon accordingly. The pipeline calls this once per
// coalescing window after position changes.
func (b *StatusBar) RefreshOrdering() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for rank, item := range b.sortedLocked() {
		item.applyState(Section(rank), item.State(), b.appearance)
	}
	b.markDirtyLocked()
}

// SetAlwaysHiddenEnabled flips the third section on or off and revalidates
// the collection against the new expected count.
func (b *StatusBar) SetAlwaysHiddenEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.alwaysHiddenEnabled == enabled {
		return
	}
	b.alwaysHiddenEnabled = enabled
	b.setItemsLocked(b.items)
}

// AlwaysHiddenEnabled reports whether the third section is enabled.
func (b *StatusBar) AlwaysHiddenEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alwaysHiddenEnabled
}

// SetAppearance replaces the icon appearance preferences and refreshes all
// icons.
func (b *StatusBar) SetAppearance(appearance models.AppearanceConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.appearance == appearance {
		return
	}
	b.appearance = appearance
	for rank, item := range b.sortedLocked() {
		item.applyState(Section(rank), item.State(), b.appearance)
	}
	b.markDirtyLocked()
}

// NeedsSave reports whether the collection has unsaved changes.
func (b *StatusBar) NeedsSave() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.needsSave
}

func (b *StatusBar) markDirtyLocked() {
	b.needsSave = true
	if b.pipeline != nil {
		b.pipeline.saveNeeded()
	}
}

// contentHash fingerprints an ordered collection by encoding every item and
// hashing the result.
func contentHash(sorted []*ControlItem) ([32]byte, error) {
	records := make([]Record, 0, len(sorted))
	for _, item := range sorted {
		record, err := encodeItem(item)
		if err != nil {
			return [32]byte{}, err
		}
		records = append(records, record)
	}

	encoded, err := yaml.Marshal(records)
	if err != nil {
		return [32]byte{}, err
	}
	return blake3.Sum256(encoded), nil
}

// Save persists the collection. A content hash over the encoded, ordered
// collection detects "nothing effectively changed": a matching hash clears
// the dirty flag without touching the store. Encoding failures abort the
// write and leave the previously persisted state intact.
func (b *StatusBar) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saveLocked()
}

// SaveIfNeeded persists the collection only when the dirty flag is still
// set; the pipeline's debounce timer lands here.
func (b *StatusBar) SaveIfNeeded() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.needsSave {
		return nil
	}
	return b.saveLocked()
}

func (b *StatusBar) saveLocked() error {
	hash, err := contentHash(b.sortedLocked())
	if err != nil {
		log.Printf("[statusbar] failed to encode items: %v", err)
		return err
	}
	if b.hasBaseline && hash == b.lastSaved {
		b.needsSave = false
		return nil
	}

	merged := make(map[string]Record, len(b.items))
	for _, item := range b.sortedLocked() {
		record, err := encodeItem(item)
		if err != nil {
			log.Printf("[statusbar] failed to encode items: %v", err)
			return err
		}
		merged[record.Identifier] = record // last writer wins per key
	}

	if err := b.store.Save(merged); err != nil {
		// Leave needsSave set so a later attempt retries.
		log.Printf("[statusbar] failed to write section store: %v", err)
		return err
	}

	b.lastSaved = hash
	b.hasBaseline = true
	b.needsSave = false
	return nil
}

// Close tears the bar down: the pipeline is stopped and every item's host
// icon removed. Pending timers for the old collection never fire afterwards.
func (b *StatusBar) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pipeline != nil {
		b.pipeline.stop()
		b.pipeline = nil
	}
	for _, item := range b.items {
		item.setSink(nil)
		item.remove()
	}
	b.items = nil
}

func (b *StatusBar) attach(p *UpdatePipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pipeline = p
	for _, item := range b.items {
		item.setSink(p.events)
	}
}
