package statusbar

import (
	"testing"
	"time"

	"github.com/barkeep-io/barkeep/internal/host"
	"github.com/barkeep-io/barkeep/internal/models"
)

func newTestPipeline(t *testing.T) (*StatusBar, *UpdatePipeline, *host.MemoryProvider, *memStore) {
	t.Helper()

	provider := host.NewMemoryProvider(host.OpenPrefs(""))
	store := newMemStore()
	bar := New(provider, store, Options{
		AlwaysHiddenEnabled: false,
		Appearance:          models.NewSettings().Appearance,
	})
	bar.Initialize()

	pipeline := newUpdatePipeline(bar, 20*time.Millisecond, 50*time.Millisecond)
	t.Cleanup(bar.Close)
	return bar, pipeline, provider, store
}

func TestPipelineCoalescesPositionBursts(t *testing.T) {
	bar, _, provider, _ := newTestPipeline(t)

	item := bar.ItemFor(SectionAlwaysVisible)
	icon := provider.Icon(string(item.Identifier()))
	baseline := icon.ImageUpdates()

	// A drag burst: many position changes inside one coalescing window.
	for i := 0; i < 10; i++ {
		item.SetPosition(float64(10 + i))
	}

	time.Sleep(80 * time.Millisecond)

	// One trailing-edge refresh for the burst, not one per change.
	if got := icon.ImageUpdates() - baseline; got != 1 {
		t.Errorf("icon refreshed %d times for one burst, want 1", got)
	}

	// The refresh saw the final position.
	if pos := item.Position(); pos == nil || *pos != 19 {
		t.Errorf("position after flush = %v, want 19", pos)
	}
}

func TestPipelineDebouncesSaves(t *testing.T) {
	bar, _, _, store := newTestPipeline(t)

	// Rapid interactive changes; each restarts the debounce timer.
	bar.Hide(SectionHidden)
	time.Sleep(10 * time.Millisecond)
	bar.Show(SectionHidden)
	time.Sleep(10 * time.Millisecond)
	bar.Hide(SectionHidden)

	if store.saves != 0 {
		t.Fatalf("save ran during the burst (%d writes), want deferred", store.saves)
	}

	time.Sleep(150 * time.Millisecond)

	if store.saves != 1 {
		t.Errorf("got %d writes after quiet period, want exactly 1", store.saves)
	}
	if got := store.records[string(HiddenItem)].State; got != StateHideItems {
		t.Errorf("persisted state = %q, want final state %q", got, StateHideItems)
	}
}

func TestPipelineRewireCancelsPendingTimers(t *testing.T) {
	bar, _, provider, _ := newTestPipeline(t)

	item := bar.ItemFor(SectionAlwaysVisible)
	item.SetPosition(42)
	time.Sleep(5 * time.Millisecond) // let dispatch arm the timer

	// Replacing the collection before the coalescing window elapses must
	// cancel the pending flush; a timer against a replaced collection
	// never fires.
	bar.SetAlwaysHiddenEnabled(true)

	icon := provider.Icon(string(AlwaysHiddenItem))
	if icon == nil {
		t.Fatal("no icon for appended always-hidden item")
	}
	baseline := icon.ImageUpdates()

	time.Sleep(40 * time.Millisecond)

	if got := icon.ImageUpdates(); got != baseline {
		t.Errorf("stale position flush fired after rewire (%d refreshes)", got-baseline)
	}
}

func TestPipelineStopPreventsLateSaves(t *testing.T) {
	bar, _, _, store := newTestPipeline(t)

	bar.Hide(SectionHidden)
	bar.Close()

	time.Sleep(100 * time.Millisecond)

	if store.saves != 0 {
		t.Errorf("save fired after Close (%d writes), want 0", store.saves)
	}
}

func TestPipelineDirtyFlagClearedBeforeTimerFires(t *testing.T) {
	bar, _, _, store := newTestPipeline(t)

	bar.Hide(SectionHidden)
	// An explicit save during the debounce window clears the flag...
	if err := bar.Save(); err != nil {
		t.Fatal(err)
	}
	if store.saves != 1 {
		t.Fatalf("explicit save wrote %d times, want 1", store.saves)
	}

	// ...so the debounced save finds nothing to do.
	time.Sleep(120 * time.Millisecond)
	if store.saves != 1 {
		t.Errorf("debounced save wrote again (%d writes), want no-op on clean flag", store.saves)
	}
}
