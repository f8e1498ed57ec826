package statusbar

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/barkeep-io/barkeep/internal/host"
)

func TestRecordRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		id    Identifier
		state HidingState
	}{
		{name: "visible", id: BarkeepIcon, state: HidingState{}},
		{name: "hidden", id: HiddenItem, state: HidingState{Hidden: true}},
		{name: "hidden expanded collapses to hidden", id: AlwaysHiddenItem, state: HidingState{Hidden: true, Expanded: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := host.NewMemoryProvider(host.OpenPrefs(""))
			item, err := newControlItem(provider, tt.id, nil, tt.state)
			if err != nil {
				t.Fatal(err)
			}

			record, err := encodeItem(item)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}

			id, state, err := decodeRecord(record.Identifier, record)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if id != tt.id {
				t.Errorf("identifier = %s, want %s", id, tt.id)
			}
			if state.Hidden != tt.state.Hidden {
				t.Errorf("hidden = %v, want %v", state.Hidden, tt.state.Hidden)
			}
		})
	}
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		rec  Record
	}{
		{
			name: "unknown identifier",
			key:  "MysteryItem",
			rec:  Record{Identifier: "MysteryItem", State: StateShowItems},
		},
		{
			name: "identifier key mismatch",
			key:  string(BarkeepIcon),
			rec:  Record{Identifier: string(HiddenItem), State: StateShowItems},
		},
		{
			name: "unknown state",
			key:  string(BarkeepIcon),
			rec:  Record{Identifier: string(BarkeepIcon), State: "maybe"},
		},
		{
			name: "empty record",
			key:  string(HiddenItem),
			rec:  Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decodeRecord(tt.key, tt.rec)
			if err == nil {
				t.Fatal("decode succeeded, want error")
			}

			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("error %T is not a *DecodeError", err)
			}
		})
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sections.yaml")
	store := NewFileStore(path)

	// A missing file loads as empty, not as an error.
	records, err := store.Load()
	if err != nil {
		t.Fatalf("load missing file: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("missing file yielded %d records, want 0", len(records))
	}

	want := map[string]Record{
		string(BarkeepIcon): {Identifier: string(BarkeepIcon), State: StateShowItems},
		string(HiddenItem):  {Identifier: string(HiddenItem), State: StateHideItems},
	}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for key, rec := range want {
		if got[key] != rec {
			t.Errorf("record[%s] = %+v, want %+v", key, got[key], rec)
		}
	}
}
