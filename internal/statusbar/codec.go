package statusbar

import (
	"fmt"

	"github.com/barkeep-io/barkeep/internal/config"
)

// Wire values for a control item's hiding state. Position is deliberately
// not part of the record; the host's own preference store tracks it.
const (
	StateShowItems = "showItems"
	StateHideItems = "hideItems"
)

// Record is the serializable form of one control item.
type Record struct {
	Identifier string `yaml:"identifier"`
	State      string `yaml:"state"`
}

// DecodeError describes a single record that could not be decoded. Loading
// catches it per item and substitutes a synthesized default; it never aborts
// the whole load.
type DecodeError struct {
	Key    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode record %q: %s", e.Key, e.Reason)
}

// encodeItem converts a control item to its serializable record.
func encodeItem(item *ControlItem) (Record, error) {
	if !item.identifier.valid() {
		return Record{}, fmt.Errorf("cannot encode item with identifier %q", item.identifier)
	}

	state := StateShowItems
	if item.state.Hidden {
		state = StateHideItems
	}
	return Record{Identifier: string(item.identifier), State: state}, nil
}

// decodeRecord converts a stored record back to an identifier and hiding
// state. key is the store key the record was found under.
func decodeRecord(key string, rec Record) (Identifier, HidingState, error) {
	id := Identifier(rec.Identifier)
	if !id.valid() {
		return "", HidingState{}, &DecodeError{Key: key, Reason: fmt.Sprintf("unknown identifier %q", rec.Identifier)}
	}
	if rec.Identifier != key {
		return "", HidingState{}, &DecodeError{Key: key, Reason: fmt.Sprintf("identifier %q does not match key", rec.Identifier)}
	}

	switch rec.State {
	case StateShowItems:
		return id, HidingState{}, nil
	case StateHideItems:
		return id, HidingState{Hidden: true}, nil
	default:
		return "", HidingState{}, &DecodeError{Key: key, Reason: fmt.Sprintf("unknown state %q", rec.State)}
	}
}

// Store persists the identifier-to-record mapping.
type Store interface {
	// Load reads the whole mapping. A missing store yields an empty map.
	Load() (map[string]Record, error)

	// Save replaces the whole mapping atomically.
	Save(records map[string]Record) error
}

// FileStore is a YAML-file Store.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the YAML file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// OpenGlobalStore opens the section store at its default location,
// ~/.barkeep/sections.yaml.
func OpenGlobalStore() (*FileStore, error) {
	path, err := config.GlobalSectionsFile()
	if err != nil {
		return nil, err
	}
	return NewFileStore(path), nil
}

// Load reads the whole mapping from disk.
func (s *FileStore) Load() (map[string]Record, error) {
	if !config.FileExists(s.path) {
		return map[string]Record{}, nil
	}

	records := make(map[string]Record)
	if err := config.LoadYAML(s.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save writes the whole mapping atomically.
func (s *FileStore) Save(records map[string]Record) error {
	return config.SaveYAML(s.path, records)
}
