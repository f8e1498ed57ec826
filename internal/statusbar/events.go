package statusbar

// EventKind discriminates control item events.
type EventKind int

// Event kinds.
const (
	// EventPositionChanged fires when an item's ordinal position moves.
	// The pipeline coalesces bursts of these into one ordering refresh.
	EventPositionChanged EventKind = iota
)

// Event is a typed notification emitted by a control item to its owning
// collection's pipeline. Items are wired to a sink channel while owned and
// emit nothing once removed from the collection.
type Event struct {
	Kind       EventKind
	Identifier Identifier
}
