// Package statusbar maintains the ordered collection of status-area control
// items, maps them onto visibility sections, and drives persistence.
package statusbar

import "fmt"

// Section identifies one of the three fixed visibility groups, ordered by
// increasing hiddenness. A section's rank equals the index of its control
// item in the position-sorted view of the collection; membership is never
// stored on the item itself.
type Section int

// Section ranks.
const (
	SectionAlwaysVisible Section = iota
	SectionHidden
	SectionAlwaysHidden
)

// sectionCount is the number of defined sections.
const sectionCount = 3

// String returns the section name used in logs, the CLI, and the control API.
func (s Section) String() string {
	switch s {
	case SectionAlwaysVisible:
		return "always-visible"
	case SectionHidden:
		return "hidden"
	case SectionAlwaysHidden:
		return "always-hidden"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// ParseSection converts a section name back to a Section.
func ParseSection(name string) (Section, error) {
	switch name {
	case "always-visible":
		return SectionAlwaysVisible, nil
	case "hidden":
		return SectionHidden, nil
	case "always-hidden":
		return SectionAlwaysHidden, nil
	default:
		return 0, fmt.Errorf("unknown section %q", name)
	}
}
