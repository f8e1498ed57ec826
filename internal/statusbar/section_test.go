package statusbar

import "testing"

func TestSectionStringRoundTrip(t *testing.T) {
	sections := []Section{SectionAlwaysVisible, SectionHidden, SectionAlwaysHidden}

	for _, section := range sections {
		got, err := ParseSection(section.String())
		if err != nil {
			t.Errorf("ParseSection(%q): %v", section.String(), err)
			continue
		}
		if got != section {
			t.Errorf("ParseSection(%q) = %v, want %v", section.String(), got, section)
		}
	}
}

func TestParseSectionUnknown(t *testing.T) {
	if _, err := ParseSection("sometimes-visible"); err == nil {
		t.Error("ParseSection accepted an unknown name")
	}
}
