package models

// SectionsConfig holds settings for the visibility sections.
type SectionsConfig struct {
	// AlwaysHiddenEnabled controls whether the third, always-hidden
	// section exists. The status bar keeps two control items when this is
	// off and three when it is on.
	AlwaysHiddenEnabled bool `yaml:"always_hidden_enabled"`
}

// AppearanceConfig holds icon-selection and divider preferences. These are
// read-only inputs to the status bar when it refreshes icon images.
type AppearanceConfig struct {
	IconStyle    string `yaml:"icon_style"` // "chevron" | "dot"
	ShowDividers bool   `yaml:"show_dividers"`
}

// Settings represents global application settings.
// This corresponds to ~/.barkeep/settings.yaml.
type Settings struct {
	Version    int              `yaml:"version"`
	Sections   SectionsConfig   `yaml:"sections"`
	Appearance AppearanceConfig `yaml:"appearance"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Sections: SectionsConfig{
			AlwaysHiddenEnabled: false,
		},
		Appearance: AppearanceConfig{
			IconStyle:    "chevron",
			ShowDividers: true,
		},
	}
}
