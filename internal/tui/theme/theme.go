// Package theme provides color themes for the calendar view.
package theme

import (
	"embed"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed embedded/*.toml
var embeddedThemes embed.FS

// DefaultName is the theme used when none is configured.
const DefaultName = "frappe"

// Theme holds all colors for a theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`           // Base background
	BgHighlight string `toml:"bg_highlight"` // Header rows, hovered cells
	BgSelection string `toml:"bg_selection"` // Cursor
	Fg          string `toml:"fg"`           // Primary foreground
	FgMuted     string `toml:"fg_muted"`     // Past hours
	Accent      string `toml:"accent"`       // Title, borders
	Available   string `toml:"available"`    // Persisted free slots
	Booked      string `toml:"booked"`       // Slots held by an appointment
	Marked      string `toml:"marked"`       // Pending selection
	Warning     string `toml:"warning"`      // Floor warnings, errors
}

// Load loads a theme by name from embedded files.
// Unknown names fall back to the default theme.
func Load(name string) (*Theme, error) {
	if name == "" {
		name = DefaultName
	}
	name = strings.ToLower(name)

	data, err := embeddedThemes.ReadFile("embedded/" + name + ".toml")
	if err != nil {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("loading theme %q: %w", name, err)
	}

	var t Theme
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Marked = coalesce(t.Marked, t.Accent)
	t.Warning = coalesce(t.Warning, t.Booked)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the names of the bundled themes.
func Available() []string {
	return []string{"mocha", "macchiato", "frappe", "latte"}
}

// IsAvailable reports whether a theme name is bundled.
func IsAvailable(name string) bool {
	name = strings.ToLower(name)
	for _, themeName := range Available() {
		if themeName == name {
			return true
		}
	}
	return false
}
