// Package style holds the colors and glyphs used by the pretty logger and
// the cache listing.
package style

import "github.com/charmbracelet/lipgloss"

var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Level glyphs.
const (
	Cross   = "✗"
	Warning = "!"
)

var (
	// Header styles table headers.
	Header = lipgloss.NewStyle().Bold(true).Foreground(Iris)
	// Muted styles checksums, paths and log attributes.
	Muted = lipgloss.NewStyle().Foreground(Slate)
)
