// Package style holds the colors and markers shared by log output and reports.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Roles map report elements to palette colors.
var (
	Compatible   = Green
	Incompatible = Red
	Installed    = Green
	Missing      = Yellow
	Selected     = Iris
	Muted        = Slate
	Attention    = Yellow
)

// Markers.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
	Circle  = "○"
	Plus    = "+"
	Minus   = "-"
)
