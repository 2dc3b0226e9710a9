// Package styles holds the theme-dependent lipgloss styles shared by the
// report tables, the progress indicators and the prompts.
package styles

import (
	"hash/fnv"
	"image/color"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
)

// Colors and styles of the active theme. Init replaces them; until then
// they follow DefaultTheme.
var (
	Primary, Accent, Success, Error color.Color
	Muted, Normal, Info, Warning    color.Color

	PrimaryStyle, AccentStyle, SuccessStyle, ErrorStyle lipgloss.Style
	MutedStyle, NormalStyle, InfoStyle, WarningStyle    lipgloss.Style

	// HighlightStyle marks the selected picker entry.
	HighlightStyle lipgloss.Style
)

func init() {
	applyTheme(DefaultTheme)
}

// profilePalette colors profile names. Indices into the 256 color table stay
// readable on dark and light backgrounds.
var profilePalette = []string{"39", "170", "214", "78", "141", "208", "43", "204"}

// ProfileStyle returns a stable color for a profile name, so "debug" looks
// the same in every table of a run. The none theme disables it.
func ProfileStyle(profile string) lipgloss.Style {
	if _, none := Primary.(lipgloss.NoColor); none {
		return lipgloss.NewStyle()
	}
	h := fnv.New32a()
	h.Write([]byte(profile))
	return lipgloss.NewStyle().Foreground(lipgloss.Color(profilePalette[h.Sum32()%uint32(len(profilePalette))]))
}

// ColorEnabled reports whether f can render colors. Pipes, dumb terminals
// and NO_COLOR all disable them.
func ColorEnabled(f *os.File) bool {
	switch colorprofile.Detect(f, os.Environ()) {
	case colorprofile.NoTTY, colorprofile.Ascii:
		return false
	}
	return true
}
