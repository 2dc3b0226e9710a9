package styles

import (
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Symbols holds the icon/symbol set based on nerdfont configuration
type Symbols struct {
	InUse   string // traced artifact the build needs
	Remove  string // removal candidate
	Stale   string // stale incremental session
	Failed  string // failed removal
	Profile string // profile heading
}

// Default symbols (no special font needed)
var defaultSymbols = Symbols{
	InUse:   "●",
	Remove:  "✕",
	Stale:   "◌",
	Failed:  "✗",
	Profile: "▸",
}

// Nerd font symbols
var nerdfontSymbols = Symbols{
	InUse:   "\U000f03d7", // nf-md-package_variant_closed
	Remove:  "\uf014",     // nf-fa-trash_o
	Stale:   "\uf017",     // nf-fa-clock_o
	Failed:  "\uf00d",     // nf-fa-times
	Profile: "\uf07b",     // nf-fa-folder
}

// useNerdfont tracks whether nerd font symbols are enabled
var useNerdfont bool

// currentSymbols holds the active symbol set
var currentSymbols = defaultSymbols

// SetNerdfont enables or disables nerd font symbols
func SetNerdfont(enabled bool) {
	useNerdfont = enabled
	if enabled {
		currentSymbols = nerdfontSymbols
	} else {
		currentSymbols = defaultSymbols
	}
}

// NerdfontEnabled returns whether nerd font symbols are enabled
func NerdfontEnabled() bool {
	return useNerdfont
}

// CurrentSymbols returns the current symbol set
func CurrentSymbols() Symbols {
	return currentSymbols
}

// Kind classifies a report row.
type Kind int

const (
	KindInUse Kind = iota
	KindRemove
	KindStale
	KindFailed
)

// KindSymbol returns the colored symbol for k.
func KindSymbol(k Kind) string {
	switch k {
	case KindInUse:
		return SuccessStyle.Render(currentSymbols.InUse)
	case KindRemove:
		return WarningStyle.Render(currentSymbols.Remove)
	case KindStale:
		return MutedStyle.Render(currentSymbols.Stale)
	case KindFailed:
		return ErrorStyle.Render(currentSymbols.Failed)
	}
	return ""
}

// FormatPath renders path, truncated from the left to width cells so the
// file name stays visible. A non-empty url turns it into an OSC 8 hyperlink.
func FormatPath(path string, width int, url string) string {
	text := path
	if width > 0 && ansi.StringWidth(text) > width {
		text = ansi.TruncateLeft(text, ansi.StringWidth(text)-width+1, "…")
	}
	if url == "" {
		return text
	}
	styled := lipgloss.NewStyle().Underline(true).Render(text)
	return ansi.SetHyperlink(url) + styled + ansi.ResetHyperlink()
}
