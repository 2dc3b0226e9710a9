package styles

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/raphi011/cleanart/internal/config"
)

// Theme is the color palette used by plans, reports and prompts.
type Theme struct {
	Primary color.Color // headings, borders
	Accent  color.Color // totals, selected items
	Success color.Color // removed bytes
	Error   color.Color // failed removals
	Muted   color.Color // paths, secondary columns
	Normal  color.Color
	Info    color.Color // used artifacts
	Warning color.Color // stale incremental sessions
}

// palette builds a Theme from hex or ANSI codes in field order.
func palette(primary, accent, success, errc, muted, normal, info, warning string) Theme {
	return Theme{
		Primary: lipgloss.Color(primary),
		Accent:  lipgloss.Color(accent),
		Success: lipgloss.Color(success),
		Error:   lipgloss.Color(errc),
		Muted:   lipgloss.Color(muted),
		Normal:  lipgloss.Color(normal),
		Info:    lipgloss.Color(info),
		Warning: lipgloss.Color(warning),
	}
}

var (
	// DefaultTheme uses the 256-color ANSI palette.
	DefaultTheme = palette("62", "212", "82", "196", "240", "252", "244", "214")

	// NoneTheme keeps bold and italic but leaves colors to the terminal.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

// variants holds the dark and light palettes of a preset. A missing
// variant falls back to the other one.
type variants struct {
	dark, light *Theme
}

func (v variants) pick(dark bool) Theme {
	first, second := v.light, v.dark
	if dark {
		first, second = v.dark, v.light
	}
	switch {
	case first != nil:
		return *first
	case second != nil:
		return *second
	}
	return DefaultTheme
}

func ref(t Theme) *Theme { return &t }

var presets = map[string]variants{
	"none":    {dark: &NoneTheme, light: &NoneTheme},
	"default": {dark: &DefaultTheme},
	"dracula": {dark: ref(palette("#bd93f9", "#ff79c6", "#50fa7b", "#ff5555", "#6272a4", "#f8f8f2", "#8be9fd", "#ffb86c"))},
	"nord": {
		dark:  ref(palette("#88c0d0", "#b48ead", "#a3be8c", "#bf616a", "#4c566a", "#eceff4", "#81a1c1", "#ebcb8b")),
		light: ref(palette("#5e81ac", "#b48ead", "#a3be8c", "#bf616a", "#9a9a9a", "#2e3440", "#81a1c1", "#d08770")),
	},
	"gruvbox": {
		dark:  ref(palette("#83a598", "#d3869b", "#b8bb26", "#fb4934", "#665c54", "#ebdbb2", "#8ec07c", "#fabd2f")),
		light: ref(palette("#076678", "#8f3f71", "#79740e", "#9d0006", "#928374", "#3c3836", "#427b58", "#b57614")),
	},
	"catppuccin": {
		dark:  ref(palette("#89b4fa", "#f5c2e7", "#a6e3a1", "#f38ba8", "#6c7086", "#cdd6f4", "#94e2d5", "#fab387")),
		light: ref(palette("#1e66f5", "#ea76cb", "#40a02b", "#d20f39", "#9ca0b0", "#4c4f69", "#179299", "#fe640b")),
	},
}

var currentTheme = DefaultTheme

// Current returns the active theme.
func Current() Theme {
	return currentTheme
}

// Init selects the preset, applies per-color overrides and refreshes the
// package styles. Call it once the config is loaded and before any output.
func Init(cfg config.ThemeConfig) {
	theme := selectTheme(cfg)

	overrides := []struct {
		value string
		dst   *color.Color
	}{
		{cfg.Primary, &theme.Primary},
		{cfg.Accent, &theme.Accent},
		{cfg.Success, &theme.Success},
		{cfg.Error, &theme.Error},
		{cfg.Muted, &theme.Muted},
		{cfg.Normal, &theme.Normal},
		{cfg.Info, &theme.Info},
		{cfg.Warning, &theme.Warning},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.dst = lipgloss.Color(o.value)
		}
	}

	currentTheme = theme
	applyTheme(theme)
	SetNerdfont(cfg.Nerdfont)
}

func selectTheme(cfg config.ThemeConfig) Theme {
	v, ok := presets[cfg.Name]
	if !ok {
		if cfg.Name != "" {
			fmt.Fprintf(os.Stderr, "Warning: unknown theme %q, using default (available: %s)\n",
				cfg.Name, strings.Join(config.ValidThemeNames, ", "))
		}
		v = presets["default"]
	}

	switch cfg.Mode {
	case "dark":
		return v.pick(true)
	case "light":
		return v.pick(false)
	case "", "auto":
	default:
		fmt.Fprintf(os.Stderr, "Warning: unknown theme mode %q, using auto (available: %s)\n",
			cfg.Mode, strings.Join(config.ValidThemeModes, ", "))
	}
	return v.pick(lipgloss.HasDarkBackground(os.Stdin, os.Stderr))
}

func applyTheme(t Theme) {
	Primary, Accent, Success, Error = t.Primary, t.Accent, t.Success, t.Error
	Muted, Normal, Info, Warning = t.Muted, t.Normal, t.Info, t.Warning

	fg := func(c color.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	PrimaryStyle = fg(t.Primary)
	AccentStyle = fg(t.Accent).Bold(true)
	SuccessStyle = fg(t.Success)
	ErrorStyle = fg(t.Error)
	MutedStyle = fg(t.Muted)
	NormalStyle = fg(t.Normal)
	InfoStyle = fg(t.Info).Italic(true)
	WarningStyle = fg(t.Warning)
	HighlightStyle = fg(t.Accent).Bold(true)
}

// GetPreset returns the dark variant of a preset (or its only variant),
// nil for unknown names.
func GetPreset(name string) *Theme {
	v, ok := presets[name]
	if !ok {
		return nil
	}
	t := v.pick(true)
	return &t
}

// PresetNames lists the theme names accepted in [theme] name.
func PresetNames() []string {
	return config.ValidThemeNames
}
