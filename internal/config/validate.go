package config

import (
	"fmt"
	"slices"
	"strings"
)

// Valid enum values for configuration fields.
var (
	ValidThemeNames = []string{"none", "default", "dracula", "nord", "gruvbox", "catppuccin"}
	ValidThemeModes = []string{"auto", "light", "dark"}
	ValidTriggers   = []string{"clean", "all"}
)

// Validate checks every field and names the offending key on failure.
func (c *Config) Validate() error {
	if err := ValidatePath(c.TargetDir, "target_dir"); err != nil {
		return err
	}
	if c.TraceStats < 0 {
		return fmt.Errorf("invalid trace_stats %d: must be >= 0", c.TraceStats)
	}
	for i, cmd := range c.Commands {
		if strings.TrimSpace(cmd) == "" {
			return fmt.Errorf("invalid commands[%d]: must not be empty", i)
		}
	}
	if err := validateEnum(c.Theme.Name, "theme.name", ValidThemeNames); err != nil {
		return err
	}
	if err := validateEnum(c.Theme.Mode, "theme.mode", ValidThemeModes); err != nil {
		return err
	}
	return validateHooks(c.Hooks, "")
}

// validateHooks checks hook commands and triggers. contextInfo names the
// file for local configs.
func validateHooks(hc HooksConfig, contextInfo string) error {
	suffix := ""
	if contextInfo != "" {
		suffix = " in " + contextInfo
	}
	names := make([]string, 0, len(hc.Hooks))
	for name := range hc.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		h := hc.Hooks[name]
		if h.IsEnabled() && strings.TrimSpace(h.Command) == "" {
			return fmt.Errorf("invalid hooks.%s%s: command is required", name, suffix)
		}
		for _, on := range h.On {
			if err := validateEnum(on, "hooks."+name+".on", ValidTriggers); err != nil {
				return fmt.Errorf("%w%s", err, suffix)
			}
		}
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
