package config

import (
	"maps"
	"slices"
)

// MergeLocal returns global with the project overrides in local applied.
// global is never modified. A nil local returns global itself.
//
// The project command and trace_stats replace the global ones, project
// picker presets come before the global ones, and hooks merge by name.
func MergeLocal(global *Config, local *LocalConfig) *Config {
	if local == nil {
		return global
	}

	merged := *global
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)
	merged.Commands = appendUnique(local.Commands, global.Commands)
	if local.Command != "" {
		merged.Command = local.Command
	}
	if local.TraceStats != nil {
		merged.TraceStats = *local.TraceStats
	}
	return &merged
}

// mergeHooks overlays project hooks on the global ones. A project hook with
// enabled = false switches the global hook of that name off.
func mergeHooks(global, local HooksConfig) HooksConfig {
	hooks := maps.Clone(global.Hooks)
	if hooks == nil {
		hooks = make(map[string]Hook, len(local.Hooks))
	}
	for name, h := range local.Hooks {
		if h.IsEnabled() {
			hooks[name] = h
		} else {
			delete(hooks, name)
		}
	}
	return HooksConfig{Hooks: hooks}
}

// appendUnique returns base followed by the entries of extra it lacks.
// Neither input is modified.
func appendUnique(base, extra []string) []string {
	out := slices.Clone(base)
	for _, v := range extra {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
