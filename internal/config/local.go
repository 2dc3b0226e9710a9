package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-project config file, placed next to Cargo.toml.
const LocalConfigFileName = ".cleanart.toml"

// LocalConfig holds per-project overrides.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	Command    string      `toml:"command"`
	Commands   []string    `toml:"commands"`
	TraceStats *int        `toml:"trace_stats"`
	Hooks      HooksConfig `toml:"-"` // merge by name into global
}

// rawLocalConfig is used for initial TOML parsing before processing hooks
type rawLocalConfig struct {
	Command    string         `toml:"command"`
	Commands   []string       `toml:"commands"`
	TraceStats *int           `toml:"trace_stats"`
	Hooks      map[string]any `toml:"hooks"`
}

// LoadLocal reads the .cleanart.toml in projectDir.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(projectDir string) (*LocalConfig, error) {
	configFile := filepath.Join(projectDir, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		Command:    raw.Command,
		Commands:   raw.Commands,
		TraceStats: raw.TraceStats,
		Hooks:      parseHooksConfig(raw.Hooks),
	}

	if local.TraceStats != nil && *local.TraceStats < 0 {
		return nil, fmt.Errorf("invalid trace_stats %d in %s: must be >= 0", *local.TraceStats, configFile)
	}
	if err := validateHooks(local.Hooks, configFile); err != nil {
		return nil, err
	}

	return local, nil
}

// defaultLocalConfig is the template for cleanart config init --local
const defaultLocalConfig = `# cleanart local config (per-project overrides)
# Place this file next to Cargo.toml.
# Settings here override the global config for this project only.

# command = "cargo build --all-features"
# commands = ["cargo build", "trunk build --release"]
# trace_stats = 10

# Hooks - add project hooks or override global hooks
# Set enabled = false to disable a global hook for this project
#
# [hooks.size]
# command = "du -sh {target-dir}"
# on = ["clean"]
#
# [hooks.global-hook-name]
# enabled = false
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}

// InitLocal writes the local template into projectDir.
func InitLocal(projectDir string, force bool) (string, error) {
	path := filepath.Join(projectDir, LocalConfigFileName)
	return path, writeTemplate(path, defaultLocalConfig, force)
}
