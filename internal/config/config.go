package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variable overrides.
const (
	EnvCommand = "CLEANART_COMMAND"
	EnvShell   = "CLEANART_SHELL"
)

// DefaultTraceStats is how many in-use artifacts are listed after a trace.
const DefaultTraceStats = 5

// DefaultCommands are offered by the interactive picker when no command is configured.
var DefaultCommands = []string{
	"cargo build",
	"cargo build --release",
	"cargo build --all-features",
	"cargo build --all-features --release",
	"trunk build",
	"trunk build --release",
	"mise run build",
}

// Hook defines a command run after a clean
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`                // commands this hook runs on (empty = only via --hook)
	Enabled     *bool    `toml:"enabled,omitempty"` // nil = enabled; false disables a global hook locally
}

// IsEnabled reports whether the hook is enabled. Hooks are enabled unless
// explicitly set to false.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// ThemeConfig selects and overrides UI colors
type ThemeConfig struct {
	Name     string `toml:"name"` // preset family, see ValidThemeNames
	Mode     string `toml:"mode"` // "auto", "light" or "dark"
	Primary  string `toml:"primary"`
	Accent   string `toml:"accent"`
	Success  string `toml:"success"`
	Error    string `toml:"error"`
	Muted    string `toml:"muted"`
	Normal   string `toml:"normal"`
	Info     string `toml:"info"`
	Warning  string `toml:"warning"`
	Nerdfont bool   `toml:"nerdfont"`
}

// Config holds the cleanart configuration
type Config struct {
	Command              string      `toml:"command"`  // build command to trace
	Commands             []string    `toml:"commands"` // picker presets
	Shell                string      `toml:"shell"`
	TargetDir            string      `toml:"target_dir"`
	TraceStats           int         `toml:"trace_stats"`
	AllowSharedTargetDir bool        `toml:"allow_shared_target_dir"`
	Theme                ThemeConfig `toml:"theme"`
	Hooks                HooksConfig `toml:"-"` // custom parsing needed
}

// PickerCommands returns the configured presets, or DefaultCommands.
func (c *Config) PickerCommands() []string {
	if len(c.Commands) > 0 {
		return c.Commands
	}
	return DefaultCommands
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Shell:      "sh",
		TraceStats: DefaultTraceStats,
		Hooks:      HooksConfig{Hooks: map[string]Hook{}},
	}
}

// ValidatePath checks that the path is absolute or starts with ~
// Returns error if path is relative (like "." or "..")
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil // Empty is allowed (means not configured)
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// Path returns the path to the global config file.
// XDG_CONFIG_HOME is honored when set.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "cleanart", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cleanart", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	Command              string         `toml:"command"`
	Commands             []string       `toml:"commands"`
	Shell                string         `toml:"shell"`
	TargetDir            string         `toml:"target_dir"`
	TraceStats           *int           `toml:"trace_stats"`
	AllowSharedTargetDir bool           `toml:"allow_shared_target_dir"`
	Theme                ThemeConfig    `toml:"theme"`
	Hooks                map[string]any `toml:"hooks"`
}

// Load reads the global config file and applies environment overrides.
// Returns Default() if the file doesn't exist (no error).
// Returns error only if the file exists but is invalid.
func Load() (Config, error) {
	path, err := Path()
	if err != nil {
		cfg := Default()
		applyEnv(&cfg)
		return cfg, nil
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// LoadFrom reads config from path without environment overrides.
func LoadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	cfg.Command = raw.Command
	cfg.Commands = raw.Commands
	cfg.TargetDir = raw.TargetDir
	cfg.AllowSharedTargetDir = raw.AllowSharedTargetDir
	cfg.Theme = raw.Theme
	cfg.Hooks = parseHooksConfig(raw.Hooks)
	if raw.Shell != "" {
		cfg.Shell = raw.Shell
	}
	if raw.TraceStats != nil {
		cfg.TraceStats = *raw.TraceStats
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	// Expand ~ in target_dir (shell doesn't expand in config files)
	expanded, err := expandPath(cfg.TargetDir)
	if err != nil {
		return Default(), fmt.Errorf("expand target_dir: %w", err)
	}
	cfg.TargetDir = expanded

	return cfg, nil
}

// applyEnv overlays environment variable overrides.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvCommand); v != "" {
		cfg.Command = v
	}
	if v := os.Getenv(EnvShell); v != "" {
		cfg.Shell = v
	}
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		// Hook definitions are tables
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		hc.Hooks[key] = hook
	}

	return hc
}

// Encode renders cfg as TOML, hooks included.
func Encode(cfg Config) ([]byte, error) {
	type hookOut struct {
		Command     string   `toml:"command"`
		Description string   `toml:"description,omitempty"`
		On          []string `toml:"on,omitempty"`
		Enabled     *bool    `toml:"enabled,omitempty"`
	}
	out := struct {
		Command              string             `toml:"command"`
		Commands             []string           `toml:"commands,omitempty"`
		Shell                string             `toml:"shell"`
		TargetDir            string             `toml:"target_dir,omitempty"`
		TraceStats           int                `toml:"trace_stats"`
		AllowSharedTargetDir bool               `toml:"allow_shared_target_dir"`
		Theme                ThemeConfig        `toml:"theme"`
		Hooks                map[string]hookOut `toml:"hooks,omitempty"`
	}{
		Command:              cfg.Command,
		Commands:             cfg.Commands,
		Shell:                cfg.Shell,
		TargetDir:            cfg.TargetDir,
		TraceStats:           cfg.TraceStats,
		AllowSharedTargetDir: cfg.AllowSharedTargetDir,
		Theme:                cfg.Theme,
	}
	if len(cfg.Hooks.Hooks) > 0 {
		out.Hooks = make(map[string]hookOut, len(cfg.Hooks.Hooks))
		for name, h := range cfg.Hooks.Hooks {
			out.Hooks[name] = hookOut(h)
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

const defaultConfig = `# cleanart configuration

# Build command to trace. Everything the build does not touch is a removal
# candidate, so use the command you normally build with.
# Overridden by -c/--command and the CLEANART_COMMAND environment variable.
# command = "cargo build"

# Commands offered by the interactive picker when no command is set.
# commands = ["cargo build", "cargo build --release", "trunk build"]

# Shell used to run the build command (overridden by CLEANART_SHELL).
# shell = "sh"

# Target directory. Defaults to the one reported by "cargo metadata".
# Must be an absolute path or start with ~.
# target_dir = "~/Code/project/target"

# Number of in-use artifacts to list after a trace (0 disables the list).
# trace_stats = 5

# Allow running while CARGO_TARGET_DIR points at a directory shared by several
# projects. A trace of one project cannot tell which artifacts the others need.
# allow_shared_target_dir = false

# [theme]
# name = "default"   # default, dracula, nord, gruvbox, catppuccin, none
# mode = "auto"      # auto, light, dark
# primary = "#89b4fa"
# nerdfont = false

# Hooks - run commands after a clean
# Use --hook=name to run a specific hook, --no-hook to skip all hooks.
#
# Hooks with "on" run automatically for matching commands.
# Hooks without "on" only run when explicitly called with --hook=name.
#
# [hooks.notify]
# command = "notify-send 'cleanart' 'freed {bytes} bytes in {dir}'"
# description = "Desktop notification"
# on = ["clean"]
#
# [hooks.sweep]
# command = "cargo sweep --time {days:-30}"
# description = "Also sweep old files"
# # no "on" - only runs via --hook=sweep --arg days=14
#
# Hooks run with the project directory as working directory. The results are
# also exported as CLEANART_DIR, CLEANART_TARGET_DIR, CLEANART_FILES,
# CLEANART_BYTES, CLEANART_DRY_RUN and CLEANART_COMMAND.
#
# Available placeholders:
#   {dir}         - project directory
#   {target-dir}  - cargo target directory
#   {files}       - number of removed files and directories
#   {bytes}       - number of removed bytes
#   {size}        - removed bytes, human readable ("1.50 MiB")
#   {dry-run}     - "true" or "false"
#   {command}     - the traced build command
#   {trigger}     - command that triggered the hook (clean)
#   {key}         - custom variable passed via --arg key=value
#   {key:-def}    - custom variable with default value if not provided
`

// DefaultConfig returns the template written by Init.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at Path().
// If force is true, overwrites existing file.
// Returns the path to the created file.
func Init(force bool) (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	return path, writeTemplate(path, defaultConfig, force)
}

func writeTemplate(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New("config file already exists: " + path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}
