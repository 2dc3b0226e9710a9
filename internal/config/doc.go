// Package config handles loading and validation of cleanart configuration.
//
// Configuration is read from ~/.config/cleanart/config.toml (or
// $XDG_CONFIG_HOME/cleanart/config.toml), optionally overlaid with a
// per-project .cleanart.toml next to Cargo.toml.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags
//   - CLEANART_COMMAND / CLEANART_SHELL env vars
//   - Project .cleanart.toml
//   - Global config file
//   - Default values
//
// # Key Settings
//
//   - command: build command to trace
//   - commands: presets for the interactive picker
//   - shell: interpreter for the build command (default: "sh")
//   - target_dir: target directory override (must be absolute or ~/...)
//   - trace_stats: number of in-use artifacts to list (default: 5)
//   - allow_shared_target_dir: permit running with CARGO_TARGET_DIR set
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.notify]
//	command = "notify-send 'freed {bytes} bytes'"
//	description = "Desktop notification"
//	on = ["clean"]  # auto-run after clean
//
// Hooks with "on" run automatically after a clean. Hooks without "on" only
// run via explicit --hook=name flag. A local config can disable a global
// hook with enabled = false.
//
// # Path Validation
//
// Directory paths must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
