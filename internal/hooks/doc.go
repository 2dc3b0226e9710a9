// Package hooks runs user-defined shell commands after a clean.
//
// Hooks are configured under [hooks.NAME] and run in the project directory
// once removal has finished, including on dry runs.
//
// # Hook Selection
//
// Hooks can run automatically or manually:
//
//   - Automatic: Hooks with "on" config matching the command type run automatically
//   - Manual: Use --hook=name to run a specific hook, --no-hook to skip all
//
// Example config:
//
//	[hooks.notify]
//	command = "notify-send 'freed {bytes} bytes'"
//	on = ["clean"]
//
//	[hooks.sweep]
//	command = "cargo sweep --time {days:-30}"
//	# no "on" - only runs via --hook=sweep
//
// # Placeholder Substitution
//
// Static placeholders available in all hooks:
//
//   - {dir}: Project directory
//   - {target-dir}: Cargo target directory
//   - {files}: Number of removed files and directories
//   - {bytes}: Number of removed bytes
//   - {dry-run}: "true" when nothing was removed
//   - {command}: The traced build command
//   - {trigger}: Command that triggered the hook
//
// Custom variables via --arg key=value:
//
//   - {key}: Value from --arg key=value
//   - {key:-default}: Value with fallback if not provided
//
// String values are shell-quoted. Use --arg key=- to read stdin into a variable.
package hooks
