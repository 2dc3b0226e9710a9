// Package cmd runs external commands for cleanart.
//
// OutputContext captures stdout for queries such as `cargo metadata`. A
// non-zero exit comes back as *ExitError whose message is the command's
// stderr, so cargo's own diagnostics reach the user unchanged.
//
//	out, err := cmd.OutputContext(ctx, projectDir, "cargo", "metadata", "--format-version", "1")
//
// ShellContext runs hook commands through the configured shell with the
// terminal attached. Both echo the invocation and its duration through the
// context logger in verbose mode.
//
// The build being traced does not go through this package: it needs both
// streams line by line while it runs, which internal/trace handles itself.
package cmd
