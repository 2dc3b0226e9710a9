//go:build !unix

package trace

import "os/exec"

// setProcessGroup leaves the default cancellation in place, which kills
// only the shell.
func setProcessGroup(c *exec.Cmd) {}
