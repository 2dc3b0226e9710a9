package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/raphi011/cleanart/internal/log"
)

// ExitError is a command that ran and exited non-zero.
type ExitError struct {
	Name    string
	Code    int
	Stderr  string // trimmed
	exitErr error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("%s: %v", e.Name, e.exitErr)
}

func (e *ExitError) Unwrap() error { return e.exitErr }

// OutputContext runs name in dir and returns its stdout. A non-zero exit
// is an *ExitError carrying stderr. A cancelled context is returned as-is.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	var stderr bytes.Buffer
	c.Stderr = &stderr

	out, err := timed(ctx, dir, name, args, c.Output)
	if err == nil {
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil, &ExitError{Name: name, Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr.String()), exitErr: err}
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}

// ShellContext runs command through shell -c in dir with the terminal
// attached, for user-defined hooks. env is added to the inherited
// environment.
func ShellContext(ctx context.Context, dir, shell, command string, env ...string) error {
	if shell == "" {
		shell = "sh"
	}
	c := exec.CommandContext(ctx, shell, "-c", command)
	c.Dir = dir
	if len(env) > 0 {
		c.Env = append(os.Environ(), env...)
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr

	_, err := timed(ctx, dir, shell, []string{"-c", command}, func() ([]byte, error) {
		return nil, c.Run()
	})
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: shell, Code: exitErr.ExitCode(), exitErr: err}
	}
	return err
}

func timed(ctx context.Context, dir, name string, args []string, run func() ([]byte, error)) ([]byte, error) {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	out, err := run()
	done(time.Since(start))
	return out, err
}
