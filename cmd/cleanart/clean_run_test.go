//go:build unix

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/lock"
	"github.com/raphi011/cleanart/internal/log"
	"github.com/raphi011/cleanart/internal/output"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

// cleanFixture is a project whose target directory holds one artifact the
// build uses and one it does not.
type cleanFixture struct {
	dir    string
	target string
	used   string
	stale  string
}

func newCleanFixture(t *testing.T) cleanFixture {
	t.Helper()

	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	deps := filepath.Join(target, "debug", "deps")
	if err := os.MkdirAll(deps, 0o755); err != nil {
		t.Fatal(err)
	}

	f := cleanFixture{
		dir:    dir,
		target: target,
		used:   filepath.Join(deps, "libfoo-abc123.rlib"),
		stale:  filepath.Join(deps, "libold-000000.rlib"),
	}
	old := time.Now().Add(-time.Hour)
	for _, p := range []string{f.used, f.stale} {
		if err := os.WriteFile(p, make([]byte, 64), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

// build returns a shell command that reports f.used the way cargo's
// fingerprint log does and exits with code.
func (f cleanFixture) build(code int) string {
	return fmt.Sprintf(
		`echo '   Compiling foo v0.1.0'; echo '  TRACE cargo::core::compiler::fingerprint: max dep mtime for "foo v0.1.0" is "%s" 1718000000.1s' >&2; exit %d`,
		f.used, code)
}

// useProject points the command globals at dir for the duration of t.
func useProject(t *testing.T, dir string) {
	t.Helper()

	t.Setenv("CARGO_TARGET_DIR", "")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	savedCfg, savedDir := cfg, workDir
	c := config.Default()
	c.Shell = "sh"
	cfg, workDir = &c, dir
	t.Cleanup(func() { cfg, workDir = savedCfg, savedDir })
}

func cleanContext(logs, out *bytes.Buffer) context.Context {
	ctx := log.WithLogger(context.Background(), log.New(logs, false, false))
	return output.WithPrinter(ctx, out)
}

func exists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatal(err)
	}
	return err == nil
}

func TestRunClean_FailedBuildRemovesNothing(t *testing.T) {
	f := newCleanFixture(t)
	useProject(t, f.dir)

	var logs, out bytes.Buffer
	err := runClean(cleanContext(&logs, &out), cleanOptions{
		yes:       true,
		command:   f.build(1),
		targetDir: f.target,
		format:    "text",
	})

	var buildErr *buildFailedError
	if !errors.As(err, &buildErr) {
		t.Fatalf("runClean() error = %v, want buildFailedError", err)
	}
	if buildErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", buildErr.ExitCode)
	}
	if !exists(t, f.stale) {
		t.Error("unused artifact was removed after a failed build")
	}
	if !exists(t, f.used) {
		t.Error("used artifact was removed")
	}
	if !strings.Contains(logs.String(), "build exited with code 1") {
		t.Errorf("logs = %q, want a build failure warning", logs.String())
	}
}

func TestRunClean_RemovesUnused(t *testing.T) {
	f := newCleanFixture(t)
	useProject(t, f.dir)

	var logs, out bytes.Buffer
	err := runClean(cleanContext(&logs, &out), cleanOptions{
		yes:       true,
		command:   f.build(0),
		targetDir: f.target,
		format:    "text",
	})
	if err != nil {
		t.Fatalf("runClean() error = %v", err)
	}

	if exists(t, f.stale) {
		t.Error("unused artifact was kept")
	}
	if !exists(t, f.used) {
		t.Error("used artifact was removed")
	}
	if got := ansi.Strip(out.String()); !strings.Contains(got, "Removed 1 item (64 B)") {
		t.Errorf("output = %q, want removal summary", got)
	}
}

func TestRunClean_DryRunKeepsFiles(t *testing.T) {
	f := newCleanFixture(t)
	useProject(t, f.dir)

	var logs, out bytes.Buffer
	err := runClean(cleanContext(&logs, &out), cleanOptions{
		dryRun:    true,
		command:   f.build(0),
		targetDir: f.target,
		format:    "json",
	})
	if err != nil {
		t.Fatalf("runClean() error = %v", err)
	}
	if !exists(t, f.stale) {
		t.Error("dry run removed an artifact")
	}
	if !strings.Contains(out.String(), filepath.Base(f.stale)) {
		t.Errorf("report does not list %s: %s", filepath.Base(f.stale), out.String())
	}
}

func TestAcquireLock(t *testing.T) {
	dir := t.TempDir()
	held := lock.ForTarget(dir)
	if err := held.TryLock(); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	l := log.New(&logs, false, false)

	if err := acquireLock(l, lock.ForTarget(dir), false); !errors.Is(err, lock.ErrLocked) {
		t.Fatalf("acquireLock(wait=false) = %v, want ErrLocked", err)
	}

	waiter := lock.ForTarget(dir)
	done := make(chan error, 1)
	go func() { done <- acquireLock(l, waiter, true) }()

	select {
	case err := <-done:
		t.Fatalf("acquireLock(wait=true) returned %v while the lock was held", err)
	case <-time.After(100 * time.Millisecond):
	}

	if err := held.Unlock(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("acquireLock(wait=true) = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("acquireLock(wait=true) did not return after the lock was released")
	}
	defer waiter.Unlock()

	if !strings.Contains(logs.String(), "Waiting for another cleanart run") {
		t.Errorf("logs = %q, want a waiting notice", logs.String())
	}
}

func TestRemovedLine(t *testing.T) {
	line := removedLine(clean.Stats{Files: 3, Bytes: 2048})

	if got, want := ansi.Strip(line), styles.KindSymbol(styles.KindRemove); !strings.HasPrefix(line, want) {
		t.Errorf("removedLine() = %q, want it to start with the remove symbol (%q)", got, ansi.Strip(want))
	}
	msg := styles.SuccessStyle.Render("Removed 3 items (2.00 KiB)")
	if !strings.HasSuffix(line, " "+msg) {
		t.Errorf("removedLine() = %q, want the message styled on its own: %q", line, msg)
	}
}
