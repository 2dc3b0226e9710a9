package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionString(t *testing.T) {
	got := versionString()
	if !strings.HasPrefix(got, "cleanart dev (none, unknown, go") {
		t.Errorf("versionString() = %q", got)
	}
}

func TestRootCommands(t *testing.T) {
	want := map[string]string{
		"clean":      GroupCore,
		"history":    GroupCore,
		"config":     GroupConfig,
		"doctor":     GroupConfig,
		"completion": GroupConfig,
	}
	for name, group := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
			continue
		}
		if cmd.GroupID != group {
			t.Errorf("%s group = %q, want %q", name, cmd.GroupID, group)
		}
	}
}

func TestCleanFlags(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"clean"})
	if err != nil {
		t.Fatal(err)
	}
	if rootCmd.PersistentFlags().ShorthandLookup("C") == nil {
		t.Error("root is missing -C/--dir")
	}
	for _, flag := range []string{"yes", "dry-run", "command", "target-dir", "allow-shared-target-dir",
		"trace-stats", "profile", "format", "copy", "hook", "no-hook", "arg", "wait"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("clean is missing --%s", flag)
		}
	}
	if f := cmd.Flags().ShorthandLookup("n"); f == nil || f.Name != "trace-stats" {
		t.Errorf("-n should be --trace-stats")
	}
}

func TestLoadConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("CLEANART_COMMAND", "")
	t.Setenv("CLEANART_SHELL", "")
	writeTestFile(t, filepath.Join(xdg, "cleanart", "config.toml"), "command = \"cargo build\"\ntrace_stats = 3\n")

	project := t.TempDir()
	writeTestFile(t, filepath.Join(project, ".cleanart.toml"), "command = \"trunk build --release\"\n")

	got, warnings := loadConfig(project)
	if len(warnings) != 0 {
		t.Fatalf("warnings = %v", warnings)
	}
	if got.Command != "trunk build --release" || got.TraceStats != 3 {
		t.Errorf("command = %q trace_stats = %d, want project command and global trace_stats", got.Command, got.TraceStats)
	}

	broken := t.TempDir()
	writeTestFile(t, filepath.Join(broken, ".cleanart.toml"), "command = [\n")
	got, warnings = loadConfig(broken)
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want the broken project file", warnings)
	}
	if got.Command != "cargo build" {
		t.Errorf("command = %q, want global command when the project file is broken", got.Command)
	}
}

func TestProjectDirectory(t *testing.T) {
	dir := t.TempDir()
	got, err := projectDirectory(dir)
	if err != nil || got != dir {
		t.Errorf("projectDirectory(%q) = %q, %v", dir, got, err)
	}

	file := filepath.Join(dir, "Cargo.toml")
	writeTestFile(t, file, "[package]\n")
	if _, err := projectDirectory(file); err == nil {
		t.Error("projectDirectory(file) = nil error, want not a directory")
	}
	if _, err := projectDirectory(filepath.Join(dir, "missing")); err == nil {
		t.Error("projectDirectory(missing) = nil error")
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		var buf strings.Builder
		root := newRootCmd()
		root.SetOut(&buf)
		root.SetArgs([]string{"completion", shell, "--no-descriptions"})
		if err := root.Execute(); err != nil {
			t.Errorf("completion %s: %v", shell, err)
			continue
		}
		if !strings.Contains(buf.String(), "cleanart") {
			t.Errorf("completion %s script does not mention cleanart", shell)
		}
	}

	root := newRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"completion", "tcsh"})
	if err := root.Execute(); err == nil {
		t.Error("completion tcsh = nil error, want invalid argument")
	}
}
