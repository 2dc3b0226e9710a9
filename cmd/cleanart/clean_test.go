package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/ui/prompt"
)

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	noPick := func([]string) (prompt.CommandResult, error) {
		t.Error("picker must not run")
		return prompt.CommandResult{}, nil
	}

	tests := []struct {
		name        string
		flag        string
		configured  string
		interactive bool
		pick        func([]string) (prompt.CommandResult, error)
		want        string
		wantErr     error
	}{
		{"flag wins", " cargo build --release ", "cargo build", false, noPick, "cargo build --release", nil},
		{"config", "", "trunk build", false, noPick, "trunk build", nil},
		{"no tty", "", "", false, noPick, "", errNoCommand},
		{"picked", "", "", true, func(presets []string) (prompt.CommandResult, error) {
			return prompt.CommandResult{Command: presets[1]}, nil
		}, config.DefaultCommands[1], nil},
		{"picker cancelled", "", "  ", true, func([]string) (prompt.CommandResult, error) {
			return prompt.CommandResult{Cancelled: true}, nil
		}, "", errCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := config.Default()
			c.Command = tt.configured
			got, err := resolveCommand(tt.flag, &c, tt.interactive, tt.pick)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("resolveCommand() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveCommand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCommand_PickerError(t *testing.T) {
	t.Parallel()

	c := config.Default()
	boom := errors.New("no terminal")
	_, err := resolveCommand("", &c, true, func([]string) (prompt.CommandResult, error) {
		return prompt.CommandResult{}, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("resolveCommand() error = %v, want %v", err, boom)
	}
}

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	discovered := "/work/project/target"
	discover := func(_ context.Context, dir string) (string, error) {
		if dir != "/work/project" {
			t.Errorf("discover called with %q", dir)
		}
		return discovered, nil
	}

	got, err := resolveTargetDir(ctx, "/flag/target", "/config/target", "/work/project", discover)
	if err != nil || got != "/flag/target" {
		t.Errorf("flag: got (%q, %v)", got, err)
	}

	got, err = resolveTargetDir(ctx, "", "/config/target", "/work/project", discover)
	if err != nil || got != "/config/target" {
		t.Errorf("config: got (%q, %v)", got, err)
	}

	got, err = resolveTargetDir(ctx, "", "", "/work/project", discover)
	if err != nil || got != discovered {
		t.Errorf("discover: got (%q, %v)", got, err)
	}

	got, err = resolveTargetDir(ctx, "rel/target", "", "/work/project", discover)
	if err != nil || !filepath.IsAbs(got) || !strings.HasSuffix(got, filepath.Join("rel", "target")) {
		t.Errorf("relative flag: got (%q, %v)", got, err)
	}

	boom := errors.New("could not find Cargo.toml")
	_, err = resolveTargetDir(ctx, "", "", "/work/project", func(context.Context, string) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("discover error = %v, want %v", err, boom)
	}
}

func TestCheckSharedTarget(t *testing.T) {
	t.Parallel()

	unset := func() (string, bool) { return "", false }
	shared := func() (string, bool) { return "/tmp/shared-target", true }

	if err := checkSharedTarget(unset, false); err != nil {
		t.Errorf("unset: %v", err)
	}
	if err := checkSharedTarget(shared, true); err != nil {
		t.Errorf("allowed: %v", err)
	}

	err := checkSharedTarget(shared, false)
	var sharedErr *sharedTargetError
	if !errors.As(err, &sharedErr) {
		t.Fatalf("shared: error = %v, want *sharedTargetError", err)
	}
	if sharedErr.Dir != "/tmp/shared-target" {
		t.Errorf("Dir = %q", sharedErr.Dir)
	}
	if !strings.Contains(err.Error(), "--allow-shared-target-dir") {
		t.Errorf("error should mention the override flag: %v", err)
	}
}

func TestValidateProfiles(t *testing.T) {
	t.Parallel()

	available := []string{"debug", "release", "wasm32-unknown-unknown/release"}

	if err := validateProfiles(nil, available); err != nil {
		t.Errorf("no filter: %v", err)
	}
	if err := validateProfiles([]string{"release", "debug"}, available); err != nil {
		t.Errorf("known profiles: %v", err)
	}

	err := validateProfiles([]string{"relese"}, available)
	if err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if !strings.Contains(err.Error(), `"relese" was not traced`) || !strings.Contains(err.Error(), "did you mean release") {
		t.Errorf("unexpected message: %v", err)
	}

	err = validateProfiles([]string{"bench"}, []string{"debug"})
	if err == nil || !strings.Contains(err.Error(), "(traced: debug)") {
		t.Errorf("no suggestion: %v", err)
	}

	err = validateProfiles([]string{"a", "b"}, nil)
	if err == nil || strings.Count(err.Error(), "was not traced") != 2 {
		t.Errorf("every unknown profile should be reported: %v", err)
	}
}

func TestSuggestProfiles(t *testing.T) {
	t.Parallel()

	got := suggestProfiles("rel", []string{"debug", "release", "wasm32-unknown-unknown/release", "x/release", "y/release"})
	if len(got) != 3 {
		t.Fatalf("suggestProfiles() = %v, want 3 entries", got)
	}
	if !slices.Contains(got, "release") {
		t.Errorf("suggestProfiles() = %v, want release among them", got)
	}
	if got := suggestProfiles("zzz", []string{"debug"}); len(got) != 0 {
		t.Errorf("suggestProfiles() = %v, want none", got)
	}
}

func planWith(files, dirs int) clean.Stats {
	var s clean.Stats
	for i := range files {
		s.FilesToRemove = append(s.FilesToRemove, clean.Candidate{Path: filepath.Join("/t/debug/deps", string(rune('a'+i))), Size: 10, Profile: "debug"})
	}
	for i := range dirs {
		s.DirsToRemove = append(s.DirsToRemove, clean.Candidate{Path: filepath.Join("/t/debug/incremental", string(rune('a'+i))), Size: 100, Profile: "debug"})
	}
	s.Files = files + dirs
	s.Bytes = int64(files*10 + dirs*100)
	return s
}

type fakeConfirm struct {
	answers []prompt.ConfirmResult
	prompts []string
}

func (f *fakeConfirm) confirm(p, detail string) (prompt.ConfirmResult, error) {
	f.prompts = append(f.prompts, p)
	res := f.answers[0]
	f.answers = f.answers[1:]
	return res, nil
}

func TestChooseSelection(t *testing.T) {
	t.Parallel()

	never := func(string, string) (prompt.ConfirmResult, error) {
		t.Error("confirm must not be called")
		return prompt.ConfirmResult{}, nil
	}

	t.Run("dry run selects nothing", func(t *testing.T) {
		sel, err := chooseSelection(planWith(2, 1), cleanOptions{dryRun: true}, true, never)
		if err != nil || sel.Any() {
			t.Errorf("got (%+v, %v)", sel, err)
		}
	})

	t.Run("yes selects present categories", func(t *testing.T) {
		sel, err := chooseSelection(planWith(2, 0), cleanOptions{yes: true}, false, never)
		if err != nil || sel != (clean.Selection{Files: true}) {
			t.Errorf("got (%+v, %v)", sel, err)
		}
	})

	t.Run("no terminal needs yes", func(t *testing.T) {
		_, err := chooseSelection(planWith(1, 1), cleanOptions{}, false, never)
		if !errors.Is(err, errNeedsConfirmation) {
			t.Errorf("error = %v, want errNeedsConfirmation", err)
		}
	})

	t.Run("confirms files and dirs separately", func(t *testing.T) {
		f := &fakeConfirm{answers: []prompt.ConfirmResult{{Confirmed: false}, {Confirmed: true}}}
		sel, err := chooseSelection(planWith(2, 1), cleanOptions{}, true, f.confirm)
		if err != nil {
			t.Fatal(err)
		}
		if sel != (clean.Selection{Dirs: true}) {
			t.Errorf("selection = %+v", sel)
		}
		if len(f.prompts) != 2 {
			t.Fatalf("prompts = %v", f.prompts)
		}
		if !strings.Contains(f.prompts[0], "2 unused files") {
			t.Errorf("files prompt = %q", f.prompts[0])
		}
		if !strings.Contains(f.prompts[1], "1 stale incremental directory") {
			t.Errorf("dirs prompt = %q", f.prompts[1])
		}
	})

	t.Run("skips empty category", func(t *testing.T) {
		f := &fakeConfirm{answers: []prompt.ConfirmResult{{Confirmed: true}}}
		sel, err := chooseSelection(planWith(0, 3), cleanOptions{}, true, f.confirm)
		if err != nil || sel != (clean.Selection{Dirs: true}) || len(f.prompts) != 1 {
			t.Errorf("got (%+v, %v), prompts %v", sel, err, f.prompts)
		}
	})

	t.Run("cancel aborts", func(t *testing.T) {
		f := &fakeConfirm{answers: []prompt.ConfirmResult{{Cancelled: true}}}
		_, err := chooseSelection(planWith(1, 1), cleanOptions{}, true, f.confirm)
		if !errors.Is(err, errCancelled) || len(f.prompts) != 1 {
			t.Errorf("error = %v, prompts %v", err, f.prompts)
		}
	})
}

func TestTail(t *testing.T) {
	t.Parallel()

	tl := newTail(3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		tl.add(s)
	}
	if got := tl.lines(); !slices.Equal(got, []string{"c", "d", "e"}) {
		t.Errorf("lines() = %v", got)
	}
}

func TestBuildFailedError(t *testing.T) {
	t.Parallel()

	err := error(&buildFailedError{ExitCode: 101})
	if !strings.Contains(err.Error(), "code 101") || !strings.Contains(err.Error(), "nothing was removed") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestProfileDirs(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	for _, d := range []string{
		"debug/deps",
		"release/deps",
		"wasm32-unknown-unknown/release/deps",
		"doc",
		".fingerprint-cache/deps",
	} {
		if err := os.MkdirAll(filepath.Join(target, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(target, "CACHEDIR.TAG"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	want := []string{"debug", "release", "wasm32-unknown-unknown/release"}
	if got := profileDirs(target); !slices.Equal(got, want) {
		t.Errorf("profileDirs() = %v, want %v", got, want)
	}
	if got := profileDirs(filepath.Join(target, "missing")); got != nil {
		t.Errorf("profileDirs(missing) = %v", got)
	}
}
