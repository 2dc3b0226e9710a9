package hooks

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/log"
)

func TestSubstitutePlaceholders(t *testing.T) {
	t.Parallel()

	ctx := Context{
		Dir:       "/home/user/proj",
		TargetDir: "/home/user/proj/target",
		Files:     12,
		Bytes:     4096,
		Command:   "cargo build --release",
		Trigger:   "clean",
	}

	tests := []struct {
		name     string
		command  string
		expected string
	}{
		{
			name:     "single placeholder",
			command:  "du -sh {target-dir}",
			expected: "du -sh '/home/user/proj/target'",
		},
		{
			name:     "numbers are unquoted",
			command:  "echo {files} {bytes}",
			expected: "echo 12 4096",
		},
		{
			name:     "all placeholders",
			command:  "{dir} {target-dir} {files} {bytes} {dry-run} {command} {trigger}",
			expected: "'/home/user/proj' '/home/user/proj/target' 12 4096 false 'cargo build --release' 'clean'",
		},
		{
			name:     "no placeholders",
			command:  "echo hello",
			expected: "echo hello",
		},
		{
			name:     "repeated placeholder",
			command:  "{dir} and {dir}",
			expected: "'/home/user/proj' and '/home/user/proj'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SubstitutePlaceholders(tt.command, ctx)
			if result != tt.expected {
				t.Errorf("SubstitutePlaceholders(%q) = %q, want %q", tt.command, result, tt.expected)
			}
		})
	}
}

func TestSubstitutePlaceholders_ShellEscaping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ctx      Context
		command  string
		expected string
	}{
		{
			name:     "path with spaces",
			ctx:      Context{Dir: "/home/user/my projects/app"},
			command:  "cd {dir}",
			expected: "cd '/home/user/my projects/app'",
		},
		{
			name:     "value with single quotes",
			ctx:      Context{Dir: "/home/user/it's a path"},
			command:  "cd {dir}",
			expected: "cd '/home/user/it'\\''s a path'",
		},
		{
			name:     "command with shell metacharacters",
			ctx:      Context{Command: "cargo build; rm -rf /"},
			command:  "echo {command}",
			expected: "echo 'cargo build; rm -rf /'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SubstitutePlaceholders(tt.command, tt.ctx)
			if result != tt.expected {
				t.Errorf("SubstitutePlaceholders(%q) = %q, want %q", tt.command, result, tt.expected)
			}
		})
	}
}

func TestSubstitutePlaceholders_Env(t *testing.T) {
	t.Parallel()

	ctx := Context{Env: map[string]string{"days": "14", "msg": "it's done"}}

	tests := []struct {
		command  string
		expected string
	}{
		{"cargo sweep --time {days}", "cargo sweep --time '14'"},
		{"cargo sweep --time {days:-30}", "cargo sweep --time '14'"},
		{"cargo sweep --time {weeks:-2}", "cargo sweep --time '2'"},
		{"echo {missing}", "echo ''"},
		{"echo \"{msg:raw}\"", "echo \"it's done\""},
		{"echo {msg}", "echo 'it'\\''s done'"},
	}

	for _, tt := range tests {
		if got := SubstitutePlaceholders(tt.command, ctx); got != tt.expected {
			t.Errorf("SubstitutePlaceholders(%q) = %q, want %q", tt.command, got, tt.expected)
		}
	}
}

func TestSubstitutePlaceholders_DryRun(t *testing.T) {
	t.Parallel()

	got := SubstitutePlaceholders("echo {dry-run}", Context{DryRun: true})
	if got != "echo true" {
		t.Errorf("got %q, want %q", got, "echo true")
	}
}

func TestSelectHooks(t *testing.T) {
	t.Parallel()

	disabled := false
	hooksConfig := config.HooksConfig{
		Hooks: map[string]config.Hook{
			"notify": {
				Command:     "notify-send {bytes}",
				Description: "Notify",
				On:          []string{"clean"},
			},
			"size": {
				Command: "du -sh {target-dir}",
				On:      []string{"all"},
			},
			"sweep": {
				Command: "cargo sweep --time {days:-30}",
				// no On - only runs via explicit --hook
			},
			"off": {
				Command: "false",
				On:      []string{"clean"},
				Enabled: &disabled,
			},
		},
	}

	tests := []struct {
		name        string
		hookFlags   []string
		noHook      bool
		cmdType     CommandType
		expectNames []string
		expectError bool
	}{
		{
			name:        "on=clean and on=all run for clean, sorted",
			cmdType:     CommandClean,
			expectNames: []string{"notify", "size"},
		},
		{
			name:        "on=all matches any command type",
			cmdType:     CommandType("other"),
			expectNames: []string{"size"},
		},
		{
			name:        "explicit hook runs regardless of on condition",
			hookFlags:   []string{"sweep"},
			cmdType:     CommandClean,
			expectNames: []string{"sweep"},
		},
		{
			name:        "explicit hooks keep flag order",
			hookFlags:   []string{"sweep", "notify"},
			cmdType:     CommandClean,
			expectNames: []string{"sweep", "notify"},
		},
		{
			name:    "no-hook skips all",
			noHook:  true,
			cmdType: CommandClean,
		},
		{
			name:        "unknown hook errors",
			hookFlags:   []string{"nonexistent"},
			cmdType:     CommandClean,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := SelectHooks(hooksConfig, tt.hookFlags, tt.noHook, tt.cmdType)

			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var names []string
			for _, m := range matches {
				names = append(names, m.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.expectNames, ",") {
				t.Errorf("hooks = %v, want %v", names, tt.expectNames)
			}
		})
	}
}

func TestSelectHooks_EmptyConfig(t *testing.T) {
	t.Parallel()

	matches, err := SelectHooks(config.HooksConfig{Hooks: map[string]config.Hook{}}, nil, false, CommandClean)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no hooks with empty config, got %d", len(matches))
	}
}

func TestParseEnv(t *testing.T) {
	t.Parallel()

	got, err := ParseEnv([]string{"days=14", "msg=a=b", "empty="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]string{"days": "14", "msg": "a=b", "empty": ""}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ParseEnv()[%q] = %q, want %q", k, got[k], v)
		}
	}

	for _, bad := range []string{"novalue", "=value"} {
		if _, err := ParseEnv([]string{bad}); err == nil {
			t.Errorf("ParseEnv(%q) should fail", bad)
		}
	}
}

func TestRunAll(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	matches := []HookMatch{
		{Name: "write", Hook: &config.Hook{Command: "echo {files} {trigger} > out.txt"}},
	}
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, false, false))

	err := RunAll(ctx, matches, Context{Dir: dir, Files: 3, Trigger: "clean"})
	if err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("hook did not run in Dir: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "3 clean" {
		t.Errorf("hook output = %q, want %q", got, "3 clean")
	}
	if !strings.Contains(buf.String(), "Running hook 'write'") {
		t.Errorf("log output = %q, want running message", buf.String())
	}
}

func TestRunAll_StopsOnFailure(t *testing.T) {
	dir := t.TempDir()

	matches := []HookMatch{
		{Name: "fail", Hook: &config.Hook{Command: "exit 3"}},
		{Name: "after", Hook: &config.Hook{Command: "touch after"}},
	}

	err := RunAll(context.Background(), matches, Context{Dir: dir})
	if err == nil || !strings.Contains(err.Error(), `hook "fail" failed`) {
		t.Fatalf("RunAll() error = %v, want hook failure", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "after")); err == nil {
		t.Error("hooks after a failure should not run")
	}
}

func TestRunAllNonFatal_ContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()

	matches := []HookMatch{
		{Name: "fail", Hook: &config.Hook{Command: "exit 3"}},
		{Name: "after", Hook: &config.Hook{Command: "touch after"}},
	}
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, false, false))

	RunAllNonFatal(ctx, matches, Context{Dir: dir})

	if _, err := os.Stat(filepath.Join(dir, "after")); err != nil {
		t.Error("hooks after a failure should still run")
	}
	if !strings.Contains(buf.String(), `Warning: hook "fail" failed`) {
		t.Errorf("log output = %q, want warning", buf.String())
	}
}

func TestRunAll_ExportsEnvironment(t *testing.T) {
	dir := t.TempDir()

	matches := []HookMatch{{Name: "env", Hook: &config.Hook{
		Command: `printf '%s %s %s' "$CLEANART_FILES" "$CLEANART_BYTES" "$CLEANART_DRY_RUN" > env.txt`,
	}}}
	hc := Context{Dir: dir, TargetDir: filepath.Join(dir, "target"), Files: 4, Bytes: 2048, DryRun: true}
	if err := RunAll(context.Background(), matches, hc); err != nil {
		t.Fatalf("RunAll() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "env.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "4 2048 true" {
		t.Errorf("hook saw %q, want %q", got, "4 2048 true")
	}
}

func TestSubstitutePlaceholders_Size(t *testing.T) {
	t.Parallel()

	got := SubstitutePlaceholders("notify-send freed {size}", Context{Bytes: 3 * 1024 * 1024})
	if want := "notify-send freed '3.00 MiB'"; got != want {
		t.Errorf("SubstitutePlaceholders() = %q, want %q", got, want)
	}
}
