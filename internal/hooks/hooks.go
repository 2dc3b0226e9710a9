package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/cleanart/internal/cmd"
	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/log"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// CommandType identifies which command is triggering the hook
type CommandType string

const (
	CommandClean CommandType = "clean"
)

// Context holds the values for placeholder substitution
type Context struct {
	Dir       string            // project directory, also the working directory
	TargetDir string            // cargo target directory
	Files     int               // removed files and directories
	Bytes     int64             // removed bytes
	Command   string            // traced build command
	Trigger   string            // command that triggered the hook
	Env       map[string]string // custom variables from --arg key=value flags
	DryRun    bool              // nothing was removed; hooks still run
	Shell     string            // shell for hook commands, "sh" when empty
}

// Environ returns the clean's results as CLEANART_* variables for the
// hook process.
func (hc Context) Environ() []string {
	return []string{
		"CLEANART_DIR=" + hc.Dir,
		"CLEANART_TARGET_DIR=" + hc.TargetDir,
		"CLEANART_FILES=" + strconv.Itoa(hc.Files),
		"CLEANART_BYTES=" + strconv.FormatInt(hc.Bytes, 10),
		"CLEANART_DRY_RUN=" + strconv.FormatBool(hc.DryRun),
		"CLEANART_COMMAND=" + hc.Command,
	}
}

// HookMatch represents a hook that matched the current command
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookNames are given only those run, regardless of their "on" list.
// Otherwise all enabled hooks whose "on" list matches cmdType run.
// Returns an error if a named hook doesn't exist.
func SelectHooks(cfg config.HooksConfig, hookNames []string, noHook bool, cmdType CommandType) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	if len(hookNames) > 0 {
		matches := make([]HookMatch, 0, len(hookNames))
		for _, name := range hookNames {
			hook, exists := cfg.Hooks[name]
			if !exists {
				return nil, fmt.Errorf("unknown hook %q", name)
			}
			matches = append(matches, HookMatch{Hook: &hook, Name: name})
		}
		return matches, nil
	}

	return findMatchingHooks(cfg, cmdType), nil
}

// findMatchingHooks returns all enabled hooks that have the command type in
// their "on" list, sorted by name.
// Hooks without "on" are skipped (they only run via explicit --hook=name).
func findMatchingHooks(cfg config.HooksConfig, cmdType CommandType) []HookMatch {
	var matches []HookMatch

	for name, hook := range cfg.Hooks {
		if !hook.IsEnabled() {
			continue
		}
		if len(hook.On) > 0 && hookMatchesCommand(hook, cmdType) {
			hookCopy := hook
			matches = append(matches, HookMatch{Hook: &hookCopy, Name: name})
		}
	}

	slices.SortFunc(matches, func(a, b HookMatch) int { return strings.Compare(a.Name, b.Name) })
	return matches
}

// hookMatchesCommand returns true if cmdType is in the hook's "on" list.
// Special value "all" matches all command types.
func hookMatchesCommand(hook config.Hook, cmdType CommandType) bool {
	return slices.ContainsFunc(hook.On, func(on string) bool {
		return on == "all" || on == string(cmdType)
	})
}

// RunAll runs all matched hooks in hc.Dir and returns on the first error.
func RunAll(ctx context.Context, matches []HookMatch, hc Context) error {
	for _, match := range matches {
		if err := runHook(ctx, match.Name, match.Hook, hc); err != nil {
			return fmt.Errorf("hook %q failed: %w", match.Name, err)
		}
	}
	return nil
}

// RunAllNonFatal runs all matched hooks, logging failures as warnings instead
// of returning errors.
func RunAllNonFatal(ctx context.Context, matches []HookMatch, hc Context) {
	l := log.FromContext(ctx)
	for _, match := range matches {
		if err := runHook(ctx, match.Name, match.Hook, hc); err != nil {
			l.Warnf("hook %q failed: %v", match.Name, err)
		}
	}
}

// runHook executes a single hook with variable substitution.
func runHook(ctx context.Context, name string, hook *config.Hook, hc Context) error {
	l := log.FromContext(ctx)
	command := SubstitutePlaceholders(hook.Command, hc)

	l.Printf("Running hook '%s'...\n", name)
	l.Debug("hook", "name", name, "command", command)

	if err := cmd.ShellContext(ctx, hc.Dir, hc.Shell, command, hc.Environ()...); err != nil {
		return err
	}

	if hook.Description != "" {
		l.Printf("  ✓ %s\n", hook.Description)
	}
	return nil
}

// ParseEnv parses --arg key=value pairs. Later keys win.
func ParseEnv(args []string) (map[string]string, error) {
	env, _, err := parseEnv(args)
	return env, err
}

// ParseEnvWithStdin is ParseEnv where a value of "-" is replaced by piped
// stdin. It fails if stdin is requested but empty or a terminal.
func ParseEnvWithStdin(args []string) (map[string]string, error) {
	env, fromStdin, err := parseEnv(args)
	if err != nil || len(fromStdin) == 0 {
		return env, err
	}
	content, err := readStdinIfPiped()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, errors.New("stdin not piped: KEY=- requires piped input")
	}
	for _, key := range fromStdin {
		env[key] = content
	}
	return env, nil
}

func parseEnv(args []string) (env map[string]string, fromStdin []string, err error) {
	env = make(map[string]string, len(args))
	for _, a := range args {
		key, value, ok := strings.Cut(a, "=")
		switch {
		case !ok:
			return nil, nil, fmt.Errorf("invalid env format %q: expected KEY=VALUE", a)
		case key == "":
			return nil, nil, fmt.Errorf("invalid env format %q: key cannot be empty", a)
		case value == "-":
			fromStdin = append(fromStdin, key)
		default:
			env[key] = value
		}
	}
	return env, fromStdin, nil
}

// readStdinIfPiped returns piped stdin, or "" when stdin is a terminal.
func readStdinIfPiped() (string, error) {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return "", nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// envPlaceholderRegex matches {key}, {key:raw}, or {key:-default} patterns for env variables.
// Supported formats:
//   - {key}           - value is shell-quoted
//   - {key:raw}       - value is used as-is (no quoting)
//   - {key:-default}  - value is shell-quoted, uses default if key not set
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
//
// Static placeholders: {dir}, {target-dir}, {files}, {bytes}, {size}, {dry-run}, {command}, {trigger}
// Env placeholders (from Context.Env): {key}, {key:raw}, {key:-default}
func SubstitutePlaceholders(command string, hc Context) string {
	replacements := []string{
		"{dir}", shellQuote(hc.Dir),
		"{target-dir}", shellQuote(hc.TargetDir),
		"{files}", strconv.Itoa(hc.Files),
		"{bytes}", strconv.FormatInt(hc.Bytes, 10),
		"{size}", shellQuote(format.Bytes(hc.Bytes)),
		"{dry-run}", strconv.FormatBool(hc.DryRun),
		"{command}", shellQuote(hc.Command),
		"{trigger}", shellQuote(hc.Trigger),
	}
	result := strings.NewReplacer(replacements...).Replace(command)

	return envPlaceholderRegex.ReplaceAllStringFunc(result, func(match string) string {
		submatch := envPlaceholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3]

		val, ok := hc.Env[key]
		if !ok {
			val = defaultVal
		}
		if isRaw {
			return val
		}
		return shellQuote(val)
	})
}
