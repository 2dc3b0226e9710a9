package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/raphi011/cleanart/internal/cargo"
	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/lock"
)

// Doctor runs environment checks for one project directory.
// Nil function fields use the real implementations.
type Doctor struct {
	Dir        string // project directory
	ConfigPath string // global config file, empty for config.Path()
	TargetDir  string // --target-dir override

	LookPath    func(file string) (string, error)
	ResolveDir  func(ctx context.Context, dir string) (string, error)
	LookupEnv   func(key string) (string, bool)
	AllowShared bool // --allow-shared-target-dir
}

func (d *Doctor) lookPath(file string) (string, error) {
	if d.LookPath != nil {
		return d.LookPath(file)
	}
	return exec.LookPath(file)
}

func (d *Doctor) resolve(ctx context.Context, dir string) (string, error) {
	if d.ResolveDir != nil {
		return d.ResolveDir(ctx, dir)
	}
	return cargo.TargetDir(ctx, dir)
}

func (d *Doctor) lookupEnv(key string) (string, bool) {
	if d.LookupEnv != nil {
		return d.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

// Check runs all checks. It only fails if ctx is cancelled.
func (d *Doctor) Check(ctx context.Context) (*Report, error) {
	r := &Report{}

	cfg := d.checkConfig(r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.checkTools(r, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.checkTarget(ctx, r, cfg)
	return r, ctx.Err()
}

func (d *Doctor) checkConfig(r *Report) config.Config {
	path := d.ConfigPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			r.Issues = append(r.Issues, Issue{
				Key: "config", Description: err.Error(), Severity: SeverityWarning, Category: CategoryConfig,
			})
			return config.Default()
		}
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		r.Issues = append(r.Issues, Issue{
			Key:         path,
			Description: err.Error(),
			Hint:        "fix the file or recreate it with 'cleanart config init --force'",
			Severity:    SeverityError,
			Category:    CategoryConfig,
		})
		cfg = config.Default()
	} else if _, statErr := os.Stat(path); statErr == nil {
		r.Passed = append(r.Passed, "config "+path+" is valid")
	} else {
		r.Passed = append(r.Passed, "no global config, using defaults")
	}

	if d.Dir == "" {
		return cfg
	}
	local, err := config.LoadLocal(d.Dir)
	if err != nil {
		r.Issues = append(r.Issues, Issue{
			Key:         config.LocalConfigFileName,
			Description: err.Error(),
			Severity:    SeverityError,
			Category:    CategoryConfig,
		})
		return cfg
	}
	if local != nil {
		r.Passed = append(r.Passed, "local "+config.LocalConfigFileName+" is valid")
	}
	return *config.MergeLocal(&cfg, local)
}

func (d *Doctor) checkTools(r *Report, cfg config.Config) {
	tools := []struct{ name, hint string }{
		{"cargo", "install Rust via https://rustup.rs"},
		{cfg.Shell, "set shell in the config or CLEANART_SHELL"},
	}
	for _, tool := range tools {
		path, err := d.lookPath(tool.name)
		if err != nil {
			r.Issues = append(r.Issues, Issue{
				Key:         tool.name,
				Description: "not found on PATH",
				Hint:        tool.hint,
				Severity:    SeverityError,
				Category:    CategoryTools,
			})
			continue
		}
		r.Passed = append(r.Passed, tool.name+" found at "+path)
	}
}

func (d *Doctor) checkTarget(ctx context.Context, r *Report, cfg config.Config) {
	if shared, ok := d.lookupEnv(cargo.EnvTargetDir); ok && shared != "" {
		issue := Issue{
			Key:         cargo.EnvTargetDir,
			Description: fmt.Sprintf("set to %s; other projects may share this directory", shared),
			Hint:        "unset it or pass --allow-shared-target-dir",
			Severity:    SeverityError,
			Category:    CategoryTarget,
		}
		if d.AllowShared || cfg.AllowSharedTargetDir {
			issue.Severity = SeverityWarning
			issue.Hint = "allowed by configuration"
		}
		r.Issues = append(r.Issues, issue)
	}

	target := d.TargetDir
	if target == "" {
		target = cfg.TargetDir
	}
	if target == "" {
		dir := d.Dir
		if dir == "" {
			dir = "."
		}
		var err error
		target, err = d.resolve(ctx, dir)
		if err != nil {
			r.Issues = append(r.Issues, Issue{
				Key:         "target_dir",
				Description: "cannot resolve: " + firstLine(err.Error()),
				Hint:        "run inside a cargo project or pass --target-dir",
				Severity:    SeverityError,
				Category:    CategoryTarget,
			})
			return
		}
	}
	r.TargetDir = target

	info, err := os.Stat(target)
	switch {
	case errors.Is(err, os.ErrNotExist):
		r.Issues = append(r.Issues, Issue{
			Key:         target,
			Description: "target directory does not exist yet",
			Hint:        "nothing to clean until the project has been built",
			Severity:    SeverityWarning,
			Category:    CategoryTarget,
		})
		return
	case err != nil:
		r.Issues = append(r.Issues, Issue{Key: target, Description: err.Error(), Severity: SeverityError, Category: CategoryTarget})
		return
	case !info.IsDir():
		r.Issues = append(r.Issues, Issue{Key: target, Description: "not a directory", Severity: SeverityError, Category: CategoryTarget})
		return
	}
	r.Passed = append(r.Passed, "target directory "+target)

	l := lock.ForTarget(target)
	if err := l.TryLock(); err != nil {
		if errors.Is(err, lock.ErrLocked) {
			r.Issues = append(r.Issues, Issue{
				Key:         l.Path(),
				Description: "another cleanart run is in progress",
				Severity:    SeverityWarning,
				Category:    CategoryTarget,
			})
		}
		return
	}
	_ = l.Unlock()
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Print writes r grouped by category.
func Print(w io.Writer, r *Report) {
	for _, p := range r.Passed {
		fmt.Fprintf(w, "  ✓ %s\n", p)
	}

	if len(r.Issues) == 0 {
		fmt.Fprintln(w, "\n✓ No issues found")
		return
	}

	fmt.Fprintf(w, "\nFound %d issues:\n", len(r.Issues))
	printIssuesByCategory(w, r.Issues)
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(w io.Writer, issues []Issue) {
	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[IssueCategory]string{
		CategoryTools:  "Tools",
		CategoryConfig: "Config",
		CategoryTarget: "Target directory",
	}

	for _, cat := range []IssueCategory{CategoryTools, CategoryConfig, CategoryTarget} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}

		fmt.Fprintf(w, "\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			mark := "⚠"
			if issue.Severity == SeverityError {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s: %s\n", mark, issue.Key, issue.Description)
			if issue.Hint != "" {
				fmt.Fprintf(w, "    → %s\n", issue.Hint)
			}
		}
	}
}
