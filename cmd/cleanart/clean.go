package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	"github.com/raphi011/cleanart/internal/cargo"
	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/history"
	"github.com/raphi011/cleanart/internal/hooks"
	"github.com/raphi011/cleanart/internal/lock"
	"github.com/raphi011/cleanart/internal/log"
	"github.com/raphi011/cleanart/internal/output"
	"github.com/raphi011/cleanart/internal/report"
	"github.com/raphi011/cleanart/internal/trace"
	"github.com/raphi011/cleanart/internal/ui/progress"
	"github.com/raphi011/cleanart/internal/ui/prompt"
	"github.com/raphi011/cleanart/internal/ui/static"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

// failedBuildTail is how many lines of build output are replayed when the
// traced build fails.
const failedBuildTail = 20

var (
	errNoCommand = errors.New(`no build command given

Pass one with -c or set "command" in the config, e.g.:
  cleanart clean -c "cargo build"
  cleanart clean -c "cargo build --release"
  CLEANART_COMMAND="cargo build --all-features" cleanart clean`)
	errNeedsConfirmation = errors.New("refusing to remove without confirmation: pass --yes or --dry-run when not running in a terminal")
	errCancelled         = errors.New("cancelled")
)

// sharedTargetError is returned when CARGO_TARGET_DIR points at a directory
// other projects may build into too.
type sharedTargetError struct {
	Dir string
}

func (e *sharedTargetError) Error() string {
	return fmt.Sprintf("CARGO_TARGET_DIR is set to %s: a trace of one project cannot tell which artifacts other projects need\n"+
		"Use --allow-shared-target-dir (or allow_shared_target_dir = true) to clean anyway", e.Dir)
}

// buildFailedError is returned after reporting on a build that exited
// non-zero. Nothing is removed in that case.
type buildFailedError struct {
	ExitCode int
}

func (e *buildFailedError) Error() string {
	return fmt.Sprintf("build command exited with code %d: nothing was removed", e.ExitCode)
}

func runClean(ctx context.Context, opts cleanOptions) error {
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	f, err := report.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	// Resolve hooks before doing any work so typos fail fast
	hookMatches, err := hooks.SelectHooks(cfg.Hooks, opts.hookNames, opts.noHook, hooks.CommandClean)
	if err != nil {
		return err
	}
	env, err := hooks.ParseEnvWithStdin(opts.env)
	if err != nil {
		return err
	}

	interactive := progress.Interactive()

	if err := checkSharedTarget(cargo.SharedTargetDir, opts.allowShared || cfg.AllowSharedTargetDir); err != nil {
		return err
	}

	command, err := resolveCommand(opts.command, cfg, interactive, prompt.PickCommand)
	if errors.Is(err, errCancelled) {
		l.Println("Cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	target, err := resolveTargetDir(ctx, opts.targetDir, cfg.TargetDir, workDir, cargo.TargetDir)
	if err != nil {
		return err
	}
	l.Debug("resolved target directory", "path", target)

	if _, err := os.Stat(target); errors.Is(err, os.ErrNotExist) {
		l.Warnf("target directory %s does not exist, nothing to clean", target)
		return emitReport(ctx, f, report.New(target, command, nil, nil, clean.Stats{}, 0))
	} else if err != nil {
		return fmt.Errorf("target directory: %w", err)
	}

	lk := lock.ForTarget(target)
	if err := acquireLock(l, lk, opts.wait); err != nil {
		return err
	}
	defer lk.Unlock()

	res, err := traceBuild(ctx, command, target, interactive)
	if err != nil {
		return err
	}
	var buildErr error
	if !res.Succeeded() {
		buildErr = &buildFailedError{ExitCode: res.ExitCode}
	}

	if err := validateProfiles(opts.profiles, clean.Profiles(clean.ScanDirs(target, res.Used))); err != nil {
		return errors.Join(err, buildErr)
	}

	spin := progress.NewSpinner("Scanning " + target)
	spin.Start()
	planner := &clean.Planner{
		TargetDir: target,
		// Coarse filesystem mtimes round down to the second.
		FreshSince: res.Started.Truncate(time.Second),
		Profiles:   opts.profiles,
	}
	plan, scanned, err := planner.Scan(ctx, res.Used)
	spin.Stop()
	if errors.Is(err, clean.ErrNothingToScan) {
		if buildErr != nil {
			return buildErr
		}
		l.Printf("No traced artifacts under %s, nothing to remove\n", target)
		return emitReport(ctx, f, report.New(target, command, res, nil, clean.Stats{}, opts.traceStats))
	}
	if err != nil {
		return err
	}

	rep := report.New(target, command, res, clean.Profiles(scanned), plan, opts.traceStats)
	rep.DryRun = opts.dryRun
	if f == report.FormatText {
		printPlan(out, rep, plan)
	}

	if opts.copy {
		copyCandidates(l, plan)
	}

	if buildErr != nil {
		if f != report.FormatText {
			if err := emitReport(ctx, f, rep); err != nil {
				return errors.Join(err, buildErr)
			}
		}
		return buildErr
	}

	var removed clean.Stats
	var removeErr error
	if plan.Empty() {
		l.Println("Nothing to remove")
	} else {
		sel, err := chooseSelection(plan, opts, interactive, prompt.ConfirmWithDetail)
		if errors.Is(err, errCancelled) {
			l.Println("Cancelled, nothing was removed")
			return nil
		}
		if err != nil {
			return err
		}
		if sel.Any() {
			removed, removeErr = removeSelected(ctx, plan, sel, interactive)
			rep.SetRemoved(removed)
			recordClean(l, history.Entry{
				Time:      time.Now().Truncate(time.Second),
				Dir:       workDir,
				TargetDir: target,
				Command:   command,
				Files:     removed.Files,
				Bytes:     removed.Bytes,
				Errors:    len(removed.Errors),
			})
			if f == report.FormatText {
				printRemoved(out, removed)
			}
		} else if opts.dryRun {
			l.Printf("Dry run: %d %s (%s) would be removed\n",
				plan.Files, format.Plural(plan.Files, "item", "items"), format.Bytes(plan.Bytes))
		}
	}

	if f != report.FormatText {
		if err := emitReport(ctx, f, rep); err != nil {
			return err
		}
	}
	if removeErr != nil {
		return removeErr
	}

	hooks.RunAllNonFatal(ctx, hookMatches, hooks.Context{
		Dir:       workDir,
		TargetDir: target,
		Files:     removed.Files,
		Bytes:     removed.Bytes,
		Command:   command,
		Trigger:   string(hooks.CommandClean),
		Env:       env,
		DryRun:    opts.dryRun,
		Shell:     cfg.Shell,
	})
	return nil
}

// acquireLock takes the target directory lock. Without wait a held lock
// fails immediately.
func acquireLock(l *log.Logger, lk *lock.FileLock, wait bool) error {
	if !wait {
		if err := lk.TryLock(); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return fmt.Errorf("%w (pass --wait to wait for it)", err)
			}
			return fmt.Errorf("lock %s: %w", lk.Path(), err)
		}
		return nil
	}
	if err := lk.TryLock(); !errors.Is(err, lock.ErrLocked) {
		return err
	}
	l.Printf("Waiting for another cleanart run on %s\n", filepath.Dir(lk.Path()))
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", lk.Path(), err)
	}
	return nil
}

// resolveCommand picks the build command: the flag, then the config
// (which already includes CLEANART_COMMAND), then the interactive picker.
func resolveCommand(flag string, c *config.Config, interactive bool, pick func([]string) (prompt.CommandResult, error)) (string, error) {
	if s := strings.TrimSpace(flag); s != "" {
		return s, nil
	}
	if s := strings.TrimSpace(c.Command); s != "" {
		return s, nil
	}
	if !interactive {
		return "", errNoCommand
	}
	res, err := pick(c.PickerCommands())
	if err != nil {
		return "", fmt.Errorf("pick command: %w", err)
	}
	if res.Cancelled {
		return "", errCancelled
	}
	return res.Command, nil
}

// resolveTargetDir returns the absolute target directory: the flag, then the
// configured one, then the one cargo reports for dir.
func resolveTargetDir(ctx context.Context, flag, configured, dir string, discover func(context.Context, string) (string, error)) (string, error) {
	target := flag
	if target == "" {
		target = configured
	}
	if target == "" {
		found, err := discover(ctx, dir)
		if err != nil {
			return "", fmt.Errorf("find target directory (use --target-dir to set it): %w", err)
		}
		target = found
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("target directory: %w", err)
	}
	return abs, nil
}

func checkSharedTarget(lookup func() (string, bool), allowed bool) error {
	dir, shared := lookup()
	if !shared || allowed {
		return nil
	}
	return &sharedTargetError{Dir: dir}
}

// validateProfiles fails on requested profiles the trace did not touch and
// suggests the closest traced ones.
func validateProfiles(requested, available []string) error {
	var errs []error
	for _, p := range requested {
		if slices.Contains(available, p) {
			continue
		}
		msg := fmt.Sprintf("profile %q was not traced", p)
		if s := suggestProfiles(p, available); len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
		} else if len(available) > 0 {
			msg += fmt.Sprintf(" (traced: %s)", strings.Join(available, ", "))
		}
		errs = append(errs, errors.New(msg))
	}
	return errors.Join(errs...)
}

// suggestProfiles returns up to three traced profiles that fuzzy match name.
func suggestProfiles(name string, available []string) []string {
	var out []string
	for _, m := range fuzzy.Find(name, available) {
		out = append(out, m.Str)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// chooseSelection decides which candidate categories to remove.
// --dry-run selects nothing and --yes selects both. Otherwise files and stale
// incremental directories are confirmed one after the other.
func chooseSelection(plan clean.Stats, opts cleanOptions, interactive bool, confirm func(msg, detail string) (prompt.ConfirmResult, error)) (clean.Selection, error) {
	hasFiles := len(plan.FilesToRemove) > 0
	hasDirs := len(plan.DirsToRemove) > 0

	switch {
	case opts.dryRun:
		return clean.Selection{}, nil
	case opts.yes:
		return clean.Selection{Files: hasFiles, Dirs: hasDirs}, nil
	case !interactive:
		return clean.Selection{}, errNeedsConfirmation
	}

	var sel clean.Selection
	if hasFiles {
		n := len(plan.FilesToRemove)
		res, err := confirm(
			fmt.Sprintf("Remove %d unused %s (%s)?", n, format.Plural(n, "file", "files"), format.Bytes(plan.FileBytes())),
			"Files in deps directories that the traced build did not use",
		)
		if err != nil {
			return clean.Selection{}, err
		}
		if res.Cancelled {
			return clean.Selection{}, errCancelled
		}
		sel.Files = res.Confirmed
	}
	if hasDirs {
		n := len(plan.DirsToRemove)
		res, err := confirm(
			fmt.Sprintf("Remove %d stale incremental %s (%s)?", n, format.Plural(n, "directory", "directories"), format.Bytes(plan.DirBytes())),
			"Older sessions of crates that have a newer incremental session",
		)
		if err != nil {
			return clean.Selection{}, err
		}
		if res.Cancelled {
			return clean.Selection{}, errCancelled
		}
		sel.Dirs = res.Confirmed
	}
	return sel, nil
}

// traceBuild runs command under the tracer behind a spinner. Build output
// is shown in the spinner, or passed through when there is no terminal.
func traceBuild(ctx context.Context, command, target string, interactive bool) (*trace.Result, error) {
	l := log.FromContext(ctx)
	plain := !styles.ColorEnabled(os.Stderr)
	recent := newTail(failedBuildTail)

	spin := progress.NewSpinner("Running " + command)
	tracer := &trace.Tracer{
		OutputRoot: target,
		Dir:        workDir,
		Shell:      cfg.Shell,
		OnStatus: func(s trace.Status) {
			line := s.Line
			if plain {
				line = ansi.Strip(line)
			}
			recent.add(line)
			if !interactive {
				l.Println(line)
				return
			}
			msg := strings.TrimSpace(ansi.Strip(s.Line))
			spin.UpdateMessage(fmt.Sprintf("%s · %d %s", msg, s.Artifacts, format.Plural(s.Artifacts, "artifact", "artifacts")))
		},
	}

	done := l.Command(workDir, cfg.Shell, "-c", command)
	spin.Start()
	res, err := tracer.Trace(ctx, command)
	spin.Stop()
	if err != nil {
		return nil, fmt.Errorf("trace build: %w", err)
	}
	done(time.Since(res.Started))

	if !res.Succeeded() {
		if interactive {
			for _, line := range recent.lines() {
				l.Println(line)
			}
		}
		l.Warnf("build exited with code %d, nothing will be removed", res.ExitCode)
	} else {
		l.Printf("Traced %d %s in %s\n", len(res.Used), format.Plural(len(res.Used), "artifact", "artifacts"),
			time.Since(res.Started).Round(time.Second))
	}
	return res, nil
}

// removeSelected deletes the selected candidates behind a progress bar.
func removeSelected(ctx context.Context, plan clean.Stats, sel clean.Selection, interactive bool) (clean.Stats, error) {
	total := 0
	if sel.Files {
		total += len(plan.FilesToRemove)
	}
	if sel.Dirs {
		total += len(plan.DirsToRemove)
	}

	bar := progress.NewProgressBar(total, "Removing")
	if interactive {
		bar.Start()
	}

	var freed int64
	r := &clean.Remover{
		OnProgress: func(p clean.Progress) {
			if p.Err == nil {
				freed += p.Item.Size
			}
			bar.SetProgress(p.Done, freed, filepath.Base(p.Item.Path))
		},
	}
	removed, err := r.Remove(ctx, plan, sel)
	bar.Stop()
	if err != nil {
		return removed, fmt.Errorf("removal interrupted after %d items: %w", removed.Files+len(removed.Errors), err)
	}
	return removed, nil
}

func printPlan(out *output.Printer, rep *report.Report, plan clean.Stats) {
	if len(rep.InUse) > 0 {
		out.Section("Largest artifacts in use", static.InUseTable(rep.InUse))
	}
	if len(rep.Plan.Profiles) > 0 {
		out.Section("Profiles", static.ProfileTable(rep.Plan))
	}
	if plan.Empty() {
		return
	}

	out.Section("Largest candidates", static.CandidateTable(rep.Plan, static.TopCandidates))
	if len(plan.PerCrate) > 0 {
		out.Section("Crates", static.CrateTable(plan.PerCrate, static.TopCrates))
	}

	out.Printf("%d %s (%s) can be removed, %s in use\n",
		plan.Files, format.Plural(plan.Files, "item", "items"), format.Bytes(plan.Bytes), format.Bytes(plan.UsedBytes))
}

// removedLine styles the symbol and the message separately: the symbol
// carries its own reset, which would cut an outer style short.
func removedLine(removed clean.Stats) string {
	msg := fmt.Sprintf("Removed %d %s (%s)",
		removed.Files, format.Plural(removed.Files, "item", "items"), format.Bytes(removed.Bytes))
	return styles.KindSymbol(styles.KindRemove) + " " + styles.SuccessStyle.Render(msg)
}

func printRemoved(out *output.Printer, removed clean.Stats) {
	out.Println(removedLine(removed))
	if len(removed.Errors) == 0 {
		return
	}
	out.Println()
	out.Println(styles.ErrorStyle.Render(fmt.Sprintf("%d %s could not be removed",
		len(removed.Errors), format.Plural(len(removed.Errors), "item", "items"))))
	out.Print(static.ErrorTable(report.Errors(removed.Errors)))
}

func emitReport(ctx context.Context, f report.Format, rep *report.Report) error {
	if f == report.FormatText {
		return nil
	}
	return report.Encode(output.FromContext(ctx).Writer(), f, rep)
}

// copyCandidates puts one candidate path per line on the clipboard.
func copyCandidates(l *log.Logger, plan clean.Stats) {
	var paths []string
	for _, c := range plan.FilesToRemove {
		paths = append(paths, c.Path)
	}
	for _, c := range plan.DirsToRemove {
		paths = append(paths, c.Path)
	}
	if len(paths) == 0 {
		return
	}
	if err := clipboard.WriteAll(strings.Join(paths, "\n")); err != nil {
		l.Warnf("copy to clipboard: %v", err)
		return
	}
	l.Printf("Copied %d %s to the clipboard\n", len(paths), format.Plural(len(paths), "path", "paths"))
}

// tail keeps the last n lines it was given.
type tail struct {
	n   int
	buf []string
}

func newTail(n int) *tail {
	return &tail{n: n}
}

func (t *tail) add(line string) {
	t.buf = append(t.buf, line)
	if len(t.buf) > t.n {
		t.buf = t.buf[len(t.buf)-t.n:]
	}
}

func (t *tail) lines() []string {
	return t.buf
}
