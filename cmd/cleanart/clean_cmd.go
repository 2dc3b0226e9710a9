package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/cleanart/internal/report"
)

// cleanOptions holds the flags of the clean command.
type cleanOptions struct {
	yes         bool
	dryRun      bool
	command     string
	targetDir   string
	allowShared bool
	traceStats  int
	profiles    []string
	format      string
	copy        bool
	hookNames   []string
	noHook      bool
	env         []string
	wait        bool
}

func newCleanCmd() *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:     "clean",
		Short:   "Trace a build and remove unused artifacts",
		Aliases: []string{"c"},
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Trace a build and remove the artifacts it did not use.

The build command runs with cargo's fingerprint logging enabled. Every
artifact the build checks is kept, together with its sibling files. All other
files in the traced deps directories are removal candidates, as are
incremental sessions older than the newest one of each crate.

Only one run may work on a target directory at a time. With --wait a second
run blocks until the first one finishes.

Nothing is removed when the build fails. Without --yes, files and stale
incremental directories are confirmed separately.`,
		Example: `  cleanart clean                          # Pick a build command and clean
  cleanart clean -c "cargo build --release"
  cleanart clean -c "cargo build" --dry-run
  cleanart clean -y --profile debug       # Only clean target/debug
  cleanart clean --format json --dry-run  # Machine readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("trace-stats") {
				opts.traceStats = cfg.TraceStats
			}
			return runClean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Remove without confirmation")
	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "Report what would be removed without removing anything")
	cmd.Flags().StringVarP(&opts.command, "command", "c", "", "Build command to trace (default from config or picker)")
	cmd.Flags().StringVar(&opts.targetDir, "target-dir", "", "Target directory (default from cargo metadata)")
	cmd.Flags().BoolVar(&opts.allowShared, "allow-shared-target-dir", false, "Run even when CARGO_TARGET_DIR is set")
	cmd.Flags().IntVarP(&opts.traceStats, "trace-stats", "n", 0, "Number of in-use artifacts to list (0 disables)")
	cmd.Flags().StringSliceVar(&opts.profiles, "profile", nil, "Only clean these profiles (repeatable)")
	cmd.Flags().StringVar(&opts.format, "format", string(report.FormatText), "Output format: "+strings.Join(report.Formats, ", "))
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "Copy the removal candidate paths to the clipboard")
	cmd.Flags().StringSliceVar(&opts.hookNames, "hook", nil, "Run named hook(s) instead of default (repeatable)")
	cmd.Flags().BoolVar(&opts.noHook, "no-hook", false, "Skip post-clean hooks")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "Wait for another run on the same target directory instead of failing")
	cmd.Flags().StringSliceVarP(&opts.env, "arg", "a", nil, "Set hook variable KEY=VALUE (use KEY=- to read from stdin)")

	cmd.MarkFlagsMutuallyExclusive("yes", "dry-run")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
	cmd.RegisterFlagCompletionFunc("hook", completeHooks)
	cmd.RegisterFlagCompletionFunc("profile", completeProfiles)
	cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.RegisterFlagCompletionFunc("command", completeCommands)
	cmd.MarkFlagDirname("target-dir")

	return cmd
}
