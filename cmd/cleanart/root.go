package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/cleanart/internal/config"
	"github.com/raphi011/cleanart/internal/log"
	"github.com/raphi011/cleanart/internal/output"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

var (
	verbose    bool
	quiet      bool
	projectDir string // -C/--dir

	// Shared state injected into commands
	cfg     *config.Config
	workDir string
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cleanart",
		Short: "Remove cargo build artifacts your build no longer uses",
		Long: `cleanart traces a cargo build and removes everything in the target
directory the build did not touch.

The build runs with cargo's fingerprint logging enabled. Every artifact it
mentions is kept; stale rlibs, rmetas, object files and old incremental
sessions are offered for removal.`,
		Version:                    versionString(),
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l := log.New(os.Stderr, verbose, quiet)
			cmd.SetContext(log.WithLogger(cmd.Context(), l))
			if projectDir == "" {
				return nil
			}
			dir, err := projectDirectory(projectDir)
			if err != nil {
				return err
			}
			workDir = dir
			var warnings []error
			cfg, warnings = loadConfig(workDir)
			for _, w := range warnings {
				l.Warnf("%v", w)
			}
			l.Debug("project directory", "path", workDir)
			return nil
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")

	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Show external commands and scan details")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	pf.StringVarP(&projectDir, "dir", "C", "", "Run as if started in `dir`")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	_ = root.MarkPersistentFlagDirname("dir")

	root.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)
	root.AddCommand(
		newCleanCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newDoctorCmd(),
		newCompletionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleanart: failed to get working directory: %v\n", err)
		os.Exit(1)
	}
	workDir = wd

	var warnings []error
	cfg, warnings = loadConfig(workDir)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", w)
	}
	initTheme(cfg.Theme)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Replaced in PersistentPreRunE once flags are parsed.
	ctx = log.WithLogger(ctx, log.New(os.Stderr, false, false))
	ctx = output.WithPrinter(ctx, os.Stdout)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\nRun 'cleanart -h' for help\n", err)
		cancel()
		os.Exit(1)
	}
}

// loadConfig reads the global config and overlays the .cleanart.toml in
// dir. A broken file is reported as a warning and skipped.
func loadConfig(dir string) (*config.Config, []error) {
	var warnings []error
	global, err := config.Load()
	if err != nil {
		warnings = append(warnings, err)
	}
	local, err := config.LoadLocal(dir)
	if err != nil {
		warnings = append(warnings, err)
	}
	return config.MergeLocal(&global, local), warnings
}

func projectDirectory(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("--dir: %w", err)
	}
	if !fi.IsDir() {
		return "", errors.New("--dir: " + abs + " is not a directory")
	}
	return abs, nil
}

// initTheme applies the configured theme, falling back to plain text when
// stdout cannot render color.
func initTheme(tc config.ThemeConfig) {
	if !styles.ColorEnabled(os.Stdout) {
		tc.Name, tc.Mode = "none", "dark"
	}
	styles.Init(tc)
}
