package main

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/cleanart/internal/report"
)

func completeHooks(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var hooks []string
	for _, name := range slices.Sorted(maps.Keys(cfg.Hooks.Hooks)) {
		h := cfg.Hooks.Hooks[name]
		if h.Description != "" {
			name += "\t" + h.Description
		}
		hooks = append(hooks, name)
	}
	return hooks, cobra.ShellCompDirectiveNoFileComp
}

func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return report.Formats, cobra.ShellCompDirectiveNoFileComp
}

func completeCommands(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return cfg.PickerCommands(), cobra.ShellCompDirectiveNoFileComp
}

// completeProfiles offers the profile directories of the target directory
// without running cargo: the --target-dir flag, the configured one, or
// ./target.
func completeProfiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	target, _ := cmd.Flags().GetString("target-dir")
	if target == "" {
		target = cfg.TargetDir
	}
	if target == "" {
		target = filepath.Join(workDir, "target")
	}
	return profileDirs(target), cobra.ShellCompDirectiveNoFileComp
}

// profileDirs lists profiles under target that have a deps directory, one
// level of cross-compilation triple deep.
func profileDirs(target string) []string {
	var profiles []string
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if isDir(filepath.Join(target, e.Name(), "deps")) {
			profiles = append(profiles, e.Name())
			continue
		}
		nested, err := os.ReadDir(filepath.Join(target, e.Name()))
		if err != nil {
			continue
		}
		for _, n := range nested {
			if n.IsDir() && isDir(filepath.Join(target, e.Name(), n.Name(), "deps")) {
				profiles = append(profiles, e.Name()+"/"+n.Name())
			}
		}
	}
	return profiles
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
