package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphi011/cleanart/internal/doctor"
	"github.com/raphi011/cleanart/internal/log"
	"github.com/raphi011/cleanart/internal/output"
)

func newDoctorCmd() *cobra.Command {
	var (
		targetDir   string
		allowShared bool
	)

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Diagnose setup issues",
		GroupID: GroupConfig,
		Args:    cobra.NoArgs,
		Long: `Diagnose the environment cleanart runs in.

Checks:
- Global and local config files parse and validate
- cargo and the configured shell are on PATH
- The target directory resolves and exists
- CARGO_TARGET_DIR is not shared between projects
- No other cleanart run holds the target directory lock`,
		Example: `  cleanart doctor
  cleanart doctor --target-dir ~/Code/project/target`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			l.Println("Running diagnostics...")

			d := &doctor.Doctor{
				Dir:         workDir,
				TargetDir:   targetDir,
				AllowShared: allowShared,
			}
			r, err := d.Check(ctx)
			if err != nil {
				return err
			}

			doctor.Print(out.Writer(), r)

			if n := r.Errors(); n > 0 {
				return fmt.Errorf("%d errors found", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetDir, "target-dir", "", "Target directory to check (default from cargo metadata)")
	cmd.Flags().BoolVar(&allowShared, "allow-shared-target-dir", false, "Treat a shared CARGO_TARGET_DIR as a warning")
	cmd.MarkFlagDirname("target-dir")

	return cmd
}
