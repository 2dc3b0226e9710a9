package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/history"
	"github.com/raphi011/cleanart/internal/log"
	"github.com/raphi011/cleanart/internal/output"
	"github.com/raphi011/cleanart/internal/ui/static"
)

func newHistoryCmd() *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show past cleans",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Show past cleans, newest first.

Every clean that removed something is recorded in the state directory
($XDG_STATE_HOME/cleanart, or ~/.local/state/cleanart).`,
		Example: `  cleanart history          # Last 20 cleans
  cleanart history -n 0     # All recorded cleans
  cleanart history --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

			path, err := history.DefaultPath()
			if err != nil {
				return err
			}
			h, err := history.Load(path)
			if err != nil {
				return err
			}
			entries := h.Last(limit)

			if jsonOutput {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				out.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				l.Println("No cleans recorded yet")
				return nil
			}

			out.Print(static.HistoryTable(entries, time.Now()))
			files, bytes := h.Totals()
			out.Println()
			out.Printf("%d %s over %d %s freed %s\n",
				files, format.Plural(files, "item", "items"),
				len(h.Entries), format.Plural(len(h.Entries), "clean", "cleans"),
				format.Bytes(bytes))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of cleans to show (0 shows all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// recordClean appends a clean that removed something to the history.
// Failing to record is only a warning.
func recordClean(l *log.Logger, e history.Entry) {
	if e.Files == 0 && e.Errors == 0 {
		return
	}
	path, err := history.DefaultPath()
	if err == nil {
		err = history.Record(path, e)
	}
	if err != nil {
		l.Warnf("record history: %v", err)
		return
	}
	l.Debug("recorded clean", "path", path)
}
