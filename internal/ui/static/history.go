package static

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/history"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

const commandWidth = 40

// HistoryRows renders recorded cleans relative to now.
func HistoryRows(entries []history.Entry, now time.Time) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		errs := ""
		if e.Errors > 0 {
			errs = styles.ErrorStyle.Render(fmt.Sprint(e.Errors))
		}
		rows = append(rows, []string{
			styles.MutedStyle.Render(ago(now.Sub(e.Time))),
			filepath.Base(e.Dir),
			fmt.Sprint(e.Files),
			format.Bytes(e.Bytes),
			errs,
			ansi.Truncate(e.Command, commandWidth, "…"),
		})
	}
	return rows
}

// HistoryTable renders HistoryRows with headers.
func HistoryTable(entries []history.Entry, now time.Time) string {
	return RenderTable([]string{"WHEN", "PROJECT", "REMOVED", "FREED", "ERRORS", "COMMAND"}, HistoryRows(entries, now), 2, 3, 4)
}

// ago formats d coarsely, e.g. "just now", "5m ago", "3h ago", "2d ago".
func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
