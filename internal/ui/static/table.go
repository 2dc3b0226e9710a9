// Package static renders the non-interactive parts of a clean: in-use
// artifacts, per-profile totals, the largest candidates, crates, removal
// errors and the clean history.
package static

import (
	"slices"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// RenderTable lays rows out in borderless columns under bold headers.
// Columns whose index is listed in right are right-aligned, which suits
// sizes and counts. No rows renders nothing.
func RenderTable(headers []string, rows [][]string, right ...int) string {
	if len(rows) == 0 {
		return ""
	}

	cell := func(row, col int) lipgloss.Style {
		s := lipgloss.NewStyle().PaddingRight(2)
		if slices.Contains(right, col) {
			s = s.Align(lipgloss.Right)
		}
		if row == table.HeaderRow {
			s = s.Bold(true)
		}
		return s
	}

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(cell)

	return t.String() + "\n"
}
