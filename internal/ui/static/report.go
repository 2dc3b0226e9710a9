package static

import (
	"cmp"
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/format"
	"github.com/raphi011/cleanart/internal/report"
	"github.com/raphi011/cleanart/internal/ui/styles"
)

// Limits of the detailed summary.
const (
	TopCandidates = 10
	TopCrates     = 20
)

// nameWidth caps artifact name columns.
const nameWidth = 48

// InUseRows renders the largest traced artifacts.
func InUseRows(items []report.InUse) [][]string {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{
			styles.KindSymbol(styles.KindInUse),
			styles.ProfileStyle(it.Profile).Render(it.Profile),
			format.Bytes(it.Size),
			styles.FormatPath(filepath.Base(it.Path), nameWidth, ""),
			styles.MutedStyle.Render(format.Names(it.UsedBy, 3)),
		})
	}
	return rows
}

// InUseTable renders InUseRows with headers.
func InUseTable(items []report.InUse) string {
	return RenderTable([]string{"", "PROFILE", "SIZE", "ARTIFACT", "USED BY"}, InUseRows(items), 2)
}

// ProfileRows renders per-profile totals sorted by profile name.
// staleDirs counts stale incremental sessions per profile.
func ProfileRows(s report.Summary) [][]string {
	staleDirs := make(map[string]int)
	for _, d := range s.StaleDirs {
		staleDirs[d.Profile]++
	}

	rows := make([][]string, 0, len(s.Profiles))
	for _, name := range slices.Sorted(maps.Keys(s.Profiles)) {
		p := s.Profiles[name]
		rows = append(rows, []string{
			styles.ProfileStyle(name).Render(name),
			format.Bytes(p.UsedBytes),
			format.Bytes(p.TotalDirBytes),
			fmt.Sprint(p.Files - staleDirs[name]),
			fmt.Sprint(staleDirs[name]),
			format.Bytes(p.Bytes),
		})
	}
	return rows
}

// ProfileTable renders ProfileRows with headers.
func ProfileTable(s report.Summary) string {
	return RenderTable([]string{"PROFILE", "KEPT", "TOTAL", "FILES", "STALE DIRS", "RECLAIMABLE"}, ProfileRows(s), 1, 2, 3, 4, 5)
}

// Largest returns up to n candidates ordered by size, largest first.
// Ties are broken by path.
func Largest(cs []clean.Candidate, n int) []clean.Candidate {
	sorted := slices.Clone(cs)
	slices.SortFunc(sorted, func(a, b clean.Candidate) int {
		if c := cmp.Compare(b.Size, a.Size); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// CandidateRows renders the n largest files and stale dirs together.
func CandidateRows(s report.Summary, n int) [][]string {
	kind := make(map[string]styles.Kind, len(s.StaleDirs))
	all := make([]clean.Candidate, 0, len(s.Remove)+len(s.StaleDirs))
	all = append(all, s.Remove...)
	for _, d := range s.StaleDirs {
		kind[d.Path] = styles.KindStale
		all = append(all, d)
	}

	top := Largest(all, n)
	rows := make([][]string, 0, len(top))
	for _, c := range top {
		k, ok := kind[c.Path]
		if !ok {
			k = styles.KindRemove
		}
		rows = append(rows, []string{
			styles.KindSymbol(k),
			styles.ProfileStyle(c.Profile).Render(c.Profile),
			format.Bytes(c.Size),
			styles.FormatPath(filepath.Base(c.Path), nameWidth, ""),
		})
	}
	return rows
}

// CandidateTable renders CandidateRows with headers and a "… and N more" line.
func CandidateTable(s report.Summary, n int) string {
	out := RenderTable([]string{"", "PROFILE", "SIZE", "CANDIDATE"}, CandidateRows(s, n), 2)
	if rest := len(s.Remove) + len(s.StaleDirs) - n; rest > 0 {
		out += styles.MutedStyle.Render(format.More(rest, "candidates")) + "\n"
	}
	return out
}

// CrateRows renders the n crates with the most reclaimable bytes.
func CrateRows(crates map[string]clean.CrateStat, n int) [][]string {
	names := slices.Collect(maps.Keys(crates))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(crates[b].Bytes, crates[a].Bytes); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	if len(names) > n {
		names = names[:n]
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		c := crates[name]
		rows = append(rows, []string{name, fmt.Sprint(c.Files), format.Bytes(c.Bytes)})
	}
	return rows
}

// CrateTable renders CrateRows with headers.
func CrateTable(crates map[string]clean.CrateStat, n int) string {
	out := RenderTable([]string{"CRATE", "FILES", "SIZE"}, CrateRows(crates, n), 1, 2)
	if rest := len(crates) - n; rest > 0 {
		out += styles.MutedStyle.Render(format.More(rest, "crates")) + "\n"
	}
	return out
}

// ErrorRows renders failed items.
func ErrorRows(errs []report.ErrorEntry) [][]string {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{
			styles.KindSymbol(styles.KindFailed),
			e.Crate,
			e.Path,
			styles.ErrorStyle.Render(e.Error),
		})
	}
	return rows
}

// ErrorTable renders ErrorRows with headers.
func ErrorTable(errs []report.ErrorEntry) string {
	return RenderTable([]string{"", "CRATE", "PATH", "ERROR"}, ErrorRows(errs))
}
