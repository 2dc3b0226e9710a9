package format

import (
	"fmt"
	"sort"
	"strings"
)

const (
	kib = 1024
	mib = kib * 1024
	gib = mib * 1024
)

// Bytes formats n as B, KiB, MiB or GiB.
func Bytes(n int64) string {
	switch {
	case n >= gib:
		return fmt.Sprintf("%.2f GiB", float64(n)/gib)
	case n >= mib:
		return fmt.Sprintf("%.2f MiB", float64(n)/mib)
	case n >= kib:
		return fmt.Sprintf("%.2f KiB", float64(n)/kib)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Names returns up to max sorted, deduplicated names joined by ", ",
// followed by "+N" for the rest.
func Names(names []string, max int) string {
	uniq := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	sort.Strings(uniq)
	if max <= 0 || len(uniq) <= max {
		return strings.Join(uniq, ", ")
	}
	return fmt.Sprintf("%s, +%d", strings.Join(uniq[:max], ", "), len(uniq)-max)
}

// More returns the trailer for a truncated list, e.g. "… and 3 more files".
func More(remaining int, label string) string {
	return fmt.Sprintf("… and %d more %s", remaining, label)
}

// Plural returns singular when n is 1 and plural otherwise.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
