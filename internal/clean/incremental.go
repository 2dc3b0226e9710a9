package clean

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/raphi011/cleanart/internal/artifact"
)

// IncrementalCrate is the crate key recorded for incremental directories
// that fail to delete.
const IncrementalCrate = "incremental"

type session struct {
	path  string
	mtime time.Time
}

// ScanIncremental marks all but the newest session of each crate in
// <profileDir>/incremental as stale.
//
// A crate with a single session is never touched, however old it is. A
// missing incremental directory yields empty stats.
func ScanIncremental(profileDir, profile string) (Stats, error) {
	var stats Stats
	dir := filepath.Join(profileDir, "incremental")

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stats, nil
		}
		return stats, fmt.Errorf("read %s: %w", dir, err)
	}

	byCrate := make(map[string][]session)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		crate, ok := artifact.SessionCrate(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		byCrate[crate] = append(byCrate[crate], session{
			path:  filepath.Join(dir, e.Name()),
			mtime: info.ModTime(),
		})
	}

	crates := make([]string, 0, len(byCrate))
	for c := range byCrate {
		crates = append(crates, c)
	}
	sort.Strings(crates)

	for _, c := range crates {
		sessions := byCrate[c]
		if len(sessions) <= 1 {
			continue
		}
		sort.Slice(sessions, func(i, j int) bool {
			if !sessions[i].mtime.Equal(sessions[j].mtime) {
				return sessions[i].mtime.After(sessions[j].mtime)
			}
			return sessions[i].path > sessions[j].path
		})
		for _, s := range sessions[1:] {
			stats.addStaleDir(Candidate{Path: s.path, Size: DirSize(s.path), Profile: profile})
		}
	}

	return stats, nil
}
