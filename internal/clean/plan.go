package clean

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/raphi011/cleanart/internal/log"
)

// ErrNothingToScan is returned when no traced artifact lives in a deps
// directory of the target directory.
var ErrNothingToScan = errors.New("no traced artifact directories found")

// ScanDir is one deps directory and the profile it belongs to.
type ScanDir struct {
	Deps    string // <target>/<profile>/deps
	Profile string // path of the profile dir relative to the target dir, slash separated
}

// ProfileDir returns the directory holding Deps.
func (d ScanDir) ProfileDir() string {
	return filepath.Dir(d.Deps)
}

// ScanDirs derives the deps directories to scan from the traced artifacts.
// Cross-compilation layouts such as <target>/wasm32-unknown-unknown/release/deps
// are picked up the same way as <target>/debug/deps. The result is sorted by
// profile.
func ScanDirs(targetDir string, used map[string]struct{}) []ScanDir {
	targetDir = filepath.Clean(targetDir)
	seen := make(map[string]bool)
	var dirs []ScanDir
	for p := range used {
		deps := filepath.Dir(p)
		if filepath.Base(deps) != "deps" || seen[deps] {
			continue
		}
		rel, err := filepath.Rel(targetDir, filepath.Dir(deps))
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		seen[deps] = true
		dirs = append(dirs, ScanDir{Deps: deps, Profile: filepath.ToSlash(rel)})
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Profile < dirs[j].Profile })
	return dirs
}

// Profiles returns the profile names of dirs.
func Profiles(dirs []ScanDir) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = d.Profile
	}
	return out
}

// Planner scans every profile a trace touched.
type Planner struct {
	TargetDir string
	// FreshSince is passed to ScanDeps.
	FreshSince time.Time
	// Profiles restricts the scan to these profiles. Empty means all.
	Profiles []string
	// Concurrency limits parallel profile scans. Zero means 4.
	Concurrency int
}

// Scan runs ScanDeps, DirSize and ScanIncremental for every deps directory
// named by used, concurrently, and folds the results in profile order.
// It returns the directories that were scanned.
func (p *Planner) Scan(ctx context.Context, used map[string]struct{}) (Stats, []ScanDir, error) {
	l := log.FromContext(ctx)

	var dirs []ScanDir
	for _, d := range ScanDirs(p.TargetDir, used) {
		if len(p.Profiles) > 0 && !slices.Contains(p.Profiles, d.Profile) {
			continue
		}
		if _, err := os.Stat(d.Deps); err != nil {
			l.Debug("skipping missing deps dir", "path", d.Deps)
			continue
		}
		dirs = append(dirs, d)
	}
	if len(dirs) == 0 {
		return Stats{}, nil, ErrNothingToScan
	}

	limit := p.Concurrency
	if limit <= 0 {
		limit = 4
	}

	results := make([]Stats, len(dirs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range dirs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := scanProfile(ctx, d, used, Options{FreshSince: p.FreshSince})
			if err != nil {
				return fmt.Errorf("scan profile %s: %w", d.Profile, err)
			}
			results[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, nil, err
	}

	var total Stats
	for _, s := range results {
		total.MergeFrom(s)
	}
	return total, dirs, nil
}

func scanProfile(ctx context.Context, d ScanDir, used map[string]struct{}, opts Options) (Stats, error) {
	l := log.FromContext(ctx)

	stats, err := ScanDeps(d.Deps, d.Profile, used, opts)
	if err != nil {
		return Stats{}, err
	}

	ps := stats.profile(d.Profile)
	ps.TotalDirBytes = DirSize(d.ProfileDir())
	stats.PerProfile[d.Profile] = ps

	inc, err := ScanIncremental(d.ProfileDir(), d.Profile)
	if err != nil {
		l.Warnf("failed to scan incremental dir: %v", err)
	} else {
		stats.MergeFrom(inc)
	}

	l.Debug("scanned profile", "profile", d.Profile,
		"remove", len(stats.FilesToRemove), "stale_sessions", len(stats.DirsToRemove))
	return stats, nil
}
