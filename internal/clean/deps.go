package clean

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raphi011/cleanart/internal/artifact"
)

// Options tune a deps scan.
type Options struct {
	// FreshSince keeps every file modified at or after this time. Set it to
	// the trace start: a unit the traced build just recompiled may be missing
	// from the fingerprint log. The zero value disables the check.
	FreshSince time.Time
}

// ScanDeps decides keep or remove for every file in one deps directory.
//
// A file is kept if its stem matches a used artifact in the same directory,
// if its crate is a final output in the parent profile directory, or if it
// is fresh per opts. Files without a hash-bearing stem are ignored entirely.
// Everything else becomes a removal candidate under profile.
func ScanDeps(dir, profile string, used map[string]struct{}, opts Options) (Stats, error) {
	dir = filepath.Clean(dir)
	var stats Stats

	usedStems := make(map[string]struct{})
	for p := range used {
		if filepath.Dir(p) != dir {
			continue
		}
		if stem, ok := artifact.Stem(p); ok {
			usedStems[stem] = struct{}{}
		}
	}

	protected, err := outputCrates(filepath.Dir(dir))
	if err != nil {
		return stats, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("read %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		stem, ok := artifact.Stem(name)
		if !ok {
			continue
		}

		path := filepath.Join(dir, name)
		crate := artifact.CrateKey(name)

		info, err := e.Info()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				stats.addError(ErrorKey{Crate: crate, Profile: profile, Path: path}, err)
			}
			continue
		}
		size := info.Size()

		_, live := usedStems[stem]
		if !live && strings.HasPrefix(name, "lib") {
			// Crates named lib* (libc, libm) keep their own prefix on
			// unprefixed siblings: libc-8f3a.d belongs to liblibc-8f3a.rlib.
			raw, _, _ := strings.Cut(name, ".")
			_, live = usedStems[raw]
		}
		if !live {
			_, live = protected[artifact.NormalizeCrate(crate)]
		}
		if !live && !opts.FreshSince.IsZero() {
			live = !info.ModTime().Before(opts.FreshSince)
		}

		if live {
			stats.addUsed(profile, size)
			continue
		}
		stats.addRemovable(Candidate{Path: path, Size: size, Profile: profile}, crate)
	}

	return stats, nil
}

// outputCrates returns the crate identities of the files directly in a
// profile directory. These are final outputs: nothing depends on them, so
// they never show up in a trace.
func outputCrates(profileDir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(profileDir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir %s: %w", profileDir, err)
	}
	out := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name := artifact.OutputName(e.Name()); name != "" {
			out[name] = struct{}{}
		}
	}
	return out, nil
}
