package clean

import (
	"context"
	"os"

	"github.com/raphi011/cleanart/internal/artifact"
)

// Selection picks which candidate categories to delete.
type Selection struct {
	Files bool
	Dirs  bool // stale incremental sessions
}

// Any reports whether anything is selected.
func (s Selection) Any() bool {
	return s.Files || s.Dirs
}

// Progress reports one processed item.
type Progress struct {
	Done  int
	Total int
	Item  Candidate
	Err   error
}

// Remover deletes removal candidates.
type Remover struct {
	// RemoveFile deletes one file. Defaults to os.Remove.
	RemoveFile func(path string) error
	// RemoveAll deletes one directory tree. Defaults to os.RemoveAll.
	RemoveAll func(path string) error
	// OnProgress is called after every item, successful or not.
	OnProgress func(Progress)
}

// Remove deletes the selected candidates of stats and returns what actually
// happened.
//
// A failed item is recorded in the returned Errors and processing continues.
// The result counts only items that were deleted. If ctx is cancelled,
// Remove stops before the next item and returns the stats so far together
// with ctx.Err().
func (r *Remover) Remove(ctx context.Context, stats Stats, sel Selection) (Stats, error) {
	removeFile := r.RemoveFile
	if removeFile == nil {
		removeFile = os.Remove
	}
	removeAll := r.RemoveAll
	if removeAll == nil {
		removeAll = os.RemoveAll
	}

	var files, dirs []Candidate
	if sel.Files {
		files = stats.FilesToRemove
	}
	if sel.Dirs {
		dirs = stats.DirsToRemove
	}
	total := len(files) + len(dirs)

	var out Stats
	done := 0
	step := func(c Candidate, crate, bucket string, del func(string) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := del(c.Path)
		if err != nil {
			out.addError(ErrorKey{Crate: crate, Profile: c.Profile, Path: c.Path}, err)
		} else {
			out.count(c, bucket)
		}
		done++
		if r.OnProgress != nil {
			r.OnProgress(Progress{Done: done, Total: total, Item: c, Err: err})
		}
		return nil
	}

	for _, c := range files {
		crate := artifact.CrateKey(c.Path)
		if err := step(c, crate, crate, removeFile); err != nil {
			return out, err
		}
	}
	for _, c := range dirs {
		if err := step(c, IncrementalCrate, "", removeAll); err != nil {
			return out, err
		}
	}
	return out, nil
}
