// Package history records past cleans so `cleanart history` can show how
// much each run freed.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/raphi011/cleanart/internal/storage"
)

// maxEntries caps the history file; the oldest runs are dropped first.
const maxEntries = 200

// Entry is one clean that removed something.
type Entry struct {
	Time      time.Time `json:"time"`
	Dir       string    `json:"dir"`
	TargetDir string    `json:"target_dir"`
	Command   string    `json:"command"`
	Files     int       `json:"files"`
	Bytes     int64     `json:"bytes"`
	Errors    int       `json:"errors,omitempty"`
}

// History holds recorded cleans, oldest first.
type History struct {
	Entries []Entry `json:"entries"`
}

// DefaultPath returns the history file in the state directory.
func DefaultPath() (string, error) {
	dir, err := storage.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

// Load reads the history at path. A missing file is an empty history.
func Load(path string) (*History, error) {
	var h History
	if err := storage.LoadJSON(path, &h); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &History{}, nil
		}
		return nil, fmt.Errorf("load history %s: %w", path, err)
	}
	return &h, nil
}

// Save writes the history to path atomically.
func (h *History) Save(path string) error {
	return storage.SaveJSON(path, h)
}

// Add appends e, keeping entries sorted by time and within the cap.
func (h *History) Add(e Entry) {
	h.Entries = append(h.Entries, e)
	slices.SortStableFunc(h.Entries, func(a, b Entry) int {
		return a.Time.Compare(b.Time)
	})
	if over := len(h.Entries) - maxEntries; over > 0 {
		h.Entries = slices.Delete(h.Entries, 0, over)
	}
}

// Last returns up to n of the most recent entries, newest first.
// n <= 0 returns all of them.
func (h *History) Last(n int) []Entry {
	out := slices.Clone(h.Entries)
	slices.Reverse(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Totals sums files and bytes over all entries.
func (h *History) Totals() (files int, bytes int64) {
	for _, e := range h.Entries {
		files += e.Files
		bytes += e.Bytes
	}
	return files, bytes
}

// Record loads the history at path, adds e and saves it.
func Record(path string, e Entry) error {
	h, err := Load(path)
	if err != nil {
		// A corrupt file would otherwise block recording forever
		h = &History{}
	}
	h.Add(e)
	return h.Save(path)
}
