// Package report turns trace and scan results into plain data for the
// text, JSON and YAML outputs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/trace"
)

// Format selects the report encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted --format values.
var Formats = []string{string(FormatText), string(FormatJSON), string(FormatYAML)}

// ParseFormat validates a --format value. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of %s", s, strings.Join(Formats, ", "))
}

// InUse is a traced artifact that the build needs.
type InUse struct {
	Path    string   `json:"path" yaml:"path"`
	Size    int64    `json:"size" yaml:"size"`
	Profile string   `json:"profile" yaml:"profile"`
	UsedBy  []string `json:"used_by,omitempty" yaml:"used_by,omitempty"`
}

// ErrorEntry is a failed scan or removal item.
type ErrorEntry struct {
	Crate   string `json:"crate" yaml:"crate"`
	Profile string `json:"profile" yaml:"profile"`
	Path    string `json:"path" yaml:"path"`
	Error   string `json:"error" yaml:"error"`
}

// Summary is the data form of a clean.Stats.
type Summary struct {
	Files     int                          `json:"files" yaml:"files"`
	Bytes     int64                        `json:"bytes" yaml:"bytes"`
	UsedBytes int64                        `json:"used_bytes" yaml:"used_bytes"`
	Profiles  map[string]clean.ProfileStat `json:"profiles,omitempty" yaml:"profiles,omitempty"`
	Crates    map[string]clean.CrateStat   `json:"crates,omitempty" yaml:"crates,omitempty"`
	Remove    []clean.Candidate            `json:"files_to_remove,omitempty" yaml:"files_to_remove,omitempty"`
	StaleDirs []clean.Candidate            `json:"dirs_to_remove,omitempty" yaml:"dirs_to_remove,omitempty"`
	Errors    []ErrorEntry                 `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Summarize converts s. Errors are sorted by path.
func Summarize(s clean.Stats) Summary {
	return Summary{
		Files:     s.Files,
		Bytes:     s.Bytes,
		UsedBytes: s.UsedBytes,
		Profiles:  s.PerProfile,
		Crates:    s.PerCrate,
		Remove:    s.FilesToRemove,
		StaleDirs: s.DirsToRemove,
		Errors:    Errors(s.Errors),
	}
}

// Errors flattens an error map, sorted by path then crate.
func Errors(m map[clean.ErrorKey]error) []ErrorEntry {
	if len(m) == 0 {
		return nil
	}
	out := make([]ErrorEntry, 0, len(m))
	for k, err := range m {
		out = append(out, ErrorEntry{Crate: k.Crate, Profile: k.Profile, Path: k.Path, Error: err.Error()})
	}
	slices.SortFunc(out, func(a, b ErrorEntry) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Crate, b.Crate)
	})
	return out
}

// Report is everything one clean run produced.
type Report struct {
	TargetDir string   `json:"target_dir" yaml:"target_dir"`
	Command   string   `json:"command" yaml:"command"`
	ExitCode  int      `json:"exit_code" yaml:"exit_code"`
	DryRun    bool     `json:"dry_run" yaml:"dry_run"`
	Traced    int      `json:"traced_artifacts" yaml:"traced_artifacts"`
	Profiles  []string `json:"profiles" yaml:"profiles"`
	InUse     []InUse  `json:"in_use,omitempty" yaml:"in_use,omitempty"`
	Plan      Summary  `json:"plan" yaml:"plan"`
	Removed   *Summary `json:"removed,omitempty" yaml:"removed,omitempty"`
}

// New builds a report from a trace and the scan of its profiles.
// topN limits the in-use list; zero leaves it empty.
func New(targetDir, command string, res *trace.Result, profiles []string, plan clean.Stats, topN int) *Report {
	r := &Report{
		TargetDir: targetDir,
		Command:   command,
		Profiles:  profiles,
		Plan:      Summarize(plan),
	}
	if res != nil {
		r.ExitCode = res.ExitCode
		r.Traced = len(res.Used)
		r.InUse = TopInUse(targetDir, res, topN)
	}
	return r
}

// SetRemoved records the outcome of a removal.
func (r *Report) SetRemoved(removed clean.Stats) {
	s := Summarize(removed)
	r.Removed = &s
}

// TopInUse returns the n largest traced artifacts that still exist,
// largest first. Ties are broken by path.
func TopInUse(targetDir string, res *trace.Result, n int) []InUse {
	if n <= 0 || res == nil {
		return nil
	}
	var all []InUse
	for _, p := range res.Paths() {
		info, err := os.Lstat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		all = append(all, InUse{
			Path:    p,
			Size:    info.Size(),
			Profile: profileOf(targetDir, p),
			UsedBy:  res.Consumers(p),
		})
	}
	slices.SortFunc(all, func(a, b InUse) int {
		if a.Size != b.Size {
			if a.Size > b.Size {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Path, b.Path)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// profileOf names the profile an artifact lives in: the directory holding
// its deps dir, or its own directory otherwise, relative to targetDir.
func profileOf(targetDir, path string) string {
	dir := filepath.Dir(path)
	if filepath.Base(dir) == "deps" {
		dir = filepath.Dir(dir)
	}
	rel, err := filepath.Rel(targetDir, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Encode writes r as JSON or YAML.
func Encode(w io.Writer, f Format, r *Report) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("format %q has no encoder", f)
}
